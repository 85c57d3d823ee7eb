package service

import (
	"context"
	"fmt"

	"runnerhub/internal/core/domain"
	"runnerhub/internal/core/ports"
	"runnerhub/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Candidate is a runner together with the inputs of its score.
type Candidate struct {
	Runner     domain.User
	AvgRating  float64
	ActiveLoad int64
}

// Score is 2*avgRating - activeLoad - distance(task, runner).
func Score(task *domain.Task, c Candidate) (score, distance float64) {
	distance = task.Location.DistanceTo(c.Runner.LastKnownLocation())
	return 2*c.AvgRating - float64(c.ActiveLoad) - distance, distance
}

// Rank returns the highest scoring candidate. Ties keep the earlier
// candidate. ok is false for an empty pool.
func Rank(task *domain.Task, candidates []Candidate) (best *ports.MatchResult, ok bool) {
	for _, c := range candidates {
		score, dist := Score(task, c)
		if best != nil && score <= best.Score {
			continue
		}
		best = &ports.MatchResult{
			Runner:     c.Runner,
			Score:      score,
			AvgRating:  c.AvgRating,
			ActiveLoad: c.ActiveLoad,
			Distance:   dist,
		}
	}
	return best, best != nil
}

// MatchingServiceImpl implements ports.MatchingService.
type MatchingServiceImpl struct {
	taskRepo       ports.TaskRepository
	userRepo       ports.UserRepository
	reviewRepo     ports.ReviewRepository
	maxConcurrency int
	log            zerolog.Logger
}

func NewMatchingService(
	taskRepo ports.TaskRepository,
	userRepo ports.UserRepository,
	reviewRepo ports.ReviewRepository,
	maxConcurrency int,
	log zerolog.Logger,
) *MatchingServiceImpl {
	if maxConcurrency < 1 {
		maxConcurrency = 1
	}
	return &MatchingServiceImpl{
		taskRepo:       taskRepo,
		userRepo:       userRepo,
		reviewRepo:     reviewRepo,
		maxConcurrency: maxConcurrency,
		log:            log,
	}
}

// BestRunner scores every runner against the task. Ratings and loads are
// read fresh on each call.
func (s *MatchingServiceImpl) BestRunner(ctx context.Context, taskID uuid.UUID) (*ports.MatchResult, error) {
	task, err := s.taskRepo.GetByID(ctx, taskID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get task: %w", err))
	}
	if task == nil {
		return nil, apperror.ErrNotFound("task")
	}

	runners, err := s.userRepo.ListByRole(ctx, domain.RoleRunner)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list runners: %w", err))
	}
	if len(runners) == 0 {
		return nil, apperror.ErrNoCandidate()
	}

	candidates := make([]Candidate, len(runners))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.maxConcurrency)
	for i := range runners {
		g.Go(func() error {
			runner := runners[i]
			summary, err := s.reviewRepo.SummaryFor(gctx, runner.ID)
			if err != nil {
				return fmt.Errorf("rating for %s: %w", runner.ID, err)
			}
			load, err := s.taskRepo.CountActiveByRunner(gctx, runner.ID)
			if err != nil {
				return fmt.Errorf("load for %s: %w", runner.ID, err)
			}
			candidates[i] = Candidate{Runner: runner, AvgRating: summary.Average, ActiveLoad: load}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, apperror.InternalError(err)
	}

	best, ok := Rank(task, candidates)
	if !ok {
		return nil, apperror.ErrNoCandidate()
	}

	s.log.Debug().
		Str("task_id", taskID.String()).
		Str("runner_id", best.Runner.ID.String()).
		Float64("score", best.Score).
		Int("pool", len(candidates)).
		Msg("runner matched")

	return best, nil
}
