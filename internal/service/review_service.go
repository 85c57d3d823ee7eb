package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"runnerhub/internal/core/domain"
	"runnerhub/internal/core/ports"
	"runnerhub/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ReviewServiceImpl implements ports.ReviewService.
type ReviewServiceImpl struct {
	reviewRepo ports.ReviewRepository
	taskRepo   ports.TaskRepository
	log        zerolog.Logger
}

func NewReviewService(reviewRepo ports.ReviewRepository, taskRepo ports.TaskRepository, log zerolog.Logger) *ReviewServiceImpl {
	return &ReviewServiceImpl{reviewRepo: reviewRepo, taskRepo: taskRepo, log: log}
}

// Submit records one review per (task, reviewer). The reviewee is the other
// participant of the task.
func (s *ReviewServiceImpl) Submit(ctx context.Context, req ports.SubmitReviewRequest) (*domain.Review, error) {
	if req.Rating < domain.MinRating || req.Rating > domain.MaxRating {
		return nil, apperror.Validation(fmt.Sprintf("rating must be between %d and %d", domain.MinRating, domain.MaxRating))
	}
	var comment *string
	if req.Comment != nil {
		trimmed := strings.TrimSpace(*req.Comment)
		if utf8.RuneCountInString(trimmed) > domain.MaxCommentLength {
			return nil, apperror.Validation(fmt.Sprintf("comment must be at most %d characters", domain.MaxCommentLength))
		}
		if trimmed != "" {
			comment = &trimmed
		}
	}

	task, err := s.taskRepo.GetByID(ctx, req.TaskID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get task: %w", err))
	}
	if task == nil {
		return nil, apperror.ErrNotFound("task")
	}

	exists, err := s.reviewRepo.Exists(ctx, req.TaskID, req.ReviewerID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("check review: %w", err))
	}
	if exists {
		return nil, apperror.ErrDuplicateReview()
	}

	var reviewee uuid.UUID
	switch {
	case req.ReviewerID == task.ClientID:
		if task.RunnerID == nil {
			return nil, apperror.ErrConflict("task has no runner to review")
		}
		reviewee = *task.RunnerID
	case task.IsAssignedTo(req.ReviewerID):
		reviewee = task.ClientID
	default:
		return nil, apperror.ErrForbidden()
	}

	review := &domain.Review{
		ID:         uuid.New(),
		TaskID:     req.TaskID,
		ReviewerID: req.ReviewerID,
		RevieweeID: reviewee,
		Rating:     req.Rating,
		Comment:    comment,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.reviewRepo.Create(ctx, review); err != nil {
		if errors.Is(err, ports.ErrDuplicate) {
			return nil, apperror.ErrDuplicateReview()
		}
		return nil, apperror.InternalError(fmt.Errorf("create review: %w", err))
	}

	s.log.Info().
		Str("review_id", review.ID.String()).
		Str("task_id", req.TaskID.String()).
		Int("rating", req.Rating).
		Msg("review submitted")

	return review, nil
}

// AverageFor returns 0/0 for a user without reviews.
func (s *ReviewServiceImpl) AverageFor(ctx context.Context, userID uuid.UUID) (domain.RatingSummary, error) {
	summary, err := s.reviewRepo.SummaryFor(ctx, userID)
	if err != nil {
		return domain.RatingSummary{}, apperror.InternalError(fmt.Errorf("rating summary: %w", err))
	}
	return summary, nil
}

func (s *ReviewServiceImpl) ListFor(ctx context.Context, userID uuid.UUID) ([]domain.Review, error) {
	reviews, err := s.reviewRepo.ListByReviewee(ctx, userID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list reviews: %w", err))
	}
	if reviews == nil {
		reviews = []domain.Review{}
	}
	return reviews, nil
}

func (s *ReviewServiceImpl) Delete(ctx context.Context, id uuid.UUID) error {
	deleted, err := s.reviewRepo.Delete(ctx, id)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("delete review: %w", err))
	}
	if !deleted {
		return apperror.ErrNotFound("review")
	}
	s.log.Info().Str("review_id", id.String()).Msg("review deleted")
	return nil
}
