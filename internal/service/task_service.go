package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"runnerhub/internal/core/domain"
	"runnerhub/internal/core/ports"
	"runnerhub/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const maxTitleLength = 200

// TaskServiceImpl implements ports.TaskService.
type TaskServiceImpl struct {
	taskRepo   ports.TaskRepository
	ledger     ports.LedgerService
	transactor ports.DBTransactor
	notifier   ports.Notifier
	log        zerolog.Logger
	now        func() time.Time
}

// NewTaskService creates a new TaskServiceImpl. notifier may be nil.
func NewTaskService(
	taskRepo ports.TaskRepository,
	ledger ports.LedgerService,
	transactor ports.DBTransactor,
	notifier ports.Notifier,
	log zerolog.Logger,
) *TaskServiceImpl {
	return &TaskServiceImpl{
		taskRepo:   taskRepo,
		ledger:     ledger,
		transactor: transactor,
		notifier:   notifier,
		log:        log,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Post creates a task in the posted state.
func (s *TaskServiceImpl) Post(ctx context.Context, req ports.PostTaskRequest) (*domain.Task, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" || len(title) > maxTitleLength {
		return nil, apperror.Validation(fmt.Sprintf("title must be 1-%d characters", maxTitleLength))
	}
	if err := checkMoney("budget", req.Budget); err != nil {
		return nil, err
	}
	if !req.Location.Valid() {
		return nil, apperror.Validation("location is out of range")
	}

	task := domain.NewTask(req.ClientID, title, strings.TrimSpace(req.Description), req.Budget, req.Location, s.now())
	if err := s.taskRepo.Create(ctx, task); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create task: %w", err))
	}

	s.log.Info().
		Str("task_id", task.ID.String()).
		Str("client_id", req.ClientID.String()).
		Str("budget", req.Budget.String()).
		Msg("task posted")

	return task, nil
}

func (s *TaskServiceImpl) Get(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	return s.load(ctx, id)
}

func (s *TaskServiceImpl) List(ctx context.Context, params ports.TaskListParams) ([]domain.Task, int64, error) {
	tasks, total, err := s.taskRepo.List(ctx, params)
	if err != nil {
		return nil, 0, apperror.InternalError(fmt.Errorf("list tasks: %w", err))
	}
	return tasks, total, nil
}

// Accept assigns runnerID to a posted task.
func (s *TaskServiceImpl) Accept(ctx context.Context, runnerID, taskID uuid.UUID) (*domain.Task, error) {
	task, err := s.load(ctx, taskID)
	if err != nil {
		return nil, err
	}

	from := task.Status
	if err := task.Accept(runnerID, s.now()); err != nil {
		return nil, apperror.ErrTaskNotAvailable()
	}

	if err := s.commitTransition(ctx, task, from, apperror.ErrTaskNotAvailable); err != nil {
		return nil, err
	}

	s.log.Info().Str("task_id", task.ID.String()).Str("runner_id", runnerID.String()).Msg("task accepted")
	s.notify(ctx, task.ClientID.String(), "taskAccepted", task)
	return task, nil
}

// Complete finishes an accepted task and credits the runner with the budget
// in the same database transaction.
func (s *TaskServiceImpl) Complete(ctx context.Context, runnerID, taskID uuid.UUID) (*domain.Task, error) {
	task, err := s.load(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if !task.IsAssignedTo(runnerID) {
		return nil, apperror.ErrTaskNotInProgress()
	}
	if err := task.Complete(s.now()); err != nil {
		return nil, apperror.ErrTaskNotInProgress()
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	ok, err := s.taskRepo.Transition(ctx, dbTx, task, domain.TaskStatusAccepted)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("transition task: %w", err))
	}
	if !ok {
		return nil, apperror.ErrTaskNotInProgress()
	}

	ref := domain.TaskReference(task.ID)
	if _, err := s.ledger.CreditTx(ctx, dbTx, ports.LedgerRequest{
		UserID:    runnerID,
		Amount:    task.Budget,
		Type:      domain.EntryTypeEarning,
		Reference: &ref,
	}); err != nil {
		return nil, err
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Info().
		Str("task_id", task.ID.String()).
		Str("runner_id", runnerID.String()).
		Str("earned", task.Budget.String()).
		Msg("task completed")
	s.notify(ctx, task.ClientID.String(), "taskCompleted", task)
	return task, nil
}

// Cancel is allowed for the owning client or an admin while the task is
// posted or accepted.
func (s *TaskServiceImpl) Cancel(ctx context.Context, actor ports.Actor, taskID uuid.UUID) (*domain.Task, error) {
	task, err := s.load(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task.ClientID != actor.UserID && !actor.Role.IsAdmin() {
		return nil, apperror.ErrForbidden()
	}

	from := task.Status
	if err := task.Cancel(s.now()); err != nil {
		return nil, cancelError(from)
	}

	if err := s.commitTransition(ctx, task, from, func() *apperror.AppError {
		current, err := s.taskRepo.GetByID(ctx, taskID)
		if err != nil || current == nil {
			return apperror.ErrTaskNotAvailable()
		}
		return cancelError(current.Status)
	}); err != nil {
		return nil, err
	}

	s.log.Info().Str("task_id", task.ID.String()).Str("by", actor.UserID.String()).Msg("task cancelled")
	return task, nil
}

// MarkPaid closes a completed task.
func (s *TaskServiceImpl) MarkPaid(ctx context.Context, taskID uuid.UUID) (*domain.Task, error) {
	task, err := s.load(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if err := task.MarkPaid(s.now()); err != nil {
		return nil, apperror.ErrTaskNotCompleted()
	}

	if err := s.commitTransition(ctx, task, domain.TaskStatusCompleted, apperror.ErrTaskNotCompleted); err != nil {
		return nil, err
	}

	s.log.Info().Str("task_id", task.ID.String()).Msg("task marked paid")
	return task, nil
}

func (s *TaskServiceImpl) load(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	task, err := s.taskRepo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get task: %w", err))
	}
	if task == nil {
		return nil, apperror.ErrNotFound("task")
	}
	return task, nil
}

// commitTransition persists task in its own transaction. lost builds the
// error returned when another request moved the task first.
func (s *TaskServiceImpl) commitTransition(ctx context.Context, task *domain.Task, from domain.TaskStatus, lost func() *apperror.AppError) error {
	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	ok, err := s.taskRepo.Transition(ctx, dbTx, task, from)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("transition task: %w", err))
	}
	if !ok {
		return lost()
	}

	if err := dbTx.Commit(ctx); err != nil {
		return apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}
	return nil
}

func (s *TaskServiceImpl) notify(ctx context.Context, target, event string, task *domain.Task) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Emit(ctx, target, event, task); err != nil {
		s.log.Warn().Err(err).Str("event", event).Str("task_id", task.ID.String()).Msg("notification failed")
	}
}

func cancelError(status domain.TaskStatus) *apperror.AppError {
	if status == domain.TaskStatusCompleted || status == domain.TaskStatusPaid {
		return apperror.ErrCannotCancelCompleted()
	}
	return apperror.ErrTaskNotAvailable()
}
