package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"runnerhub/internal/core/domain"
	"runnerhub/internal/core/ports"
	"runnerhub/internal/core/ports/mocks"
	"runnerhub/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type taskTestDeps struct {
	svc        *TaskServiceImpl
	taskRepo   *mocks.MockTaskRepository
	ledger     *mocks.MockLedgerService
	transactor *mocks.MockDBTransactor
	notifier   *mocks.MockNotifier
}

func setupTaskService(t *testing.T) *taskTestDeps {
	ctrl := gomock.NewController(t)
	d := &taskTestDeps{
		taskRepo:   mocks.NewMockTaskRepository(ctrl),
		ledger:     mocks.NewMockLedgerService(ctrl),
		transactor: mocks.NewMockDBTransactor(ctrl),
		notifier:   mocks.NewMockNotifier(ctrl),
	}
	d.svc = NewTaskService(d.taskRepo, d.ledger, d.transactor, d.notifier, newTestLogger())
	return d
}

func taskIn(status domain.TaskStatus, runnerID *uuid.UUID) *domain.Task {
	task := domain.NewTask(uuid.New(), "Buy groceries", "", dec("100"), domain.GeoPoint{Lng: 1, Lat: 1}, time.Now().UTC())
	task.Status = status
	task.RunnerID = runnerID
	return task
}

func TestTaskService_Post(t *testing.T) {
	d := setupTaskService(t)
	ctx := context.Background()
	clientID := uuid.New()

	d.taskRepo.EXPECT().Create(ctx, gomock.Any()).Return(nil)

	task, err := d.svc.Post(ctx, ports.PostTaskRequest{
		ClientID: clientID, Title: " Walk the dog ", Budget: dec("80"), Location: domain.GeoPoint{Lng: 18.4, Lat: -33.9},
	})
	require.NoError(t, err)
	assert.Equal(t, domain.TaskStatusPosted, task.Status)
	assert.Equal(t, "Walk the dog", task.Title)
	assert.Equal(t, clientID, task.ClientID)
	assert.Nil(t, task.RunnerID)
}

func TestTaskService_Post_Validation(t *testing.T) {
	tests := []struct {
		name string
		req  ports.PostTaskRequest
	}{
		{"empty title", ports.PostTaskRequest{Budget: dec("1")}},
		{"zero budget", ports.PostTaskRequest{Title: "x", Budget: dec("0")}},
		{"sub-cent budget", ports.PostTaskRequest{Title: "x", Budget: dec("0.001")}},
		{"budget over column range", ports.PostTaskRequest{Title: "x", Budget: dec("1000000000000")}},
		{"bad location", ports.PostTaskRequest{Title: "x", Budget: dec("1"), Location: domain.GeoPoint{Lng: 200}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := setupTaskService(t)
			_, err := d.svc.Post(context.Background(), tt.req)
			assertAppError(t, err, "VAL_001")
		})
	}
}

func TestTaskService_Accept(t *testing.T) {
	d := setupTaskService(t)
	ctx := context.Background()
	tx := &mockTx{}
	runnerID := uuid.New()
	task := taskIn(domain.TaskStatusPosted, nil)

	d.taskRepo.EXPECT().GetByID(ctx, task.ID).Return(task, nil)
	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.taskRepo.EXPECT().Transition(ctx, tx, task, domain.TaskStatusPosted).Return(true, nil)
	d.notifier.EXPECT().Emit(ctx, task.ClientID.String(), "taskAccepted", task).Return(nil)

	got, err := d.svc.Accept(ctx, runnerID, task.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TaskStatusAccepted, got.Status)
	assert.Equal(t, runnerID, *got.RunnerID)
	assert.NotNil(t, got.AcceptedAt)
	assert.True(t, tx.committed)
}

func TestTaskService_Accept_NotAvailable(t *testing.T) {
	ctx := context.Background()

	t.Run("already accepted", func(t *testing.T) {
		d := setupTaskService(t)
		other := uuid.New()
		task := taskIn(domain.TaskStatusAccepted, &other)
		d.taskRepo.EXPECT().GetByID(ctx, task.ID).Return(task, nil)

		_, err := d.svc.Accept(ctx, uuid.New(), task.ID)
		assertAppError(t, err, "TASK_001")
	})

	t.Run("lost race", func(t *testing.T) {
		d := setupTaskService(t)
		task := taskIn(domain.TaskStatusPosted, nil)
		tx := &mockTx{}
		d.taskRepo.EXPECT().GetByID(ctx, task.ID).Return(task, nil)
		d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
		d.taskRepo.EXPECT().Transition(ctx, tx, gomock.Any(), domain.TaskStatusPosted).Return(false, nil)

		_, err := d.svc.Accept(ctx, uuid.New(), task.ID)
		assertAppError(t, err, "TASK_001")
		assert.False(t, tx.committed)
	})

	t.Run("missing task", func(t *testing.T) {
		d := setupTaskService(t)
		id := uuid.New()
		d.taskRepo.EXPECT().GetByID(ctx, id).Return(nil, nil)

		_, err := d.svc.Accept(ctx, uuid.New(), id)
		assertAppError(t, err, "RES_001")
	})
}

func TestTaskService_Complete_CreditsRunnerInSameTx(t *testing.T) {
	d := setupTaskService(t)
	ctx := context.Background()
	tx := &mockTx{}
	runnerID := uuid.New()
	task := taskIn(domain.TaskStatusAccepted, &runnerID)

	d.taskRepo.EXPECT().GetByID(ctx, task.ID).Return(task, nil)
	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.taskRepo.EXPECT().Transition(ctx, tx, task, domain.TaskStatusAccepted).Return(true, nil)
	d.ledger.EXPECT().CreditTx(ctx, tx, gomock.Any()).DoAndReturn(
		func(_ context.Context, _ pgx.Tx, req ports.LedgerRequest) (*ports.LedgerResult, error) {
			assert.Equal(t, runnerID, req.UserID)
			assert.Equal(t, domain.EntryTypeEarning, req.Type)
			assert.True(t, dec("100").Equal(req.Amount))
			require.NotNil(t, req.Reference)
			assert.Equal(t, "TASK-"+task.ID.String(), *req.Reference)
			return &ports.LedgerResult{Balance: dec("100")}, nil
		})
	d.notifier.EXPECT().Emit(ctx, task.ClientID.String(), "taskCompleted", task).Return(errors.New("redis down"))

	got, err := d.svc.Complete(ctx, runnerID, task.ID)
	require.NoError(t, err, "notification failures do not fail the request")
	assert.Equal(t, domain.TaskStatusCompleted, got.Status)
	assert.NotNil(t, got.CompletedAt)
	assert.True(t, tx.committed)
}

func TestTaskService_Complete_LedgerFailureRollsBack(t *testing.T) {
	d := setupTaskService(t)
	ctx := context.Background()
	tx := &mockTx{}
	runnerID := uuid.New()
	task := taskIn(domain.TaskStatusAccepted, &runnerID)

	d.taskRepo.EXPECT().GetByID(ctx, task.ID).Return(task, nil)
	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.taskRepo.EXPECT().Transition(ctx, tx, task, domain.TaskStatusAccepted).Return(true, nil)
	d.ledger.EXPECT().CreditTx(ctx, tx, gomock.Any()).Return(nil, apperror.InternalError(errors.New("boom")))

	_, err := d.svc.Complete(ctx, runnerID, task.ID)
	assertAppError(t, err, "SYS_001")
	assert.False(t, tx.committed)
}

func TestTaskService_Complete_NotInProgress(t *testing.T) {
	ctx := context.Background()
	runnerID := uuid.New()

	cases := map[string]*domain.Task{
		"posted":       taskIn(domain.TaskStatusPosted, nil),
		"other runner": taskIn(domain.TaskStatusAccepted, func() *uuid.UUID { id := uuid.New(); return &id }()),
		"completed":    taskIn(domain.TaskStatusCompleted, &runnerID),
	}
	for name, task := range cases {
		t.Run(name, func(t *testing.T) {
			d := setupTaskService(t)
			d.taskRepo.EXPECT().GetByID(ctx, task.ID).Return(task, nil)

			_, err := d.svc.Complete(ctx, runnerID, task.ID)
			assertAppError(t, err, "TASK_002")
		})
	}
}

func TestTaskService_Cancel(t *testing.T) {
	ctx := context.Background()

	t.Run("owner cancels posted task", func(t *testing.T) {
		d := setupTaskService(t)
		tx := &mockTx{}
		task := taskIn(domain.TaskStatusPosted, nil)
		d.taskRepo.EXPECT().GetByID(ctx, task.ID).Return(task, nil)
		d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
		d.taskRepo.EXPECT().Transition(ctx, tx, task, domain.TaskStatusPosted).Return(true, nil)

		got, err := d.svc.Cancel(ctx, ports.Actor{UserID: task.ClientID, Role: domain.RoleClient}, task.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.TaskStatusCancelled, got.Status)
		assert.NotNil(t, got.CancelledAt)
	})

	t.Run("admin cancels accepted task", func(t *testing.T) {
		d := setupTaskService(t)
		tx := &mockTx{}
		runnerID := uuid.New()
		task := taskIn(domain.TaskStatusAccepted, &runnerID)
		d.taskRepo.EXPECT().GetByID(ctx, task.ID).Return(task, nil)
		d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
		d.taskRepo.EXPECT().Transition(ctx, tx, task, domain.TaskStatusAccepted).Return(true, nil)

		got, err := d.svc.Cancel(ctx, ports.Actor{UserID: uuid.New(), Role: domain.RoleAdmin}, task.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.TaskStatusCancelled, got.Status)
		assert.Equal(t, runnerID, *got.RunnerID)
	})

	t.Run("another client is forbidden", func(t *testing.T) {
		d := setupTaskService(t)
		task := taskIn(domain.TaskStatusPosted, nil)
		d.taskRepo.EXPECT().GetByID(ctx, task.ID).Return(task, nil)

		_, err := d.svc.Cancel(ctx, ports.Actor{UserID: uuid.New(), Role: domain.RoleClient}, task.ID)
		assertAppError(t, err, "AUTH_004")
	})

	for _, status := range []domain.TaskStatus{domain.TaskStatusCompleted, domain.TaskStatusPaid} {
		t.Run("refused when "+string(status), func(t *testing.T) {
			d := setupTaskService(t)
			task := taskIn(status, nil)
			d.taskRepo.EXPECT().GetByID(ctx, task.ID).Return(task, nil)

			_, err := d.svc.Cancel(ctx, ports.Actor{UserID: task.ClientID, Role: domain.RoleClient}, task.ID)
			assertAppError(t, err, "TASK_003")
		})
	}

	t.Run("already cancelled", func(t *testing.T) {
		d := setupTaskService(t)
		task := taskIn(domain.TaskStatusCancelled, nil)
		d.taskRepo.EXPECT().GetByID(ctx, task.ID).Return(task, nil)

		_, err := d.svc.Cancel(ctx, ports.Actor{UserID: task.ClientID, Role: domain.RoleClient}, task.ID)
		assertAppError(t, err, "TASK_001")
	})

	t.Run("completed concurrently", func(t *testing.T) {
		d := setupTaskService(t)
		tx := &mockTx{}
		runnerID := uuid.New()
		task := taskIn(domain.TaskStatusAccepted, &runnerID)
		completed := *task
		completed.Status = domain.TaskStatusCompleted

		d.taskRepo.EXPECT().GetByID(ctx, task.ID).Return(task, nil)
		d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
		d.taskRepo.EXPECT().Transition(ctx, tx, task, domain.TaskStatusAccepted).Return(false, nil)
		d.taskRepo.EXPECT().GetByID(ctx, task.ID).Return(&completed, nil)

		_, err := d.svc.Cancel(ctx, ports.Actor{UserID: task.ClientID, Role: domain.RoleClient}, task.ID)
		assertAppError(t, err, "TASK_003")
	})
}

func TestTaskService_MarkPaid(t *testing.T) {
	ctx := context.Background()
	runnerID := uuid.New()

	t.Run("completed task", func(t *testing.T) {
		d := setupTaskService(t)
		tx := &mockTx{}
		task := taskIn(domain.TaskStatusCompleted, &runnerID)
		d.taskRepo.EXPECT().GetByID(ctx, task.ID).Return(task, nil)
		d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
		d.taskRepo.EXPECT().Transition(ctx, tx, task, domain.TaskStatusCompleted).Return(true, nil)

		got, err := d.svc.MarkPaid(ctx, task.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.TaskStatusPaid, got.Status)
		assert.NotNil(t, got.PaidAt)
	})

	t.Run("accepted task", func(t *testing.T) {
		d := setupTaskService(t)
		task := taskIn(domain.TaskStatusAccepted, &runnerID)
		d.taskRepo.EXPECT().GetByID(ctx, task.ID).Return(task, nil)

		_, err := d.svc.MarkPaid(ctx, task.ID)
		assertAppError(t, err, "TASK_004")
	})
}

func TestTaskService_List(t *testing.T) {
	d := setupTaskService(t)
	ctx := context.Background()
	status := domain.TaskStatusPosted
	params := ports.TaskListParams{Status: &status, Page: 1, PageSize: 10}

	d.taskRepo.EXPECT().List(ctx, params).Return([]domain.Task{*taskIn(status, nil)}, int64(1), nil)

	tasks, total, err := d.svc.List(ctx, params)
	require.NoError(t, err)
	assert.Len(t, tasks, 1)
	assert.Equal(t, int64(1), total)
}
