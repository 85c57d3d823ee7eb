package postgres

import (
	"context"
	"testing"
	"time"

	"runnerhub/internal/core/domain"
	"runnerhub/internal/core/ports"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var taskCols = []string{
	"id", "title", "description", "budget", "location_lng", "location_lat", "status", "client_id", "runner_id",
	"created_at", "updated_at", "accepted_at", "completed_at", "cancelled_at", "paid_at",
}

func newTestTask() *domain.Task {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return domain.NewTask(uuid.New(), "Deliver parcel", "Small box", decimal.NewFromInt(100),
		domain.GeoPoint{Lng: 18.4, Lat: -33.9}, now)
}

func taskRow(t *domain.Task) []any {
	return []any{
		t.ID, t.Title, t.Description, t.Budget, t.Location.Lng, t.Location.Lat, t.Status, t.ClientID, t.RunnerID,
		t.CreatedAt, t.UpdatedAt, t.AcceptedAt, t.CompletedAt, t.CancelledAt, t.PaidAt,
	}
}

func TestTaskRepo_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTaskRepo(mock)
	task := newTestTask()

	mock.ExpectExec("INSERT INTO tasks").
		WithArgs(taskRow(task)...).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	assert.NoError(t, repo.Create(context.Background(), task))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskRepo_GetByID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTaskRepo(mock)
	task := newTestTask()
	require.NoError(t, task.Accept(uuid.New(), task.CreatedAt.Add(time.Minute)))

	mock.ExpectQuery("SELECT .+ FROM tasks WHERE id").
		WithArgs(task.ID).
		WillReturnRows(pgxmock.NewRows(taskCols).AddRow(taskRow(task)...))

	result, err := repo.GetByID(context.Background(), task.ID)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, domain.TaskStatusAccepted, result.Status)
	assert.Equal(t, task.RunnerID, result.RunnerID)
	assert.Equal(t, task.Location, result.Location)
	assert.True(t, task.Budget.Equal(result.Budget))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskRepo_GetByID_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTaskRepo(mock)
	id := uuid.New()

	mock.ExpectQuery("SELECT .+ FROM tasks WHERE id").
		WithArgs(id).
		WillReturnRows(pgxmock.NewRows(taskCols))

	result, err := repo.GetByID(context.Background(), id)
	assert.NoError(t, err)
	assert.Nil(t, result)
}

func TestTaskRepo_Transition(t *testing.T) {
	tests := []struct {
		name     string
		affected int64
		want     bool
	}{
		{"applied", 1, true},
		{"lost race", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err)
			defer mock.Close()

			repo := NewTaskRepo(mock)
			task := newTestTask()
			require.NoError(t, task.Accept(uuid.New(), task.CreatedAt))

			mock.ExpectBegin()
			mock.ExpectExec("UPDATE tasks SET status .+ WHERE id = \\$8 AND status = \\$9").
				WithArgs(task.Status, task.RunnerID, task.UpdatedAt,
					task.AcceptedAt, task.CompletedAt, task.CancelledAt, task.PaidAt,
					task.ID, domain.TaskStatusPosted).
				WillReturnResult(pgxmock.NewResult("UPDATE", tt.affected))

			tx, err := mock.Begin(context.Background())
			require.NoError(t, err)

			ok, err := repo.Transition(context.Background(), tx, task, domain.TaskStatusPosted)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ok)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestTaskRepo_List_ByStatus(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTaskRepo(mock)
	status := domain.TaskStatusPosted
	task := newTestTask()

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM tasks WHERE status = \\$1").
		WithArgs(status).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(1)))
	mock.ExpectQuery("SELECT .+ FROM tasks WHERE status = \\$1 ORDER BY created_at DESC, id LIMIT \\$2 OFFSET \\$3").
		WithArgs(status, 20, 0).
		WillReturnRows(pgxmock.NewRows(taskCols).AddRow(taskRow(task)...))

	tasks, total, err := repo.List(context.Background(), ports.TaskListParams{Status: &status, Page: 1, PageSize: 20})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, tasks, 1)
	assert.Equal(t, task.ID, tasks[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskRepo_CountActiveByRunner(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTaskRepo(mock)
	runnerID := uuid.New()

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM tasks WHERE runner_id = \\$1 AND status = \\$2").
		WithArgs(runnerID, domain.TaskStatusAccepted).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(3)))

	n, err := repo.CountActiveByRunner(context.Background(), runnerID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

func TestTaskRepo_CountByStatusAndSince(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTaskRepo(mock)
	since := time.Date(2026, 10, 12, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT status, COUNT\\(\\*\\) FROM tasks GROUP BY status").
		WillReturnRows(pgxmock.NewRows([]string{"status", "count"}).
			AddRow(domain.TaskStatusPosted, int64(2)).
			AddRow(domain.TaskStatusPaid, int64(5)))
	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM tasks WHERE created_at >= \\$1").
		WithArgs(since).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(9)))

	counts, err := repo.CountByStatus(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), counts[domain.TaskStatusPosted])
	assert.Equal(t, int64(5), counts[domain.TaskStatusPaid])

	n, err := repo.CountCreatedSince(context.Background(), since)
	require.NoError(t, err)
	assert.Equal(t, int64(9), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}
