package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"runnerhub/internal/core/domain"
	"runnerhub/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const taskColumns = `id, title, description, budget, location_lng, location_lat, status, client_id, runner_id,
	created_at, updated_at, accepted_at, completed_at, cancelled_at, paid_at`

// TaskRepo implements ports.TaskRepository.
type TaskRepo struct {
	pool Pool
}

// NewTaskRepo creates a new TaskRepo.
func NewTaskRepo(pool Pool) *TaskRepo {
	return &TaskRepo{pool: pool}
}

// Create inserts a freshly posted task.
func (r *TaskRepo) Create(ctx context.Context, t *domain.Task) error {
	query := `INSERT INTO tasks (` + taskColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`

	_, err := r.pool.Exec(ctx, query,
		t.ID, t.Title, t.Description, t.Budget, t.Location.Lng, t.Location.Lat,
		t.Status, t.ClientID, t.RunnerID, t.CreatedAt, t.UpdatedAt,
		t.AcceptedAt, t.CompletedAt, t.CancelledAt, t.PaidAt,
	)
	if err != nil {
		return fmt.Errorf("insert task: %w", err)
	}
	return nil
}

// GetByID fetches a task by UUID.
func (r *TaskRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`

	t, err := scanTask(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get task by id: %w", err)
	}
	return t, nil
}

// Transition is a compare-and-set on status: the row is written only while
// it still holds from.
func (r *TaskRepo) Transition(ctx context.Context, tx pgx.Tx, t *domain.Task, from domain.TaskStatus) (bool, error) {
	query := `UPDATE tasks SET status = $1, runner_id = $2, updated_at = $3,
		accepted_at = $4, completed_at = $5, cancelled_at = $6, paid_at = $7
		WHERE id = $8 AND status = $9`

	tag, err := tx.Exec(ctx, query,
		t.Status, t.RunnerID, t.UpdatedAt,
		t.AcceptedAt, t.CompletedAt, t.CancelledAt, t.PaidAt,
		t.ID, from,
	)
	if err != nil {
		return false, fmt.Errorf("transition task: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// List fetches tasks with filtering and pagination, newest first.
func (r *TaskRepo) List(ctx context.Context, params ports.TaskListParams) ([]domain.Task, int64, error) {
	var conditions []string
	var args []any
	argIdx := 1

	if params.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argIdx))
		args = append(args, *params.Status)
		argIdx++
	}
	if params.ClientID != nil {
		conditions = append(conditions, fmt.Sprintf("client_id = $%d", argIdx))
		args = append(args, *params.ClientID)
		argIdx++
	}
	if params.RunnerID != nil {
		conditions = append(conditions, fmt.Sprintf("runner_id = $%d", argIdx))
		args = append(args, *params.RunnerID)
		argIdx++
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	var total int64
	if err := r.pool.QueryRow(ctx, fmt.Sprintf("SELECT COUNT(*) FROM tasks %s", where), args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count tasks: %w", err)
	}

	limit, offset := pageOffset(params.Page, params.PageSize)
	dataQuery := fmt.Sprintf(`SELECT %s FROM tasks %s ORDER BY created_at DESC, id LIMIT $%d OFFSET $%d`,
		taskColumns, where, argIdx, argIdx+1)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, dataQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	tasks := make([]domain.Task, 0)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan task row: %w", err)
		}
		tasks = append(tasks, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate task rows: %w", err)
	}
	return tasks, total, nil
}

// CountActiveByRunner counts the runner's tasks in accepted status.
func (r *TaskRepo) CountActiveByRunner(ctx context.Context, runnerID uuid.UUID) (int64, error) {
	query := `SELECT COUNT(*) FROM tasks WHERE runner_id = $1 AND status = $2`

	var n int64
	if err := r.pool.QueryRow(ctx, query, runnerID, domain.TaskStatusAccepted).Scan(&n); err != nil {
		return 0, fmt.Errorf("count active tasks: %w", err)
	}
	return n, nil
}

func (r *TaskRepo) CountByStatus(ctx context.Context) (map[domain.TaskStatus]int64, error) {
	rows, err := r.pool.Query(ctx, `SELECT status, COUNT(*) FROM tasks GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("count tasks by status: %w", err)
	}
	defer rows.Close()

	counts := make(map[domain.TaskStatus]int64)
	for rows.Next() {
		var status domain.TaskStatus
		var n int64
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("scan status count: %w", err)
		}
		counts[status] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate status counts: %w", err)
	}
	return counts, nil
}

// CountCreatedSince counts tasks posted at or after since.
func (r *TaskRepo) CountCreatedSince(ctx context.Context, since time.Time) (int64, error) {
	var n int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM tasks WHERE created_at >= $1`, since).Scan(&n); err != nil {
		return 0, fmt.Errorf("count tasks since: %w", err)
	}
	return n, nil
}

func scanTask(row rowScanner) (*domain.Task, error) {
	t := &domain.Task{}
	err := row.Scan(
		&t.ID, &t.Title, &t.Description, &t.Budget, &t.Location.Lng, &t.Location.Lat,
		&t.Status, &t.ClientID, &t.RunnerID, &t.CreatedAt, &t.UpdatedAt,
		&t.AcceptedAt, &t.CompletedAt, &t.CancelledAt, &t.PaidAt,
	)
	if err != nil {
		return nil, err
	}
	return t, nil
}
