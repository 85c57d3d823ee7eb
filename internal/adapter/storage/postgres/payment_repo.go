package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"runnerhub/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const paymentColumns = `id, task_id, client_id, amount, status, reference, pay_request_id, created_at, updated_at`

// PaymentRepo implements ports.PaymentRepository.
type PaymentRepo struct {
	pool Pool
}

func NewPaymentRepo(pool Pool) *PaymentRepo {
	return &PaymentRepo{pool: pool}
}

func (r *PaymentRepo) Create(ctx context.Context, p *domain.Payment) error {
	query := `INSERT INTO payments (` + paymentColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.pool.Exec(ctx, query,
		p.ID, p.TaskID, p.ClientID, p.Amount, p.Status, p.Reference, p.PayRequestID, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return wrapWriteErr("insert payment", err)
	}
	return nil
}

func (r *PaymentRepo) GetByReference(ctx context.Context, reference string) (*domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE reference = $1`

	p := &domain.Payment{}
	err := r.pool.QueryRow(ctx, query, reference).Scan(
		&p.ID, &p.TaskID, &p.ClientID, &p.Amount, &p.Status, &p.Reference, &p.PayRequestID, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get payment by reference: %w", err)
	}
	return p, nil
}

// UpdateStatus moves a pending payment to its final status.
func (r *PaymentRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.PaymentStatus, payRequestID string) (bool, error) {
	query := `UPDATE payments SET status = $1, pay_request_id = $2, updated_at = NOW()
		WHERE id = $3 AND status = 'pending'`

	tag, err := r.pool.Exec(ctx, query, status, payRequestID, id)
	if err != nil {
		return false, fmt.Errorf("update payment status: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// SumSuccessfulSince totals successful payments settled at or after since
// (all time when since is nil).
func (r *PaymentRepo) SumSuccessfulSince(ctx context.Context, since *time.Time) (decimal.Decimal, error) {
	query := `SELECT COALESCE(SUM(amount), 0) FROM payments WHERE status = 'successful'`
	var args []any
	if since != nil {
		query += ` AND updated_at >= $1`
		args = append(args, *since)
	}

	var sum decimal.Decimal
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&sum); err != nil {
		return decimal.Zero, fmt.Errorf("sum successful payments: %w", err)
	}
	return sum, nil
}
