package postgres

import (
	"context"
	"testing"
	"time"

	"runnerhub/internal/core/domain"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPayment() *domain.Payment {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &domain.Payment{
		ID:        uuid.New(),
		TaskID:    uuid.New(),
		ClientID:  uuid.New(),
		Amount:    decimal.RequireFromString("249.99"),
		Status:    domain.PaymentStatusPending,
		Reference: "TASK-1-1700000000000",
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestPaymentRepo_CreateAndGet(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPaymentRepo(mock)
	p := newTestPayment()

	mock.ExpectExec("INSERT INTO payments").
		WithArgs(p.ID, p.TaskID, p.ClientID, p.Amount, p.Status, p.Reference, p.PayRequestID, p.CreatedAt, p.UpdatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectQuery("SELECT .+ FROM payments WHERE reference").
		WithArgs(p.Reference).
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "task_id", "client_id", "amount", "status", "reference", "pay_request_id", "created_at", "updated_at",
		}).AddRow(p.ID, p.TaskID, p.ClientID, p.Amount, p.Status, p.Reference, p.PayRequestID, p.CreatedAt, p.UpdatedAt))

	require.NoError(t, repo.Create(context.Background(), p))

	result, err := repo.GetByReference(context.Background(), p.Reference)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, domain.PaymentStatusPending, result.Status)
	assert.True(t, p.Amount.Equal(result.Amount))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentRepo_UpdateStatus(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPaymentRepo(mock)
	id := uuid.New()

	mock.ExpectExec("UPDATE payments SET status .+ WHERE id = \\$3 AND status = 'pending'").
		WithArgs(domain.PaymentStatusSuccessful, "PR-1", id).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec("UPDATE payments SET status").
		WithArgs(domain.PaymentStatusFailed, "PR-1", id).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	ok, err := repo.UpdateStatus(context.Background(), id, domain.PaymentStatusSuccessful, "PR-1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.UpdateStatus(context.Background(), id, domain.PaymentStatusFailed, "PR-1")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentRepo_SumSuccessfulSince(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPaymentRepo(mock)
	since := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT COALESCE\\(SUM\\(amount\\), 0\\) FROM payments WHERE status = 'successful' AND updated_at >= \\$1").
		WithArgs(since).
		WillReturnRows(pgxmock.NewRows([]string{"sum"}).AddRow(decimal.NewFromInt(4200)))
	mock.ExpectQuery("SELECT COALESCE\\(SUM\\(amount\\), 0\\) FROM payments WHERE status = 'successful'").
		WillReturnRows(pgxmock.NewRows([]string{"sum"}).AddRow(decimal.NewFromInt(9000)))

	sum, err := repo.SumSuccessfulSince(context.Background(), &since)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(4200).Equal(sum))

	sum, err = repo.SumSuccessfulSince(context.Background(), nil)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(9000).Equal(sum))
	assert.NoError(t, mock.ExpectationsWereMet())
}
