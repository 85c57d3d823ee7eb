package ports

import (
	"context"
	"errors"
	"time"

	"runnerhub/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// ErrDuplicate is wrapped by repositories when a unique constraint rejects a write.
var ErrDuplicate = errors.New("duplicate record")

// UserRepository defines persistence operations for users.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, name string) error
	UpdateLocation(ctx context.Context, id uuid.UUID, loc domain.GeoPoint) error
	// ListByRole returns users ordered by created_at, id so callers get a stable order.
	ListByRole(ctx context.Context, role domain.Role) ([]domain.User, error)
	CountByRole(ctx context.Context) (map[domain.Role]int64, error)
}

// TaskRepository defines persistence operations for tasks.
type TaskRepository interface {
	Create(ctx context.Context, task *domain.Task) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error)
	// Transition writes the task's lifecycle fields only if the stored status
	// still equals from. It reports false when another writer got there first.
	Transition(ctx context.Context, tx pgx.Tx, task *domain.Task, from domain.TaskStatus) (bool, error)
	List(ctx context.Context, params TaskListParams) ([]domain.Task, int64, error)
	CountActiveByRunner(ctx context.Context, runnerID uuid.UUID) (int64, error)
	CountByStatus(ctx context.Context) (map[domain.TaskStatus]int64, error)
	CountCreatedSince(ctx context.Context, since time.Time) (int64, error)
}

// TaskListParams holds filter + pagination for listing tasks.
type TaskListParams struct {
	Status   *domain.TaskStatus
	ClientID *uuid.UUID
	RunnerID *uuid.UUID
	Page     int
	PageSize int
}

// WalletRepository defines persistence operations for wallets.
// Methods accepting pgx.Tx are used inside transaction blocks for pessimistic locking.
type WalletRepository interface {
	// Create inserts the wallet unless the user already has one.
	Create(ctx context.Context, tx pgx.Tx, wallet *domain.Wallet) error
	GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Wallet, error)
	GetByUserIDForUpdate(ctx context.Context, tx pgx.Tx, userID uuid.UUID) (*domain.Wallet, error)
	UpdateBalance(ctx context.Context, tx pgx.Tx, walletID uuid.UUID, balance decimal.Decimal) error
	AppendEntry(ctx context.Context, tx pgx.Tx, entry *domain.WalletEntry) error
	ListEntries(ctx context.Context, walletID uuid.UUID) ([]domain.WalletEntry, error)
}

// TransactionRepository defines persistence for the audit trail.
type TransactionRepository interface {
	Create(ctx context.Context, tx pgx.Tx, transaction *domain.Transaction) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Transaction, error)
	List(ctx context.Context, params TransactionListParams) ([]domain.Transaction, int64, error)
	TotalsByType(ctx context.Context, since *time.Time) (map[domain.TransactionType]decimal.Decimal, error)
}

// TransactionListParams holds filter + pagination for listing transactions.
type TransactionListParams struct {
	UserID   *uuid.UUID
	Type     *domain.TransactionType
	From     *time.Time
	To       *time.Time
	Page     int
	PageSize int
}

// ReviewRepository defines persistence operations for reviews.
type ReviewRepository interface {
	Create(ctx context.Context, review *domain.Review) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Review, error)
	Exists(ctx context.Context, taskID, reviewerID uuid.UUID) (bool, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
	ListByReviewee(ctx context.Context, revieweeID uuid.UUID) ([]domain.Review, error)
	SummaryFor(ctx context.Context, revieweeID uuid.UUID) (domain.RatingSummary, error)
}

// PaymentRepository defines persistence operations for gateway payments.
type PaymentRepository interface {
	Create(ctx context.Context, payment *domain.Payment) error
	GetByReference(ctx context.Context, reference string) (*domain.Payment, error)
	// UpdateStatus finalizes a pending payment. It reports false if the
	// payment was no longer pending.
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.PaymentStatus, payRequestID string) (bool, error)
	SumSuccessfulSince(ctx context.Context, since *time.Time) (decimal.Decimal, error)
}

// AuditRepository persists audit logs.
type AuditRepository interface {
	Create(ctx context.Context, entry *domain.AuditLog) error
}

// DBTransactor provides database transaction management.
type DBTransactor interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}
