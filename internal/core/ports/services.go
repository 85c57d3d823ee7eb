package ports

import (
	"context"
	"time"

	"runnerhub/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// Actor is the authenticated caller of a service operation.
type Actor struct {
	UserID uuid.UUID
	Role   domain.Role
}

// --- Auth & users ---

// AuthService defines signup and login.
type AuthService interface {
	Signup(ctx context.Context, req SignupRequest) (*domain.User, error)
	Login(ctx context.Context, email, password string) (string, time.Time, error) // token, expiry, error
}

// SignupRequest holds input for account creation.
type SignupRequest struct {
	Name     string
	Email    string
	Password string
	Role     domain.Role
}

// UserService exposes the caller's own profile.
type UserService interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (*domain.User, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, update ProfileUpdate) (*domain.User, error)
	UpdateLocation(ctx context.Context, userID uuid.UUID, loc domain.GeoPoint) (*domain.User, error)
}

// ProfileUpdate is the allow-list of user-editable profile fields.
type ProfileUpdate struct {
	Name *string
}

// --- Ledger ---

// LedgerService mutates wallets. Credit and Debit own their database
// transaction; the Tx variants join the caller's.
type LedgerService interface {
	Credit(ctx context.Context, req LedgerRequest) (*LedgerResult, error)
	Debit(ctx context.Context, req LedgerRequest) (*LedgerResult, error)
	CreditTx(ctx context.Context, tx pgx.Tx, req LedgerRequest) (*LedgerResult, error)
	DebitTx(ctx context.Context, tx pgx.Tx, req LedgerRequest) (*LedgerResult, error)
	GetWallet(ctx context.Context, userID uuid.UUID) (*WalletView, error)
}

// LedgerRequest describes one ledger mutation.
type LedgerRequest struct {
	UserID         uuid.UUID
	Amount         decimal.Decimal
	Type           domain.EntryType
	Reference      *string
	IdempotencyKey string // optional, ignored by the Tx variants
}

// LedgerResult is the outcome of a credit or debit.
type LedgerResult struct {
	Balance     decimal.Decimal    `json:"balance"`
	Transaction domain.WalletEntry `json:"transaction"`
}

// WalletView is a wallet with its full entry history.
type WalletView struct {
	domain.Wallet
	Entries []domain.WalletEntry `json:"entries"`
}

// --- Tasks ---

// TaskService drives the task lifecycle.
type TaskService interface {
	Post(ctx context.Context, req PostTaskRequest) (*domain.Task, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.Task, error)
	List(ctx context.Context, params TaskListParams) ([]domain.Task, int64, error)
	Accept(ctx context.Context, runnerID, taskID uuid.UUID) (*domain.Task, error)
	Complete(ctx context.Context, runnerID, taskID uuid.UUID) (*domain.Task, error)
	Cancel(ctx context.Context, actor Actor, taskID uuid.UUID) (*domain.Task, error)
	MarkPaid(ctx context.Context, taskID uuid.UUID) (*domain.Task, error)
}

// PostTaskRequest holds validated input for posting a task.
type PostTaskRequest struct {
	ClientID    uuid.UUID
	Title       string
	Description string
	Budget      decimal.Decimal
	Location    domain.GeoPoint
}

// --- Matching ---

// MatchingService picks the best runner for a task.
type MatchingService interface {
	BestRunner(ctx context.Context, taskID uuid.UUID) (*MatchResult, error)
}

// MatchResult is the winning runner with the inputs of its score.
type MatchResult struct {
	Runner     domain.User `json:"runner"`
	Score      float64     `json:"score"`
	AvgRating  float64     `json:"avg_rating"`
	ActiveLoad int64       `json:"active_load"`
	Distance   float64     `json:"distance"`
}

// --- Reviews ---

// ReviewService collects reviews and aggregates ratings.
type ReviewService interface {
	Submit(ctx context.Context, req SubmitReviewRequest) (*domain.Review, error)
	AverageFor(ctx context.Context, userID uuid.UUID) (domain.RatingSummary, error)
	ListFor(ctx context.Context, userID uuid.UUID) ([]domain.Review, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// SubmitReviewRequest holds validated review input.
type SubmitReviewRequest struct {
	ReviewerID uuid.UUID
	TaskID     uuid.UUID
	Rating     int
	Comment    *string
}

// --- Gateway payments ---

// PaymentService handles client payments through the hosted gateway.
type PaymentService interface {
	Initiate(ctx context.Context, req InitiatePaymentRequest) (*InitiatePaymentResult, error)
	Verify(ctx context.Context, cb GatewayCallback) (domain.PaymentStatus, error)
}

// InitiatePaymentRequest holds validated input for starting a payment.
type InitiatePaymentRequest struct {
	ClientID uuid.UUID
	TaskID   uuid.UUID
	Amount   decimal.Decimal
}

// InitiatePaymentResult is the pending payment plus the signed gateway form.
type InitiatePaymentResult struct {
	Payment *domain.Payment          `json:"payment"`
	Payload *GatewayInitiateResponse `json:"payload"`
}

// --- Reporting ---

// ReportingService serves admin reports and transaction listings.
type ReportingService interface {
	GetKPIs(ctx context.Context) (*PlatformKPIs, error)
	GetRevenue(ctx context.Context, period domain.Period) (*RevenueStats, error)
	ListTransactions(ctx context.Context, params TransactionListParams) ([]domain.Transaction, int64, error)
	GetTransaction(ctx context.Context, id uuid.UUID) (*domain.Transaction, error)
}

// PlatformKPIs is the admin dashboard summary.
type PlatformKPIs struct {
	TasksByStatus map[domain.TaskStatus]int64 `json:"tasks_by_status"`
	TotalTasks    int64                       `json:"total_tasks"`
	UsersByRole   map[domain.Role]int64       `json:"users_by_role"`
	TotalRevenue  decimal.Decimal             `json:"total_revenue"`
}

// RevenueStats aggregates money movement since the start of a period.
type RevenueStats struct {
	Period  domain.Period                              `json:"period"`
	Since   time.Time                                  `json:"since"`
	Revenue decimal.Decimal                            `json:"revenue"`
	ByType  map[domain.TransactionType]decimal.Decimal `json:"by_type"`
}

// --- Monitoring & audit ---

// AnalyticsMonitor evaluates the platform thresholds once.
type AnalyticsMonitor interface {
	Check(ctx context.Context) ([]domain.Alert, error)
}

// AuditService records audit entries without blocking the request.
type AuditService interface {
	Log(ctx context.Context, entry *domain.AuditLog)
}
