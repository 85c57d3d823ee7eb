package ports

import (
	"context"
	"errors"
	"time"

	"runnerhub/internal/core/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// HashService handles password hashing (Argon2id).
type HashService interface {
	Hash(password string) (string, error)
	Verify(password string, hash string) (bool, error)
}

// TokenService issues and validates user access tokens.
type TokenService interface {
	Generate(userID uuid.UUID, role domain.Role) (string, time.Time, error)
	Validate(tokenString string) (*TokenClaims, error)
}

// TokenClaims holds the parsed JWT claims.
type TokenClaims struct {
	UserID uuid.UUID
	Role   domain.Role
}

// IdempotencyCache stores replayable responses keyed by Idempotency-Key.
type IdempotencyCache interface {
	Get(ctx context.Context, key string) ([]byte, error) // nil when absent
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// AlertGate suppresses repeated alerts for the same metric within a cool-down.
type AlertGate interface {
	// Allow reports whether an alert for metric may be sent now and, if so,
	// starts the cool-down.
	Allow(ctx context.Context, metric string, cooldown time.Duration) (bool, error)
}

// Notifier pushes realtime events to an addressable target (a user id or a
// room such as "admin").
type Notifier interface {
	Emit(ctx context.Context, target, event string, payload any) error
	Close() error
}

// Mailer sends plain-text email.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// PaymentGateway is the hosted payment page provider.
type PaymentGateway interface {
	Initiate(ctx context.Context, req GatewayInitiateRequest) (*GatewayInitiateResponse, error)
	// Verify checks the callback checksum and maps the gateway status.
	// A forged or corrupted callback returns ErrChecksumMismatch.
	Verify(ctx context.Context, cb GatewayCallback) (domain.PaymentStatus, error)
}

// ErrChecksumMismatch is returned by PaymentGateway.Verify for a callback
// that was not signed with the merchant secret.
var ErrChecksumMismatch = errors.New("gateway checksum mismatch")

// GatewayCallback is the form the gateway posts back after the hosted page.
type GatewayCallback struct {
	PayRequestID      string
	Reference         string
	TransactionStatus string
	Checksum          string
}

type GatewayInitiateRequest struct {
	Reference string
	Amount    decimal.Decimal
	Email     string
	ReturnURL string
}

// GatewayInitiateResponse is what the client posts to the hosted page.
type GatewayInitiateResponse struct {
	ProcessURL string            `json:"process_url"`
	Fields     map[string]string `json:"fields"`
}
