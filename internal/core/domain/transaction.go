package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionType is the audit trail classification of a money movement.
type TransactionType string

const (
	TransactionTypeTopup   TransactionType = "topup"
	TransactionTypePayout  TransactionType = "payout"
	TransactionTypePayment TransactionType = "payment"
	TransactionTypeRefund  TransactionType = "refund"
)

// Valid reports whether t is a known transaction type.
func (t TransactionType) Valid() bool {
	switch t {
	case TransactionTypeTopup, TransactionTypePayout, TransactionTypePayment, TransactionTypeRefund:
		return true
	}
	return false
}

// Transaction is a write-once audit record mirroring a wallet entry.
type Transaction struct {
	ID        uuid.UUID       `json:"id"`
	UserID    uuid.UUID       `json:"user_id"`
	Type      TransactionType `json:"type"`
	Amount    decimal.Decimal `json:"amount"`
	Reference *string         `json:"reference,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}
