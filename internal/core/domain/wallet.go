package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EntryType classifies a wallet entry as a credit or a debit.
type EntryType string

const (
	EntryTypeTopup   EntryType = "topup"
	EntryTypeRefund  EntryType = "refund"
	EntryTypeEarning EntryType = "earning"
	EntryTypePayout  EntryType = "payout"
	EntryTypePayment EntryType = "payment"
)

// Valid reports whether t is a known entry type.
func (t EntryType) Valid() bool {
	switch t {
	case EntryTypeTopup, EntryTypeRefund, EntryTypeEarning, EntryTypePayout, EntryTypePayment:
		return true
	}
	return false
}

// IsCredit is true for entries that increase the balance.
func (t EntryType) IsCredit() bool {
	return t == EntryTypeTopup || t == EntryTypeRefund || t == EntryTypeEarning
}

// Signed returns amount with the sign the entry contributes to the balance.
func (t EntryType) Signed(amount decimal.Decimal) decimal.Decimal {
	if t.IsCredit() {
		return amount
	}
	return amount.Neg()
}

// AuditType maps a wallet entry to the audit trail type. Task earnings are
// recorded as payouts to the runner.
func (t EntryType) AuditType() TransactionType {
	switch t {
	case EntryTypeTopup:
		return TransactionTypeTopup
	case EntryTypeRefund:
		return TransactionTypeRefund
	case EntryTypePayment:
		return TransactionTypePayment
	default:
		return TransactionTypePayout
	}
}

// Wallet is a user's running balance.
type Wallet struct {
	ID        uuid.UUID       `json:"id"`
	UserID    uuid.UUID       `json:"user_id"`
	Balance   decimal.Decimal `json:"balance"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// NewWallet returns an empty wallet for userID.
func NewWallet(userID uuid.UUID, now time.Time) *Wallet {
	return &Wallet{
		ID:        uuid.New(),
		UserID:    userID,
		Balance:   decimal.Zero,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// WalletEntry is one append-only line of a wallet's history.
type WalletEntry struct {
	ID        uuid.UUID       `json:"id"`
	WalletID  uuid.UUID       `json:"wallet_id"`
	Type      EntryType       `json:"type"`
	Amount    decimal.Decimal `json:"amount"`
	Reference *string         `json:"reference,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// SumEntries returns the signed sum of entries, which must equal the balance.
func SumEntries(entries []WalletEntry) decimal.Decimal {
	sum := decimal.Zero
	for _, e := range entries {
		sum = sum.Add(e.Type.Signed(e.Amount))
	}
	return sum
}
