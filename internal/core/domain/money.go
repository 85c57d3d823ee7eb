package domain

import (
	"errors"

	"github.com/shopspring/decimal"
)

// MoneyPlaces is the number of decimal places stored for every amount.
const MoneyPlaces = 2

// MaxAmount is the exclusive upper bound for a stored amount or balance.
var MaxAmount = decimal.New(1, 12)

var (
	ErrAmountNotPositive = errors.New("amount must be greater than zero")
	ErrAmountPrecision   = errors.New("amount must have at most 2 decimal places")
	ErrAmountTooLarge    = errors.New("amount must be less than 1000000000000")
)

// CheckAmount returns nil when amount is positive, has at most MoneyPlaces
// decimals and is below MaxAmount.
func CheckAmount(amount decimal.Decimal) error {
	switch {
	case !amount.IsPositive():
		return ErrAmountNotPositive
	case !amount.Equal(amount.Round(MoneyPlaces)):
		return ErrAmountPrecision
	case amount.GreaterThanOrEqual(MaxAmount):
		return ErrAmountTooLarge
	}
	return nil
}
