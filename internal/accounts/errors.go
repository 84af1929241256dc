package accounts

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/shopspring/decimal"
)

// Errors returned by the account store. Callers match them with errors.Is.
var (
	ErrInvalidAccountNumber   = errors.New("invalid account number")
	ErrInvalidAccountType     = errors.New("invalid account type")
	ErrDuplicateAccount       = errors.New("account already exists")
	ErrAccountNotFound        = errors.New("account not found")
	ErrUnknownStandardAccount = errors.New("unknown standard account")
	ErrInvalidAmount          = errors.New("invalid amount")
)

var numberPattern = regexp.MustCompile(`^[0-9]{4}$`)

// ValidateNumber checks the 4-digit account number format.
func ValidateNumber(number string) error {
	if !numberPattern.MatchString(number) {
		return fmt.Errorf("%w %q: must be exactly 4 digits", ErrInvalidAccountNumber, number)
	}
	return nil
}

// ValidateBalance checks that an initial balance has at most 2 decimal
// places. Zero and negative balances are allowed.
func ValidateBalance(balance decimal.Decimal) error {
	if !balance.Equal(balance.Round(2)) {
		return fmt.Errorf("%w %s: initial balance has more than 2 decimal places", ErrInvalidAmount, balance)
	}
	return nil
}

// ValidateAmount checks that amount is positive with at most 2 decimal places.
func ValidateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("%w %s: must be positive", ErrInvalidAmount, amount)
	}
	if !amount.Equal(amount.Round(2)) {
		return fmt.Errorf("%w %s: more than 2 decimal places", ErrInvalidAmount, amount)
	}
	return nil
}
