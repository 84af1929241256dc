package model

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
)

// AccountType classifies accounts under HGB. The set is closed: use Valid
// or ParseAccountType before trusting a value from outside the process.
type AccountType string

const (
	AccountTypeAktiv   AccountType = "aktivkonto"    // assets (Bestandskonto)
	AccountTypePassiv  AccountType = "passivkonto"   // liabilities and equity (Bestandskonto)
	AccountTypeAufwand AccountType = "aufwandskonto" // expenses (Erfolgskonto)
	AccountTypeErtrag  AccountType = "ertragskonto"  // revenue (Erfolgskonto)
)

// AccountTypes lists every recognised account type in chart order.
var AccountTypes = []AccountType{
	AccountTypeAktiv,
	AccountTypePassiv,
	AccountTypeAufwand,
	AccountTypeErtrag,
}

// ErrUnknownAccountType is returned by ParseAccountType.
var ErrUnknownAccountType = errors.New("unknown account type")

// ParseAccountType converts a raw string into an AccountType.
func ParseAccountType(s string) (AccountType, error) {
	t := AccountType(s)
	if !t.Valid() {
		return "", fmt.Errorf("%w %q", ErrUnknownAccountType, s)
	}
	return t, nil
}

// Valid reports whether t is one of the four recognised types.
func (t AccountType) Valid() bool {
	switch t {
	case AccountTypeAktiv, AccountTypePassiv, AccountTypeAufwand, AccountTypeErtrag:
		return true
	}
	return false
}

// IncreasingSide returns the posting side that raises the balance.
func (t AccountType) IncreasingSide() Side {
	switch t {
	case AccountTypePassiv, AccountTypeErtrag:
		return SideHaben
	default:
		return SideSoll
	}
}

// BilanzSide returns where an account of this type is reported.
func (t AccountType) BilanzSide() BilanzSide {
	switch t {
	case AccountTypeAktiv:
		return BilanzSideAktiva
	case AccountTypePassiv:
		return BilanzSidePassiva
	default:
		return BilanzSideErfolgsrechnung
	}
}

// Side is one side of a posting.
type Side string

const (
	SideSoll  Side = "soll"  // debit
	SideHaben Side = "haben" // credit
)

// Opposite returns the other side.
func (s Side) Opposite() Side {
	if s == SideSoll {
		return SideHaben
	}
	return SideSoll
}

// BilanzSide names where an account lands in the financial statements.
type BilanzSide string

const (
	BilanzSideAktiva          BilanzSide = "aktiva"
	BilanzSidePassiva         BilanzSide = "passiva"
	BilanzSideErfolgsrechnung BilanzSide = "erfolgsrechnung"
)

// EffectOnBalance returns the signed change a posting of amount on side
// causes for an account of type t. Every balance mutation goes through here.
func EffectOnBalance(t AccountType, side Side, amount decimal.Decimal) decimal.Decimal {
	if side == t.IncreasingSide() {
		return amount
	}
	return amount.Neg()
}

// Account is a live ledger account.
type Account struct {
	Number   string          `json:"number"`
	Name     string          `json:"name"`
	Type     AccountType     `json:"account_type"`
	Balance  decimal.Decimal `json:"balance"`
	Category string          `json:"category,omitempty"`
}

// Apply returns a copy of a with a posting of amount on side applied.
func (a Account) Apply(side Side, amount decimal.Decimal) Account {
	a.Balance = a.Balance.Add(EffectOnBalance(a.Type, side, amount))
	return a
}

// skrRanges are the SKR03/SKR04 number blocks per account type.
var skrRanges = map[AccountType][2]int{
	AccountTypeAktiv:   {0, 2999},
	AccountTypePassiv:  {3000, 3999},
	AccountTypeAufwand: {4000, 7999},
	AccountTypeErtrag:  {8000, 9999},
}

// NumberRangeWarning returns a non-empty message when number lies outside
// the usual SKR block for t. It is advisory only.
func NumberRangeWarning(number string, t AccountType) string {
	n, err := strconv.Atoi(number)
	if err != nil {
		return ""
	}
	r, ok := skrRanges[t]
	if !ok || (n >= r[0] && n <= r[1]) {
		return ""
	}
	return fmt.Sprintf("%s account %s is outside the usual range %04d-%04d", t, number, r[0], r[1])
}
