package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Classification names the kind of balance-sheet change a posting causes.
type Classification string

const (
	Aktivtausch         Classification = "Aktivtausch"
	Passivtausch        Classification = "Passivtausch"
	Bilanzverlaengerung Classification = "Bilanzverlängerung"
	Bilanzverkuerzung   Classification = "Bilanzverkürzung"
	Erfolgswirksam      Classification = "Erfolgswirksam"
)

// Entry is one leg of a posting.
type Entry struct {
	Account string          `json:"account"`
	Side    Side            `json:"side"`
	Effect  decimal.Decimal `json:"effect"` // signed change applied to the balance
}

// Transaction is the immutable record of a processed double-entry posting.
// The from account is credited (Haben), the to account debited (Soll).
type Transaction struct {
	ID             string          `json:"id"`
	FromAccount    string          `json:"from_account"`
	ToAccount      string          `json:"to_account"`
	Amount         decimal.Decimal `json:"amount"`
	Description    string          `json:"description"`
	Timestamp      time.Time       `json:"timestamp"`
	DebitEntry     Entry           `json:"debit_entry"`
	CreditEntry    Entry           `json:"credit_entry"`
	FromBalance    decimal.Decimal `json:"from_balance"`
	ToBalance      decimal.Decimal `json:"to_balance"`
	Classification Classification  `json:"classification"`
}

// Classify derives the Bilanzveränderung from the two legs of a posting.
// fromType is credited, toType is debited.
func Classify(fromType, toType AccountType) Classification {
	from := legChange{side: fromType.BilanzSide(), increases: fromType.IncreasingSide() == SideHaben}
	to := legChange{side: toType.BilanzSide(), increases: toType.IncreasingSide() == SideSoll}

	switch {
	case from.side == BilanzSideAktiva && to.side == BilanzSideAktiva:
		return Aktivtausch
	case from.side == BilanzSidePassiva && to.side == BilanzSidePassiva:
		return Passivtausch
	}

	aktiva, passiva, ok := splitSides(from, to)
	if !ok {
		return Erfolgswirksam
	}
	switch {
	case aktiva.increases && passiva.increases:
		return Bilanzverlaengerung
	case !aktiva.increases && !passiva.increases:
		return Bilanzverkuerzung
	}
	return Erfolgswirksam
}

type legChange struct {
	side      BilanzSide
	increases bool
}

func splitSides(a, b legChange) (aktiva, passiva legChange, ok bool) {
	switch {
	case a.side == BilanzSideAktiva && b.side == BilanzSidePassiva:
		return a, b, true
	case a.side == BilanzSidePassiva && b.side == BilanzSideAktiva:
		return b, a, true
	}
	return legChange{}, legChange{}, false
}
