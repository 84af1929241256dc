// Package bilanz derives the balance sheet from the live accounts.
//
// Aktiva are aktivkonto balances, Passiva are passivkonto balances. P&L
// accounts (aufwandskonto, ertragskonto) are not reported. Nothing here
// mutates accounts; an unbalanced sheet is a result, not an error.
package bilanz

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/cleared-dev/hgb/internal/accounts"
	"github.com/cleared-dev/hgb/internal/metrics"
	"github.com/cleared-dev/hgb/internal/model"
)

// DefaultTolerance is the largest |Aktiva - Passiva| still considered balanced.
var DefaultTolerance = decimal.RequireFromString("0.005")

// Uncategorized labels positions for accounts without a category.
const Uncategorized = "Sonstige"

// Line is one account's contribution to a side.
type Line struct {
	Number       string          `json:"account_number"`
	Name         string          `json:"account_name"`
	Category     string          `json:"category"`
	Contribution decimal.Decimal `json:"balance"`
}

// Position groups the lines of one category.
type Position struct {
	Category string          `json:"category"`
	Subtotal decimal.Decimal `json:"subtotal"`
	Accounts []Line          `json:"accounts"`
}

// Bilanz is a point-in-time balance sheet.
type Bilanz struct {
	PeriodEnd        time.Time       `json:"period_end"`
	GeneratedAt      time.Time       `json:"generated_at"`
	AktivaTotal      decimal.Decimal `json:"aktiva_total"`
	PassivaTotal     decimal.Decimal `json:"passiva_total"`
	IsBalanced       bool            `json:"is_balanced"`
	Difference       decimal.Decimal `json:"difference"`
	AktivaAccounts   []Line          `json:"aktiva_accounts"`
	PassivaAccounts  []Line          `json:"passiva_accounts"`
	AktivaPositions  []Position      `json:"aktiva_positions"`
	PassivaPositions []Position      `json:"passiva_positions"`
	AccountCount     int             `json:"account_count"`
}

// Validation is the balance check without the account breakdown.
type Validation struct {
	IsBalanced   bool            `json:"is_balanced"`
	AktivaTotal  decimal.Decimal `json:"aktiva_total"`
	PassivaTotal decimal.Decimal `json:"passiva_total"`
	Difference   decimal.Decimal `json:"difference"`
	PeriodEnd    time.Time       `json:"period_end"`
}

// Summary reports totals and the number of accounts on the sheet.
type Summary struct {
	TotalAccounts int             `json:"total_accounts"`
	AktivaTotal   decimal.Decimal `json:"aktiva_total"`
	PassivaTotal  decimal.Decimal `json:"passiva_total"`
	IsBalanced    bool            `json:"is_balanced"`
	PeriodEnd     time.Time       `json:"period_end"`
}

// Resolution describes where a single account lands.
type Resolution struct {
	Number       string            `json:"account_number"`
	Name         string            `json:"account_name"`
	Type         model.AccountType `json:"account_type"`
	Balance      decimal.Decimal   `json:"net_balance"`
	Side         model.BilanzSide  `json:"bilanz_side"`
	Category     string            `json:"bilanz_category,omitempty"`
	Contribution decimal.Decimal   `json:"contributes_amount"`
}

// Aggregator computes balance sheets from an account service.
type Aggregator struct {
	accounts  *accounts.Service
	tolerance decimal.Decimal
	log       *zap.Logger
	metrics   *metrics.Metrics
	now       func() time.Time
}

// NewAggregator creates an Aggregator. A negative tolerance falls back to
// DefaultTolerance; zero demands an exact match. log and m may be nil.
func NewAggregator(accts *accounts.Service, tolerance decimal.Decimal, log *zap.Logger, m *metrics.Metrics) *Aggregator {
	if tolerance.IsNegative() {
		tolerance = DefaultTolerance
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Aggregator{
		accounts:  accts,
		tolerance: tolerance,
		log:       log,
		metrics:   m,
		now:       time.Now,
	}
}

// Tolerance returns the configured balance tolerance.
func (a *Aggregator) Tolerance() decimal.Decimal {
	return a.tolerance
}

// Compute builds the balance sheet as of now.
func (a *Aggregator) Compute(ctx context.Context) (Bilanz, error) {
	return a.ComputeAt(ctx, time.Time{})
}

// ComputeAt builds the balance sheet labelled with periodEnd. A zero
// periodEnd means the generation time. Balances are always the current ones.
func (a *Aggregator) ComputeAt(ctx context.Context, periodEnd time.Time) (Bilanz, error) {
	accts, err := a.accounts.List(ctx)
	if err != nil {
		return Bilanz{}, err
	}

	now := a.now()
	if periodEnd.IsZero() {
		periodEnd = now
	}
	b := build(accts, a.tolerance)
	b.GeneratedAt = now
	b.PeriodEnd = periodEnd

	diff, _ := b.Difference.Float64()
	a.metrics.ObserveBilanz(b.IsBalanced, diff)
	a.log.Info("bilanz generated",
		zap.Int("accounts", b.AccountCount),
		zap.String("aktiva", b.AktivaTotal.StringFixed(2)),
		zap.String("passiva", b.PassivaTotal.StringFixed(2)),
		zap.Bool("balanced", b.IsBalanced))
	return b, nil
}

// Validate reports whether the current accounts balance.
func (a *Aggregator) Validate(ctx context.Context) (Validation, error) {
	b, err := a.Compute(ctx)
	if err != nil {
		return Validation{}, err
	}
	return Validation{
		IsBalanced:   b.IsBalanced,
		AktivaTotal:  b.AktivaTotal,
		PassivaTotal: b.PassivaTotal,
		Difference:   b.Difference,
		PeriodEnd:    b.PeriodEnd,
	}, nil
}

// Summarize returns totals without the account breakdown.
func (a *Aggregator) Summarize(ctx context.Context) (Summary, error) {
	b, err := a.Compute(ctx)
	if err != nil {
		return Summary{}, err
	}
	return Summary{
		TotalAccounts: b.AccountCount,
		AktivaTotal:   b.AktivaTotal,
		PassivaTotal:  b.PassivaTotal,
		IsBalanced:    b.IsBalanced,
		PeriodEnd:     b.PeriodEnd,
	}, nil
}

// ResolveAccount reports the side and contribution of one account. P&L
// accounts resolve to the Erfolgsrechnung with their balance as contribution.
func (a *Aggregator) ResolveAccount(ctx context.Context, number string) (Resolution, error) {
	acct, err := a.accounts.Get(ctx, number)
	if err != nil {
		return Resolution{}, err
	}

	res := Resolution{
		Number:       acct.Number,
		Name:         acct.Name,
		Type:         acct.Type,
		Balance:      acct.Balance,
		Side:         acct.Type.BilanzSide(),
		Contribution: acct.Balance,
	}
	if res.Side != model.BilanzSideErfolgsrechnung {
		res.Category = categoryOf(acct)
	}
	return res, nil
}

func build(accts []model.Account, tolerance decimal.Decimal) Bilanz {
	var b Bilanz
	for _, acct := range accts {
		line := Line{
			Number:       acct.Number,
			Name:         acct.Name,
			Category:     categoryOf(acct),
			Contribution: acct.Balance,
		}
		switch acct.Type.BilanzSide() {
		case model.BilanzSideAktiva:
			b.AktivaAccounts = append(b.AktivaAccounts, line)
			b.AktivaTotal = b.AktivaTotal.Add(line.Contribution)
		case model.BilanzSidePassiva:
			b.PassivaAccounts = append(b.PassivaAccounts, line)
			b.PassivaTotal = b.PassivaTotal.Add(line.Contribution)
		default:
			continue
		}
		b.AccountCount++
	}

	b.AktivaPositions = group(b.AktivaAccounts)
	b.PassivaPositions = group(b.PassivaAccounts)
	b.Difference = b.AktivaTotal.Sub(b.PassivaTotal)
	b.IsBalanced = b.Difference.Abs().LessThanOrEqual(tolerance)
	return b
}

// group collects lines by category, keeping the order in which categories
// first appear.
func group(lines []Line) []Position {
	var positions []Position
	index := make(map[string]int)
	for _, l := range lines {
		i, ok := index[l.Category]
		if !ok {
			i = len(positions)
			index[l.Category] = i
			positions = append(positions, Position{Category: l.Category})
		}
		positions[i].Accounts = append(positions[i].Accounts, l)
		positions[i].Subtotal = positions[i].Subtotal.Add(l.Contribution)
	}
	return positions
}

func categoryOf(acct model.Account) string {
	if acct.Category == "" {
		return Uncategorized
	}
	return acct.Category
}
