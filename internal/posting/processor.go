// Package posting applies double-entry postings across two accounts.
package posting

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/cleared-dev/hgb/internal/accounts"
	"github.com/cleared-dev/hgb/internal/metrics"
	"github.com/cleared-dev/hgb/internal/model"
)

// ErrSameAccount is returned when source and destination are identical.
var ErrSameAccount = errors.New("source and destination account are the same")

// Request describes a transfer: From is credited (Haben), To is debited (Soll).
type Request struct {
	From        string          `json:"from_account"`
	To          string          `json:"to_account"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description,omitempty"`
}

// Preview is the would-be outcome of a Request.
type Preview struct {
	FromAccount       string               `json:"from_account"`
	ToAccount         string               `json:"to_account"`
	Amount            decimal.Decimal      `json:"amount"`
	DebitEntry        model.Entry          `json:"debit_entry"`
	CreditEntry       model.Entry          `json:"credit_entry"`
	FromBalanceBefore decimal.Decimal      `json:"from_balance_before"`
	FromBalance       decimal.Decimal      `json:"from_balance"`
	ToBalanceBefore   decimal.Decimal      `json:"to_balance_before"`
	ToBalance         decimal.Decimal      `json:"to_balance"`
	Classification    model.Classification `json:"classification"`
}

// Processor validates and applies postings through the account service.
type Processor struct {
	accounts *accounts.Service
	log      *zap.Logger
	metrics  *metrics.Metrics
	now      func() time.Time
	newID    func() string
}

// NewProcessor creates a Processor. log and m may be nil.
func NewProcessor(accts *accounts.Service, log *zap.Logger, m *metrics.Metrics) *Processor {
	if log == nil {
		log = zap.NewNop()
	}
	return &Processor{
		accounts: accts,
		log:      log,
		metrics:  m,
		now:      time.Now,
		newID:    func() string { return uuid.NewString() },
	}
}

func validate(req Request) error {
	if err := accounts.ValidateAmount(req.Amount); err != nil {
		return err
	}
	if req.From == req.To {
		return fmt.Errorf("%w: %s", ErrSameAccount, req.From)
	}
	return nil
}

// plan computes both legs without touching the store.
func plan(from, to model.Account, amount decimal.Decimal) Preview {
	fromAfter := from.Apply(model.SideHaben, amount)
	toAfter := to.Apply(model.SideSoll, amount)
	return Preview{
		FromAccount: from.Number,
		ToAccount:   to.Number,
		Amount:      amount,
		DebitEntry: model.Entry{
			Account: to.Number,
			Side:    model.SideSoll,
			Effect:  toAfter.Balance.Sub(to.Balance),
		},
		CreditEntry: model.Entry{
			Account: from.Number,
			Side:    model.SideHaben,
			Effect:  fromAfter.Balance.Sub(from.Balance),
		},
		FromBalanceBefore: from.Balance,
		FromBalance:       fromAfter.Balance,
		ToBalanceBefore:   to.Balance,
		ToBalance:         toAfter.Balance,
		Classification:    model.Classify(from.Type, to.Type),
	}
}

// Preview validates req and returns the resulting balances without
// mutating anything.
func (p *Processor) Preview(ctx context.Context, req Request) (Preview, error) {
	if err := validate(req); err != nil {
		return Preview{}, err
	}

	var pv Preview
	err := p.accounts.View(ctx, func(tx *accounts.Tx) error {
		from, to, err := loadPair(tx, req)
		if err != nil {
			return err
		}
		pv = plan(from, to, req.Amount)
		return nil
	})
	if err != nil {
		return Preview{}, err
	}
	return pv, nil
}

// Process applies req. Both legs run under the service's exclusive lock; if
// the debit leg fails the credit leg is reversed before returning.
func (p *Processor) Process(ctx context.Context, req Request) (model.Transaction, error) {
	if err := validate(req); err != nil {
		p.metrics.ObservePosting("", err)
		return model.Transaction{}, err
	}
	if req.Description == "" {
		req.Description = fmt.Sprintf("Transfer from %s to %s", req.From, req.To)
	}

	var txn model.Transaction
	err := p.accounts.Atomically(ctx, func(tx *accounts.Tx) error {
		from, to, err := loadPair(tx, req)
		if err != nil {
			return err
		}
		pv := plan(from, to, req.Amount)

		fromAfter, err := tx.Credit(req.From, req.Amount)
		if err != nil {
			return fmt.Errorf("crediting %s: %w", req.From, err)
		}
		toAfter, err := tx.Debit(req.To, req.Amount)
		if err != nil {
			return p.compensate(tx, req, err)
		}

		txn = model.Transaction{
			ID:             p.newID(),
			FromAccount:    req.From,
			ToAccount:      req.To,
			Amount:         req.Amount,
			Description:    req.Description,
			Timestamp:      p.now(),
			DebitEntry:     pv.DebitEntry,
			CreditEntry:    pv.CreditEntry,
			FromBalance:    fromAfter.Balance,
			ToBalance:      toAfter.Balance,
			Classification: pv.Classification,
		}
		return nil
	})
	if err != nil {
		p.metrics.ObservePosting("", err)
		return model.Transaction{}, err
	}

	p.metrics.ObservePosting(string(txn.Classification), nil)
	p.log.Info("transaction processed",
		zap.String("id", txn.ID),
		zap.String("from", txn.FromAccount),
		zap.String("to", txn.ToAccount),
		zap.String("amount", txn.Amount.StringFixed(2)),
		zap.String("classification", string(txn.Classification)))
	return txn, nil
}

// compensate reverses the credit leg after the debit leg failed.
func (p *Processor) compensate(tx *accounts.Tx, req Request, cause error) error {
	p.metrics.ObserveCompensation()
	p.log.Warn("debit leg failed, reversing credit leg",
		zap.String("from", req.From),
		zap.String("to", req.To),
		zap.Error(cause))

	legErr := fmt.Errorf("debiting %s: %w", req.To, cause)
	if _, err := tx.Post(req.From, model.SideHaben.Opposite(), req.Amount); err != nil {
		p.log.Error("reversing credit leg failed", zap.String("account", req.From), zap.Error(err))
		return errors.Join(legErr, fmt.Errorf("reversing credit on %s: %w", req.From, err))
	}
	return legErr
}

func loadPair(tx *accounts.Tx, req Request) (from, to model.Account, err error) {
	from, err = tx.Get(req.From)
	if err != nil {
		return model.Account{}, model.Account{}, fmt.Errorf("source account: %w", err)
	}
	to, err = tx.Get(req.To)
	if err != nil {
		return model.Account{}, model.Account{}, fmt.Errorf("destination account: %w", err)
	}
	return from, to, nil
}
