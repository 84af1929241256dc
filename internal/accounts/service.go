package accounts

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/cleared-dev/hgb/internal/chart"
	"github.com/cleared-dev/hgb/internal/model"
)

var errReadOnly = errors.New("mutation inside read-only view")

// Service owns the live accounts. Mutations take an exclusive lock, reads a
// shared one, so readers never see half of a multi-step update.
type Service struct {
	mu   sync.RWMutex
	repo Repository
	log  *zap.Logger
}

// NewService creates a Service over repo.
func NewService(repo Repository, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{repo: repo, log: log}
}

// CreateParams holds the input for a custom account.
type CreateParams struct {
	Number   string
	Name     string
	Type     model.AccountType
	Balance  decimal.Decimal
	Category string
}

// Create adds a new account. An empty category on a balance-sheet account is
// derived from the account number.
func (s *Service) Create(ctx context.Context, p CreateParams) (model.Account, error) {
	if err := ValidateNumber(p.Number); err != nil {
		return model.Account{}, err
	}
	if !p.Type.Valid() {
		return model.Account{}, fmt.Errorf("%w %q", ErrInvalidAccountType, p.Type)
	}
	if err := ValidateBalance(p.Balance); err != nil {
		return model.Account{}, err
	}

	acct := model.Account{
		Number:   p.Number,
		Name:     strings.TrimSpace(p.Name),
		Type:     p.Type,
		Balance:  p.Balance,
		Category: p.Category,
	}
	if acct.Category == "" && p.Type.BilanzSide() != model.BilanzSideErfolgsrechnung {
		if c, ok := chart.CategoryForNumber(p.Number); ok {
			acct.Category = c.Name
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.repo.Insert(ctx, acct); err != nil {
		return model.Account{}, fmt.Errorf("creating account %s: %w", p.Number, err)
	}

	if w := model.NumberRangeWarning(acct.Number, acct.Type); w != "" {
		s.log.Warn("account number outside SKR range", zap.String("account", acct.Number), zap.String("detail", w))
	}
	s.log.Info("account created",
		zap.String("account", acct.Number),
		zap.String("name", acct.Name),
		zap.String("type", string(acct.Type)),
		zap.String("balance", acct.Balance.StringFixed(2)))
	return acct, nil
}

// CreateFromStandard creates an account from the standard chart.
func (s *Service) CreateFromStandard(ctx context.Context, number string, initialBalance decimal.Decimal) (model.Account, error) {
	entry, ok := chart.Lookup(number)
	if !ok {
		return model.Account{}, fmt.Errorf("%w: %s", ErrUnknownStandardAccount, number)
	}
	return s.Create(ctx, CreateParams{
		Number:   entry.Number,
		Name:     entry.Name,
		Type:     entry.Type,
		Balance:  initialBalance,
		Category: entry.Category,
	})
}

// StarterResult reports the outcome of CreateStarterAccounts.
type StarterResult struct {
	Created []model.Account `json:"created_accounts"`
	Errors  []string        `json:"errors"`
}

// CreateStarterAccounts creates the recommended starter pack. Accounts that
// fail (typically because they already exist) are reported, not fatal.
func (s *Service) CreateStarterAccounts(ctx context.Context, balances map[string]decimal.Decimal) StarterResult {
	var res StarterResult
	for _, n := range chart.StarterNumbers() {
		acct, err := s.CreateFromStandard(ctx, n, balances[n])
		if err != nil {
			res.Errors = append(res.Errors, err.Error())
			continue
		}
		res.Created = append(res.Created, acct)
	}
	return res
}

// Get returns the account with the given number.
func (s *Service) Get(ctx context.Context, number string) (model.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.repo.Get(ctx, number)
}

// List returns all accounts in creation order.
func (s *Service) List(ctx context.Context) ([]model.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.repo.List(ctx)
}

// Debit posts amount on the Soll side of an account.
func (s *Service) Debit(ctx context.Context, number string, amount decimal.Decimal) (model.Account, error) {
	var acct model.Account
	err := s.Atomically(ctx, func(tx *Tx) error {
		var err error
		acct, err = tx.Debit(number, amount)
		return err
	})
	return acct, err
}

// Credit posts amount on the Haben side of an account.
func (s *Service) Credit(ctx context.Context, number string, amount decimal.Decimal) (model.Account, error) {
	var acct model.Account
	err := s.Atomically(ctx, func(tx *Tx) error {
		var err error
		acct, err = tx.Credit(number, amount)
		return err
	})
	return acct, err
}

// Atomically runs fn while holding the exclusive lock. Multi-account
// updates use it so no reader sees a partial result.
func (s *Service) Atomically(ctx context.Context, fn func(tx *Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(&Tx{ctx: ctx, s: s})
}

// View runs fn while holding the shared lock. Mutations inside fn fail.
func (s *Service) View(ctx context.Context, fn func(tx *Tx) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(&Tx{ctx: ctx, s: s, readOnly: true})
}

// Suggestion is a catalog match annotated with the live account, if any.
type Suggestion struct {
	chart.Entry
	AlreadyExists  bool             `json:"already_exists"`
	CurrentBalance *decimal.Decimal `json:"current_balance,omitempty"`
}

// Suggest searches the standard chart and marks accounts that already exist.
func (s *Service) Suggest(ctx context.Context, query string, limit int) ([]Suggestion, error) {
	matches := chart.Search(query)
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]Suggestion, 0, len(matches))
	for _, m := range matches {
		sug := Suggestion{Entry: m}
		acct, err := s.repo.Get(ctx, m.Number)
		switch {
		case err == nil:
			sug.AlreadyExists = true
			bal := acct.Balance
			sug.CurrentBalance = &bal
		case !errors.Is(err, ErrAccountNotFound):
			return nil, fmt.Errorf("checking account %s: %w", m.Number, err)
		}
		result = append(result, sug)
	}
	return result, nil
}

// Tx is a handle valid only inside Atomically or View.
type Tx struct {
	ctx      context.Context
	s        *Service
	readOnly bool
}

// Get returns an account.
func (tx *Tx) Get(number string) (model.Account, error) {
	return tx.s.repo.Get(tx.ctx, number)
}

// Debit posts amount on the Soll side.
func (tx *Tx) Debit(number string, amount decimal.Decimal) (model.Account, error) {
	return tx.Post(number, model.SideSoll, amount)
}

// Credit posts amount on the Haben side.
func (tx *Tx) Credit(number string, amount decimal.Decimal) (model.Account, error) {
	return tx.Post(number, model.SideHaben, amount)
}

// Post applies amount to number on the given side.
func (tx *Tx) Post(number string, side model.Side, amount decimal.Decimal) (model.Account, error) {
	if tx.readOnly {
		return model.Account{}, errReadOnly
	}
	if err := ValidateAmount(amount); err != nil {
		return model.Account{}, err
	}

	acct, err := tx.s.repo.Get(tx.ctx, number)
	if err != nil {
		return model.Account{}, err
	}

	updated := acct.Apply(side, amount)
	if err := tx.s.repo.UpdateBalance(tx.ctx, number, updated.Balance); err != nil {
		return model.Account{}, fmt.Errorf("updating balance of %s: %w", number, err)
	}

	if side != acct.Type.IncreasingSide() {
		tx.s.log.Debug("posting decreases balance",
			zap.String("account", number),
			zap.String("type", string(acct.Type)),
			zap.String("side", string(side)))
	}
	return updated, nil
}
