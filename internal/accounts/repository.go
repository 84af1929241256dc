package accounts

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/hgb/internal/model"
)

// Repository persists accounts. Implementations report missing accounts with
// ErrAccountNotFound and clashing numbers with ErrDuplicateAccount. List
// returns accounts in insertion order.
type Repository interface {
	Insert(ctx context.Context, acct model.Account) error
	Get(ctx context.Context, number string) (model.Account, error)
	List(ctx context.Context) ([]model.Account, error)
	UpdateBalance(ctx context.Context, number string, balance decimal.Decimal) error
}

// MemoryRepository keeps accounts in process memory. It does no locking of
// its own; Service serializes access.
type MemoryRepository struct {
	byNumber map[string]model.Account
	order    []string
}

// NewMemoryRepository creates a repository seeded with accts. Later
// duplicates of a number are ignored; ReadAccounts rejects them before they
// get here.
func NewMemoryRepository(accts ...model.Account) *MemoryRepository {
	r := &MemoryRepository{byNumber: make(map[string]model.Account, len(accts))}
	for _, a := range accts {
		if _, ok := r.byNumber[a.Number]; ok {
			continue
		}
		r.byNumber[a.Number] = a
		r.order = append(r.order, a.Number)
	}
	return r
}

func (r *MemoryRepository) Insert(_ context.Context, acct model.Account) error {
	if _, ok := r.byNumber[acct.Number]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateAccount, acct.Number)
	}
	r.byNumber[acct.Number] = acct
	r.order = append(r.order, acct.Number)
	return nil
}

func (r *MemoryRepository) Get(_ context.Context, number string) (model.Account, error) {
	a, ok := r.byNumber[number]
	if !ok {
		return model.Account{}, fmt.Errorf("%w: %s", ErrAccountNotFound, number)
	}
	return a, nil
}

func (r *MemoryRepository) List(_ context.Context) ([]model.Account, error) {
	result := make([]model.Account, 0, len(r.order))
	for _, n := range r.order {
		result = append(result, r.byNumber[n])
	}
	return result, nil
}

func (r *MemoryRepository) UpdateBalance(_ context.Context, number string, balance decimal.Decimal) error {
	a, ok := r.byNumber[number]
	if !ok {
		return fmt.Errorf("%w: %s", ErrAccountNotFound, number)
	}
	a.Balance = balance
	r.byNumber[number] = a
	return nil
}
