package accountrepo

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/Overland-East-Bay/account-ledger/internal/domain"
	"github.com/Overland-East-Bay/account-ledger/internal/ports/out/accountrepo"
)

// Repo is an in-memory implementation of accountrepo.Repository backed by an
// unordered slice. Lookups are linear scans.
// It is safe for concurrent use.
type Repo struct {
	mu       sync.RWMutex
	accounts []domain.Account
}

func NewRepo() *Repo {
	return &Repo{}
}

func (r *Repo) Open(ctx context.Context, a domain.Account) error {
	_ = ctx
	if !a.Type.Valid() {
		return domain.ErrUnknownAccountType
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.find(a.Key()) >= 0 {
		return accountrepo.ErrAlreadyExists
	}
	r.accounts = append(r.accounts, a)
	return nil
}

func (r *Repo) Close(ctx context.Context, key domain.AccountKey) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.find(key)
	if i < 0 {
		return accountrepo.ErrNotFound
	}
	// Order is not maintained; swap the last element into the hole.
	last := len(r.accounts) - 1
	r.accounts[i] = r.accounts[last]
	r.accounts[last] = domain.Account{}
	r.accounts = r.accounts[:last]
	return nil
}

func (r *Repo) Get(ctx context.Context, key domain.AccountKey) (domain.Account, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()

	i := r.find(key)
	if i < 0 {
		return domain.Account{}, accountrepo.ErrNotFound
	}
	return r.accounts[i], nil
}

func (r *Repo) HasHolderType(ctx context.Context, holder domain.Profile, t domain.AccountType) (bool, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.find(domain.AccountKey{Holder: holder.Key(), Type: t}) >= 0, nil
}

func (r *Repo) Deposit(ctx context.Context, key domain.AccountKey, amount decimal.Decimal) (domain.Account, error) {
	return r.mutate(ctx, key, func(a *domain.Account) error { return a.Deposit(amount) })
}

func (r *Repo) Withdraw(ctx context.Context, key domain.AccountKey, amount decimal.Decimal) (domain.Account, error) {
	return r.mutate(ctx, key, func(a *domain.Account) error { return a.Withdraw(amount) })
}

func (r *Repo) Update(ctx context.Context, a domain.Account) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.find(a.Key())
	if i < 0 {
		return accountrepo.ErrNotFound
	}
	r.accounts[i] = a
	return nil
}

func (r *Repo) List(ctx context.Context) ([]domain.Account, error) {
	_ = ctx
	r.mu.RLock()
	out := slices.Clone(r.accounts)
	r.mu.RUnlock()

	if out == nil {
		out = []domain.Account{}
	}
	slices.SortStableFunc(out, domain.CompareForReport)
	return out, nil
}

// mutate applies fn to a copy of the stored account and writes it back only on success.
func (r *Repo) mutate(ctx context.Context, key domain.AccountKey, fn func(*domain.Account) error) (domain.Account, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.find(key)
	if i < 0 {
		return domain.Account{}, accountrepo.ErrNotFound
	}
	a := r.accounts[i]
	if err := fn(&a); err != nil {
		if errors.Is(err, domain.ErrInsufficientFunds) {
			return r.accounts[i], accountrepo.ErrInsufficientFunds
		}
		return r.accounts[i], err
	}
	r.accounts[i] = a
	return a, nil
}

func (r *Repo) find(key domain.AccountKey) int {
	for i := range r.accounts {
		if r.accounts[i].Key() == key {
			return i
		}
	}
	return -1
}
