package accountrepo

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/Overland-East-Bay/account-ledger/internal/domain"
)

// Repository is the account database: the set of open accounts, unique by
// domain.AccountKey (holder + type).
//
// Implementations enforce identity uniqueness only. Cross-type rules such as
// Checking/College Checking exclusivity belong to the application layer, which
// uses HasHolderType to check them before calling Open.
//
// Result ordering expectations:
// - List returns accounts ordered by domain.CompareForReport (type precedence, last name,
//   first name, date of birth).
type Repository interface {
	// Open stores a new account, or returns ErrAlreadyExists without mutation.
	Open(ctx context.Context, a domain.Account) error
	// Close removes the account with key, or returns ErrNotFound.
	Close(ctx context.Context, key domain.AccountKey) error

	Get(ctx context.Context, key domain.AccountKey) (domain.Account, error)
	// HasHolderType reports whether holder has an open account of type t.
	HasHolderType(ctx context.Context, holder domain.Profile, t domain.AccountType) (bool, error)

	// Deposit adds amount to the stored balance and returns the updated account.
	Deposit(ctx context.Context, key domain.AccountKey, amount decimal.Decimal) (domain.Account, error)
	// Withdraw subtracts amount from the stored balance, or returns ErrInsufficientFunds
	// leaving the account unchanged.
	Withdraw(ctx context.Context, key domain.AccountKey, amount decimal.Decimal) (domain.Account, error)
	// Update replaces the stored record that has the same key.
	Update(ctx context.Context, a domain.Account) error

	List(ctx context.Context) ([]domain.Account, error)
}
