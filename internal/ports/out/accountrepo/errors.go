package accountrepo

import (
	"errors"

	"github.com/Overland-East-Bay/account-ledger/internal/domain"
)

var (
	// ErrNotFound indicates no stored account has the requested identity.
	ErrNotFound = errors.New("account not found")

	// ErrAlreadyExists indicates an account with the same holder and type is already open.
	ErrAlreadyExists = errors.New("account already exists")

	// ErrInsufficientFunds is returned by Withdraw when the amount exceeds the balance.
	ErrInsufficientFunds = domain.ErrInsufficientFunds
)
