package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/Overland-East-Bay/account-ledger/internal/domain"
)

// HolderInput is an account holder as entered: names and a "M/D/YYYY" date of birth.
type HolderInput struct {
	FirstName   string
	LastName    string
	DateOfBirth string
}

// AccountRef names an account by identity: type token plus holder.
type AccountRef struct {
	AccountType string
	Holder      HolderInput
}

type OpenInput struct {
	AccountRef
	// Amount is the initial deposit as decimal text.
	Amount string
	// Campus is the numeric campus code; required for College Checking only.
	Campus string
	// Loyal is "0" or "1"; required for Savings only.
	Loyal string
}

type TransactionInput struct {
	AccountRef
	Amount string
}

// Statement is one account's line in a fee/interest report. Balance is the
// balance after the report ran: unchanged for FeesAndInterests, updated for
// UpdateBalances.
type Statement struct {
	Account  domain.Account
	Interest decimal.Decimal
	Fee      decimal.Decimal
	Balance  decimal.Decimal
}
