package domain

import "errors"

var (
	ErrUnknownAccountType = errors.New("unknown account type")
	ErrInvalidCampus      = errors.New("invalid campus code")
	ErrNonPositiveAmount  = errors.New("amount must be greater than zero")
	ErrInsufficientFunds  = errors.New("insufficient funds")
)
