package domain

// AccountID is an internal identifier assigned to an account when it is opened.
// It is not part of account identity: see Account.Key.
type AccountID string
