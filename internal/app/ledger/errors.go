package ledger

// Error is an application-layer error that adapters map to a response.
// Code is stable; Message is a human-readable default.
type Error struct {
	Status  int
	Code    string
	Message string
	Details map[string]any
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Message != "" {
		return e.Message
	}
	return e.Code
}

const (
	CodeMissingData          = "MISSING_DATA"
	CodeUnknownAccountType   = "UNKNOWN_ACCOUNT_TYPE"
	CodeInvalidDate          = "INVALID_DATE"
	CodeDOBNotInPast         = "DOB_NOT_IN_PAST"
	CodeUnderage             = "UNDERAGE"
	CodeOverAgeLimit         = "OVER_AGE_LIMIT"
	CodeInvalidAmount        = "INVALID_AMOUNT"
	CodeNonPositiveAmount    = "NON_POSITIVE_AMOUNT"
	CodeInvalidCampus        = "INVALID_CAMPUS"
	CodeInvalidLoyalty       = "INVALID_LOYALTY"
	CodeBelowMinimumBalance  = "BELOW_MINIMUM_BALANCE"
	CodeAccountNotFound      = "ACCOUNT_NOT_FOUND"
	CodeAccountAlreadyExists = "ACCOUNT_ALREADY_EXISTS"
	CodeAccountTypeConflict  = "ACCOUNT_TYPE_CONFLICT"
	CodeInsufficientFunds    = "INSUFFICIENT_FUNDS"
)

func validationError(code, message string, details map[string]any) *Error {
	return &Error{Status: 422, Code: code, Message: message, Details: details}
}

func conflictError(code, message string, details map[string]any) *Error {
	return &Error{Status: 409, Code: code, Message: message, Details: details}
}

func notFoundError(message string) *Error {
	return &Error{Status: 404, Code: CodeAccountNotFound, Message: message}
}
