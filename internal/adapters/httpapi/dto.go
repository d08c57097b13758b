package httpapi

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/oapi-codegen/nullable"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/Overland-East-Bay/account-ledger/internal/app/ledger"
	"github.com/Overland-East-Bay/account-ledger/internal/domain"
)

// HolderRequest carries the holder as the teller typed it; dateOfBirth is M/D/YYYY.
type HolderRequest struct {
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	DateOfBirth string `json:"dateOfBirth"`
}

type AccountRefRequest struct {
	AccountType string        `json:"accountType"`
	Holder      HolderRequest `json:"holder"`
}

type OpenAccountRequest struct {
	AccountRefRequest
	Amount json.Number `json:"amount"`

	// Campus is required for College Checking, Loyal (0 or 1) for Savings.
	Campus nullable.Nullable[int] `json:"campus,omitempty"`
	Loyal  nullable.Nullable[int] `json:"loyal,omitempty"`
}

type TransactionRequest struct {
	AccountRefRequest
	Amount json.Number `json:"amount"`
}

type HolderResponse struct {
	FirstName   string             `json:"firstName"`
	LastName    string             `json:"lastName"`
	DateOfBirth openapi_types.Date `json:"dateOfBirth"`
}

type AccountResponse struct {
	AccountID   string         `json:"accountId"`
	AccountType string         `json:"accountType"`
	Holder      HolderResponse `json:"holder"`
	Balance     string         `json:"balance"`
	OpenedAt    time.Time      `json:"openedAt"`
	Summary     string         `json:"summary"`

	Campus      nullable.Nullable[string] `json:"campus,omitempty"`
	Loyal       nullable.Nullable[bool]   `json:"loyal,omitempty"`
	Withdrawals nullable.Nullable[int]    `json:"withdrawals,omitempty"`
}

type AccountEnvelope struct {
	Account AccountResponse `json:"account"`
}

type AccountListResponse struct {
	Accounts []AccountResponse `json:"accounts"`
}

type LookupResponse struct {
	Open bool `json:"open"`
}

type StatementResponse struct {
	Account  AccountResponse `json:"account"`
	Interest string          `json:"interest"`
	Fee      string          `json:"fee"`
	Balance  string          `json:"balance"`
}

type StatementListResponse struct {
	Statements []StatementResponse `json:"statements"`
}

func (r AccountRefRequest) toInput() ledger.AccountRef {
	return ledger.AccountRef{
		AccountType: r.AccountType,
		Holder: ledger.HolderInput{
			FirstName:   r.Holder.FirstName,
			LastName:    r.Holder.LastName,
			DateOfBirth: r.Holder.DateOfBirth,
		},
	}
}

func (r OpenAccountRequest) toInput() ledger.OpenInput {
	return ledger.OpenInput{
		AccountRef: r.AccountRefRequest.toInput(),
		Amount:     r.Amount.String(),
		Campus:     stringFromNullableInt(r.Campus),
		Loyal:      stringFromNullableInt(r.Loyal),
	}
}

func (r TransactionRequest) toInput() ledger.TransactionInput {
	return ledger.TransactionInput{
		AccountRef: r.AccountRefRequest.toInput(),
		Amount:     r.Amount.String(),
	}
}

// stringFromNullableInt maps an absent or null member to "", which the
// service reports as missing data.
func stringFromNullableInt(n nullable.Nullable[int]) string {
	if !n.IsSpecified() || n.IsNull() {
		return ""
	}
	v, err := n.Get()
	if err != nil {
		return ""
	}
	return strconv.Itoa(v)
}

func accountFromDomain(a domain.Account, p domain.Policy) AccountResponse {
	out := AccountResponse{
		AccountID:   string(a.ID),
		AccountType: string(a.Type),
		Holder: HolderResponse{
			FirstName:   a.Holder.FirstName,
			LastName:    a.Holder.LastName,
			DateOfBirth: openapi_types.Date{Time: a.Holder.DOB.Time()},
		},
		Balance:  a.Balance.StringFixed(2),
		OpenedAt: a.OpenedAt.UTC(),
		Summary:  a.Describe(p),
	}
	switch a.Type {
	case domain.AccountTypeCollegeChecking:
		out.Campus.Set(a.Campus.String())
	case domain.AccountTypeSavings:
		out.Loyal.Set(a.Loyal)
	case domain.AccountTypeMoneyMarket:
		out.Loyal.Set(a.IsLoyal(p))
		out.Withdrawals.Set(a.Withdrawals)
	}
	return out
}

func accountsFromDomain(as []domain.Account, p domain.Policy) []AccountResponse {
	out := make([]AccountResponse, 0, len(as))
	for _, a := range as {
		out = append(out, accountFromDomain(a, p))
	}
	return out
}

func statementsFromApp(sts []ledger.Statement, p domain.Policy) []StatementResponse {
	out := make([]StatementResponse, 0, len(sts))
	for _, st := range sts {
		out = append(out, StatementResponse{
			Account:  accountFromDomain(st.Account, p),
			Interest: st.Interest.StringFixed(2),
			Fee:      st.Fee.StringFixed(2),
			Balance:  st.Balance.StringFixed(2),
		})
	}
	return out
}
