package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type AccountType string

const (
	AccountTypeChecking        AccountType = "CHECKING"
	AccountTypeCollegeChecking AccountType = "COLLEGE_CHECKING"
	AccountTypeMoneyMarket     AccountType = "MONEY_MARKET"
	AccountTypeSavings         AccountType = "SAVINGS"
)

// AccountTypes lists every account type in report precedence order.
var AccountTypes = []AccountType{
	AccountTypeChecking,
	AccountTypeCollegeChecking,
	AccountTypeMoneyMarket,
	AccountTypeSavings,
}

var accountTypeCodes = map[AccountType]string{
	AccountTypeChecking:        "C",
	AccountTypeCollegeChecking: "CC",
	AccountTypeMoneyMarket:     "MM",
	AccountTypeSavings:         "S",
}

var accountTypeNames = map[AccountType]string{
	AccountTypeChecking:        "Checking",
	AccountTypeCollegeChecking: "College Checking",
	AccountTypeMoneyMarket:     "Money Market",
	AccountTypeSavings:         "Savings",
}

// ParseAccountType resolves a case-insensitive short code (C, CC, S, MM) or
// long name (checking, college-checking, savings, money-market).
func ParseAccountType(token string) (AccountType, error) {
	t := strings.ToUpper(strings.TrimSpace(token))
	t = strings.NewReplacer("-", "_", " ", "_").Replace(t)
	for _, at := range AccountTypes {
		if t == string(at) || t == accountTypeCodes[at] {
			return at, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownAccountType, token)
}

func (t AccountType) Valid() bool {
	_, ok := accountTypeCodes[t]
	return ok
}

// Code is the short command code of the type (C, CC, MM, S).
func (t AccountType) Code() string { return accountTypeCodes[t] }

// DisplayName is the human-readable name of the type.
func (t AccountType) DisplayName() string { return accountTypeNames[t] }

// Precedence is the position of the type's group in sorted reports.
func (t AccountType) Precedence() int {
	for i, at := range AccountTypes {
		if at == t {
			return i
		}
	}
	return len(AccountTypes)
}

// Campus is the campus affiliation of a College Checking holder.
type Campus int

const (
	CampusNewBrunswick Campus = iota
	CampusNewark
	CampusCamden
)

var campusNames = []string{"NEW_BRUNSWICK", "NEWARK", "CAMDEN"}

// ParseCampus resolves a numeric campus code.
func ParseCampus(code int) (Campus, error) {
	if code < 0 || code >= len(campusNames) {
		return 0, fmt.Errorf("%w: %d", ErrInvalidCampus, code)
	}
	return Campus(code), nil
}

func (c Campus) String() string {
	if c < 0 || int(c) >= len(campusNames) {
		return fmt.Sprintf("Campus(%d)", int(c))
	}
	return campusNames[c]
}

// AccountKey is the identity of an account: the same holder may own one
// account of each type. Balance is not part of identity.
type AccountKey struct {
	Holder HolderKey
	Type   AccountType
}

// Account is the shared record for every account type. Campus is only
// meaningful for College Checking, Loyal for Savings, and Withdrawals for
// Money Market.
type Account struct {
	ID      AccountID
	Type    AccountType
	Holder  Profile
	Balance decimal.Decimal

	Campus      Campus
	Loyal       bool
	Withdrawals int

	OpenedAt time.Time
}

func (a Account) Key() AccountKey {
	return AccountKey{Holder: a.Holder.Key(), Type: a.Type}
}

// IsLoyal reports whether the account currently earns the loyalty-tier rate.
func (a Account) IsLoyal(p Policy) bool {
	switch a.Type {
	case AccountTypeSavings:
		return a.Loyal
	case AccountTypeMoneyMarket:
		return a.Withdrawals < p.MoneyMarketLoyaltyWithdrawalCap
	default:
		return false
	}
}

type accountRule struct {
	annualRate func(a Account, p Policy) decimal.Decimal
	feeWaived  func(a Account, p Policy) bool
}

var accountRules = map[AccountType]accountRule{
	AccountTypeChecking:        {annualRate: baseRate, feeWaived: waivedAtBalance},
	AccountTypeCollegeChecking: {annualRate: baseRate, feeWaived: alwaysWaived},
	AccountTypeMoneyMarket:     {annualRate: loyaltyRate, feeWaived: waivedAtBalance},
	AccountTypeSavings:         {annualRate: loyaltyRate, feeWaived: waivedAtBalance},
}

func baseRate(a Account, p Policy) decimal.Decimal {
	return p.For(a.Type).AnnualRate
}

func loyaltyRate(a Account, p Policy) decimal.Decimal {
	if a.IsLoyal(p) {
		return p.For(a.Type).LoyalAnnualRate
	}
	return p.For(a.Type).AnnualRate
}

func waivedAtBalance(a Account, p Policy) bool {
	return a.Balance.Round(2).GreaterThanOrEqual(p.For(a.Type).FeeWaiverBalance)
}

func alwaysWaived(Account, Policy) bool { return true }

var monthsPerYear = decimal.NewFromInt(12)

// AnnualRate is the rate the account currently earns, loyalty tier included.
func (a Account) AnnualRate(p Policy) decimal.Decimal {
	rule, ok := accountRules[a.Type]
	if !ok {
		return decimal.Zero
	}
	return rule.annualRate(a, p)
}

func (a Account) MonthlyInterestRate(p Policy) decimal.Decimal {
	return a.AnnualRate(p).Div(monthsPerYear)
}

// MonthlyInterest is the interest earned on the current balance this period.
func (a Account) MonthlyInterest(p Policy) decimal.Decimal {
	return a.Balance.Mul(a.AnnualRate(p)).Div(monthsPerYear)
}

// MonthlyFee is the fee charged this period, zero when waived.
func (a Account) MonthlyFee(p Policy) decimal.Decimal {
	rule, ok := accountRules[a.Type]
	if !ok || rule.feeWaived(a, p) {
		return decimal.Zero
	}
	return p.For(a.Type).MonthlyFee
}

// UpdatedBalance is the balance after this period's interest and fee, in cents.
// A fee larger than the balance empties the account rather than overdrawing it.
func (a Account) UpdatedBalance(p Policy) decimal.Decimal {
	b := a.Balance.Add(a.MonthlyInterest(p)).Sub(a.MonthlyFee(p)).Round(2)
	if b.IsNegative() {
		return decimal.Zero
	}
	return b
}

func (a *Account) Deposit(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return ErrNonPositiveAmount
	}
	a.Balance = a.Balance.Add(amount)
	return nil
}

// Withdraw subtracts amount from the balance. The balance is left untouched when
// amount exceeds it. Money Market counts each successful withdrawal.
func (a *Account) Withdraw(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return ErrNonPositiveAmount
	}
	if amount.GreaterThan(a.Balance) {
		return ErrInsufficientFunds
	}
	a.Balance = a.Balance.Sub(amount)
	if a.Type == AccountTypeMoneyMarket {
		a.Withdrawals++
	}
	return nil
}

// Describe renders the account for listings, e.g.
// "Savings::Jane Doe 1/15/1987::Balance $1500.00::is loyal".
func (a Account) Describe(p Policy) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s::%s::Balance $%s", a.Type.DisplayName(), a.Holder, a.Balance.StringFixed(2))
	switch a.Type {
	case AccountTypeCollegeChecking:
		sb.WriteString("::" + a.Campus.String())
	case AccountTypeSavings:
		if a.Loyal {
			sb.WriteString("::is loyal")
		}
	case AccountTypeMoneyMarket:
		if a.IsLoyal(p) {
			sb.WriteString("::is loyal")
		}
		fmt.Fprintf(&sb, "::withdrawal: %d", a.Withdrawals)
	}
	return sb.String()
}

// CompareForReport orders accounts by type precedence, then holder.
func CompareForReport(a, b Account) int {
	if c := cmpInt(a.Type.Precedence(), b.Type.Precedence()); c != 0 {
		return c
	}
	return a.Holder.Compare(b.Holder)
}
