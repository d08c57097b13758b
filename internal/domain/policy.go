package domain

import "github.com/shopspring/decimal"

// TypePolicy holds the interest and fee parameters of one account type.
// Rates are annual fractions (0.01 is 1%).
type TypePolicy struct {
	AnnualRate      decimal.Decimal
	LoyalAnnualRate decimal.Decimal

	MonthlyFee       decimal.Decimal
	FeeWaiverBalance decimal.Decimal
}

// Policy is the bank's rate, fee and eligibility table.
type Policy struct {
	Checking        TypePolicy
	CollegeChecking TypePolicy
	MoneyMarket     TypePolicy
	Savings         TypePolicy

	MinimumAge        int
	CollegeMaximumAge int

	MoneyMarketMinimumOpening       decimal.Decimal
	MoneyMarketLoyaltyWithdrawalCap int
}

func DefaultPolicy() Policy {
	return Policy{
		Checking: TypePolicy{
			AnnualRate:       decimal.RequireFromString("0.01"),
			LoyalAnnualRate:  decimal.RequireFromString("0.01"),
			MonthlyFee:       decimal.NewFromInt(12),
			FeeWaiverBalance: decimal.NewFromInt(1000),
		},
		CollegeChecking: TypePolicy{
			AnnualRate:       decimal.RequireFromString("0.025"),
			LoyalAnnualRate:  decimal.RequireFromString("0.025"),
			MonthlyFee:       decimal.Zero,
			FeeWaiverBalance: decimal.Zero,
		},
		MoneyMarket: TypePolicy{
			AnnualRate:       decimal.RequireFromString("0.045"),
			LoyalAnnualRate:  decimal.RequireFromString("0.0475"),
			MonthlyFee:       decimal.NewFromInt(25),
			FeeWaiverBalance: decimal.NewFromInt(2000),
		},
		Savings: TypePolicy{
			AnnualRate:       decimal.RequireFromString("0.04"),
			LoyalAnnualRate:  decimal.RequireFromString("0.0425"),
			MonthlyFee:       decimal.NewFromInt(25),
			FeeWaiverBalance: decimal.NewFromInt(500),
		},
		MinimumAge:                      16,
		CollegeMaximumAge:               24,
		MoneyMarketMinimumOpening:       decimal.NewFromInt(2000),
		MoneyMarketLoyaltyWithdrawalCap: 3,
	}
}

// For returns the parameters of account type t.
func (p Policy) For(t AccountType) TypePolicy {
	if tp := p.typePolicy(t); tp != nil {
		return *tp
	}
	return TypePolicy{}
}

// Set replaces the parameters of account type t. Unknown types are ignored.
func (p *Policy) Set(t AccountType, tp TypePolicy) {
	if dst := p.typePolicy(t); dst != nil {
		*dst = tp
	}
}

func (p *Policy) typePolicy(t AccountType) *TypePolicy {
	switch t {
	case AccountTypeChecking:
		return &p.Checking
	case AccountTypeCollegeChecking:
		return &p.CollegeChecking
	case AccountTypeMoneyMarket:
		return &p.MoneyMarket
	case AccountTypeSavings:
		return &p.Savings
	default:
		return nil
	}
}

// MinimumOpeningBalance is the smallest initial deposit accepted for type t.
// Every type requires a positive deposit; Money Market also has a floor.
func (p Policy) MinimumOpeningBalance(t AccountType) decimal.Decimal {
	if t == AccountTypeMoneyMarket {
		return p.MoneyMarketMinimumOpening
	}
	return decimal.Zero
}
