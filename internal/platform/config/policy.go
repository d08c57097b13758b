package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Overland-East-Bay/account-ledger/internal/domain"
)

// LoadPolicyFromEnv returns domain.DefaultPolicy with any LEDGER_* overrides applied.
//
// Per-type variables use the type name as prefix, e.g. LEDGER_SAVINGS_LOYAL_ANNUAL_RATE=0.0425
// or LEDGER_CHECKING_MONTHLY_FEE=12. Rates are annual fractions.
func LoadPolicyFromEnv() (domain.Policy, error) {
	return loadPolicy(os.Getenv)
}

func loadPolicy(getenv func(string) string) (domain.Policy, error) {
	p := domain.DefaultPolicy()

	for _, t := range domain.AccountTypes {
		tp := p.For(t)
		prefix := "LEDGER_" + string(t) + "_"
		fields := []struct {
			name string
			dst  *decimal.Decimal
		}{
			{"ANNUAL_RATE", &tp.AnnualRate},
			{"LOYAL_ANNUAL_RATE", &tp.LoyalAnnualRate},
			{"MONTHLY_FEE", &tp.MonthlyFee},
			{"FEE_WAIVER_BALANCE", &tp.FeeWaiverBalance},
		}
		for _, f := range fields {
			if err := decimalFromEnv(getenv, prefix+f.name, f.dst); err != nil {
				return domain.Policy{}, err
			}
		}
		p.Set(t, tp)
	}

	if err := intFromEnv(getenv, "LEDGER_MIN_AGE", &p.MinimumAge); err != nil {
		return domain.Policy{}, err
	}
	if err := intFromEnv(getenv, "LEDGER_COLLEGE_MAX_AGE", &p.CollegeMaximumAge); err != nil {
		return domain.Policy{}, err
	}
	if err := decimalFromEnv(getenv, "LEDGER_MONEY_MARKET_MIN_OPENING", &p.MoneyMarketMinimumOpening); err != nil {
		return domain.Policy{}, err
	}
	if err := intFromEnv(getenv, "LEDGER_MONEY_MARKET_WITHDRAWAL_CAP", &p.MoneyMarketLoyaltyWithdrawalCap); err != nil {
		return domain.Policy{}, err
	}
	return p, nil
}

func decimalFromEnv(getenv func(string) string, key string, dst *decimal.Decimal) error {
	v := strings.TrimSpace(getenv(key))
	if v == "" {
		return nil
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return fmt.Errorf("%s must be a decimal (e.g. 0.025): %w", key, err)
	}
	if d.IsNegative() {
		return fmt.Errorf("%s must not be negative", key)
	}
	*dst = d
	return nil
}

func intFromEnv(getenv func(string) string, key string, dst *int) error {
	v := strings.TrimSpace(getenv(key))
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s must be an integer: %w", key, err)
	}
	if n < 0 {
		return fmt.Errorf("%s must not be negative", key)
	}
	*dst = n
	return nil
}
