package ledger

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Overland-East-Bay/account-ledger/internal/domain"
	"github.com/Overland-East-Bay/account-ledger/internal/platform/logger"
	"github.com/Overland-East-Bay/account-ledger/internal/ports/out/accountrepo"
	clockport "github.com/Overland-East-Bay/account-ledger/internal/ports/out/clock"
)

// Service validates teller requests and applies them to the account database.
//
// Mutating operations run one at a time: the Checking/College Checking check and
// the identity check need a consistent view of every open account.
type Service struct {
	mu sync.Mutex

	repo   accountrepo.Repository
	clk    clockport.Clock
	policy domain.Policy

	newAccountID func() domain.AccountID
}

func NewService(repo accountrepo.Repository, clk clockport.Clock, policy domain.Policy) *Service {
	return &Service{
		repo:   repo,
		clk:    clk,
		policy: policy,
		newAccountID: func() domain.AccountID {
			return domain.AccountID(uuid.NewString())
		},
	}
}

// Policy returns the rate and fee table the service applies.
func (s *Service) Policy() domain.Policy { return s.policy }

func (s *Service) Open(ctx context.Context, in OpenInput) (domain.Account, error) {
	t, holder, err := s.resolve(in.AccountRef)
	if err != nil {
		return domain.Account{}, err
	}
	amount, err := parseAmount(in.Amount)
	if err != nil {
		return domain.Account{}, err
	}

	now := s.clk.Now()
	a := domain.Account{
		Type:     t,
		Holder:   holder,
		Balance:  amount,
		OpenedAt: now,
	}
	switch t {
	case domain.AccountTypeCollegeChecking:
		if holder.Age(now) >= s.policy.CollegeMaximumAge {
			return domain.Account{}, validationError(CodeOverAgeLimit,
				fmt.Sprintf("DOB invalid: %s over %d.", holder.DOB, s.policy.CollegeMaximumAge),
				map[string]any{"maximumAge": s.policy.CollegeMaximumAge})
		}
		campus, err := parseCampus(in.Campus)
		if err != nil {
			return domain.Account{}, err
		}
		a.Campus = campus
	case domain.AccountTypeSavings:
		loyal, err := parseLoyalty(in.Loyal)
		if err != nil {
			return domain.Account{}, err
		}
		a.Loyal = loyal
	}
	if minimum := s.policy.MinimumOpeningBalance(t); amount.LessThan(minimum) {
		return domain.Account{}, validationError(CodeBelowMinimumBalance,
			fmt.Sprintf("Minimum of $%s to open a %s account.", minimum.StringFixed(0), t.DisplayName()),
			map[string]any{"minimum": minimum.StringFixed(2)})
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if other, ok := exclusiveWith(t); ok {
		held, err := s.repo.HasHolderType(ctx, holder, other)
		if err != nil {
			logger.Error("ledger open holder type lookup failed", err, logger.Fields{"type": t})
			return domain.Account{}, err
		}
		if held {
			return domain.Account{}, conflictError(CodeAccountTypeConflict,
				fmt.Sprintf("%s already holds a %s account.", holder, other.DisplayName()),
				map[string]any{"conflictingType": string(other)})
		}
	}

	a.ID = s.newAccountID()
	if err := s.repo.Open(ctx, a); err != nil {
		if errors.Is(err, accountrepo.ErrAlreadyExists) {
			return domain.Account{}, conflictError(CodeAccountAlreadyExists,
				fmt.Sprintf("%s(%s) is already in the database.", holder, t.Code()), nil)
		}
		logger.Error("ledger open failed", err, logger.Fields{"type": t})
		return domain.Account{}, err
	}
	logger.Info("ledger account opened", logger.Fields{"accountId": a.ID, "type": t, "holder": holderFields(holder)})
	return a, nil
}

func (s *Service) Close(ctx context.Context, ref AccountRef) error {
	t, holder, err := s.resolve(ref)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := domain.AccountKey{Holder: holder.Key(), Type: t}
	if err := s.repo.Close(ctx, key); err != nil {
		if errors.Is(err, accountrepo.ErrNotFound) {
			return notInDatabase(holder, t)
		}
		logger.Error("ledger close failed", err, logger.Fields{"type": t})
		return err
	}
	logger.Info("ledger account closed", logger.Fields{"type": t, "holder": holderFields(holder)})
	return nil
}

// Contains reports whether the referenced account is open.
func (s *Service) Contains(ctx context.Context, ref AccountRef) (bool, error) {
	t, holder, err := s.resolve(ref)
	if err != nil {
		return false, err
	}
	if _, err := s.repo.Get(ctx, domain.AccountKey{Holder: holder.Key(), Type: t}); err != nil {
		if errors.Is(err, accountrepo.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// ContainsHolderType reports whether holder has an open account of type t.
func (s *Service) ContainsHolderType(ctx context.Context, holder domain.Profile, t domain.AccountType) (bool, error) {
	return s.repo.HasHolderType(ctx, holder, t)
}

// Get returns the stored account for ref.
func (s *Service) Get(ctx context.Context, ref AccountRef) (domain.Account, error) {
	t, holder, err := s.resolve(ref)
	if err != nil {
		return domain.Account{}, err
	}
	a, err := s.repo.Get(ctx, domain.AccountKey{Holder: holder.Key(), Type: t})
	if err != nil {
		if errors.Is(err, accountrepo.ErrNotFound) {
			return domain.Account{}, notInDatabase(holder, t)
		}
		return domain.Account{}, err
	}
	return a, nil
}

func (s *Service) Deposit(ctx context.Context, in TransactionInput) (domain.Account, error) {
	return s.transact(ctx, in, "deposit", s.repo.Deposit)
}

// Withdraw subtracts the amount from the stored account. A withdrawal larger
// than the balance fails with INSUFFICIENT_FUNDS and changes nothing.
func (s *Service) Withdraw(ctx context.Context, in TransactionInput) (domain.Account, error) {
	return s.transact(ctx, in, "withdraw", s.repo.Withdraw)
}

type moveFunc func(ctx context.Context, key domain.AccountKey, amount decimal.Decimal) (domain.Account, error)

func (s *Service) transact(ctx context.Context, in TransactionInput, op string, move moveFunc) (domain.Account, error) {
	t, holder, err := s.resolve(in.AccountRef)
	if err != nil {
		return domain.Account{}, err
	}
	amount, err := parseAmount(in.Amount)
	if err != nil {
		return domain.Account{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := domain.AccountKey{Holder: holder.Key(), Type: t}
	if _, err := s.repo.Get(ctx, key); err != nil {
		if errors.Is(err, accountrepo.ErrNotFound) {
			return domain.Account{}, notInDatabase(holder, t)
		}
		return domain.Account{}, err
	}
	a, err := move(ctx, key, amount)
	if err != nil {
		if errors.Is(err, accountrepo.ErrInsufficientFunds) {
			return a, conflictError(CodeInsufficientFunds,
				fmt.Sprintf("%s(%s) Withdraw - insufficient fund.", holder, t.Code()),
				map[string]any{"balance": a.Balance.StringFixed(2)})
		}
		logger.Error("ledger "+op+" failed", err, logger.Fields{"type": t})
		return domain.Account{}, err
	}
	logger.Info("ledger "+op, logger.Fields{"accountId": a.ID, "type": t, "amount": amount.StringFixed(2)})
	return a, nil
}

// Sorted lists every open account grouped by type, then ordered by holder.
func (s *Service) Sorted(ctx context.Context) ([]domain.Account, error) {
	return s.repo.List(ctx)
}

// FeesAndInterests reports this period's interest and fee for every account
// without changing any balance.
func (s *Service) FeesAndInterests(ctx context.Context) ([]Statement, error) {
	as, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Statement, 0, len(as))
	for _, a := range as {
		out = append(out, Statement{
			Account:  a,
			Interest: a.MonthlyInterest(s.policy).Round(2),
			Fee:      a.MonthlyFee(s.policy),
			Balance:  a.Balance,
		})
	}
	return out, nil
}

// UpdateBalances applies this period's interest and fee to every account.
// Either every account is updated or, when a write fails, the accounts already
// written are restored and the error is returned.
func (s *Service) UpdateBalances(ctx context.Context) ([]Statement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	as, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Statement, 0, len(as))
	for _, a := range as {
		st := Statement{
			Interest: a.MonthlyInterest(s.policy).Round(2),
			Fee:      a.MonthlyFee(s.policy),
			Balance:  a.UpdatedBalance(s.policy),
		}
		st.Account = a
		st.Account.Balance = st.Balance
		out = append(out, st)
	}

	for i, st := range out {
		if err := s.repo.Update(ctx, st.Account); err != nil {
			logger.Error("ledger balance update failed", err, logger.Fields{"accountId": st.Account.ID})
			s.restore(ctx, as[:i])
			return nil, err
		}
	}
	logger.Info("ledger balances updated", logger.Fields{"accounts": len(out)})
	return out, nil
}

// restore writes back accounts as they were listed. It runs even when ctx has
// been cancelled.
func (s *Service) restore(ctx context.Context, as []domain.Account) {
	ctx = context.WithoutCancel(ctx)
	for _, a := range as {
		if err := s.repo.Update(ctx, a); err != nil {
			logger.Error("ledger balance restore failed", err, logger.Fields{"accountId": a.ID})
		}
	}
}

// resolve validates the account type and holder shared by every request.
func (s *Service) resolve(ref AccountRef) (domain.AccountType, domain.Profile, error) {
	t, err := domain.ParseAccountType(ref.AccountType)
	if err != nil {
		if strings.TrimSpace(ref.AccountType) == "" {
			return "", domain.Profile{}, missingData("accountType")
		}
		return "", domain.Profile{}, validationError(CodeUnknownAccountType,
			fmt.Sprintf("Invalid account type %q.", ref.AccountType), nil)
	}
	holder, err := s.resolveHolder(ref.Holder)
	if err != nil {
		return "", domain.Profile{}, err
	}
	return t, holder, nil
}

func (s *Service) resolveHolder(in HolderInput) (domain.Profile, error) {
	first := domain.NormalizeHumanName(in.FirstName)
	last := domain.NormalizeHumanName(in.LastName)
	token := strings.TrimSpace(in.DateOfBirth)
	switch {
	case first == "":
		return domain.Profile{}, missingData("firstName")
	case last == "":
		return domain.Profile{}, missingData("lastName")
	case token == "":
		return domain.Profile{}, missingData("dateOfBirth")
	}

	dob, err := domain.ParseDate(token)
	if err != nil || !dob.IsValid() {
		return domain.Profile{}, validationError(CodeInvalidDate,
			fmt.Sprintf("DOB invalid: %s not a valid calendar date!", token),
			map[string]any{"dateOfBirth": token})
	}
	now := s.clk.Now()
	if !dob.IsBeforeToday(now) {
		return domain.Profile{}, validationError(CodeDOBNotInPast,
			fmt.Sprintf("DOB invalid: %s cannot be today or a future day.", token),
			map[string]any{"dateOfBirth": token})
	}
	p := domain.NewProfile(first, last, dob)
	if p.Age(now) < s.policy.MinimumAge {
		return domain.Profile{}, validationError(CodeUnderage,
			fmt.Sprintf("DOB invalid: %s under %d.", dob, s.policy.MinimumAge),
			map[string]any{"minimumAge": s.policy.MinimumAge})
	}
	return p, nil
}

// holderFields describes a holder for the log. The date of birth is masked by
// the logger.
func holderFields(p domain.Profile) logger.Fields {
	return logger.Fields{
		"firstName":   p.FirstName,
		"lastName":    p.LastName,
		"dateOfBirth": p.DOB.String(),
	}
}

// exclusiveWith returns the type a holder may not hold alongside t.
func exclusiveWith(t domain.AccountType) (domain.AccountType, bool) {
	switch t {
	case domain.AccountTypeChecking:
		return domain.AccountTypeCollegeChecking, true
	case domain.AccountTypeCollegeChecking:
		return domain.AccountTypeChecking, true
	default:
		return "", false
	}
}

func parseAmount(raw string) (decimal.Decimal, error) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return decimal.Decimal{}, missingData("amount")
	}
	d, err := decimal.NewFromString(v)
	if err != nil || !amountInRange(d) {
		return decimal.Decimal{}, validationError(CodeInvalidAmount, "Not a valid amount.", map[string]any{"amount": v})
	}
	d = d.Round(2)
	if !d.IsPositive() {
		return decimal.Decimal{}, validationError(CodeNonPositiveAmount, "Amount cannot be 0 or negative.", map[string]any{"amount": v})
	}
	return d, nil
}

// Bounds on a parsed amount, checked on exponent and digit count only:
// Round, Cmp and friends rescale to a common exponent, which for an input such
// as 1e999999999 means an unbounded big.Int computation.
const (
	maxAmountIntegerDigits = 15
	minAmountExponent      = -20
)

func amountInRange(d decimal.Decimal) bool {
	exp := d.Exponent()
	if exp < minAmountExponent || exp > maxAmountIntegerDigits {
		return false
	}
	return d.NumDigits()+int(exp) <= maxAmountIntegerDigits
}

func parseCampus(raw string) (domain.Campus, error) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return 0, missingData("campus")
	}
	code, err := strconv.Atoi(v)
	if err != nil {
		return 0, missingData("campus")
	}
	c, err := domain.ParseCampus(code)
	if err != nil {
		return 0, validationError(CodeInvalidCampus, "Invalid campus code.", map[string]any{"campus": code})
	}
	return c, nil
}

func parseLoyalty(raw string) (bool, error) {
	switch strings.TrimSpace(raw) {
	case "":
		return false, missingData("loyal")
	case "0":
		return false, nil
	case "1":
		return true, nil
	default:
		return false, validationError(CodeInvalidLoyalty, "Loyalty must be 0 or 1.", map[string]any{"loyal": raw})
	}
}

func missingData(field string) *Error {
	return validationError(CodeMissingData, "Missing data for "+field+".", map[string]any{"field": field})
}

func notInDatabase(holder domain.Profile, t domain.AccountType) *Error {
	return notFoundError(fmt.Sprintf("%s(%s) is not in the database.", holder, t.Code()))
}
