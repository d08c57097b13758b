package contracttest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Overland-East-Bay/account-ledger/internal/domain"
	accountrepoport "github.com/Overland-East-Bay/account-ledger/internal/ports/out/accountrepo"
	idempotencyport "github.com/Overland-East-Bay/account-ledger/internal/ports/out/idempotency"
)

type CleanupFunc = func()

type AccountRepoFactory func(t *testing.T) (accountrepoport.Repository, CleanupFunc)
type IdemStoreFactory func(t *testing.T) (idempotencyport.Store, CleanupFunc)

func RunIdempotencyStore(t *testing.T, newStore IdemStoreFactory) {
	t.Helper()
	ctx := context.Background()

	store, cleanup := newStore(t)
	if cleanup != nil {
		t.Cleanup(cleanup)
	}

	fp := idempotencyport.Fingerprint{
		Key:      "k-1",
		Method:   "POST",
		Route:    "/accounts/deposit",
		BodyHash: "",
	}
	if _, ok, err := store.Get(ctx, fp); err != nil || ok {
		t.Fatalf("Get on empty store ok=%v err=%v, want ok=false", ok, err)
	}

	rec := idempotencyport.Record{
		StatusCode:  0,
		ContentType: "text/plain",
		Body:        []byte("hash-abc"),
		CreatedAt:   time.Unix(123, 0).UTC(),
	}
	if err := store.Put(ctx, fp, rec); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, ok, err := store.Get(ctx, fp)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !ok {
		t.Fatalf("expected ok=true")
	}
	if string(got.Body) != "hash-abc" || got.ContentType != "text/plain" || got.StatusCode != 0 {
		t.Fatalf("unexpected record: %+v", got)
	}

	// Overwrite semantics.
	rec2 := rec
	rec2.Body = []byte("hash-def")
	if err := store.Put(ctx, fp, rec2); err != nil {
		t.Fatalf("Put overwrite: %v", err)
	}
	got, ok, err = store.Get(ctx, fp)
	if err != nil || !ok || string(got.Body) != "hash-def" {
		t.Fatalf("expected overwritten record, got ok=%v err=%v body=%q", ok, err, string(got.Body))
	}

	// A different body hash is a different fingerprint.
	other := fp
	other.BodyHash = "xyz"
	if _, ok, err := store.Get(ctx, other); err != nil || ok {
		t.Fatalf("Get(other) ok=%v err=%v, want ok=false", ok, err)
	}
}

func newAccount(t domain.AccountType, first, last string, dob domain.Date, balance string) domain.Account {
	return domain.Account{
		ID:      domain.AccountID(uuid.NewString()),
		Type:    t,
		Holder:  domain.NewProfile(first, last, dob),
		Balance: decimal.RequireFromString(balance),
	}
}

func RunAccountRepo(t *testing.T, newRepo AccountRepoFactory) {
	t.Helper()
	ctx := context.Background()

	repo, cleanup := newRepo(t)
	if cleanup != nil {
		t.Cleanup(cleanup)
	}

	dob := domain.Date{Month: 1, Day: 10, Year: 2002}
	savings := newAccount(domain.AccountTypeSavings, "Dharmik", "Patel", dob, "300")
	savings.Loyal = true

	// Close on an empty database.
	if err := repo.Close(ctx, savings.Key()); !errors.Is(err, accountrepoport.ErrNotFound) {
		t.Fatalf("Close on empty repo err=%v, want %v", err, accountrepoport.ErrNotFound)
	}

	if err := repo.Open(ctx, savings); err != nil {
		t.Fatalf("Open savings: %v", err)
	}
	got, err := repo.Get(ctx, savings.Key())
	if err != nil {
		t.Fatalf("Get after Open: %v", err)
	}
	if got.ID != savings.ID || !got.Balance.Equal(savings.Balance) || !got.Loyal {
		t.Fatalf("Get()=%+v, want %+v", got, savings)
	}

	// Identity ignores balance and name case.
	dup := newAccount(domain.AccountTypeSavings, "DHARMIK", "patel", dob, "9999")
	if err := repo.Open(ctx, dup); !errors.Is(err, accountrepoport.ErrAlreadyExists) {
		t.Fatalf("Open duplicate err=%v, want %v", err, accountrepoport.ErrAlreadyExists)
	}

	// Same holder, different type is a distinct account.
	checking := newAccount(domain.AccountTypeChecking, "Dharmik", "Patel", dob, "50")
	if err := repo.Open(ctx, checking); err != nil {
		t.Fatalf("Open checking: %v", err)
	}
	if ok, err := repo.HasHolderType(ctx, domain.NewProfile("dharmik", "PATEL", dob), domain.AccountTypeChecking); err != nil || !ok {
		t.Fatalf("HasHolderType(checking)=%v err=%v, want true", ok, err)
	}
	if ok, err := repo.HasHolderType(ctx, checking.Holder, domain.AccountTypeCollegeChecking); err != nil || ok {
		t.Fatalf("HasHolderType(college checking)=%v err=%v, want false", ok, err)
	}

	// Close of a never-opened account.
	mike := newAccount(domain.AccountTypeCollegeChecking, "Mike", "Ross", domain.Date{Month: 1, Day: 11, Year: 2002}, "6000")
	if err := repo.Close(ctx, mike.Key()); !errors.Is(err, accountrepoport.ErrNotFound) {
		t.Fatalf("Close(never opened) err=%v, want %v", err, accountrepoport.ErrNotFound)
	}

	// Deposit twice adds exactly twice.
	for i := 0; i < 2; i++ {
		if _, err := repo.Deposit(ctx, checking.Key(), decimal.RequireFromString("12.34")); err != nil {
			t.Fatalf("Deposit: %v", err)
		}
	}
	got, _ = repo.Get(ctx, checking.Key())
	if !got.Balance.Equal(decimal.RequireFromString("74.68")) {
		t.Fatalf("balance after deposits=%s, want 74.68", got.Balance)
	}

	// Withdraw never overdraws.
	if _, err := repo.Withdraw(ctx, checking.Key(), decimal.RequireFromString("74.69")); !errors.Is(err, accountrepoport.ErrInsufficientFunds) {
		t.Fatalf("Withdraw over balance err=%v, want %v", err, accountrepoport.ErrInsufficientFunds)
	}
	got, _ = repo.Get(ctx, checking.Key())
	if !got.Balance.Equal(decimal.RequireFromString("74.68")) {
		t.Fatalf("balance changed by declined withdraw: %s", got.Balance)
	}
	after, err := repo.Withdraw(ctx, checking.Key(), decimal.RequireFromString("74.68"))
	if err != nil {
		t.Fatalf("Withdraw: %v", err)
	}
	if !after.Balance.IsZero() {
		t.Fatalf("balance=%s, want 0", after.Balance)
	}
	if _, err := repo.Deposit(ctx, mike.Key(), decimal.NewFromInt(1)); !errors.Is(err, accountrepoport.ErrNotFound) {
		t.Fatalf("Deposit(missing) err=%v, want %v", err, accountrepoport.ErrNotFound)
	}

	// Money Market withdrawals are counted only on success.
	mm := newAccount(domain.AccountTypeMoneyMarket, "Roy", "Brooks", domain.Date{Month: 10, Day: 31, Year: 1979}, "2909.10")
	if err := repo.Open(ctx, mm); err != nil {
		t.Fatalf("Open money market: %v", err)
	}
	_, _ = repo.Withdraw(ctx, mm.Key(), decimal.NewFromInt(5000))
	if _, err := repo.Withdraw(ctx, mm.Key(), decimal.NewFromInt(9)); err != nil {
		t.Fatalf("Withdraw mm: %v", err)
	}
	got, _ = repo.Get(ctx, mm.Key())
	if got.Withdrawals != 1 || !got.Balance.Equal(decimal.RequireFromString("2900.10")) {
		t.Fatalf("money market=%+v, want 1 withdrawal and 2900.10", got)
	}

	// Update replaces the stored balance.
	got.Balance = decimal.RequireFromString("3000")
	if err := repo.Update(ctx, got); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if err := repo.Update(ctx, mike); !errors.Is(err, accountrepoport.ErrNotFound) {
		t.Fatalf("Update(missing) err=%v, want %v", err, accountrepoport.ErrNotFound)
	}

	// Sorted listing: type precedence, then last/first/DOB.
	jane := newAccount(domain.AccountTypeChecking, "Jane", "Doe", dob, "10")
	john := newAccount(domain.AccountTypeChecking, "John", "Doe", dob, "10")
	if err := repo.Open(ctx, john); err != nil {
		t.Fatalf("Open john: %v", err)
	}
	if err := repo.Open(ctx, jane); err != nil {
		t.Fatalf("Open jane: %v", err)
	}
	list, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	wantOrder := []domain.AccountKey{jane.Key(), john.Key(), checking.Key(), mm.Key(), savings.Key()}
	if len(list) != len(wantOrder) {
		t.Fatalf("List len=%d, want %d", len(list), len(wantOrder))
	}
	for i, k := range wantOrder {
		if list[i].Key() != k {
			t.Fatalf("List[%d]=%s %s, want %+v", i, list[i].Type, list[i].Holder, k)
		}
	}

	// Close, then double close.
	if err := repo.Close(ctx, savings.Key()); err != nil {
		t.Fatalf("Close savings: %v", err)
	}
	if _, err := repo.Get(ctx, savings.Key()); !errors.Is(err, accountrepoport.ErrNotFound) {
		t.Fatalf("Get after Close err=%v, want %v", err, accountrepoport.ErrNotFound)
	}
	if err := repo.Close(ctx, savings.Key()); !errors.Is(err, accountrepoport.ErrNotFound) {
		t.Fatalf("double Close err=%v, want %v", err, accountrepoport.ErrNotFound)
	}
	list, _ = repo.List(ctx)
	if len(list) != 4 {
		t.Fatalf("List len after close=%d, want 4", len(list))
	}

	// Reopening after close is a fresh account.
	if err := repo.Open(ctx, savings); err != nil {
		t.Fatalf("reopen: %v", err)
	}
}
