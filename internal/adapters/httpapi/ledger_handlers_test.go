package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	memaccountrepo "github.com/Overland-East-Bay/account-ledger/internal/adapters/memory/accountrepo"
	memclock "github.com/Overland-East-Bay/account-ledger/internal/adapters/memory/clock"
	memidempotency "github.com/Overland-East-Bay/account-ledger/internal/adapters/memory/idempotency"
	"github.com/Overland-East-Bay/account-ledger/internal/app/ledger"
	"github.com/Overland-East-Bay/account-ledger/internal/domain"
)

func newTestLedgerRouter(t *testing.T) http.Handler {
	t.Helper()

	clk := memclock.NewManualClock(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))
	svc := ledger.NewService(memaccountrepo.NewRepo(), clk, domain.DefaultPolicy())
	return NewRouter(NewServer(svc, memidempotency.NewStore()))
}

func do(t *testing.T, h http.Handler, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var er ErrorResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &er); err != nil {
		t.Fatalf("unmarshal error body: %v body=%s", err, rr.Body.String())
	}
	return er
}

func requireError(t *testing.T, rr *httptest.ResponseRecorder, wantStatus int, wantCode string) ErrorResponse {
	t.Helper()
	if rr.Code != wantStatus {
		t.Fatalf("status=%d want=%d body=%s", rr.Code, wantStatus, rr.Body.String())
	}
	er := decodeError(t, rr)
	if er.Error.Code != wantCode {
		t.Fatalf("error.code=%q want=%q body=%s", er.Error.Code, wantCode, rr.Body.String())
	}
	return er
}

func TestHealthz(t *testing.T) {
	t.Parallel()

	rr := do(t, newTestLedgerRouter(t), http.MethodGet, "/healthz", "", nil)
	if rr.Code != http.StatusOK || rr.Body.String() != "ok" {
		t.Fatalf("status=%d body=%q", rr.Code, rr.Body.String())
	}
}

func TestOpenAccount_CollegeChecking(t *testing.T) {
	t.Parallel()

	h := newTestLedgerRouter(t)
	rr := do(t, h, http.MethodPost, "/accounts",
		`{"accountType":"CC","holder":{"firstName":"Jane","lastName":"Doe","dateOfBirth":"10/1/2002"},"amount":"999.99","campus":2}`, nil)
	if rr.Code != http.StatusCreated {
		t.Fatalf("status=%d body=%s", rr.Code, rr.Body.String())
	}
	var got AccountEnvelope
	if err := json.Unmarshal(rr.Body.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	campus, err := got.Account.Campus.Get()
	if err != nil || campus != "CAMDEN" {
		t.Fatalf("campus=%q err=%v, want CAMDEN", campus, err)
	}
	if got.Account.Loyal.IsSpecified() || got.Account.Withdrawals.IsSpecified() {
		t.Fatalf("unexpected savings/money market members: %s", rr.Body.String())
	}
	if got.Account.Balance != "999.99" || got.Account.Summary != "College Checking::Jane Doe 10/1/2002::Balance $999.99::CAMDEN" {
		t.Fatalf("account=%+v", got.Account)
	}

	// Checking is exclusive with College Checking for the same holder.
	rr = do(t, h, http.MethodPost, "/accounts",
		`{"accountType":"C","holder":{"firstName":"jane","lastName":"doe","dateOfBirth":"10/1/2002"},"amount":10}`, nil)
	er := requireError(t, rr, http.StatusConflict, ledger.CodeAccountTypeConflict)
	if !er.Error.Details.IsSpecified() {
		t.Fatalf("expected details; body=%s", rr.Body.String())
	}
}

func TestOpenAccount_NullCampusIsMissingData(t *testing.T) {
	t.Parallel()

	rr := do(t, newTestLedgerRouter(t), http.MethodPost, "/accounts",
		`{"accountType":"CC","holder":{"firstName":"Jane","lastName":"Doe","dateOfBirth":"10/1/2002"},"amount":"10","campus":null}`, nil)
	er := requireError(t, rr, http.StatusUnprocessableEntity, ledger.CodeMissingData)
	if rid, err := er.Error.RequestID.Get(); err != nil || rid == "" {
		t.Fatalf("expected requestId; body=%s", rr.Body.String())
	}
}

func TestOpenAccount_ValidationStatuses(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		body     string
		wantCode string
	}{
		{"invalid date", `{"accountType":"C","holder":{"firstName":"A","lastName":"B","dateOfBirth":"13/1/2000"},"amount":"1"}`, ledger.CodeInvalidDate},
		{"future date", `{"accountType":"C","holder":{"firstName":"A","lastName":"B","dateOfBirth":"1/1/2030"},"amount":"1"}`, ledger.CodeDOBNotInPast},
		{"over age", `{"accountType":"CC","holder":{"firstName":"A","lastName":"B","dateOfBirth":"1/1/1990"},"amount":"1","campus":0}`, ledger.CodeOverAgeLimit},
		{"loyalty", `{"accountType":"S","holder":{"firstName":"A","lastName":"B","dateOfBirth":"1/1/1990"},"amount":"1","loyal":3}`, ledger.CodeInvalidLoyalty},
		{"zero amount", `{"accountType":"S","holder":{"firstName":"A","lastName":"B","dateOfBirth":"1/1/1990"},"amount":0,"loyal":1}`, ledger.CodeNonPositiveAmount},
		{"huge exponent", `{"accountType":"C","holder":{"firstName":"A","lastName":"B","dateOfBirth":"1/1/1990"},"amount":1e999999999}`, ledger.CodeInvalidAmount},
		{"tiny exponent", `{"accountType":"C","holder":{"firstName":"A","lastName":"B","dateOfBirth":"1/1/1990"},"amount":"1e-999999999"}`, ledger.CodeInvalidAmount},
		{"unknown type", `{"accountType":"GOLD","holder":{"firstName":"A","lastName":"B","dateOfBirth":"1/1/1990"},"amount":"1"}`, ledger.CodeUnknownAccountType},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			rr := do(t, newTestLedgerRouter(t), http.MethodPost, "/accounts", tc.body, nil)
			requireError(t, rr, http.StatusUnprocessableEntity, tc.wantCode)
		})
	}
}

func TestOpenAccount_BadJSON(t *testing.T) {
	t.Parallel()

	h := newTestLedgerRouter(t)
	requireError(t, do(t, h, http.MethodPost, "/accounts", `{"accountType":`, nil), http.StatusBadRequest, "INVALID_REQUEST_BODY")
	requireError(t, do(t, h, http.MethodPost, "/accounts", `{"accountType":"C","extra":true}`, nil), http.StatusBadRequest, "INVALID_REQUEST_BODY")
}

func TestTransactions_NotFoundAndInsufficientFunds(t *testing.T) {
	t.Parallel()

	h := newTestLedgerRouter(t)
	ref := `"accountType":"C","holder":{"firstName":"John","lastName":"Doe","dateOfBirth":"2/19/2000"}`

	requireError(t, do(t, h, http.MethodPost, "/accounts/deposit", `{`+ref+`,"amount":"5"}`, nil), http.StatusNotFound, ledger.CodeAccountNotFound)

	if rr := do(t, h, http.MethodPost, "/accounts", `{`+ref+`,"amount":"100"}`, nil); rr.Code != http.StatusCreated {
		t.Fatalf("open status=%d body=%s", rr.Code, rr.Body.String())
	}
	requireError(t, do(t, h, http.MethodPost, "/accounts/withdraw", `{`+ref+`,"amount":"100.01"}`, nil), http.StatusConflict, ledger.CodeInsufficientFunds)

	rr := do(t, h, http.MethodPost, "/accounts/deposit", `{`+ref+`,"amount":"0.50"}`, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("deposit status=%d body=%s", rr.Code, rr.Body.String())
	}
	var got AccountEnvelope
	if err := json.Unmarshal(rr.Body.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Account.Balance != "100.50" {
		t.Fatalf("balance=%s want=100.50", got.Account.Balance)
	}
}

func TestDeposit_IdempotentReplay(t *testing.T) {
	t.Parallel()

	h := newTestLedgerRouter(t)
	ref := `"accountType":"S","holder":{"firstName":"April","lastName":"March","dateOfBirth":"1/15/1987"}`
	if rr := do(t, h, http.MethodPost, "/accounts", `{`+ref+`,"amount":"1500","loyal":1}`, nil); rr.Code != http.StatusCreated {
		t.Fatalf("open status=%d body=%s", rr.Code, rr.Body.String())
	}

	key := map[string]string{"Idempotency-Key": "dep-1"}
	first := do(t, h, http.MethodPost, "/accounts/deposit", `{`+ref+`,"amount":"100"}`, key)
	// Same key, same account under different name casing.
	second := do(t, h, http.MethodPost, "/accounts/deposit",
		`{"accountType":"s","holder":{"firstName":"APRIL","lastName":"march","dateOfBirth":"1/15/1987"},"amount":"100"}`, key)
	if first.Code != http.StatusOK || second.Code != http.StatusOK {
		t.Fatalf("status=%d,%d", first.Code, second.Code)
	}
	if !bytes.Equal(first.Body.Bytes(), second.Body.Bytes()) {
		t.Fatalf("replay differs:\n%s\n%s", first.Body.String(), second.Body.String())
	}

	rr := do(t, h, http.MethodGet, "/accounts", "", nil)
	var list AccountListResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &list); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(list.Accounts) != 1 || list.Accounts[0].Balance != "1600.00" {
		t.Fatalf("accounts=%s", rr.Body.String())
	}

	requireError(t, do(t, h, http.MethodPost, "/accounts/deposit", `{`+ref+`,"amount":"7"}`, key), http.StatusConflict, "IDEMPOTENCY_KEY_REUSE")

	// The key is scoped to its route.
	if rr := do(t, h, http.MethodPost, "/accounts/withdraw", `{`+ref+`,"amount":"7"}`, key); rr.Code != http.StatusOK {
		t.Fatalf("withdraw status=%d body=%s", rr.Code, rr.Body.String())
	}
}

func TestReports_FeesDoNotMutateUpdatesDo(t *testing.T) {
	t.Parallel()

	h := newTestLedgerRouter(t)
	if rr := do(t, h, http.MethodPost, "/accounts",
		`{"accountType":"C","holder":{"firstName":"John","lastName":"Doe","dateOfBirth":"2/19/2000"},"amount":"600"}`, nil); rr.Code != http.StatusCreated {
		t.Fatalf("open status=%d body=%s", rr.Code, rr.Body.String())
	}

	for i := 0; i < 2; i++ {
		rr := do(t, h, http.MethodGet, "/reports/fees-and-interest", "", nil)
		var got StatementListResponse
		if err := json.Unmarshal(rr.Body.Bytes(), &got); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		st := got.Statements[0]
		if st.Fee != "12.00" || st.Interest != "0.50" || st.Balance != "600.00" {
			t.Fatalf("statement=%+v", st)
		}
	}

	rr := do(t, h, http.MethodPost, "/reports/updated-balances", "", nil)
	var got StatementListResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Statements[0].Balance != "588.50" || got.Statements[0].Account.Balance != "588.50" {
		t.Fatalf("statement=%+v", got.Statements[0])
	}
}

func TestEmptyListIsArray(t *testing.T) {
	t.Parallel()

	rr := do(t, newTestLedgerRouter(t), http.MethodGet, "/accounts", "", nil)
	if rr.Code != http.StatusOK || strings.TrimSpace(rr.Body.String()) != `{"accounts":[]}` {
		t.Fatalf("status=%d body=%s", rr.Code, rr.Body.String())
	}
}
