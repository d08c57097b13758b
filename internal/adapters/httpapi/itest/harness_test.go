package itest

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Overland-East-Bay/account-ledger/internal/adapters/httpapi"
	memaccountrepo "github.com/Overland-East-Bay/account-ledger/internal/adapters/memory/accountrepo"
	memclock "github.com/Overland-East-Bay/account-ledger/internal/adapters/memory/clock"
	memidempotency "github.com/Overland-East-Bay/account-ledger/internal/adapters/memory/idempotency"
	"github.com/Overland-East-Bay/account-ledger/internal/app/ledger"
	"github.com/Overland-East-Bay/account-ledger/internal/domain"
)

type testServer struct {
	baseURL string
	client  *http.Client
	clock   *memclock.ManualClock
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	clk := memclock.NewManualClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	svc := ledger.NewService(memaccountrepo.NewRepo(), clk, domain.DefaultPolicy())
	api := httpapi.NewServer(svc, memidempotency.NewStore())

	srv := httptest.NewServer(httpapi.NewRouter(api))
	t.Cleanup(srv.Close)

	return &testServer{
		baseURL: srv.URL,
		client:  srv.Client(),
		clock:   clk,
	}
}

func (s *testServer) url(path string) string {
	if strings.HasPrefix(path, "/") {
		return s.baseURL + path
	}
	return s.baseURL + "/" + path
}

func (s *testServer) doJSON(t *testing.T, method string, path string, idemKey string, body any) (int, []byte, http.Header) {
	t.Helper()

	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		r = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, s.url(path), r)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if idemKey != "" {
		req.Header.Set("Idempotency-Key", idemKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()
	out, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, out, resp.Header
}

type errorResponse struct {
	Error struct {
		Code      string `json:"code"`
		Message   string `json:"message"`
		RequestID string `json:"requestId"`
	} `json:"error"`
}

func mustUnmarshal[T any](t *testing.T, b []byte) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(b, &out); err != nil {
		t.Fatalf("unmarshal: %v\nbody=%s", err, string(b))
	}
	return out
}

func requireStatus(t *testing.T, status int, body []byte, wantStatus int) {
	t.Helper()
	if status != wantStatus {
		t.Fatalf("status=%d want=%d body=%s", status, wantStatus, string(body))
	}
}

func requireErrorCode(t *testing.T, status int, body []byte, wantStatus int, wantCode string) {
	t.Helper()
	requireStatus(t, status, body, wantStatus)
	got := mustUnmarshal[errorResponse](t, body)
	if got.Error.Code != wantCode {
		t.Fatalf("error.code=%q want=%q body=%s", got.Error.Code, wantCode, string(body))
	}
	if got.Error.RequestID == "" {
		t.Fatalf("expected error.requestId to be set; body=%s", string(body))
	}
}

func holder(first, last, dob string) map[string]any {
	return map[string]any{"firstName": first, "lastName": last, "dateOfBirth": dob}
}
