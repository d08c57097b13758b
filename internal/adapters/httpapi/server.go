package httpapi

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/Overland-East-Bay/account-ledger/internal/app/ledger"
	"github.com/Overland-East-Bay/account-ledger/internal/domain"
	"github.com/Overland-East-Bay/account-ledger/internal/ports/out/idempotency"
)

const idempotencyKeyHeader = "Idempotency-Key"

// Server is the HTTP adapter over the ledger service.
type Server struct {
	Ledger *ledger.Service
	Idem   idempotency.Store
}

func NewServer(ledgerSvc *ledger.Service, idem idempotency.Store) *Server {
	return &Server{
		Ledger: ledgerSvc,
		Idem:   idem,
	}
}

func (s *Server) OpenAccount(w http.ResponseWriter, r *http.Request) {
	var req OpenAccountRequest
	if !decodeBody(w, r, &req) {
		return
	}
	a, err := s.Ledger.Open(r.Context(), req.toInput())
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, AccountEnvelope{Account: accountFromDomain(a, s.Ledger.Policy())})
}

func (s *Server) CloseAccount(w http.ResponseWriter, r *http.Request) {
	var req AccountRefRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := s.Ledger.Close(r.Context(), req.toInput()); err != nil {
		writeAppError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) LookupAccount(w http.ResponseWriter, r *http.Request) {
	var req AccountRefRequest
	if !decodeBody(w, r, &req) {
		return
	}
	ok, err := s.Ledger.Contains(r.Context(), req.toInput())
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, LookupResponse{Open: ok})
}

func (s *Server) Deposit(w http.ResponseWriter, r *http.Request) {
	s.transaction(w, r, "/accounts/deposit", s.Ledger.Deposit)
}

func (s *Server) Withdraw(w http.ResponseWriter, r *http.Request) {
	s.transaction(w, r, "/accounts/withdraw", s.Ledger.Withdraw)
}

func (s *Server) ListAccounts(w http.ResponseWriter, r *http.Request) {
	as, err := s.Ledger.Sorted(r.Context())
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, AccountListResponse{Accounts: accountsFromDomain(as, s.Ledger.Policy())})
}

func (s *Server) GetFeesAndInterest(w http.ResponseWriter, r *http.Request) {
	sts, err := s.Ledger.FeesAndInterests(r.Context())
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, StatementListResponse{Statements: statementsFromApp(sts, s.Ledger.Policy())})
}

func (s *Server) UpdateBalances(w http.ResponseWriter, r *http.Request) {
	sts, err := s.Ledger.UpdateBalances(r.Context())
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, StatementListResponse{Statements: statementsFromApp(sts, s.Ledger.Policy())})
}

type transactFunc func(ctx context.Context, in ledger.TransactionInput) (domain.Account, error)

// transaction runs a deposit or withdrawal.
//
// Idempotency handling (when Idempotency-Key is present):
// - Replay if same key+route+bodyHash
// - Reject if same key+route with different bodyHash (409)
func (s *Server) transaction(w http.ResponseWriter, r *http.Request, route string, move transactFunc) {
	ctx := r.Context()
	var req TransactionRequest
	if !decodeBody(w, r, &req) {
		return
	}

	var respFP idempotency.Fingerprint
	if key := strings.TrimSpace(r.Header.Get(idempotencyKeyHeader)); key != "" && s.Idem != nil {
		bodyHash, err := hashTransactionBody(req)
		if err != nil {
			writeAppError(w, r, err)
			return
		}
		metaFP := idempotency.Fingerprint{
			Key:    idempotency.Key(key),
			Method: r.Method,
			Route:  route,
		}
		if meta, ok, err := s.Idem.Get(ctx, metaFP); err != nil {
			writeAppError(w, r, err)
			return
		} else if ok {
			if string(meta.Body) != bodyHash {
				writeError(w, r, http.StatusConflict, "IDEMPOTENCY_KEY_REUSE", "idempotency key reuse with different payload", nil)
				return
			}
		} else {
			_ = s.Idem.Put(ctx, metaFP, idempotency.Record{
				ContentType: "text/plain",
				Body:        []byte(bodyHash),
				CreatedAt:   time.Now().UTC(),
			})
		}

		respFP = metaFP
		respFP.BodyHash = bodyHash
		if rec, ok, err := s.Idem.Get(ctx, respFP); err != nil {
			writeAppError(w, r, err)
			return
		} else if ok && rec.StatusCode == http.StatusOK {
			writeRaw(w, rec.StatusCode, rec.ContentType, rec.Body)
			return
		}
	}

	a, err := move(ctx, req.toInput())
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	b, err := json.Marshal(AccountEnvelope{Account: accountFromDomain(a, s.Ledger.Policy())})
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	b = append(b, '\n')

	// Store successful response for replay.
	if respFP.Key != "" {
		_ = s.Idem.Put(ctx, respFP, idempotency.Record{
			StatusCode:  http.StatusOK,
			ContentType: "application/json",
			Body:        b,
			CreatedAt:   time.Now().UTC(),
		})
	}
	writeRaw(w, http.StatusOK, "application/json", b)
}

// decodeBody writes a 400 and returns false when the body is not a single JSON object.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeError(w, r, http.StatusBadRequest, "INVALID_REQUEST_BODY", "request body must be a JSON object", map[string]any{"reason": err.Error()})
		return false
	}
	return true
}

func hashTransactionBody(b TransactionRequest) (string, error) {
	// Canonicalize fields that have normalization semantics before hashing.
	canon := b
	canon.AccountType = strings.ToUpper(strings.TrimSpace(canon.AccountType))
	canon.Holder.FirstName = strings.ToLower(domain.NormalizeHumanName(canon.Holder.FirstName))
	canon.Holder.LastName = strings.ToLower(domain.NormalizeHumanName(canon.Holder.LastName))
	canon.Holder.DateOfBirth = strings.TrimSpace(canon.Holder.DateOfBirth)

	raw, err := json.Marshal(canon)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:]), nil
}
