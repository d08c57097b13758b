package itest

import (
	"net/http"
	"testing"
	"time"
)

type accountEnvelope struct {
	Account struct {
		AccountID   string `json:"accountId"`
		AccountType string `json:"accountType"`
		Balance     string `json:"balance"`
		Holder      struct {
			FirstName   string `json:"firstName"`
			DateOfBirth string `json:"dateOfBirth"`
		} `json:"holder"`
		Withdrawals *int `json:"withdrawals"`
	} `json:"account"`
}

func TestLedger_ITest(t *testing.T) {
	srv := newTestServer(t)

	// Open a Money Market account below the minimum => 422.
	{
		status, body, _ := srv.doJSON(t, http.MethodPost, "/accounts", "", map[string]any{
			"accountType": "MM",
			"holder":      holder("Roy", "Brooks", "10/31/1979"),
			"amount":      1999.99,
		})
		requireErrorCode(t, status, body, http.StatusUnprocessableEntity, "BELOW_MINIMUM_BALANCE")
	}

	var mm accountEnvelope
	{
		status, body, _ := srv.doJSON(t, http.MethodPost, "/accounts", "", map[string]any{
			"accountType": "MM",
			"holder":      holder("Roy", "Brooks", "10/31/1979"),
			"amount":      "2909.10",
		})
		requireStatus(t, status, body, http.StatusCreated)
		mm = mustUnmarshal[accountEnvelope](t, body)
		if mm.Account.AccountID == "" || mm.Account.AccountType != "MONEY_MARKET" {
			t.Fatalf("unexpected account: %s", string(body))
		}
		if mm.Account.Holder.DateOfBirth != "1979-10-31" {
			t.Fatalf("dateOfBirth=%q want=1979-10-31", mm.Account.Holder.DateOfBirth)
		}
	}

	// Same holder, different case => duplicate.
	{
		status, body, _ := srv.doJSON(t, http.MethodPost, "/accounts", "", map[string]any{
			"accountType": "MM",
			"holder":      holder("ROY", "brooks", "10/31/1979"),
			"amount":      "5000",
		})
		requireErrorCode(t, status, body, http.StatusConflict, "ACCOUNT_ALREADY_EXISTS")
	}

	// Withdraw with an idempotency key, then retry.
	for i := 0; i < 2; i++ {
		status, body, _ := srv.doJSON(t, http.MethodPost, "/accounts/withdraw", "wd-1", map[string]any{
			"accountType": "MM",
			"holder":      holder("Roy", "Brooks", "10/31/1979"),
			"amount":      "909.10",
		})
		requireStatus(t, status, body, http.StatusOK)
		got := mustUnmarshal[accountEnvelope](t, body)
		if got.Account.Balance != "2000.00" {
			t.Fatalf("attempt %d: balance=%s want=2000.00", i, got.Account.Balance)
		}
		if got.Account.Withdrawals == nil || *got.Account.Withdrawals != 1 {
			t.Fatalf("attempt %d: withdrawals=%v want=1", i, got.Account.Withdrawals)
		}
	}

	// Reusing the key with a different amount => 409.
	{
		status, body, _ := srv.doJSON(t, http.MethodPost, "/accounts/withdraw", "wd-1", map[string]any{
			"accountType": "MM",
			"holder":      holder("Roy", "Brooks", "10/31/1979"),
			"amount":      "1",
		})
		requireErrorCode(t, status, body, http.StatusConflict, "IDEMPOTENCY_KEY_REUSE")
	}

	// A holder who turns 16 once the clock moves forward.
	{
		status, body, _ := srv.doJSON(t, http.MethodPost, "/accounts", "", map[string]any{
			"accountType": "C",
			"holder":      holder("Teen", "Ager", "1/2/2008"),
			"amount":      "100",
		})
		requireErrorCode(t, status, body, http.StatusUnprocessableEntity, "UNDERAGE")

		srv.clock.Advance(24 * time.Hour)
		status, body, _ = srv.doJSON(t, http.MethodPost, "/accounts", "", map[string]any{
			"accountType": "C",
			"holder":      holder("Teen", "Ager", "1/2/2008"),
			"amount":      "100",
		})
		requireStatus(t, status, body, http.StatusCreated)
	}

	// Lookup, then close.
	{
		status, body, _ := srv.doJSON(t, http.MethodPost, "/accounts/lookup", "", map[string]any{
			"accountType": "C",
			"holder":      holder("teen", "ager", "1/2/2008"),
		})
		requireStatus(t, status, body, http.StatusOK)
		if !mustUnmarshal[struct {
			Open bool `json:"open"`
		}](t, body).Open {
			t.Fatalf("expected open=true; body=%s", string(body))
		}

		status, body, _ = srv.doJSON(t, http.MethodPost, "/accounts/close", "", map[string]any{
			"accountType": "C",
			"holder":      holder("Teen", "Ager", "1/2/2008"),
		})
		requireStatus(t, status, body, http.StatusNoContent)

		status, body, _ = srv.doJSON(t, http.MethodPost, "/accounts/close", "", map[string]any{
			"accountType": "C",
			"holder":      holder("Teen", "Ager", "1/2/2008"),
		})
		requireErrorCode(t, status, body, http.StatusNotFound, "ACCOUNT_NOT_FOUND")
	}

	// Apply the monthly update and read the new balance back.
	{
		status, body, _ := srv.doJSON(t, http.MethodPost, "/reports/updated-balances", "", nil)
		requireStatus(t, status, body, http.StatusOK)

		status, body, _ = srv.doJSON(t, http.MethodGet, "/accounts", "", nil)
		requireStatus(t, status, body, http.StatusOK)
		list := mustUnmarshal[struct {
			Accounts []struct {
				Balance string `json:"balance"`
			} `json:"accounts"`
		}](t, body)
		// 2000 * 0.0475 / 12 = 7.916..., no fee at the threshold.
		if len(list.Accounts) != 1 || list.Accounts[0].Balance != "2007.92" {
			t.Fatalf("unexpected accounts: %s", string(body))
		}
	}
}
