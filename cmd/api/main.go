package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Overland-East-Bay/account-ledger/internal/adapters/httpapi"
	memaccountrepo "github.com/Overland-East-Bay/account-ledger/internal/adapters/memory/accountrepo"
	memidempotency "github.com/Overland-East-Bay/account-ledger/internal/adapters/memory/idempotency"
	"github.com/Overland-East-Bay/account-ledger/internal/app/ledger"
	platformclock "github.com/Overland-East-Bay/account-ledger/internal/platform/clock"
	"github.com/Overland-East-Bay/account-ledger/internal/platform/config"
)

func main() {
	port := getenv("PORT", "8080")

	policy, err := config.LoadPolicyFromEnv()
	if err != nil {
		log.Fatalf("invalid policy config: %v", err)
	}

	clk := platformclock.NewSystemClock()
	ledgerSvc := ledger.NewService(memaccountrepo.NewRepo(), clk, policy)
	api := httpapi.NewServer(ledgerSvc, memidempotency.NewStore())

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           httpapi.NewRouter(api),
		ReadHeaderTimeout: 5 * time.Second,
	}

	// Graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Printf("api listening on :%s", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	<-ctx.Done()
	log.Printf("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
