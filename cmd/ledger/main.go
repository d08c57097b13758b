package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Overland-East-Bay/account-ledger/internal/adapters/cli"
	memaccountrepo "github.com/Overland-East-Bay/account-ledger/internal/adapters/memory/accountrepo"
	"github.com/Overland-East-Bay/account-ledger/internal/app/ledger"
	platformclock "github.com/Overland-East-Bay/account-ledger/internal/platform/clock"
	"github.com/Overland-East-Bay/account-ledger/internal/platform/config"
)

func main() {
	policy, err := config.LoadPolicyFromEnv()
	if err != nil {
		log.Fatalf("invalid policy config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	svc := ledger.NewService(memaccountrepo.NewRepo(), platformclock.NewSystemClock(), policy)
	if err := cli.NewInterpreter(svc).Run(ctx, os.Stdin, os.Stdout); err != nil {
		log.Fatalf("ledger: %v", err)
	}
}
