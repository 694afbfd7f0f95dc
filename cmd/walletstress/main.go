// walletstress hammers the sharded wallet with concurrent increments and
// checks the aggregate afterwards: with C workers each doing U increments
// of amount A, the final balance must equal initial + C*U*A exactly.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/prasetyadi/marketcore/internal/config"
	"github.com/prasetyadi/marketcore/internal/postgres"
	"github.com/prasetyadi/marketcore/internal/wallet"
)

func main() {
	workers := flag.Int("workers", 20, "concurrent workers (C)")
	perWorker := flag.Int("per-worker", 5, "increments per worker (U)")
	amount := flag.Int64("amount", 10, "amount per increment in cents (A)")
	flag.Parse()

	_ = godotenv.Load()
	cfg := config.Load()
	ctx := context.Background()

	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer db.Close()

	store := wallet.NewStore(db, cfg.WalletShards)

	// fresh wallet per run so leftovers from earlier runs can't skew the check
	walletID := "stress-" + uuid.NewString()

	initial, err := store.Aggregate(ctx, walletID)
	if err != nil {
		log.Fatalf("read aggregate: %v", err)
	}

	start := time.Now()
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < *workers; i++ {
		g.Go(func() error {
			for j := 0; j < *perWorker; j++ {
				if err := store.Credit(gctx, walletID, *amount); err != nil {
					return err
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log.Fatalf("worker failed: %v", err)
	}
	elapsed := time.Since(start)

	final, err := store.Aggregate(ctx, walletID)
	if err != nil {
		log.Fatalf("read aggregate: %v", err)
	}

	expected := initial + int64(*workers)*int64(*perWorker)*(*amount)

	fmt.Println("========== WALLET STRESS RESULTS ==========")
	fmt.Printf("Wallet:         %s\n", walletID)
	fmt.Printf("Shards:         %d\n", store.Shards)
	fmt.Printf("Workers:        %d x %d increments of %d\n", *workers, *perWorker, *amount)
	fmt.Printf("Initial:        %d\n", initial)
	fmt.Printf("Final:          %d\n", final)
	fmt.Printf("Duration:       %v\n", elapsed)
	fmt.Println("===========================================")

	if final == expected {
		fmt.Printf("PASS: aggregate %d == initial + C*U*A (%d)\n", final, expected)
	} else {
		fmt.Printf("FAIL: expected %d, got %d\n", expected, final)
	}
}
