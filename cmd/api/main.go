package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/prasetyadi/marketcore/internal/audit"
	"github.com/prasetyadi/marketcore/internal/config"
	"github.com/prasetyadi/marketcore/internal/httpx"
	kafkax "github.com/prasetyadi/marketcore/internal/kafka"
	"github.com/prasetyadi/marketcore/internal/orders"
	"github.com/prasetyadi/marketcore/internal/postgres"
	"github.com/prasetyadi/marketcore/internal/redisx"
	"github.com/prasetyadi/marketcore/internal/wallet"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer db.Close()

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Kafka producer (activity log)
	prod := kafkax.NewProducer(cfg.KafkaBrokers, audit.TopicActivity, 1024)
	prod.Start(ctx)

	auditLog := &audit.Logger{Producer: prod, Service: cfg.ServiceName}

	// Repos & handlers
	repo := &orders.Repo{DB: db}
	walletStore := wallet.NewStore(db, cfg.WalletShards)

	router := httpx.NewRouter()
	oh := &httpx.OrdersHandler{Repo: repo, Audit: auditLog, Redis: rdb}
	oh.Register(router)
	wh := &httpx.WalletHandler{Store: walletStore, Audit: auditLog}
	wh.Register(router)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	go func() {
		log.Printf("HTTP listening at %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	// wait signal
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Println("shutting down...")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	prod.Close()      // tutup inbox -> flush & close writer
	cancel()          // stop producer loop
	prod.WaitClosed() // drain
}
