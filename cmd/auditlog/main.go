package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/prasetyadi/marketcore/internal/audit"
	"github.com/prasetyadi/marketcore/internal/config"
	kafkax "github.com/prasetyadi/marketcore/internal/kafka"
	"github.com/prasetyadi/marketcore/internal/postgres"
	"github.com/prasetyadi/marketcore/internal/redisx"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer db.Close()

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	svc := &audit.Service{
		Writer: &audit.Repo{DB: db},
		Dedup:  &audit.RedisDedup{Client: rdb, Service: cfg.ServiceName + "-auditlog"},
	}

	cons := kafkax.NewConsumer(cfg.KafkaBrokers, cfg.AuditGroup, audit.TopicActivity, cfg.AuditWorkers)

	go func() {
		log.Printf("audit consumer started: group=%s topic=%s workers=%d",
			cfg.AuditGroup, audit.TopicActivity, cfg.AuditWorkers)
		if err := cons.Start(ctx, svc.HandleActivity); err != nil {
			log.Printf("consumer exit: %v", err)
			cancel()
		}
	}()

	// graceful shutdown
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Println("shutting down consumer...")
	cancel()
	time.Sleep(500 * time.Millisecond)
}
