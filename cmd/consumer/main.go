package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/helioskrill/alma-control/internal/config"
	"github.com/helioskrill/alma-control/internal/consumer"
	"github.com/helioskrill/alma-control/internal/logger"
	"github.com/helioskrill/alma-control/internal/queue/sqs"
	"github.com/helioskrill/alma-control/internal/repository/clickhouse"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	log, err := logger.New(cfg.Service.Environment)
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer func(log *zap.Logger) {
		err := log.Sync()
		if err != nil {
			log.Error("Failed to sync logger", zap.Error(err))
		}
	}(log)

	log.Info("Starting PDA event consumer",
		zap.String("environment", cfg.Service.Environment))

	ctx := context.Background()

	chClient, err := clickhouse.NewClient(ctx, &cfg.ClickHouse, log)
	if err != nil {
		log.Fatal("Failed to create ClickHouse client", zap.Error(err))
	}
	defer func() {
		if err := chClient.Close(); err != nil {
			log.Error("Failed to close ClickHouse client", zap.Error(err))
		}
	}()

	repo := clickhouse.NewRepository(chClient, log)

	// Tables are created here rather than in the API so a fresh deployment
	// can start draining the queue before the API comes up.
	if err := repo.InitSchema(ctx); err != nil {
		log.Fatal("Failed to initialize schema", zap.Error(err))
	}

	sqsClient, err := sqs.NewClient(ctx, cfg.SQS, log)
	if err != nil {
		log.Fatal("Failed to create SQS client", zap.Error(err))
	}

	c := consumer.NewConsumer(cfg, sqsClient, repo, log)

	go serveHealth(repo, cfg.Consumer.HealthCheckPort, log)

	consumerCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	log.Info("Consumer pipeline starting")

	go func() {
		if err := c.Start(consumerCtx); err != nil {
			log.Fatal("Consumer error", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	log.Info("Shutting down consumer gracefully")
	cancel()
}

// serveHealth reports readiness based on repository connectivity
func serveHealth(repo *clickhouse.Repository, port string, log *zap.Logger) {
	http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := repo.Ping(r.Context()); err != nil {
			log.Warn("Health check failed", zap.Error(err))
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	addr := ":" + port
	log.Info("Health check server starting", zap.String("address", addr))
	if err := http.ListenAndServe(addr, nil); err != nil {
		log.Error("Health check server error", zap.Error(err))
	}
}
