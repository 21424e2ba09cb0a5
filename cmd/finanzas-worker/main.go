package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/dejotaortega/finanzas-deiner/internal/amqp"
	"github.com/dejotaortega/finanzas-deiner/internal/cli"
	"github.com/dejotaortega/finanzas-deiner/internal/ledger"
	applog "github.com/dejotaortega/finanzas-deiner/internal/log"
	"github.com/dejotaortega/finanzas-deiner/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(applog.ComponentWorker)
	cfg := cli.LoadAndValidateConfig(logger)

	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the worker")
		os.Exit(1)
	}

	repo := cli.InitStorage(logger, cfg.SQLiteDBPath)
	catalog := cli.LoadCatalog(logger, cfg)

	// The worker only consumes, it never publishes.
	svc := ledger.NewService(repo, nil, catalog)
	defer svc.Close()

	snapshotWorker := worker.NewSnapshotWorker(svc)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("Starting finanzas-worker",
		"queue", cfg.AMQPQueue,
		"snapshot_interval", cfg.SnapshotInterval.String())

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return amqp.ConsumeWithReconnect(ctx, cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, snapshotWorker.HandleTransactionEvent)
	})
	g.Go(func() error {
		return snapshotWorker.RunDailyBootstrap(ctx, cfg.SnapshotInterval)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped with error", applog.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Worker stopped gracefully")
}
