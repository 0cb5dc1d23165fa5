package main

import (
	"context"
	"errors"
	"os"

	"golang.org/x/sync/errgroup"

	"finance/internal/amqp"
	"finance/internal/cli"
	applog "finance/internal/log"
	"finance/internal/worker"
)

func main() {
	cli.LoadEnvFile()

	logger := cli.SetupLogger(applog.DefaultConfig().Level, applog.ComponentWorker)
	cfg := cli.LoadAndValidateConfig(logger.Logger)
	logger = cli.SetupLogger(cfg.SlogLevel(), applog.ComponentWorker)

	logger.Info("Starting finance-worker", "backend", cfg.DataBackend, "queue", cfg.AMQPQueue)

	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the worker")
		os.Exit(1)
	}

	startCtx := context.Background()
	res, err := cli.OpenBackend(startCtx, logger, cfg)
	if err != nil {
		logger.Error("Failed to open backend", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}

	exporter, err := cli.NewExporter(startCtx, cfg)
	if err != nil {
		logger.Error("Failed to initialize exporter", "error", err)
		_ = res.Cleanup()
		os.Exit(1)
	}
	if exporter == nil {
		logger.Info("Google Sheets export disabled - no GOOGLE_SPREADSHEET_ID provided")
	}

	consumer, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, cfg.AMQPPrefetch)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		_ = res.Cleanup()
		os.Exit(1)
	}

	alerts := worker.NewGoalAlertWorker(res.Repository, exporter, logger.WithComponent(applog.ComponentFinance))

	ctx, done := cli.GracefulShutdown(logger.Logger, cfg.ShutdownTimeout, func(context.Context) {
		if err := consumer.Close(); err != nil {
			logger.Error("AMQP close error", "error", err)
		}
		if err := res.Cleanup(); err != nil {
			logger.Error("Backend cleanup error", "error", err)
		}
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return consumer.ConsumeTransactionRecorded(gctx, alerts.HandleTransactionRecorded)
	})
	g.Go(func() error {
		if err := alerts.ReviewGoals(gctx); err != nil {
			logger.Error("Startup goal review failed", "error", err)
		}
		return alerts.RunPeriodicReview(gctx, cfg.GoalReviewInterval)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped with error", "error", err)
		_ = consumer.Close()
		_ = res.Cleanup()
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Worker stopped gracefully")
}
