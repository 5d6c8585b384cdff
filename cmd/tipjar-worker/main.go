// tipjar-worker consumes tip events off AMQP and logs them. It stands in
// for downstream consumers like stream overlays or chat bots: anything
// that wants to react to a tip without living inside the web process.
package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"tipjar/internal/config"
	applog "tipjar/internal/log"
	"tipjar/internal/notify"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: applog.ParseLevel(os.Getenv("LOG_LEVEL")),
	}))
	slog.SetDefault(logger)

	logger.Info("Starting tipjar-worker")

	cfg := config.Load()
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the worker")
		os.Exit(1)
	}

	client, err := notify.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer client.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return client.ConsumeTipEvents(ctx, func(event *notify.TipEvent) error {
			logger.Info("Tip received",
				applog.FieldRecordID, event.RecordID,
				applog.FieldAmount, event.Amount.String(),
				applog.FieldSender, event.From,
				applog.FieldTier, event.Tier,
				"tip_count", event.TipCount)
			if event.Milestone != "" {
				logger.Info("Milestone reached",
					applog.FieldMilestone, event.Milestone,
					"level", event.MilestoneLevel,
					"tip_count", event.TipCount)
			}
			return nil
		})
	})

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	g.Go(func() error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case sig := <-quit:
			logger.Info("Shutdown signal received", "signal", sig.String())
			cancel()
			return nil
		}
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("Worker stopped gracefully")
}
