package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"tipjar/internal/config"
	apphttp "tipjar/internal/http"
	applog "tipjar/internal/log"
	"tipjar/internal/notify"
	"tipjar/internal/price"
	"tipjar/internal/service"
	"tipjar/internal/stellar"
	"tipjar/internal/store"
	"tipjar/internal/store/memory"
	"tipjar/internal/store/sqlite"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	// Setup structured logging
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: applog.ParseLevel(os.Getenv("LOG_LEVEL")),
	}))
	slog.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	// Choose the history backend
	var (
		records  store.RecordRepository
		profiles store.ProfileRepository
	)
	switch cfg.DataBackend {
	case "sqlite":
		db, err := sqlite.New(cfg.SQLiteDBPath, cfg.HistoryLimit)
		if err != nil {
			logger.Error("Failed to initialize SQLite store", "error", err, "path", cfg.SQLiteDBPath)
			os.Exit(1)
		}
		records, profiles = db, db
		logger.Info("Initialized sqlite backend", "backend", cfg.DataBackend, "path", cfg.SQLiteDBPath)
	default:
		mem := memory.New(cfg.HistoryLimit)
		records, profiles = mem, mem
		logger.Info("Initialized memory backend", "backend", cfg.DataBackend)
	}

	// Event publishing is optional: no AMQP URL, no events.
	var publisher service.EventPublisher
	if cfg.AMQPURL != "" {
		client, err := notify.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", "error", err)
			os.Exit(1)
		}
		publisher = client
		logger.Info("Initialized AMQP publisher", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	} else {
		logger.Info("AMQP disabled - no AMQP_URL provided")
	}

	tips := service.NewTipService(records, profiles, publisher)
	defer tips.Close()

	ledger := stellar.NewClient(cfg.HorizonURL, cfg.NetworkPassphrase)
	prices := price.NewFeed(cfg.PriceAPIURL, cfg.PriceTTL)

	srv := apphttp.NewServer(":"+cfg.Port, tips, ledger, prices, apphttp.Site{
		RecipientAddress:  cfg.RecipientAddress,
		HorizonURL:        cfg.HorizonURL,
		NetworkPassphrase: cfg.NetworkPassphrase,
	})

	// Configure server timeouts and limits
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	// Graceful shutdown handling
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		cancel()
	}()

	logger.Info("Starting tipjar server",
		"port", cfg.Port,
		"backend", cfg.DataBackend,
		"recipient", stellar.ShortenAddress(cfg.RecipientAddress),
		"horizon", cfg.HorizonURL)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully")
}
