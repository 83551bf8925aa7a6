package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mwaheed/tradepilot/internal/backend"
	"github.com/mwaheed/tradepilot/internal/config"
	"github.com/mwaheed/tradepilot/internal/logger"
	"github.com/mwaheed/tradepilot/internal/poller"
	"github.com/mwaheed/tradepilot/internal/portfolio"
	"github.com/mwaheed/tradepilot/internal/storage"
	"github.com/mwaheed/tradepilot/internal/telegram"
	"github.com/mwaheed/tradepilot/internal/web"
	"github.com/mwaheed/tradepilot/internal/workflow"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	dbPath := flag.String("db", "data/tradepilot.db", "path to SQLite database")
	flag.Parse()

	// Load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	// Init logger
	log := logger.New(cfg.Logging.Level)
	log.Info("starting tradepilot", "backend", cfg.Backend.BaseURL)

	// Init database
	db, err := storage.NewDatabase(*dbPath)
	if err != nil {
		log.Error("database init failed", "error", err)
		os.Exit(1)
	}
	repo := storage.NewRepository(db)

	// Context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Init services
	client := backend.NewClient(cfg, log)
	notifier := telegram.NewNotifier(cfg, log)
	reconciler := portfolio.NewReconciler(client, repo, log)
	wf := workflow.New(client, reconciler, notifier, log)
	poll := poller.New(client, repo, notifier, log)
	webServer := web.NewServer(reconciler, wf, repo, cfg, log)

	// Warm the view so the first dashboard request has data
	if _, err := reconciler.Refresh(ctx, false); err != nil {
		log.Error("initial portfolio refresh failed", "error", err)
	}

	// Start poller in goroutine. An initialization failure leaves the rest
	// of the system running without a scheduler.
	go func() {
		if err := poll.Run(ctx); err != nil {
			if errors.Is(err, poller.ErrInitialization) {
				log.Error("poller did not start", "error", err)
				return
			}
			log.Error("poller error", "error", err)
		}
	}()

	// Start web server in goroutine
	go func() {
		if err := webServer.Start(); err != nil {
			log.Error("web server error", "error", err)
		}
	}()

	notifier.NotifyStatus("🤖 tradepilot started")

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	log.Info("shutdown signal received", "signal", sig.String())

	// Graceful shutdown
	cancel() // stop poller

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := webServer.Shutdown(shutdownCtx); err != nil {
		log.Error("web server shutdown error", "error", err)
	}

	notifier.NotifyStatus("🛑 tradepilot stopped")
	log.Info("tradepilot stopped")
}
