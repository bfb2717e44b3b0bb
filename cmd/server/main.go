package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgallion1/wordhtml/internal/api"
	"github.com/dgallion1/wordhtml/internal/config"
	"github.com/dgallion1/wordhtml/internal/convert"
	"github.com/dgallion1/wordhtml/internal/store"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	conv := convert.New(convert.Options{
		OutputSuffix:         cfg.OutputSuffix,
		PDFFallbackPdftotext: cfg.PDFFallbackPdftotext,
	}, convert.NewStats(cfg.StatsWindow), log)

	// Finished conversions are kept in memory until ResultTTL passes.
	results := store.New(cfg.ResultTTL)
	go results.RunCleanup(ctx, 5*time.Minute)

	srv := api.NewServer(conv, results, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)
	}()

	log.Info("starting wordhtml", "port", cfg.Port, "work_dir", cfg.WorkDir)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
