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

	"github.com/splitward/splitward/internal/auth"
	"github.com/splitward/splitward/internal/config"
	"github.com/splitward/splitward/internal/httpapi"
	"github.com/splitward/splitward/internal/service"
	"github.com/splitward/splitward/internal/storage/sqlite"
	"github.com/splitward/splitward/pkg/logging"
)

const tokenDuration = 24 * time.Hour

func main() {
	logging.Setup()

	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, relying on system env vars")
	}
	cfg := config.Load()

	// The store is the only process-wide stateful handle: constructed once
	// here, injected, closed on the way out.
	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("Storage initialized", "database", cfg.DBPath)

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, tokenDuration)
	ledgerSvc := service.NewLedger(store)

	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: httpapi.NewRouter(ledgerSvc, jwtManager),
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Server starting", "address", cfg.HTTPAddr)
		errCh <- srv.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		slog.Info("Shutting down")
		if err := srv.Shutdown(ctx); err != nil {
			slog.Error("Shutdown failed", "error", err)
			os.Exit(1)
		}
	case err := <-errCh:
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}
