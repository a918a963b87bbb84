package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/splax/passport/internal/app/migrate"
	httpx "github.com/splax/passport/internal/http"
	"github.com/splax/passport/internal/repository/postgres"
	"github.com/splax/passport/internal/service/identity"
	apiclient "github.com/splax/passport/pkg/api/client"
	"github.com/splax/passport/pkg/config"
	"github.com/splax/passport/pkg/logger"
)

const (
	dbWaitAttempts = 10
	dbWaitDelay    = 2 * time.Second
)

func main() {
	cfg := config.LoadUserConfig()
	log := logger.New("user-service", slog.LevelInfo)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	runner, err := migrate.New(pool, cfg.DatabaseURL, cfg.MigrationsDir, log)
	if err != nil {
		log.Error("failed to configure migrations", "error", err)
		os.Exit(1)
	}
	defer runner.Close()
	if err := runner.Wait(ctx, dbWaitAttempts, dbWaitDelay); err != nil {
		log.Error("database never became reachable", "error", err)
		os.Exit(1)
	}
	if err := runner.Ensure(ctx); err != nil {
		log.Error("migrations failed", "error", err)
		os.Exit(1)
	}

	verifier, err := apiclient.New(cfg.AuthServiceURL, apiclient.WithTimeout(cfg.VerifyTimeout))
	if err != nil {
		log.Error("invalid auth service url", "error", err)
		os.Exit(1)
	}

	repo := postgres.New(pool)
	identitySvc := identity.New(repo, verifier, log)
	router := httpx.NewUserRouter(log, identitySvc)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errorCh := make(chan error, 1)
	go func() {
		log.Info("user service starting", "addr", cfg.Addr, "auth_service", cfg.AuthServiceURL)
		errorCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("graceful shutdown failed", "error", err)
		}
		log.Info("user service stopped")
	case err := <-errorCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}
}
