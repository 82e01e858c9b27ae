package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"fintrack/internal/auth"
	"fintrack/internal/cli"
	apphttp "fintrack/internal/http"
	"fintrack/internal/log"
	"fintrack/internal/services"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentApp)
	cfg := cli.LoadAndValidateConfig(logger)

	res := cli.InitBackend(context.Background(), logger, cfg)

	tokens, err := auth.NewTokenIssuer(cfg.JWTSecret, cfg.JWTAccessTTL, cfg.JWTRefreshTTL)
	if err != nil {
		logger.Error("Failed to initialize token issuer", "error", err)
		_ = res.Cleanup()
		os.Exit(1)
	}

	summaryCache := services.NewSummaryCache(cfg.SummaryCacheSize, cfg.SummaryCacheTTL)
	summaries := services.NewSummaryService(res.Store, summaryCache)
	opts := []services.Option{services.WithChangeListener(summaries)}
	if res.Publisher != nil {
		opts = append(opts, services.WithPublisher(res.Publisher))
	}

	srv, err := apphttp.NewServer(apphttp.Services{
		Users:        services.NewUserService(res.Store, tokens),
		Categories:   services.NewCategoryService(res.Store, opts...),
		Transactions: services.NewTransactionService(res.Store, opts...),
		Budgets:      services.NewBudgetService(res.Store, opts...),
		Summaries:    summaries,
	}, apphttp.Options{
		Addr:               ":" + cfg.Port,
		Tokens:             tokens,
		Store:              res.Store,
		Logger:             logger,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		AuthRateLimit:      cfg.AuthRateLimit,
		SummaryCache:       summaryCache,
	})
	if err != nil {
		logger.Error("Failed to build HTTP server", "error", err)
		_ = res.Cleanup()
		os.Exit(1)
	}
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 15 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		if err := res.Cleanup(); err != nil {
			logger.Error("Backend cleanup error", "error", err)
		}
	})

	logger.Info("Starting fintrack server", "port", cfg.Port, "backend", cfg.DataBackend, "ledger_events", res.Publisher != nil)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		_ = res.Cleanup()
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
