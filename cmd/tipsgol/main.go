// Package main TipsGol API
//
// @title           TipsGol API
// @version         1.0
// @description     Betting tips, performance analysis and premium membership.

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the JWT token.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/tipsgolbr/tipsgol/docs"
	"github.com/tipsgolbr/tipsgol/internal/app/tipsgol"
	"github.com/tipsgolbr/tipsgol/internal/config"
	"github.com/tipsgolbr/tipsgol/internal/lib/sl"
)

const envLocal = "local"

func main() {
	cfg := config.MustLoad()
	logger := setupLogger(cfg.Env)

	logger.Info("starting tipsgol", slog.String("env", cfg.Env))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := tipsgol.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize app", sl.Err(err))
		os.Exit(1)
	}

	if err := app.Run(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("app stopped with error", sl.Err(err))
		os.Exit(1)
	}

	logger.Info("tipsgol stopped gracefully")
}

func setupLogger(env string) *slog.Logger {
	level := slog.LevelInfo
	if env == envLocal {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}
