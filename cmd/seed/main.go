// Package main loads the demo account and its trips into the configured
// database. Existing users and trips are removed first.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/pkordes/wanderlogue/backend/internal/auth"
	"github.com/pkordes/wanderlogue/backend/internal/config"
	"github.com/pkordes/wanderlogue/backend/internal/repo"
	"github.com/pkordes/wanderlogue/backend/internal/seed"
	"github.com/pkordes/wanderlogue/backend/internal/service"
	"github.com/pkordes/wanderlogue/backend/migrations"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	if err := config.LoadDotEnv(); err != nil {
		logger.Error("configuration error", "error", err)
		os.Exit(1)
	}
	cfg, err := config.Load()
	if err != nil {
		logger.Error("configuration error", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to create database pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	sqlDB := stdlib.OpenDBFromPool(pool)
	_, err = migrations.Up(ctx, sqlDB)
	_ = sqlDB.Close()
	if err != nil {
		logger.Error("failed to apply migrations", "error", err)
		os.Exit(1)
	}

	// trips cascade from users.
	if _, err := pool.Exec(ctx, "TRUNCATE users CASCADE"); err != nil {
		logger.Error("failed to clear existing data", "error", err)
		os.Exit(1)
	}
	logger.Info("cleared existing data")

	tokens, err := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTExpiry)
	if err != nil {
		logger.Error("failed to create token manager", "error", err)
		os.Exit(1)
	}

	users := service.NewAuthService(repo.NewUserRepo(pool), tokens)
	trips := service.NewTripService(repo.NewTripRepo(pool))
	if _, err := seed.Run(ctx, users, trips, logger); err != nil {
		logger.Error("seed failed", "error", err)
		os.Exit(1)
	}

	logger.Info("seed completed", "email", seed.DemoEmail, "password", seed.DemoPassword)
}
