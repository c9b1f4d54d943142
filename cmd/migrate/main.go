package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tokenops/tokenledger/internal/platform/config"
	"github.com/tokenops/tokenledger/internal/platform/database"
	"github.com/tokenops/tokenledger/internal/platform/logger"
)

const componentName = "migrate"

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	cfg, err := config.Load(componentName)
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	appLogger := logger.New(cfg.LogLevel).With("component", componentName)

	dbPool, err := database.NewDBPool(ctx, cfg.PostgresDSN)
	if err != nil {
		appLogger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()

	if err := applyMigrations(ctx, dbPool, cfg.MigrationsDir, appLogger); err != nil {
		appLogger.Error("Migration failed", "error", err)
		os.Exit(1)
	}
	appLogger.Info("Migrations applied", "dir", cfg.MigrationsDir)
}

// applyMigrations runs every .sql file in dir in lexical order, each inside
// its own transaction. Files are expected to be idempotent (IF NOT EXISTS).
func applyMigrations(ctx context.Context, pool *pgxpool.Pool, dir string, log *slog.Logger) error {
	paths, err := filepath.Glob(filepath.Join(dir, "*.sql"))
	if err != nil {
		return fmt.Errorf("failed to scan migrations dir %s: %w", dir, err)
	}
	if len(paths) == 0 {
		return fmt.Errorf("no migration files found in %s", dir)
	}
	sort.Strings(paths)

	for _, path := range paths {
		contents, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}

		err = pgx.BeginFunc(ctx, pool, func(tx pgx.Tx) error {
			_, execErr := tx.Exec(ctx, string(contents))
			return execErr
		})
		if err != nil {
			return fmt.Errorf("failed to apply %s: %w", filepath.Base(path), err)
		}
		log.Info("Applied migration", "file", filepath.Base(path))
	}
	return nil
}
