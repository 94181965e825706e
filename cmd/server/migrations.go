package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/phrazzld/tasks-api/internal/config"
	"github.com/phrazzld/tasks-api/internal/platform/migrations"
)

// handleMigrations runs a single -migrate command against db and returns.
func handleMigrations(
	ctx context.Context,
	db *sql.DB,
	cfg *config.Config,
	command string,
	logger *slog.Logger,
) error {
	logger.Info("Executing migrations",
		"command", command,
		"driver", cfg.Database.Driver)

	if err := migrations.Run(ctx, db, cfg.Database.Driver, command, logger); err != nil {
		return fmt.Errorf("migration %q failed: %w", command, err)
	}
	return nil
}

// applyMigrations brings the schema up to date before serving.
func applyMigrations(ctx context.Context, db *sql.DB, cfg *config.Config, logger *slog.Logger) error {
	if err := migrations.Up(ctx, db, cfg.Database.Driver, logger); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}
