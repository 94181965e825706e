// Package main implements the entry point for the tasks API server, an
// owner-scoped task tracker with JWT authentication.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

// flags holds the parsed command line.
type flags struct {
	configPath string
	migrate    string
	createUser string
	password   string
}

func parseFlags(args []string) (flags, error) {
	var f flags
	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.StringVar(&f.configPath, "config", "", "path to a config file (default: search ./config.yaml, /etc/tasks-api)")
	fs.StringVar(&f.migrate, "migrate", "", "run a migration command (up, down, reset, status, version) and exit")
	fs.StringVar(&f.createUser, "create-user", "", "create a user with this username and exit")
	fs.StringVar(&f.password, "password", "", "password for -create-user")
	if err := fs.Parse(args); err != nil {
		return f, err
	}
	if f.createUser != "" && f.password == "" {
		return f, fmt.Errorf("-create-user requires -password")
	}
	return f, nil
}

func main() {
	f, err := parseFlags(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, f); err != nil {
		slog.Error("server exited with error", "error", err)
		stop()
		os.Exit(1)
	}
}

// run loads configuration, prepares the database and then either performs
// a one-shot command or serves HTTP until ctx is canceled.
func run(ctx context.Context, f flags) error {
	cfg, err := loadAppConfig(f.configPath)
	if err != nil {
		return err
	}

	logger, err := setupAppLogger(cfg)
	if err != nil {
		return err
	}
	logger.Info("Server configuration loaded",
		"version", version,
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"database_driver", cfg.Database.Driver)

	db, err := setupAppDatabase(ctx, cfg, logger)
	if err != nil {
		return err
	}

	if f.migrate != "" {
		defer closeDB(db, logger)
		return handleMigrations(ctx, db, cfg, f.migrate, logger)
	}

	if err := applyMigrations(ctx, db, cfg, logger); err != nil {
		closeDB(db, logger)
		return err
	}

	app, err := newApplication(cfg, logger, db)
	if err != nil {
		closeDB(db, logger)
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	if f.createUser != "" {
		defer app.cleanup()
		return app.seedUser(ctx, f.createUser, f.password)
	}

	return app.Run(ctx)
}
