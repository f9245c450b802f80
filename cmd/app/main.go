package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"recon-engine/internal/adapters/cli"
	"recon-engine/internal/app"
	"recon-engine/internal/config"
	"recon-engine/internal/core"
	"recon-engine/internal/db"
	"recon-engine/internal/logger"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

func main() {
	os.Exit(run())
}

func run() int {
	_ = godotenv.Load()

	mainLog := logger.WithComponent("main")

	cfg, err := config.Load()
	if err != nil {
		mainLog.Error().Err(err).Msg("Invalid configuration")
		return 2
	}
	closer, err := logger.Setup(cfg.GetLoggerConfig())
	if err != nil {
		mainLog.Error().Err(err).Msg("Failed to initialize logger")
		return 2
	}
	defer closer.Close()
	mainLog = logger.WithComponent("main")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var pool *pgxpool.Pool
	defer func() {
		if pool != nil {
			pool.Close()
		}
	}()

	open := func(ctx context.Context) (app.ApplicationService, error) {
		p, err := db.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("unable to connect to database: %w", err)
		}
		pool = p
		if err := db.Migrate(ctx, pool, logger.WithComponent("migrate")); err != nil {
			return nil, err
		}
		return app.NewFromPool(pool, cfg), nil
	}

	if err := cli.NewRootCommand(open).ExecuteContext(ctx); err != nil {
		mainLog.Error().Err(err).Msg("Command execution failed")
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if core.IsValidation(err) {
			return 2
		}
		return 1
	}
	return 0
}
