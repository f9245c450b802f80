package main

import (
	"context"
	"os"
	"time"

	"recon-engine/internal/config"
	"recon-engine/internal/db"
	"recon-engine/internal/logger"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

// requiredTables must exist once all migrations have run.
var requiredTables = []string{
	"payments",
	"invoices",
	"match_decisions",
	"suggestions",
	"payment_method_accounts",
	"account_assignments",
	"dedicated_accounts",
	"account_counters",
	"creditors",
	"creditor_aliases",
}

func main() {
	_ = godotenv.Load()

	log := logger.WithComponent("verify-db")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}
	closer, err := logger.Setup(cfg.GetLoggerConfig())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize logger")
	}
	defer closer.Close()
	log = logger.WithComponent("verify-db")

	ctx := context.Background()
	connCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	pool, err := db.NewPool(connCtx, cfg.DatabaseURL)
	cancel()
	if err != nil {
		log.Fatal().Err(err).Msg("[CONNECT] failed")
	}
	defer pool.Close()
	log.Info().Msg("[CONNECT] success")

	if err := db.Migrate(ctx, pool, logger.WithComponent("migrate")); err != nil {
		log.Error().Err(err).Msg("[MIGRATE] failed")
		pool.Close()
		os.Exit(1)
	}

	if missing := missingTables(ctx, pool); len(missing) > 0 {
		log.Error().Strs("tables", missing).Msg("[VERIFY] missing tables")
		pool.Close()
		os.Exit(1)
	}
	log.Info().Int("tables", len(requiredTables)).Msg("[DONE] schema verified")
}

func missingTables(ctx context.Context, pool *pgxpool.Pool) []string {
	var missing []string
	for _, table := range requiredTables {
		var exists bool
		err := pool.QueryRow(ctx, "SELECT to_regclass($1) IS NOT NULL", "public."+table).Scan(&exists)
		if err != nil || !exists {
			missing = append(missing, table)
		}
	}
	return missing
}
