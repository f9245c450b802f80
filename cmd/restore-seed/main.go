// restore-seed restores the payment method to collective account table. Run it
// when the table was wiped or on a fresh database; without the fallback label
// every non reverse-charge sales invoice is flagged for review.
//
// Usage: go run ./cmd/restore-seed [accounts.json]
//
// accounts.json maps payment method labels to account numbers, for example
// {"PayPal": 9100, "Rechnung": 9900}.
package main

import (
	"context"
	"encoding/json"
	"os"
	"sort"

	"recon-engine/internal/config"
	"recon-engine/internal/db"
	"recon-engine/internal/logger"

	"github.com/joho/godotenv"
)

var defaultCollectiveAccounts = map[string]int{
	"Amazon":      9200,
	"eBay":        9300,
	"Lastschrift": 9600,
	"Mollie":      9400,
	"PayPal":      9100,
	"Rechnung":    9900,
	"Vorkasse":    9500,
}

func main() {
	_ = godotenv.Load()

	log := logger.WithComponent("restore-seed")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}
	if _, err := logger.Setup(cfg.GetLoggerConfig()); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize logger")
	}
	log = logger.WithComponent("restore-seed")

	accounts := defaultCollectiveAccounts
	if len(os.Args) > 1 {
		raw, err := os.ReadFile(os.Args[1])
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to read account file")
		}
		accounts = map[string]int{}
		if err := json.Unmarshal(raw, &accounts); err != nil {
			log.Fatal().Err(err).Msg("Invalid account file")
		}
	}
	if _, ok := accounts[cfg.FallbackPaymentMethod]; !ok {
		log.Warn().Str("fallback", cfg.FallbackPaymentMethod).Msg("Seed has no entry for the fallback payment method")
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect")
	}
	defer pool.Close()

	if err := db.Migrate(ctx, pool, logger.WithComponent("migrate")); err != nil {
		log.Fatal().Err(err).Msg("Failed to migrate")
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to begin transaction")
	}
	defer tx.Rollback(ctx)

	labels := make([]string, 0, len(accounts))
	for label := range accounts {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	for _, label := range labels {
		_, err := tx.Exec(ctx, `
			INSERT INTO payment_method_accounts (label, account_number)
			VALUES ($1, $2)
			ON CONFLICT (label) DO UPDATE
			  SET account_number = EXCLUDED.account_number`,
			label, accounts[label])
		if err != nil {
			log.Fatal().Err(err).Str("label", label).Msg("Failed to restore collective account")
		}
		log.Info().Str("label", label).Int("account", accounts[label]).Msg("Collective account restored")
	}

	if err := tx.Commit(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to commit")
	}
	log.Info().Int("accounts", len(labels)).Msg("Seed data restored successfully")
}
