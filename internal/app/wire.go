package app

import (
	"recon-engine/internal/config"
	"recon-engine/internal/core"
	"recon-engine/internal/db"
	"recon-engine/internal/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

// NewFromPool wires the engines to the PostgreSQL store.
func NewFromPool(pool *pgxpool.Pool, cfg *config.Config) ApplicationService {
	store := db.NewStore(pool)
	reconciler := core.NewReconciler(store, store, cfg.ReconcilerConfig(), logger.WithComponent("reconciler"))
	accounts := core.NewAccountAssigner(store, store, cfg.AccountConfig(), logger.WithComponent("accounts"))
	creditors := core.NewCreditorResolver(store, store, core.SimilarityByName(cfg.Similarity), cfg.CreditorThreshold, logger.WithComponent("creditors"))
	return NewAppService(reconciler, accounts, creditors)
}
