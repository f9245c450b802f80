package db

import (
	"context"
	"fmt"
	"strings"

	"recon-engine/internal/core"
)

func (s *Store) AssignCreditor(ctx context.Context, invoiceID string, creditorAccount int, score float64, method string) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE invoices
		SET creditor_account = $2, creditor_status = 'assigned', creditor_score = $3, creditor_method = $4
		WHERE id = $1 AND kind = 'purchase'`,
		invoiceID, creditorAccount, score, method,
	)
	if err != nil {
		return fmt.Errorf("assign creditor: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("purchase invoice %s: %w", invoiceID, core.ErrNotFound)
	}
	return nil
}

// QueueCreditorLookup leaves the creditor empty and records the best score seen,
// so reviewers can sort the queue by how close the registry came.
func (s *Store) QueueCreditorLookup(ctx context.Context, invoiceID string, bestScore float64) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE invoices
		SET creditor_status = 'queued', creditor_score = $2, creditor_method = NULL
		WHERE id = $1 AND kind = 'purchase' AND creditor_account IS NULL`,
		invoiceID, bestScore,
	)
	if err != nil {
		return fmt.Errorf("queue creditor lookup: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("open purchase invoice %s: %w", invoiceID, core.ErrNotFound)
	}
	return nil
}

func (s *Store) AppendAlias(ctx context.Context, creditorAccount int, alias string) error {
	alias = strings.TrimSpace(alias)
	if alias == "" {
		return nil
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO creditor_aliases (creditor_account, alias)
		SELECT account, $2 FROM creditors
		WHERE account = $1 AND canonical_name <> $2
		ON CONFLICT (creditor_account, alias) DO NOTHING`,
		creditorAccount, alias,
	)
	if err != nil {
		return fmt.Errorf("append alias: %w", err)
	}
	return nil
}
