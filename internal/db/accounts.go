package db

import (
	"context"
	"errors"
	"fmt"

	"recon-engine/internal/core"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

func (s *Store) GetAssignment(ctx context.Context, invoiceID string) (*core.AccountAssignment, error) {
	var a core.AccountAssignment
	err := s.pool.QueryRow(ctx,
		"SELECT invoice_id, account_number, reason_code, decided_at FROM account_assignments WHERE invoice_id = $1",
		invoiceID,
	).Scan(&a.InvoiceID, &a.AccountNumber, &a.ReasonCode, &a.DecidedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, core.ErrNotFound
		}
		return nil, fmt.Errorf("get assignment: %w", err)
	}
	return &a, nil
}

func (s *Store) LookupDedicatedAccount(ctx context.Context, taxID string) (*core.DedicatedAccount, error) {
	d := core.DedicatedAccount{TaxID: taxID}
	err := s.pool.QueryRow(ctx,
		"SELECT account_number, created_at FROM dedicated_accounts WHERE tax_id = $1",
		taxID,
	).Scan(&d.AccountNumber, &d.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, core.ErrNotFound
		}
		return nil, fmt.Errorf("lookup dedicated account: %w", err)
	}
	return &d, nil
}

// AllocateDedicatedAccount advances the range counter and claims the new number
// for taxID in one statement. If another allocator claimed taxID first the insert
// is a no-op and the counter increment rolls back with the transaction.
func (s *Store) AllocateDedicatedAccount(ctx context.Context, taxID string, r core.AccountRange, seed int) (*core.DedicatedAccount, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	floor := max(seed, r.Start-1)
	_, err = tx.Exec(ctx, `
		INSERT INTO account_counters (range_start, range_end, last_number)
		VALUES ($1, $2, $3)
		ON CONFLICT (range_start) DO UPDATE
		SET last_number = GREATEST(account_counters.last_number, EXCLUDED.last_number),
		    range_end = EXCLUDED.range_end`,
		r.Start, r.End, min(floor, r.End),
	)
	if err != nil {
		return nil, fmt.Errorf("seed account counter: %w", err)
	}

	d := core.DedicatedAccount{TaxID: taxID}
	err = tx.QueryRow(ctx, `
		WITH next AS (
			UPDATE account_counters
			SET last_number = last_number + 1
			WHERE range_start = $2 AND last_number < range_end
			RETURNING last_number
		)
		INSERT INTO dedicated_accounts (tax_id, account_number, created_at)
		SELECT $1, last_number, NOW() FROM next
		ON CONFLICT (tax_id) DO NOTHING
		RETURNING account_number, created_at`,
		taxID, r.Start,
	).Scan(&d.AccountNumber, &d.CreatedAt)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("allocate dedicated account: %w", err)
		}
		var last, end int
		if err := tx.QueryRow(ctx,
			"SELECT last_number, range_end FROM account_counters WHERE range_start = $1",
			r.Start,
		).Scan(&last, &end); err != nil {
			return nil, fmt.Errorf("read account counter: %w", err)
		}
		if last >= end {
			return nil, fmt.Errorf("range %d-%d: %w", r.Start, r.End, core.ErrAccountRangeExhausted)
		}
		return nil, &core.AllocationConflict{TaxID: taxID}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit allocation: %w", err)
	}
	return &d, nil
}

func (s *Store) SaveAssignment(ctx context.Context, a core.AccountAssignment, force bool) (bool, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var tag pgconn.CommandTag
	if force {
		tag, err = tx.Exec(ctx, `
			INSERT INTO account_assignments (invoice_id, account_number, reason_code, decided_at)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (invoice_id) DO UPDATE SET
				account_number = EXCLUDED.account_number,
				reason_code = EXCLUDED.reason_code,
				decided_at = EXCLUDED.decided_at`,
			a.InvoiceID, a.AccountNumber, string(a.ReasonCode), a.DecidedAt,
		)
	} else {
		tag, err = tx.Exec(ctx, `
			INSERT INTO account_assignments (invoice_id, account_number, reason_code, decided_at)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (invoice_id) DO NOTHING`,
			a.InvoiceID, a.AccountNumber, string(a.ReasonCode), a.DecidedAt,
		)
	}
	if err != nil {
		return false, fmt.Errorf("upsert assignment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return false, nil
	}

	if _, err := tx.Exec(ctx, `
		UPDATE invoices SET debtor_account = $2, needs_manual_review = false, review_reason = NULL
		WHERE id = $1`,
		a.InvoiceID, a.AccountNumber,
	); err != nil {
		return false, fmt.Errorf("write debtor account: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("failed to commit assignment: %w", err)
	}
	return true, nil
}

func (s *Store) FlagForReview(ctx context.Context, invoiceID, reason string) error {
	tag, err := s.pool.Exec(ctx,
		"UPDATE invoices SET needs_manual_review = true, review_reason = $2 WHERE id = $1",
		invoiceID, reason,
	)
	if err != nil {
		return fmt.Errorf("flag invoice for review: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return core.ErrNotFound
	}
	return nil
}
