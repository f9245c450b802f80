package db

import (
	"context"
	"errors"
	"fmt"

	"recon-engine/internal/core"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

const decisionColumns = `payment_id, COALESCE(invoice_id, ''), score, amount_score, date_score,
	reference_score, name_score, outcome, method, truncated, decided_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDecision(row rowScanner) (*core.MatchDecision, error) {
	var d core.MatchDecision
	err := row.Scan(
		&d.PaymentID, &d.InvoiceID, &d.Score, &d.Signals.AmountScore, &d.Signals.DateScore,
		&d.Signals.ReferenceScore, &d.Signals.NameScore, &d.Outcome, &d.Method, &d.TruncatedCandidateSet, &d.DecidedAt,
	)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (s *Store) GetDecision(ctx context.Context, paymentID string) (*core.MatchDecision, error) {
	d, err := scanDecision(s.pool.QueryRow(ctx, "SELECT "+decisionColumns+" FROM match_decisions WHERE payment_id = $1", paymentID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("decision for payment %s: %w", paymentID, core.ErrNotFound)
		}
		return nil, fmt.Errorf("get decision: %w", err)
	}
	return d, nil
}

func (s *Store) SaveDecision(ctx context.Context, d core.MatchDecision, force bool) (bool, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	written, err := saveDecisionTx(ctx, tx, d, force)
	if err != nil || !written {
		return false, err
	}
	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("failed to commit decision: %w", err)
	}
	return true, nil
}

// saveDecisionTx holds the payment row lock for the rest of tx, so concurrent
// runs deciding the same payment queue behind each other.
func saveDecisionTx(ctx context.Context, tx pgx.Tx, d core.MatchDecision, force bool) (bool, error) {
	var paymentID string
	if err := tx.QueryRow(ctx, "SELECT id FROM payments WHERE id = $1 FOR UPDATE", d.PaymentID).Scan(&paymentID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, fmt.Errorf("payment %s: %w", d.PaymentID, core.ErrNotFound)
		}
		return false, fmt.Errorf("lock payment: %w", err)
	}

	existing, err := scanDecision(tx.QueryRow(ctx, "SELECT "+decisionColumns+" FROM match_decisions WHERE payment_id = $1", d.PaymentID))
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return false, fmt.Errorf("load decision: %w", err)
	}
	if existing != nil {
		if existing.Outcome == core.OutcomeAutoMatched && !force {
			return false, nil
		}
		if existing.SameAs(d) {
			return false, nil
		}
		if existing.Outcome == core.OutcomeAutoMatched && existing.InvoiceID != "" {
			if _, err := tx.Exec(ctx, `
				UPDATE invoices SET settled = false, settled_by_payment_id = NULL
				WHERE id = $1 AND settled_by_payment_id = $2`,
				existing.InvoiceID, d.PaymentID,
			); err != nil {
				return false, fmt.Errorf("release invoice %s: %w", existing.InvoiceID, err)
			}
		}
	}

	switch d.Outcome {
	case core.OutcomeAutoMatched:
		tag, err := tx.Exec(ctx, `
			UPDATE invoices SET settled = true, settled_by_payment_id = $2
			WHERE id = $1 AND (NOT settled OR settled_by_payment_id = $2)`,
			d.InvoiceID, d.PaymentID,
		)
		if err != nil {
			return false, fmt.Errorf("settle invoice: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return false, fmt.Errorf("invoice %s: %w", d.InvoiceID, core.ErrInvoiceSettled)
		}
		if _, err := tx.Exec(ctx,
			"UPDATE payments SET match_status = 'matched', matched_invoice_id = $2 WHERE id = $1",
			d.PaymentID, d.InvoiceID,
		); err != nil {
			return false, fmt.Errorf("mark payment matched: %w", err)
		}
		if _, err := tx.Exec(ctx, "DELETE FROM suggestions WHERE payment_id = $1 AND status = 'pending'", d.PaymentID); err != nil {
			return false, fmt.Errorf("clear pending suggestions: %w", err)
		}

	case core.OutcomeSuggested:
		_, err := tx.Exec(ctx, `
			INSERT INTO suggestions (id, payment_id, candidate_id, score, status, created_at)
			VALUES ($1, $2, $3, $4, 'pending', $5)
			ON CONFLICT (payment_id, candidate_id) DO UPDATE SET score = EXCLUDED.score
			WHERE suggestions.status = 'pending'`,
			uuid.NewString(), d.PaymentID, d.InvoiceID, d.Score, d.DecidedAt,
		)
		if err != nil {
			return false, fmt.Errorf("queue suggestion: %w", err)
		}
		if _, err := tx.Exec(ctx,
			"DELETE FROM suggestions WHERE payment_id = $1 AND candidate_id <> $2 AND status = 'pending'",
			d.PaymentID, d.InvoiceID,
		); err != nil {
			return false, fmt.Errorf("clear stale suggestions: %w", err)
		}
		if _, err := tx.Exec(ctx,
			"UPDATE payments SET match_status = 'suggested', matched_invoice_id = NULL WHERE id = $1",
			d.PaymentID,
		); err != nil {
			return false, fmt.Errorf("mark payment suggested: %w", err)
		}

	default:
		if _, err := tx.Exec(ctx,
			"UPDATE payments SET match_status = 'open', matched_invoice_id = NULL WHERE id = $1",
			d.PaymentID,
		); err != nil {
			return false, fmt.Errorf("mark payment open: %w", err)
		}
		if _, err := tx.Exec(ctx, "DELETE FROM suggestions WHERE payment_id = $1 AND status = 'pending'", d.PaymentID); err != nil {
			return false, fmt.Errorf("clear pending suggestions: %w", err)
		}
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO match_decisions (payment_id, invoice_id, score, amount_score, date_score,
			reference_score, name_score, outcome, method, truncated, decided_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (payment_id) DO UPDATE SET
			invoice_id = EXCLUDED.invoice_id,
			score = EXCLUDED.score,
			amount_score = EXCLUDED.amount_score,
			date_score = EXCLUDED.date_score,
			reference_score = EXCLUDED.reference_score,
			name_score = EXCLUDED.name_score,
			outcome = EXCLUDED.outcome,
			method = EXCLUDED.method,
			truncated = EXCLUDED.truncated,
			decided_at = EXCLUDED.decided_at`,
		d.PaymentID, nullString(d.InvoiceID), d.Score, d.Signals.AmountScore, d.Signals.DateScore,
		d.Signals.ReferenceScore, d.Signals.NameScore, string(d.Outcome), string(d.Method), d.TruncatedCandidateSet, d.DecidedAt,
	)
	if err != nil {
		return false, fmt.Errorf("upsert decision: %w", err)
	}
	return true, nil
}

func (s *Store) RejectedCandidates(ctx context.Context, paymentID string) (map[string]bool, error) {
	rows, err := s.pool.Query(ctx,
		"SELECT candidate_id FROM suggestions WHERE payment_id = $1 AND status = 'rejected'",
		paymentID,
	)
	if err != nil {
		return nil, fmt.Errorf("rejected candidates: %w", err)
	}
	defer rows.Close()

	out := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan rejected candidate: %w", err)
		}
		out[id] = true
	}
	return out, rows.Err()
}

const suggestionColumns = "id, payment_id, candidate_id, score, status, created_at, resolved_at"

func scanSuggestion(row rowScanner) (*core.Suggestion, error) {
	var sg core.Suggestion
	if err := row.Scan(&sg.ID, &sg.PaymentID, &sg.CandidateID, &sg.Score, &sg.Status, &sg.CreatedAt, &sg.ResolvedAt); err != nil {
		return nil, err
	}
	return &sg, nil
}

func (s *Store) GetSuggestion(ctx context.Context, id string) (*core.Suggestion, error) {
	sg, err := scanSuggestion(s.pool.QueryRow(ctx, "SELECT "+suggestionColumns+" FROM suggestions WHERE id = $1", id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, core.ErrNotFound
		}
		return nil, fmt.Errorf("get suggestion: %w", err)
	}
	return sg, nil
}

// ListSuggestions returns entries with the given status, oldest first. An empty status lists all.
func (s *Store) ListSuggestions(ctx context.Context, status core.SuggestionStatus) ([]core.Suggestion, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+suggestionColumns+`
		FROM suggestions
		WHERE $1 = '' OR status = $1
		ORDER BY created_at, id`,
		string(status),
	)
	if err != nil {
		return nil, fmt.Errorf("list suggestions: %w", err)
	}
	defer rows.Close()

	out := []core.Suggestion{}
	for rows.Next() {
		sg, err := scanSuggestion(rows)
		if err != nil {
			return nil, fmt.Errorf("scan suggestion: %w", err)
		}
		out = append(out, *sg)
	}
	return out, rows.Err()
}

func (s *Store) ResolveSuggestion(ctx context.Context, id string, status core.SuggestionStatus, d core.MatchDecision) (*core.Suggestion, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	sg, err := scanSuggestion(tx.QueryRow(ctx, `
		UPDATE suggestions SET status = $2, resolved_at = NOW()
		WHERE id = $1 AND status = 'pending'
		RETURNING `+suggestionColumns,
		id, string(status),
	))
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("transition suggestion: %w", err)
		}
		var current string
		if err := tx.QueryRow(ctx, "SELECT status FROM suggestions WHERE id = $1", id).Scan(&current); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, core.ErrNotFound
			}
			return nil, fmt.Errorf("load suggestion: %w", err)
		}
		return nil, fmt.Errorf("suggestion is %s: %w", current, core.ErrSuggestionNotPending)
	}

	if _, err := saveDecisionTx(ctx, tx, d, true); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit suggestion: %w", err)
	}
	return sg, nil
}
