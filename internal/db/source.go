package db

import (
	"context"
	"fmt"
	"time"

	"recon-engine/internal/core"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store is the PostgreSQL implementation of core.Source and core.Store.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

var (
	_ core.Source = (*Store)(nil)
	_ core.Store  = (*Store)(nil)
)

const paymentColumns = `id, direction, amount, payment_date, counterparty_name_raw, reference_text,
	source_channel, matched_invoice_id, match_status`

const invoiceColumns = `id, kind, number, invoice_date, gross_amount, vat_amount, counterparty_name,
	tax_country_code, counterparty_tax_id, payment_method_label, order_reference, marketplace,
	settled, debtor_account, creditor_account`

func nullDate(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

func scanPayments(rows pgx.Rows) ([]core.Payment, error) {
	defer rows.Close()

	var payments []core.Payment
	for rows.Next() {
		var p core.Payment
		if err := rows.Scan(
			&p.ID, &p.Direction, &p.Amount, &p.Date, &p.CounterpartyNameRaw, &p.ReferenceText,
			&p.SourceChannel, &p.MatchedInvoiceID, &p.MatchStatus,
		); err != nil {
			return nil, fmt.Errorf("scan payment: %w", err)
		}
		payments = append(payments, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate payments: %w", err)
	}
	return payments, nil
}

type invoiceRow struct {
	header          core.InvoiceHeader
	kind            core.InvoiceKind
	marketplace     string
	debtorAccount   *int
	creditorAccount *int
}

func (r invoiceRow) invoice() core.Invoice {
	switch r.kind {
	case core.KindSales:
		return core.SalesInvoice{InvoiceHeader: r.header, DebtorAccount: r.debtorAccount}
	case core.KindPurchase:
		return core.PurchaseInvoice{InvoiceHeader: r.header, CreditorAccount: r.creditorAccount}
	default:
		return core.MarketplaceInvoice{InvoiceHeader: r.header, Marketplace: r.marketplace}
	}
}

func scanInvoices(rows pgx.Rows) ([]invoiceRow, error) {
	defer rows.Close()

	var out []invoiceRow
	for rows.Next() {
		var r invoiceRow
		h := &r.header
		if err := rows.Scan(
			&h.ID, &r.kind, &h.Number, &h.Date, &h.GrossAmount, &h.VATAmount, &h.CounterpartyName,
			&h.TaxCountryCode, &h.CounterpartyTaxID, &h.PaymentMethodLabel, &h.OrderReference, &r.marketplace,
			&h.Settled, &r.debtorAccount, &r.creditorAccount,
		); err != nil {
			return nil, fmt.Errorf("scan invoice: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate invoices: %w", err)
	}
	return out, nil
}

func (s *Store) ListUnmatchedPayments(ctx context.Context, direction core.Direction, dates core.DateRange) ([]core.Payment, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+paymentColumns+`
		FROM payments
		WHERE match_status <> 'matched'
		  AND ($1 = '' OR direction = $1)
		  AND ($2::date IS NULL OR payment_date >= $2::date)
		  AND ($3::date IS NULL OR payment_date <= $3::date)
		ORDER BY id`,
		string(direction), nullDate(dates.From), nullDate(dates.To),
	)
	if err != nil {
		return nil, fmt.Errorf("list unmatched payments: %w", err)
	}
	return scanPayments(rows)
}

func (s *Store) GetPayments(ctx context.Context, ids []string) ([]core.Payment, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+paymentColumns+` FROM payments WHERE id = ANY($1) ORDER BY id`, ids)
	if err != nil {
		return nil, fmt.Errorf("get payments: %w", err)
	}
	return scanPayments(rows)
}

func kindsFor(direction core.Direction) []string {
	switch direction {
	case core.Incoming:
		return []string{string(core.KindSales), string(core.KindMarketplace)}
	case core.Outgoing:
		return []string{string(core.KindPurchase)}
	}
	return []string{string(core.KindSales), string(core.KindMarketplace), string(core.KindPurchase)}
}

func (s *Store) ListCandidateInvoices(ctx context.Context, direction core.Direction, dates core.DateRange) ([]core.Invoice, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+invoiceColumns+`
		FROM invoices
		WHERE kind = ANY($1)
		  AND NOT settled
		  AND ($2::date IS NULL OR invoice_date >= $2::date)
		  AND ($3::date IS NULL OR invoice_date <= $3::date)
		ORDER BY invoice_date, id`,
		kindsFor(direction), nullDate(dates.From), nullDate(dates.To),
	)
	if err != nil {
		return nil, fmt.Errorf("list candidate invoices: %w", err)
	}
	scanned, err := scanInvoices(rows)
	if err != nil {
		return nil, err
	}

	invoices := make([]core.Invoice, len(scanned))
	for i, r := range scanned {
		invoices[i] = r.invoice()
	}
	return invoices, nil
}

func (s *Store) GetInvoices(ctx context.Context, ids []string) ([]core.Invoice, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE id = ANY($1) ORDER BY id`, ids)
	if err != nil {
		return nil, fmt.Errorf("get invoices: %w", err)
	}
	scanned, err := scanInvoices(rows)
	if err != nil {
		return nil, err
	}

	invoices := make([]core.Invoice, len(scanned))
	for i, r := range scanned {
		invoices[i] = r.invoice()
	}
	return invoices, nil
}

func (s *Store) ListSalesInvoices(ctx context.Context, ids []string) ([]core.SalesInvoice, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+invoiceColumns+`
		FROM invoices
		WHERE kind = 'sales'
		  AND (COALESCE(cardinality($1::text[]), 0) = 0 AND debtor_account IS NULL OR id = ANY($1))
		ORDER BY id`,
		ids,
	)
	if err != nil {
		return nil, fmt.Errorf("list sales invoices: %w", err)
	}
	scanned, err := scanInvoices(rows)
	if err != nil {
		return nil, err
	}

	out := make([]core.SalesInvoice, len(scanned))
	for i, r := range scanned {
		out[i] = core.SalesInvoice{InvoiceHeader: r.header, DebtorAccount: r.debtorAccount}
	}
	return out, nil
}

func (s *Store) ListPurchaseInvoices(ctx context.Context, ids []string) ([]core.PurchaseInvoice, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+invoiceColumns+`
		FROM invoices
		WHERE kind = 'purchase'
		  AND (COALESCE(cardinality($1::text[]), 0) = 0 AND creditor_account IS NULL OR id = ANY($1))
		ORDER BY id`,
		ids,
	)
	if err != nil {
		return nil, fmt.Errorf("list purchase invoices: %w", err)
	}
	scanned, err := scanInvoices(rows)
	if err != nil {
		return nil, err
	}

	out := make([]core.PurchaseInvoice, len(scanned))
	for i, r := range scanned {
		out[i] = core.PurchaseInvoice{InvoiceHeader: r.header, CreditorAccount: r.creditorAccount}
	}
	return out, nil
}

func (s *Store) GetCreditorRegistry(ctx context.Context) ([]core.CreditorAlias, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT c.account, c.canonical_name,
		       COALESCE(array_agg(a.alias ORDER BY a.created_at, a.alias) FILTER (WHERE a.alias IS NOT NULL), '{}')
		FROM creditors c
		LEFT JOIN creditor_aliases a ON a.creditor_account = c.account
		GROUP BY c.account, c.canonical_name
		ORDER BY c.account`)
	if err != nil {
		return nil, fmt.Errorf("get creditor registry: %w", err)
	}
	defer rows.Close()

	var registry []core.CreditorAlias
	for rows.Next() {
		var c core.CreditorAlias
		if err := rows.Scan(&c.CreditorAccount, &c.CanonicalName, &c.KnownAliases); err != nil {
			return nil, fmt.Errorf("scan creditor: %w", err)
		}
		registry = append(registry, c)
	}
	return registry, rows.Err()
}

func (s *Store) GetPaymentMethodAccountTable(ctx context.Context) (map[string]int, error) {
	rows, err := s.pool.Query(ctx, "SELECT label, account_number FROM payment_method_accounts")
	if err != nil {
		return nil, fmt.Errorf("get payment method accounts: %w", err)
	}
	defer rows.Close()

	table := make(map[string]int)
	for rows.Next() {
		var (
			label   string
			account int
		)
		if err := rows.Scan(&label, &account); err != nil {
			return nil, fmt.Errorf("scan payment method account: %w", err)
		}
		table[label] = account
	}
	return table, rows.Err()
}

// GetMaxAllocatedAccountNumber considers both minted dedicated accounts and debtor
// accounts already written to invoices, so numbers entered in the ERP are never reissued.
func (s *Store) GetMaxAllocatedAccountNumber(ctx context.Context, rangeStart, rangeEnd int) (int, error) {
	var max int
	err := s.pool.QueryRow(ctx, `
		SELECT COALESCE(MAX(n), $1 - 1)
		FROM (
			SELECT account_number AS n FROM dedicated_accounts
			UNION ALL
			SELECT debtor_account FROM invoices WHERE debtor_account IS NOT NULL
		) used
		WHERE n BETWEEN $1 AND $2`,
		rangeStart, rangeEnd,
	).Scan(&max)
	if err != nil {
		return 0, fmt.Errorf("max allocated account number: %w", err)
	}
	return max, nil
}
