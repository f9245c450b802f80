package core

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// euMembers lists the EU-27 country codes. Greece appears under both its ISO code and its VAT prefix.
var euMembers = map[string]bool{
	"AT": true, "BE": true, "BG": true, "HR": true, "CY": true, "CZ": true, "DK": true,
	"EE": true, "FI": true, "FR": true, "DE": true, "GR": true, "EL": true, "HU": true,
	"IE": true, "IT": true, "LV": true, "LT": true, "LU": true, "MT": true, "NL": true,
	"PL": true, "PT": true, "RO": true, "SK": true, "SI": true, "ES": true, "SE": true,
}

func IsEUCountry(code string) bool {
	return euMembers[strings.ToUpper(strings.TrimSpace(code))]
}

// IsIntraEUReverseCharge reports whether a sales invoice goes to a VAT-registered
// EU customer with zero-rated VAT.
func IsIntraEUReverseCharge(h InvoiceHeader) bool {
	return IsEUCountry(h.TaxCountryCode) && CanonicalTaxID(h.CounterpartyTaxID) != "" && h.VATAmount.IsZero()
}

// AccountRange is the inclusive numeric range dedicated debtor accounts are minted from.
type AccountRange struct {
	Start int
	End   int
}

type AccountConfig struct {
	DedicatedRange AccountRange
	FallbackLabel  string
	Workers        int
	PreviewLimit   int
}

type AssignmentSummary struct {
	Checked          int                 `json:"checked"`
	Assigned         int                 `json:"assigned"`
	Skipped          int                 `json:"skipped"`
	FlaggedForReview []string            `json:"flagged_for_review"`
	Errors           []ItemError         `json:"errors"`
	Preview          []AccountAssignment `json:"preview"`
}

// AccountAssigner is the debtor rule engine for sales invoices.
type AccountAssigner struct {
	source Source
	store  AccountStore
	cfg    AccountConfig
	log    zerolog.Logger
	now    func() time.Time
}

func NewAccountAssigner(source Source, store AccountStore, cfg AccountConfig, log zerolog.Logger) *AccountAssigner {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.PreviewLimit <= 0 {
		cfg.PreviewLimit = DefaultPreviewLimit
	}
	return &AccountAssigner{
		source: source,
		store:  store,
		cfg:    cfg,
		log:    log,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (a *AccountAssigner) WithClock(now func() time.Time) *AccountAssigner {
	a.now = now
	return a
}

type assignResult struct {
	invoiceID  string
	assignment AccountAssignment
	written    bool
	flagged    bool
	err        error
}

// AssignAccounts classifies the given sales invoices, or every unassigned one when
// invoiceIDs is empty. Per-invoice failures are collected, not returned.
func (a *AccountAssigner) AssignAccounts(ctx context.Context, invoiceIDs []string, force bool) (*AssignmentSummary, error) {
	invoices, err := a.source.ListSalesInvoices(ctx, invoiceIDs)
	if err != nil {
		return nil, fmt.Errorf("list sales invoices: %w", err)
	}
	table, err := a.source.GetPaymentMethodAccountTable(ctx)
	if err != nil {
		return nil, fmt.Errorf("load payment method accounts: %w", err)
	}
	collective := make(map[string]int, len(table))
	for label, account := range table {
		collective[strings.ToLower(strings.TrimSpace(label))] = account
	}

	var (
		mu      sync.Mutex
		results = make([]assignResult, 0, len(invoices))
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.cfg.Workers)
	for _, inv := range invoices {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res := a.assignOne(gctx, inv, collective, force)
			mu.Lock()
			results = append(results, res)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("account assignment aborted: %w", err)
	}

	sort.Slice(results, func(i, j int) bool { return results[i].invoiceID < results[j].invoiceID })
	s := &AssignmentSummary{FlaggedForReview: []string{}, Errors: []ItemError{}, Preview: []AccountAssignment{}}
	for _, res := range results {
		s.Checked++
		switch {
		case res.err != nil:
			s.Errors = append(s.Errors, newItemError(res.invoiceID, res.err))
		case res.flagged:
			s.FlaggedForReview = append(s.FlaggedForReview, res.invoiceID)
		case !res.written:
			s.Skipped++
		default:
			s.Assigned++
			if len(s.Preview) < a.cfg.PreviewLimit {
				s.Preview = append(s.Preview, res.assignment)
			}
		}
	}

	a.log.Info().Int("checked", s.Checked).Int("assigned", s.Assigned).Int("flagged", len(s.FlaggedForReview)).Int("errors", len(s.Errors)).Msg("Account assignment finished")
	return s, nil
}

func (a *AccountAssigner) assignOne(ctx context.Context, inv SalesInvoice, collective map[string]int, force bool) assignResult {
	res := assignResult{invoiceID: inv.ID}
	log := a.log.With().Str("invoice_id", inv.ID).Logger()

	if inv.ID == "" {
		res.err = &ValidationError{Kind: "sales invoice", Field: "id", Message: "must not be empty"}
		return res
	}
	if !force {
		if existing, err := a.store.GetAssignment(ctx, inv.ID); err == nil {
			res.assignment = *existing
			return res
		} else if !errors.Is(err, ErrNotFound) {
			res.err = fmt.Errorf("load assignment: %w", err)
			return res
		}
	}

	assignment, err := a.Classify(ctx, inv, collective)
	if err != nil {
		var cfgErr *ConfigurationError
		if errors.As(err, &cfgErr) {
			log.Warn().Err(err).Msg("Invoice needs manual review")
			if ferr := a.store.FlagForReview(ctx, inv.ID, err.Error()); ferr != nil {
				res.err = fmt.Errorf("flag for review: %w", ferr)
				return res
			}
			res.flagged = true
			return res
		}
		log.Error().Err(err).Msg("Account classification failed")
		res.err = err
		return res
	}

	written, err := a.store.SaveAssignment(ctx, assignment, force)
	if err != nil {
		res.err = fmt.Errorf("save assignment: %w", err)
		return res
	}
	log.Debug().Int("account", assignment.AccountNumber).Str("reason", string(assignment.ReasonCode)).Bool("written", written).Msg("Debtor account assigned")
	res.assignment = assignment
	res.written = written
	return res
}

// Classify applies the debtor rules in order: dedicated account for intra-EU
// reverse charge, collective account by payment method, configured fallback.
func (a *AccountAssigner) Classify(ctx context.Context, inv SalesInvoice, collective map[string]int) (AccountAssignment, error) {
	out := AccountAssignment{InvoiceID: inv.ID, DecidedAt: a.now()}

	if IsIntraEUReverseCharge(inv.InvoiceHeader) {
		acct, err := a.DedicatedAccount(ctx, inv.CounterpartyTaxID)
		if err != nil {
			return out, err
		}
		out.AccountNumber = acct.AccountNumber
		out.ReasonCode = ReasonIntraEUReverseCharge
		return out, nil
	}

	if n, ok := collective[strings.ToLower(strings.TrimSpace(inv.PaymentMethodLabel))]; ok && inv.PaymentMethodLabel != "" {
		out.AccountNumber = n
		out.ReasonCode = ReasonCollective
		return out, nil
	}
	if n, ok := collective[strings.ToLower(strings.TrimSpace(a.cfg.FallbackLabel))]; ok && a.cfg.FallbackLabel != "" {
		out.AccountNumber = n
		out.ReasonCode = ReasonFallback
		return out, nil
	}
	return out, &ConfigurationError{Label: inv.PaymentMethodLabel}
}

// DedicatedAccount returns the account for a tax ID, allocating one on first use.
// A lost allocation race is retried once; the retry finds the winner's account.
func (a *AccountAssigner) DedicatedAccount(ctx context.Context, taxID string) (*DedicatedAccount, error) {
	key := CanonicalTaxID(taxID)
	if key == "" {
		return nil, &ValidationError{Kind: "sales invoice", Field: "counterparty_tax_id", Message: "must not be empty"}
	}

	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		existing, err := a.store.LookupDedicatedAccount(ctx, key)
		if err == nil {
			return existing, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("lookup dedicated account: %w", err)
		}

		seed, err := a.source.GetMaxAllocatedAccountNumber(ctx, a.cfg.DedicatedRange.Start, a.cfg.DedicatedRange.End)
		if err != nil {
			return nil, fmt.Errorf("max allocated account: %w", err)
		}

		acct, err := a.store.AllocateDedicatedAccount(ctx, key, a.cfg.DedicatedRange, seed)
		if err == nil {
			a.log.Info().Str("tax_id", key).Int("account", acct.AccountNumber).Msg("Allocated dedicated debtor account")
			return acct, nil
		}
		if !errors.Is(err, ErrAllocationConflict) {
			return nil, err
		}
		a.log.Warn().Str("tax_id", key).Int("attempt", attempt+1).Msg("Allocation conflict, retrying")
		lastErr = err
	}
	return nil, fmt.Errorf("dedicated account for %s: %w", key, lastErr)
}
