package core

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultAutoMatchThreshold = 70
	DefaultSuggestThreshold   = 40
	DefaultPreviewLimit       = 50
)

// Thresholds split combined scores into outcomes. Both bounds are inclusive.
type Thresholds struct {
	AutoMatch float64
	Suggest   float64
}

// Classify maps a top candidate score to an outcome. Scores in the review band
// come back with ErrAmbiguousMatch so callers route them to the queue.
func (t Thresholds) Classify(score float64, hasCandidate bool) (Outcome, error) {
	switch {
	case !hasCandidate:
		return OutcomeRejected, nil
	case score >= t.AutoMatch:
		return OutcomeAutoMatched, nil
	case score >= t.Suggest:
		return OutcomeSuggested, ErrAmbiguousMatch
	}
	return OutcomeRejected, nil
}

type ReconcilerConfig struct {
	Thresholds    Thresholds
	WindowDays    int
	MaxCandidates int
	Workers       int
	PreviewLimit  int
	Similarity    Similarity
}

// ReconcileFilter selects the payments of one batch run.
type ReconcileFilter struct {
	Direction  Direction // empty means both directions
	Dates      DateRange
	PaymentIDs []string // when set, only these payments are evaluated, matched or not
	Force      bool
}

// Summary is the batch result: counts plus a bounded preview of decisions.
type Summary struct {
	RunID       string          `json:"run_id"`
	Checked     int             `json:"checked"`
	AutoMatched int             `json:"auto_matched"`
	Suggested   int             `json:"suggested"`
	Rejected    int             `json:"rejected"`
	Skipped     int             `json:"skipped"`
	Errors      []ItemError     `json:"errors"`
	Preview     []MatchDecision `json:"preview"`
}

// Reconciler is the match decision engine. It is stateless between runs and
// safe to run concurrently with itself; the store serializes per-payment writes.
type Reconciler struct {
	source    Source
	store     DecisionStore
	generator CandidateGenerator
	scorer    MatchScorer
	cfg       ReconcilerConfig
	log       zerolog.Logger
	now       func() time.Time
}

func NewReconciler(source Source, store DecisionStore, cfg ReconcilerConfig, log zerolog.Logger) *Reconciler {
	if cfg.Thresholds == (Thresholds{}) {
		cfg.Thresholds = Thresholds{AutoMatch: DefaultAutoMatchThreshold, Suggest: DefaultSuggestThreshold}
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.PreviewLimit <= 0 {
		cfg.PreviewLimit = DefaultPreviewLimit
	}
	return &Reconciler{
		source:    source,
		store:     store,
		generator: NewCandidateGenerator(cfg.WindowDays, cfg.MaxCandidates),
		scorer:    NewMatchScorer(cfg.Similarity),
		cfg:       cfg,
		log:       log,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// WithClock replaces the decision timestamp source.
func (r *Reconciler) WithClock(now func() time.Time) *Reconciler {
	r.now = now
	return r
}

type itemResult struct {
	paymentID string
	decision  MatchDecision
	skipped   bool
	err       error
}

// RunReconciliation evaluates every selected payment. A failing payment is
// recorded in the summary and never stops the batch; only failures to load the
// batch itself are returned as an error.
func (r *Reconciler) RunReconciliation(ctx context.Context, filter ReconcileFilter) (*Summary, error) {
	runID := uuid.NewString()
	log := r.log.With().Str("run_id", runID).Logger()

	directions := []Direction{Incoming, Outgoing}
	if filter.Direction != "" {
		directions = []Direction{filter.Direction}
	}

	var results []itemResult
	for _, dir := range directions {
		payments, err := r.loadPayments(ctx, dir, filter)
		if err != nil {
			return nil, err
		}
		if len(payments) == 0 {
			continue
		}

		invoices, err := r.source.ListCandidateInvoices(ctx, dir, r.invoiceRange(payments))
		if err != nil {
			return nil, fmt.Errorf("list candidate invoices (%s): %w", dir, err)
		}

		log.Info().Str("direction", string(dir)).Int("payments", len(payments)).Int("invoices", len(invoices)).Msg("Reconciling batch")

		batch, err := r.processAll(ctx, payments, invoices, filter.Force)
		if err != nil {
			return nil, err
		}
		results = append(results, batch...)
	}

	summary := r.summarize(runID, results)
	log.Info().
		Int("checked", summary.Checked).
		Int("auto_matched", summary.AutoMatched).
		Int("suggested", summary.Suggested).
		Int("rejected", summary.Rejected).
		Int("skipped", summary.Skipped).
		Int("errors", len(summary.Errors)).
		Msg("Reconciliation finished")
	return summary, nil
}

func (r *Reconciler) loadPayments(ctx context.Context, dir Direction, filter ReconcileFilter) ([]Payment, error) {
	if len(filter.PaymentIDs) == 0 {
		payments, err := r.source.ListUnmatchedPayments(ctx, dir, filter.Dates)
		if err != nil {
			return nil, fmt.Errorf("list unmatched payments (%s): %w", dir, err)
		}
		return payments, nil
	}

	all, err := r.source.GetPayments(ctx, filter.PaymentIDs)
	if err != nil {
		return nil, fmt.Errorf("get payments: %w", err)
	}
	var out []Payment
	for _, p := range all {
		if p.Direction == dir {
			out = append(out, p)
		}
	}
	return out, nil
}

// invoiceRange covers the candidate window of every payment in the batch.
func (r *Reconciler) invoiceRange(payments []Payment) DateRange {
	var rng DateRange
	for _, p := range payments {
		if p.Date.IsZero() {
			continue
		}
		w := r.generator.Window(p.Date)
		if rng.From.IsZero() || w.From.Before(rng.From) {
			rng.From = w.From
		}
		if rng.To.IsZero() || w.To.After(rng.To) {
			rng.To = w.To
		}
	}
	return rng
}

// plannedPayment is a payment evaluated against the batch but not yet persisted.
type plannedPayment struct {
	payment  Payment
	pool     []Invoice
	exclude  map[string]bool
	existing *MatchDecision
	decision MatchDecision
	result   itemResult
	final    bool
}

func (r *Reconciler) processAll(ctx context.Context, payments []Payment, invoices []Invoice, force bool) ([]itemResult, error) {
	plans := make([]*plannedPayment, len(payments))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.cfg.Workers)
	for i, p := range payments {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			plans[i] = r.plan(gctx, p, invoices, force)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("reconciliation aborted: %w", err)
	}

	r.settleContested(plans)

	g, gctx = errgroup.WithContext(ctx)
	g.SetLimit(r.cfg.Workers)
	for _, pl := range plans {
		if pl.final {
			continue
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			r.persist(gctx, pl, force)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("reconciliation aborted: %w", err)
	}

	results := make([]itemResult, len(plans))
	for i, pl := range plans {
		results[i] = pl.result
	}
	return results, nil
}

func (r *Reconciler) plan(ctx context.Context, p Payment, invoices []Invoice, force bool) *plannedPayment {
	pl := &plannedPayment{payment: p, result: itemResult{paymentID: p.ID}}
	log := r.log.With().Str("payment_id", p.ID).Logger()

	if err := p.Validate(); err != nil {
		log.Warn().Err(err).Msg("Skipping malformed payment")
		pl.result.err = err
		pl.final = true
		return pl
	}

	existing, err := r.store.GetDecision(ctx, p.ID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		pl.result.err = fmt.Errorf("load decision: %w", err)
		pl.final = true
		return pl
	}
	if existing != nil && existing.Outcome == OutcomeAutoMatched && !force {
		log.Debug().Str("invoice_id", existing.InvoiceID).Msg("Already matched")
		pl.result.decision = *existing
		pl.result.skipped = true
		pl.final = true
		return pl
	}
	pl.existing = existing

	rejected, err := r.store.RejectedCandidates(ctx, p.ID)
	if err != nil {
		pl.result.err = fmt.Errorf("load rejected candidates: %w", err)
		pl.final = true
		return pl
	}
	pl.exclude = make(map[string]bool, len(rejected))
	for id := range rejected {
		pl.exclude[id] = true
	}

	// A forced re-evaluation competes the payment's own invoice against the open ones.
	pl.pool = invoices
	if existing != nil && existing.Outcome == OutcomeAutoMatched && existing.InvoiceID != "" {
		own, err := r.source.GetInvoices(ctx, []string{existing.InvoiceID})
		if err != nil {
			pl.result.err = fmt.Errorf("load matched invoice: %w", err)
			pl.final = true
			return pl
		}
		pl.pool = make([]Invoice, 0, len(invoices)+len(own))
		pl.pool = append(pl.pool, invoices...)
		for _, inv := range own {
			pl.pool = append(pl.pool, reopened(inv))
		}
	}

	pl.decision = r.Decide(p, pl.pool, pl.exclude)
	return pl
}

// settleContested leaves every invoice with at most one auto-matching payment in
// the batch. The higher score wins, then the lower payment ID; the others are
// decided again without that invoice until no invoice is claimed twice.
func (r *Reconciler) settleContested(plans []*plannedPayment) {
	for {
		claims := make(map[string][]*plannedPayment)
		for _, pl := range plans {
			if pl.final || pl.decision.Outcome != OutcomeAutoMatched {
				continue
			}
			claims[pl.decision.InvoiceID] = append(claims[pl.decision.InvoiceID], pl)
		}

		contested := false
		for invoiceID, claimants := range claims {
			if len(claimants) < 2 {
				continue
			}
			contested = true
			sort.Slice(claimants, func(i, j int) bool {
				a, b := claimants[i], claimants[j]
				if a.decision.Score != b.decision.Score {
					return a.decision.Score > b.decision.Score
				}
				return a.payment.ID < b.payment.ID
			})
			for _, lost := range claimants[1:] {
				r.log.Debug().Str("payment_id", lost.payment.ID).Str("invoice_id", invoiceID).
					Str("winner", claimants[0].payment.ID).Msg("Invoice claimed by another payment")
				lost.exclude[invoiceID] = true
				lost.decision = r.Decide(lost.payment, lost.pool, lost.exclude)
			}
		}
		if !contested {
			return
		}
	}
}

func (r *Reconciler) persist(ctx context.Context, pl *plannedPayment, force bool) {
	log := r.log.With().Str("payment_id", pl.payment.ID).Logger()

	d := pl.decision
	applied, err := r.store.SaveDecision(ctx, d, force)
	if errors.Is(err, ErrInvoiceSettled) {
		// Settled by a concurrent run since the batch was loaded.
		log.Warn().Str("invoice_id", d.InvoiceID).Msg("Invoice settled meanwhile, deciding again")
		pl.exclude[d.InvoiceID] = true
		d = r.Decide(pl.payment, pl.pool, pl.exclude)
		applied, err = r.store.SaveDecision(ctx, d, force)
	}
	if err != nil {
		log.Error().Err(err).Str("invoice_id", d.InvoiceID).Msg("Failed to persist decision")
		pl.result.err = err
		return
	}
	if !applied && pl.existing != nil && pl.existing.SameAs(d) {
		d = *pl.existing
	}

	log.Debug().Str("invoice_id", d.InvoiceID).Str("outcome", string(d.Outcome)).Float64("score", d.Score).Bool("written", applied).Msg("Payment decided")
	pl.result.decision = d
}

// Decide ranks the payment's candidates and classifies the best one. It does no I/O.
func (r *Reconciler) Decide(p Payment, invoices []Invoice, exclude map[string]bool) MatchDecision {
	set := r.generator.Candidates(p, invoices, exclude)
	ranked := r.scorer.Rank(p, set.Invoices)

	d := MatchDecision{
		PaymentID:             p.ID,
		Method:                MethodAuto,
		TruncatedCandidateSet: set.Truncated,
		DecidedAt:             r.now(),
	}
	if len(ranked) == 0 {
		d.Outcome = OutcomeRejected
		return d
	}

	top := ranked[0]
	outcome, err := r.cfg.Thresholds.Classify(top.Score, true)
	if errors.Is(err, ErrAmbiguousMatch) {
		outcome = OutcomeSuggested
	}
	d.InvoiceID = top.InvoiceID()
	d.Score = top.Score
	d.Signals = top.Signals
	d.Outcome = outcome
	return d
}

func (r *Reconciler) summarize(runID string, results []itemResult) *Summary {
	sort.Slice(results, func(i, j int) bool { return results[i].paymentID < results[j].paymentID })

	s := &Summary{RunID: runID, Errors: []ItemError{}, Preview: []MatchDecision{}}
	for _, res := range results {
		s.Checked++
		switch {
		case res.err != nil:
			s.Errors = append(s.Errors, newItemError(res.paymentID, res.err))
			continue
		case res.skipped:
			s.Skipped++
			continue
		}
		switch res.decision.Outcome {
		case OutcomeAutoMatched:
			s.AutoMatched++
		case OutcomeSuggested:
			s.Suggested++
		case OutcomeRejected:
			s.Rejected++
		}
		if len(s.Preview) < r.cfg.PreviewLimit {
			s.Preview = append(s.Preview, res.decision)
		}
	}
	return s
}

// ApproveSuggestion turns a pending suggestion into an auto_matched decision.
// It is the only path that matches a payment below the auto-match threshold.
func (r *Reconciler) ApproveSuggestion(ctx context.Context, id string) (*MatchDecision, error) {
	return r.resolve(ctx, id, SuggestionApproved, OutcomeAutoMatched)
}

// RejectSuggestion discards a pending suggestion. The candidate is excluded from
// later runs for that payment.
func (r *Reconciler) RejectSuggestion(ctx context.Context, id string) (*MatchDecision, error) {
	return r.resolve(ctx, id, SuggestionRejected, OutcomeRejected)
}

func (r *Reconciler) resolve(ctx context.Context, id string, status SuggestionStatus, outcome Outcome) (*MatchDecision, error) {
	s, err := r.store.GetSuggestion(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("suggestion %s: %w", id, err)
	}
	if s.Status != SuggestionPending {
		return nil, fmt.Errorf("suggestion %s is %s: %w", id, s.Status, ErrSuggestionNotPending)
	}

	d := MatchDecision{
		PaymentID: s.PaymentID,
		InvoiceID: s.CandidateID,
		Score:     s.Score,
		Outcome:   outcome,
		Method:    MethodManualApproval,
		DecidedAt: r.now(),
	}
	prev, err := r.store.GetDecision(ctx, s.PaymentID)
	switch {
	case err == nil && prev.InvoiceID == s.CandidateID:
		d.Signals = prev.Signals
		d.TruncatedCandidateSet = prev.TruncatedCandidateSet
	case err != nil && !errors.Is(err, ErrNotFound):
		return nil, fmt.Errorf("load decision for payment %s: %w", s.PaymentID, err)
	}

	if _, err := r.store.ResolveSuggestion(ctx, id, status, d); err != nil {
		return nil, fmt.Errorf("resolve suggestion %s: %w", id, err)
	}

	r.log.Info().Str("suggestion_id", id).Str("payment_id", s.PaymentID).Str("invoice_id", s.CandidateID).Str("status", string(status)).Msg("Suggestion resolved")
	return &d, nil
}

func (r *Reconciler) ListSuggestions(ctx context.Context, status SuggestionStatus) ([]Suggestion, error) {
	return r.store.ListSuggestions(ctx, status)
}
