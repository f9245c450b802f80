package core_test

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"recon-engine/internal/core"
)

// memStore is an in-memory Source and Store with the same write semantics as
// the PostgreSQL store, guarded by one mutex.
type memStore struct {
	mu sync.Mutex

	payments    map[string]*core.Payment
	invoices    map[string]core.Invoice
	decisions   map[string]core.MatchDecision
	suggestions map[string]*core.Suggestion
	nextSugg    int

	collective  map[string]int
	assignments map[string]core.AccountAssignment
	dedicated   map[string]core.DedicatedAccount
	counters    map[int]int
	flagged     map[string]string

	registry map[int]*core.CreditorAlias
	creditor map[string]int
	queued   map[string]float64

	saveCalls int
}

func newMemStore() *memStore {
	return &memStore{
		payments:    map[string]*core.Payment{},
		invoices:    map[string]core.Invoice{},
		decisions:   map[string]core.MatchDecision{},
		suggestions: map[string]*core.Suggestion{},
		collective:  map[string]int{},
		assignments: map[string]core.AccountAssignment{},
		dedicated:   map[string]core.DedicatedAccount{},
		counters:    map[int]int{},
		flagged:     map[string]string{},
		registry:    map[int]*core.CreditorAlias{},
		creditor:    map[string]int{},
		queued:      map[string]float64{},
	}
}

func (m *memStore) addPayment(p core.Payment) {
	if p.MatchStatus == "" {
		p.MatchStatus = core.MatchStatusOpen
	}
	m.payments[p.ID] = &p
}

func (m *memStore) addInvoice(inv core.Invoice) { m.invoices[inv.Header().ID] = inv }

func (m *memStore) ListUnmatchedPayments(_ context.Context, direction core.Direction, dates core.DateRange) ([]core.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []core.Payment
	for _, p := range m.payments {
		if p.MatchStatus == core.MatchStatusMatched {
			continue
		}
		if direction != "" && p.Direction != direction {
			continue
		}
		if !dates.Contains(p.Date) {
			continue
		}
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memStore) GetPayments(_ context.Context, ids []string) ([]core.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []core.Payment
	for _, id := range ids {
		if p, ok := m.payments[id]; ok {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (m *memStore) invoiceWithSettled(inv core.Invoice, settled bool) core.Invoice {
	switch v := inv.(type) {
	case core.SalesInvoice:
		v.Settled = settled
		return v
	case core.PurchaseInvoice:
		v.Settled = settled
		return v
	case core.MarketplaceInvoice:
		v.Settled = settled
		return v
	}
	return inv
}

func (m *memStore) ListCandidateInvoices(_ context.Context, direction core.Direction, dates core.DateRange) ([]core.Invoice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []core.Invoice
	for _, inv := range m.invoices {
		h := inv.Header()
		if h.Settled || core.DirectionFor(inv.Kind()) != direction || !dates.Contains(h.Date) {
			continue
		}
		out = append(out, inv)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Header().ID < out[j].Header().ID })
	return out, nil
}

func (m *memStore) GetInvoices(_ context.Context, ids []string) ([]core.Invoice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []core.Invoice
	for _, id := range ids {
		if inv, ok := m.invoices[id]; ok {
			out = append(out, inv)
		}
	}
	return out, nil
}

func (m *memStore) ListSalesInvoices(_ context.Context, ids []string) ([]core.SalesInvoice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []core.SalesInvoice
	for _, inv := range m.invoices {
		s, ok := inv.(core.SalesInvoice)
		if !ok {
			continue
		}
		if len(ids) == 0 && s.DebtorAccount == nil || contains(ids, s.ID) {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memStore) ListPurchaseInvoices(_ context.Context, ids []string) ([]core.PurchaseInvoice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []core.PurchaseInvoice
	for _, inv := range m.invoices {
		p, ok := inv.(core.PurchaseInvoice)
		if !ok {
			continue
		}
		if acct, ok := m.creditor[p.ID]; ok {
			p.CreditorAccount = &acct
		}
		if len(ids) == 0 && p.CreditorAccount == nil || contains(ids, p.ID) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memStore) GetCreditorRegistry(context.Context) ([]core.CreditorAlias, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []core.CreditorAlias
	for _, c := range m.registry {
		cp := *c
		cp.KnownAliases = append([]string(nil), c.KnownAliases...)
		out = append(out, cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreditorAccount < out[j].CreditorAccount })
	return out, nil
}

func (m *memStore) GetPaymentMethodAccountTable(context.Context) (map[string]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]int, len(m.collective))
	for k, v := range m.collective {
		out[k] = v
	}
	return out, nil
}

func (m *memStore) GetMaxAllocatedAccountNumber(_ context.Context, start, end int) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	max := start - 1
	for _, d := range m.dedicated {
		if d.AccountNumber >= start && d.AccountNumber <= end && d.AccountNumber > max {
			max = d.AccountNumber
		}
	}
	return max, nil
}

func (m *memStore) GetDecision(_ context.Context, paymentID string) (*core.MatchDecision, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.decisions[paymentID]
	if !ok {
		return nil, core.ErrNotFound
	}
	return &d, nil
}

func (m *memStore) SaveDecision(_ context.Context, d core.MatchDecision, force bool) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saveCalls++
	return m.saveLocked(d, force)
}

func (m *memStore) saveLocked(d core.MatchDecision, force bool) (bool, error) {
	p, ok := m.payments[d.PaymentID]
	if !ok {
		return false, core.ErrNotFound
	}
	if existing, ok := m.decisions[d.PaymentID]; ok {
		if existing.Outcome == core.OutcomeAutoMatched && !force {
			return false, nil
		}
		if existing.SameAs(d) {
			return false, nil
		}
		if existing.Outcome == core.OutcomeAutoMatched && existing.InvoiceID != "" {
			m.invoices[existing.InvoiceID] = m.invoiceWithSettled(m.invoices[existing.InvoiceID], false)
		}
	}

	switch d.Outcome {
	case core.OutcomeAutoMatched:
		inv, ok := m.invoices[d.InvoiceID]
		if !ok {
			return false, core.ErrNotFound
		}
		if inv.Header().Settled {
			return false, fmt.Errorf("invoice %s: %w", d.InvoiceID, core.ErrInvoiceSettled)
		}
		m.invoices[d.InvoiceID] = m.invoiceWithSettled(inv, true)
		id := d.InvoiceID
		p.MatchedInvoiceID = &id
		p.MatchStatus = core.MatchStatusMatched
		m.dropPending(d.PaymentID, "")
	case core.OutcomeSuggested:
		m.dropPending(d.PaymentID, d.InvoiceID)
		found := false
		for _, s := range m.suggestions {
			if s.PaymentID == d.PaymentID && s.CandidateID == d.InvoiceID {
				if s.Status == core.SuggestionPending {
					s.Score = d.Score
				}
				found = true
			}
		}
		if !found {
			m.nextSugg++
			id := fmt.Sprintf("S%03d", m.nextSugg)
			m.suggestions[id] = &core.Suggestion{ID: id, PaymentID: d.PaymentID, CandidateID: d.InvoiceID, Score: d.Score, Status: core.SuggestionPending, CreatedAt: d.DecidedAt}
		}
		p.MatchStatus = core.MatchStatusSuggested
		p.MatchedInvoiceID = nil
	default:
		m.dropPending(d.PaymentID, "")
		p.MatchStatus = core.MatchStatusOpen
		p.MatchedInvoiceID = nil
	}
	m.decisions[d.PaymentID] = d
	return true, nil
}

func (m *memStore) dropPending(paymentID, keep string) {
	for id, s := range m.suggestions {
		if s.PaymentID == paymentID && s.Status == core.SuggestionPending && s.CandidateID != keep {
			delete(m.suggestions, id)
		}
	}
}

func (m *memStore) RejectedCandidates(_ context.Context, paymentID string) (map[string]bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := map[string]bool{}
	for _, s := range m.suggestions {
		if s.PaymentID == paymentID && s.Status == core.SuggestionRejected {
			out[s.CandidateID] = true
		}
	}
	return out, nil
}

func (m *memStore) GetSuggestion(_ context.Context, id string) (*core.Suggestion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.suggestions[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *memStore) ListSuggestions(_ context.Context, status core.SuggestionStatus) ([]core.Suggestion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []core.Suggestion{}
	for _, s := range m.suggestions {
		if status == "" || s.Status == status {
			out = append(out, *s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memStore) ResolveSuggestion(_ context.Context, id string, status core.SuggestionStatus, d core.MatchDecision) (*core.Suggestion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.suggestions[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	if s.Status != core.SuggestionPending {
		return nil, core.ErrSuggestionNotPending
	}
	prev := *s
	now := d.DecidedAt
	s.Status = status
	s.ResolvedAt = &now
	if _, err := m.saveLocked(d, true); err != nil {
		*s = prev
		return nil, err
	}
	cp := *s
	return &cp, nil
}

func (m *memStore) GetAssignment(_ context.Context, invoiceID string) (*core.AccountAssignment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.assignments[invoiceID]
	if !ok {
		return nil, core.ErrNotFound
	}
	return &a, nil
}

func (m *memStore) LookupDedicatedAccount(_ context.Context, taxID string) (*core.DedicatedAccount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.dedicated[taxID]
	if !ok {
		return nil, core.ErrNotFound
	}
	return &d, nil
}

func (m *memStore) AllocateDedicatedAccount(_ context.Context, taxID string, r core.AccountRange, seed int) (*core.DedicatedAccount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.dedicated[taxID]; ok {
		return nil, &core.AllocationConflict{TaxID: taxID}
	}
	last, ok := m.counters[r.Start]
	if !ok || seed > last {
		last = max(seed, r.Start-1)
	}
	if last >= r.End {
		return nil, core.ErrAccountRangeExhausted
	}
	last++
	m.counters[r.Start] = last
	d := core.DedicatedAccount{TaxID: taxID, AccountNumber: last, CreatedAt: time.Now().UTC()}
	m.dedicated[taxID] = d
	return &d, nil
}

func (m *memStore) SaveAssignment(_ context.Context, a core.AccountAssignment, force bool) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.assignments[a.InvoiceID]; ok && !force {
		return false, nil
	}
	m.assignments[a.InvoiceID] = a
	if s, ok := m.invoices[a.InvoiceID].(core.SalesInvoice); ok {
		n := a.AccountNumber
		s.DebtorAccount = &n
		m.invoices[a.InvoiceID] = s
	}
	delete(m.flagged, a.InvoiceID)
	return true, nil
}

func (m *memStore) FlagForReview(_ context.Context, invoiceID, reason string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.flagged[invoiceID] = reason
	return nil
}

func (m *memStore) AssignCreditor(_ context.Context, invoiceID string, account int, _ float64, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.creditor[invoiceID] = account
	delete(m.queued, invoiceID)
	return nil
}

func (m *memStore) QueueCreditorLookup(_ context.Context, invoiceID string, bestScore float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queued[invoiceID] = bestScore
	return nil
}

func (m *memStore) AppendAlias(_ context.Context, account int, alias string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.registry[account]
	if !ok {
		return core.ErrNotFound
	}
	alias = strings.TrimSpace(alias)
	if alias == "" || alias == c.CanonicalName || contains(c.KnownAliases, alias) {
		return nil
	}
	c.KnownAliases = append(c.KnownAliases, alias)
	return nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
