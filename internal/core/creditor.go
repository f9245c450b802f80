package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
)

const DefaultCreditorThreshold = 0.6

type CreditorStatus string

const (
	CreditorAutoAssigned  CreditorStatus = "auto_assigned"
	CreditorManual        CreditorStatus = "manually_assigned"
	CreditorQueued        CreditorStatus = "queued"
	CreditorAlreadyLinked CreditorStatus = "already_assigned"
)

type CreditorResult struct {
	InvoiceID       string         `json:"invoice_id"`
	Status          CreditorStatus `json:"status"`
	CreditorAccount *int           `json:"creditor_account,omitempty"`
	Score           float64        `json:"score"`
	MatchedName     string         `json:"matched_name,omitempty"`
}

type CreditorSummary struct {
	Checked      int         `json:"checked"`
	AutoAssigned int         `json:"auto_assigned"`
	Queued       []string    `json:"queued"`
	Errors       []ItemError `json:"errors"`
}

// CreditorMatch is the best registry entry for a supplier name.
type CreditorMatch struct {
	Creditor    CreditorAlias
	Score       float64
	MatchedName string
}

// BestCreditor compares name against every canonical name and alias and keeps
// the highest score. Equal scores go to the lower account number.
func BestCreditor(sim Similarity, name string, registry []CreditorAlias) (CreditorMatch, bool) {
	var best CreditorMatch
	found := false
	for _, c := range registry {
		candidates := append([]string{c.CanonicalName}, c.KnownAliases...)
		for _, n := range candidates {
			score := sim.Similarity(name, n)
			if !found || score > best.Score || (score == best.Score && c.CreditorAccount < best.Creditor.CreditorAccount) {
				best = CreditorMatch{Creditor: c, Score: score, MatchedName: n}
				found = true
			}
		}
	}
	return best, found
}

// CreditorResolver links purchase invoices to the creditor registry by supplier name.
type CreditorResolver struct {
	source    Source
	store     CreditorStore
	sim       Similarity
	threshold float64
	log       zerolog.Logger
}

func NewCreditorResolver(source Source, store CreditorStore, sim Similarity, threshold float64, log zerolog.Logger) *CreditorResolver {
	if sim == nil {
		sim = TokenSimilarity{}
	}
	if threshold <= 0 {
		threshold = DefaultCreditorThreshold
	}
	return &CreditorResolver{source: source, store: store, sim: sim, threshold: threshold, log: log}
}

// ResolveCreditor auto-assigns a purchase invoice's creditor when the best name
// match clears the threshold. With creditorAccount set, the reviewer's choice is
// stored and the invoice's supplier name is learned as an alias.
func (r *CreditorResolver) ResolveCreditor(ctx context.Context, invoiceID string, creditorAccount *int) (*CreditorResult, error) {
	invoices, err := r.source.ListPurchaseInvoices(ctx, []string{invoiceID})
	if err != nil {
		return nil, fmt.Errorf("load purchase invoice %s: %w", invoiceID, err)
	}
	if len(invoices) == 0 {
		return nil, fmt.Errorf("purchase invoice %s: %w", invoiceID, ErrNotFound)
	}
	registry, err := r.source.GetCreditorRegistry(ctx)
	if err != nil {
		return nil, fmt.Errorf("load creditor registry: %w", err)
	}

	inv := invoices[0]
	if creditorAccount != nil {
		return r.assignManually(ctx, inv, *creditorAccount, registry)
	}
	return r.resolve(ctx, inv, registry)
}

// ResolveAll runs the resolver over every purchase invoice without a creditor.
func (r *CreditorResolver) ResolveAll(ctx context.Context) (*CreditorSummary, error) {
	invoices, err := r.source.ListPurchaseInvoices(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("list purchase invoices: %w", err)
	}
	registry, err := r.source.GetCreditorRegistry(ctx)
	if err != nil {
		return nil, fmt.Errorf("load creditor registry: %w", err)
	}

	s := &CreditorSummary{Queued: []string{}, Errors: []ItemError{}}
	for _, inv := range invoices {
		s.Checked++
		res, err := r.resolve(ctx, inv, registry)
		if err != nil {
			s.Errors = append(s.Errors, newItemError(inv.ID, err))
			continue
		}
		switch res.Status {
		case CreditorAutoAssigned:
			s.AutoAssigned++
		case CreditorQueued:
			s.Queued = append(s.Queued, inv.ID)
		}
	}
	r.log.Info().Int("checked", s.Checked).Int("auto_assigned", s.AutoAssigned).Int("queued", len(s.Queued)).Int("errors", len(s.Errors)).Msg("Creditor resolution finished")
	return s, nil
}

// match returns the best registry entry, or a *RegistryMissError when nothing clears the threshold.
func (r *CreditorResolver) match(inv PurchaseInvoice, registry []CreditorAlias) (CreditorMatch, error) {
	best, found := BestCreditor(r.sim, inv.CounterpartyName, registry)
	if !found || best.Score < r.threshold {
		return best, &RegistryMissError{InvoiceID: inv.ID, BestScore: best.Score}
	}
	return best, nil
}

func (r *CreditorResolver) resolve(ctx context.Context, inv PurchaseInvoice, registry []CreditorAlias) (*CreditorResult, error) {
	res := &CreditorResult{InvoiceID: inv.ID}
	if inv.CreditorAccount != nil {
		res.Status = CreditorAlreadyLinked
		res.CreditorAccount = inv.CreditorAccount
		return res, nil
	}

	match, err := r.match(inv, registry)
	res.Score = match.Score
	var miss *RegistryMissError
	if errors.As(err, &miss) {
		r.log.Debug().Str("invoice_id", inv.ID).Str("supplier", inv.CounterpartyName).Msg(miss.Error())
		if err := r.store.QueueCreditorLookup(ctx, inv.ID, miss.BestScore); err != nil {
			return nil, fmt.Errorf("queue creditor lookup: %w", err)
		}
		res.Status = CreditorQueued
		return res, nil
	}

	account := match.Creditor.CreditorAccount
	if err := r.store.AssignCreditor(ctx, inv.ID, account, match.Score, string(MethodAuto)); err != nil {
		return nil, fmt.Errorf("assign creditor: %w", err)
	}
	r.log.Info().Str("invoice_id", inv.ID).Int("creditor", account).Float64("score", match.Score).Msg("Creditor assigned")
	res.Status = CreditorAutoAssigned
	res.CreditorAccount = &account
	res.MatchedName = match.MatchedName
	return res, nil
}

func (r *CreditorResolver) assignManually(ctx context.Context, inv PurchaseInvoice, account int, registry []CreditorAlias) (*CreditorResult, error) {
	var creditor *CreditorAlias
	for i := range registry {
		if registry[i].CreditorAccount == account {
			creditor = &registry[i]
			break
		}
	}
	if creditor == nil {
		return nil, fmt.Errorf("creditor %d: %w", account, ErrNotFound)
	}

	score := r.sim.Similarity(inv.CounterpartyName, creditor.CanonicalName)
	if err := r.store.AssignCreditor(ctx, inv.ID, account, score, string(MethodManualApproval)); err != nil {
		return nil, fmt.Errorf("assign creditor: %w", err)
	}
	if inv.CounterpartyName != "" {
		if err := r.store.AppendAlias(ctx, account, inv.CounterpartyName); err != nil {
			return nil, fmt.Errorf("append alias: %w", err)
		}
	}

	r.log.Info().Str("invoice_id", inv.ID).Int("creditor", account).Str("alias", inv.CounterpartyName).Msg("Creditor assigned manually")
	return &CreditorResult{
		InvoiceID:       inv.ID,
		Status:          CreditorManual,
		CreditorAccount: &account,
		Score:           score,
		MatchedName:     creditor.CanonicalName,
	}, nil
}
