package core

import (
	"sort"
	"time"
)

const (
	DefaultDateWindowDays = 60
	DefaultMaxCandidates  = 200
)

// CandidateSet is the bounded list of invoices a payment is scored against.
type CandidateSet struct {
	Invoices  []Invoice
	Truncated bool
}

// CandidateGenerator narrows the open invoices down to those a payment could settle.
type CandidateGenerator struct {
	WindowDays    int
	MaxCandidates int
}

func NewCandidateGenerator(windowDays, maxCandidates int) CandidateGenerator {
	if windowDays <= 0 {
		windowDays = DefaultDateWindowDays
	}
	if maxCandidates <= 0 {
		maxCandidates = DefaultMaxCandidates
	}
	return CandidateGenerator{WindowDays: windowDays, MaxCandidates: maxCandidates}
}

// Window returns the invoice date range searched for a payment dated on.
func (g CandidateGenerator) Window(on time.Time) DateRange {
	d := dateOnly(on)
	return DateRange{
		From: d.AddDate(0, 0, -g.WindowDays),
		To:   d.AddDate(0, 0, g.WindowDays),
	}
}

// Candidates filters invoices by class, settlement state and date window, then
// caps the result. When over the cap the oldest invoices are dropped first.
// The returned order is date ascending, then invoice ID.
func (g CandidateGenerator) Candidates(p Payment, invoices []Invoice, exclude map[string]bool) CandidateSet {
	window := g.Window(p.Date)

	var out []Invoice
	for _, inv := range invoices {
		h := inv.Header()
		if DirectionFor(inv.Kind()) != p.Direction || h.Settled || exclude[h.ID] {
			continue
		}
		if !window.Contains(dateOnly(h.Date)) {
			continue
		}
		out = append(out, inv)
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].Header(), out[j].Header()
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		return a.ID < b.ID
	})

	set := CandidateSet{Invoices: out}
	if len(out) > g.MaxCandidates {
		set.Invoices = out[len(out)-g.MaxCandidates:]
		set.Truncated = true
	}
	return set
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// daysBetween counts calendar days, ignoring time of day and zone offsets.
func daysBetween(a, b time.Time) int {
	diff := dateOnly(a).Sub(dateOnly(b)).Hours() / 24
	if diff < 0 {
		diff = -diff
	}
	return int(diff + 0.5)
}
