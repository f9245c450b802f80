package core

import (
	"regexp"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	tierExact    = decimal.RequireFromString("0.10")
	tierClose    = decimal.RequireFromString("1.00")
	tierNear     = decimal.RequireFromString("5.00")
	tierApproxAb = decimal.RequireFromString("20.00")
	tierApproxPc = decimal.RequireFromString("0.05")

	referencePattern = regexp.MustCompile(`[A-Z]{2}[_-]?\d+`)
)

const (
	referenceNumberHit  = 40
	referencePatternHit = 50
	nameWeight          = 20
)

// ScoredCandidate is one invoice with its signal breakdown for a payment.
type ScoredCandidate struct {
	Invoice  Invoice
	Signals  Signals
	Score    float64
	DaysDiff int
	Excluded bool
}

func (c ScoredCandidate) InvoiceID() string { return c.Invoice.Header().ID }

// MatchScorer combines amount, date, reference and name signals into one 0..100 score.
type MatchScorer struct {
	Similarity Similarity
}

func NewMatchScorer(sim Similarity) MatchScorer {
	if sim == nil {
		sim = TokenSimilarity{}
	}
	return MatchScorer{Similarity: sim}
}

// AmountScore grades |payment| - gross. ok is false when the difference exceeds
// max(20.00, 5% of gross); such candidates are never proposed.
func AmountScore(paymentAmount, grossAmount decimal.Decimal) (score float64, ok bool) {
	diff := paymentAmount.Abs().Sub(grossAmount).Abs()
	tolerance := decimal.Max(tierApproxAb, grossAmount.Abs().Mul(tierApproxPc))

	switch {
	case diff.LessThanOrEqual(tierExact):
		return 100, true
	case diff.LessThanOrEqual(tierClose):
		return 80, true
	case diff.LessThanOrEqual(tierNear):
		return 50, true
	case diff.LessThanOrEqual(tolerance):
		return 20, true
	}
	return 0, false
}

func DateScore(days int) float64 {
	switch {
	case days <= 7:
		return 30
	case days <= 30:
		return 15
	case days <= 60:
		return 5
	}
	return 0
}

// ReferenceScore checks the payment reference for the invoice number (40), or
// for an order/reference token such as "RE9981" that matches the invoice number
// or marketplace order reference once separators are removed (50). An order
// reference hit outranks a literal invoice number hit.
func ReferenceScore(referenceText string, h InvoiceHeader) float64 {
	ref := strings.ToUpper(referenceText)
	if ref == "" {
		return 0
	}
	if h.OrderReference != "" && strings.Contains(ref, strings.ToUpper(h.OrderReference)) {
		return referencePatternHit
	}
	numberHit := h.Number != "" && strings.Contains(ref, strings.ToUpper(h.Number))

	for _, tok := range referencePattern.FindAllString(ref, -1) {
		canon := canonicalReference(tok)
		if h.OrderReference != "" && canon == canonicalReference(h.OrderReference) {
			return referencePatternHit
		}
		if !numberHit && h.Number != "" && canon == canonicalReference(h.Number) {
			return referencePatternHit
		}
	}
	if numberHit {
		return referenceNumberHit
	}
	return 0
}

func canonicalReference(s string) string {
	return strings.NewReplacer("-", "", "_", "", " ", "").Replace(strings.ToUpper(s))
}

// Score computes every signal for one (payment, invoice) pair.
func (s MatchScorer) Score(p Payment, inv Invoice) ScoredCandidate {
	h := inv.Header()
	c := ScoredCandidate{Invoice: inv, DaysDiff: daysBetween(p.Date, h.Date)}

	amount, ok := AmountScore(p.Amount, h.GrossAmount)
	if !ok {
		c.Excluded = true
		return c
	}

	c.Signals = Signals{
		AmountScore:    amount,
		DateScore:      DateScore(c.DaysDiff),
		ReferenceScore: ReferenceScore(p.ReferenceText, h),
		NameScore:      s.Similarity.Similarity(p.CounterpartyNameRaw, h.CounterpartyName) * nameWeight,
	}
	c.Score = clamp(c.Signals.AmountScore+c.Signals.DateScore+c.Signals.ReferenceScore+c.Signals.NameScore, 0, 100)
	return c
}

// Rank scores all candidates, drops excluded ones and orders the rest best first.
// Ties go to the higher amount score, then the closer date, then the smaller invoice ID.
func (s MatchScorer) Rank(p Payment, invoices []Invoice) []ScoredCandidate {
	ranked := make([]ScoredCandidate, 0, len(invoices))
	for _, inv := range invoices {
		c := s.Score(p, inv)
		if c.Excluded {
			continue
		}
		ranked = append(ranked, c)
	}
	sort.Slice(ranked, func(i, j int) bool { return betterCandidate(ranked[i], ranked[j]) })
	return ranked
}

func betterCandidate(a, b ScoredCandidate) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	if a.Signals.AmountScore != b.Signals.AmountScore {
		return a.Signals.AmountScore > b.Signals.AmountScore
	}
	if a.DaysDiff != b.DaysDiff {
		return a.DaysDiff < b.DaysDiff
	}
	return a.InvoiceID() < b.InvoiceID()
}
