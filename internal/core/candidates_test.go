package core_test

import (
	"fmt"
	"testing"
	"time"

	"recon-engine/internal/core"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(s string) time.Time {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}
	return t
}

func sales(id, date, gross string) core.SalesInvoice {
	return core.SalesInvoice{InvoiceHeader: core.InvoiceHeader{
		ID: id, Number: id, Date: day(date), GrossAmount: decimal.RequireFromString(gross),
	}}
}

func purchase(id, date, gross string) core.PurchaseInvoice {
	return core.PurchaseInvoice{InvoiceHeader: core.InvoiceHeader{
		ID: id, Number: id, Date: day(date), GrossAmount: decimal.RequireFromString(gross),
	}}
}

func ids(invoices []core.Invoice) []string {
	out := make([]string, len(invoices))
	for i, inv := range invoices {
		out[i] = inv.Header().ID
	}
	return out
}

func TestCandidates_DirectionAndWindow(t *testing.T) {
	g := core.NewCandidateGenerator(0, 0)
	p := core.Payment{ID: "P1", Direction: core.Incoming, Amount: decimal.NewFromInt(100), Date: day("2025-06-30")}

	settled := sales("S-settled", "2025-06-20", "100")
	settled.Settled = true
	invoices := []core.Invoice{
		sales("S-in", "2025-06-01", "100"),
		sales("S-edge-early", "2025-05-01", "100"),
		sales("S-too-early", "2025-04-30", "100"),
		sales("S-edge-late", "2025-08-29", "100"),
		sales("S-too-late", "2025-08-30", "100"),
		core.MarketplaceInvoice{InvoiceHeader: core.InvoiceHeader{ID: "M-in", Date: day("2025-06-29")}, Marketplace: "amazon"},
		purchase("P-wrong-direction", "2025-06-30", "100"),
		settled,
	}

	set := g.Candidates(p, invoices, nil)
	assert.False(t, set.Truncated)
	assert.Equal(t, []string{"S-edge-early", "S-in", "M-in", "S-edge-late"}, ids(set.Invoices))

	out := core.Payment{ID: "P2", Direction: core.Outgoing, Amount: decimal.NewFromInt(100), Date: day("2025-06-30")}
	assert.Equal(t, []string{"P-wrong-direction"}, ids(g.Candidates(out, invoices, nil).Invoices))
}

func TestCandidates_Exclude(t *testing.T) {
	g := core.NewCandidateGenerator(60, 200)
	p := core.Payment{ID: "P1", Direction: core.Incoming, Amount: decimal.NewFromInt(100), Date: day("2025-06-30")}
	invoices := []core.Invoice{sales("A", "2025-06-01", "100"), sales("B", "2025-06-02", "100")}

	set := g.Candidates(p, invoices, map[string]bool{"A": true})
	assert.Equal(t, []string{"B"}, ids(set.Invoices))
}

func TestCandidates_TruncatesOldestFirst(t *testing.T) {
	g := core.NewCandidateGenerator(60, 200)
	p := core.Payment{ID: "P1", Direction: core.Incoming, Amount: decimal.NewFromInt(100), Date: day("2025-06-30")}

	var invoices []core.Invoice
	for i := 0; i < 230; i++ {
		date := day("2025-05-01").AddDate(0, 0, i/4).Format(time.DateOnly)
		invoices = append(invoices, sales(fmt.Sprintf("INV-%03d", i), date, "100"))
	}

	set := g.Candidates(p, invoices, nil)
	require.True(t, set.Truncated)
	require.Len(t, set.Invoices, 200)
	assert.Equal(t, "INV-030", set.Invoices[0].Header().ID)
	assert.Equal(t, "INV-229", set.Invoices[199].Header().ID)

	exact := core.NewCandidateGenerator(60, 230)
	assert.False(t, exact.Candidates(p, invoices, nil).Truncated)
}
