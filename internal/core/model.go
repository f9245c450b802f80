package core

import (
	"time"

	"github.com/shopspring/decimal"
)

type Direction string

const (
	Incoming Direction = "incoming"
	Outgoing Direction = "outgoing"
)

// DirectionOf derives the payment direction from the sign of the originating amount.
// Credits are incoming, debits are outgoing.
func DirectionOf(signedAmount decimal.Decimal) Direction {
	if signedAmount.IsNegative() {
		return Outgoing
	}
	return Incoming
}

type MatchStatus string

const (
	MatchStatusOpen      MatchStatus = "open"
	MatchStatusMatched   MatchStatus = "matched"
	MatchStatusSuggested MatchStatus = "suggested"
)

// Payment is a bank transfer or marketplace settlement line. Amount is always positive;
// the sign of the source record is carried by Direction.
type Payment struct {
	ID                  string          `json:"id"`
	Direction           Direction       `json:"direction"`
	Amount              decimal.Decimal `json:"amount"`
	Date                time.Time       `json:"date"`
	CounterpartyNameRaw string          `json:"counterparty_name_raw"`
	ReferenceText       string          `json:"reference_text"`
	SourceChannel       string          `json:"source_channel"`
	MatchedInvoiceID    *string         `json:"matched_invoice_id,omitempty"`
	MatchStatus         MatchStatus     `json:"match_status"`
}

// Validate rejects records the engine cannot score.
func (p Payment) Validate() error {
	if p.ID == "" {
		return &ValidationError{Kind: "payment", Field: "id", Message: "must not be empty"}
	}
	if p.Direction != Incoming && p.Direction != Outgoing {
		return &ValidationError{Kind: "payment", ID: p.ID, Field: "direction", Message: "must be incoming or outgoing, got " + string(p.Direction)}
	}
	if !p.Amount.IsPositive() {
		return &ValidationError{Kind: "payment", ID: p.ID, Field: "amount", Message: "must be > 0, got " + p.Amount.String()}
	}
	if p.Date.IsZero() {
		return &ValidationError{Kind: "payment", ID: p.ID, Field: "date", Message: "must be set"}
	}
	return nil
}

type InvoiceKind string

const (
	KindSales       InvoiceKind = "sales"
	KindPurchase    InvoiceKind = "purchase"
	KindMarketplace InvoiceKind = "marketplace"
)

// InvoiceHeader holds the fields every invoice class shares.
type InvoiceHeader struct {
	ID                 string          `json:"id"`
	Number             string          `json:"number"`
	Date               time.Time       `json:"date"`
	GrossAmount        decimal.Decimal `json:"gross_amount"`
	VATAmount          decimal.Decimal `json:"vat_amount"`
	CounterpartyName   string          `json:"counterparty_name"`
	TaxCountryCode     string          `json:"tax_country_code"`
	CounterpartyTaxID  string          `json:"counterparty_tax_id"`
	PaymentMethodLabel string          `json:"payment_method_label"`
	OrderReference     string          `json:"order_reference,omitempty"`
	Settled            bool            `json:"settled"`
}

func (h InvoiceHeader) Header() InvoiceHeader { return h }

// Invoice is implemented by SalesInvoice, PurchaseInvoice and MarketplaceInvoice.
type Invoice interface {
	Header() InvoiceHeader
	Kind() InvoiceKind
}

type SalesInvoice struct {
	InvoiceHeader
	DebtorAccount *int `json:"debtor_account,omitempty"`
}

func (SalesInvoice) Kind() InvoiceKind { return KindSales }

type PurchaseInvoice struct {
	InvoiceHeader
	CreditorAccount *int `json:"creditor_account,omitempty"`
}

func (PurchaseInvoice) Kind() InvoiceKind { return KindPurchase }

// MarketplaceInvoice is an invoice issued through Amazon, eBay and similar channels.
type MarketplaceInvoice struct {
	InvoiceHeader
	Marketplace string `json:"marketplace"`
}

func (MarketplaceInvoice) Kind() InvoiceKind { return KindMarketplace }

// reopened returns a copy of inv with the settled flag cleared.
func reopened(inv Invoice) Invoice {
	switch v := inv.(type) {
	case SalesInvoice:
		v.Settled = false
		return v
	case PurchaseInvoice:
		v.Settled = false
		return v
	case MarketplaceInvoice:
		v.Settled = false
		return v
	}
	return inv
}

// DirectionFor reports which payment direction settles an invoice of the given kind.
func DirectionFor(kind InvoiceKind) Direction {
	if kind == KindPurchase {
		return Outgoing
	}
	return Incoming
}

type Outcome string

const (
	OutcomeAutoMatched Outcome = "auto_matched"
	OutcomeSuggested   Outcome = "suggested"
	OutcomeRejected    Outcome = "rejected"
)

type MatchMethod string

const (
	MethodAuto           MatchMethod = "auto"
	MethodManualApproval MatchMethod = "manual_approval"
)

type Signals struct {
	AmountScore    float64 `json:"amount_score"`
	DateScore      float64 `json:"date_score"`
	ReferenceScore float64 `json:"reference_score"`
	NameScore      float64 `json:"name_score"`
}

// MatchDecision is the single persisted outcome for a payment.
// InvoiceID is empty when the payment was rejected without any candidate.
type MatchDecision struct {
	PaymentID             string      `json:"payment_id"`
	InvoiceID             string      `json:"invoice_id,omitempty"`
	Score                 float64     `json:"score"`
	Signals               Signals     `json:"signals"`
	Outcome               Outcome     `json:"outcome"`
	Method                MatchMethod `json:"method"`
	TruncatedCandidateSet bool        `json:"truncated_candidate_set"`
	DecidedAt             time.Time   `json:"decided_at"`
}

// SameAs compares everything except the decision timestamp.
func (d MatchDecision) SameAs(other MatchDecision) bool {
	return d.PaymentID == other.PaymentID &&
		d.InvoiceID == other.InvoiceID &&
		d.Score == other.Score &&
		d.Signals == other.Signals &&
		d.Outcome == other.Outcome &&
		d.Method == other.Method &&
		d.TruncatedCandidateSet == other.TruncatedCandidateSet
}

type ReasonCode string

const (
	ReasonIntraEUReverseCharge ReasonCode = "intra_eu_reverse_charge"
	ReasonCollective           ReasonCode = "collective_by_payment_method"
	ReasonFallback             ReasonCode = "fallback"
)

type AccountAssignment struct {
	InvoiceID     string     `json:"invoice_id"`
	AccountNumber int        `json:"account_number"`
	ReasonCode    ReasonCode `json:"reason_code"`
	DecidedAt     time.Time  `json:"decided_at"`
}

// DedicatedAccount is one row of the append-only taxId -> account allocation table.
type DedicatedAccount struct {
	TaxID         string    `json:"tax_id"`
	AccountNumber int       `json:"account_number"`
	CreatedAt     time.Time `json:"created_at"`
}

// CreditorAlias is a creditor registry entry. Aliases only ever grow.
type CreditorAlias struct {
	CreditorAccount int      `json:"creditor_account"`
	CanonicalName   string   `json:"canonical_name"`
	KnownAliases    []string `json:"known_aliases"`
}

type SuggestionStatus string

const (
	SuggestionPending  SuggestionStatus = "pending"
	SuggestionApproved SuggestionStatus = "approved"
	SuggestionRejected SuggestionStatus = "rejected"
)

// Suggestion is a review queue entry for a mid-confidence match.
type Suggestion struct {
	ID          string           `json:"id"`
	PaymentID   string           `json:"payment_id"`
	CandidateID string           `json:"candidate_id"`
	Score       float64          `json:"score"`
	Status      SuggestionStatus `json:"status"`
	CreatedAt   time.Time        `json:"created_at"`
	ResolvedAt  *time.Time       `json:"resolved_at,omitempty"`
}

// DateRange is inclusive on both ends. Zero values are unbounded.
type DateRange struct {
	From time.Time
	To   time.Time
}

func (r DateRange) Contains(t time.Time) bool {
	if !r.From.IsZero() && t.Before(r.From) {
		return false
	}
	if !r.To.IsZero() && t.After(r.To) {
		return false
	}
	return true
}
