package core

import "context"

// Source is the read side the engine consumes. Extraction from the ERP, bank and
// marketplace systems happens behind it.
//
//go:generate mockgen -destination=mocks/mock_store.go -package=mocks recon-engine/internal/core Source,DecisionStore
type Source interface {
	// ListUnmatchedPayments returns open payments for a direction. An empty
	// direction returns both.
	ListUnmatchedPayments(ctx context.Context, direction Direction, dates DateRange) ([]Payment, error)

	// GetPayments returns the given payments regardless of match state.
	GetPayments(ctx context.Context, ids []string) ([]Payment, error)

	// ListCandidateInvoices returns unsettled invoices of the classes a payment
	// of the given direction can settle.
	ListCandidateInvoices(ctx context.Context, direction Direction, dates DateRange) ([]Invoice, error)

	// GetInvoices returns the given invoices of any class, settled or not.
	GetInvoices(ctx context.Context, ids []string) ([]Invoice, error)

	// ListSalesInvoices returns the given sales invoices, or every sales invoice
	// without a debtor account when ids is empty.
	ListSalesInvoices(ctx context.Context, ids []string) ([]SalesInvoice, error)

	// ListPurchaseInvoices returns the given purchase invoices, or every purchase
	// invoice without a creditor account when ids is empty.
	ListPurchaseInvoices(ctx context.Context, ids []string) ([]PurchaseInvoice, error)

	GetCreditorRegistry(ctx context.Context) ([]CreditorAlias, error)

	// GetPaymentMethodAccountTable maps payment method labels to collective account numbers.
	GetPaymentMethodAccountTable(ctx context.Context) (map[string]int, error)

	// GetMaxAllocatedAccountNumber returns the highest account number already in use
	// within [rangeStart, rangeEnd], or rangeStart-1 when none is.
	GetMaxAllocatedAccountNumber(ctx context.Context, rangeStart, rangeEnd int) (int, error)
}

// DecisionStore persists match decisions and the review queue. All writes for
// one payment happen in one transaction.
type DecisionStore interface {
	GetDecision(ctx context.Context, paymentID string) (*MatchDecision, error)

	// SaveDecision applies a decision and its side effects atomically. It returns
	// false without writing when an auto_matched decision already exists and force
	// is false, or when the stored decision is identical apart from its timestamp.
	SaveDecision(ctx context.Context, d MatchDecision, force bool) (bool, error)

	// RejectedCandidates returns the invoice IDs a reviewer rejected for the payment.
	RejectedCandidates(ctx context.Context, paymentID string) (map[string]bool, error)

	GetSuggestion(ctx context.Context, id string) (*Suggestion, error)
	ListSuggestions(ctx context.Context, status SuggestionStatus) ([]Suggestion, error)

	// ResolveSuggestion moves a pending entry to status and persists d in the same
	// transaction. It fails with ErrSuggestionNotPending if the entry moved first.
	ResolveSuggestion(ctx context.Context, id string, status SuggestionStatus, d MatchDecision) (*Suggestion, error)
}

// AccountStore persists debtor account assignments and the dedicated account allocation table.
type AccountStore interface {
	GetAssignment(ctx context.Context, invoiceID string) (*AccountAssignment, error)
	LookupDedicatedAccount(ctx context.Context, taxID string) (*DedicatedAccount, error)

	// AllocateDedicatedAccount mints the next number in r for taxID with a single
	// atomic upsert. seed raises the range counter to at least that value first.
	// A lost race is reported as *AllocationConflict.
	AllocateDedicatedAccount(ctx context.Context, taxID string, r AccountRange, seed int) (*DedicatedAccount, error)

	// SaveAssignment writes the assignment keyed by invoice ID. Without force an
	// existing assignment is kept and false is returned.
	SaveAssignment(ctx context.Context, a AccountAssignment, force bool) (bool, error)

	FlagForReview(ctx context.Context, invoiceID, reason string) error
}

// CreditorStore persists creditor links and registry aliases.
type CreditorStore interface {
	AssignCreditor(ctx context.Context, invoiceID string, creditorAccount int, score float64, method string) error
	QueueCreditorLookup(ctx context.Context, invoiceID string, bestScore float64) error

	// AppendAlias adds alias to the creditor's known aliases. Existing aliases are never removed.
	AppendAlias(ctx context.Context, creditorAccount int, alias string) error
}

// Store is everything the engines write to.
type Store interface {
	DecisionStore
	AccountStore
	CreditorStore
}
