package app

import (
	"context"

	"recon-engine/internal/core"
)

// ApplicationService is the single interface all adapters call.
// Implementations contain no printing or display logic of any kind.
type ApplicationService interface {
	// RunReconciliation scores unmatched payments against open invoices and
	// persists one decision per payment.
	RunReconciliation(ctx context.Context, req ReconcileRequest) (*core.Summary, error)

	// ListSuggestions returns review queue entries, optionally filtered by status.
	ListSuggestions(ctx context.Context, status string) (*SuggestionListResult, error)

	// ApproveSuggestion matches the payment to the suggested invoice.
	ApproveSuggestion(ctx context.Context, id string) (*DecisionResult, error)

	// RejectSuggestion discards the suggestion and excludes its candidate from later runs.
	RejectSuggestion(ctx context.Context, id string) (*DecisionResult, error)

	// AssignAccounts assigns debtor accounts to sales invoices. With no invoice
	// IDs every unassigned sales invoice is processed.
	AssignAccounts(ctx context.Context, req AssignAccountsRequest) (*core.AssignmentSummary, error)

	// ResolveCreditor links one purchase invoice to the creditor registry, or
	// records a reviewer's choice when req.CreditorAccount is set.
	ResolveCreditor(ctx context.Context, req ResolveCreditorRequest) (*core.CreditorResult, error)

	// ResolveCreditors runs creditor resolution over all unlinked purchase invoices.
	ResolveCreditors(ctx context.Context) (*core.CreditorSummary, error)

	// OutputSchemas returns JSON Schemas for the records the engine emits, keyed by name.
	OutputSchemas() map[string]any
}
