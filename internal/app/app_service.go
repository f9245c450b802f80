package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"recon-engine/internal/core"

	"github.com/invopop/jsonschema"
)

const dateLayout = "2006-01-02"

type appService struct {
	reconciler *core.Reconciler
	accounts   *core.AccountAssigner
	creditors  *core.CreditorResolver
}

// NewAppService constructs an appService that satisfies ApplicationService.
func NewAppService(
	reconciler *core.Reconciler,
	accounts *core.AccountAssigner,
	creditors *core.CreditorResolver,
) ApplicationService {
	return &appService{
		reconciler: reconciler,
		accounts:   accounts,
		creditors:  creditors,
	}
}

// RunReconciliation validates the request filter and runs one batch.
func (s *appService) RunReconciliation(ctx context.Context, req ReconcileRequest) (*core.Summary, error) {
	dir, err := parseDirection(req.Direction)
	if err != nil {
		return nil, err
	}
	dates, err := parseDateRange(req.From, req.To)
	if err != nil {
		return nil, err
	}
	return s.reconciler.RunReconciliation(ctx, core.ReconcileFilter{
		Direction:  dir,
		Dates:      dates,
		PaymentIDs: req.PaymentIDs,
		Force:      req.Force,
	})
}

// ListSuggestions returns review queue entries. An empty status lists all of them.
func (s *appService) ListSuggestions(ctx context.Context, status string) (*SuggestionListResult, error) {
	st := core.SuggestionStatus(strings.ToLower(strings.TrimSpace(status)))
	switch st {
	case "", core.SuggestionPending, core.SuggestionApproved, core.SuggestionRejected:
	default:
		return nil, &core.ValidationError{Kind: "request", Field: "status", Message: "must be pending, approved or rejected, got " + status}
	}
	suggestions, err := s.reconciler.ListSuggestions(ctx, st)
	if err != nil {
		return nil, err
	}
	if suggestions == nil {
		suggestions = []core.Suggestion{}
	}
	return &SuggestionListResult{Status: string(st), Suggestions: suggestions}, nil
}

func (s *appService) ApproveSuggestion(ctx context.Context, id string) (*DecisionResult, error) {
	d, err := s.reconciler.ApproveSuggestion(ctx, id)
	if err != nil {
		return nil, err
	}
	return &DecisionResult{SuggestionID: id, Decision: *d}, nil
}

func (s *appService) RejectSuggestion(ctx context.Context, id string) (*DecisionResult, error) {
	d, err := s.reconciler.RejectSuggestion(ctx, id)
	if err != nil {
		return nil, err
	}
	return &DecisionResult{SuggestionID: id, Decision: *d}, nil
}

func (s *appService) AssignAccounts(ctx context.Context, req AssignAccountsRequest) (*core.AssignmentSummary, error) {
	return s.accounts.AssignAccounts(ctx, req.InvoiceIDs, req.Force)
}

func (s *appService) ResolveCreditor(ctx context.Context, req ResolveCreditorRequest) (*core.CreditorResult, error) {
	if strings.TrimSpace(req.InvoiceID) == "" {
		return nil, &core.ValidationError{Kind: "request", Field: "invoice_id", Message: "must not be empty"}
	}
	return s.creditors.ResolveCreditor(ctx, req.InvoiceID, req.CreditorAccount)
}

func (s *appService) ResolveCreditors(ctx context.Context) (*core.CreditorSummary, error) {
	return s.creditors.ResolveAll(ctx)
}

func (s *appService) OutputSchemas() map[string]any {
	return OutputSchemas()
}

// OutputSchemas reflects the persisted and reported records for downstream
// consumers. It needs no database.
func OutputSchemas() map[string]any {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	return map[string]any{
		"match_decision":     reflector.Reflect(core.MatchDecision{}),
		"account_assignment": reflector.Reflect(core.AccountAssignment{}),
		"summary":            reflector.Reflect(core.Summary{}),
		"assignment_summary": reflector.Reflect(core.AssignmentSummary{}),
		"creditor_result":    reflector.Reflect(core.CreditorResult{}),
		"suggestion":         reflector.Reflect(core.Suggestion{}),
	}
}

func parseDirection(raw string) (core.Direction, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "all":
		return "", nil
	case string(core.Incoming):
		return core.Incoming, nil
	case string(core.Outgoing):
		return core.Outgoing, nil
	}
	return "", &core.ValidationError{Kind: "request", Field: "direction", Message: "must be incoming, outgoing or all, got " + raw}
}

func parseDateRange(from, to string) (core.DateRange, error) {
	var r core.DateRange
	var err error
	if from != "" {
		if r.From, err = time.Parse(dateLayout, from); err != nil {
			return r, &core.ValidationError{Kind: "request", Field: "from", Message: fmt.Sprintf("invalid date %q, expected YYYY-MM-DD", from)}
		}
	}
	if to != "" {
		if r.To, err = time.Parse(dateLayout, to); err != nil {
			return r, &core.ValidationError{Kind: "request", Field: "to", Message: fmt.Sprintf("invalid date %q, expected YYYY-MM-DD", to)}
		}
	}
	if !r.From.IsZero() && !r.To.IsZero() && r.From.After(r.To) {
		return r, &core.ValidationError{Kind: "request", Field: "from", Message: "must not be after to"}
	}
	return r, nil
}
