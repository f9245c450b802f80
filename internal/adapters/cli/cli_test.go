package cli_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"recon-engine/internal/adapters/cli"
	"recon-engine/internal/app"
	"recon-engine/internal/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeService records the requests it receives.
type fakeService struct {
	reconcile  app.ReconcileRequest
	assign     app.AssignAccountsRequest
	creditor   app.ResolveCreditorRequest
	status     string
	approved   string
	rejected   string
	resolveErr error
}

func (f *fakeService) RunReconciliation(_ context.Context, req app.ReconcileRequest) (*core.Summary, error) {
	f.reconcile = req
	return &core.Summary{
		RunID:       "run-1",
		Checked:     2,
		AutoMatched: 1,
		Rejected:    1,
		Errors:      []core.ItemError{},
		Preview: []core.MatchDecision{
			{PaymentID: "PAY-1", InvoiceID: "INV-1", Score: 100, Outcome: core.OutcomeAutoMatched},
			{PaymentID: "PAY-2", Outcome: core.OutcomeRejected},
		},
	}, nil
}

func (f *fakeService) ListSuggestions(_ context.Context, status string) (*app.SuggestionListResult, error) {
	f.status = status
	return &app.SuggestionListResult{Status: status, Suggestions: []core.Suggestion{}}, nil
}

func (f *fakeService) ApproveSuggestion(_ context.Context, id string) (*app.DecisionResult, error) {
	f.approved = id
	return &app.DecisionResult{SuggestionID: id, Decision: core.MatchDecision{PaymentID: "PAY-1", InvoiceID: "INV-1", Outcome: core.OutcomeAutoMatched}}, nil
}

func (f *fakeService) RejectSuggestion(_ context.Context, id string) (*app.DecisionResult, error) {
	f.rejected = id
	return nil, f.resolveErr
}

func (f *fakeService) AssignAccounts(_ context.Context, req app.AssignAccountsRequest) (*core.AssignmentSummary, error) {
	f.assign = req
	return &core.AssignmentSummary{Checked: len(req.InvoiceIDs), FlaggedForReview: []string{}, Errors: []core.ItemError{}}, nil
}

func (f *fakeService) ResolveCreditor(_ context.Context, req app.ResolveCreditorRequest) (*core.CreditorResult, error) {
	f.creditor = req
	return &core.CreditorResult{InvoiceID: req.InvoiceID, Status: core.CreditorQueued}, nil
}

func (f *fakeService) ResolveCreditors(context.Context) (*core.CreditorSummary, error) {
	return &core.CreditorSummary{Queued: []string{}, Errors: []core.ItemError{}}, nil
}

func (f *fakeService) OutputSchemas() map[string]any { return app.OutputSchemas() }

func execute(t *testing.T, svc app.ApplicationService, args ...string) (string, error) {
	t.Helper()
	opened := 0
	root := cli.NewRootCommand(func(context.Context) (app.ApplicationService, error) {
		opened++
		return svc, nil
	})
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	assert.LessOrEqual(t, opened, 1)
	return out.String(), err
}

func TestReconcileCommand_Flags(t *testing.T) {
	svc := &fakeService{}
	out, err := execute(t, svc, "reconcile", "PAY-1", "--direction", "incoming", "--from", "2025-10-01", "--to", "2025-10-31", "--force")
	require.NoError(t, err)

	assert.Equal(t, app.ReconcileRequest{
		Direction:  "incoming",
		From:       "2025-10-01",
		To:         "2025-10-31",
		PaymentIDs: []string{"PAY-1"},
		Force:      true,
	}, svc.reconcile)
	assert.Contains(t, out, "RECONCILIATION RUN run-1")
	assert.Contains(t, out, "INV-1")
}

func TestReconcileCommand_JSON(t *testing.T) {
	out, err := execute(t, &fakeService{}, "reconcile", "--json")
	require.NoError(t, err)

	var summary core.Summary
	require.NoError(t, json.Unmarshal([]byte(out), &summary))
	assert.Equal(t, "run-1", summary.RunID)
	assert.Len(t, summary.Preview, 2)
}

func TestSuggestionCommands(t *testing.T) {
	svc := &fakeService{}

	_, err := execute(t, svc, "suggestions")
	require.NoError(t, err)
	assert.Equal(t, "pending", svc.status)

	out, err := execute(t, svc, "approve", "S-1")
	require.NoError(t, err)
	assert.Equal(t, "S-1", svc.approved)
	assert.Contains(t, out, "PAY-1 -> invoice INV-1")

	svc.resolveErr = core.ErrSuggestionNotPending
	_, err = execute(t, svc, "reject", "S-2")
	assert.True(t, errors.Is(err, core.ErrSuggestionNotPending))
	assert.Equal(t, "S-2", svc.rejected)

	_, err = execute(t, svc, "approve")
	assert.Error(t, err, "suggestion id is required")
}

func TestAssignAndCreditorCommands(t *testing.T) {
	svc := &fakeService{}

	_, err := execute(t, svc, "assign-accounts", "S1", "S2", "--force")
	require.NoError(t, err)
	assert.Equal(t, app.AssignAccountsRequest{InvoiceIDs: []string{"S1", "S2"}, Force: true}, svc.assign)

	_, err = execute(t, svc, "resolve-creditor", "PI-1")
	require.NoError(t, err)
	assert.Nil(t, svc.creditor.CreditorAccount, "no account flag means automatic resolution")

	_, err = execute(t, svc, "resolve-creditor", "PI-1", "--account", "70001")
	require.NoError(t, err)
	require.NotNil(t, svc.creditor.CreditorAccount)
	assert.Equal(t, 70001, *svc.creditor.CreditorAccount)
}

func TestSchemaCommand_NeedsNoService(t *testing.T) {
	root := cli.NewRootCommand(func(context.Context) (app.ApplicationService, error) {
		return nil, errors.New("no database")
	})
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"schema", "match_decision"})
	require.NoError(t, root.Execute())

	var schema map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &schema))
	assert.Equal(t, "object", schema["type"])

	root.SetArgs([]string{"schema", "nope"})
	assert.Error(t, root.Execute())
}
