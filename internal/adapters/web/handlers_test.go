package web_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"recon-engine/internal/adapters/web"
	"recon-engine/internal/app"
	"recon-engine/internal/core"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

// stubService implements only what the tests call; anything else panics.
type stubService struct {
	app.ApplicationService
	reconcile app.ReconcileRequest
	creditor  app.ResolveCreditorRequest
	assign    *app.AssignAccountsRequest
	approve   func(id string) (*app.DecisionResult, error)
}

func (s *stubService) RunReconciliation(_ context.Context, req app.ReconcileRequest) (*core.Summary, error) {
	s.reconcile = req
	if req.Direction == "sideways" {
		return nil, &core.ValidationError{Kind: "request", Field: "direction", Message: "bad"}
	}
	return &core.Summary{RunID: "run-1", Checked: 3, Errors: []core.ItemError{}, Preview: []core.MatchDecision{}}, nil
}

func (s *stubService) ApproveSuggestion(_ context.Context, id string) (*app.DecisionResult, error) {
	return s.approve(id)
}

func (s *stubService) ResolveCreditor(_ context.Context, req app.ResolveCreditorRequest) (*core.CreditorResult, error) {
	s.creditor = req
	return &core.CreditorResult{InvoiceID: req.InvoiceID, Status: core.CreditorManual, CreditorAccount: req.CreditorAccount}, nil
}

func (s *stubService) AssignAccounts(_ context.Context, req app.AssignAccountsRequest) (*core.AssignmentSummary, error) {
	s.assign = &req
	return &core.AssignmentSummary{Checked: 2, Assigned: 2, FlaggedForReview: []string{}, Errors: []core.ItemError{}, Preview: []core.AccountAssignment{}}, nil
}

func (s *stubService) ResolveCreditors(context.Context) (*core.CreditorSummary, error) {
	return &core.CreditorSummary{Checked: 2, AutoAssigned: 1, Queued: []string{"PI-2"}, Errors: []core.ItemError{}}, nil
}

func token(t *testing.T, subject string, expires time.Time) string {
	t.Helper()
	claims := jwt.RegisteredClaims{Subject: subject, ExpiresAt: jwt.NewNumericDate(expires)}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func do(t *testing.T, h http.Handler, method, path, body, bearer string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealthAndRequestID(t *testing.T) {
	h := web.NewHandler(&stubService{}, "", testSecret)

	rec := do(t, h, http.MethodGet, "/api/health", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestAuthRequired(t *testing.T) {
	h := web.NewHandler(&stubService{}, "", testSecret)

	rec := do(t, h, http.MethodPost, "/api/reconciliation/runs", `{}`, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	expired := token(t, "alice", time.Now().Add(-time.Minute))
	rec = do(t, h, http.MethodPost, "/api/reconciliation/runs", `{}`, expired)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	wrongKey, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "alice"}).SignedString([]byte("other"))
	require.NoError(t, err)
	rec = do(t, h, http.MethodPost, "/api/reconciliation/runs", `{}`, wrongKey)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRunReconciliation(t *testing.T) {
	svc := &stubService{}
	h := web.NewHandler(svc, "", testSecret)
	bearer := token(t, "alice", time.Now().Add(time.Hour))

	rec := do(t, h, http.MethodPost, "/api/reconciliation/runs", `{"direction":"incoming","from":"2025-10-01","force":true}`, bearer)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, app.ReconcileRequest{Direction: "incoming", From: "2025-10-01", Force: true}, svc.reconcile)

	var summary core.Summary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	assert.Equal(t, 3, summary.Checked)

	rec = do(t, h, http.MethodPost, "/api/reconciliation/runs", `{"direction":"sideways"}`, bearer)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/reconciliation/runs", `{"direction":`, bearer)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/reconciliation/runs", "", bearer)
	assert.Equal(t, http.StatusOK, rec.Code, "empty body runs with defaults")
}

func TestApproveSuggestion_StatusMapping(t *testing.T) {
	bearer := token(t, "bob", time.Now().Add(time.Hour))
	tests := []struct {
		err  error
		want int
	}{
		{nil, http.StatusOK},
		{fmt.Errorf("suggestion S1: %w", core.ErrNotFound), http.StatusNotFound},
		{fmt.Errorf("resolve suggestion S1: %w", core.ErrSuggestionNotPending), http.StatusConflict},
		{fmt.Errorf("connection refused"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		svc := &stubService{approve: func(id string) (*app.DecisionResult, error) {
			if tt.err != nil {
				return nil, tt.err
			}
			return &app.DecisionResult{SuggestionID: id, Decision: core.MatchDecision{PaymentID: "P1", Outcome: core.OutcomeAutoMatched}}, nil
		}}
		h := web.NewHandler(svc, "", testSecret)
		rec := do(t, h, http.MethodPost, "/api/suggestions/S1/approve", "", bearer)
		assert.Equal(t, tt.want, rec.Code, "%v", tt.err)
	}
}

func TestResolveCreditor_ManualAccount(t *testing.T) {
	svc := &stubService{}
	h := web.NewHandler(svc, "", testSecret)
	bearer := token(t, "carol", time.Now().Add(time.Hour))

	rec := do(t, h, http.MethodPost, "/api/purchase-invoices/PI-1/creditor", `{"creditor_account":70001}`, bearer)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "PI-1", svc.creditor.InvoiceID)
	require.NotNil(t, svc.creditor.CreditorAccount)
	assert.Equal(t, 70001, *svc.creditor.CreditorAccount)
}

func TestResolveCreditors_Batch(t *testing.T) {
	h := web.NewHandler(&stubService{}, "", testSecret)
	bearer := token(t, "carol", time.Now().Add(time.Hour))

	rec := do(t, h, http.MethodPost, "/api/creditors/resolve", "", bearer)
	require.Equal(t, http.StatusOK, rec.Code)

	var summary core.CreditorSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	assert.Equal(t, 2, summary.Checked)
	assert.Equal(t, 1, summary.AutoAssigned)
	assert.Equal(t, []string{"PI-2"}, summary.Queued)
}

func TestAssignAccounts_EmptyBody(t *testing.T) {
	svc := &stubService{}
	h := web.NewHandler(svc, "", testSecret)
	bearer := token(t, "carol", time.Now().Add(time.Hour))

	rec := do(t, h, http.MethodPost, "/api/accounts/assign", "", bearer)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, svc.assign)
	assert.Empty(t, svc.assign.InvoiceIDs, "no ids selects every unassigned invoice")
	assert.False(t, svc.assign.Force)
}

func TestUnimplementedServiceMethodRecovers(t *testing.T) {
	h := web.NewHandler(&stubService{}, "", testSecret)
	bearer := token(t, "dave", time.Now().Add(time.Hour))

	rec := do(t, h, http.MethodGet, "/api/suggestions", "", bearer)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
