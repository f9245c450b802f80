package web

import (
	"context"
	"net/http"

	"recon-engine/internal/app"

	"github.com/go-chi/chi/v5"
)

// runReconciliation handles POST /api/reconciliation/runs.
func (h *Handler) runReconciliation(w http.ResponseWriter, r *http.Request) {
	var req app.ReconcileRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	summary, err := h.svc.RunReconciliation(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, summary)
}

// listSuggestions handles GET /api/suggestions?status=pending.
func (h *Handler) listSuggestions(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.ListSuggestions(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, res)
}

// approveSuggestion handles POST /api/suggestions/{id}/approve.
func (h *Handler) approveSuggestion(w http.ResponseWriter, r *http.Request) {
	h.resolveSuggestion(w, r, h.svc.ApproveSuggestion)
}

// rejectSuggestion handles POST /api/suggestions/{id}/reject.
func (h *Handler) rejectSuggestion(w http.ResponseWriter, r *http.Request) {
	h.resolveSuggestion(w, r, h.svc.RejectSuggestion)
}

func (h *Handler) resolveSuggestion(w http.ResponseWriter, r *http.Request, resolve func(ctx context.Context, id string) (*app.DecisionResult, error)) {
	id := chi.URLParam(r, "id")
	res, err := resolve(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	log := requestLogger(r)
	log.Info().
		Str("suggestion_id", id).
		Str("reviewer", reviewerFromContext(r.Context())).
		Str("outcome", string(res.Decision.Outcome)).
		Msg("Suggestion resolved via API")
	writeJSON(w, res)
}
