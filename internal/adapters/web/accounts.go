package web

import (
	"net/http"

	"recon-engine/internal/app"

	"github.com/go-chi/chi/v5"
)

// assignAccounts handles POST /api/accounts/assign.
func (h *Handler) assignAccounts(w http.ResponseWriter, r *http.Request) {
	var req app.AssignAccountsRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	summary, err := h.svc.AssignAccounts(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, summary)
}

// resolveCreditors handles POST /api/creditors/resolve.
func (h *Handler) resolveCreditors(w http.ResponseWriter, r *http.Request) {
	summary, err := h.svc.ResolveCreditors(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, summary)
}

// resolveCreditor handles POST /api/purchase-invoices/{id}/creditor.
// A body with creditor_account records a manual assignment.
func (h *Handler) resolveCreditor(w http.ResponseWriter, r *http.Request) {
	var req app.ResolveCreditorRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.InvoiceID = chi.URLParam(r, "id")

	res, err := h.svc.ResolveCreditor(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, res)
}
