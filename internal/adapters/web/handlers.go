package web

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"recon-engine/internal/app"

	"github.com/go-chi/chi/v5"
)

// Handler holds the ApplicationService and the chi router.
type Handler struct {
	svc       app.ApplicationService
	router    chi.Router
	jwtSecret string
}

// NewHandler creates and wires the chi router with all routes.
func NewHandler(svc app.ApplicationService, allowedOrigins, jwtSecret string) http.Handler {
	h := &Handler{
		svc:       svc,
		jwtSecret: jwtSecret,
	}

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Logger)
	r.Use(Recoverer)
	r.Use(CORS(allowedOrigins))

	r.Get("/api/health", h.health)
	r.Get("/api/schemas", h.schemas)

	r.Group(func(r chi.Router) {
		r.Use(h.RequireAuth)
		r.Use(RequestBodyLimit(1 << 20)) // 1 MB

		r.Post("/api/reconciliation/runs", h.runReconciliation)
		r.Get("/api/suggestions", h.listSuggestions)
		r.Post("/api/suggestions/{id}/approve", h.approveSuggestion)
		r.Post("/api/suggestions/{id}/reject", h.rejectSuggestion)

		r.Post("/api/accounts/assign", h.assignAccounts)
		r.Post("/api/creditors/resolve", h.resolveCreditors)
		r.Post("/api/purchase-invoices/{id}/creditor", h.resolveCreditor)
	})

	h.router = r
	return r
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}

func (h *Handler) schemas(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.svc.OutputSchemas())
}

// decodeJSON decodes the request body into v and returns false + writes an appropriate
// error response on failure. An empty body leaves v at its zero value.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			writeError(w, r, "request body too large", "REQUEST_TOO_LARGE", http.StatusRequestEntityTooLarge)
			return false
		}
		writeError(w, r, "invalid JSON body: "+err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return false
	}
	return true
}
