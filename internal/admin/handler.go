// Package admin is the oversight surface: read-only aggregation and account
// removal. It sits outside the dispatch and settlement hot path.
package admin

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/blinkedin/backend/internal/middleware"
	"github.com/blinkedin/backend/internal/services"
)

type Handler struct {
	svc *services.Oversight
	log *slog.Logger
}

func NewHandler(svc *services.Oversight, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{svc: svc, log: log}
}

// ListAccounts handles GET /v1/admin/accounts.
func (h *Handler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	p, ok := middleware.PrincipalFromCtx(r.Context())
	if !ok {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}
	accounts, err := h.svc.ListAccounts(r.Context(), p)
	if err != nil {
		h.writeErr(w, err, "list accounts")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"accounts": accounts})
}

// Revenue handles GET /v1/admin/revenue.
func (h *Handler) Revenue(w http.ResponseWriter, r *http.Request) {
	p, ok := middleware.PrincipalFromCtx(r.Context())
	if !ok {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}
	revenue, err := h.svc.AggregateRevenue(r.Context(), p)
	if err != nil {
		h.writeErr(w, err, "aggregate revenue")
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"revenue": revenue})
}

// Transactions handles GET /v1/admin/transactions: the wallet journal,
// newest first.
func (h *Handler) Transactions(w http.ResponseWriter, r *http.Request) {
	p, ok := middleware.PrincipalFromCtx(r.Context())
	if !ok {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}
	entries, err := h.svc.ListTransactions(r.Context(), p)
	if err != nil {
		h.writeErr(w, err, "list transactions")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"transactions": entries})
}

// DeleteAccount handles DELETE /v1/admin/accounts/{id}.
func (h *Handler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	p, ok := middleware.PrincipalFromCtx(r.Context())
	if !ok {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		http.Error(w, `{"error":"invalid account id"}`, http.StatusBadRequest)
		return
	}
	if err := h.svc.DeleteAccount(r.Context(), p, id); err != nil {
		h.writeErr(w, err, "delete account")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *Handler) writeErr(w http.ResponseWriter, err error, op string) {
	switch {
	case errors.Is(err, services.ErrUnauthorized):
		writeJSON(w, http.StatusForbidden, map[string]string{"error": err.Error()})
	case errors.Is(err, services.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, services.ErrConflict):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	default:
		h.log.Error(op, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
