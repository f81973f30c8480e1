package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/blinkedin/backend/internal/auth"
	"github.com/blinkedin/backend/internal/middleware"
	"github.com/blinkedin/backend/internal/models"
	"github.com/blinkedin/backend/internal/services"
)

// DispatchService creates orders and resolves candidates.
type DispatchService interface {
	SubmitOrder(ctx context.Context, p auth.Principal, in services.SubmitOrderInput) (*models.Order, error)
	Candidates(ctx context.Context, o *models.Order) ([]*models.Account, error)
}

// OrderStateService is the state machine surface the handler drives.
type OrderStateService interface {
	Accept(ctx context.Context, p auth.Principal, orderID uuid.UUID) (*models.Order, error)
	Complete(ctx context.Context, p auth.Principal, orderID uuid.UUID, amount int) (*models.Order, error)
	Rate(ctx context.Context, p auth.Principal, orderID uuid.UUID, rating int, feedback string) error
}

// OrderLister backs the role-dependent order listings.
type OrderLister interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]*models.Order, error)
	ListByProfessional(ctx context.Context, proID uuid.UUID) ([]*models.Order, error)
	ListOpenByService(ctx context.Context, service, city string) ([]*models.Order, error)
}

// ChatService is the messaging surface reachable over plain HTTP.
type ChatService interface {
	Send(ctx context.Context, p auth.Principal, orderID uuid.UUID, content string, msgType models.MessageType) (*models.Message, error)
	History(ctx context.Context, p auth.Principal, orderID uuid.UUID) ([]*models.Message, error)
}

// OrderHandler serves the /v1/orders endpoints.
type OrderHandler struct {
	Dispatch DispatchService
	Orders   OrderStateService
	Repo     OrderLister
	Chat     ChatService
	Logger   *slog.Logger
}

// --- POST /v1/orders ---

type createOrderRequest struct {
	Service       string  `json:"service"`
	PickupAddress string  `json:"pickup_address"`
	DropAddress   string  `json:"drop_address"`
	PaymentMode   string  `json:"payment_mode"`
	Lat           float64 `json:"lat"`
	Lng           float64 `json:"lng"`
}

type createOrderResponse struct {
	Order      *models.Order     `json:"order"`
	Candidates []*models.Account `json:"candidates"`
}

// CreateOrder submits an order and returns it with its candidate set, the
// confirmation a customer sees right after placing.
func (h *OrderHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	p, ok := middleware.PrincipalFromCtx(r.Context())
	if !ok {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}
	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid JSON"}`, http.StatusBadRequest)
		return
	}
	o, err := h.Dispatch.SubmitOrder(r.Context(), p, services.SubmitOrderInput{
		Service:       req.Service,
		PickupAddress: req.PickupAddress,
		DropAddress:   req.DropAddress,
		PaymentMode:   models.PaymentMode(req.PaymentMode),
		Lat:           req.Lat,
		Lng:           req.Lng,
	})
	if err != nil {
		writeErr(w, h.Logger, err, "submit order")
		return
	}
	pros, err := h.Dispatch.Candidates(r.Context(), o)
	if err != nil {
		h.Logger.Error("candidates", "order_id", o.ID, "error", err)
		pros = nil
	}
	writeJSON(w, http.StatusCreated, createOrderResponse{Order: o, Candidates: pros})
}

// ListOrders is role-dependent: a customer sees their own orders; a pro sees
// their open work feed plus everything assigned to them.
func (h *OrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	p, ok := middleware.PrincipalFromCtx(r.Context())
	if !ok {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}
	switch p.Role {
	case models.RoleProfessional:
		open, err := h.Repo.ListOpenByService(r.Context(), p.Profession, p.City)
		if err != nil {
			writeErr(w, h.Logger, err, "list open orders")
			return
		}
		mine, err := h.Repo.ListByProfessional(r.Context(), p.AccountID)
		if err != nil {
			writeErr(w, h.Logger, err, "list assigned orders")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"open": open, "assigned": mine})
	default:
		orders, err := h.Repo.ListByCustomer(r.Context(), p.AccountID)
		if err != nil {
			writeErr(w, h.Logger, err, "list orders")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"orders": orders})
	}
}

// GetOrder returns one order to a party of it (or an admin).
func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	_, o, ok := h.orderForParty(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, o)
}

// Candidates returns the matching professionals for an order.
func (h *OrderHandler) Candidates(w http.ResponseWriter, r *http.Request) {
	_, o, ok := h.orderForParty(w, r)
	if !ok {
		return
	}
	pros, err := h.Dispatch.Candidates(r.Context(), o)
	if err != nil {
		writeErr(w, h.Logger, err, "candidates")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"candidates": pros})
}

// Accept lets a professional claim a pending order.
func (h *OrderHandler) Accept(w http.ResponseWriter, r *http.Request) {
	p, orderID, ok := principalAndID(w, r)
	if !ok {
		return
	}
	o, err := h.Orders.Accept(r.Context(), p, orderID)
	if err != nil {
		writeErr(w, h.Logger, err, "accept order")
		return
	}
	writeJSON(w, http.StatusOK, o)
}

// --- POST /v1/orders/{id}/complete ---

type completeOrderRequest struct {
	Amount int `json:"amount"`
}

// Complete settles the order at the given amount.
func (h *OrderHandler) Complete(w http.ResponseWriter, r *http.Request) {
	p, orderID, ok := principalAndID(w, r)
	if !ok {
		return
	}
	var req completeOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid JSON"}`, http.StatusBadRequest)
		return
	}
	o, err := h.Orders.Complete(r.Context(), p, orderID, req.Amount)
	if err != nil {
		writeErr(w, h.Logger, err, "complete order")
		return
	}
	writeJSON(w, http.StatusOK, o)
}

// --- POST /v1/orders/{id}/rate ---

type rateOrderRequest struct {
	Rating   int    `json:"rating"`
	Feedback string `json:"feedback"`
}

// Rate annotates a completed order with the customer's rating.
func (h *OrderHandler) Rate(w http.ResponseWriter, r *http.Request) {
	p, orderID, ok := principalAndID(w, r)
	if !ok {
		return
	}
	var req rateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid JSON"}`, http.StatusBadRequest)
		return
	}
	if err := h.Orders.Rate(r.Context(), p, orderID, req.Rating, req.Feedback); err != nil {
		writeErr(w, h.Logger, err, "rate order")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "rated"})
}

// --- POST /v1/orders/{id}/messages ---

type sendMessageRequest struct {
	Content string `json:"content"`
}

// SendMessage posts a text message to the order's room over plain HTTP.
func (h *OrderHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	p, orderID, ok := principalAndID(w, r)
	if !ok {
		return
	}
	var req sendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid JSON"}`, http.StatusBadRequest)
		return
	}
	m, err := h.Chat.Send(r.Context(), p, orderID, req.Content, models.MessageText)
	if err != nil {
		writeErr(w, h.Logger, err, "send message")
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

// History returns the order's full message history.
func (h *OrderHandler) History(w http.ResponseWriter, r *http.Request) {
	p, orderID, ok := principalAndID(w, r)
	if !ok {
		return
	}
	msgs, err := h.Chat.History(r.Context(), p, orderID)
	if err != nil {
		writeErr(w, h.Logger, err, "message history")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"messages": msgs})
}

// --- helpers ---

func principalAndID(w http.ResponseWriter, r *http.Request) (auth.Principal, uuid.UUID, bool) {
	p, ok := middleware.PrincipalFromCtx(r.Context())
	if !ok {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return auth.Principal{}, uuid.Nil, false
	}
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		http.Error(w, `{"error":"invalid order id"}`, http.StatusBadRequest)
		return auth.Principal{}, uuid.Nil, false
	}
	return p, id, true
}

// orderForParty loads the order and verifies the principal is the customer,
// the assigned professional, or an admin.
func (h *OrderHandler) orderForParty(w http.ResponseWriter, r *http.Request) (auth.Principal, *models.Order, bool) {
	p, orderID, ok := principalAndID(w, r)
	if !ok {
		return auth.Principal{}, nil, false
	}
	o, err := h.Repo.GetByID(r.Context(), orderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			http.Error(w, `{"error":"order not found"}`, http.StatusNotFound)
		} else {
			writeErr(w, h.Logger, err, "get order")
		}
		return auth.Principal{}, nil, false
	}
	if !p.IsAdmin() && o.CustomerID != p.AccountID && (o.ProID == nil || *o.ProID != p.AccountID) {
		http.Error(w, `{"error":"not a party to this order"}`, http.StatusForbidden)
		return auth.Principal{}, nil, false
	}
	return p, o, true
}

// writeErr maps core sentinel errors to HTTP statuses.
func writeErr(w http.ResponseWriter, log *slog.Logger, err error, op string) {
	switch {
	case errors.Is(err, services.ErrValidation):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, services.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, services.ErrUnauthorized):
		writeJSON(w, http.StatusForbidden, map[string]string{"error": err.Error()})
	case errors.Is(err, services.ErrInvalidTransition):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	case errors.Is(err, services.ErrInsufficientFunds):
		writeJSON(w, http.StatusPaymentRequired, map[string]string{"error": err.Error()})
	case errors.Is(err, services.ErrConflict):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	default:
		log.Error(op, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
