package chat

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/blinkedin/backend/internal/auth"
	"github.com/blinkedin/backend/internal/middleware"
	"github.com/blinkedin/backend/internal/models"
	"github.com/blinkedin/backend/internal/services"
)

// Handler upgrades GET /v1/orders/{id}/ws to a WebSocket: inbound frames are
// text messages to send, outbound frames are room events.
type Handler struct {
	Svc      *Service
	Log      *slog.Logger
	upgrader websocket.Upgrader
}

func NewHandler(svc *Service, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{
		Svc: svc,
		Log: log,
		// Origin policy for the HTTP surface lives in the CORS middleware;
		// token auth already gates the upgrade.
		upgrader: websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }},
	}
}

// inboundFrame is what a connected client sends over the socket.
type inboundFrame struct {
	Content string `json:"content"`
}

// Serve handles the room connection lifecycle: authorize, upgrade, pump.
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	p, ok := middleware.PrincipalFromCtx(r.Context())
	if !ok {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}
	orderID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		http.Error(w, `{"error":"invalid order id"}`, http.StatusBadRequest)
		return
	}

	sub, err := h.Svc.Join(r.Context(), p, orderID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNotFound):
			http.Error(w, `{"error":"order not found"}`, http.StatusNotFound)
		case errors.Is(err, services.ErrUnauthorized):
			http.Error(w, `{"error":"not a party to this order"}`, http.StatusForbidden)
		default:
			h.Log.Error("join room", "order_id", orderID, "error", err)
			http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		}
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.Svc.Leave(sub)
		return
	}

	go h.writePump(conn, sub)
	h.readPump(conn, sub, p, orderID)
}

// ServeFeed upgrades GET /v1/feed/ws to the professional's work feed socket.
// It is outbound-only: new_order events flow to the client, inbound frames
// are discarded.
func (h *Handler) ServeFeed(w http.ResponseWriter, r *http.Request) {
	p, ok := middleware.PrincipalFromCtx(r.Context())
	if !ok {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}
	sub, err := h.Svc.JoinFeed(p)
	if err != nil {
		http.Error(w, `{"error":"the work feed is for professionals"}`, http.StatusForbidden)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.Svc.Leave(sub)
		return
	}

	go h.writePump(conn, sub)
	h.discardPump(conn, sub)
}

// writePump forwards room events to the connection until the subscription
// closes or the write fails.
func (h *Handler) writePump(conn *websocket.Conn, sub *Subscriber) {
	defer conn.Close()
	for ev := range sub.C {
		if err := conn.WriteJSON(ev); err != nil {
			return
		}
	}
}

// discardPump holds the connection open until the peer hangs up, then tears
// the subscription down. Used by feed sockets, which accept no input.
func (h *Handler) discardPump(conn *websocket.Conn, sub *Subscriber) {
	defer func() {
		h.Svc.Leave(sub)
		conn.Close()
	}()
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// readPump consumes inbound frames as text messages until the peer hangs up,
// then tears the subscription down. The sender's own event comes back through
// the room like everyone else's.
func (h *Handler) readPump(conn *websocket.Conn, sub *Subscriber, p auth.Principal, orderID uuid.UUID) {
	defer func() {
		h.Svc.Leave(sub)
		conn.Close()
	}()
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var frame inboundFrame
		if err := json.Unmarshal(raw, &frame); err != nil {
			continue
		}
		if _, err := h.Svc.Send(context.Background(), p, orderID, frame.Content, models.MessageText); err != nil {
			h.Log.Warn("socket send", "order_id", orderID, "error", err)
		}
	}
}
