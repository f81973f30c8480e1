// Package router wires the HTTP surface. All /v1 routes except auth sit
// behind the JWT principal middleware.
package router

import (
	"encoding/json"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/blinkedin/backend/internal/admin"
	"github.com/blinkedin/backend/internal/auth"
	"github.com/blinkedin/backend/internal/catalog"
	"github.com/blinkedin/backend/internal/chat"
	"github.com/blinkedin/backend/internal/handlers"
	"github.com/blinkedin/backend/internal/metrics"
	"github.com/blinkedin/backend/internal/middleware"
)

// Deps collects the handlers the router mounts.
type Deps struct {
	Auth      *auth.Handler
	Orders    *handlers.OrderHandler
	Media     *handlers.MediaHandler
	Chat      *chat.Handler
	Admin     *admin.Handler
	Validator middleware.TokenValidator
	MediaDir  string
}

// New returns the fully wired handler.
func New(d Deps) http.Handler {
	mux := http.NewServeMux()
	authed := middleware.Auth(d.Validator)

	mux.HandleFunc("POST /v1/auth/register", d.Auth.Register)
	mux.HandleFunc("POST /v1/auth/login", d.Auth.Login)

	mux.HandleFunc("GET /v1/professions", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"professions": catalog.All()})
	})

	mux.Handle("POST /v1/orders", authed(http.HandlerFunc(d.Orders.CreateOrder)))
	mux.Handle("GET /v1/orders", authed(http.HandlerFunc(d.Orders.ListOrders)))
	mux.Handle("GET /v1/orders/{id}", authed(http.HandlerFunc(d.Orders.GetOrder)))
	mux.Handle("GET /v1/orders/{id}/candidates", authed(http.HandlerFunc(d.Orders.Candidates)))
	mux.Handle("POST /v1/orders/{id}/accept", authed(http.HandlerFunc(d.Orders.Accept)))
	mux.Handle("POST /v1/orders/{id}/complete", authed(http.HandlerFunc(d.Orders.Complete)))
	mux.Handle("POST /v1/orders/{id}/rate", authed(http.HandlerFunc(d.Orders.Rate)))

	mux.Handle("GET /v1/orders/{id}/messages", authed(http.HandlerFunc(d.Orders.History)))
	mux.Handle("POST /v1/orders/{id}/messages", authed(http.HandlerFunc(d.Orders.SendMessage)))
	mux.Handle("POST /v1/orders/{id}/media", authed(http.HandlerFunc(d.Media.Upload)))
	mux.Handle("GET /v1/orders/{id}/ws", authed(http.HandlerFunc(d.Chat.Serve)))
	mux.Handle("GET /v1/feed/ws", authed(http.HandlerFunc(d.Chat.ServeFeed)))

	mux.Handle("GET /v1/admin/accounts", authed(http.HandlerFunc(d.Admin.ListAccounts)))
	mux.Handle("GET /v1/admin/revenue", authed(http.HandlerFunc(d.Admin.Revenue)))
	mux.Handle("GET /v1/admin/transactions", authed(http.HandlerFunc(d.Admin.Transactions)))
	mux.Handle("DELETE /v1/admin/accounts/{id}", authed(http.HandlerFunc(d.Admin.DeleteAccount)))

	mux.Handle("GET /media/", http.StripPrefix("/media/", http.FileServer(http.Dir(d.MediaDir))))
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	return metrics.HTTPMiddleware(mux)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
