// Package metrics registers the service's Prometheus collectors.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	OrdersCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "marketplace_orders_created_total",
		Help: "Orders submitted by customers",
	})
	OrdersAccepted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "marketplace_orders_accepted_total",
		Help: "Orders accepted by a professional",
	})
	OrdersCompleted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "marketplace_orders_completed_total",
		Help: "Orders completed, by payment mode",
	}, []string{"payment_mode"})
	WalletTransferred = promauto.NewCounter(prometheus.CounterOpts{
		Name: "marketplace_wallet_transferred_total",
		Help: "Total wallet value moved between accounts",
	})
	MessagesSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "marketplace_messages_sent_total",
		Help: "Chat messages persisted, by type",
	}, []string{"type"})

	httpReqTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "marketplace_http_requests_total",
		Help: "Total HTTP requests",
	}, []string{"method", "status"})
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// HTTPMiddleware counts every request by method and response status.
func HTTPMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		httpReqTotal.WithLabelValues(r.Method, strconv.Itoa(rec.status)).Inc()
	})
}
