// Package notify pushes new-order notices to matching professionals' feed
// rooms through a background job, so logged-in pros see fresh work without
// polling. Losing a notice is harmless: the pending order still shows up in
// the work feed listing.
package notify

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/riverqueue/river"

	"github.com/blinkedin/backend/internal/chat"
	"github.com/blinkedin/backend/internal/models"
	"github.com/blinkedin/backend/internal/services"
)

type NewOrderJobArgs struct {
	OrderID uuid.UUID `json:"order_id"`
}

func (NewOrderJobArgs) Kind() string { return "notify_candidates" }

// CandidateSource resolves an order and its candidate professionals.
type CandidateSource interface {
	CandidatesByID(ctx context.Context, orderID uuid.UUID) (*models.Order, []*models.Account, error)
}

type NewOrderWorker struct {
	river.WorkerDefaults[NewOrderJobArgs]
	source CandidateSource
	hub    *chat.Hub
	log    *slog.Logger
}

func NewNewOrderWorker(source CandidateSource, hub *chat.Hub, log *slog.Logger) *NewOrderWorker {
	if log == nil {
		log = slog.Default()
	}
	return &NewOrderWorker{source: source, hub: hub, log: log}
}

func (w *NewOrderWorker) Work(ctx context.Context, job *river.Job[NewOrderJobArgs]) error {
	o, pros, err := w.source.CandidatesByID(ctx, job.Args.OrderID)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			// Order vanished; nothing to announce and nothing to retry.
			return nil
		}
		return err
	}
	if o.Status != models.OrderStatusPending {
		return nil
	}

	ev := chat.Event{
		Name:       chat.EventNewOrder,
		OrderID:    o.ID.String(),
		SenderID:   o.CustomerID.String(),
		SenderName: o.CustomerName,
		Type:       string(models.MessageText),
		Content:    o.Service,
		Timestamp:  o.CreatedAt,
	}
	delivered := 0
	for _, pro := range pros {
		delivered += w.hub.Publish(chat.FeedRoom(pro.ID), ev)
	}
	w.log.Info("candidates notified", "order_id", o.ID, "candidates", len(pros), "delivered", delivered)
	return nil
}
