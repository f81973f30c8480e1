package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/blinkedin/backend/internal/auth"
	"github.com/blinkedin/backend/internal/metrics"
	"github.com/blinkedin/backend/internal/models"
	"github.com/blinkedin/backend/internal/services"
)

// OrderRepo resolves the order a room belongs to.
type OrderRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
}

// MessageRepo is the durable message store.
type MessageRepo interface {
	Create(ctx context.Context, m *models.Message) error
	ListByOrder(ctx context.Context, orderID uuid.UUID) ([]*models.Message, error)
}

// Service authorizes room access, persists messages, and fans them out.
type Service struct {
	Orders   OrderRepo
	Messages MessageRepo
	Hub      *Hub
	Logger   *slog.Logger
}

func NewService(orders OrderRepo, messages MessageRepo, hub *Hub, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{Orders: orders, Messages: messages, Hub: hub, Logger: logger}
}

// Authorize returns the order if the principal may participate in its room:
// the customer, the assigned professional, or an admin. Everyone else is
// rejected; rooms are never open to arbitrary accounts.
func (s *Service) Authorize(ctx context.Context, p auth.Principal, orderID uuid.UUID) (*models.Order, error) {
	o, err := s.Orders.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: order %s", services.ErrNotFound, orderID)
		}
		return nil, err
	}
	if p.IsAdmin() || o.CustomerID == p.AccountID || (o.ProID != nil && *o.ProID == p.AccountID) {
		return o, nil
	}
	return nil, fmt.Errorf("%w: not a party to order %s", services.ErrUnauthorized, orderID)
}

// Join subscribes the caller to the order's room after authorization.
func (s *Service) Join(ctx context.Context, p auth.Principal, orderID uuid.UUID) (*Subscriber, error) {
	if _, err := s.Authorize(ctx, p, orderID); err != nil {
		return nil, err
	}
	return s.Hub.Subscribe(OrderRoom(orderID)), nil
}

// JoinFeed subscribes the calling professional to their personal work feed,
// where new_order notices for matching pending orders arrive.
func (s *Service) JoinFeed(p auth.Principal) (*Subscriber, error) {
	if p.Role != models.RoleProfessional {
		return nil, fmt.Errorf("%w: the work feed is for professionals", services.ErrUnauthorized)
	}
	return s.Hub.Subscribe(FeedRoom(p.AccountID)), nil
}

// Leave drops the subscription.
func (s *Service) Leave(sub *Subscriber) {
	s.Hub.Unsubscribe(sub)
}

// Send persists the message, then broadcasts a new_message event to everyone
// currently in the room. Delivery is best-effort: disconnected participants
// catch up through History.
func (s *Service) Send(ctx context.Context, p auth.Principal, orderID uuid.UUID, content string, msgType models.MessageType) (*models.Message, error) {
	if content == "" {
		return nil, fmt.Errorf("%w: empty message", services.ErrValidation)
	}
	if !msgType.Valid() {
		return nil, fmt.Errorf("%w: unknown message type %q", services.ErrValidation, msgType)
	}
	if _, err := s.Authorize(ctx, p, orderID); err != nil {
		return nil, err
	}

	m := &models.Message{
		ID:         uuid.New(),
		OrderID:    orderID,
		SenderID:   p.AccountID,
		SenderName: p.Name,
		Content:    content,
		Type:       msgType,
	}
	if err := s.Messages.Create(ctx, m); err != nil {
		return nil, fmt.Errorf("persist message: %w", err)
	}
	metrics.MessagesSent.WithLabelValues(string(msgType)).Inc()

	delivered := s.Hub.Publish(OrderRoom(orderID), Event{
		Name:       EventNewMessage,
		OrderID:    orderID.String(),
		SenderID:   m.SenderID.String(),
		SenderName: m.SenderName,
		Type:       string(m.Type),
		Content:    m.Content,
		Timestamp:  m.CreatedAt,
	})
	s.Logger.Debug("message broadcast", "order_id", orderID, "delivered", delivered)
	return m, nil
}

// History returns every persisted message for the order in non-decreasing
// timestamp order. Fully materialized, never a live stream.
func (s *Service) History(ctx context.Context, p auth.Principal, orderID uuid.UUID) ([]*models.Message, error) {
	if _, err := s.Authorize(ctx, p, orderID); err != nil {
		return nil, err
	}
	return s.Messages.ListByOrder(ctx, orderID)
}
