package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/blinkedin/backend/internal/auth"
	"github.com/blinkedin/backend/internal/catalog"
	"github.com/blinkedin/backend/internal/metrics"
	"github.com/blinkedin/backend/internal/models"
)

// DispatchOrderRepo is the order repository interface used by the dispatcher.
type DispatchOrderRepo interface {
	Create(ctx context.Context, o *models.Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
}

// DispatchAccountRepo resolves candidate professionals for an order.
type DispatchAccountRepo interface {
	FindProfessionals(ctx context.Context, profession, city string) ([]*models.Account, error)
}

// EnqueueNotifyFunc enqueues the async candidate notification job for a new
// order. Provided by main as a closure over the river client.
type EnqueueNotifyFunc func(ctx context.Context, orderID uuid.UUID) error

// Dispatch creates orders and computes their candidate set. There is no
// ranking or rotation among candidates: first acceptance wins.
type Dispatch struct {
	Orders        DispatchOrderRepo
	Accounts      DispatchAccountRepo
	EnqueueNotify EnqueueNotifyFunc
	Logger        *slog.Logger
}

func NewDispatch(orders DispatchOrderRepo, accounts DispatchAccountRepo, enqueue EnqueueNotifyFunc, logger *slog.Logger) *Dispatch {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatch{Orders: orders, Accounts: accounts, EnqueueNotify: enqueue, Logger: logger}
}

// SubmitOrderInput is the customer's order request.
type SubmitOrderInput struct {
	Service       string
	PickupAddress string
	DropAddress   string
	PaymentMode   models.PaymentMode
	Lat           float64
	Lng           float64
}

// SubmitOrder validates the request and creates a pending order with no
// assigned professional. The customer identity, name snapshot, and matching
// city all come from the principal.
func (d *Dispatch) SubmitOrder(ctx context.Context, p auth.Principal, in SubmitOrderInput) (*models.Order, error) {
	if p.Role != models.RoleCustomer {
		return nil, fmt.Errorf("%w: only customers submit orders", ErrUnauthorized)
	}
	if !catalog.Valid(in.Service) {
		return nil, fmt.Errorf("%w: unknown service %q", ErrValidation, in.Service)
	}
	if !in.PaymentMode.Valid() {
		return nil, fmt.Errorf("%w: unknown payment mode %q", ErrValidation, in.PaymentMode)
	}
	if in.Lat < -90 || in.Lat > 90 || in.Lng < -180 || in.Lng > 180 {
		return nil, fmt.Errorf("%w: coordinates out of range", ErrValidation)
	}

	o := &models.Order{
		ID:            uuid.New(),
		CustomerID:    p.AccountID,
		CustomerName:  p.Name,
		Service:       in.Service,
		PickupAddress: in.PickupAddress,
		DropAddress:   in.DropAddress,
		City:          p.City,
		Status:        models.OrderStatusPending,
		PaymentMode:   in.PaymentMode,
		CustLat:       in.Lat,
		CustLng:       in.Lng,
	}
	if err := d.Orders.Create(ctx, o); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}
	metrics.OrdersCreated.Inc()

	// Candidate notification is best-effort; the order stands either way.
	if d.EnqueueNotify != nil {
		if err := d.EnqueueNotify(ctx, o.ID); err != nil {
			d.Logger.Warn("enqueue candidate notification failed", "order_id", o.ID, "error", err)
		}
	}
	return o, nil
}

// Candidates returns every professional whose profession and city match the
// order. An empty set is a valid answer, not an error.
func (d *Dispatch) Candidates(ctx context.Context, o *models.Order) ([]*models.Account, error) {
	return d.Accounts.FindProfessionals(ctx, o.Service, o.City)
}

// CandidatesByID loads the order and returns it with its candidate set.
func (d *Dispatch) CandidatesByID(ctx context.Context, orderID uuid.UUID) (*models.Order, []*models.Account, error) {
	o, err := d.Orders.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, fmt.Errorf("%w: order %s", ErrNotFound, orderID)
		}
		return nil, nil, err
	}
	pros, err := d.Candidates(ctx, o)
	if err != nil {
		return nil, nil, err
	}
	return o, pros, nil
}
