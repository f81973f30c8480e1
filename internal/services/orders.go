package services

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
)

// TxBeginner abstracts transaction creation so tests don't need a pgxpool.Pool.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// OrderStateRepo is the order repository interface the state machine uses.
// AcceptPending and CompleteAccepted are conditional updates: they only fire
// while the stored status (and assignee) still match, and report whether they
// did. That check-and-set is the whole race story; no lock spans I/O.
type OrderStateRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*models.Order, error)
	AcceptPending(ctx context.Context, orderID, proID uuid.UUID) (bool, error)
	CompleteAccepted(ctx context.Context, tx pgx.Tx, orderID, proID uuid.UUID, amount int) (bool, error)
	SetRating(ctx context.Context, orderID uuid.UUID, rating int, feedback string) (bool, error)
}

// WalletTransfer is the ledger operation completion needs.
type WalletTransfer interface {
	Transfer(ctx context.Context, tx pgx.Tx, payerID, payeeID uuid.UUID, amount int, orderID *uuid.UUID) error
}

// Orders owns the order status state machine:
// pending -(accept)-> accepted -(complete)-> completed. Completed is terminal;
// rate is an annotation on completed orders and never changes status.
type Orders struct {
	Pool   TxBeginner
	Repo   OrderStateRepo
	Wallet WalletTransfer
	Logger *slog.Logger
}

func NewOrders(pool TxBeginner, repo OrderStateRepo, wallet WalletTransfer, logger *slog.Logger) *Orders {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orders{Pool: pool, Repo: repo, Wallet: wallet, Logger: logger}
}

// Accept assigns the order to the calling professional. Of N concurrent
// accepts on one pending order exactly one wins; the rest get
// ErrInvalidTransition and no partial state.
func (s *Orders) Accept(ctx context.Context, p auth.Principal, orderID uuid.UUID) (*models.Order, error) {
	if p.Role != models.RoleProfessional {
		return nil, fmt.Errorf("%w: only professionals accept orders", ErrUnauthorized)
	}
	ok, err := s.Repo.AcceptPending(ctx, orderID, p.AccountID)
	if err != nil {
		return nil, fmt.Errorf("accept order: %w", err)
	}
	if !ok {
		// Distinguish a missing order from a lost race.
		if _, err := s.Repo.GetByID(ctx, orderID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, fmt.Errorf("%w: order %s", ErrNotFound, orderID)
			}
			return nil, err
		}
		return nil, fmt.Errorf("%w: order is not pending", ErrInvalidTransition)
	}
	metrics.OrdersAccepted.Inc()
	o, err := s.Repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return o, nil
}

// Complete settles the order. Only the assigned professional may call it and
// only from accepted. For wallet orders the ledger transfer runs first,
// inside the same transaction as the status flip: insufficient funds rolls
// everything back and the order stays accepted for a retry. Cash orders never
// touch the ledger.
func (s *Orders) Complete(ctx context.Context, p auth.Principal, orderID uuid.UUID, amount int) (*models.Order, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", ErrValidation)
	}

	tx, err := s.Pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin complete tx: %w", err)
	}
	defer tx.Rollback(ctx)

	o, err := s.Repo.GetByIDForUpdate(ctx, tx, orderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: order %s", ErrNotFound, orderID)
		}
		return nil, err
	}
	if o.Status != models.OrderStatusAccepted {
		return nil, fmt.Errorf("%w: order is %s, not accepted", ErrInvalidTransition, o.Status)
	}
	if o.ProID == nil || *o.ProID != p.AccountID {
		return nil, fmt.Errorf("%w: caller is not the assigned professional", ErrUnauthorized)
	}

	if o.PaymentMode == models.PaymentWallet {
		if err := s.Wallet.Transfer(ctx, tx, o.CustomerID, p.AccountID, amount, &o.ID); err != nil {
			return nil, err
		}
	}

	ok, err := s.Repo.CompleteAccepted(ctx, tx, orderID, p.AccountID, amount)
	if err != nil {
		return nil, fmt.Errorf("complete order: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: order is no longer accepted", ErrInvalidTransition)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit complete tx: %w", err)
	}

	metrics.OrdersCompleted.WithLabelValues(string(o.PaymentMode)).Inc()
	o.Status = models.OrderStatusCompleted
	o.Amount = amount
	return o, nil
}

// Rate annotates a completed order. Callable only by the order's customer,
// idempotent, last write wins. Ratings are clamped to [1, 5].
func (s *Orders) Rate(ctx context.Context, p auth.Principal, orderID uuid.UUID, rating int, feedback string) error {
	o, err := s.Repo.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("%w: order %s", ErrNotFound, orderID)
		}
		return err
	}
	if o.CustomerID != p.AccountID {
		return fmt.Errorf("%w: caller is not the order's customer", ErrUnauthorized)
	}
	if o.Status != models.OrderStatusCompleted {
		return fmt.Errorf("%w: order is %s, not completed", ErrInvalidTransition, o.Status)
	}
	if rating < 1 {
		rating = 1
	}
	if rating > 5 {
		rating = 5
	}
	ok, err := s.Repo.SetRating(ctx, orderID, rating, feedback)
	if err != nil {
		return fmt.Errorf("rate order: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w: order is not completed", ErrInvalidTransition)
	}
	return nil
}
