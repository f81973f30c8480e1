package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/blinkedin/backend/internal/auth"
	"github.com/blinkedin/backend/internal/models"
)

// OversightAccountRepo is the account repository interface for admin reads
// and removal. Removal is tx-scoped: the row is locked before the live-order
// check so the check and the delete commit together.
type OversightAccountRepo interface {
	List(ctx context.Context) ([]*models.Account, error)
	GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*models.Account, error)
	DeleteTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) error
}

// OversightOrderRepo supplies the aggregates oversight reads.
type OversightOrderRepo interface {
	SumCompletedAmount(ctx context.Context) (int64, error)
	CountActiveByAccount(ctx context.Context, tx pgx.Tx, accountID uuid.UUID) (int, error)
}

// OversightTransactionRepo reads the wallet journal.
type OversightTransactionRepo interface {
	List(ctx context.Context) ([]*models.Transaction, error)
}

// Oversight is admin-only read aggregation and account removal, layered on
// the account store and order repo. It never participates in the hot path.
type Oversight struct {
	Pool         TxBeginner
	Accounts     OversightAccountRepo
	Orders       OversightOrderRepo
	Transactions OversightTransactionRepo
	Logger       *slog.Logger
}

func NewOversight(pool TxBeginner, accounts OversightAccountRepo, orders OversightOrderRepo, transactions OversightTransactionRepo, logger *slog.Logger) *Oversight {
	if logger == nil {
		logger = slog.Default()
	}
	return &Oversight{Pool: pool, Accounts: accounts, Orders: orders, Transactions: transactions, Logger: logger}
}

func (s *Oversight) ListAccounts(ctx context.Context, p auth.Principal) ([]*models.Account, error) {
	if !p.IsAdmin() {
		return nil, fmt.Errorf("%w: admin only", ErrUnauthorized)
	}
	return s.Accounts.List(ctx)
}

// AggregateRevenue sums settlement amounts over completed orders only.
func (s *Oversight) AggregateRevenue(ctx context.Context, p auth.Principal) (int64, error) {
	if !p.IsAdmin() {
		return 0, fmt.Errorf("%w: admin only", ErrUnauthorized)
	}
	return s.Orders.SumCompletedAmount(ctx)
}

// ListTransactions returns the full wallet journal, newest first.
func (s *Oversight) ListTransactions(ctx context.Context, p auth.Principal) ([]*models.Transaction, error) {
	if !p.IsAdmin() {
		return nil, fmt.Errorf("%w: admin only", ErrUnauthorized)
	}
	return s.Transactions.List(ctx)
}

// DeleteAccount removes an account unless a non-terminal order still
// references it. The account row is locked and the live-order count runs in
// the same transaction as the delete, so the guard and the removal commit as
// one unit.
func (s *Oversight) DeleteAccount(ctx context.Context, p auth.Principal, id uuid.UUID) error {
	if !p.IsAdmin() {
		return fmt.Errorf("%w: admin only", ErrUnauthorized)
	}

	tx, err := s.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin delete tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := s.Accounts.GetByIDForUpdate(ctx, tx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("%w: account %s", ErrNotFound, id)
		}
		return err
	}
	n, err := s.Orders.CountActiveByAccount(ctx, tx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return fmt.Errorf("%w: account has %d active orders", ErrConflict, n)
	}
	if err := s.Accounts.DeleteTx(ctx, tx, id); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit delete tx: %w", err)
	}
	s.Logger.Info("account deleted", "account_id", id)
	return nil
}
