package services

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/blinkedin/backend/internal/metrics"
	"github.com/blinkedin/backend/internal/models"
)

// WalletAccountRepo is the minimal account repository interface for the ledger.
type WalletAccountRepo interface {
	GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*models.Account, error)
	Debit(ctx context.Context, tx pgx.Tx, id uuid.UUID, amount int) (newBalance int, err error)
	Credit(ctx context.Context, tx pgx.Tx, id uuid.UUID, amount int) (newBalance int, err error)
}

// WalletTransactionRepo records the journal row for a transfer.
type WalletTransactionRepo interface {
	CreateTx(ctx context.Context, tx pgx.Tx, t *models.Transaction) error
}

// Wallet is the internal ledger. It moves value between accounts and never
// creates or destroys it; there is no reversal operation.
type Wallet struct {
	Accounts     WalletAccountRepo
	Transactions WalletTransactionRepo
}

func NewWallet(accounts WalletAccountRepo, transactions WalletTransactionRepo) *Wallet {
	return &Wallet{Accounts: accounts, Transactions: transactions}
}

// Transfer debits payer and credits payee inside the caller's transaction.
// Both rows are locked in deterministic UUID order before any mutation, so
// concurrent transfers over overlapping account pairs serialize instead of
// deadlocking. The balance check and the debit are one conditional UPDATE;
// an uncovered amount fails with ErrInsufficientFunds and mutates nothing.
func (w *Wallet) Transfer(ctx context.Context, tx pgx.Tx, payerID, payeeID uuid.UUID, amount int, orderID *uuid.UUID) error {
	if amount <= 0 {
		return fmt.Errorf("%w: transfer amount must be positive", ErrValidation)
	}
	if payerID == payeeID {
		return fmt.Errorf("%w: payer and payee must differ", ErrValidation)
	}

	ids := []uuid.UUID{payerID, payeeID}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
	for _, id := range ids {
		if _, err := w.Accounts.GetByIDForUpdate(ctx, tx, id); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return fmt.Errorf("%w: account %s", ErrNotFound, id)
			}
			return err
		}
	}

	if _, err := w.Accounts.Debit(ctx, tx, payerID, amount); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrInsufficientFunds
		}
		return err
	}
	if _, err := w.Accounts.Credit(ctx, tx, payeeID, amount); err != nil {
		return err
	}
	if err := w.Transactions.CreateTx(ctx, tx, &models.Transaction{
		ID:              uuid.New(),
		OrderID:         orderID,
		DebitAccountID:  payerID,
		CreditAccountID: payeeID,
		Amount:          amount,
	}); err != nil {
		return err
	}
	metrics.WalletTransferred.Add(float64(amount))
	return nil
}
