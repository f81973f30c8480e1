package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/blinkedin/backend/internal/models"
)

type TransactionRepo struct {
	pool *pgxpool.Pool
}

func NewTransactionRepo(pool *pgxpool.Pool) *TransactionRepo {
	return &TransactionRepo{pool: pool}
}

// CreateTx writes one journal row inside the caller's transaction, so the row
// commits or rolls back together with the balance mutations it records.
func (r *TransactionRepo) CreateTx(ctx context.Context, tx pgx.Tx, t *models.Transaction) error {
	return tx.QueryRow(ctx, `
		INSERT INTO transactions (id, order_id, debit_account_id, credit_account_id, amount)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`, t.ID, t.OrderID, t.DebitAccountID, t.CreditAccountID, t.Amount).Scan(&t.CreatedAt)
}

func (r *TransactionRepo) List(ctx context.Context) ([]*models.Transaction, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, order_id, debit_account_id, credit_account_id, amount, created_at
		FROM transactions ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.Transaction
	for rows.Next() {
		var t models.Transaction
		if err := rows.Scan(&t.ID, &t.OrderID, &t.DebitAccountID, &t.CreditAccountID, &t.Amount, &t.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, &t)
	}
	return list, rows.Err()
}
