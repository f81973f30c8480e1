package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/blinkedin/backend/internal/models"
)

type AccountRepo struct {
	pool *pgxpool.Pool
}

func NewAccountRepo(pool *pgxpool.Pool) *AccountRepo {
	return &AccountRepo{pool: pool}
}

const accountColumns = `id, email, name, password_hash, role, profession, city, lat, lng, phone, wallet_balance, created_at, updated_at`

func scanAccount(row pgx.Row) (*models.Account, error) {
	var a models.Account
	err := row.Scan(&a.ID, &a.Email, &a.Name, &a.PasswordHash, &a.Role, &a.Profession, &a.City, &a.Lat, &a.Lng, &a.Phone, &a.WalletBalance, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AccountRepo) Create(ctx context.Context, a *models.Account) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO accounts (id, email, name, password_hash, role, profession, city, lat, lng, phone, wallet_balance)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at, updated_at
	`, a.ID, a.Email, a.Name, a.PasswordHash, a.Role, a.Profession, a.City, a.Lat, a.Lng, a.Phone, a.WalletBalance).Scan(&a.CreatedAt, &a.UpdatedAt)
}

func (r *AccountRepo) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	return scanAccount(r.pool.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE email = $1`, email))
}

// DeleteTx removes the account inside the caller's transaction, after the
// caller has locked the row and verified nothing live references it.
func (r *AccountRepo) DeleteTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) error {
	_, err := tx.Exec(ctx, "DELETE FROM accounts WHERE id = $1", id)
	return err
}

func (r *AccountRepo) List(ctx context.Context) ([]*models.Account, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+accountColumns+` FROM accounts ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, a)
	}
	return list, rows.Err()
}

// FindProfessionals returns every pro account registered under the given
// profession in the given city. Candidate matching is exact equality on both.
func (r *AccountRepo) FindProfessionals(ctx context.Context, profession, city string) ([]*models.Account, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+accountColumns+` FROM accounts
		WHERE role = $1 AND profession = $2 AND city = $3
		ORDER BY created_at
	`, models.RoleProfessional, profession, city)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, a)
	}
	return list, rows.Err()
}

// GetByIDForUpdate locks the account row for update. Call within a transaction.
func (r *AccountRepo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*models.Account, error) {
	return scanAccount(tx.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = $1 FOR UPDATE`, id))
}

// Debit atomically deducts amount from the wallet if the balance covers it.
// Returns the new balance; pgx.ErrNoRows means the balance was insufficient.
func (r *AccountRepo) Debit(ctx context.Context, tx pgx.Tx, id uuid.UUID, amount int) (newBalance int, err error) {
	err = tx.QueryRow(ctx, `
		UPDATE accounts SET wallet_balance = wallet_balance - $1, updated_at = now()
		WHERE id = $2 AND wallet_balance >= $1
		RETURNING wallet_balance
	`, amount, id).Scan(&newBalance)
	return newBalance, err
}

// Credit adds amount to the wallet and returns the new balance.
func (r *AccountRepo) Credit(ctx context.Context, tx pgx.Tx, id uuid.UUID, amount int) (newBalance int, err error) {
	err = tx.QueryRow(ctx, `
		UPDATE accounts SET wallet_balance = wallet_balance + $1, updated_at = now()
		WHERE id = $2
		RETURNING wallet_balance
	`, amount, id).Scan(&newBalance)
	return newBalance, err
}

// Promote sets the account role. Used only by the offline bootstrap command.
func (r *AccountRepo) Promote(ctx context.Context, id uuid.UUID, role models.Role) error {
	_, err := r.pool.Exec(ctx, `UPDATE accounts SET role = $2, updated_at = now() WHERE id = $1`, id, role)
	return err
}
