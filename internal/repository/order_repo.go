package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/blinkedin/backend/internal/models"
)

type OrderRepo struct {
	pool *pgxpool.Pool
}

func NewOrderRepo(pool *pgxpool.Pool) *OrderRepo {
	return &OrderRepo{pool: pool}
}

const orderColumns = `id, customer_id, customer_name, service, pickup_address, drop_address, city, status, pro_id, amount, payment_mode, cust_lat, cust_lng, rating, feedback, created_at, updated_at`

func scanOrder(row pgx.Row) (*models.Order, error) {
	var o models.Order
	err := row.Scan(&o.ID, &o.CustomerID, &o.CustomerName, &o.Service, &o.PickupAddress, &o.DropAddress, &o.City, &o.Status, &o.ProID, &o.Amount, &o.PaymentMode, &o.CustLat, &o.CustLng, &o.Rating, &o.Feedback, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *OrderRepo) Create(ctx context.Context, o *models.Order) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO orders (id, customer_id, customer_name, service, pickup_address, drop_address, city, status, pro_id, amount, payment_mode, cust_lat, cust_lng, rating, feedback)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING created_at, updated_at
	`, o.ID, o.CustomerID, o.CustomerName, o.Service, o.PickupAddress, o.DropAddress, o.City, o.Status, o.ProID, o.Amount, o.PaymentMode, o.CustLat, o.CustLng, o.Rating, o.Feedback).Scan(&o.CreatedAt, &o.UpdatedAt)
}

func (r *OrderRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	return scanOrder(r.pool.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id))
}

// GetByIDForUpdate locks the order row for update. Call within a transaction.
func (r *OrderRepo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*models.Order, error) {
	return scanOrder(tx.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1 FOR UPDATE`, id))
}

// AcceptPending is the compare-and-set for concurrent acceptance: the UPDATE
// only fires while the stored status is still pending, so of N concurrent
// callers exactly one observes a true return.
func (r *OrderRepo) AcceptPending(ctx context.Context, orderID, proID uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE orders SET status = $3, pro_id = $2, updated_at = now()
		WHERE id = $1 AND status = $4
	`, orderID, proID, models.OrderStatusAccepted, models.OrderStatusPending)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// CompleteAccepted finalizes the order inside the caller's transaction,
// conditional on status still being accepted and proID being the assignee.
func (r *OrderRepo) CompleteAccepted(ctx context.Context, tx pgx.Tx, orderID, proID uuid.UUID, amount int) (bool, error) {
	tag, err := tx.Exec(ctx, `
		UPDATE orders SET status = $4, amount = $3, updated_at = now()
		WHERE id = $1 AND status = $5 AND pro_id = $2
	`, orderID, proID, amount, models.OrderStatusCompleted, models.OrderStatusAccepted)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// SetRating writes the rating annotation. Last write wins; the status guard
// keeps a racing completion from being annotated early.
func (r *OrderRepo) SetRating(ctx context.Context, orderID uuid.UUID, rating int, feedback string) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE orders SET rating = $2, feedback = $3, updated_at = now()
		WHERE id = $1 AND status = $4
	`, orderID, rating, feedback, models.OrderStatusCompleted)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *OrderRepo) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]*models.Order, error) {
	return r.list(ctx, `SELECT `+orderColumns+` FROM orders WHERE customer_id = $1 ORDER BY created_at DESC`, customerID)
}

func (r *OrderRepo) ListByProfessional(ctx context.Context, proID uuid.UUID) ([]*models.Order, error) {
	return r.list(ctx, `SELECT `+orderColumns+` FROM orders WHERE pro_id = $1 ORDER BY created_at DESC`, proID)
}

// ListOpenByService returns pending orders for a profession in a city,
// oldest first — the work feed a pro sees.
func (r *OrderRepo) ListOpenByService(ctx context.Context, service, city string) ([]*models.Order, error) {
	return r.list(ctx, `
		SELECT `+orderColumns+` FROM orders
		WHERE service = $1 AND city = $2 AND status = $3
		ORDER BY created_at
	`, service, city, models.OrderStatusPending)
}

func (r *OrderRepo) list(ctx context.Context, sql string, args ...any) ([]*models.Order, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, o)
	}
	return list, rows.Err()
}

// SumCompletedAmount is total revenue: completed orders only. Orders that
// never reached completion contribute nothing.
func (r *OrderRepo) SumCompletedAmount(ctx context.Context) (int64, error) {
	var sum int64
	err := r.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(amount), 0) FROM orders WHERE status = $1
	`, models.OrderStatusCompleted).Scan(&sum)
	return sum, err
}

// CountActiveByAccount counts non-terminal orders referencing the account as
// either party. It runs in the caller's transaction so the count and the
// deletion it guards see the same snapshot. A nonzero count blocks deletion.
func (r *OrderRepo) CountActiveByAccount(ctx context.Context, tx pgx.Tx, accountID uuid.UUID) (int, error) {
	var n int
	err := tx.QueryRow(ctx, `
		SELECT COUNT(*) FROM orders
		WHERE (customer_id = $1 OR pro_id = $1) AND status <> $2
	`, accountID, models.OrderStatusCompleted).Scan(&n)
	return n, err
}
