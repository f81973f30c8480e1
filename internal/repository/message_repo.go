package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/blinkedin/backend/internal/models"
)

type MessageRepo struct {
	pool *pgxpool.Pool
}

func NewMessageRepo(pool *pgxpool.Pool) *MessageRepo {
	return &MessageRepo{pool: pool}
}

func (r *MessageRepo) Create(ctx context.Context, m *models.Message) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO messages (id, order_id, sender_id, sender_name, content, msg_type)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`, m.ID, m.OrderID, m.SenderID, m.SenderName, m.Content, m.Type).Scan(&m.CreatedAt)
}

// ListByOrder returns the full persisted history for an order in
// non-decreasing timestamp order.
func (r *MessageRepo) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]*models.Message, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, order_id, sender_id, sender_name, content, msg_type, created_at
		FROM messages WHERE order_id = $1 ORDER BY created_at, id
	`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.Message
	for rows.Next() {
		var m models.Message
		if err := rows.Scan(&m.ID, &m.OrderID, &m.SenderID, &m.SenderName, &m.Content, &m.Type, &m.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, &m)
	}
	return list, rows.Err()
}
