package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/GTDGit/vtu_api/internal/models"
)

// OrderRepository handles data access for order history.
type OrderRepository struct {
	db *sqlx.DB
}

// NewOrderRepository creates a new OrderRepository.
func NewOrderRepository(db *sqlx.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// Create inserts an order record and fills its id and created_at.
func (r *OrderRepository) Create(ctx context.Context, o *models.OrderRecord) error {
	const q = `
        INSERT INTO orders (
            reference, session_id, service, provider, plan_id, customer_no,
            charged, credited, status, failed_reason, created_at
        ) VALUES (
            $1,$2,$3,$4,$5,$6,
            $7,$8,$9,$10,NOW()
        ) RETURNING id, created_at`

	return r.db.QueryRowxContext(ctx, q,
		o.Reference, o.SessionID, o.Service, o.Provider, o.PlanID, o.CustomerNo,
		o.Charged, o.Credited, o.Status, o.FailedReason,
	).Scan(&o.ID, &o.CreatedAt)
}

// ListRecent returns the newest orders first. An empty service lists every service.
func (r *OrderRepository) ListRecent(ctx context.Context, service models.ServiceType, limit int) ([]models.OrderRecord, error) {
	const q = `
        SELECT id, reference, session_id, service, provider, plan_id, customer_no,
               charged, credited, status, failed_reason, created_at
        FROM orders
        WHERE ($1 = '' OR service = $1)
        ORDER BY created_at DESC, id DESC
        LIMIT $2`

	list := []models.OrderRecord{}
	if err := r.db.SelectContext(ctx, &list, q, string(service), limit); err != nil {
		return nil, err
	}
	return list, nil
}

// ListBySession returns every order recorded for a session, oldest first.
func (r *OrderRepository) ListBySession(ctx context.Context, sessionID string) ([]models.OrderRecord, error) {
	const q = `
        SELECT id, reference, session_id, service, provider, plan_id, customer_no,
               charged, credited, status, failed_reason, created_at
        FROM orders
        WHERE session_id = $1
        ORDER BY created_at ASC, id ASC`

	list := []models.OrderRecord{}
	if err := r.db.SelectContext(ctx, &list, q, sessionID); err != nil {
		return nil, err
	}
	return list, nil
}
