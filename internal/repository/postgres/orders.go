package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jafarshop/restaurant/internal/domain"
	"github.com/jafarshop/restaurant/internal/repository"
	"github.com/jafarshop/restaurant/pkg/errors"
)

const orderColumns = `
	id, session_id, status, delivery_method, customer_name, customer_phone, address,
	coupon_code, subtotal, discount, tax, fees, tip, grand_total, created_at, updated_at
`

type orderRepository struct {
	db     DBTX
	logger *zap.Logger
}

// NewOrderRepository creates a new order repository
func NewOrderRepository(db DBTX, logger *zap.Logger) *orderRepository {
	return &orderRepository{
		db:     db,
		logger: logger,
	}
}

func (r *orderRepository) Create(ctx context.Context, order *domain.Order) error {
	query := `
		INSERT INTO orders (` + orderColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`

	now := time.Now()
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	if order.CreatedAt.IsZero() {
		order.CreatedAt = now
	}
	if order.UpdatedAt.IsZero() {
		order.UpdatedAt = now
	}

	address, err := json.Marshal(order.Address)
	if err != nil {
		return fmt.Errorf("failed to encode address: %w", err)
	}

	_, err = r.db.ExecContext(ctx, query,
		order.ID,
		order.SessionID,
		order.Status,
		order.DeliveryMethod,
		order.CustomerName,
		nullString(order.CustomerPhone),
		string(address),
		order.CouponCode,
		order.Subtotal,
		order.Discount,
		order.Tax,
		order.Fees,
		order.Tip,
		order.GrandTotal,
		order.CreatedAt,
		order.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create order", zap.Error(err))
		return err
	}

	return nil
}

func (r *orderRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	order, err := scanOrder(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, &errors.ErrNotFound{Resource: "order", ID: id.String()}
	}
	if err != nil {
		r.logger.Error("Failed to get order by ID", zap.Error(err))
		return nil, err
	}

	return order, nil
}

func (r *orderRepository) List(ctx context.Context, filter repository.OrderFilter) ([]*domain.Order, error) {
	var (
		where []string
		args  []interface{}
	)
	if filter.Status != nil {
		args = append(args, *filter.Status)
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}

	query := `SELECT ` + orderColumns + ` FROM orders`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC"
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list orders", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	orders := make([]*domain.Order, 0)
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}

	return orders, rows.Err()
}

func (r *orderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.OrderStatus) error {
	query := `
		UPDATE orders
		SET status = $2, updated_at = $3
		WHERE id = $1
	`

	res, err := r.db.ExecContext(ctx, query, id, status, time.Now())
	if err != nil {
		r.logger.Error("Failed to update order status", zap.Error(err))
		return err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return &errors.ErrNotFound{Resource: "order", ID: id.String()}
	}

	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanOrder(row rowScanner) (*domain.Order, error) {
	var (
		order      domain.Order
		phone      sql.NullString
		address    []byte
		couponCode sql.NullString
	)

	err := row.Scan(
		&order.ID,
		&order.SessionID,
		&order.Status,
		&order.DeliveryMethod,
		&order.CustomerName,
		&phone,
		&address,
		&couponCode,
		&order.Subtotal,
		&order.Discount,
		&order.Tax,
		&order.Fees,
		&order.Tip,
		&order.GrandTotal,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if phone.Valid {
		order.CustomerPhone = phone.String
	}
	if couponCode.Valid {
		order.CouponCode = &couponCode.String
	}
	if len(address) > 0 {
		if err := json.Unmarshal(address, &order.Address); err != nil {
			return nil, fmt.Errorf("failed to decode address: %w", err)
		}
	}

	return &order, nil
}
