package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jafarshop/restaurant/internal/domain"
)

type orderLineRepository struct {
	db     DBTX
	logger *zap.Logger
}

// NewOrderLineRepository creates a new order line repository
func NewOrderLineRepository(db DBTX, logger *zap.Logger) *orderLineRepository {
	return &orderLineRepository{
		db:     db,
		logger: logger,
	}
}

// CreateBatch inserts all lines in one transaction, keeping their order. When
// the repository is already bound to a transaction the lines join it.
func (r *orderLineRepository) CreateBatch(ctx context.Context, lines []*domain.OrderLine) error {
	db, ok := r.db.(*sql.DB)
	if !ok {
		return r.createBatch(ctx, r.db, lines)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := r.createBatch(ctx, tx, lines); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *orderLineRepository) createBatch(ctx context.Context, db DBTX, lines []*domain.OrderLine) error {
	stmt, err := db.PrepareContext(ctx, `
		INSERT INTO order_lines
			(id, order_id, position, item_id, name, image, base_price, variant, modifiers, qty, line_total, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	now := time.Now()
	for i, line := range lines {
		if line.ID == uuid.Nil {
			line.ID = uuid.New()
		}
		if line.CreatedAt.IsZero() {
			line.CreatedAt = now
		}

		// jsonb parameters are sent as text; lib/pq would encode []byte as bytea
		var variant sql.NullString
		if line.Variant != nil {
			raw, err := json.Marshal(line.Variant)
			if err != nil {
				return fmt.Errorf("failed to encode variant: %w", err)
			}
			variant = sql.NullString{String: string(raw), Valid: true}
		}
		modifiers := line.Modifiers
		if modifiers == nil {
			modifiers = []domain.Modifier{}
		}
		mods, err := json.Marshal(modifiers)
		if err != nil {
			return fmt.Errorf("failed to encode modifiers: %w", err)
		}

		if _, err := stmt.ExecContext(ctx,
			line.ID,
			line.OrderID,
			i,
			line.ItemID,
			line.Name,
			line.Image,
			line.BasePrice,
			variant,
			string(mods),
			line.Qty,
			line.LineTotal,
			line.CreatedAt,
		); err != nil {
			r.logger.Error("Failed to create order line", zap.Error(err))
			return err
		}
	}

	return nil
}

func (r *orderLineRepository) GetByOrderID(ctx context.Context, orderID uuid.UUID) ([]*domain.OrderLine, error) {
	query := `
		SELECT id, order_id, item_id, name, image, base_price, variant, modifiers, qty, line_total, created_at
		FROM order_lines
		WHERE order_id = $1
		ORDER BY position
	`

	rows, err := r.db.QueryContext(ctx, query, orderID)
	if err != nil {
		r.logger.Error("Failed to get order lines", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	lines := make([]*domain.OrderLine, 0)
	for rows.Next() {
		var (
			line    domain.OrderLine
			image   sql.NullString
			variant []byte
			mods    []byte
		)
		if err := rows.Scan(
			&line.ID,
			&line.OrderID,
			&line.ItemID,
			&line.Name,
			&image,
			&line.BasePrice,
			&variant,
			&mods,
			&line.Qty,
			&line.LineTotal,
			&line.CreatedAt,
		); err != nil {
			return nil, err
		}

		line.Image = image.String
		if len(variant) > 0 {
			line.Variant = &domain.Variant{}
			if err := json.Unmarshal(variant, line.Variant); err != nil {
				return nil, fmt.Errorf("failed to decode variant: %w", err)
			}
		}
		if err := json.Unmarshal(mods, &line.Modifiers); err != nil {
			return nil, fmt.Errorf("failed to decode modifiers: %w", err)
		}
		lines = append(lines, &line)
	}

	return lines, rows.Err()
}
