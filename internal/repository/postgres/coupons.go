package postgres

import (
	"context"
	"database/sql"
	"time"

	"go.uber.org/zap"

	"github.com/jafarshop/restaurant/internal/domain"
	"github.com/jafarshop/restaurant/pkg/errors"
)

type couponRepository struct {
	db     DBTX
	logger *zap.Logger
}

// NewCouponRepository creates a new coupon repository
func NewCouponRepository(db DBTX, logger *zap.Logger) *couponRepository {
	return &couponRepository{
		db:     db,
		logger: logger,
	}
}

func (r *couponRepository) GetByCode(ctx context.Context, code string) (*domain.CouponDefinition, error) {
	query := `
		SELECT code, kind, value, is_active, created_at, updated_at
		FROM coupons
		WHERE code = $1
	`

	var coupon domain.CouponDefinition
	err := r.db.QueryRowContext(ctx, query, code).Scan(
		&coupon.Code,
		&coupon.Kind,
		&coupon.Value,
		&coupon.IsActive,
		&coupon.CreatedAt,
		&coupon.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, &errors.ErrNotFound{Resource: "coupon", ID: code}
	}
	if err != nil {
		r.logger.Error("Failed to get coupon by code", zap.Error(err))
		return nil, err
	}

	return &coupon, nil
}

func (r *couponRepository) List(ctx context.Context) ([]*domain.CouponDefinition, error) {
	query := `
		SELECT code, kind, value, is_active, created_at, updated_at
		FROM coupons
		ORDER BY created_at, code
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		r.logger.Error("Failed to list coupons", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	coupons := make([]*domain.CouponDefinition, 0)
	for rows.Next() {
		var coupon domain.CouponDefinition
		if err := rows.Scan(
			&coupon.Code,
			&coupon.Kind,
			&coupon.Value,
			&coupon.IsActive,
			&coupon.CreatedAt,
			&coupon.UpdatedAt,
		); err != nil {
			return nil, err
		}
		coupons = append(coupons, &coupon)
	}

	return coupons, rows.Err()
}

func (r *couponRepository) Create(ctx context.Context, coupon *domain.CouponDefinition) error {
	query := `
		INSERT INTO coupons (code, kind, value, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	now := time.Now()
	if coupon.CreatedAt.IsZero() {
		coupon.CreatedAt = now
	}
	if coupon.UpdatedAt.IsZero() {
		coupon.UpdatedAt = now
	}

	_, err := r.db.ExecContext(ctx, query,
		coupon.Code,
		coupon.Kind,
		coupon.Value,
		coupon.IsActive,
		coupon.CreatedAt,
		coupon.UpdatedAt,
	)

	if isUniqueViolation(err) {
		return &errors.ErrValidation{Field: "code", Message: "coupon code already exists"}
	}
	if err != nil {
		r.logger.Error("Failed to create coupon", zap.Error(err))
		return err
	}

	return nil
}

func (r *couponRepository) SetActive(ctx context.Context, code string, active bool) error {
	query := `
		UPDATE coupons
		SET is_active = $2, updated_at = $3
		WHERE code = $1
	`

	res, err := r.db.ExecContext(ctx, query, code, active, time.Now())
	if err != nil {
		r.logger.Error("Failed to update coupon", zap.Error(err))
		return err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return &errors.ErrNotFound{Resource: "coupon", ID: code}
	}

	return nil
}
