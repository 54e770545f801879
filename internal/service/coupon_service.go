package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/jafarshop/restaurant/internal/domain"
	"github.com/jafarshop/restaurant/internal/repository"
	"github.com/jafarshop/restaurant/pkg/errors"
)

// WelcomeCoupon is seeded into empty coupon stores
var WelcomeCoupon = domain.CouponDefinition{
	Code:     "WELCOME15",
	Kind:     domain.CouponKindPercent,
	Value:    15,
	IsActive: true,
}

// CreateCouponRequest represents an admin coupon creation payload
type CreateCouponRequest struct {
	Code  string            `json:"code" binding:"required"`
	Type  domain.CouponKind `json:"type" binding:"required"`
	Value int64             `json:"value" binding:"min=0"`
}

type couponService struct {
	repos  *repository.Repositories
	logger *zap.Logger
}

// NewCouponService creates a new coupon service
func NewCouponService(repos *repository.Repositories, logger *zap.Logger) *couponService {
	return &couponService{
		repos:  repos,
		logger: logger,
	}
}

// Lookup resolves a code entered by a customer to an active coupon. An exact
// match wins; otherwise the upper-cased code is tried, since codes are issued
// upper-case.
func (s *couponService) Lookup(ctx context.Context, code string) (*domain.Coupon, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, &errors.ErrCouponNotFound{Code: code}
	}

	def, err := s.repos.Coupon.GetByCode(ctx, code)
	if _, ok := err.(*errors.ErrNotFound); ok {
		if upper := strings.ToUpper(code); upper != code {
			def, err = s.repos.Coupon.GetByCode(ctx, upper)
		}
	}
	if err != nil {
		if _, ok := err.(*errors.ErrNotFound); ok {
			return nil, &errors.ErrCouponNotFound{Code: code}
		}
		return nil, err
	}

	if !def.IsActive {
		s.logger.Info("Inactive coupon requested", zap.String("code", def.Code))
		return nil, &errors.ErrCouponNotFound{Code: code}
	}

	return def.Coupon()
}

// Create issues a new coupon. Codes are stored upper-case.
func (s *couponService) Create(ctx context.Context, req CreateCouponRequest) (*domain.CouponDefinition, error) {
	code := strings.ToUpper(strings.TrimSpace(req.Code))
	if code == "" {
		return nil, &errors.ErrValidation{Field: "code", Message: "must not be empty"}
	}
	if !req.Type.IsValid() {
		return nil, &errors.ErrValidation{Field: "type", Message: "must be percent or fixed"}
	}
	if req.Value < 0 {
		return nil, &errors.ErrValidation{Field: "value", Message: "must not be negative"}
	}
	if req.Type == domain.CouponKindPercent && req.Value > 100 {
		return nil, &errors.ErrValidation{Field: "value", Message: "percent must be between 0 and 100"}
	}

	def := &domain.CouponDefinition{
		Code:     code,
		Kind:     req.Type,
		Value:    req.Value,
		IsActive: true,
	}
	if err := s.repos.Coupon.Create(ctx, def); err != nil {
		return nil, err
	}

	s.logger.Info("Coupon created",
		zap.String("code", def.Code),
		zap.String("type", string(def.Kind)),
		zap.Int64("value", def.Value),
	)
	return def, nil
}

// List returns every coupon, active or not
func (s *couponService) List(ctx context.Context) ([]*domain.CouponDefinition, error) {
	return s.repos.Coupon.List(ctx)
}

// Deactivate stops a code from resolving. Carts that already hold the coupon
// keep it.
func (s *couponService) Deactivate(ctx context.Context, code string) error {
	code = strings.ToUpper(strings.TrimSpace(code))
	if err := s.repos.Coupon.SetActive(ctx, code, false); err != nil {
		return err
	}
	s.logger.Info("Coupon deactivated", zap.String("code", code))
	return nil
}

// EnsureSeed creates the welcome coupon when no coupons exist yet
func (s *couponService) EnsureSeed(ctx context.Context) error {
	existing, err := s.repos.Coupon.List(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}
	seed := WelcomeCoupon
	return s.repos.Coupon.Create(ctx, &seed)
}
