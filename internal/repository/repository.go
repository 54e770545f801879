package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/jafarshop/restaurant/internal/domain"
)

// CouponRepository stores coupon definitions. Codes are unique.
type CouponRepository interface {
	GetByCode(ctx context.Context, code string) (*domain.CouponDefinition, error)
	List(ctx context.Context) ([]*domain.CouponDefinition, error)
	Create(ctx context.Context, coupon *domain.CouponDefinition) error
	SetActive(ctx context.Context, code string, active bool) error
}

// OrderRepository stores placed orders
type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	List(ctx context.Context, filter OrderFilter) ([]*domain.Order, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.OrderStatus) error
}

// OrderFilter narrows List. A zero Limit means no limit.
type OrderFilter struct {
	Status *domain.OrderStatus
	Limit  int
	Offset int
}

// OrderLineRepository stores the lines of placed orders
type OrderLineRepository interface {
	CreateBatch(ctx context.Context, lines []*domain.OrderLine) error
	GetByOrderID(ctx context.Context, orderID uuid.UUID) ([]*domain.OrderLine, error)
}

// OrderEventRepository stores the audit trail of orders
type OrderEventRepository interface {
	Create(ctx context.Context, event *domain.OrderEvent) error
	GetByOrderID(ctx context.Context, orderID uuid.UUID) ([]*domain.OrderEvent, error)
}

// AdminKeyRepository stores back-office API keys
type AdminKeyRepository interface {
	Create(ctx context.Context, key *domain.AdminKey) error
	ListActive(ctx context.Context) ([]*domain.AdminKey, error)
}

// Repositories bundles every repository the services need
type Repositories struct {
	Coupon     CouponRepository
	Order      OrderRepository
	OrderLine  OrderLineRepository
	OrderEvent OrderEventRepository
	AdminKey   AdminKeyRepository

	// RunInTx runs fn against repositories bound to one transaction,
	// committing when fn returns nil. Nil when the backend has no
	// transactions.
	RunInTx func(ctx context.Context, fn func(*Repositories) error) error
}

// WithTx runs fn so that its writes land together or not at all. Backends
// without transactions run fn directly against r.
func (r *Repositories) WithTx(ctx context.Context, fn func(*Repositories) error) error {
	if r.RunInTx == nil {
		return fn(r)
	}
	return r.RunInTx(ctx, fn)
}
