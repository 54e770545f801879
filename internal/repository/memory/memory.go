// Package memory implements the repositories with mutex-guarded maps. It
// backs the default storage driver and the service and handler tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jafarshop/restaurant/internal/domain"
	"github.com/jafarshop/restaurant/internal/repository"
	"github.com/jafarshop/restaurant/pkg/errors"
)

// NewRepositories creates empty in-memory repositories
func NewRepositories() *repository.Repositories {
	return &repository.Repositories{
		Coupon:     NewCouponRepository(),
		Order:      NewOrderRepository(),
		OrderLine:  NewOrderLineRepository(),
		OrderEvent: NewOrderEventRepository(),
		AdminKey:   NewAdminKeyRepository(),
	}
}

type couponRepository struct {
	mu      sync.RWMutex
	coupons map[string]domain.CouponDefinition
}

func NewCouponRepository() *couponRepository {
	return &couponRepository{coupons: make(map[string]domain.CouponDefinition)}
}

func (r *couponRepository) GetByCode(_ context.Context, code string) (*domain.CouponDefinition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	coupon, ok := r.coupons[code]
	if !ok {
		return nil, &errors.ErrNotFound{Resource: "coupon", ID: code}
	}
	return &coupon, nil
}

func (r *couponRepository) List(_ context.Context) ([]*domain.CouponDefinition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	coupons := make([]*domain.CouponDefinition, 0, len(r.coupons))
	for _, c := range r.coupons {
		c := c
		coupons = append(coupons, &c)
	}
	sort.Slice(coupons, func(i, j int) bool {
		if !coupons[i].CreatedAt.Equal(coupons[j].CreatedAt) {
			return coupons[i].CreatedAt.Before(coupons[j].CreatedAt)
		}
		return coupons[i].Code < coupons[j].Code
	})
	return coupons, nil
}

func (r *couponRepository) Create(_ context.Context, coupon *domain.CouponDefinition) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.coupons[coupon.Code]; exists {
		return &errors.ErrValidation{Field: "code", Message: "coupon code already exists"}
	}
	now := time.Now()
	if coupon.CreatedAt.IsZero() {
		coupon.CreatedAt = now
	}
	if coupon.UpdatedAt.IsZero() {
		coupon.UpdatedAt = now
	}
	r.coupons[coupon.Code] = *coupon
	return nil
}

func (r *couponRepository) SetActive(_ context.Context, code string, active bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	coupon, ok := r.coupons[code]
	if !ok {
		return &errors.ErrNotFound{Resource: "coupon", ID: code}
	}
	coupon.IsActive = active
	coupon.UpdatedAt = time.Now()
	r.coupons[code] = coupon
	return nil
}

type orderRepository struct {
	mu     sync.RWMutex
	orders map[uuid.UUID]domain.Order
}

func NewOrderRepository() *orderRepository {
	return &orderRepository{orders: make(map[uuid.UUID]domain.Order)}
}

func (r *orderRepository) Create(_ context.Context, order *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

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
	r.orders[order.ID] = *order
	return nil
}

func (r *orderRepository) GetByID(_ context.Context, id uuid.UUID) (*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.orders[id]
	if !ok {
		return nil, &errors.ErrNotFound{Resource: "order", ID: id.String()}
	}
	return &order, nil
}

func (r *orderRepository) List(_ context.Context, filter repository.OrderFilter) ([]*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	orders := make([]*domain.Order, 0, len(r.orders))
	for _, o := range r.orders {
		if filter.Status != nil && o.Status != *filter.Status {
			continue
		}
		o := o
		orders = append(orders, &o)
	}
	sort.Slice(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})

	if filter.Offset > 0 {
		if filter.Offset >= len(orders) {
			return []*domain.Order{}, nil
		}
		orders = orders[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(orders) {
		orders = orders[:filter.Limit]
	}
	return orders, nil
}

func (r *orderRepository) UpdateStatus(_ context.Context, id uuid.UUID, status domain.OrderStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[id]
	if !ok {
		return &errors.ErrNotFound{Resource: "order", ID: id.String()}
	}
	order.Status = status
	order.UpdatedAt = time.Now()
	r.orders[id] = order
	return nil
}

type orderLineRepository struct {
	mu    sync.RWMutex
	lines map[uuid.UUID][]domain.OrderLine
}

func NewOrderLineRepository() *orderLineRepository {
	return &orderLineRepository{lines: make(map[uuid.UUID][]domain.OrderLine)}
}

func (r *orderLineRepository) CreateBatch(_ context.Context, lines []*domain.OrderLine) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	for _, line := range lines {
		if line.ID == uuid.Nil {
			line.ID = uuid.New()
		}
		if line.CreatedAt.IsZero() {
			line.CreatedAt = now
		}
		r.lines[line.OrderID] = append(r.lines[line.OrderID], *line)
	}
	return nil
}

func (r *orderLineRepository) GetByOrderID(_ context.Context, orderID uuid.UUID) ([]*domain.OrderLine, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stored := r.lines[orderID]
	lines := make([]*domain.OrderLine, len(stored))
	for i := range stored {
		line := stored[i]
		lines[i] = &line
	}
	return lines, nil
}

type orderEventRepository struct {
	mu     sync.RWMutex
	events map[uuid.UUID][]domain.OrderEvent
}

func NewOrderEventRepository() *orderEventRepository {
	return &orderEventRepository{events: make(map[uuid.UUID][]domain.OrderEvent)}
}

func (r *orderEventRepository) Create(_ context.Context, event *domain.OrderEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}
	r.events[event.OrderID] = append(r.events[event.OrderID], *event)
	return nil
}

func (r *orderEventRepository) GetByOrderID(_ context.Context, orderID uuid.UUID) ([]*domain.OrderEvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stored := r.events[orderID]
	events := make([]*domain.OrderEvent, len(stored))
	for i := range stored {
		event := stored[i]
		events[i] = &event
	}
	return events, nil
}

type adminKeyRepository struct {
	mu   sync.RWMutex
	keys []domain.AdminKey
}

func NewAdminKeyRepository() *adminKeyRepository {
	return &adminKeyRepository{}
}

func (r *adminKeyRepository) Create(_ context.Context, key *domain.AdminKey) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	if key.ID == uuid.Nil {
		key.ID = uuid.New()
	}
	if key.CreatedAt.IsZero() {
		key.CreatedAt = now
	}
	if key.UpdatedAt.IsZero() {
		key.UpdatedAt = now
	}
	r.keys = append(r.keys, *key)
	return nil
}

func (r *adminKeyRepository) ListActive(_ context.Context) ([]*domain.AdminKey, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	keys := make([]*domain.AdminKey, 0, len(r.keys))
	for i := range r.keys {
		if r.keys[i].IsActive {
			key := r.keys[i]
			keys = append(keys, &key)
		}
	}
	return keys, nil
}
