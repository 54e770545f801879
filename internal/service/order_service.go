package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jafarshop/restaurant/internal/cart"
	"github.com/jafarshop/restaurant/internal/domain"
	"github.com/jafarshop/restaurant/internal/repository"
	"github.com/jafarshop/restaurant/pkg/errors"
)

// CheckoutRequest represents the checkout payload
type CheckoutRequest struct {
	Customer CustomerInfo `json:"customer" binding:"required"`
	Address  *Address     `json:"address,omitempty"`
}

type CustomerInfo struct {
	Name  string  `json:"name" binding:"required"`
	Phone *string `json:"phone,omitempty"`
}

type Address struct {
	Line1 string `json:"line1"`
	City  string `json:"city"`
	Note  string `json:"note,omitempty"`
}

type orderService struct {
	repos  *repository.Repositories
	logger *zap.Logger
}

// NewOrderService creates a new order service
func NewOrderService(repos *repository.Repositories, logger *zap.Logger) *orderService {
	return &orderService{
		repos:  repos,
		logger: logger,
	}
}

// PlaceOrder turns the session's cart into an order. The order and its lines
// are stored in one transaction and the cart is cleared only once it commits.
func (s *orderService) PlaceOrder(
	ctx context.Context,
	sessionID uuid.UUID,
	store *cart.Store,
	req CheckoutRequest,
) (*domain.Order, []*domain.OrderLine, error) {
	var (
		order *domain.Order
		lines []*domain.OrderLine
	)

	err := store.Checkout(func(c domain.Cart, totals domain.Totals) error {
		if err := validateCheckout(c, req); err != nil {
			return err
		}

		order = &domain.Order{
			ID:             uuid.New(),
			SessionID:      sessionID,
			Status:         domain.OrderStatusPending,
			DeliveryMethod: c.DeliveryMethod,
			CustomerName:   strings.TrimSpace(req.Customer.Name),
			Subtotal:       totals.Subtotal,
			Discount:       totals.Discount,
			Tax:            totals.Tax,
			Fees:           totals.Fees,
			Tip:            c.Tip,
			GrandTotal:     totals.GrandTotal,
		}
		if req.Customer.Phone != nil {
			order.CustomerPhone = *req.Customer.Phone
		}
		if c.Coupon != nil {
			code := c.Coupon.Code
			order.CouponCode = &code
		}
		if req.Address != nil {
			order.Address = map[string]interface{}{
				"line1": req.Address.Line1,
				"city":  req.Address.City,
			}
			if req.Address.Note != "" {
				order.Address["note"] = req.Address.Note
			}
		}

		lines = make([]*domain.OrderLine, 0, len(c.Lines))
		for _, l := range c.Lines {
			lines = append(lines, &domain.OrderLine{
				OrderID:   order.ID,
				ItemID:    l.ItemID,
				Name:      l.Name,
				Image:     l.Image,
				BasePrice: l.BasePrice,
				Variant:   l.Variant,
				Modifiers: l.Modifiers,
				Qty:       l.Qty,
				LineTotal: l.LineTotal,
			})
		}
		return s.repos.WithTx(ctx, func(tx *repository.Repositories) error {
			if err := tx.Order.Create(ctx, order); err != nil {
				return err
			}
			return tx.OrderLine.CreateBatch(ctx, lines)
		})
	})
	if err != nil {
		return nil, nil, err
	}

	event := &domain.OrderEvent{
		OrderID:   order.ID,
		EventType: "order_placed",
		EventData: map[string]interface{}{
			"status":      order.Status,
			"grand_total": order.GrandTotal,
			"line_count":  len(lines),
		},
	}
	if err := s.repos.OrderEvent.Create(ctx, event); err != nil {
		s.logger.Warn("Failed to record order event", zap.Error(err))
	}

	s.logger.Info("Order placed",
		zap.String("order_id", order.ID.String()),
		zap.String("session_id", sessionID.String()),
		zap.Int64("grand_total", order.GrandTotal),
	)
	return order, lines, nil
}

func validateCheckout(c domain.Cart, req CheckoutRequest) error {
	if len(c.Lines) == 0 {
		return &errors.ErrValidation{Field: "cart", Message: "cart is empty"}
	}
	if strings.TrimSpace(req.Customer.Name) == "" {
		return &errors.ErrValidation{Field: "customer.name", Message: "is required"}
	}
	if c.DeliveryMethod == domain.DeliveryMethodDelivery {
		if req.Address == nil || strings.TrimSpace(req.Address.Line1) == "" || strings.TrimSpace(req.Address.City) == "" {
			return &errors.ErrValidation{Field: "address", Message: "line1 and city are required for delivery"}
		}
	}
	return nil
}

// GetOrder returns an order with its lines
func (s *orderService) GetOrder(ctx context.Context, id uuid.UUID) (*domain.Order, []*domain.OrderLine, error) {
	order, err := s.repos.Order.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	lines, err := s.repos.OrderLine.GetByOrderID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return order, lines, nil
}

// ListOrders returns orders newest first
func (s *orderService) ListOrders(ctx context.Context, filter repository.OrderFilter) ([]*domain.Order, error) {
	return s.repos.Order.List(ctx, filter)
}

// UpdateStatus moves an order along its lifecycle. actor names the admin key
// that made the change and is recorded on the event.
func (s *orderService) UpdateStatus(ctx context.Context, orderID uuid.UUID, status domain.OrderStatus, reason, actor string) (*domain.Order, error) {
	order, err := s.repos.Order.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	// Validate state transition
	if !order.Status.CanTransitionTo(status) {
		return nil, &errors.ErrInvalidStateTransition{
			From: order.Status,
			To:   status,
		}
	}

	if err := s.repos.Order.UpdateStatus(ctx, orderID, status); err != nil {
		return nil, err
	}

	// Log event
	event := &domain.OrderEvent{
		OrderID:   orderID,
		EventType: "status_change",
		EventData: map[string]interface{}{
			"from": order.Status,
			"to":   status,
		},
	}
	if reason != "" {
		event.EventData["reason"] = reason
	}
	if actor != "" {
		event.EventData["actor"] = actor
	}
	if err := s.repos.OrderEvent.Create(ctx, event); err != nil {
		s.logger.Warn("Failed to record order event", zap.Error(err))
	}

	return s.repos.Order.GetByID(ctx, orderID)
}
