package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jafarshop/restaurant/internal/cart"
	"github.com/jafarshop/restaurant/internal/domain"
	"github.com/jafarshop/restaurant/internal/pricing"
	"github.com/jafarshop/restaurant/internal/repository"
	"github.com/jafarshop/restaurant/internal/service"
)

// OrderResponse represents the order response
type OrderResponse struct {
	ID             string                  `json:"id"`
	Status         domain.OrderStatus      `json:"status"`
	DeliveryMethod domain.DeliveryMethod   `json:"delivery_method"`
	CustomerName   string                  `json:"customer_name"`
	CustomerPhone  string                  `json:"customer_phone,omitempty"`
	Address        map[string]interface{}  `json:"address,omitempty"`
	CouponCode     *string                 `json:"coupon_code,omitempty"`
	Totals         domain.Totals           `json:"totals"`
	Tip            int64                   `json:"tip"`
	Display        pricing.FormattedTotals `json:"display"`
	Lines          []OrderLineResponse     `json:"lines,omitempty"`
	CreatedAt      string                  `json:"created_at"`
	UpdatedAt      string                  `json:"updated_at"`
}

type OrderLineResponse struct {
	ItemID    string            `json:"item_id"`
	Name      string            `json:"name"`
	Image     string            `json:"image,omitempty"`
	BasePrice int64             `json:"base_price"`
	Variant   *domain.Variant   `json:"variant,omitempty"`
	Modifiers []domain.Modifier `json:"modifiers"`
	Qty       int64             `json:"qty"`
	LineTotal int64             `json:"line_total"`
}

func buildOrderResponse(order *domain.Order, lines []*domain.OrderLine, formatter pricing.Formatter) OrderResponse {
	totals := domain.Totals{
		Subtotal:   order.Subtotal,
		Discount:   order.Discount,
		Tax:        order.Tax,
		Fees:       order.Fees,
		GrandTotal: order.GrandTotal,
	}

	response := OrderResponse{
		ID:             order.ID.String(),
		Status:         order.Status,
		DeliveryMethod: order.DeliveryMethod,
		CustomerName:   order.CustomerName,
		CustomerPhone:  order.CustomerPhone,
		Address:        order.Address,
		CouponCode:     order.CouponCode,
		Totals:         totals,
		Tip:            order.Tip,
		Display:        formatter.Totals(totals),
		CreatedAt:      order.CreatedAt.Format(time.RFC3339),
		UpdatedAt:      order.UpdatedAt.Format(time.RFC3339),
	}

	if lines != nil {
		response.Lines = make([]OrderLineResponse, len(lines))
		for i, line := range lines {
			response.Lines[i] = OrderLineResponse{
				ItemID:    line.ItemID,
				Name:      line.Name,
				Image:     line.Image,
				BasePrice: line.BasePrice,
				Variant:   line.Variant,
				Modifiers: line.Modifiers,
				Qty:       line.Qty,
				LineTotal: line.LineTotal,
			}
		}
	}

	return response
}

// HandleCheckout handles POST /v1/checkout
func HandleCheckout(registry *cart.Registry, repos *repository.Repositories, formatter pricing.Formatter, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID, store, ok := sessionView(c, registry)
		if !ok {
			return
		}

		var req service.CheckoutRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			bindError(c, err)
			return
		}

		orderService := service.NewOrderService(repos, logger)
		order, lines, err := orderService.PlaceOrder(c.Request.Context(), sessionID, store, req)
		if err != nil {
			respondError(c, logger, err, "Failed to place order")
			return
		}

		c.JSON(http.StatusCreated, buildOrderResponse(order, lines, formatter))
	}
}

// HandleGetOrder handles GET /v1/orders/:id. Orders are only visible to the
// session that placed them.
func HandleGetOrder(repos *repository.Repositories, formatter pricing.Formatter, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID, ok := sessionIDFrom(c)
		if !ok {
			return
		}

		orderID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order ID"})
			return
		}

		orderService := service.NewOrderService(repos, logger)
		order, lines, err := orderService.GetOrder(c.Request.Context(), orderID)
		if err != nil {
			respondError(c, logger, err, "Failed to get order")
			return
		}

		if order.SessionID != sessionID {
			c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
			return
		}

		c.JSON(http.StatusOK, buildOrderResponse(order, lines, formatter))
	}
}
