package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jafarshop/restaurant/internal/api/middleware"
	"github.com/jafarshop/restaurant/internal/domain"
	"github.com/jafarshop/restaurant/internal/pricing"
	"github.com/jafarshop/restaurant/internal/repository"
	"github.com/jafarshop/restaurant/internal/service"
)

// UpdateOrderStatusRequest represents an order status change
type UpdateOrderStatusRequest struct {
	Status domain.OrderStatus `json:"status" binding:"required"`
	Reason string             `json:"reason,omitempty"`
}

// CouponResponse represents a coupon in the back office
type CouponResponse struct {
	Code      string            `json:"code"`
	Type      domain.CouponKind `json:"type"`
	Value     int64             `json:"value"`
	Display   string            `json:"display"`
	IsActive  bool              `json:"is_active"`
	CreatedAt string            `json:"created_at"`
}

// actorName names the admin key behind the request, empty when none is set
func actorName(c *gin.Context) string {
	if key, ok := middleware.GetAdminFromContext(c); ok {
		return key.Name
	}
	return ""
}

func buildCouponResponse(def *domain.CouponDefinition, formatter pricing.Formatter) CouponResponse {
	display := formatter.Percent(def.Value)
	if def.Kind == domain.CouponKindFixed {
		display = formatter.Money(def.Value)
	}
	return CouponResponse{
		Code:      def.Code,
		Type:      def.Kind,
		Value:     def.Value,
		Display:   display,
		IsActive:  def.IsActive,
		CreatedAt: def.CreatedAt.Format(time.RFC3339),
	}
}

// HandleListCoupons handles GET /v1/admin/coupons
func HandleListCoupons(repos *repository.Repositories, formatter pricing.Formatter, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		couponService := service.NewCouponService(repos, logger)
		coupons, err := couponService.List(c.Request.Context())
		if err != nil {
			respondError(c, logger, err, "Failed to list coupons")
			return
		}

		response := make([]CouponResponse, len(coupons))
		for i, def := range coupons {
			response[i] = buildCouponResponse(def, formatter)
		}

		c.JSON(http.StatusOK, gin.H{"coupons": response})
	}
}

// HandleCreateCoupon handles POST /v1/admin/coupons
func HandleCreateCoupon(repos *repository.Repositories, formatter pricing.Formatter, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req service.CreateCouponRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			bindError(c, err)
			return
		}

		couponService := service.NewCouponService(repos, logger)
		def, err := couponService.Create(c.Request.Context(), req)
		if err != nil {
			respondError(c, logger, err, "Failed to create coupon")
			return
		}
		logger.Info("Coupon created",
			zap.String("code", def.Code),
			zap.String("actor", actorName(c)),
		)

		c.JSON(http.StatusCreated, buildCouponResponse(def, formatter))
	}
}

// HandleDeactivateCoupon handles DELETE /v1/admin/coupons/:code
func HandleDeactivateCoupon(repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		couponService := service.NewCouponService(repos, logger)
		if err := couponService.Deactivate(c.Request.Context(), c.Param("code")); err != nil {
			respondError(c, logger, err, "Failed to deactivate coupon")
			return
		}
		logger.Info("Coupon deactivated",
			zap.String("code", c.Param("code")),
			zap.String("actor", actorName(c)),
		)

		c.Status(http.StatusNoContent)
	}
}

// HandleListOrders handles GET /v1/admin/orders
func HandleListOrders(repos *repository.Repositories, formatter pricing.Formatter, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Parse query parameters
		statusStr := c.Query("status")
		limitStr := c.DefaultQuery("limit", "50")
		offsetStr := c.DefaultQuery("offset", "0")

		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit < 1 || limit > 100 {
			limit = 50
		}

		offset, err := strconv.Atoi(offsetStr)
		if err != nil || offset < 0 {
			offset = 0
		}

		filter := repository.OrderFilter{Limit: limit, Offset: offset}
		if statusStr != "" {
			status := domain.OrderStatus(statusStr)
			if !status.IsValid() {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
				return
			}
			filter.Status = &status
		}

		orderService := service.NewOrderService(repos, logger)
		orders, err := orderService.ListOrders(c.Request.Context(), filter)
		if err != nil {
			respondError(c, logger, err, "Failed to list orders")
			return
		}

		response := make([]OrderResponse, len(orders))
		for i, order := range orders {
			response[i] = buildOrderResponse(order, nil, formatter)
		}

		c.JSON(http.StatusOK, gin.H{
			"orders": response,
			"limit":  limit,
			"offset": offset,
		})
	}
}

// HandleUpdateOrderStatus handles POST /v1/admin/orders/:id/status
func HandleUpdateOrderStatus(repos *repository.Repositories, formatter pricing.Formatter, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		orderID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order ID"})
			return
		}

		var req UpdateOrderStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			bindError(c, err)
			return
		}
		if !req.Status.IsValid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
			return
		}

		actor := actorName(c)
		orderService := service.NewOrderService(repos, logger)
		order, err := orderService.UpdateStatus(c.Request.Context(), orderID, req.Status, req.Reason, actor)
		if err != nil {
			respondError(c, logger, err, "Failed to update order status")
			return
		}
		logger.Info("Order status updated",
			zap.String("order_id", orderID.String()),
			zap.String("status", string(req.Status)),
			zap.String("actor", actor),
		)

		c.JSON(http.StatusOK, buildOrderResponse(order, nil, formatter))
	}
}
