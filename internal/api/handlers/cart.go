package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jafarshop/restaurant/internal/api/middleware"
	"github.com/jafarshop/restaurant/internal/cart"
	"github.com/jafarshop/restaurant/internal/domain"
	"github.com/jafarshop/restaurant/internal/pricing"
	"github.com/jafarshop/restaurant/internal/repository"
	"github.com/jafarshop/restaurant/internal/service"
)

// AddLineRequest represents an add-to-cart payload. Item data is copied into
// the line as given.
type AddLineRequest struct {
	ItemID    string            `json:"item_id" binding:"required"`
	Name      string            `json:"name" binding:"required"`
	Image     string            `json:"image"`
	BasePrice int64             `json:"base_price"`
	Variant   *domain.Variant   `json:"variant,omitempty"`
	Modifiers []domain.Modifier `json:"modifiers,omitempty"`
	Qty       int64             `json:"qty" binding:"omitempty,min=1"`
}

type SetQtyRequest struct {
	Qty *int64 `json:"qty" binding:"required"`
}

type DeliveryMethodRequest struct {
	Method domain.DeliveryMethod `json:"method" binding:"required,oneof=pickup delivery"`
}

type TipRequest struct {
	Amount *int64 `json:"amount" binding:"required"`
}

type ApplyCouponRequest struct {
	Code string `json:"code" binding:"required"`
}

// CartResponse represents the cart as shown to the storefront
type CartResponse struct {
	SessionID      string                  `json:"session_id"`
	Lines          []domain.CartLine       `json:"lines"`
	DeliveryMethod domain.DeliveryMethod   `json:"delivery_method"`
	Fees           domain.Fees             `json:"fees"`
	TaxRate        int64                   `json:"tax_rate"`
	Coupon         *domain.Coupon          `json:"coupon,omitempty"`
	Tip            int64                   `json:"tip"`
	Totals         domain.Totals           `json:"totals"`
	Display        pricing.FormattedTotals `json:"display"`
}

func buildCartResponse(sessionID uuid.UUID, store *cart.Store, formatter pricing.Formatter) CartResponse {
	snap, totals := store.SnapshotWithTotals()
	return CartResponse{
		SessionID:      sessionID.String(),
		Lines:          snap.Lines,
		DeliveryMethod: snap.DeliveryMethod,
		Fees:           snap.Fees,
		TaxRate:        snap.TaxRate,
		Coupon:         snap.Coupon,
		Tip:            snap.Tip,
		Totals:         totals,
		Display:        formatter.Totals(totals),
	}
}

func sessionIDFrom(c *gin.Context) (uuid.UUID, bool) {
	sessionID, ok := middleware.GetSessionID(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing cart session"})
	}
	return sessionID, ok
}

// sessionView returns the session's cart, or an unregistered empty one when
// the session has none yet. Handlers that add state to a cart register it
// with registry.Get once the request is known to be valid.
func sessionView(c *gin.Context, registry *cart.Registry) (uuid.UUID, *cart.Store, bool) {
	sessionID, ok := sessionIDFrom(c)
	if !ok {
		return uuid.Nil, nil, false
	}
	if store, found := registry.Lookup(sessionID); found {
		return sessionID, store, true
	}
	return sessionID, cart.NewStore(registry.Settings()), true
}

// HandleGetCart handles GET /v1/cart
func HandleGetCart(registry *cart.Registry, formatter pricing.Formatter) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID, store, ok := sessionView(c, registry)
		if !ok {
			return
		}
		c.JSON(http.StatusOK, buildCartResponse(sessionID, store, formatter))
	}
}

// HandleAddLine handles POST /v1/cart/lines
func HandleAddLine(registry *cart.Registry, formatter pricing.Formatter, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID, ok := sessionIDFrom(c)
		if !ok {
			return
		}

		var req AddLineRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			bindError(c, err)
			return
		}

		store := registry.Get(sessionID)
		line := store.AddLine(cart.AddLineInput{
			ItemID:    req.ItemID,
			Name:      req.Name,
			Image:     req.Image,
			BasePrice: req.BasePrice,
			Variant:   req.Variant,
			Modifiers: req.Modifiers,
			Qty:       req.Qty,
		})
		logger.Debug("Line added",
			zap.String("session_id", sessionID.String()),
			zap.String("line_id", line.ID),
			zap.String("item_id", line.ItemID),
		)

		c.JSON(http.StatusCreated, gin.H{
			"line": line,
			"cart": buildCartResponse(sessionID, store, formatter),
		})
	}
}

// HandleSetQty handles PATCH /v1/cart/lines/:id
func HandleSetQty(registry *cart.Registry, formatter pricing.Formatter) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID, store, ok := sessionView(c, registry)
		if !ok {
			return
		}

		var req SetQtyRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			bindError(c, err)
			return
		}

		if !store.SetQty(c.Param("id"), *req.Qty) {
			c.JSON(http.StatusNotFound, gin.H{"error": "line not found"})
			return
		}

		c.JSON(http.StatusOK, buildCartResponse(sessionID, store, formatter))
	}
}

// HandleRemoveLine handles DELETE /v1/cart/lines/:id. Removing an unknown
// line succeeds and leaves the cart unchanged.
func HandleRemoveLine(registry *cart.Registry, formatter pricing.Formatter) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID, store, ok := sessionView(c, registry)
		if !ok {
			return
		}

		store.RemoveLine(c.Param("id"))
		c.JSON(http.StatusOK, buildCartResponse(sessionID, store, formatter))
	}
}

// HandleSetDeliveryMethod handles PUT /v1/cart/delivery-method
func HandleSetDeliveryMethod(registry *cart.Registry, formatter pricing.Formatter) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID, ok := sessionIDFrom(c)
		if !ok {
			return
		}

		var req DeliveryMethodRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			bindError(c, err)
			return
		}

		store := registry.Get(sessionID)
		store.SetDeliveryMethod(req.Method)
		c.JSON(http.StatusOK, buildCartResponse(sessionID, store, formatter))
	}
}

// HandleSetTip handles PUT /v1/cart/tip
func HandleSetTip(registry *cart.Registry, formatter pricing.Formatter) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID, ok := sessionIDFrom(c)
		if !ok {
			return
		}

		var req TipRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			bindError(c, err)
			return
		}

		store := registry.Get(sessionID)
		store.SetTip(*req.Amount)
		c.JSON(http.StatusOK, buildCartResponse(sessionID, store, formatter))
	}
}

// HandleApplyCoupon handles POST /v1/cart/coupon
func HandleApplyCoupon(registry *cart.Registry, repos *repository.Repositories, formatter pricing.Formatter, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID, ok := sessionIDFrom(c)
		if !ok {
			return
		}

		var req ApplyCouponRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			bindError(c, err)
			return
		}

		couponService := service.NewCouponService(repos, logger)
		coupon, err := couponService.Lookup(c.Request.Context(), req.Code)
		if err != nil {
			respondError(c, logger, err, "Failed to look up coupon")
			return
		}

		store := registry.Get(sessionID)
		store.ApplyCoupon(*coupon)
		c.JSON(http.StatusOK, buildCartResponse(sessionID, store, formatter))
	}
}

// HandleClearCoupon handles DELETE /v1/cart/coupon
func HandleClearCoupon(registry *cart.Registry, formatter pricing.Formatter) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID, store, ok := sessionView(c, registry)
		if !ok {
			return
		}

		store.ClearCoupon()
		c.JSON(http.StatusOK, buildCartResponse(sessionID, store, formatter))
	}
}

// HandleClearCart handles DELETE /v1/cart
func HandleClearCart(registry *cart.Registry, formatter pricing.Formatter) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID, store, ok := sessionView(c, registry)
		if !ok {
			return
		}

		store.ClearCart()
		c.JSON(http.StatusOK, buildCartResponse(sessionID, store, formatter))
	}
}
