package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jafarshop/restaurant/internal/api/handlers"
	"github.com/jafarshop/restaurant/internal/api/middleware"
	"github.com/jafarshop/restaurant/internal/cart"
	"github.com/jafarshop/restaurant/internal/config"
	"github.com/jafarshop/restaurant/internal/pricing"
	"github.com/jafarshop/restaurant/internal/repository"
)

// NewRouter creates and configures the Gin router
func NewRouter(cfg *config.Config, repos *repository.Repositories, registry *cart.Registry, logger *zap.Logger) *gin.Engine {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	formatter := pricing.NewFormatter(cfg.Cart.CurrencySymbol)

	// Middleware
	router.Use(gin.Recovery())
	router.Use(loggingMiddleware(logger))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// API v1 routes
	v1 := router.Group("/v1")
	{
		// Storefront routes, keyed by cart session
		storefront := v1.Group("")
		storefront.Use(middleware.SessionMiddleware(logger))
		{
			storefront.GET("/cart", handlers.HandleGetCart(registry, formatter))
			storefront.DELETE("/cart", handlers.HandleClearCart(registry, formatter))
			storefront.POST("/cart/lines", handlers.HandleAddLine(registry, formatter, logger))
			storefront.PATCH("/cart/lines/:id", handlers.HandleSetQty(registry, formatter))
			storefront.DELETE("/cart/lines/:id", handlers.HandleRemoveLine(registry, formatter))
			storefront.PUT("/cart/delivery-method", handlers.HandleSetDeliveryMethod(registry, formatter))
			storefront.PUT("/cart/tip", handlers.HandleSetTip(registry, formatter))
			storefront.POST("/cart/coupon", handlers.HandleApplyCoupon(registry, repos, formatter, logger))
			storefront.DELETE("/cart/coupon", handlers.HandleClearCoupon(registry, formatter))
			storefront.POST("/checkout", handlers.HandleCheckout(registry, repos, formatter, logger))
			storefront.GET("/orders/:id", handlers.HandleGetOrder(repos, formatter, logger))
		}

		// Back office routes
		adminRoutes := v1.Group("/admin")
		adminRoutes.Use(middleware.AdminAuthMiddleware(repos, cfg.Admin, logger))
		{
			adminRoutes.GET("/coupons", handlers.HandleListCoupons(repos, formatter, logger))
			adminRoutes.POST("/coupons", handlers.HandleCreateCoupon(repos, formatter, logger))
			adminRoutes.DELETE("/coupons/:code", handlers.HandleDeactivateCoupon(repos, logger))
			adminRoutes.GET("/orders", handlers.HandleListOrders(repos, formatter, logger))
			adminRoutes.POST("/orders/:id/status", handlers.HandleUpdateOrderStatus(repos, formatter, logger))
		}
	}

	return router
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		status := c.Writer.Status()
		logger.Info("HTTP request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
		)
	}
}
