package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jafarshop/restaurant/internal/config"
	"github.com/jafarshop/restaurant/internal/domain"
	"github.com/jafarshop/restaurant/internal/repository"
	"github.com/jafarshop/restaurant/internal/service"
	"github.com/jafarshop/restaurant/pkg/errors"
)

const adminKey = "admin_key"

// AdminAuthMiddleware requires a valid admin API key as a bearer token
func AdminAuthMiddleware(repos *repository.Repositories, cfg config.AdminConfig, logger *zap.Logger) gin.HandlerFunc {
	adminService := service.NewAdminService(repos, cfg.APIKeyHash, logger)

	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		apiKey := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		if authHeader == "" || apiKey == authHeader {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		key, err := adminService.Authenticate(c.Request.Context(), apiKey)
		if err != nil {
			if _, ok := err.(*errors.ErrUnauthorized); ok {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
				return
			}
			logger.Error("Failed to authenticate admin", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		c.Set(adminKey, key)
		c.Next()
	}
}

// GetAdminFromContext returns the admin key authenticated for the request
func GetAdminFromContext(c *gin.Context) (*domain.AdminKey, bool) {
	v, ok := c.Get(adminKey)
	if !ok {
		return nil, false
	}
	key, ok := v.(*domain.AdminKey)
	return key, ok
}
