package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SessionHeader carries the cart session id in both directions
const SessionHeader = "X-Cart-Session"

const sessionKey = "cart_session_id"

// SessionMiddleware resolves the cart session of a request. A missing or
// malformed header starts a new session, returned in the response header.
func SessionMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader(SessionHeader)
		sessionID, err := uuid.Parse(raw)
		if err != nil || sessionID == uuid.Nil {
			if raw != "" {
				logger.Debug("Ignoring malformed session header", zap.String("value", raw))
			}
			sessionID = uuid.New()
		}

		c.Set(sessionKey, sessionID)
		c.Header(SessionHeader, sessionID.String())
		c.Next()
	}
}

// GetSessionID returns the session resolved by SessionMiddleware
func GetSessionID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(sessionKey)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}
