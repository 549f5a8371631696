package middleware

import (
	"crypto/subtle"
	"log/slog"

	"github.com/gin-gonic/gin"
)

// ServiceKeyAuth lets schedulers call the API with a shared key in the x-api-key
// header instead of a user token. A matching key authenticates as serviceUserID;
// anything else falls through to the next auth middleware.
func ServiceKeyAuth(apiKey string, serviceUserID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if apiKey == "" {
			c.Next()
			return
		}

		provided := c.GetHeader("x-api-key")
		if provided == "" {
			c.Next()
			return
		}

		if subtle.ConstantTimeCompare([]byte(provided), []byte(apiKey)) != 1 {
			GetLoggerFromCtx(c.Request.Context()).Warn("Service key rejected", slog.String("ip", c.ClientIP()))
			c.Next()
			return
		}

		setUser(c, serviceUserID, "service_key")
		c.Next()
	}
}
