package middleware

import (
	"net/http"
	"strings"

	"github.com/SscSPs/finance_dashboard_app/internal/utils"
	"github.com/gin-gonic/gin"
)

// pathsToSkip contains paths that should not be tracked by PostHog
var pathsToSkip = map[string]bool{
	"/health": true,
}

// PosthogMiddleware creates a Gin middleware handler that tracks API events with PostHog
func PosthogMiddleware(posthogClient *utils.PosthogClientWrapper) gin.HandlerFunc {
	return func(c *gin.Context) {
		if posthogClient == nil || !posthogClient.IsInitialized() || pathsToSkip[c.Request.URL.Path] {
			c.Next()
			return
		}

		c.Next()

		if len(c.Errors) > 0 || c.Writer.Status() >= http.StatusBadRequest {
			return
		}

		userID, exists := GetUserIDFromContext(c)
		if !exists {
			return
		}

		eventName := EventNameForRoute(c.FullPath())
		if eventName == "" {
			return
		}

		props := map[string]any{
			"method":      c.Request.Method,
			"status_code": c.Writer.Status(),
		}
		// Route params are account and item ids; only their names are tracked.
		if len(c.Params) > 0 {
			keys := make([]string, 0, len(c.Params))
			for _, param := range c.Params {
				keys = append(keys, param.Key)
			}
			props["params"] = keys
		}

		posthogClient.Enqueue(userID, eventName, props)
	}
}

// EventNameForRoute turns "/api/v1/accounts/:accountID/refresh" into
// "api_v1_accounts_accountID_refresh".
func EventNameForRoute(route string) string {
	name := strings.TrimPrefix(route, "/")
	name = strings.ReplaceAll(name, ":", "")
	name = strings.ReplaceAll(name, "*", "")
	return strings.ReplaceAll(name, "/", "_")
}
