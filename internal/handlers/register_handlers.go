package handlers

import (
	"net/http"

	"github.com/SscSPs/finance_dashboard_app/cmd/docs"
	portssvc "github.com/SscSPs/finance_dashboard_app/internal/core/ports/services"
	"github.com/SscSPs/finance_dashboard_app/internal/middleware"
	"github.com/SscSPs/finance_dashboard_app/internal/platform/config"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// RegisterRoutes sets up all application routes, injecting dependencies using interfaces
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
) {
	registerValidators()

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	setupAPIV1Routes(r, cfg, services)
	setupSwaggerRoutes(r, cfg)
}

// authChain picks how callers of /api/v1 are identified. A valid service key
// always works; otherwise a bearer token is required unless auth is disabled.
func authChain(cfg *config.Config) []gin.HandlerFunc {
	chain := []gin.HandlerFunc{middleware.ServiceKeyAuth(cfg.ServiceAPIKey, cfg.DefaultUserID)}
	if cfg.AuthDisabled {
		return append(chain, middleware.StaticUserMiddleware(cfg.DefaultUserID))
	}
	return append(chain, middleware.AuthMiddleware(cfg.JWTSecret))
}

func setupAPIV1Routes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
) {
	v1 := r.Group("/api/v1", authChain(cfg)...)

	registerLinkRoutes(v1, services.Link)
	registerAccountRoutes(v1, services.Account, services.Refresh)
	registerRefreshRoutes(v1, services.Refresh)
	registerTransactionRoutes(v1, services.Transaction)
	registerReportingRoutes(v1, services.Reporting)
}

func setupSwaggerRoutes(r *gin.Engine, cfg *config.Config) {
	if cfg.IsProduction {
		//no swagger in prod
		return
	}
	docs.SwaggerInfo.BasePath = "/api/v1"
	swagger := r.Group("/swagger")
	swagger.GET("/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}
