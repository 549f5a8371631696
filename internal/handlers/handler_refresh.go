package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/finance_dashboard_app/internal/core/ports/services"
	"github.com/SscSPs/finance_dashboard_app/internal/dto"
	"github.com/SscSPs/finance_dashboard_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

type refreshHandler struct {
	refreshService portssvc.RefreshSvcFacade
}

func registerRefreshRoutes(rg *gin.RouterGroup, refreshService portssvc.RefreshSvcFacade) {
	h := &refreshHandler{refreshService: refreshService}

	refresh := rg.Group("/refresh")
	{
		refresh.POST("/item", h.refreshItem)
		refresh.POST("/all", h.refreshAll)
	}
}

// refreshItem godoc
// @Summary Refresh a Plaid item
// @Description Pulls every transaction of an item since its last successful refresh. Answers status "waiting" during the cooldown.
// @Tags refresh
// @Accept  json
// @Produce  json
// @Param   request body dto.RefreshItemRequest true "Item to refresh"
// @Success 200 {object} dto.RefreshItemResponse
// @Failure 400 {object} map[string]string "Invalid input format"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Item not found"
// @Failure 502 {object} map[string]string "Plaid unavailable"
// @Failure 500 {object} map[string]string "Failed to refresh item"
// @Security BearerAuth
// @Router /refresh/item [post]
func (h *refreshHandler) refreshItem(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.RefreshItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for RefreshItem", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	logger = logger.With(slog.String("item_id", req.ItemID))

	result, err := h.refreshService.RefreshItem(c.Request.Context(), req.ItemID)
	if err != nil {
		respondError(c, logger, "refresh item", err)
		return
	}
	c.JSON(http.StatusOK, dto.ToRefreshItemResponse(result))
}

// refreshAll godoc
// @Summary Refresh every account
// @Description Refreshes all accounts of the caller one after another; failures are reported per account
// @Tags refresh
// @Produce  json
// @Success 200 {object} dto.RefreshAllResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to refresh accounts"
// @Security BearerAuth
// @Router /refresh/all [post]
func (h *refreshHandler) refreshAll(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	results, err := h.refreshService.RefreshAll(c.Request.Context(), userID)
	if err != nil {
		respondError(c, logger, "refresh accounts", err)
		return
	}
	resp := dto.ToRefreshAllResponse(results)
	logger.Info("Refresh all finished", slog.Int("accounts", len(resp.Accounts)), slog.Int("failed", resp.Failed))
	c.JSON(http.StatusOK, resp)
}
