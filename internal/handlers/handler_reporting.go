package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/finance_dashboard_app/internal/core/ports/services"
	"github.com/SscSPs/finance_dashboard_app/internal/dto"
	"github.com/SscSPs/finance_dashboard_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

// reportingHandler serves the aggregated dashboard views.
type reportingHandler struct {
	reportingService portssvc.ReportingSvcFacade
}

func registerReportingRoutes(rg *gin.RouterGroup, reportingService portssvc.ReportingSvcFacade) {
	h := &reportingHandler{reportingService: reportingService}

	rg.GET("/reports/cash-flow", h.cashFlow)
	rg.GET("/institutions", h.institutions)
	rg.GET("/items/:itemID/holdings", h.holdings)

	groups := rg.Group("/groups")
	{
		groups.POST("", h.saveGroup)
		groups.GET("", h.listGroups)
	}
}

// cashFlow godoc
// @Summary Monthly cash flow
// @Description Income and expenses per calendar month, oldest month first
// @Tags reports
// @Produce  json
// @Success 200 {object} dto.CashFlowResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to build cash flow report"
// @Security BearerAuth
// @Router /reports/cash-flow [get]
func (h *reportingHandler) cashFlow(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	report, err := h.reportingService.CashFlow(c.Request.Context())
	if err != nil {
		respondError(c, logger, "build cash flow report", err)
		return
	}
	c.JSON(http.StatusOK, dto.ToCashFlowResponse(report))
}

// institutions godoc
// @Summary Institutions overview
// @Description Linked items and accounts grouped by institution
// @Tags reports
// @Produce  json
// @Success 200 {array} domain.InstitutionSummary
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to list institutions"
// @Security BearerAuth
// @Router /institutions [get]
func (h *reportingHandler) institutions(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	summaries, err := h.reportingService.Institutions(c.Request.Context())
	if err != nil {
		respondError(c, logger, "list institutions", err)
		return
	}
	c.JSON(http.StatusOK, summaries)
}

// holdings godoc
// @Summary Investment holdings of an item
// @Tags reports
// @Produce  json
// @Param   itemID path string true "Plaid item id"
// @Success 200 {array} domain.Holding
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Item not found"
// @Failure 502 {object} map[string]string "Plaid unavailable"
// @Failure 500 {object} map[string]string "Failed to get holdings"
// @Security BearerAuth
// @Router /items/{itemID}/holdings [get]
func (h *reportingHandler) holdings(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	itemID := c.Param("itemID")

	holdings, err := h.reportingService.Holdings(c.Request.Context(), itemID)
	if err != nil {
		respondError(c, logger.With(slog.String("item_id", itemID)), "get holdings", err)
		return
	}
	c.JSON(http.StatusOK, holdings)
}

// saveGroup godoc
// @Summary Save an account group
// @Tags groups
// @Accept  json
// @Produce  json
// @Param   request body dto.SaveGroupRequest true "Group name and member accounts"
// @Success 201 {object} dto.GroupResponse
// @Failure 400 {object} map[string]string "Invalid input format or unknown account"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 409 {object} map[string]string "Group name already used"
// @Failure 500 {object} map[string]string "Failed to save group"
// @Security BearerAuth
// @Router /groups [post]
func (h *reportingHandler) saveGroup(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.SaveGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for SaveGroup", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	group, err := h.reportingService.SaveGroup(c.Request.Context(), userID, req.GroupName, req.AccountIDs)
	if err != nil {
		respondError(c, logger, "save group", err)
		return
	}
	c.JSON(http.StatusCreated, dto.ToGroupResponse(group))
}

// listGroups godoc
// @Summary List account groups
// @Tags groups
// @Produce  json
// @Success 200 {array} dto.GroupResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to list groups"
// @Security BearerAuth
// @Router /groups [get]
func (h *reportingHandler) listGroups(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	groups, err := h.reportingService.ListGroups(c.Request.Context(), userID)
	if err != nil {
		respondError(c, logger, "list groups", err)
		return
	}
	c.JSON(http.StatusOK, dto.ToListGroupResponse(groups))
}
