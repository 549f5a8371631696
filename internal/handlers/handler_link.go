package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	portssvc "github.com/SscSPs/finance_dashboard_app/internal/core/ports/services"
	"github.com/SscSPs/finance_dashboard_app/internal/dto"
	"github.com/SscSPs/finance_dashboard_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

// linkHandler handles linking of new provider credentials.
type linkHandler struct {
	linkService portssvc.LinkSvcFacade
}

func registerLinkRoutes(rg *gin.RouterGroup, linkService portssvc.LinkSvcFacade) {
	h := &linkHandler{linkService: linkService}

	link := rg.Group("/link")
	{
		link.GET("/token", h.createLinkToken)
		link.POST("/public_token", h.savePublicToken)
		link.POST("/teller", h.enrollTeller)
	}
}

// createLinkToken godoc
// @Summary Create a Plaid Link token
// @Description Returns a token that opens Plaid Link for the logged-in user
// @Tags link
// @Produce  json
// @Param   products query string false "Comma separated Plaid products"
// @Success 200 {object} dto.LinkTokenResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 502 {object} map[string]string "Plaid unavailable"
// @Failure 500 {object} map[string]string "Failed to create link token"
// @Security BearerAuth
// @Router /link/token [get]
func (h *linkHandler) createLinkToken(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	var products []string
	if raw := c.Query("products"); raw != "" {
		products = strings.Split(raw, ",")
	}

	token, err := h.linkService.CreateLinkToken(c.Request.Context(), userID, products)
	if err != nil {
		respondError(c, logger, "create link token", err)
		return
	}
	c.JSON(http.StatusOK, dto.LinkTokenResponse{LinkToken: token})
}

// savePublicToken godoc
// @Summary Save a Plaid public token
// @Description Exchanges the public token returned by Plaid Link and stores the item with its accounts
// @Tags link
// @Accept  json
// @Produce  json
// @Param   request body dto.SavePublicTokenRequest true "Public token"
// @Success 200 {object} dto.LinkResponse
// @Failure 400 {object} map[string]string "Invalid input format"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 502 {object} map[string]string "Plaid unavailable"
// @Failure 500 {object} map[string]string "Failed to save public token"
// @Security BearerAuth
// @Router /link/public_token [post]
func (h *linkHandler) savePublicToken(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.SavePublicTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for SavePublicToken", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	result, err := h.linkService.SavePublicToken(c.Request.Context(), userID, req.PublicToken)
	if err != nil {
		respondError(c, logger, "save public token", err)
		return
	}
	logger.Info("Plaid item linked", slog.String("item_id", result.ItemID), slog.Int("accounts_inserted", result.Accounts.Inserted))
	c.JSON(http.StatusOK, dto.ToLinkResponse(result))
}

// enrollTeller godoc
// @Summary Store a Teller enrollment
// @Description Stores every account reachable with a Teller Connect access token
// @Tags link
// @Accept  json
// @Produce  json
// @Param   request body dto.EnrollTellerRequest true "Teller enrollment"
// @Success 200 {object} dto.LinkResponse
// @Failure 400 {object} map[string]string "Invalid input format"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 502 {object} map[string]string "Teller unavailable"
// @Failure 500 {object} map[string]string "Failed to enroll Teller accounts"
// @Security BearerAuth
// @Router /link/teller [post]
func (h *linkHandler) enrollTeller(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.EnrollTellerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for EnrollTeller", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	result, err := h.linkService.EnrollTeller(c.Request.Context(), userID, req.AccessToken, req.EnrollmentID)
	if err != nil {
		respondError(c, logger, "enroll Teller accounts", err)
		return
	}
	c.JSON(http.StatusOK, dto.ToLinkResponse(result))
}
