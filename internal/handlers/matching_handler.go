package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tutormatch_backend/internal/auth"
	"tutormatch_backend/internal/middleware"
	"tutormatch_backend/internal/services"
	"tutormatch_backend/internal/services/dto"
)

type MatchingHandler struct {
	*BaseHandler
	matchingService services.MatchingService
}

func NewMatchingHandler(base *BaseHandler, matchingService services.MatchingService) *MatchingHandler {
	return &MatchingHandler{
		BaseHandler:     base,
		matchingService: matchingService,
	}
}

func (h *MatchingHandler) RegisterRoutes(rg *gin.RouterGroup) {
	match := rg.Group("/match")
	match.Use(h.RequireAuth(), middleware.RequirePermission(auth.PermMatch))
	{
		match.POST("/submit", h.Submit)
		match.GET("/history", h.History)
		match.GET("/history/:id", h.HistoryDetail)
	}
}

func (h *MatchingHandler) Submit(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	var req dto.MatchRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	resp, err := h.matchingService.Submit(c.Request.Context(), h.GetDB(c), userID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *MatchingHandler) History(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	page := dto.Pagination{
		Page:     ParseQueryInt(c, "page", 1),
		PageSize: ParseQueryInt(c, "page_size", 0),
	}
	page.Normalize(services.HistoryPageSize)

	resp, err := h.matchingService.History(c.Request.Context(), h.GetDB(c), userID, page)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// HistoryDetail answers 404 for foreign records as well as missing ones.
func (h *MatchingHandler) HistoryDetail(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	resp, err := h.matchingService.HistoryDetail(c.Request.Context(), h.GetDB(c), userID, c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
