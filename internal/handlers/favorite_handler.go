package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tutormatch_backend/internal/auth"
	"tutormatch_backend/internal/middleware"
	"tutormatch_backend/internal/services"
	"tutormatch_backend/internal/services/dto"
)

type FavoriteHandler struct {
	*BaseHandler
	favoriteService services.FavoriteService
}

func NewFavoriteHandler(base *BaseHandler, favoriteService services.FavoriteService) *FavoriteHandler {
	return &FavoriteHandler{
		BaseHandler:     base,
		favoriteService: favoriteService,
	}
}

func (h *FavoriteHandler) RegisterRoutes(rg *gin.RouterGroup) {
	fav := rg.Group("/user")
	fav.Use(h.RequireAuth(), middleware.RequirePermission(auth.PermFavorite))
	{
		fav.POST("/favorite/toggle", h.Toggle)
		fav.GET("/favorites", h.List)
		fav.GET("/favorite/status/:tutor_id", h.Status)
		fav.POST("/favorite/batch-status", h.BatchStatus)
		fav.DELETE("/favorite/:tutor_id", h.Remove)
	}
}

func (h *FavoriteHandler) Toggle(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	var req dto.ToggleFavoriteRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	resp, err := h.favoriteService.Toggle(c.Request.Context(), h.GetDB(c), userID, req.TutorID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *FavoriteHandler) List(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	page, pageSize := ParsePagination(c)

	resp, err := h.favoriteService.List(c.Request.Context(), h.GetDB(c), userID, dto.Pagination{Page: page, PageSize: pageSize})
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *FavoriteHandler) Status(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	resp, err := h.favoriteService.Status(c.Request.Context(), h.GetDB(c), userID, c.Param("tutor_id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *FavoriteHandler) BatchStatus(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	var req dto.BatchStatusRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	status, err := h.favoriteService.BatchStatus(c.Request.Context(), h.GetDB(c), userID, req.TutorIDs)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": status})
}

func (h *FavoriteHandler) Remove(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	tutorID := c.Param("tutor_id")
	if err := h.favoriteService.Remove(c.Request.Context(), h.GetDB(c), userID, tutorID); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "取消收藏成功", "tutor_id": tutorID})
}
