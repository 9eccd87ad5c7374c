package handlers

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"tutormatch_backend/internal/auth"
	"tutormatch_backend/internal/middleware"
	"tutormatch_backend/internal/services"
	"tutormatch_backend/internal/services/dto"
)

type TutorHandler struct {
	*BaseHandler
	tutorService  services.TutorService
	exportService services.ExportService
}

func NewTutorHandler(base *BaseHandler, tutorService services.TutorService, exportService services.ExportService) *TutorHandler {
	return &TutorHandler{
		BaseHandler:   base,
		tutorService:  tutorService,
		exportService: exportService,
	}
}

func (h *TutorHandler) RegisterRoutes(rg *gin.RouterGroup) {
	tutor := rg.Group("/tutor")
	tutor.Use(h.OptionalAuth())
	{
		tutor.GET("/list", h.List)
		tutor.GET("/search", h.Search)
		tutor.GET("/search/suggestions", h.Suggestions)
		tutor.GET("/filter-options", h.FilterOptions)
		tutor.GET("/detail/:id", h.Detail)
	}

	admin := rg.Group("/tutor/admin")
	admin.Use(h.RequireAuth(), middleware.RequirePermission(auth.PermTutorManage))
	{
		admin.POST("/create", h.Create)
		admin.PUT("/update/:id", h.Update)
		admin.DELETE("/delete/:id", h.Delete)
		admin.POST("/batch-delete", h.BatchDelete)
		admin.POST("/batch-update", h.BatchUpdate)
		admin.POST("/restore/:id", h.Restore)
	}

	export := rg.Group("/tutor/export")
	export.Use(h.RequireAuth(), middleware.RequirePermission(auth.PermTutorExport))
	{
		export.GET("", h.Export)
		export.GET("/stats", h.ExportStats)
	}
}

// --- Public ---

func (h *TutorHandler) List(c *gin.Context) {
	var q dto.TutorListQuery
	if !h.BindAndValidate_Query(c, &q) {
		return
	}

	page, err := h.tutorService.List(c.Request.Context(), h.GetDB(c), &q)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *TutorHandler) Search(c *gin.Context) {
	var q dto.TutorSearchQuery
	if !h.BindAndValidate_Query(c, &q) {
		return
	}

	page, err := h.tutorService.Search(c.Request.Context(), h.GetDB(c), &q)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *TutorHandler) Suggestions(c *gin.Context) {
	var q dto.SuggestionQuery
	if !h.BindAndValidate_Query(c, &q) {
		return
	}

	suggestions, err := h.tutorService.Suggestions(c.Request.Context(), h.GetDB(c), &q)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"suggestions": suggestions})
}

func (h *TutorHandler) FilterOptions(c *gin.Context) {
	opts, err := h.tutorService.FilterOptions(c.Request.Context(), h.GetDB(c), c.Query("school"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, opts)
}

// Detail marks is_collected only for signed-in callers.
func (h *TutorHandler) Detail(c *gin.Context) {
	detail, err := h.tutorService.Detail(c.Request.Context(), h.GetDB(c), c.Param("id"), middleware.GetUserID(c))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

// --- Admin ---

func (h *TutorHandler) Create(c *gin.Context) {
	adminID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	var req dto.CreateTutorRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	tutor, err := h.tutorService.Create(c.Request.Context(), h.GetDB(c), adminID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, tutor)
}

func (h *TutorHandler) Update(c *gin.Context) {
	adminID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	var req dto.UpdateTutorRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	tutor, err := h.tutorService.Update(c.Request.Context(), h.GetDB(c), adminID, c.Param("id"), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, tutor)
}

func (h *TutorHandler) Delete(c *gin.Context) {
	adminID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	id := c.Param("id")
	if err := h.tutorService.Delete(c.Request.Context(), h.GetDB(c), adminID, id); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "导师信息已删除", "tutor_id": id})
}

func (h *TutorHandler) BatchDelete(c *gin.Context) {
	adminID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	var req dto.TutorIDsRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	result, err := h.tutorService.BatchDelete(c.Request.Context(), h.GetDB(c), adminID, req.TutorIDs)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *TutorHandler) BatchUpdate(c *gin.Context) {
	adminID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	var req dto.BatchUpdateRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	result, err := h.tutorService.BatchUpdate(c.Request.Context(), h.GetDB(c), adminID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *TutorHandler) Restore(c *gin.Context) {
	adminID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	id := c.Param("id")
	if err := h.tutorService.Restore(c.Request.Context(), h.GetDB(c), adminID, id); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "导师信息已恢复", "tutor_id": id})
}

// --- Export ---

func (h *TutorHandler) Export(c *gin.Context) {
	var q dto.ExportQuery
	if !h.BindAndValidate_Query(c, &q) {
		return
	}

	file, err := h.exportService.Export(c.Request.Context(), h.GetDB(c), &q)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename*=UTF-8''%s", url.PathEscape(file.Filename)))
	c.Header("X-Export-Rows", fmt.Sprint(file.Rows))
	c.Data(http.StatusOK, file.ContentType, file.Data)
}

func (h *TutorHandler) ExportStats(c *gin.Context) {
	var q dto.ExportQuery
	if !h.BindAndValidate_Query(c, &q) {
		return
	}

	stats, err := h.exportService.Stats(c.Request.Context(), h.GetDB(c), &q)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
