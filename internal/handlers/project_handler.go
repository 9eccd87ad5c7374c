package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tutormatch_backend/internal/auth"
	"tutormatch_backend/internal/middleware"
	"tutormatch_backend/internal/models"
	"tutormatch_backend/internal/services"
	"tutormatch_backend/internal/services/dto"
)

type ProjectHandler struct {
	*BaseHandler
	projectService services.ProjectService
}

func NewProjectHandler(base *BaseHandler, projectService services.ProjectService) *ProjectHandler {
	return &ProjectHandler{
		BaseHandler:    base,
		projectService: projectService,
	}
}

func (h *ProjectHandler) RegisterRoutes(rg *gin.RouterGroup) {
	public := rg.Group("/project")
	{
		public.GET("/list", h.List)
		public.GET("/detail/:id", h.Detail)
	}

	protected := rg.Group("/project")
	protected.Use(h.RequireAuth(), middleware.RequirePermission(auth.PermProjectApply))
	{
		protected.POST("/apply", h.Apply)
		protected.GET("/applications", h.Applications)
	}
}

func (h *ProjectHandler) List(c *gin.Context) {
	var q dto.ProjectListQuery
	if !h.BindAndValidate_Query(c, &q) {
		return
	}

	page, err := h.projectService.List(c.Request.Context(), h.GetDB(c), &q)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *ProjectHandler) Detail(c *gin.Context) {
	project, err := h.projectService.Detail(c.Request.Context(), h.GetDB(c), c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, project)
}

func (h *ProjectHandler) Apply(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	var req dto.ApplyProjectRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	resp, err := h.projectService.Apply(c.Request.Context(), h.GetDB(c), userID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *ProjectHandler) Applications(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	var q dto.ApplicationListQuery
	if !h.BindAndValidate_Query(c, &q) {
		return
	}

	apps, err := h.projectService.Applications(c.Request.Context(), h.GetDB(c), userID, models.ApplicationStatus(q.Status))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"list": apps, "total": len(apps)})
}
