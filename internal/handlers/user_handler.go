package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tutormatch_backend/internal/services"
	"tutormatch_backend/internal/services/dto"
	"tutormatch_backend/pkg/apperrors"
)

type UserHandler struct {
	*BaseHandler
	userService services.UserService
	maxUpload   int64
}

func NewUserHandler(base *BaseHandler, userService services.UserService, maxUpload int64) *UserHandler {
	return &UserHandler{
		BaseHandler: base,
		userService: userService,
		maxUpload:   maxUpload,
	}
}

func (h *UserHandler) RegisterRoutes(rg *gin.RouterGroup) {
	user := rg.Group("/user")
	user.Use(h.RequireAuth())
	{
		user.GET("/profile", h.GetProfile)
		user.PUT("/profile", h.UpdateProfile)
		user.PATCH("/profile", h.UpdateProfile)
		user.POST("/avatar", h.UploadAvatar)
	}
}

func (h *UserHandler) GetProfile(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	profile, err := h.userService.GetProfile(c.Request.Context(), h.GetDB(c), userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// UpdateProfile serves both PUT and PATCH; absent fields stay untouched.
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.UpdateProfileRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	resp, err := h.userService.UpdateProfile(c.Request.Context(), h.GetDB(c), userID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *UserHandler) UploadAvatar(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	header, err := c.FormFile("file")
	if err != nil {
		apperrors.HandleError(c, apperrors.NewBadRequestError("请选择要上传的文件"))
		return
	}
	if h.maxUpload > 0 && header.Size > h.maxUpload {
		apperrors.HandleError(c, apperrors.New(apperrors.CodeValidationFailed, "upload", "文件过大", http.StatusRequestEntityTooLarge))
		return
	}

	file, err := header.Open()
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	defer file.Close()

	resp, err := h.userService.UploadAvatar(c.Request.Context(), h.GetDB(c), userID, file)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
