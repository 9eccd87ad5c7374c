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

type BookingHandler struct {
	*BaseHandler
	bookingService services.BookingService
}

func NewBookingHandler(base *BaseHandler, bookingService services.BookingService) *BookingHandler {
	return &BookingHandler{
		BaseHandler:    base,
		bookingService: bookingService,
	}
}

func (h *BookingHandler) RegisterRoutes(rg *gin.RouterGroup) {
	svc := rg.Group("/service")
	svc.Use(h.RequireAuth(), middleware.RequirePermission(auth.PermBooking))
	{
		svc.POST("/book", h.Book)
		svc.GET("/bookings", h.List)
		svc.POST("/booking/:id/cancel", h.Cancel)
	}
}

func (h *BookingHandler) Book(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	var req dto.CreateBookingRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	resp, err := h.bookingService.Book(c.Request.Context(), h.GetDB(c), userID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *BookingHandler) List(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	var q dto.BookingListQuery
	if !h.BindAndValidate_Query(c, &q) {
		return
	}

	bookings, err := h.bookingService.List(c.Request.Context(), h.GetDB(c), userID, models.BookingStatus(q.Status))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"list": bookings, "total": len(bookings)})
}

func (h *BookingHandler) Cancel(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	id := c.Param("id")
	if err := h.bookingService.Cancel(c.Request.Context(), h.GetDB(c), userID, id); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "预约已取消", "booking_id": id})
}
