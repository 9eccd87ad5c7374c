package dto

import (
	"time"

	"tutormatch_backend/internal/models"
)

type CreateBookingRequest struct {
	TutorID string    `json:"tutor_id" validate:"required"`
	Date    time.Time `json:"date" validate:"required"`
	Message string    `json:"message" validate:"omitempty,max=500"`
}

type CreateBookingResponse struct {
	BookingID string               `json:"booking_id"`
	Status    models.BookingStatus `json:"status"`
}

type BookingListQuery struct {
	Status string `form:"status" validate:"is-booking-status"`
}

type BookingTutor struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Title  string `json:"title"`
	School string `json:"school"`
	Avatar string `json:"avatar"`
}

type BookingResponse struct {
	ID        string               `json:"id"`
	TutorID   string               `json:"tutor_id"`
	Tutor     BookingTutor         `json:"tutor"`
	Date      time.Time            `json:"date"`
	Message   string               `json:"message"`
	Status    models.BookingStatus `json:"status"`
	CreatedAt time.Time            `json:"created_at"`
}
