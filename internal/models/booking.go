package models

import "time"

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCancelled BookingStatus = "cancelled"
	BookingCompleted BookingStatus = "completed"
)

func (s BookingStatus) Valid() bool {
	switch s {
	case BookingPending, BookingConfirmed, BookingCancelled, BookingCompleted:
		return true
	}
	return false
}

// ActiveBookingStatuses hold a tutor's time slot.
var ActiveBookingStatuses = []BookingStatus{BookingPending, BookingConfirmed}

type Booking struct {
	BaseModel
	UserID  string        `gorm:"type:varchar(36);index;not null" json:"user_id"`
	TutorID string        `gorm:"type:varchar(36);index;not null" json:"tutor_id"`
	Date    time.Time     `gorm:"index;not null" json:"date"`
	Message string        `gorm:"type:text" json:"message"`
	Status  BookingStatus `gorm:"type:varchar(20);index;default:'pending'" json:"status"`
}
