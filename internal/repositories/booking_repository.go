package repositories

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"tutormatch_backend/internal/models"
)

var ErrBookingNotFound = errors.New("booking not found")

type BookingRepository interface {
	Create(db *gorm.DB, booking *models.Booking) error
	FindByID(db *gorm.DB, id string) (*models.Booking, error)
	FindActiveSlot(db *gorm.DB, tutorID string, date time.Time) (*models.Booking, error)
	ListByUser(db *gorm.DB, userID string, status models.BookingStatus) ([]models.Booking, error)
	UpdateStatus(db *gorm.DB, id string, from, to models.BookingStatus) error
	ExpirePast(db *gorm.DB, now time.Time, from, to models.BookingStatus) (int64, error)
}

type BookingRepositoryImpl struct{}

func NewBookingRepository() BookingRepository {
	return &BookingRepositoryImpl{}
}

func (r *BookingRepositoryImpl) Create(db *gorm.DB, booking *models.Booking) error {
	return db.Create(booking).Error
}

func (r *BookingRepositoryImpl) FindByID(db *gorm.DB, id string) (*models.Booking, error) {
	var b models.Booking
	if err := db.Where("id = ?", id).First(&b).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	return &b, nil
}

// FindActiveSlot returns a pending or confirmed booking of the tutor at date, if any.
func (r *BookingRepositoryImpl) FindActiveSlot(db *gorm.DB, tutorID string, date time.Time) (*models.Booking, error) {
	var b models.Booking
	err := db.Where("tutor_id = ? AND date = ? AND status IN ?", tutorID, date, models.ActiveBookingStatuses).
		Order("created_at ASC").
		First(&b).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	return &b, nil
}

func (r *BookingRepositoryImpl) ListByUser(db *gorm.DB, userID string, status models.BookingStatus) ([]models.Booking, error) {
	q := db.Where("user_id = ?", userID)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var bookings []models.Booking
	err := q.Order("created_at DESC").Find(&bookings).Error
	return bookings, err
}

// UpdateStatus moves a booking from one status to another; ErrBookingNotFound
// when the booking is not in the expected state.
func (r *BookingRepositoryImpl) UpdateStatus(db *gorm.DB, id string, from, to models.BookingStatus) error {
	result := db.Model(&models.Booking{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrBookingNotFound
	}
	return nil
}

func (r *BookingRepositoryImpl) ExpirePast(db *gorm.DB, now time.Time, from, to models.BookingStatus) (int64, error) {
	result := db.Model(&models.Booking{}).
		Where("status = ? AND date < ?", from, now).
		Update("status", to)
	return result.RowsAffected, result.Error
}
