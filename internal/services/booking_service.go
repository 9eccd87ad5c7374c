package services

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"tutormatch_backend/internal/logger"
	"tutormatch_backend/internal/models"
	"tutormatch_backend/internal/repositories"
	"tutormatch_backend/internal/services/dto"
	"tutormatch_backend/pkg/apperrors"
)

const unknownTutorName = "未知导师"

type BookingService interface {
	Book(ctx context.Context, db *gorm.DB, userID string, req *dto.CreateBookingRequest) (*dto.CreateBookingResponse, error)
	List(ctx context.Context, db *gorm.DB, userID string, status models.BookingStatus) ([]dto.BookingResponse, error)
	Cancel(ctx context.Context, db *gorm.DB, userID, bookingID string) error
	ExpirePast(ctx context.Context, db *gorm.DB) (completed, cancelled int64, err error)
}

type BookingServiceImpl struct {
	bookingRepo repositories.BookingRepository
	userRepo    repositories.UserRepository
	tutorRepo   repositories.TutorRepository
	now         func() time.Time
}

func NewBookingService(
	bookingRepo repositories.BookingRepository,
	userRepo repositories.UserRepository,
	tutorRepo repositories.TutorRepository,
) BookingService {
	return &BookingServiceImpl{
		bookingRepo: bookingRepo,
		userRepo:    userRepo,
		tutorRepo:   tutorRepo,
		now:         time.Now,
	}
}

// Book reserves a tutor consultation slot for a VIP user.
func (s *BookingServiceImpl) Book(ctx context.Context, db *gorm.DB, userID string, req *dto.CreateBookingRequest) (*dto.CreateBookingResponse, error) {
	user, err := s.userRepo.FindByID(db, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.InternalError(err)
	}
	isVIP, expired := user.VIPState(s.now())
	if !isVIP {
		return nil, apperrors.ErrVIPRequired
	}
	if expired {
		return nil, apperrors.ErrVIPExpired
	}

	if _, err := s.tutorRepo.FindByID(db, req.TutorID, false); err != nil {
		if errors.Is(err, repositories.ErrTutorNotFound) {
			return nil, apperrors.ErrTutorNotFound
		}
		return nil, apperrors.InternalError(err)
	}

	date := req.Date.UTC()

	tx := db.Begin()
	defer tx.Rollback()

	existing, err := s.bookingRepo.FindActiveSlot(tx, req.TutorID, date)
	switch {
	case err == nil:
		if existing.UserID == userID {
			return nil, apperrors.ErrDuplicateBooking
		}
		return nil, apperrors.ErrTimeConflict
	case errors.Is(err, repositories.ErrBookingNotFound):
	default:
		return nil, apperrors.InternalError(err)
	}

	booking := &models.Booking{
		UserID:  userID,
		TutorID: req.TutorID,
		Date:    date,
		Message: req.Message,
		Status:  models.BookingPending,
	}
	if err := s.bookingRepo.Create(tx, booking); err != nil {
		return nil, apperrors.InternalError(err)
	}
	if err := tx.Commit().Error; err != nil {
		return nil, apperrors.InternalError(err)
	}

	logger.CtxInfo(ctx, "booking created", "booking_id", booking.ID, "user_id", userID, "tutor_id", req.TutorID)
	return &dto.CreateBookingResponse{BookingID: booking.ID, Status: booking.Status}, nil
}

func (s *BookingServiceImpl) List(ctx context.Context, db *gorm.DB, userID string, status models.BookingStatus) ([]dto.BookingResponse, error) {
	bookings, err := s.bookingRepo.ListByUser(db, userID, status)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	ids := make([]string, len(bookings))
	for i, b := range bookings {
		ids[i] = b.TutorID
	}
	tutors, err := s.tutorRepo.FindByIDs(db, ids)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	out := make([]dto.BookingResponse, len(bookings))
	for i, b := range bookings {
		tutor := dto.BookingTutor{ID: b.TutorID, Name: unknownTutorName}
		if t, ok := tutors[b.TutorID]; ok {
			tutor = dto.BookingTutor{
				ID:     t.ID,
				Name:   t.Name,
				Title:  t.Title,
				School: t.SchoolName,
				Avatar: t.AvatarURL,
			}
		}
		out[i] = dto.BookingResponse{
			ID:        b.ID,
			TutorID:   b.TutorID,
			Tutor:     tutor,
			Date:      b.Date,
			Message:   b.Message,
			Status:    b.Status,
			CreatedAt: b.CreatedAt,
		}
	}
	return out, nil
}

// Cancel is limited to the owner's pending bookings. Foreign bookings look absent.
func (s *BookingServiceImpl) Cancel(ctx context.Context, db *gorm.DB, userID, bookingID string) error {
	b, err := s.bookingRepo.FindByID(db, bookingID)
	if err != nil {
		if errors.Is(err, repositories.ErrBookingNotFound) {
			return apperrors.ErrBookingNotFound
		}
		return apperrors.InternalError(err)
	}
	if b.UserID != userID {
		return apperrors.ErrBookingNotFound
	}
	if b.Status != models.BookingPending {
		return apperrors.ErrCannotCancel
	}

	if err := s.bookingRepo.UpdateStatus(db, bookingID, models.BookingPending, models.BookingCancelled); err != nil {
		if errors.Is(err, repositories.ErrBookingNotFound) {
			return apperrors.ErrCannotCancel
		}
		return apperrors.InternalError(err)
	}

	logger.CtxInfo(ctx, "booking cancelled", "booking_id", bookingID, "user_id", userID)
	return nil
}

// ExpirePast closes bookings whose date has passed: confirmed ones complete,
// pending ones are cancelled.
func (s *BookingServiceImpl) ExpirePast(ctx context.Context, db *gorm.DB) (int64, int64, error) {
	now := s.now().UTC()

	completed, err := s.bookingRepo.ExpirePast(db, now, models.BookingConfirmed, models.BookingCompleted)
	if err != nil {
		return 0, 0, err
	}
	cancelled, err := s.bookingRepo.ExpirePast(db, now, models.BookingPending, models.BookingCancelled)
	if err != nil {
		return completed, 0, err
	}
	return completed, cancelled, nil
}
