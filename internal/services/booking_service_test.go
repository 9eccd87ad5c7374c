package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tutormatch_backend/internal/models"
	"tutormatch_backend/internal/services/dto"
	"tutormatch_backend/pkg/apperrors"
)

var bookingNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func bookingFixture(bookings ...models.Booking) (*fakeBookingRepo, *BookingServiceImpl) {
	past := bookingNow.Add(-24 * time.Hour)
	future := bookingNow.Add(24 * time.Hour)
	users := newFakeUserRepo(
		models.User{BaseModel: models.BaseModel{ID: "plain"}},
		models.User{BaseModel: models.BaseModel{ID: "vip"}, VIPStatus: true, VIPExpireDate: &future},
		models.User{BaseModel: models.BaseModel{ID: "lapsed"}, VIPStatus: true, VIPExpireDate: &past},
	)
	tutors := newFakeTutorRepo(models.Tutor{BaseModel: models.BaseModel{ID: "t1"}, Name: "张三", Title: "教授"})
	repo := newFakeBookingRepo(bookings...)
	svc := NewBookingService(repo, users, tutors).(*BookingServiceImpl)
	svc.now = func() time.Time { return bookingNow }
	return repo, svc
}

func TestBookingService_Book_Preconditions(t *testing.T) {
	_, svc := bookingFixture()
	ctx := context.Background()
	req := &dto.CreateBookingRequest{TutorID: "t1", Date: bookingNow.Add(72 * time.Hour)}

	_, err := svc.Book(ctx, nil, "plain", req)
	assert.True(t, apperrors.Is(err, apperrors.ErrVIPRequired))

	_, err = svc.Book(ctx, nil, "lapsed", req)
	assert.True(t, apperrors.Is(err, apperrors.ErrVIPExpired))

	_, err = svc.Book(ctx, nil, "vip", &dto.CreateBookingRequest{TutorID: "nobody", Date: req.Date})
	assert.True(t, apperrors.Is(err, apperrors.ErrTutorNotFound))

	_, err = svc.Book(ctx, nil, "ghost", req)
	assert.True(t, apperrors.Is(err, apperrors.ErrUserNotFound))
}

func TestBookingService_List(t *testing.T) {
	_, svc := bookingFixture(
		models.Booking{BaseModel: models.BaseModel{ID: "b1"}, UserID: "vip", TutorID: "t1", Status: models.BookingPending},
		models.Booking{BaseModel: models.BaseModel{ID: "b2"}, UserID: "vip", TutorID: "removed", Status: models.BookingCompleted},
		models.Booking{BaseModel: models.BaseModel{ID: "b3"}, UserID: "other", TutorID: "t1", Status: models.BookingPending},
	)

	all, err := svc.List(context.Background(), nil, "vip", "")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "张三", all[0].Tutor.Name)
	assert.Equal(t, "教授", all[0].Tutor.Title)
	assert.Equal(t, unknownTutorName, all[1].Tutor.Name)

	pending, err := svc.List(context.Background(), nil, "vip", models.BookingPending)
	require.NoError(t, err)
	assert.Len(t, pending, 1)
}

func TestBookingService_Cancel(t *testing.T) {
	repo, svc := bookingFixture(
		models.Booking{BaseModel: models.BaseModel{ID: "b1"}, UserID: "vip", TutorID: "t1", Status: models.BookingPending},
		models.Booking{BaseModel: models.BaseModel{ID: "b2"}, UserID: "vip", TutorID: "t1", Status: models.BookingConfirmed},
	)
	ctx := context.Background()

	err := svc.Cancel(ctx, nil, "other", "b1")
	assert.True(t, apperrors.Is(err, apperrors.ErrBookingNotFound))

	err = svc.Cancel(ctx, nil, "vip", "b2")
	assert.True(t, apperrors.Is(err, apperrors.ErrCannotCancel))

	err = svc.Cancel(ctx, nil, "vip", "missing")
	assert.True(t, apperrors.Is(err, apperrors.ErrBookingNotFound))

	require.NoError(t, svc.Cancel(ctx, nil, "vip", "b1"))
	assert.Equal(t, models.BookingCancelled, repo.rows["b1"].Status)
}

func TestBookingService_ExpirePast(t *testing.T) {
	yesterday := bookingNow.Add(-24 * time.Hour)
	tomorrow := bookingNow.Add(24 * time.Hour)
	repo, svc := bookingFixture(
		models.Booking{BaseModel: models.BaseModel{ID: "b1"}, Date: yesterday, Status: models.BookingConfirmed},
		models.Booking{BaseModel: models.BaseModel{ID: "b2"}, Date: yesterday, Status: models.BookingPending},
		models.Booking{BaseModel: models.BaseModel{ID: "b3"}, Date: tomorrow, Status: models.BookingPending},
	)

	completed, cancelled, err := svc.ExpirePast(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), completed)
	assert.Equal(t, int64(1), cancelled)
	assert.Equal(t, models.BookingCompleted, repo.rows["b1"].Status)
	assert.Equal(t, models.BookingCancelled, repo.rows["b2"].Status)
	assert.Equal(t, models.BookingPending, repo.rows["b3"].Status)
}
