package workers

import (
	"bytes"
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"tutormatch_backend/internal/logger"
	"tutormatch_backend/internal/services"
)

type fakeBookings struct {
	services.BookingService
	calls     atomic.Int32
	completed int64
	cancelled int64
	err       error
}

func (f *fakeBookings) ExpirePast(_ context.Context, _ *gorm.DB) (int64, int64, error) {
	f.calls.Add(1)
	return f.completed, f.cancelled, f.err
}

func TestBookingWorker_TickLogsCounts(t *testing.T) {
	var buf bytes.Buffer
	logger.InitWithWriter("development", &buf)

	fake := &fakeBookings{completed: 2, cancelled: 1}
	w := NewBookingWorker(nil, fake, time.Minute)
	w.Tick(context.Background())

	assert.EqualValues(t, 1, fake.calls.Load())
	assert.Contains(t, buf.String(), "expire_past")
	assert.Contains(t, buf.String(), "completed")
}

func TestBookingWorker_TickLogsError(t *testing.T) {
	var buf bytes.Buffer
	logger.InitWithWriter("development", &buf)

	w := NewBookingWorker(nil, &fakeBookings{err: errors.New("db down")}, time.Minute)
	w.Tick(context.Background())

	assert.Contains(t, buf.String(), "db down")
}

func TestBookingWorker_StopsOnCancel(t *testing.T) {
	fake := &fakeBookings{}
	w := NewBookingWorker(nil, fake, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	w.Start(ctx)
	assert.Eventually(t, func() bool { return fake.calls.Load() > 0 }, time.Second, 5*time.Millisecond)
	cancel()
}
