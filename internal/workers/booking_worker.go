package workers

import (
	"context"
	"time"

	"gorm.io/gorm"

	"tutormatch_backend/internal/logger"
	"tutormatch_backend/internal/services"
)

const bookingWorkerName = "booking"

// BookingWorker settles bookings whose date has passed. db should already
// carry the worker context (db.WithContext).
type BookingWorker struct {
	db       *gorm.DB
	bookings services.BookingService
	interval time.Duration
}

func NewBookingWorker(db *gorm.DB, bookings services.BookingService, interval time.Duration) *BookingWorker {
	if interval <= 0 {
		interval = time.Hour
	}
	return &BookingWorker{db: db, bookings: bookings, interval: interval}
}

// Start runs the expiry loop in the background until ctx is cancelled.
func (w *BookingWorker) Start(ctx context.Context) {
	go w.run(ctx)
}

func (w *BookingWorker) run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("booking worker stopped")
			return
		case <-ticker.C:
			w.Tick(ctx)
		}
	}
}

// Tick completes past confirmed bookings and cancels past pending ones.
func (w *BookingWorker) Tick(ctx context.Context) {
	completed, cancelled, err := w.bookings.ExpirePast(ctx, w.db)
	if err != nil {
		logger.WorkerLog(bookingWorkerName, "expire_past", err)
		return
	}
	if completed > 0 || cancelled > 0 {
		logger.WorkerLog(bookingWorkerName, "expire_past", nil,
			"completed", completed,
			"cancelled", cancelled,
		)
	}
}
