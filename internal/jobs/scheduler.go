package jobs

import (
	"context"
	"time"

	"car-rental/internal/usecase"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// overdueSweepSchedule runs hourly on the hour.
const overdueSweepSchedule = "0 * * * *"

// Scheduler drives the recurring rental sweeps.
type Scheduler struct {
	cron     *cron.Cron
	bookings usecase.BookingService
	log      *zap.Logger
}

func NewScheduler(bookings usecase.BookingService, log *zap.Logger) *Scheduler {
	s := &Scheduler{
		cron:     cron.New(cron.WithLocation(time.UTC)),
		bookings: bookings,
		log:      log.With(zap.String("component", "scheduler")),
	}

	s.registerJobs()
	return s
}

func (s *Scheduler) registerJobs() {
	if _, err := s.cron.AddFunc(overdueSweepSchedule, s.markOverdueReturns); err != nil {
		s.log.Error("Failed to register overdue-returns job", zap.Error(err))
	}
}

// markOverdueReturns flips confirmed bookings whose rental period has
// ended into need_to_be_returned.
func (s *Scheduler) markOverdueReturns() {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("PANIC in overdue-returns sweep", zap.Any("error", r))
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	count, err := s.bookings.MarkOverdueReturns(ctx)
	if err != nil {
		s.log.Error("Overdue-returns sweep failed", zap.Error(err))
		return
	}

	if count > 0 {
		s.log.Info("Marked bookings as awaiting return", zap.Int("count", count))
	}
}

// Start begins the cron scheduler
func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info("Scheduler started")
}

// Stop waits for running jobs before returning
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.log.Info("Scheduler stopped")
}
