package jobs

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/clubworks/equipment-booking-backend/internal/booking"
)

// Scheduler runs the background jobs on cron schedules. Today that is one
// job: the daily handover reminder sweep.
type Scheduler struct {
	cron     *cron.Cron
	bookings booking.Service
}

// NewScheduler creates the scheduler and registers the reminder job on the
// given cron spec (standard 5-field syntax, UTC).
func NewScheduler(bookings booking.Service, reminderSpec string) (*Scheduler, error) {
	s := &Scheduler{
		cron:     cron.New(cron.WithLocation(time.UTC)),
		bookings: bookings,
	}

	if _, err := s.cron.AddFunc(reminderSpec, s.runHandoverReminders); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Scheduler) runHandoverReminders() {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("handover reminder job panicked: %v", r)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	count, err := s.bookings.RemindUpcomingHandovers(ctx)
	if err != nil {
		log.Printf("handover reminder job failed: %v", err)
		return
	}
	log.Printf("handover reminder job sent %d reminder(s)", count)
}

// Start begins the cron scheduler in its own goroutine.
func (s *Scheduler) Start() {
	s.cron.Start()
	log.Println("Cron scheduler started")
}

// Stop waits for any running job to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Println("Cron scheduler stopped")
}
