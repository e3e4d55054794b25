package service

import (
	"context"
	"log"
	"time"

	"github.com/herlandro/bookamot-saas-sub003/internal/queue"
	"github.com/herlandro/bookamot-saas-sub003/internal/repository"
)

// RetrySweeper re-attempts FAILED notification deliveries. It runs on a cron
// schedule and gives each entry up to maxAttempts tries before leaving it on
// the audit trail for manual inspection. Together with the consumer this
// gives the dispatcher its at-least-once delivery intent.
type RetrySweeper struct {
	emails      *repository.EmailLogRepo
	bookings    *repository.BookingRepo
	garages     *repository.GarageRepo
	sender      queue.Sender
	maxAttempts int
	batchSize   int
}

// NewRetrySweeper returns a sweeper bound to the audit trail and sender.
func NewRetrySweeper(emails *repository.EmailLogRepo, bookings *repository.BookingRepo,
	garages *repository.GarageRepo, sender queue.Sender) *RetrySweeper {
	return &RetrySweeper{
		emails:      emails,
		bookings:    bookings,
		garages:     garages,
		sender:      sender,
		maxAttempts: 5,
		batchSize:   50,
	}
}

// Run processes one batch of retryable entries. Registered as a cron job;
// errors are logged and the next tick tries again.
func (s *RetrySweeper) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	entries, err := s.emails.ListRetryable(ctx, s.maxAttempts, s.batchSize)
	if err != nil {
		log.Printf("retry-sweeper: list retryable failed: %v", err)
		return
	}
	for _, entry := range entries {
		b, err := s.bookings.GetByID(ctx, entry.BookingID)
		if err != nil {
			log.Printf("retry-sweeper: booking %d for entry %d gone: %v", entry.BookingID, entry.ID, err)
			continue
		}
		ev := queue.BookingEvent{
			Type:       entry.Type,
			BookingID:  b.ID,
			Reference:  b.Reference,
			GarageID:   b.GarageID,
			Recipient:  entry.Recipient,
			SlotDate:   b.SlotDate,
			TimeSlot:   b.TimeSlot,
			OccurredAt: time.Now().UTC().Format(time.RFC3339),
		}
		if g, err := s.garages.GetByID(ctx, b.GarageID); err == nil {
			ev.GarageName = g.Name
		}
		if err := s.sender.Send(ctx, ev); err != nil {
			if aerr := s.emails.MarkFailed(ctx, entry.ID, err.Error()); aerr != nil {
				log.Printf("retry-sweeper: mark failed for entry %d: %v", entry.ID, aerr)
			}
			continue
		}
		if err := s.emails.MarkSent(ctx, entry.ID); err != nil {
			log.Printf("retry-sweeper: mark sent for entry %d: %v", entry.ID, err)
		}
	}
}
