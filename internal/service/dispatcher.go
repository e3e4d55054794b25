// Package service contains the outbound collaborators of the engine: the
// notification dispatcher, the email sender, the review eligibility gate and
// the delivery retry sweeper.
package service

import (
	"context"
	"log"
	"time"

	"github.com/herlandro/bookamot-saas-sub003/internal/model"
	"github.com/herlandro/bookamot-saas-sub003/internal/queue"
	"github.com/herlandro/bookamot-saas-sub003/internal/repository"
)

// Dispatcher implements engine.Notifier by resolving the recipient and
// publishing a BookingEvent to the broker. Dispatch is fire-and-forget: it
// runs on its own goroutine with its own timeout, and failures degrade to a
// logged warning. A committed booking operation is never reversed because
// an email could not be queued.
type Dispatcher struct {
	users   *repository.UserRepo
	garages *repository.GarageRepo
	timeout time.Duration
}

// NewDispatcher returns a Dispatcher resolving recipients through the given
// repositories.
func NewDispatcher(users *repository.UserRepo, garages *repository.GarageRepo) *Dispatcher {
	return &Dispatcher{users: users, garages: garages, timeout: 10 * time.Second}
}

// Notify schedules delivery of a booking event. Returns immediately.
func (d *Dispatcher) Notify(eventType string, b *model.Booking) {
	// Copy what the goroutine needs; the caller may reuse the booking.
	ev := queue.BookingEvent{
		Type:       eventType,
		BookingID:  b.ID,
		Reference:  b.Reference,
		GarageID:   b.GarageID,
		SlotDate:   b.SlotDate,
		TimeSlot:   b.TimeSlot,
		OccurredAt: time.Now().UTC().Format(time.RFC3339),
	}
	customerID := b.CustomerID

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()

		email, err := d.users.EmailByID(ctx, customerID)
		if err != nil {
			log.Printf("dispatcher: resolve recipient for booking %d failed: %v", ev.BookingID, err)
			return
		}
		ev.Recipient = email
		if g, err := d.garages.GetByID(ctx, ev.GarageID); err == nil {
			ev.GarageName = g.Name
		}
		if err := queue.PublishBookingEvent(ctx, ev); err != nil {
			log.Printf("dispatcher: enqueue %s for booking %d failed: %v", ev.Type, ev.BookingID, err)
		}
	}()
}
