package engine

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/herlandro/bookamot-saas-sub003/internal/model"
)

// legalTransitions is the full transition table of the booking lifecycle.
// Anything absent here fails with ErrInvalidTransition. PENDING is only ever
// entered at creation time by the coordinator, so it appears as a source but
// never as a target.
var legalTransitions = map[model.BookingStatus]map[model.BookingStatus]bool{
	model.StatusPending: {
		model.StatusConfirmed: true,
		model.StatusCancelled: true,
	},
	model.StatusConfirmed: {
		model.StatusInProgress: true,
		model.StatusCancelled:  true,
		model.StatusNoShow:     true,
	},
	model.StatusInProgress: {
		model.StatusCompleted: true,
		model.StatusCancelled: true,
	},
}

// CanTransition reports whether moving from one status to another is legal.
func CanTransition(from, to model.BookingStatus) bool {
	return legalTransitions[from][to]
}

// Lifecycle governs status transitions after a booking is created and their
// side effects on the calendar and the notification trail. Every transition
// is recorded with a timestamp; the lifecycle never infers status from the
// wall clock, so a booking whose slot date has passed stays CONFIRMED until
// explicitly transitioned.
type Lifecycle struct {
	store    Store
	notifier Notifier
	reviews  ReviewGate
}

// NewLifecycle returns a Lifecycle bound to the given collaborators. notifier
// and reviews may be nil, which disables the corresponding side effects.
func NewLifecycle(store Store, notifier Notifier, reviews ReviewGate) *Lifecycle {
	return &Lifecycle{store: store, notifier: notifier, reviews: reviews}
}

// Transition moves a booking to the target status. The status update and its
// calendar effect commit as one unit: cancellation releases the slot in the
// same transaction, while NO_SHOW deliberately keeps the slot consumed to
// preserve historical occupancy. Illegal transitions fail with
// ErrInvalidTransition and mutate nothing.
//
// Notification dispatch and the review-eligibility unlock run after commit;
// their failures are logged and never roll back the transition.
func (lc *Lifecycle) Transition(ctx context.Context, bookingID uint64, target model.BookingStatus) (*model.Booking, error) {
	if !target.Valid() || target == model.StatusPending {
		return nil, fmt.Errorf("%w: unknown target status %q", ErrInvalidRequest, target)
	}

	var booking *model.Booking
	err := lc.store.WithinTx(ctx, func(tx Tx) error {
		b, err := tx.BookingForUpdate(ctx, bookingID)
		if err != nil {
			return err
		}
		if !CanTransition(b.Status, target) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, b.Status, target)
		}
		now := time.Now().UTC()
		if target == model.StatusCancelled {
			if err := tx.ReleaseSlot(ctx, b.GarageID, b.SlotDate, b.TimeSlot); err != nil {
				return err
			}
		}
		if err := tx.UpdateBookingStatus(ctx, b.ID, target, now); err != nil {
			return err
		}
		b.Status = target
		switch target {
		case model.StatusConfirmed:
			b.ConfirmedAt = &now
		case model.StatusInProgress:
			b.StartedAt = &now
		case model.StatusCompleted:
			b.CompletedAt = &now
		case model.StatusCancelled:
			b.CancelledAt = &now
		case model.StatusNoShow:
			b.NoShowAt = &now
		}
		booking = b
		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidTransition),
			errors.Is(err, ErrInvalidRequest),
			errors.Is(err, ErrBookingNotFound):
			return nil, err
		case errors.Is(err, context.DeadlineExceeded):
			return nil, ErrBusy
		default:
			return nil, storageError(err)
		}
	}

	lc.afterCommit(ctx, booking)
	return booking, nil
}

// afterCommit fires the decoupled side effects of a committed transition.
func (lc *Lifecycle) afterCommit(ctx context.Context, b *model.Booking) {
	if lc.notifier != nil {
		switch b.Status {
		case model.StatusConfirmed:
			lc.notifier.Notify(EventBookingConfirmed, b)
		case model.StatusCancelled:
			lc.notifier.Notify(EventBookingCancelled, b)
		case model.StatusCompleted:
			lc.notifier.Notify(EventBookingCompleted, b)
		case model.StatusNoShow:
			lc.notifier.Notify(EventBookingNoShow, b)
		}
	}
	if lc.reviews != nil && b.Status == model.StatusCompleted {
		if err := lc.reviews.NotifyCompleted(ctx, b.ID); err != nil {
			log.Printf("lifecycle: review unlock for booking %d failed: %v", b.ID, err)
		}
	}
}

// Get loads a booking by id for display. Read-only, no exclusivity.
func (lc *Lifecycle) Get(ctx context.Context, bookingID uint64) (*model.Booking, error) {
	b, err := lc.store.BookingByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, ErrBookingNotFound) {
			return nil, err
		}
		return nil, storageError(err)
	}
	return b, nil
}
