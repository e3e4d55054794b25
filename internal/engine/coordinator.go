package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/herlandro/bookamot-saas-sub003/internal/model"
)

// EventBookingCreated and friends name the notification types emitted by the
// engine. The dispatcher maps them onto email templates; the engine never
// composes message bodies.
const (
	EventBookingCreated   = "BOOKING_CREATED"
	EventBookingConfirmed = "BOOKING_CONFIRMED"
	EventBookingCancelled = "BOOKING_CANCELLED"
	EventBookingCompleted = "BOOKING_COMPLETED"
	EventBookingNoShow    = "BOOKING_NO_SHOW"
)

// defaultAdmissionWait bounds how long a reservation waits on the per-garage
// serialization point before failing with Busy.
const defaultAdmissionWait = 3 * time.Second

// referenceRetries caps collision retries on booking reference generation.
// A collision is a statistical hiccup, never a business failure.
const referenceRetries = 5

// ReserveRequest carries the input of a reservation attempt.
type ReserveRequest struct {
	GarageID   uint64
	CustomerID uint64
	VehicleID  uint64
	Date       string // YYYY-MM-DD, UTC
	TimeSlot   string // e.g. "09:00-09:30"
}

// Coordinator is the transactional core of the engine: given a booking
// request it checks quota, claims the slot and creates the booking record as
// one atomic unit. It is the single source of mutual exclusion for
// reservations, combining a bounded in-process per-garage lock with the
// store's transaction so that two racing requests can never both observe the
// same free slot or the same quota headroom.
type Coordinator struct {
	store    Store
	notifier Notifier
	locks    *admissionLocks
	wait     time.Duration
}

// NewCoordinator returns a Coordinator bound to the given store and
// notifier. A nil notifier disables outbound notifications, which is useful
// in tests.
func NewCoordinator(store Store, notifier Notifier) *Coordinator {
	return &Coordinator{
		store:    store,
		notifier: notifier,
		locks:    newAdmissionLocks(),
		wait:     defaultAdmissionWait,
	}
}

// SetAdmissionWait overrides the bounded wait on the per-garage serialization
// point. Intended for tests and operational tuning.
func (co *Coordinator) SetAdmissionWait(d time.Duration) { co.wait = d }

// Reserve attempts to book the given slot for the customer. On success the
// returned booking is PENDING, the slot is booked, and a BOOKING_CREATED
// notification has been scheduled (not awaited). Failure modes:
//
//	ErrInvalidRequest  – past date, malformed slot label, unapproved garage
//	ErrQuotaExhausted  – garage consumed its purchased quota
//	ErrSlotUnavailable – cell missing, blocked, or lost the race
//	ErrBusy            – admission lock not acquired within the bounded wait
//	ErrStorageFailure  – the unit could not commit; no partial claim survives
//
// When two requests race for the same slot, the one whose claim commits first
// wins; the loser must re-query offered slots rather than being redirected.
func (co *Coordinator) Reserve(ctx context.Context, req ReserveRequest) (*model.Booking, error) {
	day, err := parseDate(req.Date)
	if err != nil {
		return nil, err
	}
	if day.Before(today()) {
		return nil, fmt.Errorf("%w: date %s is in the past", ErrInvalidRequest, req.Date)
	}
	if !validTimeSlot(req.TimeSlot) {
		return nil, fmt.Errorf("%w: bad time slot %q", ErrInvalidRequest, req.TimeSlot)
	}
	if req.GarageID == 0 || req.CustomerID == 0 || req.VehicleID == 0 {
		return nil, fmt.Errorf("%w: missing identifier", ErrInvalidRequest)
	}

	ctx, cancel := context.WithTimeout(ctx, co.wait)
	defer cancel()

	release, ok := co.locks.acquire(ctx, req.GarageID)
	if !ok {
		return nil, ErrBusy
	}
	defer release()

	var booking *model.Booking
	err = co.store.WithinTx(ctx, func(tx Tx) error {
		g, err := tx.GarageForUpdate(ctx, req.GarageID)
		if err != nil {
			return err
		}
		if g.ApprovalStatus != model.ApprovalApproved {
			return fmt.Errorf("%w: garage not approved for bookings", ErrInvalidRequest)
		}
		// Admission check. A ceiling of zero means quota enforcement is not
		// configured, so the check is skipped entirely.
		if g.PurchasedQuota > 0 {
			consumed, err := tx.CountActive(ctx, req.GarageID)
			if err != nil {
				return err
			}
			if consumed >= g.PurchasedQuota {
				return ErrQuotaExhausted
			}
		}
		if err := tx.ClaimSlot(ctx, req.GarageID, req.Date, req.TimeSlot); err != nil {
			return err
		}
		b := &model.Booking{
			GarageID:   req.GarageID,
			CustomerID: req.CustomerID,
			VehicleID:  req.VehicleID,
			SlotDate:   req.Date,
			TimeSlot:   req.TimeSlot,
			Status:     model.StatusPending,
		}
		for attempt := 0; ; attempt++ {
			ref, err := NewReference()
			if err != nil {
				return err
			}
			b.Reference = ref
			err = tx.CreateBooking(ctx, b)
			if err == nil {
				break
			}
			if !errors.Is(err, ErrDuplicateReference) || attempt+1 >= referenceRetries {
				return err
			}
		}
		booking = b
		return nil
	})
	if err != nil {
		return nil, co.classify(err)
	}

	if co.notifier != nil {
		co.notifier.Notify(EventBookingCreated, booking)
	}
	return booking, nil
}

// classify maps a failed unit of work onto the engine error taxonomy.
// Sentinel engine errors pass through untouched; a deadline hit while waiting
// on row locks is a Busy, and anything else is a storage failure whose
// rollback already released any claim.
func (co *Coordinator) classify(err error) error {
	switch {
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, ErrQuotaExhausted),
		errors.Is(err, ErrSlotUnavailable),
		errors.Is(err, ErrGarageNotFound):
		return err
	case errors.Is(err, context.DeadlineExceeded):
		return ErrBusy
	default:
		return storageError(err)
	}
}
