package engine

import (
	"context"
	"time"

	"github.com/herlandro/bookamot-saas-sub003/internal/model"
)

// Store is the persistence port owned by the engine. Production code injects
// the MySQL implementation from internal/repository; tests inject an
// in-memory fake. All mutating work flows through WithinTx so that a slot
// claim, the quota check and the booking insert commit or roll back as one
// unit; the engine never touches an ambient database handle.
type Store interface {
	// WithinTx runs fn inside one atomic unit of work. When fn returns an
	// error the unit rolls back and the error is returned unchanged; commit
	// failures surface as a storage error.
	WithinTx(ctx context.Context, fn func(tx Tx) error) error

	// GarageByID loads a garage outside any transaction. Returns
	// ErrGarageNotFound when the id does not resolve.
	GarageByID(ctx context.Context, garageID uint64) (*model.Garage, error)

	// CountActive returns the number of bookings for the garage whose status
	// is not CANCELLED. Advisory read path for dashboards; the admission
	// check inside Reserve uses the Tx variant instead.
	CountActive(ctx context.Context, garageID uint64) (int, error)

	// BookingByID loads a booking outside any transaction. Returns
	// ErrBookingNotFound when the id does not resolve.
	BookingByID(ctx context.Context, bookingID uint64) (*model.Booking, error)

	// ListOffered returns the offerable slots of a garage within the
	// inclusive date range, ordered by date then time slot. The result is
	// advisory and re-validated by the next Reserve call.
	ListOffered(ctx context.Context, garageID uint64, from, to string) ([]model.Slot, error)
}

// Tx is the transaction-scoped view of the store. Methods returning sentinel
// engine errors do so without wrapping so the coordinator and lifecycle can
// match them with errors.Is.
type Tx interface {
	// GarageForUpdate loads the garage row and holds it exclusively until
	// the transaction ends. This is the per-garage admission lock that keeps
	// the quota check and the slot claim on one consistent snapshot.
	GarageForUpdate(ctx context.Context, garageID uint64) (*model.Garage, error)

	// CountActive counts non-cancelled bookings for the garage within the
	// transaction snapshot.
	CountActive(ctx context.Context, garageID uint64) (int, error)

	// ClaimSlot atomically flips an offerable slot to booked. Returns
	// ErrSlotUnavailable when the cell does not exist, is blocked or is
	// already booked; at most one concurrent caller per cell succeeds.
	ClaimSlot(ctx context.Context, garageID uint64, date, timeSlot string) error

	// ReleaseSlot clears the booked facet of a slot.
	ReleaseSlot(ctx context.Context, garageID uint64, date, timeSlot string) error

	// PublishSlot creates the slot cell if it does not already exist and
	// reports whether a row was created. Re-publishing an existing cell is a
	// no-op and never overwrites booked/blocked state.
	PublishSlot(ctx context.Context, garageID uint64, date, timeSlot string) (bool, error)

	// SetSlotBlocked sets or clears the blocked facet. Returns
	// ErrSlotOccupied when the cell is currently booked and
	// ErrSlotUnavailable when it does not exist.
	SetSlotBlocked(ctx context.Context, garageID uint64, date, timeSlot string, blocked bool) error

	// CreateBooking inserts a new booking and populates its generated ID and
	// CreatedAt. Returns ErrDuplicateReference when the reference code
	// collides with an existing booking.
	CreateBooking(ctx context.Context, b *model.Booking) error

	// BookingForUpdate loads a booking row and holds it exclusively until
	// the transaction ends. Returns ErrBookingNotFound when absent.
	BookingForUpdate(ctx context.Context, bookingID uint64) (*model.Booking, error)

	// UpdateBookingStatus records a transition: the new status plus its
	// timestamp column.
	UpdateBookingStatus(ctx context.Context, bookingID uint64, status model.BookingStatus, at time.Time) error
}

// Notifier is the outbound notification port. Implementations enqueue the
// event for at-least-once delivery with their own audit trail; Notify must
// never block the calling request and its failures never reverse a committed
// booking operation.
type Notifier interface {
	Notify(eventType string, b *model.Booking)
}

// ReviewGate informs the external review subsystem that a booking became
// reviewable. NotifyCompleted must be idempotent; the lifecycle calls it only
// after a booking reaches COMPLETED.
type ReviewGate interface {
	NotifyCompleted(ctx context.Context, bookingID uint64) error
}
