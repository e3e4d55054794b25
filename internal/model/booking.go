package model

import "time"

// BookingStatus enumerates the lifecycle states of a booking. The legal
// transitions between them are owned by the engine's lifecycle state machine;
// code outside the engine must treat the status as opaque.
type BookingStatus string

// Lifecycle states. COMPLETED, CANCELLED and NO_SHOW are terminal.
const (
	StatusPending    BookingStatus = "PENDING"
	StatusConfirmed  BookingStatus = "CONFIRMED"
	StatusInProgress BookingStatus = "IN_PROGRESS"
	StatusCompleted  BookingStatus = "COMPLETED"
	StatusCancelled  BookingStatus = "CANCELLED"
	StatusNoShow     BookingStatus = "NO_SHOW"
)

// Valid reports whether s is one of the known lifecycle states. Used when
// parsing a target status from a transition request.
func (s BookingStatus) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusInProgress,
		StatusCompleted, StatusCancelled, StatusNoShow:
		return true
	}
	return false
}

// Terminal reports whether no further transition is legal from s.
func (s BookingStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled || s == StatusNoShow
}

// Booking records a customer's MOT appointment at a garage. The slot key
// (garage, date, time slot) is denormalized onto the booking at creation time
// and is immutable thereafter; rescheduling is modeled as cancel-then-create,
// never as in-place slot mutation.
//
// Fields:
//  ID             – primary key identifier.
//  Reference      – unique human-shareable booking code (e.g. MOT-4F21A9C3).
//  GarageID       – garage hosting the appointment.
//  CustomerID     – customer who booked.
//  VehicleID      – vehicle being tested.
//  SlotDate       – calendar date of the slot, formatted YYYY-MM-DD (UTC).
//  TimeSlot       – time-slot label of the slot, e.g. "09:00-09:30".
//  Status         – current lifecycle state.
//  ReviewUnlocked – set once the review subsystem was told the booking
//                   completed; the flag makes the notification idempotent.
//  CreatedAt      – creation timestamp.
//  ConfirmedAt,
//  StartedAt,
//  CompletedAt,
//  CancelledAt,
//  NoShowAt       – per-transition timestamps, nil until the transition runs.
type Booking struct {
	ID             uint64        // bookings.id
	Reference      string        // bookings.reference
	GarageID       uint64        // bookings.garage_id
	CustomerID     uint64        // bookings.customer_id
	VehicleID      uint64        // bookings.vehicle_id
	SlotDate       string        // bookings.slot_date
	TimeSlot       string        // bookings.time_slot
	Status         BookingStatus // bookings.status
	ReviewUnlocked bool          // bookings.review_unlocked
	CreatedAt      time.Time     // bookings.created_at
	ConfirmedAt    *time.Time    // bookings.confirmed_at (nullable)
	StartedAt      *time.Time    // bookings.started_at (nullable)
	CompletedAt    *time.Time    // bookings.completed_at (nullable)
	CancelledAt    *time.Time    // bookings.cancelled_at (nullable)
	NoShowAt       *time.Time    // bookings.no_show_at (nullable)
}
