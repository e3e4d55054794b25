package model

import "time"

// Slot is one bookable cell of a garage's availability calendar, keyed by
// (garage, date, time-slot label). The two boolean facets are independent:
// blocked is garage-declared unavailability (holiday, closure) and booked is
// occupancy by an active booking. A slot is offerable only when neither is
// set. Slots are never physically deleted while historical bookings reference
// them.
//
// Fields:
//  ID        – primary key identifier.
//  GarageID  – garage that published the slot.
//  SlotDate  – calendar date, formatted YYYY-MM-DD (UTC).
//  TimeSlot  – time-slot label within the day, e.g. "09:00-09:30".
//  Blocked   – garage-declared unavailability.
//  Booked    – occupied by a non-cancelled booking.
//  CreatedAt – creation timestamp.
//  UpdatedAt – last update timestamp.
type Slot struct {
	ID        uint64    // slots.id
	GarageID  uint64    // slots.garage_id
	SlotDate  string    // slots.slot_date
	TimeSlot  string    // slots.time_slot
	Blocked   bool      // slots.blocked
	Booked    bool      // slots.booked
	CreatedAt time.Time // slots.created_at
	UpdatedAt time.Time // slots.updated_at
}

// Offerable reports whether the slot can accept a new reservation.
func (s Slot) Offerable() bool { return !s.Blocked && !s.Booked }
