// Package queue defines message payloads exchanged over the message broker
// and the consumer that turns them into audited email deliveries.
package queue

// EventsQueueName is the durable queue carrying booking notification events.
const EventsQueueName = "booking.events"

// BookingEvent is published whenever a booking is created or transitions.
// It carries enough information for the notification consumer to address and
// compose an email without querying the primary database.
type BookingEvent struct {
	Type       string `json:"type"` // BOOKING_CREATED, BOOKING_CONFIRMED, ...
	BookingID  uint64 `json:"booking_id"`
	Reference  string `json:"reference"`
	GarageID   uint64 `json:"garage_id"`
	GarageName string `json:"garage_name"`
	Recipient  string `json:"recipient"`
	SlotDate   string `json:"date"`
	TimeSlot   string `json:"time_slot"`
	OccurredAt string `json:"occurred_at"`
}
