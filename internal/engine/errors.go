// Package engine implements the slot reservation and quota admission core of
// the booking portal: the availability calendar, the quota ledger, the
// transactional reservation coordinator and the booking lifecycle state
// machine. The engine owns no storage of its own; it drives an injected Store
// port so that the same semantics hold against MySQL in production and an
// in-memory store in tests.
package engine

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by engine operations. Handlers translate these
// into HTTP responses; callers inside the engine compare with errors.Is.
var (
	// ErrInvalidRequest signals malformed or out-of-policy input (past date,
	// bad time-slot label, unapproved garage). Not retryable as-is.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrSlotUnavailable signals that the requested slot does not exist, is
	// blocked, or was claimed by a concurrent reservation. Callers should
	// re-query offered slots and retry with a different cell.
	ErrSlotUnavailable = errors.New("slot unavailable")

	// ErrSlotOccupied signals an attempt to block or clear a slot that is
	// currently booked. The booking must be cancelled first.
	ErrSlotOccupied = errors.New("slot occupied")

	// ErrQuotaExhausted signals that the garage has consumed its purchased
	// booking quota. Not retryable until more quota is purchased.
	ErrQuotaExhausted = errors.New("quota exhausted")

	// ErrInvalidTransition signals a lifecycle transition not permitted from
	// the booking's current status. No state is mutated.
	ErrInvalidTransition = errors.New("invalid transition")

	// ErrBusy signals that the admission serialization point could not be
	// entered within the configured wait. Retryable with backoff.
	ErrBusy = errors.New("busy")

	// ErrStorageFailure signals that the backing store could not commit the
	// unit of work. The whole unit rolled back; no partial claim survives.
	ErrStorageFailure = errors.New("storage failure")

	// ErrBookingNotFound is returned by lifecycle operations when the booking
	// id does not resolve to a record.
	ErrBookingNotFound = errors.New("booking not found")

	// ErrGarageNotFound is returned when the garage id does not resolve.
	ErrGarageNotFound = errors.New("garage not found")

	// ErrDuplicateReference is returned by the store when a generated booking
	// reference collides with an existing one. The coordinator retries code
	// generation; this error never reaches the caller.
	ErrDuplicateReference = errors.New("duplicate booking reference")
)

// storageError wraps a low-level store error so that callers can match it
// with errors.Is(err, ErrStorageFailure) while the cause stays visible in
// logs.
func storageError(err error) error {
	return fmt.Errorf("%w: %v", ErrStorageFailure, err)
}
