// Package repository implements MySQL persistence for the booking portal and
// the engine's Store port. Sentinel errors defined here let handlers
// distinguish failure scenarios without inspecting SQL errors; engine-level
// sentinels (slot unavailable, duplicate reference and friends) are returned
// straight from the engine package so errors.Is works across layers.
package repository

import "errors"

// ErrForbidden is returned when the caller attempts an operation on a
// resource they do not own, e.g. a garage acting on another garage's booking.
// Handlers should translate this into an HTTP 403 response.
var ErrForbidden = errors.New("forbidden")

// ErrDuplicateEmail is returned when registering a user with an email that is
// already taken. Handlers should translate this into an HTTP 409 response.
var ErrDuplicateEmail = errors.New("email already registered")

// ErrDuplicateVehicle is returned when a customer registers the same number
// plate twice.
var ErrDuplicateVehicle = errors.New("vehicle already registered")
