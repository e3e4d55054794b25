package service

import (
	"context"

	"github.com/herlandro/bookamot-saas-sub003/internal/repository"
)

// ReviewGate implements engine.ReviewGate against the bookings table. The
// review subsystem reads the review_unlocked flag to decide whether a
// customer may author a review; setting a flag that is already set is a
// no-op, which gives NotifyCompleted its idempotency.
type ReviewGate struct {
	bookings *repository.BookingRepo
}

// NewReviewGate returns a ReviewGate bound to the booking repository.
func NewReviewGate(bookings *repository.BookingRepo) *ReviewGate {
	return &ReviewGate{bookings: bookings}
}

// NotifyCompleted marks the booking reviewable.
func (g *ReviewGate) NotifyCompleted(ctx context.Context, bookingID uint64) error {
	return g.bookings.MarkReviewUnlocked(ctx, bookingID)
}
