package engine

import (
	"context"
	"errors"
)

// AdmissionState classifies how close a garage is to its purchased booking
// quota. The classification is pure and side-effect free; it feeds the
// garage dashboard and the coordinator's admission check.
type AdmissionState string

const (
	// AdmissionOpen: more than 20% of the purchased quota remains, or quota
	// enforcement is not configured for the garage.
	AdmissionOpen AdmissionState = "OPEN"
	// AdmissionNearLimit: 80% or more of the quota is consumed but some
	// headroom remains.
	AdmissionNearLimit AdmissionState = "NEAR_LIMIT"
	// AdmissionExhausted: consumption reached the purchased ceiling; new
	// reservations are rejected until quota is topped up.
	AdmissionExhausted AdmissionState = "EXHAUSTED"
)

// QuotaStatus is the dashboard view of a garage's quota ledger.
type QuotaStatus struct {
	Consumed  int            `json:"consumed_count"`
	Purchased int            `json:"purchased_quota"`
	Remaining int            `json:"remaining"`
	State     AdmissionState `json:"admission_state"`
	NearLimit bool           `json:"is_near_limit"`
	Exhausted bool           `json:"is_exhausted"`
}

// Ledger derives quota consumption per garage from the booking table. The
// purchased ceiling is an externally mutated field the ledger only reads;
// top-ups arrive through the admin purchase flow. A ceiling of zero means
// quota enforcement is not configured and admission is always open.
type Ledger struct {
	store Store
}

// NewLedger returns a Ledger bound to the given store.
func NewLedger(store Store) *Ledger { return &Ledger{store: store} }

// Consumed returns the count of non-cancelled bookings for the garage. The
// value reflects the latest committed state at the instant of the read and
// may be stale by the time the caller acts on it; the coordinator re-checks
// inside its transaction.
func (l *Ledger) Consumed(ctx context.Context, garageID uint64) (int, error) {
	n, err := l.store.CountActive(ctx, garageID)
	if err != nil {
		return 0, storageError(err)
	}
	return n, nil
}

// Status returns the full quota view for a garage.
func (l *Ledger) Status(ctx context.Context, garageID uint64) (*QuotaStatus, error) {
	g, err := l.store.GarageByID(ctx, garageID)
	if err != nil {
		if errors.Is(err, ErrGarageNotFound) {
			return nil, err
		}
		return nil, storageError(err)
	}
	consumed, err := l.Consumed(ctx, garageID)
	if err != nil {
		return nil, err
	}
	return Classify(consumed, g.PurchasedQuota), nil
}

// Classify builds a QuotaStatus from a consumed count and a purchased
// ceiling. Exported so the coordinator and tests share one definition of the
// admission bands.
func Classify(consumed, purchased int) *QuotaStatus {
	st := &QuotaStatus{Consumed: consumed, Purchased: purchased}
	if purchased <= 0 {
		// No ceiling configured: remaining is meaningless, admission open.
		st.State = AdmissionOpen
		return st
	}
	st.Remaining = purchased - consumed
	if st.Remaining < 0 {
		st.Remaining = 0
	}
	switch {
	case consumed >= purchased:
		st.State = AdmissionExhausted
		st.Exhausted = true
	case float64(consumed)/float64(purchased) >= 0.8:
		st.State = AdmissionNearLimit
		st.NearLimit = true
	default:
		st.State = AdmissionOpen
	}
	return st
}
