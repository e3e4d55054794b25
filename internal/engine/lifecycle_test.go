package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/herlandro/bookamot-saas-sub003/internal/model"
)

func reserveOne(t *testing.T, store *memStore, co *Coordinator, date, slot string) *model.Booking {
	t.Helper()
	b, err := co.Reserve(context.Background(), ReserveRequest{
		GarageID: 1, CustomerID: 1, VehicleID: 1, Date: date, TimeSlot: slot,
	})
	if err != nil {
		t.Fatalf("setup reserve: %v", err)
	}
	return b
}

func advance(t *testing.T, lc *Lifecycle, id uint64, path ...model.BookingStatus) *model.Booking {
	t.Helper()
	var b *model.Booking
	var err error
	for _, target := range path {
		b, err = lc.Transition(context.Background(), id, target)
		if err != nil {
			t.Fatalf("transition to %s: %v", target, err)
		}
	}
	return b
}

// TestTransitionLegality walks the full state x target product and checks it
// against the transition table, so the legality matrix can never drift
// silently.
func TestTransitionLegality(t *testing.T) {
	all := []model.BookingStatus{
		model.StatusPending, model.StatusConfirmed, model.StatusInProgress,
		model.StatusCompleted, model.StatusCancelled, model.StatusNoShow,
	}
	legal := map[model.BookingStatus]map[model.BookingStatus]bool{
		model.StatusPending:    {model.StatusConfirmed: true, model.StatusCancelled: true},
		model.StatusConfirmed:  {model.StatusInProgress: true, model.StatusCancelled: true, model.StatusNoShow: true},
		model.StatusInProgress: {model.StatusCompleted: true, model.StatusCancelled: true},
	}

	date := futureDate(3)
	for _, from := range all {
		for _, to := range all {
			want := legal[from][to]
			if got := CanTransition(from, to); got != want {
				t.Errorf("CanTransition(%s, %s) = %v, want %v", from, to, got, want)
			}
			if want {
				continue
			}
			// Drive a real booking into `from` and verify the illegal
			// transition mutates nothing.
			store := newMemStore()
			store.addGarage(approvedGarage(1, 0))
			store.addSlot(1, date, "09:00-09:30")
			co := NewCoordinator(store, nil)
			lc := NewLifecycle(store, nil, nil)
			b := reserveOne(t, store, co, date, "09:00-09:30")
			switch from {
			case model.StatusConfirmed:
				advance(t, lc, b.ID, model.StatusConfirmed)
			case model.StatusInProgress:
				advance(t, lc, b.ID, model.StatusConfirmed, model.StatusInProgress)
			case model.StatusCompleted:
				advance(t, lc, b.ID, model.StatusConfirmed, model.StatusInProgress, model.StatusCompleted)
			case model.StatusCancelled:
				advance(t, lc, b.ID, model.StatusCancelled)
			case model.StatusNoShow:
				advance(t, lc, b.ID, model.StatusConfirmed, model.StatusNoShow)
			}
			before, _ := store.BookingByID(context.Background(), b.ID)
			_, err := lc.Transition(context.Background(), b.ID, to)
			if to == model.StatusPending {
				// PENDING is never a legal target; it is rejected as a bad
				// request before the state machine is consulted.
				if !errors.Is(err, ErrInvalidRequest) {
					t.Errorf("%s -> PENDING: err = %v, want ErrInvalidRequest", from, err)
				}
			} else if !errors.Is(err, ErrInvalidTransition) {
				t.Errorf("%s -> %s: err = %v, want ErrInvalidTransition", from, to, err)
			}
			after, _ := store.BookingByID(context.Background(), b.ID)
			if before.Status != after.Status {
				t.Errorf("%s -> %s: status mutated to %s on illegal transition", from, to, after.Status)
			}
		}
	}
}

func TestCancelReleasesSlot(t *testing.T) {
	store := newMemStore()
	store.addGarage(approvedGarage(1, 0))
	date := futureDate(3)
	store.addSlot(1, date, "09:00-09:30")
	co := NewCoordinator(store, nil)
	lc := NewLifecycle(store, nil, nil)

	for _, prep := range [][]model.BookingStatus{
		nil, // cancel straight from PENDING
		{model.StatusConfirmed},
		{model.StatusConfirmed, model.StatusInProgress},
	} {
		b := reserveOne(t, store, co, date, "09:00-09:30")
		if len(prep) > 0 {
			advance(t, lc, b.ID, prep...)
		}
		if _, err := lc.Transition(context.Background(), b.ID, model.StatusCancelled); err != nil {
			t.Fatalf("cancel after %v: %v", prep, err)
		}
		if store.slot(1, date, "09:00-09:30").Booked {
			t.Fatalf("slot still booked after cancel from %v", prep)
		}
		// The freed slot must be reservable again.
	}
}

func TestNoDoubleRelease(t *testing.T) {
	store := newMemStore()
	store.addGarage(approvedGarage(1, 0))
	date := futureDate(3)
	store.addSlot(1, date, "09:00-09:30")
	co := NewCoordinator(store, nil)
	lc := NewLifecycle(store, nil, nil)
	ctx := context.Background()

	first := reserveOne(t, store, co, date, "09:00-09:30")
	if _, err := lc.Transition(ctx, first.ID, model.StatusCancelled); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	// Another customer takes the freed slot.
	second, err := co.Reserve(ctx, ReserveRequest{
		GarageID: 1, CustomerID: 2, VehicleID: 2, Date: date, TimeSlot: "09:00-09:30",
	})
	if err != nil {
		t.Fatalf("re-reserve freed slot: %v", err)
	}
	// Cancelling the already-cancelled booking must fail and must not free
	// the slot out from under the second booking.
	if _, err := lc.Transition(ctx, first.ID, model.StatusCancelled); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("double cancel: err = %v, want ErrInvalidTransition", err)
	}
	if !store.slot(1, date, "09:00-09:30").Booked {
		t.Fatal("second booking's slot was released by the double cancel")
	}
	if b, _ := store.BookingByID(ctx, second.ID); b.Status != model.StatusPending {
		t.Fatalf("second booking status = %s, want PENDING", b.Status)
	}
}

func TestNoShowKeepsSlotConsumed(t *testing.T) {
	store := newMemStore()
	store.addGarage(approvedGarage(1, 0))
	date := futureDate(3)
	store.addSlot(1, date, "09:00-09:30")
	co := NewCoordinator(store, nil)
	lc := NewLifecycle(store, nil, nil)

	b := reserveOne(t, store, co, date, "09:00-09:30")
	advance(t, lc, b.ID, model.StatusConfirmed, model.StatusNoShow)
	if !store.slot(1, date, "09:00-09:30").Booked {
		t.Fatal("no-show released the slot; historical occupancy must be preserved")
	}
}

func TestTransitionNotificationsAndReviewUnlock(t *testing.T) {
	store := newMemStore()
	store.addGarage(approvedGarage(1, 0))
	date := futureDate(3)
	store.addSlot(1, date, "09:00-09:30")

	notifier := &recordingNotifier{}
	gate := &recordingGate{}
	co := NewCoordinator(store, notifier)
	lc := NewLifecycle(store, notifier, gate)

	b := reserveOne(t, store, co, date, "09:00-09:30")
	advance(t, lc, b.ID, model.StatusConfirmed, model.StatusInProgress, model.StatusCompleted)

	want := []string{EventBookingCreated, EventBookingConfirmed, EventBookingCompleted}
	got := notifier.all()
	if len(got) != len(want) {
		t.Fatalf("events = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("events = %v, want %v", got, want)
		}
	}
	if len(gate.ids) != 1 || gate.ids[0] != b.ID {
		t.Fatalf("review unlock ids = %v, want [%d]", gate.ids, b.ID)
	}
}

func TestTransitionUnknownBooking(t *testing.T) {
	store := newMemStore()
	lc := NewLifecycle(store, nil, nil)
	if _, err := lc.Transition(context.Background(), 42, model.StatusConfirmed); !errors.Is(err, ErrBookingNotFound) {
		t.Fatalf("err = %v, want ErrBookingNotFound", err)
	}
}
