package engine

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/herlandro/bookamot-saas-sub003/internal/model"
)

func futureDate(days int) string {
	return time.Now().UTC().AddDate(0, 0, days).Format(dateLayout)
}

func approvedGarage(id uint64, quota int) *model.Garage {
	return &model.Garage{ID: id, OwnerID: 100 + id, Name: "Test Garage",
		ApprovalStatus: model.ApprovalApproved, PurchasedQuota: quota}
}

func TestReserveHappyPath(t *testing.T) {
	store := newMemStore()
	store.addGarage(approvedGarage(1, 10))
	date := futureDate(3)
	store.addSlot(1, date, "09:00-09:30")

	notifier := &recordingNotifier{}
	co := NewCoordinator(store, notifier)

	b, err := co.Reserve(context.Background(), ReserveRequest{
		GarageID: 1, CustomerID: 7, VehicleID: 9, Date: date, TimeSlot: "09:00-09:30",
	})
	if err != nil {
		t.Fatalf("reserve failed: %v", err)
	}
	if b.Status != model.StatusPending {
		t.Fatalf("status = %s, want PENDING", b.Status)
	}
	if b.Reference == "" || b.ID == 0 {
		t.Fatalf("booking not fully populated: %+v", b)
	}
	if !store.slot(1, date, "09:00-09:30").Booked {
		t.Fatal("slot not booked after successful reserve")
	}
	events := notifier.all()
	if len(events) != 1 || events[0] != EventBookingCreated {
		t.Fatalf("events = %v, want [BOOKING_CREATED]", events)
	}
}

func TestReserveValidation(t *testing.T) {
	store := newMemStore()
	store.addGarage(approvedGarage(1, 0))
	co := NewCoordinator(store, nil)
	ctx := context.Background()

	cases := []struct {
		name string
		req  ReserveRequest
	}{
		{"past date", ReserveRequest{GarageID: 1, CustomerID: 1, VehicleID: 1,
			Date: "2020-01-01", TimeSlot: "09:00-09:30"}},
		{"bad date", ReserveRequest{GarageID: 1, CustomerID: 1, VehicleID: 1,
			Date: "01/02/2030", TimeSlot: "09:00-09:30"}},
		{"bad slot label", ReserveRequest{GarageID: 1, CustomerID: 1, VehicleID: 1,
			Date: futureDate(1), TimeSlot: "9am-10am"}},
		{"inverted slot label", ReserveRequest{GarageID: 1, CustomerID: 1, VehicleID: 1,
			Date: futureDate(1), TimeSlot: "10:00-09:00"}},
		{"missing vehicle", ReserveRequest{GarageID: 1, CustomerID: 1,
			Date: futureDate(1), TimeSlot: "09:00-09:30"}},
	}
	for _, tc := range cases {
		if _, err := co.Reserve(ctx, tc.req); !errors.Is(err, ErrInvalidRequest) {
			t.Errorf("%s: err = %v, want ErrInvalidRequest", tc.name, err)
		}
	}
}

func TestReserveRequiresApprovedGarage(t *testing.T) {
	store := newMemStore()
	date := futureDate(2)
	for i, st := range []model.ApprovalStatus{
		model.ApprovalPending, model.ApprovalInfoRequested, model.ApprovalRejected,
	} {
		id := uint64(i + 1)
		g := approvedGarage(id, 0)
		g.ApprovalStatus = st
		store.addGarage(g)
		store.addSlot(id, date, "09:00-09:30")
	}
	co := NewCoordinator(store, nil)
	for id := uint64(1); id <= 3; id++ {
		_, err := co.Reserve(context.Background(), ReserveRequest{
			GarageID: id, CustomerID: 1, VehicleID: 1, Date: date, TimeSlot: "09:00-09:30",
		})
		if !errors.Is(err, ErrInvalidRequest) {
			t.Errorf("garage %d: err = %v, want ErrInvalidRequest", id, err)
		}
		if store.slot(id, date, "09:00-09:30").Booked {
			t.Errorf("garage %d: slot claimed despite rejection", id)
		}
	}
}

// TestReserveSlotExclusivity issues N concurrent reservations for one cell
// and requires exactly one winner; everyone else sees SlotUnavailable or
// Busy, and exactly one booking exists for the cell.
func TestReserveSlotExclusivity(t *testing.T) {
	store := newMemStore()
	store.addGarage(approvedGarage(1, 0))
	date := futureDate(5)
	store.addSlot(1, date, "10:00-10:30")

	co := NewCoordinator(store, nil)

	const n = 32
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = co.Reserve(context.Background(), ReserveRequest{
				GarageID: 1, CustomerID: uint64(i + 1), VehicleID: uint64(i + 1),
				Date: date, TimeSlot: "10:00-10:30",
			})
		}(i)
	}
	wg.Wait()

	wins := 0
	for i, err := range errs {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, ErrSlotUnavailable), errors.Is(err, ErrBusy):
		default:
			t.Fatalf("caller %d: unexpected error %v", i, err)
		}
	}
	if wins != 1 {
		t.Fatalf("winners = %d, want exactly 1", wins)
	}
	active := 0
	for _, b := range store.bookings {
		if b.GarageID == 1 && b.SlotDate == date && b.TimeSlot == "10:00-10:30" {
			active++
		}
	}
	if active != 1 {
		t.Fatalf("bookings for cell = %d, want exactly 1", active)
	}
}

// TestReserveQuotaCeiling fills a quota of k, requires the k+1-th attempt to
// fail with QuotaExhausted, and requires one cancellation to readmit exactly
// one more booking.
func TestReserveQuotaCeiling(t *testing.T) {
	const k = 3
	store := newMemStore()
	store.addGarage(approvedGarage(1, k))
	date := futureDate(4)
	pattern := []string{"09:00-09:30", "09:30-10:00", "10:00-10:30", "10:30-11:00"}
	for _, label := range pattern {
		store.addSlot(1, date, label)
	}

	co := NewCoordinator(store, nil)
	lc := NewLifecycle(store, nil, nil)
	ctx := context.Background()

	var first *model.Booking
	for i := 0; i < k; i++ {
		b, err := co.Reserve(ctx, ReserveRequest{
			GarageID: 1, CustomerID: uint64(i + 1), VehicleID: uint64(i + 1),
			Date: date, TimeSlot: pattern[i],
		})
		if err != nil {
			t.Fatalf("reserve %d failed: %v", i, err)
		}
		if first == nil {
			first = b
		}
	}

	_, err := co.Reserve(ctx, ReserveRequest{
		GarageID: 1, CustomerID: 50, VehicleID: 50, Date: date, TimeSlot: pattern[k],
	})
	if !errors.Is(err, ErrQuotaExhausted) {
		t.Fatalf("over-quota reserve: err = %v, want ErrQuotaExhausted", err)
	}

	if _, err := lc.Transition(ctx, first.ID, model.StatusCancelled); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if _, err := co.Reserve(ctx, ReserveRequest{
		GarageID: 1, CustomerID: 50, VehicleID: 50, Date: date, TimeSlot: pattern[k],
	}); err != nil {
		t.Fatalf("post-cancel reserve failed: %v", err)
	}
	if _, err := co.Reserve(ctx, ReserveRequest{
		GarageID: 1, CustomerID: 60, VehicleID: 60, Date: date, TimeSlot: first.TimeSlot,
	}); !errors.Is(err, ErrQuotaExhausted) {
		t.Fatalf("second post-cancel reserve: err = %v, want ErrQuotaExhausted", err)
	}
}

func TestReserveZeroQuotaUnenforced(t *testing.T) {
	store := newMemStore()
	store.addGarage(approvedGarage(1, 0))
	date := futureDate(2)
	labels := []string{"09:00-09:30", "09:30-10:00", "10:00-10:30"}
	for _, l := range labels {
		store.addSlot(1, date, l)
	}
	co := NewCoordinator(store, nil)
	for i, l := range labels {
		if _, err := co.Reserve(context.Background(), ReserveRequest{
			GarageID: 1, CustomerID: uint64(i + 1), VehicleID: uint64(i + 1),
			Date: date, TimeSlot: l,
		}); err != nil {
			t.Fatalf("reserve %d with unenforced quota failed: %v", i, err)
		}
	}
}

func TestReserveBusyOnContendedAdmission(t *testing.T) {
	store := newMemStore()
	store.addGarage(approvedGarage(1, 0))
	date := futureDate(2)
	store.addSlot(1, date, "09:00-09:30")

	co := NewCoordinator(store, nil)
	co.SetAdmissionWait(10 * time.Millisecond)

	// Hold the garage's admission lock so the reservation cannot enter.
	release, ok := co.locks.acquire(context.Background(), 1)
	if !ok {
		t.Fatal("setup: could not take admission lock")
	}
	defer release()

	_, err := co.Reserve(context.Background(), ReserveRequest{
		GarageID: 1, CustomerID: 1, VehicleID: 1, Date: date, TimeSlot: "09:00-09:30",
	})
	if !errors.Is(err, ErrBusy) {
		t.Fatalf("err = %v, want ErrBusy", err)
	}
	if store.slot(1, date, "09:00-09:30").Booked {
		t.Fatal("slot claimed despite Busy")
	}
}

// TestQuotaScenario walks the end-to-end scenario: quota 2, two successful
// reservations exhaust it, a third fails, cancelling the first readmits, and
// the freed slot is reservable again.
func TestQuotaScenario(t *testing.T) {
	store := newMemStore()
	store.addGarage(approvedGarage(1, 2))
	date := futureDate(10)
	store.addSlot(1, date, "09:00-09:30")
	store.addSlot(1, date, "11:00-11:30")

	co := NewCoordinator(store, nil)
	lc := NewLifecycle(store, nil, nil)
	ledger := NewLedger(store)
	ctx := context.Background()

	a, err := co.Reserve(ctx, ReserveRequest{GarageID: 1, CustomerID: 1, VehicleID: 1,
		Date: date, TimeSlot: "09:00-09:30"})
	if err != nil {
		t.Fatalf("reserve A: %v", err)
	}
	st, _ := ledger.Status(ctx, 1)
	if st.Consumed != 1 || st.Exhausted {
		t.Fatalf("after A: %+v", st)
	}

	if _, err := co.Reserve(ctx, ReserveRequest{GarageID: 1, CustomerID: 2, VehicleID: 2,
		Date: date, TimeSlot: "11:00-11:30"}); err != nil {
		t.Fatalf("reserve B: %v", err)
	}
	st, _ = ledger.Status(ctx, 1)
	if st.Consumed != 2 || !st.Exhausted {
		t.Fatalf("after B: %+v", st)
	}

	if _, err := co.Reserve(ctx, ReserveRequest{GarageID: 1, CustomerID: 3, VehicleID: 3,
		Date: date, TimeSlot: "09:00-09:30"}); !errors.Is(err, ErrQuotaExhausted) {
		t.Fatalf("reserve C: err = %v, want ErrQuotaExhausted", err)
	}

	if _, err := lc.Transition(ctx, a.ID, model.StatusCancelled); err != nil {
		t.Fatalf("cancel A: %v", err)
	}
	st, _ = ledger.Status(ctx, 1)
	if st.Consumed != 1 || st.Exhausted {
		t.Fatalf("after cancel A: %+v", st)
	}

	if _, err := co.Reserve(ctx, ReserveRequest{GarageID: 1, CustomerID: 3, VehicleID: 3,
		Date: date, TimeSlot: "09:00-09:30"}); err != nil {
		t.Fatalf("reserve C retry on freed slot: %v", err)
	}
}
