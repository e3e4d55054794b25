package engine

import (
	"context"
	"errors"
	"testing"
)

func TestPublishIdempotent(t *testing.T) {
	store := newMemStore()
	cal := NewCalendar(store)
	ctx := context.Background()
	from, to := futureDate(1), futureDate(2)
	pattern := []string{"09:00-09:30", "09:30-10:00"}

	created, err := cal.Publish(ctx, 1, from, to, pattern)
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	if created != 4 {
		t.Fatalf("created = %d, want 4 (2 days x 2 slots)", created)
	}

	// A booked cell must survive a re-publish untouched.
	store.addGarage(approvedGarage(1, 0))
	co := NewCoordinator(store, nil)
	if _, err := co.Reserve(ctx, ReserveRequest{
		GarageID: 1, CustomerID: 1, VehicleID: 1, Date: from, TimeSlot: "09:00-09:30",
	}); err != nil {
		t.Fatalf("reserve: %v", err)
	}

	created, err = cal.Publish(ctx, 1, from, to, pattern)
	if err != nil {
		t.Fatalf("re-publish: %v", err)
	}
	if created != 0 {
		t.Fatalf("re-publish created = %d, want 0", created)
	}
	if !store.slot(1, from, "09:00-09:30").Booked {
		t.Fatal("re-publish cleared the booked facet")
	}
}

func TestPublishValidation(t *testing.T) {
	cal := NewCalendar(newMemStore())
	ctx := context.Background()
	cases := []struct {
		name     string
		from, to string
		pattern  []string
	}{
		{"bad from", "nope", futureDate(1), []string{"09:00-09:30"}},
		{"end before start", futureDate(5), futureDate(1), []string{"09:00-09:30"}},
		{"empty pattern", futureDate(1), futureDate(1), nil},
		{"bad label", futureDate(1), futureDate(1), []string{"morning"}},
		{"oversized range", futureDate(1), futureDate(500), []string{"09:00-09:30"}},
	}
	for _, tc := range cases {
		if _, err := cal.Publish(ctx, 1, tc.from, tc.to, tc.pattern); !errors.Is(err, ErrInvalidRequest) {
			t.Errorf("%s: err = %v, want ErrInvalidRequest", tc.name, err)
		}
	}
}

func TestBlockRefusesBookedSlot(t *testing.T) {
	store := newMemStore()
	store.addGarage(approvedGarage(1, 0))
	date := futureDate(2)
	store.addSlot(1, date, "09:00-09:30")
	cal := NewCalendar(store)
	co := NewCoordinator(store, nil)
	ctx := context.Background()

	if _, err := co.Reserve(ctx, ReserveRequest{
		GarageID: 1, CustomerID: 1, VehicleID: 1, Date: date, TimeSlot: "09:00-09:30",
	}); err != nil {
		t.Fatalf("reserve: %v", err)
	}
	if err := cal.Block(ctx, 1, date, "09:00-09:30"); !errors.Is(err, ErrSlotOccupied) {
		t.Fatalf("block booked slot: err = %v, want ErrSlotOccupied", err)
	}
}

func TestBlockHidesSlotFromOfferedAndClaim(t *testing.T) {
	store := newMemStore()
	store.addGarage(approvedGarage(1, 0))
	date := futureDate(2)
	store.addSlot(1, date, "09:00-09:30")
	store.addSlot(1, date, "10:00-10:30")
	cal := NewCalendar(store)
	co := NewCoordinator(store, nil)
	ctx := context.Background()

	if err := cal.Block(ctx, 1, date, "09:00-09:30"); err != nil {
		t.Fatalf("block: %v", err)
	}
	offered, err := cal.ListOffered(ctx, 1, date, date)
	if err != nil {
		t.Fatalf("list offered: %v", err)
	}
	if len(offered) != 1 || offered[0].TimeSlot != "10:00-10:30" {
		t.Fatalf("offered = %+v, want only 10:00-10:30", offered)
	}
	if _, err := co.Reserve(ctx, ReserveRequest{
		GarageID: 1, CustomerID: 1, VehicleID: 1, Date: date, TimeSlot: "09:00-09:30",
	}); !errors.Is(err, ErrSlotUnavailable) {
		t.Fatalf("reserve blocked slot: err = %v, want ErrSlotUnavailable", err)
	}

	if err := cal.Unblock(ctx, 1, date, "09:00-09:30"); err != nil {
		t.Fatalf("unblock: %v", err)
	}
	if _, err := co.Reserve(ctx, ReserveRequest{
		GarageID: 1, CustomerID: 1, VehicleID: 1, Date: date, TimeSlot: "09:00-09:30",
	}); err != nil {
		t.Fatalf("reserve after unblock: %v", err)
	}
}

func TestBlockUnknownSlot(t *testing.T) {
	cal := NewCalendar(newMemStore())
	err := cal.Block(context.Background(), 1, futureDate(1), "09:00-09:30")
	if !errors.Is(err, ErrSlotUnavailable) {
		t.Fatalf("err = %v, want ErrSlotUnavailable", err)
	}
}
