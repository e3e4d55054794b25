package engine

import (
	"context"
	"errors"
	"testing"
)

func TestClassifyBands(t *testing.T) {
	cases := []struct {
		consumed, purchased int
		state               AdmissionState
		near, exhausted     bool
		remaining           int
	}{
		{0, 10, AdmissionOpen, false, false, 10},
		{7, 10, AdmissionOpen, false, false, 3},
		{8, 10, AdmissionNearLimit, true, false, 2},
		{9, 10, AdmissionNearLimit, true, false, 1},
		{10, 10, AdmissionExhausted, false, true, 0},
		{11, 10, AdmissionExhausted, false, true, 0},
		{4, 5, AdmissionNearLimit, true, false, 1},
		{1, 1, AdmissionExhausted, false, true, 0},
		// Zero ceiling: enforcement not configured, always open.
		{0, 0, AdmissionOpen, false, false, 0},
		{99, 0, AdmissionOpen, false, false, 0},
	}
	for _, tc := range cases {
		st := Classify(tc.consumed, tc.purchased)
		if st.State != tc.state || st.NearLimit != tc.near ||
			st.Exhausted != tc.exhausted || st.Remaining != tc.remaining {
			t.Errorf("Classify(%d, %d) = %+v, want state=%s near=%v exhausted=%v remaining=%d",
				tc.consumed, tc.purchased, st, tc.state, tc.near, tc.exhausted, tc.remaining)
		}
	}
}

func TestLedgerStatus(t *testing.T) {
	store := newMemStore()
	store.addGarage(approvedGarage(1, 5))
	date := futureDate(2)
	for _, l := range []string{"09:00-09:30", "09:30-10:00"} {
		store.addSlot(1, date, l)
	}
	co := NewCoordinator(store, nil)
	ledger := NewLedger(store)
	ctx := context.Background()

	st, err := ledger.Status(ctx, 1)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if st.Consumed != 0 || st.Remaining != 5 {
		t.Fatalf("fresh garage: %+v", st)
	}

	if _, err := co.Reserve(ctx, ReserveRequest{GarageID: 1, CustomerID: 1, VehicleID: 1,
		Date: date, TimeSlot: "09:00-09:30"}); err != nil {
		t.Fatalf("reserve: %v", err)
	}
	st, err = ledger.Status(ctx, 1)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if st.Consumed != 1 || st.Remaining != 4 {
		t.Fatalf("after one booking: %+v", st)
	}
}

func TestLedgerStatusUnknownGarage(t *testing.T) {
	ledger := NewLedger(newMemStore())
	if _, err := ledger.Status(context.Background(), 99); !errors.Is(err, ErrGarageNotFound) {
		t.Fatalf("err = %v, want ErrGarageNotFound", err)
	}
}
