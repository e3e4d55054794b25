package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/herlandro/bookamot-saas-sub003/internal/engine"
	"github.com/herlandro/bookamot-saas-sub003/internal/model"
)

// Store implements engine.Store on top of MySQL, delegating to the table
// repositories. WithinTx follows the same begin/commit/rollback discipline
// used throughout the handlers: a committed flag plus a deferred rollback so
// no error path can leave a dangling claim.
type Store struct {
	db       *sql.DB
	slots    *SlotRepo
	bookings *BookingRepo
	garages  *GarageRepo
}

// NewStore wires the engine's persistence port from the table repositories.
func NewStore(db *sql.DB, slots *SlotRepo, bookings *BookingRepo, garages *GarageRepo) *Store {
	return &Store{db: db, slots: slots, bookings: bookings, garages: garages}
}

// WithinTx runs fn inside one database transaction. Errors from fn roll the
// unit back and pass through unchanged so the engine can match its sentinels.
func (s *Store) WithinTx(ctx context.Context, fn func(tx engine.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if err := fn(&storeTx{store: s, tx: tx}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// GarageByID implements the advisory garage read.
func (s *Store) GarageByID(ctx context.Context, garageID uint64) (*model.Garage, error) {
	return s.garages.GetByID(ctx, garageID)
}

// CountActive implements the advisory consumed-quota read.
func (s *Store) CountActive(ctx context.Context, garageID uint64) (int, error) {
	return s.bookings.CountActive(ctx, garageID)
}

// BookingByID implements the advisory booking read.
func (s *Store) BookingByID(ctx context.Context, bookingID uint64) (*model.Booking, error) {
	return s.bookings.GetByID(ctx, bookingID)
}

// ListOffered implements the advisory offered-slots read.
func (s *Store) ListOffered(ctx context.Context, garageID uint64, from, to string) ([]model.Slot, error) {
	return s.slots.ListOffered(ctx, garageID, from, to)
}

// storeTx is the transaction-scoped view handed to the engine.
type storeTx struct {
	store *Store
	tx    *sql.Tx
}

func (t *storeTx) GarageForUpdate(ctx context.Context, garageID uint64) (*model.Garage, error) {
	return t.store.garages.GetForUpdateTx(ctx, t.tx, garageID)
}

func (t *storeTx) CountActive(ctx context.Context, garageID uint64) (int, error) {
	return t.store.bookings.CountActiveTx(ctx, t.tx, garageID)
}

func (t *storeTx) ClaimSlot(ctx context.Context, garageID uint64, date, timeSlot string) error {
	return t.store.slots.ClaimTx(ctx, t.tx, garageID, date, timeSlot)
}

func (t *storeTx) ReleaseSlot(ctx context.Context, garageID uint64, date, timeSlot string) error {
	return t.store.slots.ReleaseTx(ctx, t.tx, garageID, date, timeSlot)
}

func (t *storeTx) PublishSlot(ctx context.Context, garageID uint64, date, timeSlot string) (bool, error) {
	return t.store.slots.PublishTx(ctx, t.tx, garageID, date, timeSlot)
}

func (t *storeTx) SetSlotBlocked(ctx context.Context, garageID uint64, date, timeSlot string, blocked bool) error {
	return t.store.slots.SetBlockedTx(ctx, t.tx, garageID, date, timeSlot, blocked)
}

func (t *storeTx) CreateBooking(ctx context.Context, b *model.Booking) error {
	return t.store.bookings.CreateTx(ctx, t.tx, b)
}

func (t *storeTx) BookingForUpdate(ctx context.Context, bookingID uint64) (*model.Booking, error) {
	return t.store.bookings.GetForUpdateTx(ctx, t.tx, bookingID)
}

func (t *storeTx) UpdateBookingStatus(ctx context.Context, bookingID uint64, status model.BookingStatus, at time.Time) error {
	return t.store.bookings.UpdateStatusTx(ctx, t.tx, bookingID, status, at)
}
