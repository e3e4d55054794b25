package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/herlandro/bookamot-saas-sub003/internal/engine"
	"github.com/herlandro/bookamot-saas-sub003/internal/model"
)

// SlotRepo provides data access to the slots table, one row per bookable
// (garage, date, time-slot) cell. Claim and release run inside the engine's
// transaction; the read path is lock-free. All dates are stored as DATE
// columns and exchanged with callers as YYYY-MM-DD strings in UTC.
type SlotRepo struct {
	db *sql.DB
}

// NewSlotRepo returns a new SlotRepo bound to the given database.
func NewSlotRepo(db *sql.DB) *SlotRepo { return &SlotRepo{db: db} }

// ClaimTx atomically flips an offerable cell to booked within the provided
// transaction. The conditional UPDATE is the exclusivity point: under
// concurrent claims for the same cell, MySQL serializes the row update and
// only the first caller matches the booked=0 predicate. Zero affected rows
// means the cell is missing, blocked or already booked, reported uniformly
// as engine.ErrSlotUnavailable.
func (r *SlotRepo) ClaimTx(ctx context.Context, tx *sql.Tx, garageID uint64, date, timeSlot string) error {
	const q = `UPDATE slots
	           SET booked = 1, updated_at = UTC_TIMESTAMP()
	           WHERE garage_id = ? AND slot_date = ? AND time_slot = ?
	             AND booked = 0 AND blocked = 0`
	res, err := tx.ExecContext(ctx, q, garageID, date, timeSlot)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return engine.ErrSlotUnavailable
	}
	return nil
}

// ReleaseTx clears the booked facet of a cell within the provided
// transaction. Releasing an already-free cell is a no-op; the lifecycle's
// transition legality check prevents double releases from ever mattering.
func (r *SlotRepo) ReleaseTx(ctx context.Context, tx *sql.Tx, garageID uint64, date, timeSlot string) error {
	const q = `UPDATE slots
	           SET booked = 0, updated_at = UTC_TIMESTAMP()
	           WHERE garage_id = ? AND slot_date = ? AND time_slot = ?`
	_, err := tx.ExecContext(ctx, q, garageID, date, timeSlot)
	return err
}

// PublishTx inserts a cell if it does not already exist and reports whether a
// row was created. INSERT IGNORE keyed on the (garage_id, slot_date,
// time_slot) unique index makes publishing idempotent: an existing cell keeps
// its booked/blocked state untouched.
func (r *SlotRepo) PublishTx(ctx context.Context, tx *sql.Tx, garageID uint64, date, timeSlot string) (bool, error) {
	const q = `INSERT IGNORE INTO slots (garage_id, slot_date, time_slot) VALUES (?, ?, ?)`
	res, err := tx.ExecContext(ctx, q, garageID, date, timeSlot)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// SetBlockedTx sets or clears the blocked facet. The cell is read FOR UPDATE
// first so the occupancy check and the write happen on one snapshot; a booked
// cell is refused with engine.ErrSlotOccupied and a missing cell with
// engine.ErrSlotUnavailable.
func (r *SlotRepo) SetBlockedTx(ctx context.Context, tx *sql.Tx, garageID uint64, date, timeSlot string, blocked bool) error {
	const sel = `SELECT id, booked FROM slots
	             WHERE garage_id = ? AND slot_date = ? AND time_slot = ?
	             FOR UPDATE`
	var id uint64
	var booked bool
	err := tx.QueryRowContext(ctx, sel, garageID, date, timeSlot).Scan(&id, &booked)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return engine.ErrSlotUnavailable
		}
		return err
	}
	if booked {
		return engine.ErrSlotOccupied
	}
	const upd = `UPDATE slots SET blocked = ?, updated_at = UTC_TIMESTAMP() WHERE id = ?`
	_, err = tx.ExecContext(ctx, upd, blocked, id)
	return err
}

// ListOffered returns the offerable cells of a garage within the inclusive
// date range, ordered by date then time slot. Read-only and unlocked; the
// result may be stale by the time the caller reserves and is re-validated by
// the claim.
func (r *SlotRepo) ListOffered(ctx context.Context, garageID uint64, from, to string) ([]model.Slot, error) {
	const q = `SELECT id, garage_id, DATE_FORMAT(slot_date, '%Y-%m-%d'), time_slot, blocked, booked, created_at, updated_at
	           FROM slots
	           WHERE garage_id = ? AND slot_date BETWEEN ? AND ?
	             AND booked = 0 AND blocked = 0
	           ORDER BY slot_date, time_slot`
	rows, err := r.db.QueryContext(ctx, q, garageID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	slots := make([]model.Slot, 0)
	for rows.Next() {
		var s model.Slot
		if err := rows.Scan(&s.ID, &s.GarageID, &s.SlotDate, &s.TimeSlot,
			&s.Blocked, &s.Booked, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		slots = append(slots, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return slots, nil
}
