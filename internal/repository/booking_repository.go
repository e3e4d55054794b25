package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/herlandro/bookamot-saas-sub003/internal/engine"
	"github.com/herlandro/bookamot-saas-sub003/internal/model"
)

// mysqlDuplicateEntry is the MySQL error number for a unique-key violation.
const mysqlDuplicateEntry = 1062

// BookingRepo provides data access to the bookings table. Creation and
// status updates run inside the engine's transaction; listing variants join
// garage and vehicle details for display. All timestamps are stored in UTC.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo returns a new BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

// statusColumns maps each lifecycle status to the timestamp column recorded
// when the booking enters it.
var statusColumns = map[model.BookingStatus]string{
	model.StatusConfirmed:  "confirmed_at",
	model.StatusInProgress: "started_at",
	model.StatusCompleted:  "completed_at",
	model.StatusCancelled:  "cancelled_at",
	model.StatusNoShow:     "no_show_at",
}

// CreateTx inserts a new booking within the provided transaction and
// populates the generated ID and CreatedAt. A unique-key violation on the
// reference column is reported as engine.ErrDuplicateReference so the
// coordinator can retry code generation without surfacing the collision.
func (r *BookingRepo) CreateTx(ctx context.Context, tx *sql.Tx, b *model.Booking) error {
	const q = `INSERT INTO bookings
	           (reference, garage_id, customer_id, vehicle_id, slot_date, time_slot, status)
	           VALUES (?, ?, ?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, q,
		b.Reference, b.GarageID, b.CustomerID, b.VehicleID, b.SlotDate, b.TimeSlot, b.Status)
	if err != nil {
		var me *mysql.MySQLError
		if errors.As(err, &me) && me.Number == mysqlDuplicateEntry {
			return engine.ErrDuplicateReference
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)
	// Query back the created_at default assigned by the database.
	const sel = `SELECT created_at FROM bookings WHERE id = ?`
	return tx.QueryRowContext(ctx, sel, b.ID).Scan(&b.CreatedAt)
}

// GetForUpdateTx loads a booking row and holds it exclusively until the
// transaction ends, so a transition and a concurrent transition on the same
// booking serialize. Returns engine.ErrBookingNotFound when absent.
func (r *BookingRepo) GetForUpdateTx(ctx context.Context, tx *sql.Tx, bookingID uint64) (*model.Booking, error) {
	const q = `SELECT id, reference, garage_id, customer_id, vehicle_id,
	                  DATE_FORMAT(slot_date, '%Y-%m-%d'), time_slot, status, review_unlocked,
	                  created_at, confirmed_at, started_at, completed_at, cancelled_at, no_show_at
	           FROM bookings WHERE id = ? FOR UPDATE`
	b, err := scanBooking(tx.QueryRowContext(ctx, q, bookingID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, engine.ErrBookingNotFound
		}
		return nil, err
	}
	return b, nil
}

// UpdateStatusTx records a transition: the new status and its timestamp
// column, within the provided transaction.
func (r *BookingRepo) UpdateStatusTx(ctx context.Context, tx *sql.Tx, bookingID uint64, status model.BookingStatus, at time.Time) error {
	col, ok := statusColumns[status]
	if !ok {
		return engine.ErrInvalidTransition
	}
	// Column name comes from the fixed map above, never from input.
	q := `UPDATE bookings SET status = ?, ` + col + ` = ? WHERE id = ?`
	_, err := tx.ExecContext(ctx, q, status, at.UTC().Format("2006-01-02 15:04:05"), bookingID)
	return err
}

// CountActiveTx counts non-cancelled bookings for a garage within the
// provided transaction. This is the quota ledger's consumed value as seen on
// the transaction snapshot; together with the FOR UPDATE garage row lock it
// cannot be invalidated by a concurrent reservation committing in between.
func (r *BookingRepo) CountActiveTx(ctx context.Context, tx *sql.Tx, garageID uint64) (int, error) {
	const q = `SELECT COUNT(*) FROM bookings WHERE garage_id = ? AND status <> 'CANCELLED'`
	var n int
	err := tx.QueryRowContext(ctx, q, garageID).Scan(&n)
	return n, err
}

// CountActive is the advisory variant of CountActiveTx for dashboards.
func (r *BookingRepo) CountActive(ctx context.Context, garageID uint64) (int, error) {
	const q = `SELECT COUNT(*) FROM bookings WHERE garage_id = ? AND status <> 'CANCELLED'`
	var n int
	err := r.db.QueryRowContext(ctx, q, garageID).Scan(&n)
	return n, err
}

// GetByID loads a booking outside any transaction. Returns
// engine.ErrBookingNotFound when the id does not resolve.
func (r *BookingRepo) GetByID(ctx context.Context, bookingID uint64) (*model.Booking, error) {
	const q = `SELECT id, reference, garage_id, customer_id, vehicle_id,
	                  DATE_FORMAT(slot_date, '%Y-%m-%d'), time_slot, status, review_unlocked,
	                  created_at, confirmed_at, started_at, completed_at, cancelled_at, no_show_at
	           FROM bookings WHERE id = ?`
	b, err := scanBooking(r.db.QueryRowContext(ctx, q, bookingID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, engine.ErrBookingNotFound
		}
		return nil, err
	}
	return b, nil
}

// MarkReviewUnlocked flips the review_unlocked flag. The UPDATE is a no-op
// when the flag is already set, which is what makes the review gate's
// completed notification idempotent.
func (r *BookingRepo) MarkReviewUnlocked(ctx context.Context, bookingID uint64) error {
	const q = `UPDATE bookings SET review_unlocked = 1 WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, bookingID)
	if err != nil {
		return err
	}
	if _, err := res.RowsAffected(); err != nil {
		return err
	}
	return nil
}

// BookingDetail is a booking joined with garage and vehicle display fields,
// as returned by the listing endpoints.
type BookingDetail struct {
	ID           uint64              `json:"id"`
	Reference    string              `json:"reference"`
	GarageID     uint64              `json:"garage_id"`
	GarageName   string              `json:"garage_name"`
	CustomerID   uint64              `json:"customer_id"`
	VehicleID    uint64              `json:"vehicle_id"`
	Registration string              `json:"registration"`
	SlotDate     string              `json:"date"`
	TimeSlot     string              `json:"time_slot"`
	Status       model.BookingStatus `json:"status"`
	CreatedAt    time.Time           `json:"created_at"`
}

// ListByCustomer returns all bookings made by the given customer, newest
// first. When none exist an empty slice is returned.
func (r *BookingRepo) ListByCustomer(ctx context.Context, customerID uint64) ([]BookingDetail, error) {
	const q = `SELECT b.id, b.reference, b.garage_id, g.name, b.customer_id,
	                  b.vehicle_id, v.registration,
	                  DATE_FORMAT(b.slot_date, '%Y-%m-%d'), b.time_slot, b.status, b.created_at
	           FROM bookings b
	           JOIN garages g ON g.id = b.garage_id
	           JOIN vehicles v ON v.id = b.vehicle_id
	           WHERE b.customer_id = ?
	           ORDER BY b.created_at DESC`
	return r.listDetails(ctx, q, customerID)
}

// ListByGarage returns all bookings at the given garage, newest first.
func (r *BookingRepo) ListByGarage(ctx context.Context, garageID uint64) ([]BookingDetail, error) {
	const q = `SELECT b.id, b.reference, b.garage_id, g.name, b.customer_id,
	                  b.vehicle_id, v.registration,
	                  DATE_FORMAT(b.slot_date, '%Y-%m-%d'), b.time_slot, b.status, b.created_at
	           FROM bookings b
	           JOIN garages g ON g.id = b.garage_id
	           JOIN vehicles v ON v.id = b.vehicle_id
	           WHERE b.garage_id = ?
	           ORDER BY b.created_at DESC`
	return r.listDetails(ctx, q, garageID)
}

func (r *BookingRepo) listDetails(ctx context.Context, query string, arg uint64) ([]BookingDetail, error) {
	rows, err := r.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	details := make([]BookingDetail, 0)
	for rows.Next() {
		var d BookingDetail
		if err := rows.Scan(&d.ID, &d.Reference, &d.GarageID, &d.GarageName,
			&d.CustomerID, &d.VehicleID, &d.Registration,
			&d.SlotDate, &d.TimeSlot, &d.Status, &d.CreatedAt); err != nil {
			return nil, err
		}
		details = append(details, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return details, nil
}

// rowScanner lets scanBooking work for both QueryRowContext results and
// transaction-scoped reads.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanBooking(row rowScanner) (*model.Booking, error) {
	var b model.Booking
	var confirmed, started, completed, cancelled, noShow sql.NullTime
	err := row.Scan(&b.ID, &b.Reference, &b.GarageID, &b.CustomerID, &b.VehicleID,
		&b.SlotDate, &b.TimeSlot, &b.Status, &b.ReviewUnlocked,
		&b.CreatedAt, &confirmed, &started, &completed, &cancelled, &noShow)
	if err != nil {
		return nil, err
	}
	if confirmed.Valid {
		t := confirmed.Time
		b.ConfirmedAt = &t
	}
	if started.Valid {
		t := started.Time
		b.StartedAt = &t
	}
	if completed.Valid {
		t := completed.Time
		b.CompletedAt = &t
	}
	if cancelled.Valid {
		t := cancelled.Time
		b.CancelledAt = &t
	}
	if noShow.Valid {
		t := noShow.Time
		b.NoShowAt = &t
	}
	return &b, nil
}
