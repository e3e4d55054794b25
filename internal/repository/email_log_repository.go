package repository

import (
	"context"
	"database/sql"

	"github.com/herlandro/bookamot-saas-sub003/internal/model"
)

// EmailLogRepo provides data access to the email_log table, the append-only
// audit trail of notification attempts. It is owned by the notification
// dispatcher; the booking lifecycle never writes these rows directly.
type EmailLogRepo struct {
	db *sql.DB
}

// NewEmailLogRepo returns a new EmailLogRepo bound to the given database.
func NewEmailLogRepo(db *sql.DB) *EmailLogRepo { return &EmailLogRepo{db: db} }

// Create appends a PENDING entry for a delivery attempt and populates the
// generated ID.
func (r *EmailLogRepo) Create(ctx context.Context, e *model.EmailLog) error {
	const q = `INSERT INTO email_log (booking_id, type, recipient, status, attempts)
	           VALUES (?, ?, ?, ?, 0)`
	res, err := r.db.ExecContext(ctx, q, e.BookingID, e.Type, e.Recipient, model.EmailPending)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	e.ID = uint64(id)
	e.Status = model.EmailPending
	return nil
}

// MarkSent records a successful delivery.
func (r *EmailLogRepo) MarkSent(ctx context.Context, id uint64) error {
	const q = `UPDATE email_log
	           SET status = ?, error = '', attempts = attempts + 1, updated_at = UTC_TIMESTAMP()
	           WHERE id = ?`
	_, err := r.db.ExecContext(ctx, q, model.EmailSent, id)
	return err
}

// MarkFailed records a failed delivery attempt with its error text. The
// entry stays FAILED until the retry sweeper picks it up or gives up.
func (r *EmailLogRepo) MarkFailed(ctx context.Context, id uint64, errMsg string) error {
	const q = `UPDATE email_log
	           SET status = ?, error = ?, attempts = attempts + 1, updated_at = UTC_TIMESTAMP()
	           WHERE id = ?`
	_, err := r.db.ExecContext(ctx, q, model.EmailFailed, errMsg, id)
	return err
}

// ListRetryable returns FAILED entries that have not exceeded maxAttempts,
// oldest first, for the periodic retry sweeper.
func (r *EmailLogRepo) ListRetryable(ctx context.Context, maxAttempts, limit int) ([]model.EmailLog, error) {
	const q = `SELECT id, booking_id, type, recipient, status, error, attempts, created_at, updated_at
	           FROM email_log
	           WHERE status = ? AND attempts < ?
	           ORDER BY updated_at
	           LIMIT ?`
	rows, err := r.db.QueryContext(ctx, q, model.EmailFailed, maxAttempts, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	entries := make([]model.EmailLog, 0)
	for rows.Next() {
		var e model.EmailLog
		if err := rows.Scan(&e.ID, &e.BookingID, &e.Type, &e.Recipient,
			&e.Status, &e.Error, &e.Attempts, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

// ListByBooking returns the audit trail for one booking, oldest first.
func (r *EmailLogRepo) ListByBooking(ctx context.Context, bookingID uint64) ([]model.EmailLog, error) {
	const q = `SELECT id, booking_id, type, recipient, status, error, attempts, created_at, updated_at
	           FROM email_log WHERE booking_id = ? ORDER BY created_at`
	rows, err := r.db.QueryContext(ctx, q, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	entries := make([]model.EmailLog, 0)
	for rows.Next() {
		var e model.EmailLog
		if err := rows.Scan(&e.ID, &e.BookingID, &e.Type, &e.Recipient,
			&e.Status, &e.Error, &e.Attempts, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}
