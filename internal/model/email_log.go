package model

import "time"

// EmailStatus enumerates delivery states of a notification attempt.
type EmailStatus string

const (
	EmailPending EmailStatus = "PENDING"
	EmailSent    EmailStatus = "SENT"
	EmailFailed  EmailStatus = "FAILED"
)

// EmailLog is an append-only audit entry for one notification attempt. It is
// owned by the notification dispatcher; the booking lifecycle only emits a
// request onto the queue and never writes these records directly. Failed
// entries are retried by the periodic sweeper until MaxAttempts.
//
// Fields:
//  ID        – primary key identifier.
//  BookingID – booking the notification refers to.
//  Type      – notification type, e.g. BOOKING_CREATED.
//  Recipient – destination email address.
//  Status    – PENDING, SENT or FAILED.
//  Error     – delivery error text when Status is FAILED.
//  Attempts  – number of delivery attempts so far.
//  CreatedAt – creation timestamp.
//  UpdatedAt – last attempt timestamp.
type EmailLog struct {
	ID        uint64      // email_log.id
	BookingID uint64      // email_log.booking_id
	Type      string      // email_log.type
	Recipient string      // email_log.recipient
	Status    EmailStatus // email_log.status
	Error     string      // email_log.error
	Attempts  int         // email_log.attempts
	CreatedAt time.Time   // email_log.created_at
	UpdatedAt time.Time   // email_log.updated_at
}
