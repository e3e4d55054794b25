package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/herlandro/bookamot-saas-sub003/internal/queue"
)

// subjects maps event types to the subject line of the outgoing email.
var subjects = map[string]string{
	"BOOKING_CREATED":   "Your MOT booking request",
	"BOOKING_CONFIRMED": "Your MOT booking is confirmed",
	"BOOKING_CANCELLED": "Your MOT booking was cancelled",
	"BOOKING_COMPLETED": "Your MOT test is complete",
	"BOOKING_NO_SHOW":   "You missed your MOT appointment",
}

// FileMailer is the development Sender: it appends each notification to
// logs/notifications.log in a single-line, human-friendly format instead of
// speaking SMTP. Production deployments swap in a real provider behind the
// same interface.
type FileMailer struct {
	mu   sync.Mutex
	path string
}

// NewFileMailer returns a FileMailer writing under the given directory.
func NewFileMailer(dir string) *FileMailer {
	return &FileMailer{path: filepath.Join(dir, "notifications.log")}
}

// Send appends one notification line. An unknown event type is a processing
// error rather than a delivery failure: it should never be retried.
func (m *FileMailer) Send(ctx context.Context, ev queue.BookingEvent) error {
	subject, ok := subjects[ev.Type]
	if !ok {
		return fmt.Errorf("unknown event type %q", ev.Type)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(m.path), 0o755); err != nil {
		return fmt.Errorf("mkdir logs: %w", err)
	}
	f, err := os.OpenFile(m.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	line := fmt.Sprintf("[%s] %s | to=%s | subject=%q | reference=%s | garage=%q | slot=%s %s\n",
		ev.OccurredAt, ev.Type, ev.Recipient, subject, ev.Reference, ev.GarageName, ev.SlotDate, ev.TimeSlot)
	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}
