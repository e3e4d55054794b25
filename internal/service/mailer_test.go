package service

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/herlandro/bookamot-saas-sub003/internal/queue"
)

func TestFileMailerWritesLine(t *testing.T) {
	dir := t.TempDir()
	m := NewFileMailer(dir)

	ev := queue.BookingEvent{
		Type:       "BOOKING_CONFIRMED",
		BookingID:  7,
		Reference:  "MOT-0A1B2C3D",
		GarageID:   2,
		GarageName: "Hilltop Motors",
		Recipient:  "carol@example.com",
		SlotDate:   "2026-10-02",
		TimeSlot:   "09:00-09:30",
		OccurredAt: "2026-09-01T10:00:00Z",
	}
	if err := m.Send(context.Background(), ev); err != nil {
		t.Fatalf("Send: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "notifications.log"))
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	line := string(data)
	for _, want := range []string{"BOOKING_CONFIRMED", "carol@example.com", "MOT-0A1B2C3D", "09:00-09:30"} {
		if !strings.Contains(line, want) {
			t.Errorf("log line missing %q: %s", want, line)
		}
	}
}

func TestFileMailerAppends(t *testing.T) {
	dir := t.TempDir()
	m := NewFileMailer(dir)

	ev := queue.BookingEvent{Type: "BOOKING_CREATED", Recipient: "a@example.com"}
	for i := 0; i < 3; i++ {
		if err := m.Send(context.Background(), ev); err != nil {
			t.Fatalf("Send %d: %v", i, err)
		}
	}
	data, err := os.ReadFile(filepath.Join(dir, "notifications.log"))
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if got := strings.Count(string(data), "\n"); got != 3 {
		t.Fatalf("expected 3 lines, got %d", got)
	}
}

func TestFileMailerRejectsUnknownType(t *testing.T) {
	m := NewFileMailer(t.TempDir())
	err := m.Send(context.Background(), queue.BookingEvent{Type: "SOMETHING_ELSE"})
	if err == nil {
		t.Fatal("expected error for unknown event type")
	}
}
