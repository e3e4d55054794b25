package engine

import (
	"fmt"
	"time"
)

// dateLayout is the wire and storage format for slot dates. All dates are
// interpreted in UTC.
const dateLayout = "2006-01-02"

// parseDate validates a YYYY-MM-DD date string and returns its UTC midnight.
func parseDate(s string) (time.Time, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: bad date %q", ErrInvalidRequest, s)
	}
	return t.UTC(), nil
}

// validTimeSlot reports whether the label has the canonical HH:MM-HH:MM form
// with a start strictly before the end. The engine treats labels as opaque
// keys beyond this shape check.
func validTimeSlot(label string) bool {
	if len(label) != 11 || label[5] != '-' {
		return false
	}
	start, err := time.Parse("15:04", label[:5])
	if err != nil {
		return false
	}
	end, err := time.Parse("15:04", label[6:])
	if err != nil {
		return false
	}
	return start.Before(end)
}

// today returns the current UTC date truncated to midnight. Hoisted into a
// variable so tests can pin the clock.
var today = func() time.Time {
	now := time.Now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}
