package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/herlandro/bookamot-saas-sub003/internal/model"
)

// maxPublishDays caps a single publish call so a bad date range cannot insert
// an unbounded number of rows.
const maxPublishDays = 366

// Calendar owns the set of bookable (garage, date, time-slot) cells and their
// open/blocked/booked state. Claiming and releasing cells during a
// reservation happens inside the Coordinator's transaction; Calendar exposes
// the garage-facing management operations and the public read path.
type Calendar struct {
	store Store
}

// NewCalendar returns a Calendar bound to the given store.
func NewCalendar(store Store) *Calendar { return &Calendar{store: store} }

// Publish creates slot cells for every date in [from, to] crossed with the
// time-slot pattern. Publishing is idempotent per cell: existing cells are
// left untouched, so booked or blocked state is never overwritten. It returns
// the number of cells actually created.
func (c *Calendar) Publish(ctx context.Context, garageID uint64, from, to string, pattern []string) (int, error) {
	start, err := parseDate(from)
	if err != nil {
		return 0, err
	}
	end, err := parseDate(to)
	if err != nil {
		return 0, err
	}
	if end.Before(start) {
		return 0, fmt.Errorf("%w: date range end before start", ErrInvalidRequest)
	}
	days := int(end.Sub(start).Hours()/24) + 1
	if days > maxPublishDays {
		return 0, fmt.Errorf("%w: date range exceeds %d days", ErrInvalidRequest, maxPublishDays)
	}
	if len(pattern) == 0 {
		return 0, fmt.Errorf("%w: empty slot pattern", ErrInvalidRequest)
	}
	for _, label := range pattern {
		if !validTimeSlot(label) {
			return 0, fmt.Errorf("%w: bad time slot %q", ErrInvalidRequest, label)
		}
	}

	created := 0
	err = c.store.WithinTx(ctx, func(tx Tx) error {
		for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
			date := d.Format(dateLayout)
			for _, label := range pattern {
				ok, err := tx.PublishSlot(ctx, garageID, date, label)
				if err != nil {
					return err
				}
				if ok {
					created++
				}
			}
		}
		return nil
	})
	if err != nil {
		return 0, storageError(err)
	}
	return created, nil
}

// Block marks a cell as garage-declared unavailable. It fails with
// ErrSlotOccupied when the cell is currently booked: a garage cannot
// retroactively block an occupied slot without cancelling the booking through
// the lifecycle first.
func (c *Calendar) Block(ctx context.Context, garageID uint64, date, timeSlot string) error {
	return c.setBlocked(ctx, garageID, date, timeSlot, true)
}

// Unblock clears the blocked facet of a cell. Like Block it refuses booked
// cells so the two facets never need disentangling.
func (c *Calendar) Unblock(ctx context.Context, garageID uint64, date, timeSlot string) error {
	return c.setBlocked(ctx, garageID, date, timeSlot, false)
}

func (c *Calendar) setBlocked(ctx context.Context, garageID uint64, date, timeSlot string, blocked bool) error {
	if _, err := parseDate(date); err != nil {
		return err
	}
	if !validTimeSlot(timeSlot) {
		return fmt.Errorf("%w: bad time slot %q", ErrInvalidRequest, timeSlot)
	}
	err := c.store.WithinTx(ctx, func(tx Tx) error {
		return tx.SetSlotBlocked(ctx, garageID, date, timeSlot, blocked)
	})
	if err != nil {
		if errors.Is(err, ErrSlotOccupied) || errors.Is(err, ErrSlotUnavailable) {
			return err
		}
		return storageError(err)
	}
	return nil
}

// ListOffered returns the offerable cells of a garage within the inclusive
// date range. The view is advisory: it may be slightly stale under concurrent
// reservations and is re-validated by the next Reserve call.
func (c *Calendar) ListOffered(ctx context.Context, garageID uint64, from, to string) ([]model.Slot, error) {
	start, err := parseDate(from)
	if err != nil {
		return nil, err
	}
	end, err := parseDate(to)
	if err != nil {
		return nil, err
	}
	if end.Before(start) {
		return nil, fmt.Errorf("%w: date range end before start", ErrInvalidRequest)
	}
	slots, err := c.store.ListOffered(ctx, garageID, from, to)
	if err != nil {
		return nil, storageError(err)
	}
	return slots, nil
}
