package engine

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/herlandro/bookamot-saas-sub003/internal/model"
)

// memStore is an in-memory Store used to exercise the engine without MySQL.
// WithinTx copies the whole state, runs the unit of work against the copy and
// swaps it in on success, so rollback semantics match the real store: a
// failed unit leaves no partial claim behind. A single mutex gives the
// serializable isolation the MySQL store achieves with row locks.
type memStore struct {
	mu       sync.Mutex
	garages  map[uint64]*model.Garage
	slots    map[string]*model.Slot
	bookings map[uint64]*model.Booking
	refs     map[string]uint64
	nextID   uint64
}

func newMemStore() *memStore {
	return &memStore{
		garages:  make(map[uint64]*model.Garage),
		slots:    make(map[string]*model.Slot),
		bookings: make(map[uint64]*model.Booking),
		refs:     make(map[string]uint64),
	}
}

func slotKey(garageID uint64, date, timeSlot string) string {
	return fmt.Sprintf("%d|%s|%s", garageID, date, timeSlot)
}

func (m *memStore) addGarage(g *model.Garage) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *g
	m.garages[g.ID] = &cp
}

func (m *memStore) addSlot(garageID uint64, date, timeSlot string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	m.slots[slotKey(garageID, date, timeSlot)] = &model.Slot{
		ID: m.nextID, GarageID: garageID, SlotDate: date, TimeSlot: timeSlot,
	}
}

func (m *memStore) slot(garageID uint64, date, timeSlot string) model.Slot {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.slots[slotKey(garageID, date, timeSlot)]
	if !ok {
		return model.Slot{}
	}
	return *s
}

func (m *memStore) snapshot() *memStore {
	cp := newMemStore()
	cp.nextID = m.nextID
	for id, g := range m.garages {
		g2 := *g
		cp.garages[id] = &g2
	}
	for k, s := range m.slots {
		s2 := *s
		cp.slots[k] = &s2
	}
	for id, b := range m.bookings {
		b2 := *b
		cp.bookings[id] = &b2
	}
	for r, id := range m.refs {
		cp.refs[r] = id
	}
	return cp
}

func (m *memStore) WithinTx(ctx context.Context, fn func(tx Tx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	work := m.snapshot()
	if err := fn(&memTx{state: work}); err != nil {
		return err
	}
	m.garages = work.garages
	m.slots = work.slots
	m.bookings = work.bookings
	m.refs = work.refs
	m.nextID = work.nextID
	return nil
}

func (m *memStore) GarageByID(ctx context.Context, garageID uint64) (*model.Garage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.garages[garageID]
	if !ok {
		return nil, ErrGarageNotFound
	}
	cp := *g
	return &cp, nil
}

func (m *memStore) CountActive(ctx context.Context, garageID uint64) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return countActive(m.bookings, garageID), nil
}

func (m *memStore) BookingByID(ctx context.Context, bookingID uint64) (*model.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[bookingID]
	if !ok {
		return nil, ErrBookingNotFound
	}
	cp := *b
	return &cp, nil
}

func (m *memStore) ListOffered(ctx context.Context, garageID uint64, from, to string) ([]model.Slot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Slot
	for _, s := range m.slots {
		if s.GarageID == garageID && s.Offerable() && s.SlotDate >= from && s.SlotDate <= to {
			out = append(out, *s)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SlotDate != out[j].SlotDate {
			return out[i].SlotDate < out[j].SlotDate
		}
		return out[i].TimeSlot < out[j].TimeSlot
	})
	return out, nil
}

func countActive(bookings map[uint64]*model.Booking, garageID uint64) int {
	n := 0
	for _, b := range bookings {
		if b.GarageID == garageID && b.Status != model.StatusCancelled {
			n++
		}
	}
	return n
}

// memTx mutates the transaction's working copy. The engine contract is the
// same as the MySQL store's: sentinel errors, no partial writes visible
// outside the unit.
type memTx struct {
	state *memStore
}

func (t *memTx) GarageForUpdate(ctx context.Context, garageID uint64) (*model.Garage, error) {
	g, ok := t.state.garages[garageID]
	if !ok {
		return nil, ErrGarageNotFound
	}
	return g, nil
}

func (t *memTx) CountActive(ctx context.Context, garageID uint64) (int, error) {
	return countActive(t.state.bookings, garageID), nil
}

func (t *memTx) ClaimSlot(ctx context.Context, garageID uint64, date, timeSlot string) error {
	s, ok := t.state.slots[slotKey(garageID, date, timeSlot)]
	if !ok || !s.Offerable() {
		return ErrSlotUnavailable
	}
	s.Booked = true
	return nil
}

func (t *memTx) ReleaseSlot(ctx context.Context, garageID uint64, date, timeSlot string) error {
	if s, ok := t.state.slots[slotKey(garageID, date, timeSlot)]; ok {
		s.Booked = false
	}
	return nil
}

func (t *memTx) PublishSlot(ctx context.Context, garageID uint64, date, timeSlot string) (bool, error) {
	key := slotKey(garageID, date, timeSlot)
	if _, ok := t.state.slots[key]; ok {
		return false, nil
	}
	t.state.nextID++
	t.state.slots[key] = &model.Slot{
		ID: t.state.nextID, GarageID: garageID, SlotDate: date, TimeSlot: timeSlot,
	}
	return true, nil
}

func (t *memTx) SetSlotBlocked(ctx context.Context, garageID uint64, date, timeSlot string, blocked bool) error {
	s, ok := t.state.slots[slotKey(garageID, date, timeSlot)]
	if !ok {
		return ErrSlotUnavailable
	}
	if s.Booked {
		return ErrSlotOccupied
	}
	s.Blocked = blocked
	return nil
}

func (t *memTx) CreateBooking(ctx context.Context, b *model.Booking) error {
	if _, exists := t.state.refs[b.Reference]; exists {
		return ErrDuplicateReference
	}
	t.state.nextID++
	b.ID = t.state.nextID
	b.CreatedAt = time.Now().UTC()
	cp := *b
	t.state.bookings[b.ID] = &cp
	t.state.refs[b.Reference] = b.ID
	return nil
}

func (t *memTx) BookingForUpdate(ctx context.Context, bookingID uint64) (*model.Booking, error) {
	b, ok := t.state.bookings[bookingID]
	if !ok {
		return nil, ErrBookingNotFound
	}
	return b, nil
}

func (t *memTx) UpdateBookingStatus(ctx context.Context, bookingID uint64, status model.BookingStatus, at time.Time) error {
	b, ok := t.state.bookings[bookingID]
	if !ok {
		return ErrBookingNotFound
	}
	b.Status = status
	return nil
}

// recordingNotifier captures emitted events for assertions.
type recordingNotifier struct {
	mu     sync.Mutex
	events []string
}

func (n *recordingNotifier) Notify(eventType string, b *model.Booking) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, eventType)
}

func (n *recordingNotifier) all() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.events...)
}

// recordingGate captures review unlock calls.
type recordingGate struct {
	mu  sync.Mutex
	ids []uint64
}

func (g *recordingGate) NotifyCompleted(ctx context.Context, bookingID uint64) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.ids = append(g.ids, bookingID)
	return nil
}
