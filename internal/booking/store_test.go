package booking

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"hotelops/internal/events"
)

// memStore is an in-memory Store. Update holds the store lock across Apply,
// the same way the repository holds a row lock.
type memStore struct {
	mu       sync.Mutex
	bookings map[string]Booking
	events   map[string][]events.Event

	lists   atomic.Int32
	gets    atomic.Int32
	updates atomic.Int32

	updateDelay time.Duration
	failWith    error

	// pause, when set, holds the next Get or List after it has read its
	// snapshot, until release is closed.
	pause *pauseHook
}

type pauseHook struct {
	reached chan struct{}
	release chan struct{}
}

func newPauseHook() *pauseHook {
	return &pauseHook{reached: make(chan struct{}), release: make(chan struct{})}
}

// takePause must be called with s.mu held.
func (s *memStore) takePause() *pauseHook {
	h := s.pause
	s.pause = nil
	return h
}

func (h *pauseHook) wait() {
	if h == nil {
		return
	}
	close(h.reached)
	<-h.release
}

func newMemStore(bs ...Booking) *memStore {
	s := &memStore{bookings: map[string]Booking{}, events: map[string][]events.Event{}}
	for _, b := range bs {
		s.bookings[b.ID] = b
	}
	return s
}

func (s *memStore) List(ctx context.Context, propertyID string, f Filters, today time.Time) ([]Booking, int, error) {
	s.lists.Add(1)
	s.mu.Lock()
	if s.failWith != nil {
		s.mu.Unlock()
		return nil, 0, s.failWith
	}

	var all []Booking
	for _, b := range s.bookings {
		if b.PropertyID != propertyID || !InScope(b, f.Scope, today) {
			continue
		}
		if f.Status != "" && b.Status != f.Status {
			continue
		}
		all = append(all, b)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Reference < all[j].Reference })

	start := (f.Page - 1) * f.PageSize
	if start > len(all) {
		start = len(all)
	}
	end := start + f.PageSize
	if end > len(all) {
		end = len(all)
	}
	hook := s.takePause()
	s.mu.Unlock()

	hook.wait()
	return all[start:end], len(all), nil
}

func (s *memStore) Get(ctx context.Context, propertyID, bookingID string) (*Booking, error) {
	s.gets.Add(1)
	s.mu.Lock()
	if s.failWith != nil {
		s.mu.Unlock()
		return nil, s.failWith
	}
	b, ok := s.bookings[bookingID]
	hook := s.takePause()
	s.mu.Unlock()

	hook.wait()
	if !ok || b.PropertyID != propertyID {
		return nil, ErrNotFound
	}
	return &b, nil
}

func (s *memStore) Update(ctx context.Context, propertyID, bookingID string, m Mutation) (*Booking, error) {
	s.updates.Add(1)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return nil, s.failWith
	}
	cur, ok := s.bookings[bookingID]
	if !ok || cur.PropertyID != propertyID {
		return nil, ErrNotFound
	}
	if s.updateDelay > 0 {
		time.Sleep(s.updateDelay)
	}
	next, err := m.Apply(cur)
	if err != nil {
		return nil, err
	}
	s.bookings[bookingID] = next
	s.events[bookingID] = append(s.events[bookingID], events.Event{
		BookingID: bookingID,
		EventType: events.TypeStatusChanged,
		ActorID:   m.ActorID,
		Data:      map[string]any{"from": cur.Status, "to": next.Status, "action": m.Action},
	})
	return &next, nil
}

func (s *memStore) Events(ctx context.Context, propertyID, bookingID string) ([]events.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[bookingID]
	if !ok || b.PropertyID != propertyID {
		return nil, ErrNotFound
	}
	return s.events[bookingID], nil
}

func (s *memStore) setStatus(bookingID string, st Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b := s.bookings[bookingID]
	b.Status = st
	s.bookings[bookingID] = b
}

func (s *memStore) pauseNext() *pauseHook {
	h := newPauseHook()
	s.mu.Lock()
	s.pause = h
	s.mu.Unlock()
	return h
}
