package memory

import (
	"context"
	"sort"
	"sync"

	domainbooking "rentops/internal/domain/booking"
)

// BookingRepository keeps bookings in memory. Reads and writes copy the
// aggregate so callers never share state with the store.
type BookingRepository struct {
	mu    sync.RWMutex
	items map[domainbooking.BookingID]*domainbooking.Booking
}

func NewBookingRepository() *BookingRepository {
	return &BookingRepository{items: make(map[domainbooking.BookingID]*domainbooking.Booking)}
}

func (r *BookingRepository) ByID(ctx context.Context, id domainbooking.BookingID) (*domainbooking.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.items[id]
	if !ok {
		return nil, domainbooking.BookingNotFound(id)
	}
	return b.Clone(), nil
}

func (r *BookingRepository) Create(ctx context.Context, b *domainbooking.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.items[b.ID]; exists {
		return domainbooking.ErrConcurrentUpdate
	}
	b.Version = 1
	r.items[b.ID] = b.Clone()
	return nil
}

// Save replaces the stored booking when versions match and bumps b.Version.
func (r *BookingRepository) Save(ctx context.Context, b *domainbooking.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.items[b.ID]
	if !ok {
		return domainbooking.BookingNotFound(b.ID)
	}
	if current.Version != b.Version {
		return domainbooking.ErrConcurrentUpdate
	}
	b.Version++
	r.items[b.ID] = b.Clone()
	return nil
}

func (r *BookingRepository) List(ctx context.Context, filter domainbooking.ListFilter) ([]*domainbooking.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domainbooking.Booking, 0)
	for _, b := range r.items {
		if matches(b, filter) {
			out = append(out, b.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

// Put stores b as is, bypassing version checks. Intended for fixtures.
func (r *BookingRepository) Put(b *domainbooking.Booking) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if b.Version == 0 {
		b.Version = 1
	}
	r.items[b.ID] = b.Clone()
}

func matches(b *domainbooking.Booking, f domainbooking.ListFilter) bool {
	if f.PropertyID != "" && b.PropertyID != f.PropertyID {
		return false
	}
	if len(f.PropertyIDs) > 0 && !contains(f.PropertyIDs, b.PropertyID) {
		return false
	}
	if len(f.Statuses) > 0 {
		found := false
		for _, s := range f.Statuses {
			if b.Status == s {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

var _ domainbooking.Repository = (*BookingRepository)(nil)
