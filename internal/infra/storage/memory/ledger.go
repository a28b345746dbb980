package memory

import (
	"context"
	"sync"
	"time"

	domainavailability "rentops/internal/domain/availability"
	"rentops/internal/domain/shared/daterange"
)

// Ledger keeps one availability calendar per property.
type Ledger struct {
	mu        sync.RWMutex
	calendars map[string]*domainavailability.Calendar
	clock     func() time.Time
}

func NewLedger() *Ledger {
	return &Ledger{calendars: make(map[string]*domainavailability.Calendar), clock: time.Now}
}

func (l *Ledger) calendar(propertyID string) *domainavailability.Calendar {
	cal, ok := l.calendars[propertyID]
	if !ok {
		cal = domainavailability.NewCalendar(propertyID)
		l.calendars[propertyID] = cal
	}
	return cal
}

func (l *Ledger) Block(ctx context.Context, propertyID string, r daterange.DateRange, opts domainavailability.BlockOptions) error {
	if err := r.Validate(); err != nil {
		return err
	}
	if opts.Ref == "" {
		return domainavailability.ErrRefRequired
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calendar(propertyID).Block(r, opts, l.clock())
	return nil
}

func (l *Ledger) Release(ctx context.Context, propertyID string, r daterange.DateRange) error {
	if err := r.Validate(); err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calendar(propertyID).Release(r)
	return nil
}

func (l *Ledger) BlockExternal(ctx context.Context, propertyID string, r daterange.DateRange, ref string) error {
	if err := r.Validate(); err != nil {
		return err
	}
	if ref == "" {
		return domainavailability.ErrRefRequired
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calendar(propertyID).BlockExternal(r, ref, l.clock())
	return nil
}

func (l *Ledger) ReleaseExternal(ctx context.Context, propertyID string, ref string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calendar(propertyID).ReleaseExternal(ref)
	return nil
}

func (l *Ledger) Cells(ctx context.Context, propertyID string, r daterange.DateRange) ([]domainavailability.Cell, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	cal, ok := l.calendars[propertyID]
	if !ok {
		return []domainavailability.Cell{}, nil
	}
	return cal.Cells(r), nil
}

func (l *Ledger) All(ctx context.Context, propertyID string) ([]domainavailability.Cell, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	cal, ok := l.calendars[propertyID]
	if !ok {
		return []domainavailability.Cell{}, nil
	}
	return cal.All(), nil
}

var _ domainavailability.Ledger = (*Ledger)(nil)
