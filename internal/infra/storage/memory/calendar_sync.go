package memory

import (
	"context"
	"sync"

	"rentops/internal/app/policies"
)

// CalendarSyncLog records pushes when no channel manager is connected.
type CalendarSyncLog struct {
	mu      sync.Mutex
	updates []policies.CalendarUpdate
}

func NewCalendarSyncLog() *CalendarSyncLog {
	return &CalendarSyncLog{}
}

func (l *CalendarSyncLog) Push(ctx context.Context, update policies.CalendarUpdate) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.updates = append(l.updates, update)
	return nil
}

func (l *CalendarSyncLog) Updates() []policies.CalendarUpdate {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]policies.CalendarUpdate(nil), l.updates...)
}

var _ policies.CalendarSync = (*CalendarSyncLog)(nil)
