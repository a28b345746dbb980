package policies

import (
	"context"
	"time"

	domainbooking "rentops/internal/domain/booking"
)

const (
	NotificationNew       = "new"
	NotificationCancelled = "cancelled"
)

type Notification struct {
	Kind    string
	Booking domainbooking.Snapshot
	Reason  string
	At      time.Time
}

// Notifier is fire-and-forget; callers log errors and move on.
type Notifier interface {
	BookingChanged(ctx context.Context, n Notification) error
}
