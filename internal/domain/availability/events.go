package availability

import (
	"time"

	"rentops/internal/domain/shared/daterange"
)

// ExternalBlocked is recorded when a calendar feed blocks dates.
type ExternalBlocked struct {
	PropertyID string
	Ref        string
	Range      daterange.DateRange
	At         time.Time
}

func (e ExternalBlocked) EventName() string     { return "availability.external_blocked" }
func (e ExternalBlocked) AggregateID() string   { return e.PropertyID }
func (e ExternalBlocked) OccurredAt() time.Time { return e.At }

type ExternalReleased struct {
	PropertyID string
	Ref        string
	At         time.Time
}

func (e ExternalReleased) EventName() string     { return "availability.external_released" }
func (e ExternalReleased) AggregateID() string   { return e.PropertyID }
func (e ExternalReleased) OccurredAt() time.Time { return e.At }

// Reconciled reports how far the ledger had drifted from the booking records.
type Reconciled struct {
	PropertyID string
	Blocked    int
	Released   int
	At         time.Time
}

func (e Reconciled) EventName() string     { return "availability.reconciled" }
func (e Reconciled) AggregateID() string   { return e.PropertyID }
func (e Reconciled) OccurredAt() time.Time { return e.At }
