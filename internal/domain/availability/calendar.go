package availability

import (
	"context"
	"errors"
	"sort"
	"time"

	"rentops/internal/domain/shared/daterange"
)

var ErrRefRequired = errors.New("availability: block reference required")

type Source string

const (
	SourceReservation Source = "reservation"
	SourceExternal    Source = "external"
)

// Cell is one (property, day) entry. Days without a blocked cell are available.
type Cell struct {
	PropertyID string
	Date       time.Time
	Blocked    bool
	Source     Source
	Ref        string
	UpdatedAt  time.Time
}

type BlockOptions struct {
	// ClearExternalBlocks removes every external block record overlapping
	// the range before the reservation takes the dates.
	ClearExternalBlocks bool
	// Ref identifies the owning booking.
	Ref string
}

// Ledger is the derived per-day calendar. Booking records stay authoritative
// for conflict detection; the ledger serves calendar display.
type Ledger interface {
	Block(ctx context.Context, propertyID string, r daterange.DateRange, opts BlockOptions) error
	// Release marks the range available unconditionally. Releasing twice is a no-op.
	Release(ctx context.Context, propertyID string, r daterange.DateRange) error
	BlockExternal(ctx context.Context, propertyID string, r daterange.DateRange, ref string) error
	ReleaseExternal(ctx context.Context, propertyID string, ref string) error
	Cells(ctx context.Context, propertyID string, r daterange.DateRange) ([]Cell, error)
	// All returns every blocked cell of the property.
	All(ctx context.Context, propertyID string) ([]Cell, error)
}

// Calendar holds the blocked cells of one property and implements the ledger
// rules in memory.
type Calendar struct {
	PropertyID string
	cells      map[time.Time]Cell
}

func NewCalendar(propertyID string) *Calendar {
	return &Calendar{PropertyID: propertyID, cells: make(map[time.Time]Cell)}
}

func (c *Calendar) Block(r daterange.DateRange, opts BlockOptions, now time.Time) {
	if opts.ClearExternalBlocks {
		refs := c.externalRefsIn(r)
		for ref := range refs {
			c.ReleaseExternal(ref)
		}
	}
	for _, day := range r.Days() {
		if existing, ok := c.cells[day]; ok && existing.Source == SourceExternal && !opts.ClearExternalBlocks {
			continue
		}
		c.cells[day] = Cell{
			PropertyID: c.PropertyID,
			Date:       day,
			Blocked:    true,
			Source:     SourceReservation,
			Ref:        opts.Ref,
			UpdatedAt:  now.UTC(),
		}
	}
}

func (c *Calendar) Release(r daterange.DateRange) {
	for _, day := range r.Days() {
		delete(c.cells, day)
	}
}

// BlockExternal records a feed block. Days already owned by a reservation stay with it.
func (c *Calendar) BlockExternal(r daterange.DateRange, ref string, now time.Time) {
	for _, day := range r.Days() {
		if existing, ok := c.cells[day]; ok && existing.Source == SourceReservation {
			continue
		}
		c.cells[day] = Cell{
			PropertyID: c.PropertyID,
			Date:       day,
			Blocked:    true,
			Source:     SourceExternal,
			Ref:        ref,
			UpdatedAt:  now.UTC(),
		}
	}
}

func (c *Calendar) ReleaseExternal(ref string) {
	for day, cell := range c.cells {
		if cell.Source == SourceExternal && cell.Ref == ref {
			delete(c.cells, day)
		}
	}
}

// Cells returns blocked cells within r ordered by day.
func (c *Calendar) Cells(r daterange.DateRange) []Cell {
	out := make([]Cell, 0)
	for _, day := range r.Days() {
		if cell, ok := c.cells[day]; ok {
			out = append(out, cell)
		}
	}
	return out
}

// All returns every blocked cell ordered by day.
func (c *Calendar) All() []Cell {
	out := make([]Cell, 0, len(c.cells))
	for _, cell := range c.cells {
		out = append(out, cell)
	}
	SortCells(out)
	return out
}

func (c *Calendar) IsBlocked(day time.Time) bool {
	cell, ok := c.cells[daterange.Day(day)]
	return ok && cell.Blocked
}

func (c *Calendar) externalRefsIn(r daterange.DateRange) map[string]struct{} {
	refs := make(map[string]struct{})
	for _, day := range r.Days() {
		if cell, ok := c.cells[day]; ok && cell.Source == SourceExternal {
			refs[cell.Ref] = struct{}{}
		}
	}
	return refs
}

// Expand returns one cell per day of r, filling gaps with available cells.
func Expand(propertyID string, r daterange.DateRange, blocked []Cell) []Cell {
	byDay := make(map[time.Time]Cell, len(blocked))
	for _, cell := range blocked {
		byDay[daterange.Day(cell.Date)] = cell
	}
	days := r.Days()
	out := make([]Cell, 0, len(days))
	for _, day := range days {
		if cell, ok := byDay[day]; ok {
			out = append(out, cell)
			continue
		}
		out = append(out, Cell{PropertyID: propertyID, Date: day})
	}
	return out
}

func SortCells(cells []Cell) {
	sort.Slice(cells, func(i, j int) bool {
		return cells[i].Date.Before(cells[j].Date)
	})
}
