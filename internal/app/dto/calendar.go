package dto

import (
	domainavailability "rentops/internal/domain/availability"
	"rentops/internal/domain/shared/daterange"
)

type CalendarDay struct {
	Date    string `json:"date"`
	Blocked bool   `json:"blocked"`
	Source  string `json:"source,omitempty"`
	Ref     string `json:"ref,omitempty"`
}

type Calendar struct {
	PropertyID string        `json:"property_id"`
	From       string        `json:"from"`
	To         string        `json:"to"`
	Days       []CalendarDay `json:"days"`
}

type ReconcileResult struct {
	PropertyID string `json:"property_id"`
	Blocked    int    `json:"blocked"`
	Released   int    `json:"released"`
}

func MapCalendar(propertyID string, r daterange.DateRange, cells []domainavailability.Cell) Calendar {
	days := make([]CalendarDay, 0, len(cells))
	for _, cell := range cells {
		days = append(days, CalendarDay{
			Date:    cell.Date.Format(daterange.DayLayout),
			Blocked: cell.Blocked,
			Source:  string(cell.Source),
			Ref:     cell.Ref,
		})
	}
	return Calendar{
		PropertyID: propertyID,
		From:       r.CheckIn.Format(daterange.DayLayout),
		To:         r.CheckOut.Format(daterange.DayLayout),
		Days:       days,
	}
}
