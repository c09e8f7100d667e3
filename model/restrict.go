package model

import "fmt"

// InvalidPeriodError reports a restriction window whose end precedes its
// start.
type InvalidPeriodError struct {
	Start Date
	End   Date
}

func (e *InvalidPeriodError) Error() string {
	return fmt.Sprintf("invalid restriction period: end %s is before start %s", e.End, e.Start)
}

// RestrictPeriod intersects every calendar's date set with the inclusive
// [start, end] window, removes calendars left empty and re-derives dataset
// validity periods from the surviving dates. Callers must run Sanitize
// afterwards to cascade-remove journeys orphaned by a removed calendar.
func (c *Collections) RestrictPeriod(start, end Date) error {
	if end.Before(start) {
		return &InvalidPeriodError{Start: start, End: end}
	}
	w := NewWarningAggregator()
	for _, cal := range c.Calendars.All() {
		for d := range cal.Dates {
			if d.Before(start) || d.After(end) {
				delete(cal.Dates, d)
			}
		}
	}
	c.Calendars.Retain(func(cal *Calendar) bool {
		if len(cal.Dates) > 0 {
			return true
		}
		w.Add(WarningEmptyCalendar, cal.ID)
		return false
	})
	c.SetDatasetValidity()
	w.LogAll("restrict")
	return nil
}

// RestrictValidityPeriod returns a new model restricted to the inclusive
// [start, end] window, with orphaned journeys and their dependents swept
// out. The receiver is consumed.
func (m *Model) RestrictValidityPeriod(start, end Date) (*Model, error) {
	c := m.IntoCollections()
	if err := c.RestrictPeriod(start, end); err != nil {
		return nil, err
	}
	if err := c.Sanitize(); err != nil {
		return nil, err
	}
	return NewModel(c)
}
