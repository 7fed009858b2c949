package recurrence

import "time"

// Set is a set of calendar days. Days are taken in each time's own location,
// so callers add dates in the location they expand in.
type Set struct {
	days map[string]struct{}
}

// NewSet returns a Set holding dates.
func NewSet(dates ...time.Time) *Set {
	s := &Set{days: make(map[string]struct{}, len(dates))}
	for _, d := range dates {
		s.Add(d)
	}
	return s
}

// Add inserts the calendar day of t.
func (s *Set) Add(t time.Time) {
	if s.days == nil {
		s.days = make(map[string]struct{})
	}
	s.days[t.Format(DayLayout)] = struct{}{}
}

// Has reports whether the calendar day of t is in the set.
func (s *Set) Has(t time.Time) bool {
	_, ok := s.days[t.Format(DayLayout)]
	return ok
}

// Len returns the number of days in the set.
func (s *Set) Len() int { return len(s.days) }
