// Package recurrence expands recurring ledger templates into the occurrence
// dates that should exist up to a point in time.
package recurrence

import (
	"errors"
	"fmt"
	"time"

	"github.com/xraph/khata/transaction"
)

var (
	ErrUnknownPattern = errors.New("recurrence: unknown pattern")
	ErrInvertedBounds = errors.New("recurrence: end date is before start date")
)

// DayLayout is the calendar-day key used for de-duplication.
const DayLayout = "2006-01-02"

// Rule is the schedule of a recurring template.
type Rule struct {
	Pattern transaction.Pattern
	Start   time.Time
	End     *time.Time // nil = open-ended
}

// RuleFor builds the rule of a template. Start falls back to the template's
// own transaction date.
func RuleFor(tx *transaction.Transaction) Rule {
	r := Rule{
		Pattern: tx.RecurringPattern,
		Start:   tx.TransactionDate,
		End:     tx.RecurringEndDate,
	}
	if tx.RecurringStartDate != nil {
		r.Start = *tx.RecurringStartDate
	}
	return r
}

// Validate checks the pattern and the ordering of the bounds.
func (r Rule) Validate() error {
	switch r.Pattern {
	case transaction.PatternDaily, transaction.PatternWeekly, transaction.PatternMonthly,
		transaction.PatternQuarterly, transaction.PatternYearly:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownPattern, r.Pattern)
	}
	if r.End != nil && dayBefore(*r.End, r.Start, r.Start.Location()) {
		return fmt.Errorf("%w: %s < %s", ErrInvertedBounds,
			r.End.Format(DayLayout), r.Start.Format(DayLayout))
	}
	return nil
}

// Expand returns the occurrence dates of rule that are due by now, fall on or
// before the End day, and are not in materialized, oldest first. Dates are
// computed in now's location; an occurrence later today is not yet due.
// limit > 0 caps the number of dates returned.
//
// Expand is pure: calling it again with the same inputs returns the same
// dates, and once those dates are added to materialized it returns none.
func Expand(rule Rule, materialized *Set, now time.Time, limit int) ([]time.Time, error) {
	if err := rule.Validate(); err != nil {
		return nil, err
	}

	loc := now.Location()
	anchor := rule.Start.In(loc)

	var out []time.Time
	for k := 0; ; k++ {
		d, err := Step(rule.Pattern, anchor, k)
		if err != nil {
			return nil, err
		}
		if d.After(now) || (rule.End != nil && dayBefore(*rule.End, d, loc)) {
			break
		}
		if materialized != nil && materialized.Has(d) {
			continue
		}
		out = append(out, d)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

// Step returns the k-th occurrence counted from anchor (k = 0 is anchor).
// Month-based patterns keep the anchor's day-of-month, clamped to the last
// day of shorter months, so Jan 31 steps to Feb 28 (29) and then Mar 31.
func Step(p transaction.Pattern, anchor time.Time, k int) (time.Time, error) {
	switch p {
	case transaction.PatternDaily:
		return anchor.AddDate(0, 0, k), nil
	case transaction.PatternWeekly:
		return anchor.AddDate(0, 0, 7*k), nil
	case transaction.PatternMonthly:
		return addMonthsClamped(anchor, k), nil
	case transaction.PatternQuarterly:
		return addMonthsClamped(anchor, 3*k), nil
	case transaction.PatternYearly:
		return addMonthsClamped(anchor, 12*k), nil
	default:
		return time.Time{}, fmt.Errorf("%w: %q", ErrUnknownPattern, p)
	}
}

func addMonthsClamped(t time.Time, months int) time.Time {
	y, m, d := t.Date()
	total := int(m) - 1 + months
	y += total / 12
	total %= 12
	if total < 0 {
		total += 12
		y--
	}
	month := time.Month(total + 1)

	if last := daysIn(y, month, t.Location()); d > last {
		d = last
	}
	return time.Date(y, month, d, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

func daysIn(year int, month time.Month, loc *time.Location) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, loc).Day()
}

// dayBefore reports whether a falls on an earlier calendar day than b in loc.
func dayBefore(a, b time.Time, loc *time.Location) bool {
	return a.In(loc).Format(DayLayout) < b.In(loc).Format(DayLayout)
}
