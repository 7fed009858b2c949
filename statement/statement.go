// Package statement groups ledger entries into the human-relative date
// buckets a party statement is rendered with.
package statement

import (
	"sort"
	"time"

	"github.com/xraph/khata/balance"
	"github.com/xraph/khata/transaction"
)

// Bucket labels that do not depend on the date.
const (
	LabelToday     = "Today"
	LabelYesterday = "Yesterday"
)

const (
	monthDayLayout   = "Jan 02"
	fullDateLayout   = "Jan 02, 2006"
	defaultWeekStart = time.Sunday
)

// Bucket is one labelled group of entries.
type Bucket struct {
	Label        string                     `json:"label"`
	Transactions []*transaction.Transaction `json:"transactions"`
}

// Statement is everything a party statement page shows.
type Statement struct {
	Party   transaction.Ref `json:"party"`
	Summary balance.Summary `json:"summary"`
	Buckets []Bucket        `json:"buckets"`
}

type config struct {
	weekStart time.Weekday
}

// Option configures grouping.
type Option func(*config)

// WithWeekStart sets the first day of the calendar week. Default Sunday.
func WithWeekStart(d time.Weekday) Option {
	return func(c *config) { c.weekStart = d }
}

// Group buckets txs relative to now, evaluated in now's location. Buckets
// appear in the order their first member appears in txs and members keep
// input order; sort with SortDesc first for a newest-first statement.
func Group(txs []*transaction.Transaction, now time.Time, opts ...Option) []Bucket {
	cfg := config{weekStart: defaultWeekStart}
	for _, opt := range opts {
		opt(&cfg)
	}

	var buckets []Bucket
	index := make(map[string]int)
	for _, tx := range txs {
		if tx == nil {
			continue
		}
		label := Label(tx.TransactionDate, now, cfg.weekStart)
		i, ok := index[label]
		if !ok {
			i = len(buckets)
			index[label] = i
			buckets = append(buckets, Bucket{Label: label})
		}
		buckets[i].Transactions = append(buckets[i].Transactions, tx)
	}
	return buckets
}

// Label returns the bucket label of t relative to now. Rules are checked in
// order: today, yesterday, current week (weekday name), current month
// ("Jan 02"), otherwise "Jan 02, 2006".
func Label(t, now time.Time, weekStart time.Weekday) string {
	loc := now.Location()
	day := startOfDay(t.In(loc))
	today := startOfDay(now)

	switch {
	case day.Equal(today):
		return LabelToday
	case day.Equal(today.AddDate(0, 0, -1)):
		return LabelYesterday
	}

	offset := (int(today.Weekday()) - int(weekStart) + 7) % 7
	weekStartDay := today.AddDate(0, 0, -offset)
	if !day.Before(weekStartDay) && day.Before(weekStartDay.AddDate(0, 0, 7)) {
		return day.Weekday().String()
	}

	if day.Year() == today.Year() && day.Month() == today.Month() {
		return day.Format(monthDayLayout)
	}
	return day.Format(fullDateLayout)
}

// SortDesc orders txs newest first by TransactionDate, in place. Entries on
// the same instant keep their relative order.
func SortDesc(txs []*transaction.Transaction) {
	sort.SliceStable(txs, func(i, j int) bool {
		return txs[i].TransactionDate.After(txs[j].TransactionDate)
	})
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
