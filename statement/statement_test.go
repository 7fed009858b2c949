package statement_test

import (
	"testing"
	"time"

	"github.com/xraph/khata/statement"
	"github.com/xraph/khata/transaction"
)

// Wednesday.
var now = time.Date(2024, 5, 15, 12, 0, 0, 0, time.UTC)

func at(t time.Time) *transaction.Transaction {
	return &transaction.Transaction{TransactionDate: t}
}

func TestLabel(t *testing.T) {
	tests := []struct {
		name      string
		date      time.Time
		weekStart time.Weekday
		want      string
	}{
		{"exactly now", now, time.Sunday, "Today"},
		{"earlier today", time.Date(2024, 5, 15, 0, 0, 1, 0, time.UTC), time.Sunday, "Today"},
		{"24h before", now.Add(-24 * time.Hour), time.Sunday, "Yesterday"},
		{"late yesterday", time.Date(2024, 5, 14, 23, 59, 0, 0, time.UTC), time.Sunday, "Yesterday"},
		{"monday this week", time.Date(2024, 5, 13, 8, 0, 0, 0, time.UTC), time.Sunday, "Monday"},
		{"sunday starts the week", time.Date(2024, 5, 12, 8, 0, 0, 0, time.UTC), time.Sunday, "Sunday"},
		{"sunday with monday weeks", time.Date(2024, 5, 12, 8, 0, 0, 0, time.UTC), time.Monday, "May 12"},
		{"last saturday", time.Date(2024, 5, 11, 8, 0, 0, 0, time.UTC), time.Sunday, "May 11"},
		{"ten days ago", now.AddDate(0, 0, -10), time.Sunday, "May 05"},
		{"previous month", time.Date(2024, 4, 30, 8, 0, 0, 0, time.UTC), time.Sunday, "Apr 30, 2024"},
		{"previous year", time.Date(2023, 12, 20, 8, 0, 0, 0, time.UTC), time.Sunday, "Dec 20, 2023"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := statement.Label(tt.date, now, tt.weekStart); got != tt.want {
				t.Errorf("Label = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTenDaysAgoIsNeverAWeekday(t *testing.T) {
	weekdays := map[string]bool{}
	for d := time.Sunday; d <= time.Saturday; d++ {
		weekdays[d.String()] = true
	}

	start := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 366; i++ {
		ref := start.AddDate(0, 0, i)
		for ws := time.Sunday; ws <= time.Saturday; ws++ {
			label := statement.Label(ref.AddDate(0, 0, -10), ref, ws)
			if weekdays[label] {
				t.Fatalf("now=%s weekStart=%s: 10 days ago labelled %q", ref.Format("2006-01-02"), ws, label)
			}
		}
	}
}

func TestLabelAcrossMonthBoundary(t *testing.T) {
	ref := time.Date(2024, 6, 5, 12, 0, 0, 0, time.UTC)
	if got := statement.Label(ref.AddDate(0, 0, -10), ref, time.Sunday); got != "May 26, 2024" {
		t.Errorf("Label = %q", got)
	}
}

func TestLabelUsesNowLocation(t *testing.T) {
	ist := time.FixedZone("IST", 5*3600+1800)
	ref := time.Date(2024, 5, 15, 1, 0, 0, 0, ist)
	// 20:00 UTC on May 14 is 01:30 on May 15 in IST.
	tx := time.Date(2024, 5, 14, 20, 0, 0, 0, time.UTC)
	if got := statement.Label(tx, ref, time.Sunday); got != "Today" {
		t.Errorf("Label = %q, want Today", got)
	}
}

func TestGroupKeepsFirstSeenOrder(t *testing.T) {
	a := at(now)
	b := at(now.Add(-24 * time.Hour))
	c := at(now.Add(-time.Hour))
	d := at(time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC))
	e := at(now.Add(-25 * time.Hour))

	got := statement.Group([]*transaction.Transaction{a, b, c, d, e}, now)

	wantLabels := []string{"Today", "Yesterday", "Jan 02, 2023"}
	if len(got) != len(wantLabels) {
		t.Fatalf("got %d buckets, want %d", len(got), len(wantLabels))
	}
	for i, label := range wantLabels {
		if got[i].Label != label {
			t.Errorf("bucket %d = %q, want %q", i, got[i].Label, label)
		}
	}
	if len(got[0].Transactions) != 2 || got[0].Transactions[0] != a || got[0].Transactions[1] != c {
		t.Error("Today bucket lost input order")
	}
	if len(got[1].Transactions) != 2 || got[1].Transactions[0] != b || got[1].Transactions[1] != e {
		t.Error("Yesterday bucket lost input order")
	}
}

func TestGroupEmpty(t *testing.T) {
	if got := statement.Group(nil, now); len(got) != 0 {
		t.Errorf("got %d buckets", len(got))
	}
}

func TestGroupWithWeekStart(t *testing.T) {
	sunday := at(time.Date(2024, 5, 12, 8, 0, 0, 0, time.UTC))
	got := statement.Group([]*transaction.Transaction{sunday}, now, statement.WithWeekStart(time.Monday))
	if len(got) != 1 || got[0].Label != "May 12" {
		t.Errorf("got %+v", got)
	}
}

func TestSortDesc(t *testing.T) {
	old := at(now.AddDate(0, 0, -3))
	mid1 := at(now.AddDate(0, 0, -1))
	mid2 := at(now.AddDate(0, 0, -1))
	recent := at(now)

	txs := []*transaction.Transaction{old, mid1, recent, mid2}
	statement.SortDesc(txs)

	want := []*transaction.Transaction{recent, mid1, mid2, old}
	for i := range want {
		if txs[i] != want[i] {
			t.Fatalf("position %d out of order", i)
		}
	}
}
