package khata_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/xraph/khata"
	"github.com/xraph/khata/id"
	"github.com/xraph/khata/recurrence"
	"github.com/xraph/khata/transaction"
)

func recurringTemplate(pattern transaction.Pattern, date time.Time) *transaction.Transaction {
	tx := supplierEntry("landlord", transaction.TypeOut, rupees(15000))
	tx.Category = transaction.CategoryExpense
	tx.IsRecurring = true
	tx.RecurringPattern = pattern
	tx.TransactionDate = date
	return tx
}

func occurrenceDays(t *testing.T, l *khata.Ledger, templateID string) []string {
	t.Helper()
	occ, err := l.ListForVendor(context.Background(), vendor, transaction.ListOpts{
		ReferenceType: transaction.ReferenceRecurrence,
		ReferenceID:   templateID,
	})
	if err != nil {
		t.Fatal(err)
	}
	days := make([]string, len(occ))
	for i, o := range occ {
		// store order is newest first
		days[len(occ)-1-i] = o.TransactionDate.Format(recurrence.DayLayout)
	}
	return days
}

func TestExpandRecurringClampsMonthEnd(t *testing.T) {
	hooks := &hookRecorder{}
	l, clock := newLedger(t, khata.WithPlugin(hooks))
	ctx := context.Background()

	tpl := mustCreate(t, l, recurringTemplate(transaction.PatternMonthly, time.Date(2024, 1, 31, 10, 0, 0, 0, time.UTC)))
	clock.Set(time.Date(2024, 4, 30, 18, 0, 0, 0, time.UTC))

	posted, err := l.ExpandRecurring(ctx, vendor, tpl.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(posted) != 3 {
		t.Fatalf("posted %d occurrences, want 3", len(posted))
	}

	want := []string{"2024-02-29", "2024-03-31", "2024-04-30"}
	got := occurrenceDays(t, l, tpl.ID.String())
	for i := range want {
		if i >= len(got) || got[i] != want[i] {
			t.Fatalf("occurrences = %v, want %v", got, want)
		}
	}

	occ := posted[0]
	if occ.IsRecurring || occ.RecurringPattern != "" || !occ.IsOccurrence() {
		t.Errorf("occurrence should be a plain entry: %+v", occ)
	}
	if !occ.Amount.Equal(tpl.Amount) || occ.SupplierID != tpl.SupplierID || occ.Type != tpl.Type {
		t.Error("occurrence lost template fields")
	}
	if hooks.occ != 3 {
		t.Errorf("OnOccurrencesMaterialized saw %d occurrences", hooks.occ)
	}
}

func TestExpandRecurringIsIdempotent(t *testing.T) {
	l, clock := newLedger(t)
	ctx := context.Background()

	tpl := mustCreate(t, l, recurringTemplate(transaction.PatternWeekly, clock.Now().AddDate(0, 0, -21)))

	first, err := l.ExpandRecurring(ctx, vendor, tpl.ID)
	if err != nil {
		t.Fatal(err)
	}
	second, err := l.ExpandRecurring(ctx, vendor, tpl.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(first) != 3 || len(second) != 0 {
		t.Fatalf("first=%d second=%d, want 3 and 0", len(first), len(second))
	}

	clock.Advance(7 * 24 * time.Hour)
	third, err := l.ExpandRecurring(ctx, vendor, tpl.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(third) != 1 {
		t.Errorf("after a week posted %d, want 1", len(third))
	}
}

func TestExpandRecurringConcurrentCallers(t *testing.T) {
	l, clock := newLedger(t)
	ctx := context.Background()

	tpl := mustCreate(t, l, recurringTemplate(transaction.PatternDaily, clock.Now().AddDate(0, 0, -10)))

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := l.ExpandRecurring(ctx, vendor, tpl.ID); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("concurrent expand: %v", err)
	}

	if got := occurrenceDays(t, l, tpl.ID.String()); len(got) != 10 {
		t.Errorf("got %d occurrences, want 10: %v", len(got), got)
	}
}

func TestExpandRecurringRespectsEndAndCap(t *testing.T) {
	l, clock := newLedger(t, khata.WithMaxOccurrences(2))
	ctx := context.Background()

	end := clock.Now().AddDate(0, 0, -5)
	tpl := recurringTemplate(transaction.PatternDaily, clock.Now().AddDate(0, 0, -30))
	tpl.RecurringEndDate = &end
	mustCreate(t, l, tpl)

	total := 0
	for i := 0; i < 20; i++ {
		posted, err := l.ExpandRecurring(ctx, vendor, tpl.ID)
		if err != nil {
			t.Fatal(err)
		}
		if len(posted) > 2 {
			t.Fatalf("cap exceeded: %d", len(posted))
		}
		total += len(posted)
	}
	if total != 25 {
		t.Errorf("posted %d occurrences, want 25 (end bound)", total)
	}
}

func TestExpandRecurringErrors(t *testing.T) {
	l, _ := newLedger(t)
	ctx := context.Background()

	if _, err := l.ExpandRecurring(ctx, vendor, id.NewTransactionID()); !khata.IsNotFound(err) {
		t.Errorf("unknown template: %v", err)
	}

	plain := mustCreate(t, l, customerEntry("c1", transaction.TypeIn, rupees(1)))
	if _, err := l.ExpandRecurring(ctx, vendor, plain.ID); !khata.IsValidation(err) {
		t.Errorf("non-recurring template: %v", err)
	}
}

func TestExpandAll(t *testing.T) {
	l, clock := newLedger(t)
	ctx := context.Background()

	mustCreate(t, l, recurringTemplate(transaction.PatternDaily, clock.Now().AddDate(0, 0, -2)))

	other := recurringTemplate(transaction.PatternMonthly, clock.Now().AddDate(0, -2, 0))
	other.VendorID = "vnd_2"
	mustCreate(t, l, other)

	n, err := l.ExpandAll(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != 4 {
		t.Errorf("ExpandAll posted %d, want 4", n)
	}

	n, err = l.ExpandAll(ctx)
	if err != nil || n != 0 {
		t.Errorf("second ExpandAll = %d, %v", n, err)
	}
}

func TestExpandRecurringSkipsReversedTemplate(t *testing.T) {
	l, clock := newLedger(t)
	ctx := context.Background()

	tpl := mustCreate(t, l, recurringTemplate(transaction.PatternMonthly, clock.Now()))
	if _, err := l.Reverse(ctx, vendor, tpl.ID, "lease ended"); err != nil {
		t.Fatal(err)
	}
	clock.Advance(95 * 24 * time.Hour)

	posted, err := l.ExpandRecurring(ctx, vendor, tpl.ID)
	if err != nil || len(posted) != 0 {
		t.Fatalf("ExpandRecurring = %d, %v; want nothing", len(posted), err)
	}
	if n, err := l.ExpandAll(ctx); err != nil || n != 0 {
		t.Fatalf("ExpandAll = %d, %v; want nothing", n, err)
	}

	s, err := l.PartyBalance(ctx, vendor, khata.Supplier("landlord"))
	if err != nil {
		t.Fatal(err)
	}
	if !s.Balance.IsZero() {
		t.Errorf("Balance = %v, reversed rent should leave nothing", s.Balance)
	}
}

func TestExpandRecurringAfterCorrectingTemplate(t *testing.T) {
	l, clock := newLedger(t)
	ctx := context.Background()

	tpl := mustCreate(t, l, recurringTemplate(transaction.PatternMonthly, clock.Now()))
	replacement := recurringTemplate(transaction.PatternMonthly, clock.Now())
	replacement.Amount = rupees(12000)
	if _, err := l.Correct(ctx, vendor, tpl.ID, replacement); err != nil {
		t.Fatal(err)
	}
	clock.Set(epoch.AddDate(0, 2, 0))

	n, err := l.ExpandAll(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Fatalf("ExpandAll posted %d, want 2 from the replacement only", n)
	}
	if got := occurrenceDays(t, l, tpl.ID.String()); len(got) != 0 {
		t.Errorf("corrected template still recurs: %v", got)
	}
	if got := occurrenceDays(t, l, replacement.ID.String()); len(got) != 2 {
		t.Errorf("replacement occurrences = %v", got)
	}

	s, err := l.PartyBalance(ctx, vendor, khata.Supplier("landlord"))
	if err != nil {
		t.Fatal(err)
	}
	if !s.Balance.Equal(rupees(-36000)) {
		t.Errorf("Balance = %v, want -₹36,000.00", s.Balance)
	}
}
