package khata_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/xraph/khata"
	"github.com/xraph/khata/store/memory"
	"github.com/xraph/khata/transaction"
	"github.com/xraph/khata/types"
)

const vendor = "vnd_1"

// Wednesday.
var epoch = time.Date(2024, 5, 15, 12, 0, 0, 0, time.UTC)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newLedger(t *testing.T, opts ...khata.Option) (*khata.Ledger, *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: epoch}
	base := []khata.Option{
		khata.WithLogger(quietLogger()),
		khata.WithClock(clock.Now),
		khata.WithRecurrenceInterval(0),
	}
	l := khata.New(memory.New(), append(base, opts...)...)
	t.Cleanup(func() { _ = l.Stop() })
	return l, clock
}

func rupees(n int64) types.Money { return types.INR(n * 100) }

func customerEntry(customerID string, typ transaction.Type, amount types.Money) *transaction.Transaction {
	return &transaction.Transaction{
		VendorID:      vendor,
		CustomerID:    customerID,
		Type:          typ,
		Amount:        amount,
		Category:      transaction.CategoryProductSale,
		PaymentMethod: transaction.MethodCash,
	}
}

func supplierEntry(supplierID string, typ transaction.Type, amount types.Money) *transaction.Transaction {
	return &transaction.Transaction{
		VendorID:      vendor,
		SupplierID:    supplierID,
		Type:          typ,
		Amount:        amount,
		Category:      transaction.CategoryExpense,
		PaymentMethod: transaction.MethodBank,
	}
}

func mustCreate(t *testing.T, l *khata.Ledger, tx *transaction.Transaction) *transaction.Transaction {
	t.Helper()
	if err := l.Create(context.Background(), tx); err != nil {
		t.Fatalf("Create: %v", err)
	}
	return tx
}

// hookRecorder counts plugin events.
type hookRecorder struct {
	mu       sync.Mutex
	posted   int
	amended  int
	reversed int
	rejected []string
	occ      int
	sweeps   chan int
}

func (h *hookRecorder) Name() string { return "recorder" }

func (h *hookRecorder) OnTransactionPosted(context.Context, *transaction.Transaction) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.posted++
	return nil
}

func (h *hookRecorder) OnTransactionAmended(context.Context, *transaction.Transaction) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.amended++
	return nil
}

func (h *hookRecorder) OnTransactionReversed(_ context.Context, _, _ *transaction.Transaction) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.reversed++
	return nil
}

func (h *hookRecorder) OnEditRejected(_ context.Context, _ *transaction.Transaction, field string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.rejected = append(h.rejected, field)
	return nil
}

func (h *hookRecorder) OnOccurrencesMaterialized(_ context.Context, _ *transaction.Transaction, occ []*transaction.Transaction) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.occ += len(occ)
	return nil
}

func (h *hookRecorder) OnSweepCompleted(_ context.Context, _, posted int, _ time.Duration) error {
	if h.sweeps != nil {
		select {
		case h.sweeps <- posted:
		default:
		}
	}
	return nil
}
