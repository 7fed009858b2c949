package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/xraph/khata"
	"github.com/xraph/khata/id"
	"github.com/xraph/khata/store/memory"
	"github.com/xraph/khata/transaction"
	"github.com/xraph/khata/types"
)

func entry(vendor, customer string, day int, key string) *transaction.Transaction {
	return &transaction.Transaction{
		ID:              id.NewTransactionID(),
		VendorID:        vendor,
		CustomerID:      customer,
		Type:            transaction.TypeIn,
		Amount:          types.INR(10000),
		TransactionDate: time.Date(2024, 5, day, 10, 0, 0, 0, time.UTC),
		Category:        transaction.CategoryService,
		PaymentMethod:   transaction.MethodCash,
		IdempotencyKey:  key,
		Status:          transaction.StatusPosted,
	}
}

func TestAppendRejectsDuplicates(t *testing.T) {
	ctx := context.Background()
	s := memory.New()

	first := entry("vnd_1", "cus_1", 1, "k1")
	if err := s.Append(ctx, first); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		tx   *transaction.Transaction
		want error
	}{
		{"same id", first, khata.ErrAlreadyExists},
		{"same key same vendor", entry("vnd_1", "cus_2", 2, "k1"), khata.ErrDuplicateTransaction},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := s.Append(ctx, tt.tx); !errors.Is(err, tt.want) {
				t.Errorf("got %v, want %v", err, tt.want)
			}
		})
	}

	if err := s.Append(ctx, entry("vnd_2", "cus_1", 1, "k1")); err != nil {
		t.Errorf("keys are per vendor, got %v", err)
	}
}

func TestReadsAreCopies(t *testing.T) {
	ctx := context.Background()
	s := memory.New()

	tx := entry("vnd_1", "cus_1", 1, "")
	tx.Attachments = []string{"a.jpg"}
	if err := s.Append(ctx, tx); err != nil {
		t.Fatal(err)
	}
	tx.Attachments[0] = "changed.jpg"

	got, err := s.Get(ctx, "vnd_1", tx.ID)
	if err != nil {
		t.Fatal(err)
	}
	got.Amount = types.INR(1)

	again, _ := s.Get(ctx, "vnd_1", tx.ID)
	if again.Attachments[0] != "a.jpg" || again.Amount.Amount != 10000 {
		t.Errorf("store shares memory with callers: %+v", again)
	}

	if _, err := s.Get(ctx, "vnd_2", tx.ID); !errors.Is(err, khata.ErrTransactionNotFound) {
		t.Errorf("other vendor lookup = %v", err)
	}
}

func TestListOrderingAndPaging(t *testing.T) {
	ctx := context.Background()
	s := memory.New()

	for day := 1; day <= 5; day++ {
		if err := s.Append(ctx, entry("vnd_1", "cus_1", day, "")); err != nil {
			t.Fatal(err)
		}
	}
	_ = s.Append(ctx, entry("vnd_1", "cus_2", 9, ""))

	page, err := s.ListForParty(ctx, "vnd_1", transaction.Customer("cus_1"), transaction.ListOpts{Limit: 2, Offset: 1})
	if err != nil {
		t.Fatal(err)
	}
	if len(page) != 2 {
		t.Fatalf("got %d entries, want 2", len(page))
	}
	if page[0].TransactionDate.Day() != 4 || page[1].TransactionDate.Day() != 3 {
		t.Errorf("unexpected order: %v, %v", page[0].TransactionDate, page[1].TransactionDate)
	}

	all, _ := s.ListForVendor(ctx, "vnd_1", transaction.ListOpts{})
	if len(all) != 6 || all[0].CustomerID != "cus_2" {
		t.Errorf("vendor listing = %d entries", len(all))
	}
}

func TestAmendMetadataAndClose(t *testing.T) {
	ctx := context.Background()
	s := memory.New()

	tx := entry("vnd_1", "cus_1", 1, "")
	_ = s.Append(ctx, tx)

	note := "paid by cheque"
	at := time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC)
	if err := s.AmendMetadata(ctx, "vnd_1", tx.ID, transaction.Amendment{Note: &note, UpdatedAt: at}); err != nil {
		t.Fatal(err)
	}
	got, _ := s.Get(ctx, "vnd_1", tx.ID)
	if got.Note != note || !got.UpdatedAt.Equal(at) {
		t.Errorf("amendment not applied: %+v", got)
	}

	if err := s.AmendMetadata(ctx, "vnd_1", id.NewTransactionID(), transaction.Amendment{UpdatedAt: at}); !errors.Is(err, khata.ErrTransactionNotFound) {
		t.Errorf("missing entry = %v", err)
	}

	_ = s.Close()
	if err := s.Ping(ctx); !errors.Is(err, khata.ErrStoreClosed) {
		t.Errorf("Ping after Close = %v", err)
	}
}
