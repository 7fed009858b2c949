package sqlite

import (
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/xraph/khata/id"
	"github.com/xraph/khata/transaction"
	"github.com/xraph/khata/types"
)

func TestTransactionModelConversion(t *testing.T) {
	ist := time.FixedZone("IST", 5*3600+1800)
	start := time.Date(2024, 6, 1, 0, 0, 0, 0, ist)
	end := time.Date(2024, 12, 31, 0, 0, 0, 0, ist)
	tx := &transaction.Transaction{
		Entity:             types.NewEntityAt(time.Date(2024, 5, 15, 12, 0, 0, 0, time.UTC)),
		ID:                 id.NewTransactionID(),
		VendorID:           "vnd_1",
		SupplierID:         "sup_1",
		Type:               transaction.TypeOut,
		Amount:             types.INR(600000),
		TransactionDate:    time.Date(2024, 5, 15, 9, 0, 0, 0, ist),
		Category:           transaction.CategoryExpense,
		PaymentMethod:      transaction.MethodBank,
		IsRecurring:        true,
		RecurringPattern:   transaction.PatternMonthly,
		RecurringStartDate: &start,
		RecurringEndDate:   &end,
		Status:             transaction.StatusPosted,
	}

	m := toTransactionModel(tx)
	if string(m.Attachments) != "[]" {
		t.Errorf("attachments = %s, want []", m.Attachments)
	}
	if m.TransactionDate.Location() != time.UTC || m.RecurringEndDate.Location() != time.UTC {
		t.Error("dates should be stored in UTC")
	}

	back, err := fromTransactionModel(m)
	if err != nil {
		t.Fatal(err)
	}
	if back.ID.String() != tx.ID.String() || !back.Amount.Equal(tx.Amount) {
		t.Errorf("round trip lost identity or amount: %+v", back)
	}
	if back.SupplierID != "sup_1" || back.RecurringPattern != transaction.PatternMonthly || !back.IsRecurring {
		t.Errorf("round trip lost template fields: %+v", back)
	}
	if !back.TransactionDate.Equal(tx.TransactionDate) ||
		!back.RecurringStartDate.Equal(start) || !back.RecurringEndDate.Equal(end) {
		t.Error("round trip moved dates")
	}
	if back.Attachments != nil {
		t.Errorf("attachments = %v, want nil", back.Attachments)
	}
}

func TestTransactionModelAttachments(t *testing.T) {
	tx := &transaction.Transaction{
		ID:          id.NewTransactionID(),
		VendorID:    "vnd_1",
		Attachments: []string{"receipt.jpg", "invoice.pdf"},
	}

	m := toTransactionModel(tx)
	if string(m.Attachments) != `["receipt.jpg","invoice.pdf"]` {
		t.Errorf("attachments = %s", m.Attachments)
	}

	back, err := fromTransactionModel(m)
	if err != nil {
		t.Fatal(err)
	}
	if len(back.Attachments) != 2 || back.Attachments[1] != "invoice.pdf" {
		t.Errorf("attachments = %v", back.Attachments)
	}

	m.Attachments = []byte("{")
	if _, err := fromTransactionModel(m); err == nil {
		t.Error("malformed attachments should fail")
	}

	m.Attachments = nil
	m.ID = "not-an-id"
	if _, err := fromTransactionModel(m); err == nil {
		t.Error("malformed id should fail")
	}
}

func TestIsNoRows(t *testing.T) {
	if !isNoRows(fmt.Errorf("get: %w", sql.ErrNoRows)) {
		t.Error("wrapped sql.ErrNoRows not detected")
	}
	if isNoRows(sql.ErrConnDone) {
		t.Error("unexpected match")
	}
}
