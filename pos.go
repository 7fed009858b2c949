package khata

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/xraph/khata/transaction"
	"github.com/xraph/khata/types"
)

// ──────────────────────────────────────────────────
// Point of sale
// ──────────────────────────────────────────────────

// POSSale is a checkout handed to the ledger by a point-of-sale producer.
type POSSale struct {
	VendorID   string
	CustomerID string // empty for walk-in sales
	Total      types.Money
	Paid       types.Money
	Method     transaction.PaymentMethod

	// ReferenceType defaults to "order".
	ReferenceType string
	ReferenceID   string
	Description   string
	Note          string
	Date          time.Time
}

// POSResult holds the entries a sale produced. Either may be nil.
type POSResult struct {
	Sale *transaction.Transaction
	Due  *transaction.Transaction
}

// RecordPOSSale records a checkout. The paid part is posted as an in entry
// excluded from the balance (cash-and-carry is not credit). An unpaid
// remainder is posted as a credit out entry that the customer owes. Walk-in
// sales can only be fully paid.
//
// With a ReferenceID the checkout is replay-safe: parts recorded by an
// earlier attempt are kept and only missing parts are posted. A replay that
// finds every part already recorded returns the stored entries together with
// ErrDuplicateTransaction.
func (l *Ledger) RecordPOSSale(ctx context.Context, sale POSSale) (*POSResult, error) {
	if sale.Paid.Currency == "" {
		sale.Paid.Currency = sale.Total.Currency
	}
	switch {
	case sale.Total.Amount <= 0:
		return nil, ValidationError{Field: "total", Message: "must be greater than zero"}
	case sale.Paid.Amount < 0:
		return nil, ValidationError{Field: "paid", Message: "must not be negative"}
	case !sale.Total.SameCurrency(sale.Paid):
		return nil, ValidationError{Field: "paid", Message: "currency does not match total"}
	case sale.Paid.Amount > sale.Total.Amount:
		return nil, ValidationError{Field: "paid", Message: "exceeds the sale total"}
	case sale.Paid.Amount < sale.Total.Amount && sale.CustomerID == "":
		return nil, ValidationError{Field: "customer_id", Message: "a sale on credit needs a customer"}
	}

	if sale.ReferenceType == "" {
		sale.ReferenceType = "order"
	}
	if sale.Method == "" {
		sale.Method = transaction.MethodCash
	}
	if sale.Date.IsZero() {
		sale.Date = l.now()
	}

	base := transaction.Transaction{
		VendorID:        sale.VendorID,
		CustomerID:      sale.CustomerID,
		TransactionDate: sale.Date,
		Category:        transaction.CategoryProductSale,
		Description:     sale.Description,
		Note:            sale.Note,
		ReferenceType:   sale.ReferenceType,
		ReferenceID:     sale.ReferenceID,
		IsPOSSale:       true,
	}

	result := &POSResult{}
	replayed := true
	if sale.Paid.Amount > 0 {
		paid := base
		paid.Type = transaction.TypeIn
		paid.Amount = sale.Paid
		paid.PaymentMethod = sale.Method
		paid.ExcludeFromBalance = true
		paid.IdempotencyKey = posKey(sale, "paid")

		posted, err := l.postPart(ctx, &paid)
		if err != nil {
			return nil, err
		}
		result.Sale = posted
		replayed = replayed && posted != &paid
	}

	if due := sale.Total.Amount - sale.Paid.Amount; due > 0 {
		credit := base
		credit.Type = transaction.TypeOut
		credit.Amount = types.Money{Amount: due, Currency: strings.ToLower(sale.Total.Currency)}
		credit.PaymentMethod = transaction.MethodCredit
		credit.IdempotencyKey = posKey(sale, "due")
		if credit.Description == "" {
			credit.Description = "Pending payment"
		}

		posted, err := l.postPart(ctx, &credit)
		if err != nil {
			return result, err
		}
		result.Due = posted
		replayed = replayed && posted != &credit
	}

	if replayed {
		return result, ErrDuplicateTransaction
	}
	return result, nil
}

// postPart creates one entry of a checkout. A part already recorded under
// the same key is returned as stored, so a retry after a partial failure
// posts only what is missing.
func (l *Ledger) postPart(ctx context.Context, tx *transaction.Transaction) (*transaction.Transaction, error) {
	err := l.Create(ctx, tx)
	if err == nil {
		return tx, nil
	}
	if !errors.Is(err, ErrDuplicateTransaction) {
		return nil, err
	}

	prior, listErr := l.store.ListForVendor(ctx, tx.VendorID, transaction.ListOpts{
		ReferenceType: tx.ReferenceType,
		ReferenceID:   tx.ReferenceID,
	})
	if listErr != nil {
		return nil, listErr
	}
	for _, p := range prior {
		if p.IdempotencyKey == tx.IdempotencyKey {
			return p, nil
		}
	}
	return nil, err
}

// posKey makes a checkout replay-safe when the producer supplies a reference.
func posKey(sale POSSale, part string) string {
	if sale.ReferenceID == "" {
		return ""
	}
	return fmt.Sprintf("pos:%s:%s:%s", sale.ReferenceType, sale.ReferenceID, part)
}

// ParseAmount parses a major-unit string such as "1,200.50" in the ledger currency.
func (l *Ledger) ParseAmount(s string) (types.Money, error) {
	m, err := types.ParseMoney(s, l.currency)
	if err != nil {
		return types.Money{}, ValidationError{Field: "amount", Message: err.Error()}
	}
	return m, nil
}
