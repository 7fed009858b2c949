package transaction

import (
	"context"
	"time"

	"github.com/xraph/khata/id"
)

// Store persists ledger entries. It is insert-only: nothing in the contract
// can change or remove a financial field once appended.
type Store interface {
	Append(ctx context.Context, tx *Transaction) error
	Get(ctx context.Context, vendorID string, txID id.TransactionID) (*Transaction, error)
	ListForVendor(ctx context.Context, vendorID string, opts ListOpts) ([]*Transaction, error)
	ListForParty(ctx context.Context, vendorID string, party Ref, opts ListOpts) ([]*Transaction, error)
	// ListRecurring returns recurring templates. An empty vendorID spans all vendors.
	ListRecurring(ctx context.Context, vendorID string) ([]*Transaction, error)
	AmendMetadata(ctx context.Context, vendorID string, txID id.TransactionID, a Amendment) error
}

// ListOpts filters a listing. Zero values mean "no filter"; Start and End
// bound TransactionDate inclusively.
type ListOpts struct {
	Type          Type
	Category      Category
	PaymentMethod PaymentMethod
	Start         time.Time
	End           time.Time
	ReferenceType string
	ReferenceID   string
	Limit         int
	Offset        int
}

// Match reports whether tx passes every filter in opts. Backends that filter
// in memory share it.
func (o ListOpts) Match(tx *Transaction) bool {
	if o.Type != "" && tx.Type != o.Type {
		return false
	}
	if o.Category != "" && tx.Category != o.Category {
		return false
	}
	if o.PaymentMethod != "" && tx.PaymentMethod != o.PaymentMethod {
		return false
	}
	if !o.Start.IsZero() && tx.TransactionDate.Before(o.Start) {
		return false
	}
	if !o.End.IsZero() && tx.TransactionDate.After(o.End) {
		return false
	}
	if o.ReferenceType != "" && tx.ReferenceType != o.ReferenceType {
		return false
	}
	if o.ReferenceID != "" && tx.ReferenceID != o.ReferenceID {
		return false
	}
	return true
}
