// Package transaction defines the khata ledger entry and the store contract
// every backend implements.
package transaction

import (
	"time"

	"github.com/xraph/khata/id"
	"github.com/xraph/khata/types"
)

// Type is the only primitive fact of an entry: money in or money out.
type Type string

const (
	TypeIn  Type = "in"
	TypeOut Type = "out"
)

// Opposite returns the reversing type.
func (t Type) Opposite() Type {
	if t == TypeIn {
		return TypeOut
	}
	return TypeIn
}

type Category string

const (
	CategoryProductSale  Category = "product_sale"
	CategoryService      Category = "service"
	CategoryExpense      Category = "expense"
	CategoryAdvance      Category = "advance"
	CategoryRefund       Category = "refund"
	CategorySubscription Category = "subscription"
	CategoryOther        Category = "other"
)

type PaymentMethod string

const (
	MethodCash   PaymentMethod = "cash"
	MethodBank   PaymentMethod = "bank"
	MethodUPI    PaymentMethod = "upi"
	MethodCard   PaymentMethod = "card"
	MethodCredit PaymentMethod = "credit" // unpaid due left on a sale
	MethodOther  PaymentMethod = "other"
)

// Pattern is the calendar unit a recurring template repeats on.
type Pattern string

const (
	PatternDaily     Pattern = "daily"
	PatternWeekly    Pattern = "weekly"
	PatternMonthly   Pattern = "monthly"
	PatternQuarterly Pattern = "quarterly"
	PatternYearly    Pattern = "yearly"
)

// Status tracks the two-state lifecycle. There is no voided or deleted state.
type Status string

const (
	StatusPending Status = "pending"
	StatusPosted  Status = "posted"
)

// Well-known reference types written by the engine itself.
const (
	ReferenceCorrection  = "correction"
	ReferenceRecurrence  = "recurrence"
	ReferenceReplacement = "replacement"
)

// Transaction is one immutable money-in or money-out fact between a vendor
// and at most one party.
type Transaction struct {
	types.Entity
	ID                 id.TransactionID `json:"id"`
	VendorID           string           `json:"vendor_id" validate:"required"`
	CustomerID         string           `json:"customer_id,omitempty"`
	SupplierID         string           `json:"supplier_id,omitempty"`
	Type               Type             `json:"type" validate:"required,oneof=in out"`
	Amount             types.Money      `json:"amount"`
	TransactionDate    time.Time        `json:"transaction_date"`
	Category           Category         `json:"category" validate:"required,oneof=product_sale service expense advance refund subscription other"`
	PaymentMethod      PaymentMethod    `json:"payment_method" validate:"required,oneof=cash bank upi card credit other"`
	Description        string           `json:"description,omitempty" validate:"max=1000"`
	Note               string           `json:"note,omitempty"`
	IsRecurring        bool             `json:"is_recurring"`
	RecurringPattern   Pattern          `json:"recurring_pattern,omitempty" validate:"omitempty,oneof=daily weekly monthly quarterly yearly"`
	RecurringStartDate *time.Time       `json:"recurring_start_date,omitempty"`
	RecurringEndDate   *time.Time       `json:"recurring_end_date,omitempty"`
	ReferenceType      string           `json:"reference_type,omitempty"`
	ReferenceID        string           `json:"reference_id,omitempty"`
	Attachments        []string         `json:"attachments,omitempty" validate:"dive,required"`
	ExcludeFromBalance bool             `json:"exclude_from_balance"`
	IsPOSSale          bool             `json:"is_pos_sale"`
	IdempotencyKey     string           `json:"idempotency_key,omitempty"`
	Status             Status           `json:"status"`
}

// Party returns the counterparty reference of the entry.
func (t *Transaction) Party() Ref {
	switch {
	case t.CustomerID != "":
		return Ref{Kind: PartyCustomer, ID: t.CustomerID}
	case t.SupplierID != "":
		return Ref{Kind: PartySupplier, ID: t.SupplierID}
	default:
		return Ref{Kind: PartyGeneral}
	}
}

// SignedAmount returns the amount positive for in and negative for out.
func (t *Transaction) SignedAmount() types.Money {
	if t.Type == TypeOut {
		return t.Amount.Negate()
	}
	return t.Amount
}

// IsOccurrence reports whether the entry was materialized from a recurring template.
func (t *Transaction) IsOccurrence() bool {
	return t.ReferenceType == ReferenceRecurrence && t.ReferenceID != ""
}

// IsCorrection reports whether the entry offsets an earlier one.
func (t *Transaction) IsCorrection() bool {
	return t.ReferenceType == ReferenceCorrection && t.ReferenceID != ""
}

// IsPosted reports whether the entry has been persisted.
func (t *Transaction) IsPosted() bool {
	return t.Status == StatusPosted
}

// Clone returns a deep copy, so callers never share slices or date pointers
// with a store.
func (t *Transaction) Clone() *Transaction {
	if t == nil {
		return nil
	}
	c := *t
	if t.Attachments != nil {
		c.Attachments = append([]string(nil), t.Attachments...)
	}
	if t.RecurringStartDate != nil {
		d := *t.RecurringStartDate
		c.RecurringStartDate = &d
	}
	if t.RecurringEndDate != nil {
		d := *t.RecurringEndDate
		c.RecurringEndDate = &d
	}
	return &c
}

// PartyKind selects the sign-convention labels for a ledger.
type PartyKind string

const (
	PartyCustomer PartyKind = "customer"
	PartySupplier PartyKind = "supplier"
	PartyGeneral  PartyKind = "general"
)

// Ref identifies a party within a vendor. A general Ref has no ID.
type Ref struct {
	Kind PartyKind `json:"kind"`
	ID   string    `json:"id,omitempty"`
}

// Customer returns a customer Ref.
func Customer(id string) Ref { return Ref{Kind: PartyCustomer, ID: id} }

// Supplier returns a supplier Ref.
func Supplier(id string) Ref { return Ref{Kind: PartySupplier, ID: id} }

// General returns the Ref of entries not tied to any party.
func General() Ref { return Ref{Kind: PartyGeneral} }

func (r Ref) String() string {
	if r.ID == "" {
		return string(r.Kind)
	}
	return string(r.Kind) + ":" + r.ID
}

// Matches reports whether tx belongs to the party.
func (r Ref) Matches(tx *Transaction) bool {
	switch r.Kind {
	case PartyCustomer:
		return tx.CustomerID == r.ID
	case PartySupplier:
		return tx.SupplierID == r.ID
	default:
		return tx.CustomerID == "" && tx.SupplierID == ""
	}
}

// Amendment carries the only in-place change a posted entry accepts.
// Nil fields are left untouched.
type Amendment struct {
	Note        *string
	Attachments *[]string
	UpdatedAt   time.Time
}

// Apply writes the amendment onto tx.
func (a Amendment) Apply(tx *Transaction) {
	if a.Note != nil {
		tx.Note = *a.Note
	}
	if a.Attachments != nil {
		tx.Attachments = append([]string(nil), (*a.Attachments)...)
	}
	tx.UpdatedAt = a.UpdatedAt.UTC()
}
