package khata

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/xraph/khata/id"
	"github.com/xraph/khata/recurrence"
	"github.com/xraph/khata/transaction"
	"github.com/xraph/khata/types"
)

// ──────────────────────────────────────────────────
// Lifecycle guard
// ──────────────────────────────────────────────────

// Changes is an edit request against a posted entry. Only Note and
// Attachments can be applied; setting any other field rejects the request.
type Changes struct {
	Amount             *types.Money
	Type               *transaction.Type
	TransactionDate    *time.Time
	CustomerID         *string
	SupplierID         *string
	Category           *transaction.Category
	PaymentMethod      *transaction.PaymentMethod
	ExcludeFromBalance *bool
	IsRecurring        *bool
	RecurringPattern   *transaction.Pattern
	RecurringStartDate *time.Time
	RecurringEndDate   *time.Time

	Note        *string
	Attachments *[]string
}

// immutableField returns the first financial field the request touches.
func (c Changes) immutableField() string {
	switch {
	case c.Amount != nil:
		return "amount"
	case c.Type != nil:
		return "type"
	case c.TransactionDate != nil:
		return "transaction_date"
	case c.CustomerID != nil:
		return "customer_id"
	case c.SupplierID != nil:
		return "supplier_id"
	case c.Category != nil:
		return "category"
	case c.PaymentMethod != nil:
		return "payment_method"
	case c.ExcludeFromBalance != nil:
		return "exclude_from_balance"
	case c.IsRecurring != nil:
		return "is_recurring"
	case c.RecurringPattern != nil:
		return "recurring_pattern"
	case c.RecurringStartDate != nil:
		return "recurring_start_date"
	case c.RecurringEndDate != nil:
		return "recurring_end_date"
	default:
		return ""
	}
}

// Create validates a pending entry and posts it. On success tx carries its
// assigned ID, timestamps and the posted status.
func (l *Ledger) Create(ctx context.Context, tx *transaction.Transaction) error {
	if err := l.check(ctx, tx); err != nil {
		return err
	}
	return l.post(ctx, tx)
}

// Get retrieves a posted entry.
func (l *Ledger) Get(ctx context.Context, vendorID string, txID id.TransactionID) (*transaction.Transaction, error) {
	return l.store.Get(ctx, vendorID, txID)
}

// RequestEdit applies note and attachment changes in place. Any financial
// field in c fails with ImmutableRecordError and nothing is changed.
func (l *Ledger) RequestEdit(ctx context.Context, vendorID string, txID id.TransactionID, c Changes) (*transaction.Transaction, error) {
	tx, err := l.store.Get(ctx, vendorID, txID)
	if err != nil {
		return nil, err
	}

	if field := c.immutableField(); field != "" {
		l.plugins.EmitEditRejected(ctx, tx, field)
		l.logger.Info("edit rejected",
			"vendor_id", vendorID,
			"transaction_id", txID.String(),
			"field", field,
		)
		return nil, ImmutableRecordError{TransactionID: txID.String(), Field: field}
	}

	if c.Note == nil && c.Attachments == nil {
		return nil, ValidationError{Field: "changes", Message: "nothing to amend"}
	}
	if c.Attachments != nil {
		if err := l.validate.Var(*c.Attachments, "dive,required"); err != nil {
			return nil, ValidationError{Field: "attachments", Message: "must not contain empty entries"}
		}
	}

	a := transaction.Amendment{
		Note:        c.Note,
		Attachments: c.Attachments,
		UpdatedAt:   l.now(),
	}
	if err := l.store.AmendMetadata(ctx, vendorID, txID, a); err != nil {
		return nil, err
	}
	a.Apply(tx)

	l.plugins.EmitTransactionAmended(ctx, tx)
	return tx, nil
}

// Reverse posts the offsetting entry of a posted transaction: the opposite
// type with the same amount, party, category and exclusion flag, referencing
// the original as a correction. Each entry can be reversed once.
func (l *Ledger) Reverse(ctx context.Context, vendorID string, txID id.TransactionID, reason string) (*transaction.Transaction, error) {
	orig, err := l.store.Get(ctx, vendorID, txID)
	if err != nil {
		return nil, err
	}
	if orig.IsCorrection() {
		return nil, ValidationError{Field: "reference_type", Message: "a correction entry cannot be reversed"}
	}

	rev := &transaction.Transaction{
		VendorID:           orig.VendorID,
		CustomerID:         orig.CustomerID,
		SupplierID:         orig.SupplierID,
		Type:               orig.Type.Opposite(),
		Amount:             orig.Amount,
		TransactionDate:    l.now(),
		Category:           orig.Category,
		PaymentMethod:      orig.PaymentMethod,
		Description:        "Reversal of " + orig.ID.String(),
		Note:               reason,
		ReferenceType:      transaction.ReferenceCorrection,
		ReferenceID:        orig.ID.String(),
		ExcludeFromBalance: orig.ExcludeFromBalance,
		IsPOSSale:          orig.IsPOSSale,
		IdempotencyKey:     correctionKey(orig.ID),
	}

	if err := l.Create(ctx, rev); err != nil {
		if errors.Is(err, ErrDuplicateTransaction) {
			return nil, fmt.Errorf("%w: %s", ErrAlreadyReversed, orig.ID)
		}
		return nil, err
	}

	l.plugins.EmitTransactionReversed(ctx, orig, rev)
	return rev, nil
}

// Correct reverses a posted entry and posts replacement in its place. The
// replacement is validated before anything is written. Unless the caller set
// one, the replacement references the original as a replacement.
func (l *Ledger) Correct(ctx context.Context, vendorID string, txID id.TransactionID, replacement *transaction.Transaction) (reversal *transaction.Transaction, err error) {
	if replacement != nil && replacement.VendorID == "" {
		replacement.VendorID = vendorID
	}
	if replacement != nil && replacement.VendorID != vendorID {
		return nil, ValidationError{Field: "vendor_id", Message: "replacement must belong to the same vendor"}
	}
	if replacement != nil && replacement.ReferenceType == "" {
		replacement.ReferenceType = transaction.ReferenceReplacement
		replacement.ReferenceID = txID.String()
	}
	if err := l.check(ctx, replacement); err != nil {
		return nil, err
	}

	reversal, err = l.Reverse(ctx, vendorID, txID, "corrected")
	if err != nil {
		return nil, err
	}

	if err := l.post(ctx, replacement); err != nil {
		l.logger.Error("correction posted without replacement",
			"vendor_id", vendorID,
			"transaction_id", txID.String(),
			"reversal_id", reversal.ID.String(),
			"error", err,
		)
		return reversal, err
	}
	return reversal, nil
}

// post persists a checked entry.
func (l *Ledger) post(ctx context.Context, tx *transaction.Transaction) error {
	if tx.ID.IsNil() {
		tx.ID = id.NewTransactionID()
	}
	tx.Entity = types.NewEntityAt(l.now())
	tx.Status = transaction.StatusPosted

	if err := l.store.Append(ctx, tx); err != nil {
		tx.Status = transaction.StatusPending
		return err
	}

	l.plugins.EmitTransactionPosted(ctx, tx)

	l.logger.Debug("transaction posted",
		"vendor_id", tx.VendorID,
		"transaction_id", tx.ID.String(),
		"type", tx.Type,
		"amount", tx.Amount.Amount,
		"party", tx.Party().String(),
	)
	return nil
}

// check applies defaults to a pending entry and enforces every creation invariant.
func (l *Ledger) check(ctx context.Context, tx *transaction.Transaction) error {
	if tx == nil {
		return ValidationError{Field: "transaction", Message: "is required"}
	}
	if tx.Status == transaction.StatusPosted {
		return ValidationError{Field: "status", Message: "transaction is already posted"}
	}
	if !tx.ID.IsNil() && tx.ID.Prefix() != id.PrefixTransaction {
		return ValidationError{Field: "id", Message: fmt.Sprintf("expected prefix %q", id.PrefixTransaction)}
	}

	if tx.Amount.Currency == "" {
		tx.Amount.Currency = l.currency
	}
	tx.Amount.Currency = strings.ToLower(tx.Amount.Currency)
	if tx.TransactionDate.IsZero() {
		tx.TransactionDate = l.now()
	}
	if tx.Status == "" {
		tx.Status = transaction.StatusPending
	}

	if err := l.validate.Struct(tx); err != nil {
		return toValidationError(err)
	}

	if tx.Amount.Amount <= 0 {
		return ValidationError{Field: "amount", Message: "must be greater than zero"}
	}
	if tx.Amount.Currency != l.currency {
		return ValidationError{
			Field:   "amount",
			Message: fmt.Sprintf("currency %q does not match ledger currency %q", tx.Amount.Currency, l.currency),
		}
	}
	if tx.CustomerID != "" && tx.SupplierID != "" {
		return ValidationError{Field: "supplier_id", Message: "an entry cannot reference both a customer and a supplier"}
	}

	if tx.IsRecurring {
		if tx.RecurringPattern == "" {
			return ValidationError{Field: "recurring_pattern", Message: "is required for recurring transactions"}
		}
		if err := recurrence.RuleFor(tx).Validate(); err != nil {
			return recurrenceError(err)
		}
	} else if tx.RecurringPattern != "" || tx.RecurringStartDate != nil || tx.RecurringEndDate != nil {
		return ValidationError{Field: "is_recurring", Message: "recurrence fields are set on a non-recurring transaction"}
	}

	if l.resolver != nil {
		if party := tx.Party(); party.Kind != transaction.PartyGeneral {
			ok, err := l.resolver.PartyExists(ctx, tx.VendorID, party)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("%w: %s", ErrPartyNotFound, party)
			}
		}
	}

	return nil
}

func correctionKey(txID id.TransactionID) string {
	return transaction.ReferenceCorrection + ":" + txID.String()
}

func recurrenceError(err error) error {
	switch {
	case errors.Is(err, recurrence.ErrInvertedBounds):
		return ValidationError{Field: "recurring_end_date", Message: "must not be before the start date"}
	case errors.Is(err, recurrence.ErrUnknownPattern):
		return ValidationError{Field: "recurring_pattern", Message: err.Error()}
	default:
		return err
	}
}

// ──────────────────────────────────────────────────
// Field validation
// ──────────────────────────────────────────────────

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func toValidationError(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	fe := fieldErrs[0]
	field := fe.Field()
	if i := strings.IndexByte(field, '['); i > 0 {
		field = field[:i]
	}
	return ValidationError{Field: field, Message: fieldMessage(fe)}
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}
