package mongo

import (
	"time"

	"github.com/xraph/grove"

	"github.com/xraph/khata/id"
	"github.com/xraph/khata/transaction"
	"github.com/xraph/khata/types"
)

type transactionModel struct {
	grove.BaseModel `grove:"table:khata_transactions"`

	ID                 string     `grove:"id,pk"                bson:"_id"`
	VendorID           string     `grove:"vendor_id"            bson:"vendor_id"`
	CustomerID         string     `grove:"customer_id"          bson:"customer_id"`
	SupplierID         string     `grove:"supplier_id"          bson:"supplier_id"`
	Type               string     `grove:"type"                 bson:"type"`
	Amount             int64      `grove:"amount"               bson:"amount"`
	Currency           string     `grove:"currency"             bson:"currency"`
	TransactionDate    time.Time  `grove:"transaction_date"     bson:"transaction_date"`
	Category           string     `grove:"category"             bson:"category"`
	PaymentMethod      string     `grove:"payment_method"       bson:"payment_method"`
	Description        string     `grove:"description"          bson:"description,omitempty"`
	Note               string     `grove:"note"                 bson:"note,omitempty"`
	IsRecurring        bool       `grove:"is_recurring"         bson:"is_recurring"`
	RecurringPattern   string     `grove:"recurring_pattern"    bson:"recurring_pattern,omitempty"`
	RecurringStartDate *time.Time `grove:"recurring_start_date" bson:"recurring_start_date,omitempty"`
	RecurringEndDate   *time.Time `grove:"recurring_end_date"   bson:"recurring_end_date,omitempty"`
	ReferenceType      string     `grove:"reference_type"       bson:"reference_type,omitempty"`
	ReferenceID        string     `grove:"reference_id"         bson:"reference_id,omitempty"`
	Attachments        []string   `grove:"attachments"          bson:"attachments,omitempty"`
	ExcludeFromBalance bool       `grove:"exclude_from_balance" bson:"exclude_from_balance"`
	IsPOSSale          bool       `grove:"is_pos_sale"          bson:"is_pos_sale"`
	IdempotencyKey     string     `grove:"idempotency_key"      bson:"idempotency_key,omitempty"`
	Status             string     `grove:"status"               bson:"status"`
	CreatedAt          time.Time  `grove:"created_at"           bson:"created_at"`
	UpdatedAt          time.Time  `grove:"updated_at"           bson:"updated_at"`
}

func toTransactionModel(tx *transaction.Transaction) *transactionModel {
	return &transactionModel{
		ID:                 tx.ID.String(),
		VendorID:           tx.VendorID,
		CustomerID:         tx.CustomerID,
		SupplierID:         tx.SupplierID,
		Type:               string(tx.Type),
		Amount:             tx.Amount.Amount,
		Currency:           tx.Amount.Currency,
		TransactionDate:    tx.TransactionDate.UTC(),
		Category:           string(tx.Category),
		PaymentMethod:      string(tx.PaymentMethod),
		Description:        tx.Description,
		Note:               tx.Note,
		IsRecurring:        tx.IsRecurring,
		RecurringPattern:   string(tx.RecurringPattern),
		RecurringStartDate: utcPtr(tx.RecurringStartDate),
		RecurringEndDate:   utcPtr(tx.RecurringEndDate),
		ReferenceType:      tx.ReferenceType,
		ReferenceID:        tx.ReferenceID,
		Attachments:        append([]string(nil), tx.Attachments...),
		ExcludeFromBalance: tx.ExcludeFromBalance,
		IsPOSSale:          tx.IsPOSSale,
		IdempotencyKey:     tx.IdempotencyKey,
		Status:             string(tx.Status),
		CreatedAt:          tx.CreatedAt,
		UpdatedAt:          tx.UpdatedAt,
	}
}

func fromTransactionModel(m *transactionModel) (*transaction.Transaction, error) {
	txID, err := id.ParseTransactionID(m.ID)
	if err != nil {
		return nil, err
	}

	var attachments []string
	if len(m.Attachments) > 0 {
		attachments = append(attachments, m.Attachments...)
	}

	return &transaction.Transaction{
		Entity: types.Entity{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		ID:                 txID,
		VendorID:           m.VendorID,
		CustomerID:         m.CustomerID,
		SupplierID:         m.SupplierID,
		Type:               transaction.Type(m.Type),
		Amount:             types.Money{Amount: m.Amount, Currency: m.Currency},
		TransactionDate:    m.TransactionDate,
		Category:           transaction.Category(m.Category),
		PaymentMethod:      transaction.PaymentMethod(m.PaymentMethod),
		Description:        m.Description,
		Note:               m.Note,
		IsRecurring:        m.IsRecurring,
		RecurringPattern:   transaction.Pattern(m.RecurringPattern),
		RecurringStartDate: m.RecurringStartDate,
		RecurringEndDate:   m.RecurringEndDate,
		ReferenceType:      m.ReferenceType,
		ReferenceID:        m.ReferenceID,
		Attachments:        attachments,
		ExcludeFromBalance: m.ExcludeFromBalance,
		IsPOSSale:          m.IsPOSSale,
		IdempotencyKey:     m.IdempotencyKey,
		Status:             transaction.Status(m.Status),
	}, nil
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
