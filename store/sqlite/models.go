package sqlite

import (
	"encoding/json"
	"time"

	"github.com/xraph/grove"

	"github.com/xraph/khata/id"
	"github.com/xraph/khata/transaction"
	"github.com/xraph/khata/types"
)

type transactionModel struct {
	grove.BaseModel `grove:"table:khata_transactions"`

	ID                 string          `grove:"id,pk"`
	VendorID           string          `grove:"vendor_id"`
	CustomerID         string          `grove:"customer_id"`
	SupplierID         string          `grove:"supplier_id"`
	Type               string          `grove:"type"`
	Amount             int64           `grove:"amount"`
	Currency           string          `grove:"currency"`
	TransactionDate    time.Time       `grove:"transaction_date"`
	Category           string          `grove:"category"`
	PaymentMethod      string          `grove:"payment_method"`
	Description        string          `grove:"description"`
	Note               string          `grove:"note"`
	IsRecurring        bool            `grove:"is_recurring"`
	RecurringPattern   string          `grove:"recurring_pattern"`
	RecurringStartDate *time.Time      `grove:"recurring_start_date"`
	RecurringEndDate   *time.Time      `grove:"recurring_end_date"`
	ReferenceType      string          `grove:"reference_type"`
	ReferenceID        string          `grove:"reference_id"`
	Attachments        json.RawMessage `grove:"attachments"`
	ExcludeFromBalance bool            `grove:"exclude_from_balance"`
	IsPOSSale          bool            `grove:"is_pos_sale"`
	IdempotencyKey     string          `grove:"idempotency_key"`
	Status             string          `grove:"status"`
	CreatedAt          time.Time       `grove:"created_at"`
	UpdatedAt          time.Time       `grove:"updated_at"`
}

func toTransactionModel(tx *transaction.Transaction) *transactionModel {
	attachments, _ := json.Marshal(nonNil(tx.Attachments)) //nolint:errcheck // []string always marshals

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
		Attachments:        attachments,
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
		if err := json.Unmarshal(m.Attachments, &attachments); err != nil {
			return nil, err
		}
	}
	if len(attachments) == 0 {
		attachments = nil
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

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
