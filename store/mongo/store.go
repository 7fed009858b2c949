package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/mongodriver"

	"github.com/xraph/khata"
	"github.com/xraph/khata/id"
	khatastore "github.com/xraph/khata/store"
	"github.com/xraph/khata/transaction"
)

// Collection name constants.
const (
	colTransactions = "khata_transactions"
)

// compile-time interface check
var _ khatastore.Store = (*Store)(nil)

// Store implements store.Store using MongoDB via Grove ORM.
type Store struct {
	db  *grove.DB
	mdb *mongodriver.MongoDB
}

// New creates a new MongoDB store backed by Grove ORM.
func New(db *grove.DB) *Store {
	return &Store{
		db:  db,
		mdb: mongodriver.Unwrap(db),
	}
}

// DB returns the underlying grove database for direct access.
func (s *Store) DB() *grove.DB { return s.db }

// Migrate creates indexes for all khata collections.
func (s *Store) Migrate(ctx context.Context) error {
	indexes := migrationIndexes()

	for col, models := range indexes {
		if len(models) == 0 {
			continue
		}
		_, err := s.mdb.Collection(col).Indexes().CreateMany(ctx, models)
		if err != nil {
			return fmt.Errorf("%w: khata/mongo: migrate %s indexes: %w", khata.ErrMigrationFailed, col, err)
		}
	}
	return nil
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// ==================== Transaction Store ====================

func (s *Store) Append(ctx context.Context, tx *transaction.Transaction) error {
	m := toTransactionModel(tx)
	_, err := s.mdb.NewInsert(m).Exec(ctx)
	if err == nil {
		return nil
	}
	if !mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("khata/mongo: append transaction: %w", err)
	}

	n, countErr := s.mdb.Collection(colTransactions).CountDocuments(ctx, bson.M{"_id": m.ID})
	if countErr != nil {
		return fmt.Errorf("khata/mongo: append transaction: %w", countErr)
	}
	if n > 0 {
		return khata.ErrAlreadyExists
	}
	return khata.ErrDuplicateTransaction
}

func (s *Store) Get(ctx context.Context, vendorID string, txID id.TransactionID) (*transaction.Transaction, error) {
	var m transactionModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": txID.String(), "vendor_id": vendorID}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, khata.ErrTransactionNotFound
		}
		return nil, fmt.Errorf("khata/mongo: get transaction: %w", err)
	}
	return fromTransactionModel(&m)
}

func (s *Store) ListForVendor(ctx context.Context, vendorID string, opts transaction.ListOpts) ([]*transaction.Transaction, error) {
	return s.list(ctx, listFilter(vendorID, nil, opts), opts)
}

func (s *Store) ListForParty(ctx context.Context, vendorID string, party transaction.Ref, opts transaction.ListOpts) ([]*transaction.Transaction, error) {
	return s.list(ctx, listFilter(vendorID, &party, opts), opts)
}

func (s *Store) ListRecurring(ctx context.Context, vendorID string) ([]*transaction.Transaction, error) {
	filter := bson.M{"is_recurring": true}
	if vendorID != "" {
		filter["vendor_id"] = vendorID
	}
	return s.list(ctx, filter, transaction.ListOpts{})
}

func (s *Store) AmendMetadata(ctx context.Context, vendorID string, txID id.TransactionID, a transaction.Amendment) error {
	q := s.mdb.NewUpdate((*transactionModel)(nil)).
		Filter(bson.M{"_id": txID.String(), "vendor_id": vendorID}).
		Set("updated_at", a.UpdatedAt.UTC())
	if a.Note != nil {
		q = q.Set("note", *a.Note)
	}
	if a.Attachments != nil {
		q = q.Set("attachments", append([]string{}, (*a.Attachments)...))
	}

	res, err := q.Exec(ctx)
	if err != nil {
		return fmt.Errorf("khata/mongo: amend transaction: %w", err)
	}
	if res.MatchedCount() == 0 {
		return khata.ErrTransactionNotFound
	}
	return nil
}

func (s *Store) list(ctx context.Context, filter bson.M, opts transaction.ListOpts) ([]*transaction.Transaction, error) {
	var models []transactionModel

	q := s.mdb.NewFind(&models).
		Filter(filter).
		Sort(bson.D{{Key: "transaction_date", Value: -1}, {Key: "_id", Value: -1}})

	if opts.Limit > 0 {
		q = q.Limit(int64(opts.Limit))
	}
	if opts.Offset > 0 {
		q = q.Skip(int64(opts.Offset))
	}

	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("khata/mongo: list transactions: %w", err)
	}

	result := make([]*transaction.Transaction, len(models))
	for i := range models {
		tx, err := fromTransactionModel(&models[i])
		if err != nil {
			return nil, err
		}
		result[i] = tx
	}
	return result, nil
}

// ==================== Helpers ====================

func listFilter(vendorID string, party *transaction.Ref, opts transaction.ListOpts) bson.M {
	filter := bson.M{"vendor_id": vendorID}

	if party != nil {
		switch party.Kind {
		case transaction.PartyCustomer:
			filter["customer_id"] = party.ID
		case transaction.PartySupplier:
			filter["supplier_id"] = party.ID
		default:
			filter["customer_id"] = ""
			filter["supplier_id"] = ""
		}
	}
	if opts.Type != "" {
		filter["type"] = string(opts.Type)
	}
	if opts.Category != "" {
		filter["category"] = string(opts.Category)
	}
	if opts.PaymentMethod != "" {
		filter["payment_method"] = string(opts.PaymentMethod)
	}
	if opts.ReferenceType != "" {
		filter["reference_type"] = opts.ReferenceType
	}
	if opts.ReferenceID != "" {
		filter["reference_id"] = opts.ReferenceID
	}

	dates := bson.M{}
	if !opts.Start.IsZero() {
		dates["$gte"] = opts.Start.UTC()
	}
	if !opts.End.IsZero() {
		dates["$lte"] = opts.End.UTC()
	}
	if len(dates) > 0 {
		filter["transaction_date"] = dates
	}
	return filter
}

// isNoDocuments checks if an error wraps mongo.ErrNoDocuments.
func isNoDocuments(err error) bool {
	return errors.Is(err, mongo.ErrNoDocuments)
}

// migrationIndexes returns the index definitions for all khata collections.
func migrationIndexes() map[string][]mongo.IndexModel {
	return map[string][]mongo.IndexModel{
		colTransactions: {
			{Keys: bson.D{{Key: "vendor_id", Value: 1}, {Key: "transaction_date", Value: -1}}},
			{Keys: bson.D{{Key: "vendor_id", Value: 1}, {Key: "customer_id", Value: 1}}},
			{Keys: bson.D{{Key: "vendor_id", Value: 1}, {Key: "supplier_id", Value: 1}}},
			{Keys: bson.D{{Key: "vendor_id", Value: 1}, {Key: "reference_type", Value: 1}, {Key: "reference_id", Value: 1}}},
			{Keys: bson.D{{Key: "is_recurring", Value: 1}}},
			{
				Keys: bson.D{{Key: "vendor_id", Value: 1}, {Key: "idempotency_key", Value: 1}},
				Options: options.Index().
					SetUnique(true).
					SetPartialFilterExpression(bson.M{"idempotency_key": bson.M{"$exists": true}}),
			},
		},
	}
}
