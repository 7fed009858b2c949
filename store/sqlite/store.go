package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/sqlitedriver"
	"github.com/xraph/grove/migrate"

	"github.com/xraph/khata"
	"github.com/xraph/khata/id"
	khatastore "github.com/xraph/khata/store"
	"github.com/xraph/khata/transaction"
)

// compile-time interface check
var _ khatastore.Store = (*Store)(nil)

// Store implements store.Store using SQLite via Grove ORM.
type Store struct {
	db  *grove.DB
	sdb *sqlitedriver.SqliteDB
}

// New creates a new SQLite store backed by Grove ORM.
func New(db *grove.DB) *Store {
	return &Store{
		db:  db,
		sdb: sqlitedriver.Unwrap(db),
	}
}

// DB returns the underlying grove database for direct access.
func (s *Store) DB() *grove.DB { return s.db }

// Migrate creates the required tables and indexes using the grove orchestrator.
func (s *Store) Migrate(ctx context.Context) error {
	executor, err := migrate.NewExecutorFor(s.sdb)
	if err != nil {
		return fmt.Errorf("khata/sqlite: create migration executor: %w", err)
	}
	orch := migrate.NewOrchestrator(executor, Migrations)
	if _, err := orch.Migrate(ctx); err != nil {
		return fmt.Errorf("%w: khata/sqlite: %w", khata.ErrMigrationFailed, err)
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
	res, err := s.sdb.NewInsert(m).
		OnConflict("DO NOTHING").
		Exec(ctx)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows > 0 {
		return nil
	}

	var n int64
	if err := s.sdb.NewRaw(`SELECT COUNT(*) FROM khata_transactions WHERE id = ?`, m.ID).Scan(ctx, &n); err != nil {
		return err
	}
	if n > 0 {
		return khata.ErrAlreadyExists
	}
	return khata.ErrDuplicateTransaction
}

func (s *Store) Get(ctx context.Context, vendorID string, txID id.TransactionID) (*transaction.Transaction, error) {
	m := new(transactionModel)
	err := s.sdb.NewSelect(m).
		Where("vendor_id = ?", vendorID).
		Where("id = ?", txID.String()).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, khata.ErrTransactionNotFound
		}
		return nil, err
	}
	return fromTransactionModel(m)
}

func (s *Store) ListForVendor(ctx context.Context, vendorID string, opts transaction.ListOpts) ([]*transaction.Transaction, error) {
	return s.list(ctx, vendorID, nil, opts)
}

func (s *Store) ListForParty(ctx context.Context, vendorID string, party transaction.Ref, opts transaction.ListOpts) ([]*transaction.Transaction, error) {
	return s.list(ctx, vendorID, &party, opts)
}

func (s *Store) ListRecurring(ctx context.Context, vendorID string) ([]*transaction.Transaction, error) {
	var models []transactionModel
	q := s.sdb.NewSelect(&models).Where("is_recurring = 1")
	if vendorID != "" {
		q = q.Where("vendor_id = ?", vendorID)
	}
	if err := q.OrderExpr("transaction_date DESC, id DESC").Scan(ctx); err != nil {
		return nil, err
	}
	return fromModels(models)
}

func (s *Store) AmendMetadata(ctx context.Context, vendorID string, txID id.TransactionID, a transaction.Amendment) error {
	q := s.sdb.NewUpdate((*transactionModel)(nil)).
		Set("updated_at = ?", a.UpdatedAt.UTC())
	if a.Note != nil {
		q = q.Set("note = ?", *a.Note)
	}
	if a.Attachments != nil {
		raw, err := json.Marshal(nonNil(*a.Attachments))
		if err != nil {
			return err
		}
		q = q.Set("attachments = ?", string(raw))
	}

	res, err := q.
		Where("vendor_id = ?", vendorID).
		Where("id = ?", txID.String()).
		Exec(ctx)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return khata.ErrTransactionNotFound
	}
	return nil
}

func (s *Store) list(ctx context.Context, vendorID string, party *transaction.Ref, opts transaction.ListOpts) ([]*transaction.Transaction, error) {
	var models []transactionModel
	q := s.sdb.NewSelect(&models).Where("vendor_id = ?", vendorID)

	if party != nil {
		switch party.Kind {
		case transaction.PartyCustomer:
			q = q.Where("customer_id = ?", party.ID)
		case transaction.PartySupplier:
			q = q.Where("supplier_id = ?", party.ID)
		default:
			q = q.Where("customer_id = '' AND supplier_id = ''")
		}
	}
	if opts.Type != "" {
		q = q.Where("type = ?", string(opts.Type))
	}
	if opts.Category != "" {
		q = q.Where("category = ?", string(opts.Category))
	}
	if opts.PaymentMethod != "" {
		q = q.Where("payment_method = ?", string(opts.PaymentMethod))
	}
	if opts.ReferenceType != "" {
		q = q.Where("reference_type = ?", opts.ReferenceType)
	}
	if opts.ReferenceID != "" {
		q = q.Where("reference_id = ?", opts.ReferenceID)
	}
	if !opts.Start.IsZero() {
		q = q.Where("transaction_date >= ?", opts.Start.UTC())
	}
	if !opts.End.IsZero() {
		q = q.Where("transaction_date <= ?", opts.End.UTC())
	}

	q = q.OrderExpr("transaction_date DESC, id DESC")
	if opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	}
	if opts.Offset > 0 {
		q = q.Offset(opts.Offset)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, err
	}
	return fromModels(models)
}

// ==================== Helpers ====================

func fromModels(models []transactionModel) ([]*transaction.Transaction, error) {
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

// isNoRows checks for the standard sql.ErrNoRows sentinel.
func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
