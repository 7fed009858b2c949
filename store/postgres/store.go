package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/pgdriver"
	"github.com/xraph/grove/migrate"

	"github.com/xraph/khata"
	"github.com/xraph/khata/id"
	khatastore "github.com/xraph/khata/store"
	"github.com/xraph/khata/transaction"
)

// compile-time interface check
var _ khatastore.Store = (*Store)(nil)

// Store implements store.Store using PostgreSQL via Grove ORM.
type Store struct {
	db *grove.DB
	pg *pgdriver.PgDB
}

// New creates a new PostgreSQL store backed by Grove ORM.
func New(db *grove.DB) *Store {
	return &Store{
		db: db,
		pg: pgdriver.Unwrap(db),
	}
}

// DB returns the underlying grove database for direct access.
func (s *Store) DB() *grove.DB { return s.db }

// Migrate creates the required tables and indexes using the grove orchestrator.
func (s *Store) Migrate(ctx context.Context) error {
	executor, err := migrate.NewExecutorFor(s.pg)
	if err != nil {
		return fmt.Errorf("khata/postgres: create migration executor: %w", err)
	}
	orch := migrate.NewOrchestrator(executor, Migrations)
	if _, err := orch.Migrate(ctx); err != nil {
		return fmt.Errorf("%w: khata/postgres: %w", khata.ErrMigrationFailed, err)
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

// Append inserts tx. A clash on the primary key or on the vendor's
// idempotency index inserts nothing; the two are told apart afterwards.
func (s *Store) Append(ctx context.Context, tx *transaction.Transaction) error {
	m := toTransactionModel(tx)
	res, err := s.pg.NewInsert(m).
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
	err = s.pg.NewRaw(`SELECT COUNT(*) FROM khata_transactions WHERE id = $1`, m.ID).Scan(ctx, &n)
	if err != nil {
		return err
	}
	if n > 0 {
		return khata.ErrAlreadyExists
	}
	return khata.ErrDuplicateTransaction
}

func (s *Store) Get(ctx context.Context, vendorID string, txID id.TransactionID) (*transaction.Transaction, error) {
	m := new(transactionModel)
	err := s.pg.NewSelect(m).
		Where("vendor_id = $1", vendorID).
		Where("id = $2", txID.String()).
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
	q := s.pg.NewSelect(&models).Where("is_recurring = TRUE")
	if vendorID != "" {
		q = q.Where("vendor_id = $1", vendorID)
	}
	if err := q.OrderExpr("transaction_date DESC, id DESC").Scan(ctx); err != nil {
		return nil, err
	}
	return fromModels(models)
}

func (s *Store) AmendMetadata(ctx context.Context, vendorID string, txID id.TransactionID, a transaction.Amendment) error {
	q := s.pg.NewUpdate((*transactionModel)(nil)).
		Set("updated_at = $1", a.UpdatedAt.UTC())

	argIdx := 1
	if a.Note != nil {
		argIdx++
		q = q.Set(fmt.Sprintf("note = $%d", argIdx), *a.Note)
	}
	if a.Attachments != nil {
		raw, err := json.Marshal(nonNil(*a.Attachments))
		if err != nil {
			return err
		}
		argIdx++
		q = q.Set(fmt.Sprintf("attachments = $%d", argIdx), raw)
	}

	res, err := q.
		Where(fmt.Sprintf("vendor_id = $%d", argIdx+1), vendorID).
		Where(fmt.Sprintf("id = $%d", argIdx+2), txID.String()).
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
	q := s.pg.NewSelect(&models).Where("vendor_id = $1", vendorID)

	for _, c := range conditions(party, opts, 2) {
		q = q.Where(c.expr, c.args...)
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

type condition struct {
	expr string
	args []any
}

// conditions translates a party and list filter into numbered WHERE
// fragments, starting at placeholder $start.
func conditions(party *transaction.Ref, opts transaction.ListOpts, start int) []condition {
	var conds []condition
	argIdx := start - 1
	add := func(col string, v any) {
		argIdx++
		conds = append(conds, condition{expr: fmt.Sprintf("%s = $%d", col, argIdx), args: []any{v}})
	}

	if party != nil {
		switch party.Kind {
		case transaction.PartyCustomer:
			add("customer_id", party.ID)
		case transaction.PartySupplier:
			add("supplier_id", party.ID)
		default:
			conds = append(conds, condition{expr: "customer_id = '' AND supplier_id = ''"})
		}
	}
	if opts.Type != "" {
		add("type", string(opts.Type))
	}
	if opts.Category != "" {
		add("category", string(opts.Category))
	}
	if opts.PaymentMethod != "" {
		add("payment_method", string(opts.PaymentMethod))
	}
	if opts.ReferenceType != "" {
		add("reference_type", opts.ReferenceType)
	}
	if opts.ReferenceID != "" {
		add("reference_id", opts.ReferenceID)
	}
	if !opts.Start.IsZero() {
		argIdx++
		conds = append(conds, condition{expr: fmt.Sprintf("transaction_date >= $%d", argIdx), args: []any{opts.Start.UTC()}})
	}
	if !opts.End.IsZero() {
		argIdx++
		conds = append(conds, condition{expr: fmt.Sprintf("transaction_date <= $%d", argIdx), args: []any{opts.End.UTC()}})
	}
	return conds
}

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
