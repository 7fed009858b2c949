package sqlite

import (
	"context"

	"github.com/xraph/grove/migrate"
)

// Migrations is the grove migration group for the khata store (SQLite).
var Migrations = migrate.NewGroup("khata")

func init() {
	Migrations.MustRegister(
		&migrate.Migration{
			Name:    "create_khata_transactions",
			Version: "20240101000001",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS khata_transactions (
    id                   TEXT PRIMARY KEY,
    vendor_id            TEXT NOT NULL,
    customer_id          TEXT NOT NULL DEFAULT '',
    supplier_id          TEXT NOT NULL DEFAULT '',
    type                 TEXT NOT NULL CHECK (type IN ('in', 'out')),
    amount               INTEGER NOT NULL CHECK (amount > 0),
    currency             TEXT NOT NULL DEFAULT 'inr',
    transaction_date     DATETIME NOT NULL,
    category             TEXT NOT NULL DEFAULT 'other',
    payment_method       TEXT NOT NULL DEFAULT 'cash',
    description          TEXT NOT NULL DEFAULT '',
    note                 TEXT NOT NULL DEFAULT '',
    is_recurring         INTEGER NOT NULL DEFAULT 0,
    recurring_pattern    TEXT NOT NULL DEFAULT '',
    recurring_start_date DATETIME,
    recurring_end_date   DATETIME,
    reference_type       TEXT NOT NULL DEFAULT '',
    reference_id         TEXT NOT NULL DEFAULT '',
    attachments          TEXT NOT NULL DEFAULT '[]',
    exclude_from_balance INTEGER NOT NULL DEFAULT 0,
    is_pos_sale          INTEGER NOT NULL DEFAULT 0,
    idempotency_key      TEXT NOT NULL DEFAULT '',
    status               TEXT NOT NULL DEFAULT 'posted',
    created_at           DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at           DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    CHECK (customer_id = '' OR supplier_id = '')
);

CREATE INDEX IF NOT EXISTS idx_khata_tx_vendor_date ON khata_transactions (vendor_id, transaction_date);
CREATE INDEX IF NOT EXISTS idx_khata_tx_customer ON khata_transactions (vendor_id, customer_id);
CREATE INDEX IF NOT EXISTS idx_khata_tx_supplier ON khata_transactions (vendor_id, supplier_id);
CREATE INDEX IF NOT EXISTS idx_khata_tx_reference ON khata_transactions (vendor_id, reference_type, reference_id);
CREATE INDEX IF NOT EXISTS idx_khata_tx_recurring ON khata_transactions (is_recurring);
CREATE UNIQUE INDEX IF NOT EXISTS idx_khata_tx_idempotency ON khata_transactions (vendor_id, idempotency_key) WHERE idempotency_key != '';
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS khata_transactions`)
				return err
			},
		},
	)
}
