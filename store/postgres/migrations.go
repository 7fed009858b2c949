package postgres

import (
	"context"

	"github.com/xraph/grove/migrate"
)

// Migrations is the grove migration group for the khata store.
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
    amount               BIGINT NOT NULL CHECK (amount > 0),
    currency             TEXT NOT NULL DEFAULT 'inr',
    transaction_date     TIMESTAMPTZ NOT NULL,
    category             TEXT NOT NULL DEFAULT 'other',
    payment_method       TEXT NOT NULL DEFAULT 'cash',
    description          TEXT NOT NULL DEFAULT '',
    note                 TEXT NOT NULL DEFAULT '',
    is_recurring         BOOLEAN NOT NULL DEFAULT FALSE,
    recurring_pattern    TEXT NOT NULL DEFAULT '',
    recurring_start_date TIMESTAMPTZ,
    recurring_end_date   TIMESTAMPTZ,
    reference_type       TEXT NOT NULL DEFAULT '',
    reference_id         TEXT NOT NULL DEFAULT '',
    attachments          JSONB NOT NULL DEFAULT '[]',
    exclude_from_balance BOOLEAN NOT NULL DEFAULT FALSE,
    is_pos_sale          BOOLEAN NOT NULL DEFAULT FALSE,
    idempotency_key      TEXT NOT NULL DEFAULT '',
    status               TEXT NOT NULL DEFAULT 'posted',
    created_at           TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at           TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    CHECK (customer_id = '' OR supplier_id = '')
);

CREATE INDEX IF NOT EXISTS idx_khata_tx_vendor_date ON khata_transactions (vendor_id, transaction_date DESC);
CREATE INDEX IF NOT EXISTS idx_khata_tx_customer ON khata_transactions (vendor_id, customer_id) WHERE customer_id != '';
CREATE INDEX IF NOT EXISTS idx_khata_tx_supplier ON khata_transactions (vendor_id, supplier_id) WHERE supplier_id != '';
CREATE INDEX IF NOT EXISTS idx_khata_tx_reference ON khata_transactions (vendor_id, reference_type, reference_id);
CREATE INDEX IF NOT EXISTS idx_khata_tx_recurring ON khata_transactions (vendor_id) WHERE is_recurring;
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
