// Package plugin provides an extensible plugin system for khata.
// Plugins hook into ledger lifecycle events; hook errors are logged by the
// registry and never fail the ledger operation that triggered them.
package plugin

import (
	"context"
	"time"

	"github.com/xraph/khata/transaction"
)

// Plugin is the base interface that all plugins must implement.
type Plugin interface {
	Name() string
}

// ──────────────────────────────────────────────────
// Lifecycle hooks
// ──────────────────────────────────────────────────

// OnInit is called when the ledger starts. l is the *khata.Ledger.
type OnInit interface {
	Plugin
	OnInit(ctx context.Context, l interface{}) error
}

// OnShutdown is called when the ledger stops.
type OnShutdown interface {
	Plugin
	OnShutdown(ctx context.Context) error
}

// ──────────────────────────────────────────────────
// Transaction hooks
// ──────────────────────────────────────────────────

// OnTransactionPosted is called after an entry is persisted.
type OnTransactionPosted interface {
	Plugin
	OnTransactionPosted(ctx context.Context, tx *transaction.Transaction) error
}

// OnTransactionAmended is called after a note or attachment change.
type OnTransactionAmended interface {
	Plugin
	OnTransactionAmended(ctx context.Context, tx *transaction.Transaction) error
}

// OnTransactionReversed is called after a correction entry offsets original.
type OnTransactionReversed interface {
	Plugin
	OnTransactionReversed(ctx context.Context, original, reversal *transaction.Transaction) error
}

// OnEditRejected is called when an edit touches an immutable field.
type OnEditRejected interface {
	Plugin
	OnEditRejected(ctx context.Context, tx *transaction.Transaction, field string) error
}

// ──────────────────────────────────────────────────
// Recurrence hooks
// ──────────────────────────────────────────────────

// OnOccurrencesMaterialized is called after a template expansion posts entries.
type OnOccurrencesMaterialized interface {
	Plugin
	OnOccurrencesMaterialized(ctx context.Context, template *transaction.Transaction, occurrences []*transaction.Transaction) error
}

// OnSweepCompleted is called after each background recurrence sweep.
type OnSweepCompleted interface {
	Plugin
	OnSweepCompleted(ctx context.Context, templates, posted int, elapsed time.Duration) error
}
