package extension

import (
	"time"

	"github.com/xraph/grove"

	"github.com/xraph/khata"
	"github.com/xraph/khata/plugin"
	"github.com/xraph/khata/store"
	"github.com/xraph/khata/store/mongo"
	"github.com/xraph/khata/store/postgres"
	"github.com/xraph/khata/store/sqlite"
)

// Option configures the khata Forge extension.
type Option func(*Extension)

// WithStore sets the store for the khata engine.
func WithStore(s store.Store) Option {
	return func(e *Extension) {
		e.store = s
	}
}

// WithPostgres backs the engine with a PostgreSQL grove database.
func WithPostgres(db *grove.DB) Option {
	return WithStore(postgres.New(db))
}

// WithSQLite backs the engine with a SQLite grove database.
func WithSQLite(db *grove.DB) Option {
	return WithStore(sqlite.New(db))
}

// WithMongo backs the engine with a MongoDB grove database.
func WithMongo(db *grove.DB) Option {
	return WithStore(mongo.New(db))
}

// WithLedgerOption passes a khata.Option through to the underlying engine.
func WithLedgerOption(opt khata.Option) Option {
	return func(e *Extension) {
		e.ledgerOpts = append(e.ledgerOpts, opt)
	}
}

// WithPlugin registers a khata plugin.
func WithPlugin(p plugin.Plugin) Option {
	return func(e *Extension) {
		e.ledgerOpts = append(e.ledgerOpts, khata.WithPlugin(p))
	}
}

// WithConfig sets the Forge extension configuration.
func WithConfig(cfg Config) Option {
	return func(e *Extension) { e.config = cfg }
}

// WithDisableMigrate prevents auto-migration on start.
func WithDisableMigrate() Option {
	return func(e *Extension) { e.config.DisableMigrate = true }
}

// WithDisableSweep turns off the background recurrence sweep.
func WithDisableSweep() Option {
	return func(e *Extension) { e.config.DisableSweep = true }
}

// WithCurrency sets the ledger currency.
func WithCurrency(currency string) Option {
	return func(e *Extension) { e.config.Currency = currency }
}

// WithWeekStart sets the first day of the statement week.
func WithWeekStart(d time.Weekday) Option {
	return func(e *Extension) { e.config.WeekStart = d.String() }
}

// WithSweepInterval sets how often recurring templates are expanded.
func WithSweepInterval(d time.Duration) Option {
	return func(e *Extension) { e.config.SweepInterval = d }
}

// WithMaxOccurrences caps the occurrences one template expansion may post.
// A negative n removes the cap.
func WithMaxOccurrences(n int) Option {
	return func(e *Extension) { e.config.MaxOccurrences = n }
}

// WithRequireConfig requires config to be present in YAML files.
// If true and no config is found, Register returns an error.
func WithRequireConfig(require bool) Option {
	return func(e *Extension) { e.config.RequireConfig = require }
}
