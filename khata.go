package khata

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/xraph/khata/id"
	"github.com/xraph/khata/plugin"
	"github.com/xraph/khata/store"
	"github.com/xraph/khata/transaction"
	"github.com/xraph/khata/types"
)

// Ledger is the khata engine. Every write goes through its lifecycle guard;
// reads fold store listings into balances and statements.
type Ledger struct {
	store    store.Store
	plugins  *plugin.Registry
	logger   *slog.Logger
	validate *validator.Validate
	resolver PartyResolver

	// Background workers
	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup

	// Configuration
	currency           string
	clock              func() time.Time
	weekStart          time.Weekday
	recurrenceInterval time.Duration
	maxOccurrences     int
	autoMigrate        bool
}

// PartyResolver confirms that a customer or supplier exists for a vendor.
// Party records are owned outside the ledger.
type PartyResolver interface {
	PartyExists(ctx context.Context, vendorID string, party transaction.Ref) (bool, error)
}

// PartyResolverFunc adapts a function to PartyResolver.
type PartyResolverFunc func(ctx context.Context, vendorID string, party transaction.Ref) (bool, error)

// PartyExists implements PartyResolver.
func (f PartyResolverFunc) PartyExists(ctx context.Context, vendorID string, party transaction.Ref) (bool, error) {
	return f(ctx, vendorID, party)
}

// New creates a new Ledger instance.
func New(s store.Store, opts ...Option) *Ledger {
	l := &Ledger{
		store:              s,
		plugins:            plugin.NewRegistry(),
		logger:             slog.Default(),
		validate:           newValidator(),
		stopChan:           make(chan struct{}),
		currency:           types.DefaultCurrency,
		clock:              time.Now,
		weekStart:          time.Sunday,
		recurrenceInterval: time.Hour,
		maxOccurrences:     366,
		autoMigrate:        true,
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// Option configures a Ledger instance.
type Option func(*Ledger)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Ledger) {
		l.logger = logger
		l.plugins.WithLogger(logger)
	}
}

// WithPlugin registers a plugin.
func WithPlugin(p plugin.Plugin) Option {
	return func(l *Ledger) {
		_ = l.plugins.Register(p) //nolint:errcheck // best-effort plugin registration during init
	}
}

// WithCurrency sets the ledger currency. Entries in any other currency are rejected.
func WithCurrency(currency string) Option {
	return func(l *Ledger) {
		if currency != "" {
			l.currency = strings.ToLower(currency)
		}
	}
}

// WithClock overrides the time source. The clock's location decides calendar
// days for recurrence and statement labels.
func WithClock(clock func() time.Time) Option {
	return func(l *Ledger) {
		if clock != nil {
			l.clock = clock
		}
	}
}

// WithWeekStart sets the first day of the statement week.
func WithWeekStart(d time.Weekday) Option {
	return func(l *Ledger) {
		l.weekStart = d
	}
}

// WithRecurrenceInterval sets how often Start's background sweep expands
// recurring templates. Zero disables the sweep.
func WithRecurrenceInterval(d time.Duration) Option {
	return func(l *Ledger) {
		l.recurrenceInterval = d
	}
}

// WithMaxOccurrences caps the occurrences one template expansion may post.
// Zero means no cap.
func WithMaxOccurrences(n int) Option {
	return func(l *Ledger) {
		l.maxOccurrences = n
	}
}

// WithAutoMigrate controls whether Start migrates the store. Enabled by default.
func WithAutoMigrate(enabled bool) Option {
	return func(l *Ledger) {
		l.autoMigrate = enabled
	}
}

// WithPartyResolver makes Create reject entries for unknown parties.
func WithPartyResolver(r PartyResolver) Option {
	return func(l *Ledger) {
		l.resolver = r
	}
}

// Currency returns the ledger currency.
func (l *Ledger) Currency() string { return l.currency }

// Plugins returns the plugin registry.
func (l *Ledger) Plugins() *plugin.Registry { return l.plugins }

// Store returns the underlying store.
func (l *Ledger) Store() store.Store { return l.store }

func (l *Ledger) now() time.Time { return l.clock() }

// Start migrates the store, initializes plugins and begins the recurrence sweep.
func (l *Ledger) Start(ctx context.Context) error {
	if l.autoMigrate {
		if err := l.store.Migrate(ctx); err != nil {
			return err
		}
	}

	l.plugins.EmitInit(ctx, l)

	if l.recurrenceInterval > 0 {
		l.wg.Add(1)
		go l.recurrenceWorker(ctx)
	}

	l.logger.Info("khata started",
		"currency", l.currency,
		"recurrence_interval", l.recurrenceInterval,
		"max_occurrences", l.maxOccurrences,
		"plugins", l.plugins.Count(),
	)

	return nil
}

// Stop shuts down the Ledger. It is safe to call more than once.
func (l *Ledger) Stop() error {
	var err error
	l.stopOnce.Do(func() {
		close(l.stopChan)
		l.wg.Wait()

		ctx := context.Background()
		l.plugins.EmitShutdown(ctx)

		err = l.store.Close()
		l.logger.Info("khata stopped")
	})
	return err
}

// recurrenceWorker periodically materializes due occurrences of every
// recurring template.
func (l *Ledger) recurrenceWorker(ctx context.Context) {
	defer l.wg.Done()

	ticker := time.NewTicker(l.recurrenceInterval)
	defer ticker.Stop()

	for {
		select {
		case <-l.stopChan:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.sweep(ctx)
		}
	}
}

func (l *Ledger) sweep(ctx context.Context) {
	sweepID := id.NewSweepID()
	start := time.Now()

	templates, posted, err := l.expandAll(ctx)
	elapsed := time.Since(start)
	if err != nil {
		l.logger.Error("recurrence sweep failed",
			"sweep_id", sweepID.String(),
			"error", err,
			"templates", templates,
			"posted", posted,
		)
	}

	l.plugins.EmitSweepCompleted(ctx, templates, posted, elapsed)

	l.logger.Debug("recurrence sweep completed",
		"sweep_id", sweepID.String(),
		"templates", templates,
		"posted", posted,
		"elapsed_ms", elapsed.Milliseconds(),
	)
}
