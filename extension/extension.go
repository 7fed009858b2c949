// Package extension provides the Forge extension adapter for khata.
//
// It implements the forge.Extension interface to integrate the ledger
// into a Forge application with DI registration and lifecycle management.
//
// Configuration can be provided programmatically via Option functions
// or via YAML configuration files under "extensions.khata" or "khata" keys.
package extension

import (
	"context"
	"errors"

	"github.com/xraph/forge"
	"github.com/xraph/vessel"

	"github.com/xraph/khata"
	"github.com/xraph/khata/store"
	"github.com/xraph/khata/store/memory"
)

// ExtensionName is the name registered with Forge.
const ExtensionName = "khata"

// ExtensionDescription is the human-readable description.
const ExtensionDescription = "Vendor ledger for customer and supplier balances"

// ExtensionVersion is the semantic version.
const ExtensionVersion = "0.1.0"

// Ensure Extension implements forge.Extension at compile time.
var _ forge.Extension = (*Extension)(nil)

// Extension adapts khata as a Forge extension.
type Extension struct {
	*forge.BaseExtension

	config     Config
	engine     *khata.Ledger
	store      store.Store
	ledgerOpts []khata.Option
}

// New creates a new khata Forge extension with the given options.
func New(opts ...Option) *Extension {
	e := &Extension{
		BaseExtension: forge.NewBaseExtension(ExtensionName, ExtensionVersion, ExtensionDescription),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Engine returns the underlying ledger.
// This is nil until Register is called.
func (e *Extension) Engine() *khata.Ledger { return e.engine }

// Config returns the resolved configuration.
func (e *Extension) Config() Config { return e.config }

// Register implements [forge.Extension]. It loads configuration,
// initializes the engine, and registers it in the DI container.
func (e *Extension) Register(fapp forge.App) error {
	if err := e.BaseExtension.Register(fapp); err != nil {
		return err
	}

	if err := e.loadConfiguration(); err != nil {
		return err
	}

	// Use memory store if no store was provided programmatically.
	if e.store == nil {
		e.store = memory.New()
	}

	opts, err := e.buildLedgerOpts()
	if err != nil {
		return err
	}
	e.engine = khata.New(e.store, opts...)

	return vessel.Provide(fapp.Container(), func() (*khata.Ledger, error) {
		return e.engine, nil
	})
}

// Start implements [forge.Extension].
func (e *Extension) Start(ctx context.Context) error {
	if e.engine == nil {
		return errors.New("khata: extension not initialized")
	}
	if err := e.engine.Start(ctx); err != nil {
		return err
	}

	e.MarkStarted()
	return nil
}

// Stop implements [forge.Extension].
func (e *Extension) Stop(_ context.Context) error {
	defer e.MarkStopped()
	if e.engine != nil {
		return e.engine.Stop()
	}
	return nil
}

// Health implements [forge.Extension].
func (e *Extension) Health(ctx context.Context) error {
	if e.store == nil {
		return errors.New("khata: store not initialized")
	}
	return e.store.Ping(ctx)
}

// buildLedgerOpts constructs khata.Option values from the resolved config.
// Pass-through options come last so they win over config.
func (e *Extension) buildLedgerOpts() ([]khata.Option, error) {
	weekStart, err := e.config.Weekday()
	if err != nil {
		return nil, err
	}

	interval := e.config.SweepInterval
	if e.config.DisableSweep {
		interval = 0
	}

	opts := make([]khata.Option, 0, len(e.ledgerOpts)+5)
	opts = append(opts,
		khata.WithCurrency(e.config.Currency),
		khata.WithWeekStart(weekStart),
		khata.WithRecurrenceInterval(interval),
		khata.WithMaxOccurrences(e.config.OccurrenceCap()),
		khata.WithAutoMigrate(!e.config.DisableMigrate),
	)
	opts = append(opts, e.ledgerOpts...)

	return opts, nil
}

// --- Config Loading ---

// loadConfiguration loads config from YAML files or programmatic sources.
func (e *Extension) loadConfiguration() error {
	programmaticConfig := e.config

	fileConfig, configLoaded := e.tryLoadFromConfigFile()

	if !configLoaded {
		if programmaticConfig.RequireConfig {
			return errors.New("khata: configuration is required but not found in config files; " +
				"ensure 'extensions.khata' or 'khata' key exists in your config")
		}
		e.config = mergeWithDefaults(programmaticConfig)
	} else {
		e.config = mergeConfigurations(fileConfig, programmaticConfig)
	}

	e.Logger().Debug("khata: configuration loaded",
		forge.F("disable_migrate", e.config.DisableMigrate),
		forge.F("disable_sweep", e.config.DisableSweep),
		forge.F("currency", e.config.Currency),
		forge.F("week_start", e.config.WeekStart),
		forge.F("sweep_interval", e.config.SweepInterval),
		forge.F("max_occurrences", e.config.MaxOccurrences),
	)

	return nil
}

// tryLoadFromConfigFile attempts to load config from YAML files.
func (e *Extension) tryLoadFromConfigFile() (Config, bool) {
	cm := e.App().Config()
	var cfg Config

	for _, key := range []string{"extensions.khata", "khata"} {
		if !cm.IsSet(key) {
			continue
		}
		if err := cm.Bind(key, &cfg); err != nil {
			e.Logger().Warn("khata: failed to bind config",
				forge.F("key", key),
				forge.F("error", err.Error()),
			)
			continue
		}
		e.Logger().Debug("khata: loaded config from file",
			forge.F("key", key),
		)
		return cfg, true
	}

	return Config{}, false
}

// mergeWithDefaults fills zero-valued fields with defaults.
func mergeWithDefaults(cfg Config) Config {
	defaults := DefaultConfig()
	if cfg.Currency == "" {
		cfg.Currency = defaults.Currency
	}
	if cfg.WeekStart == "" {
		cfg.WeekStart = defaults.WeekStart
	}
	if cfg.SweepInterval == 0 {
		cfg.SweepInterval = defaults.SweepInterval
	}
	if cfg.MaxOccurrences == 0 {
		cfg.MaxOccurrences = defaults.MaxOccurrences
	}
	return cfg
}

// mergeConfigurations merges YAML config with programmatic options.
// YAML takes precedence; programmatic values fill gaps and bool flags
// override when true.
func mergeConfigurations(yamlConfig, programmaticConfig Config) Config {
	if programmaticConfig.DisableMigrate {
		yamlConfig.DisableMigrate = true
	}
	if programmaticConfig.DisableSweep {
		yamlConfig.DisableSweep = true
	}

	if yamlConfig.Currency == "" {
		yamlConfig.Currency = programmaticConfig.Currency
	}
	if yamlConfig.WeekStart == "" {
		yamlConfig.WeekStart = programmaticConfig.WeekStart
	}
	if yamlConfig.SweepInterval == 0 {
		yamlConfig.SweepInterval = programmaticConfig.SweepInterval
	}
	if yamlConfig.MaxOccurrences == 0 {
		yamlConfig.MaxOccurrences = programmaticConfig.MaxOccurrences
	}

	return mergeWithDefaults(yamlConfig)
}
