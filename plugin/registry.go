package plugin

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"sync"
	"time"

	"github.com/xraph/khata/transaction"
)

// DefaultHookTimeout bounds a single hook call.
const DefaultHookTimeout = 5 * time.Second

// Registry manages all registered plugins and provides efficient dispatch.
// It uses type-cached discovery so emitting an event only walks the plugins
// that implement its hook.
type Registry struct {
	mu      sync.RWMutex
	plugins []Plugin
	logger  *slog.Logger
	timeout time.Duration

	// Type-cached plugin lists for efficient dispatch
	onInit                    []OnInit
	onShutdown                []OnShutdown
	onTransactionPosted       []OnTransactionPosted
	onTransactionAmended      []OnTransactionAmended
	onTransactionReversed     []OnTransactionReversed
	onEditRejected            []OnEditRejected
	onOccurrencesMaterialized []OnOccurrencesMaterialized
	onSweepCompleted          []OnSweepCompleted
}

// NewRegistry creates a new plugin registry.
func NewRegistry() *Registry {
	return &Registry{
		logger:  slog.Default(),
		timeout: DefaultHookTimeout,
	}
}

// WithLogger sets the logger for the registry.
func (r *Registry) WithLogger(logger *slog.Logger) *Registry {
	r.logger = logger
	return r
}

// WithTimeout sets the per-hook timeout. Non-positive values are ignored.
func (r *Registry) WithTimeout(d time.Duration) *Registry {
	if d > 0 {
		r.timeout = d
	}
	return r
}

// Register adds a plugin to the registry and caches its interfaces.
func (r *Registry) Register(p Plugin) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.plugins {
		if existing.Name() == p.Name() {
			return fmt.Errorf("plugin: duplicate registration: %s", p.Name())
		}
	}

	r.plugins = append(r.plugins, p)

	if v, ok := p.(OnInit); ok {
		r.onInit = append(r.onInit, v)
	}
	if v, ok := p.(OnShutdown); ok {
		r.onShutdown = append(r.onShutdown, v)
	}
	if v, ok := p.(OnTransactionPosted); ok {
		r.onTransactionPosted = append(r.onTransactionPosted, v)
	}
	if v, ok := p.(OnTransactionAmended); ok {
		r.onTransactionAmended = append(r.onTransactionAmended, v)
	}
	if v, ok := p.(OnTransactionReversed); ok {
		r.onTransactionReversed = append(r.onTransactionReversed, v)
	}
	if v, ok := p.(OnEditRejected); ok {
		r.onEditRejected = append(r.onEditRejected, v)
	}
	if v, ok := p.(OnOccurrencesMaterialized); ok {
		r.onOccurrencesMaterialized = append(r.onOccurrencesMaterialized, v)
	}
	if v, ok := p.(OnSweepCompleted); ok {
		r.onSweepCompleted = append(r.onSweepCompleted, v)
	}

	r.logger.Info("plugin registered",
		"name", p.Name(),
		"interfaces", getImplementedInterfaces(p),
	)

	return nil
}

// getImplementedInterfaces returns the hook names implemented by the plugin.
func getImplementedInterfaces(p Plugin) []string {
	var interfaces []string
	v := reflect.TypeOf(p)

	checkInterface := func(iface reflect.Type, name string) {
		if v.Implements(iface) {
			interfaces = append(interfaces, name)
		}
	}

	checkInterface(reflect.TypeOf((*OnInit)(nil)).Elem(), "OnInit")
	checkInterface(reflect.TypeOf((*OnShutdown)(nil)).Elem(), "OnShutdown")
	checkInterface(reflect.TypeOf((*OnTransactionPosted)(nil)).Elem(), "OnTransactionPosted")
	checkInterface(reflect.TypeOf((*OnTransactionAmended)(nil)).Elem(), "OnTransactionAmended")
	checkInterface(reflect.TypeOf((*OnTransactionReversed)(nil)).Elem(), "OnTransactionReversed")
	checkInterface(reflect.TypeOf((*OnEditRejected)(nil)).Elem(), "OnEditRejected")
	checkInterface(reflect.TypeOf((*OnOccurrencesMaterialized)(nil)).Elem(), "OnOccurrencesMaterialized")
	checkInterface(reflect.TypeOf((*OnSweepCompleted)(nil)).Elem(), "OnSweepCompleted")

	return interfaces
}

// Get returns a plugin by name.
func (r *Registry) Get(name string) Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.plugins {
		if p.Name() == name {
			return p
		}
	}
	return nil
}

// List returns all registered plugins.
func (r *Registry) List() []Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Plugin, len(r.plugins))
	copy(result, r.plugins)
	return result
}

// Count returns the number of registered plugins.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.plugins)
}

// ──────────────────────────────────────────────────
// Event emission methods
// ──────────────────────────────────────────────────

// EmitInit calls OnInit for all plugins that implement it.
func (r *Registry) EmitInit(ctx context.Context, khata interface{}) {
	r.mu.RLock()
	plugins := r.onInit
	r.mu.RUnlock()

	for _, p := range plugins {
		r.dispatch(ctx, "OnInit", p.Name(), func() error {
			return p.OnInit(ctx, khata)
		})
	}
}

// EmitShutdown calls OnShutdown for all plugins that implement it.
func (r *Registry) EmitShutdown(ctx context.Context) {
	r.mu.RLock()
	plugins := r.onShutdown
	r.mu.RUnlock()

	for _, p := range plugins {
		r.dispatch(ctx, "OnShutdown", p.Name(), func() error {
			return p.OnShutdown(ctx)
		})
	}
}

// EmitTransactionPosted emits a transaction posted event.
func (r *Registry) EmitTransactionPosted(ctx context.Context, tx *transaction.Transaction) {
	r.mu.RLock()
	plugins := r.onTransactionPosted
	r.mu.RUnlock()

	for _, p := range plugins {
		r.dispatch(ctx, "OnTransactionPosted", p.Name(), func() error {
			return p.OnTransactionPosted(ctx, tx)
		})
	}
}

// EmitTransactionAmended emits a transaction amended event.
func (r *Registry) EmitTransactionAmended(ctx context.Context, tx *transaction.Transaction) {
	r.mu.RLock()
	plugins := r.onTransactionAmended
	r.mu.RUnlock()

	for _, p := range plugins {
		r.dispatch(ctx, "OnTransactionAmended", p.Name(), func() error {
			return p.OnTransactionAmended(ctx, tx)
		})
	}
}

// EmitTransactionReversed emits a transaction reversed event.
func (r *Registry) EmitTransactionReversed(ctx context.Context, original, reversal *transaction.Transaction) {
	r.mu.RLock()
	plugins := r.onTransactionReversed
	r.mu.RUnlock()

	for _, p := range plugins {
		r.dispatch(ctx, "OnTransactionReversed", p.Name(), func() error {
			return p.OnTransactionReversed(ctx, original, reversal)
		})
	}
}

// EmitEditRejected emits an edit rejected event.
func (r *Registry) EmitEditRejected(ctx context.Context, tx *transaction.Transaction, field string) {
	r.mu.RLock()
	plugins := r.onEditRejected
	r.mu.RUnlock()

	for _, p := range plugins {
		r.dispatch(ctx, "OnEditRejected", p.Name(), func() error {
			return p.OnEditRejected(ctx, tx, field)
		})
	}
}

// EmitOccurrencesMaterialized emits an occurrences materialized event.
func (r *Registry) EmitOccurrencesMaterialized(ctx context.Context, template *transaction.Transaction, occurrences []*transaction.Transaction) {
	r.mu.RLock()
	plugins := r.onOccurrencesMaterialized
	r.mu.RUnlock()

	for _, p := range plugins {
		r.dispatch(ctx, "OnOccurrencesMaterialized", p.Name(), func() error {
			return p.OnOccurrencesMaterialized(ctx, template, occurrences)
		})
	}
}

// EmitSweepCompleted emits a sweep completed event.
func (r *Registry) EmitSweepCompleted(ctx context.Context, templates, posted int, elapsed time.Duration) {
	r.mu.RLock()
	plugins := r.onSweepCompleted
	r.mu.RUnlock()

	for _, p := range plugins {
		r.dispatch(ctx, "OnSweepCompleted", p.Name(), func() error {
			return p.OnSweepCompleted(ctx, templates, posted, elapsed)
		})
	}
}

func (r *Registry) dispatch(ctx context.Context, hook, pluginName string, fn func() error) {
	if err := r.callWithTimeout(ctx, pluginName, fn); err != nil {
		r.logger.Warn("plugin "+hook+" failed",
			"plugin", pluginName,
			"error", err,
		)
	}
}

// callWithTimeout calls a plugin function with a timeout.
// Plugins should never block the ledger.
func (r *Registry) callWithTimeout(ctx context.Context, pluginName string, fn func() error) error {
	done := make(chan error, 1)

	go func() {
		done <- fn()
	}()

	timer := time.NewTimer(r.timeout)
	defer timer.Stop()

	select {
	case err := <-done:
		return err
	case <-timer.C:
		return fmt.Errorf("plugin timeout: %s", pluginName)
	case <-ctx.Done():
		return ctx.Err()
	}
}
