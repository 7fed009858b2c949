// Package observability provides a metrics extension for khata that records
// lifecycle event counts through a MetricFactory.
package observability

import (
	"context"
	"time"

	"github.com/xraph/khata/plugin"
	"github.com/xraph/khata/transaction"
)

// Ensure MetricsExtension implements required interfaces.
var (
	_ plugin.Plugin                    = (*MetricsExtension)(nil)
	_ plugin.OnInit                    = (*MetricsExtension)(nil)
	_ plugin.OnTransactionPosted       = (*MetricsExtension)(nil)
	_ plugin.OnTransactionAmended      = (*MetricsExtension)(nil)
	_ plugin.OnTransactionReversed     = (*MetricsExtension)(nil)
	_ plugin.OnEditRejected            = (*MetricsExtension)(nil)
	_ plugin.OnOccurrencesMaterialized = (*MetricsExtension)(nil)
	_ plugin.OnSweepCompleted          = (*MetricsExtension)(nil)
)

// Counter interface for metric counters.
type Counter interface {
	Inc()
	Add(float64)
}

// Histogram interface for metric histograms.
type Histogram interface {
	Observe(float64)
}

// MetricFactory creates metrics.
type MetricFactory interface {
	Counter(name string) Counter
	Histogram(name string) Histogram
}

// MetricsExtension records system-wide lifecycle metrics.
// Register it as a khata plugin to track ledger activity.
type MetricsExtension struct {
	factory MetricFactory

	// Transaction metrics
	TransactionsPosted Counter
	EntriesIn          Counter
	EntriesOut         Counter
	POSEntries         Counter
	ExcludedEntries    Counter
	PostedAmount       Histogram

	// Lifecycle metrics
	TransactionsAmended  Counter
	TransactionsReversed Counter
	EditsRejected        Counter

	// Recurrence metrics
	OccurrencesMaterialized Counter
	SweepsCompleted         Counter
	SweepTemplates          Histogram
	SweepLatency            Histogram
}

// NewMetricsExtension creates a MetricsExtension with the provided MetricFactory.
func NewMetricsExtension(factory MetricFactory) *MetricsExtension {
	return &MetricsExtension{
		factory: factory,

		TransactionsPosted: factory.Counter("khata.transaction.posted"),
		EntriesIn:          factory.Counter("khata.transaction.in"),
		EntriesOut:         factory.Counter("khata.transaction.out"),
		POSEntries:         factory.Counter("khata.transaction.pos"),
		ExcludedEntries:    factory.Counter("khata.transaction.excluded"),
		PostedAmount:       factory.Histogram("khata.transaction.amount_minor"),

		TransactionsAmended:  factory.Counter("khata.transaction.amended"),
		TransactionsReversed: factory.Counter("khata.transaction.reversed"),
		EditsRejected:        factory.Counter("khata.transaction.edit_rejected"),

		OccurrencesMaterialized: factory.Counter("khata.recurrence.occurrences"),
		SweepsCompleted:         factory.Counter("khata.recurrence.sweeps"),
		SweepTemplates:          factory.Histogram("khata.recurrence.sweep.templates"),
		SweepLatency:            factory.Histogram("khata.recurrence.sweep.latency_ms"),
	}
}

// Name implements plugin.Plugin.
func (m *MetricsExtension) Name() string { return "observability-metrics" }

// OnInit implements plugin.OnInit.
func (m *MetricsExtension) OnInit(_ context.Context, _ interface{}) error {
	return nil
}

// ──────────────────────────────────────────────────
// Transaction hooks
// ──────────────────────────────────────────────────

// OnTransactionPosted implements plugin.OnTransactionPosted.
func (m *MetricsExtension) OnTransactionPosted(_ context.Context, tx *transaction.Transaction) error {
	m.TransactionsPosted.Inc()
	if tx.Type == transaction.TypeIn {
		m.EntriesIn.Inc()
	} else {
		m.EntriesOut.Inc()
	}
	if tx.IsPOSSale {
		m.POSEntries.Inc()
	}
	if tx.ExcludeFromBalance {
		m.ExcludedEntries.Inc()
	}
	m.PostedAmount.Observe(float64(tx.Amount.Amount))
	return nil
}

// OnTransactionAmended implements plugin.OnTransactionAmended.
func (m *MetricsExtension) OnTransactionAmended(_ context.Context, _ *transaction.Transaction) error {
	m.TransactionsAmended.Inc()
	return nil
}

// OnTransactionReversed implements plugin.OnTransactionReversed.
func (m *MetricsExtension) OnTransactionReversed(_ context.Context, _, _ *transaction.Transaction) error {
	m.TransactionsReversed.Inc()
	return nil
}

// OnEditRejected implements plugin.OnEditRejected.
func (m *MetricsExtension) OnEditRejected(_ context.Context, _ *transaction.Transaction, _ string) error {
	m.EditsRejected.Inc()
	return nil
}

// ──────────────────────────────────────────────────
// Recurrence hooks
// ──────────────────────────────────────────────────

// OnOccurrencesMaterialized implements plugin.OnOccurrencesMaterialized.
func (m *MetricsExtension) OnOccurrencesMaterialized(_ context.Context, _ *transaction.Transaction, occurrences []*transaction.Transaction) error {
	m.OccurrencesMaterialized.Add(float64(len(occurrences)))
	return nil
}

// OnSweepCompleted implements plugin.OnSweepCompleted.
func (m *MetricsExtension) OnSweepCompleted(_ context.Context, templates, _ int, elapsed time.Duration) error {
	m.SweepsCompleted.Inc()
	m.SweepTemplates.Observe(float64(templates))
	m.SweepLatency.Observe(float64(elapsed.Milliseconds()))
	return nil
}
