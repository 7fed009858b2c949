// Package audithook bridges khata lifecycle events to an audit trail backend.
//
// It defines a local Recorder interface so the package does not import
// an audit system directly. Callers inject a RecorderFunc adapter at
// wiring time.
package audithook

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/xraph/khata/plugin"
	"github.com/xraph/khata/transaction"
)

// Compile-time interface checks.
var (
	_ plugin.Plugin                    = (*Extension)(nil)
	_ plugin.OnTransactionPosted       = (*Extension)(nil)
	_ plugin.OnTransactionAmended      = (*Extension)(nil)
	_ plugin.OnTransactionReversed     = (*Extension)(nil)
	_ plugin.OnEditRejected            = (*Extension)(nil)
	_ plugin.OnOccurrencesMaterialized = (*Extension)(nil)
	_ plugin.OnSweepCompleted          = (*Extension)(nil)
)

// Recorder is the interface that audit backends must implement.
type Recorder interface {
	Record(ctx context.Context, event *AuditEvent) error
}

// AuditEvent is a local representation of an audit event.
type AuditEvent struct {
	Action     string         `json:"action"`
	Resource   string         `json:"resource"`
	Category   string         `json:"category"`
	ResourceID string         `json:"resource_id,omitempty"`
	VendorID   string         `json:"vendor_id,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	Outcome    string         `json:"outcome"`
	Severity   string         `json:"severity"`
	Reason     string         `json:"reason,omitempty"`
}

// RecorderFunc is an adapter to use a plain function as a Recorder.
type RecorderFunc func(ctx context.Context, event *AuditEvent) error

// Record implements Recorder.
func (f RecorderFunc) Record(ctx context.Context, event *AuditEvent) error {
	return f(ctx, event)
}

// Extension bridges khata lifecycle events to an audit trail backend.
type Extension struct {
	recorder Recorder
	enabled  map[string]bool // nil = all enabled
	logger   *slog.Logger
}

// New creates an Extension that emits audit events through the provided Recorder.
func New(r Recorder, opts ...Option) *Extension {
	e := &Extension{
		recorder: r,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Name implements plugin.Plugin.
func (e *Extension) Name() string { return "audit-hook" }

// ──────────────────────────────────────────────────
// Transaction hooks
// ──────────────────────────────────────────────────

// OnTransactionPosted implements plugin.OnTransactionPosted.
func (e *Extension) OnTransactionPosted(ctx context.Context, tx *transaction.Transaction) error {
	return e.record(ctx, ActionTransactionPosted, SeverityInfo, OutcomeSuccess,
		ResourceTransaction, tx, CategoryLedger, "",
		"type", string(tx.Type),
		"amount", tx.Amount.Amount,
		"currency", tx.Amount.Currency,
		"party", tx.Party().String(),
		"reference_type", tx.ReferenceType,
		"reference_id", tx.ReferenceID,
	)
}

// OnTransactionAmended implements plugin.OnTransactionAmended.
func (e *Extension) OnTransactionAmended(ctx context.Context, tx *transaction.Transaction) error {
	return e.record(ctx, ActionTransactionAmended, SeverityInfo, OutcomeSuccess,
		ResourceTransaction, tx, CategoryLedger, "",
		"attachments", len(tx.Attachments),
	)
}

// OnTransactionReversed implements plugin.OnTransactionReversed.
func (e *Extension) OnTransactionReversed(ctx context.Context, original, reversal *transaction.Transaction) error {
	return e.record(ctx, ActionTransactionReversed, SeverityWarning, OutcomeSuccess,
		ResourceTransaction, original, CategoryCorrection, reversal.Note,
		"reversal_id", reversal.ID.String(),
		"amount", original.Amount.Amount,
	)
}

// OnEditRejected implements plugin.OnEditRejected.
func (e *Extension) OnEditRejected(ctx context.Context, tx *transaction.Transaction, field string) error {
	return e.record(ctx, ActionEditRejected, SeverityWarning, OutcomeFailure,
		ResourceTransaction, tx, CategoryCorrection, "immutable field: "+field,
		"field", field,
	)
}

// ──────────────────────────────────────────────────
// Recurrence hooks
// ──────────────────────────────────────────────────

// OnOccurrencesMaterialized implements plugin.OnOccurrencesMaterialized.
func (e *Extension) OnOccurrencesMaterialized(ctx context.Context, template *transaction.Transaction, occurrences []*transaction.Transaction) error {
	ids := make([]string, len(occurrences))
	for i, occ := range occurrences {
		ids[i] = occ.ID.String()
	}
	return e.record(ctx, ActionRecurrenceMaterialized, SeverityInfo, OutcomeSuccess,
		ResourceRecurrence, template, CategoryRecurrence, "",
		"pattern", string(template.RecurringPattern),
		"count", len(occurrences),
		"occurrence_ids", ids,
	)
}

// OnSweepCompleted implements plugin.OnSweepCompleted.
func (e *Extension) OnSweepCompleted(ctx context.Context, templates, posted int, elapsed time.Duration) error {
	return e.record(ctx, ActionRecurrenceSwept, SeverityInfo, OutcomeSuccess,
		ResourceRecurrence, nil, CategoryRecurrence, "",
		"templates", templates,
		"posted", posted,
		"elapsed_ms", elapsed.Milliseconds(),
	)
}

// ──────────────────────────────────────────────────
// Internal helpers
// ──────────────────────────────────────────────────

// record builds and sends an audit event if the action is enabled.
// Recorder failures are logged and swallowed.
func (e *Extension) record(
	ctx context.Context,
	action, severity, outcome string,
	resource string, tx *transaction.Transaction, category string,
	reason string,
	kvPairs ...any,
) error {
	if e.enabled != nil && !e.enabled[action] {
		return nil
	}

	meta := make(map[string]any, len(kvPairs)/2)
	for i := 0; i+1 < len(kvPairs); i += 2 {
		key, ok := kvPairs[i].(string)
		if !ok {
			key = fmt.Sprintf("%v", kvPairs[i])
		}
		meta[key] = kvPairs[i+1]
	}

	evt := &AuditEvent{
		Action:   action,
		Resource: resource,
		Category: category,
		Metadata: meta,
		Outcome:  outcome,
		Severity: severity,
		Reason:   reason,
	}
	if tx != nil {
		evt.ResourceID = tx.ID.String()
		evt.VendorID = tx.VendorID
	}

	if recErr := e.recorder.Record(ctx, evt); recErr != nil {
		e.logger.Warn("audit_hook: failed to record audit event",
			"action", action,
			"resource_id", evt.ResourceID,
			"error", recErr,
		)
	}
	return nil
}
