package audithook

// Action constants for audit events.
const (
	// Transaction actions
	ActionTransactionPosted   = "transaction.posted"
	ActionTransactionAmended  = "transaction.amended"
	ActionTransactionReversed = "transaction.reversed"
	ActionEditRejected        = "transaction.edit_rejected"

	// Recurrence actions
	ActionRecurrenceMaterialized = "recurrence.materialized"
	ActionRecurrenceSwept        = "recurrence.swept"
)

// Resource constants for audit events.
const (
	ResourceTransaction = "transaction"
	ResourceRecurrence  = "recurrence"
)

// Category constants for audit events.
const (
	CategoryLedger     = "ledger"
	CategoryCorrection = "correction"
	CategoryRecurrence = "recurrence"
)

// Severity levels for audit events.
const (
	SeverityInfo    = "info"
	SeverityWarning = "warning"
)

// Outcome values for audit events.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)
