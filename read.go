package khata

import (
	"context"
	"time"

	"github.com/xraph/khata/balance"
	"github.com/xraph/khata/statement"
	"github.com/xraph/khata/transaction"
)

// ──────────────────────────────────────────────────
// Reads
// ──────────────────────────────────────────────────

// ListForVendor lists a vendor's entries across all parties, newest first.
func (l *Ledger) ListForVendor(ctx context.Context, vendorID string, opts transaction.ListOpts) ([]*transaction.Transaction, error) {
	if vendorID == "" {
		return nil, ValidationError{Field: "vendor_id", Message: "is required"}
	}
	return l.store.ListForVendor(ctx, vendorID, opts)
}

// ListForParty lists one party's entries, newest first.
func (l *Ledger) ListForParty(ctx context.Context, vendorID string, party transaction.Ref, opts transaction.ListOpts) ([]*transaction.Transaction, error) {
	if err := checkRef(vendorID, party); err != nil {
		return nil, err
	}
	return l.store.ListForParty(ctx, vendorID, party, opts)
}

// PartyBalance folds every entry of a party into its balance.
func (l *Ledger) PartyBalance(ctx context.Context, vendorID string, party transaction.Ref) (balance.Summary, error) {
	txs, err := l.ListForParty(ctx, vendorID, party, transaction.ListOpts{})
	if err != nil {
		return balance.Summary{}, err
	}
	return balance.Summarize(txs, party.Kind, l.currency), nil
}

// VendorSummary folds a vendor's entries matching opts. Limit and Offset are
// ignored so the summary always covers the full filtered set.
func (l *Ledger) VendorSummary(ctx context.Context, vendorID string, opts transaction.ListOpts) (balance.Summary, error) {
	opts.Limit, opts.Offset = 0, 0
	txs, err := l.ListForVendor(ctx, vendorID, opts)
	if err != nil {
		return balance.Summary{}, err
	}
	return balance.Summarize(txs, transaction.PartyGeneral, l.currency), nil
}

// PartyBalances returns the summary of every party of kind that has entries.
func (l *Ledger) PartyBalances(ctx context.Context, vendorID string, kind transaction.PartyKind) (map[string]balance.Summary, error) {
	txs, err := l.ListForVendor(ctx, vendorID, transaction.ListOpts{})
	if err != nil {
		return nil, err
	}
	return balance.SummarizeByParty(txs, kind, l.currency), nil
}

// PartyStatement builds a party's statement: summary plus newest-first date
// buckets relative to now. A zero now uses the ledger clock.
func (l *Ledger) PartyStatement(ctx context.Context, vendorID string, party transaction.Ref, now time.Time) (*statement.Statement, error) {
	if now.IsZero() {
		now = l.now()
	}

	txs, err := l.ListForParty(ctx, vendorID, party, transaction.ListOpts{})
	if err != nil {
		return nil, err
	}
	statement.SortDesc(txs)

	return &statement.Statement{
		Party:   party,
		Summary: balance.Summarize(txs, party.Kind, l.currency),
		Buckets: statement.Group(txs, now, statement.WithWeekStart(l.weekStart)),
	}, nil
}

func checkRef(vendorID string, party transaction.Ref) error {
	if vendorID == "" {
		return ValidationError{Field: "vendor_id", Message: "is required"}
	}
	switch party.Kind {
	case transaction.PartyCustomer, transaction.PartySupplier:
		if party.ID == "" {
			return ValidationError{Field: "party", Message: "id is required for " + string(party.Kind)}
		}
	case transaction.PartyGeneral:
	default:
		return ValidationError{Field: "party", Message: "unknown party kind " + string(party.Kind)}
	}
	return nil
}
