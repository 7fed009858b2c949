package khata

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/xraph/khata/id"
	"github.com/xraph/khata/recurrence"
	"github.com/xraph/khata/transaction"
)

// ──────────────────────────────────────────────────
// Recurrence
// ──────────────────────────────────────────────────

// ExpandRecurring posts the occurrences of a recurring template that are due
// by now and not yet materialized. The template's own date counts as
// materialized. A template that has been reversed or corrected no longer
// recurs and yields nothing. Concurrent callers are safe: each occurrence carries an
// idempotency key, and a sibling that lost the race is skipped.
func (l *Ledger) ExpandRecurring(ctx context.Context, vendorID string, templateID id.TransactionID) ([]*transaction.Transaction, error) {
	tpl, err := l.store.Get(ctx, vendorID, templateID)
	if err != nil {
		return nil, err
	}
	return l.expand(ctx, tpl)
}

// ExpandAll expands every recurring template of every vendor and returns the
// number of occurrences posted. Failures of single templates are collected
// and do not stop the others.
func (l *Ledger) ExpandAll(ctx context.Context) (int, error) {
	_, posted, err := l.expandAll(ctx)
	return posted, err
}

func (l *Ledger) expandAll(ctx context.Context) (templates, posted int, err error) {
	tpls, err := l.store.ListRecurring(ctx, "")
	if err != nil {
		return 0, 0, err
	}

	var errs MultiError
	for _, tpl := range tpls {
		if ctx.Err() != nil {
			errs.Add(ctx.Err())
			break
		}
		occ, expandErr := l.expand(ctx, tpl)
		posted += len(occ)
		if expandErr != nil {
			errs.Add(fmt.Errorf("template %s: %w", tpl.ID, expandErr))
		}
	}
	return len(tpls), posted, errs.ErrOrNil()
}

func (l *Ledger) expand(ctx context.Context, tpl *transaction.Transaction) ([]*transaction.Transaction, error) {
	if !tpl.IsRecurring {
		return nil, ValidationError{Field: "is_recurring", Message: "transaction is not a recurring template"}
	}

	retired, err := l.retired(ctx, tpl)
	if err != nil {
		return nil, err
	}
	if retired {
		return nil, nil
	}

	existing, err := l.store.ListForVendor(ctx, tpl.VendorID, transaction.ListOpts{
		ReferenceType: transaction.ReferenceRecurrence,
		ReferenceID:   tpl.ID.String(),
	})
	if err != nil {
		return nil, err
	}

	now := l.now()
	loc := now.Location()
	seen := recurrence.NewSet(tpl.TransactionDate.In(loc))
	for _, occ := range existing {
		seen.Add(occ.TransactionDate.In(loc))
	}

	dates, err := recurrence.Expand(recurrence.RuleFor(tpl), seen, now, l.maxOccurrences)
	if err != nil {
		return nil, recurrenceError(err)
	}

	var posted []*transaction.Transaction
	for _, d := range dates {
		occ := occurrenceOf(tpl, d)
		if err := l.post(ctx, occ); err != nil {
			if errors.Is(err, ErrDuplicateTransaction) {
				continue
			}
			return posted, err
		}
		posted = append(posted, occ)
	}

	if len(posted) > 0 {
		l.plugins.EmitOccurrencesMaterialized(ctx, tpl, posted)
		l.logger.Debug("occurrences materialized",
			"vendor_id", tpl.VendorID,
			"template_id", tpl.ID.String(),
			"count", len(posted),
		)
	}
	return posted, nil
}

// retired reports whether tpl has been reversed or corrected. A reversed
// template stops recurring; occurrences posted before the reversal stay.
func (l *Ledger) retired(ctx context.Context, tpl *transaction.Transaction) (bool, error) {
	corrections, err := l.store.ListForVendor(ctx, tpl.VendorID, transaction.ListOpts{
		ReferenceType: transaction.ReferenceCorrection,
		ReferenceID:   tpl.ID.String(),
		Limit:         1,
	})
	if err != nil {
		return false, err
	}
	return len(corrections) > 0, nil
}

// occurrenceOf copies the financial fields of a template onto a new entry
// dated d. Occurrences are plain entries; only the template recurs.
func occurrenceOf(tpl *transaction.Transaction, d time.Time) *transaction.Transaction {
	occ := tpl.Clone()
	occ.ID = id.TransactionID{}
	occ.TransactionDate = d
	occ.Status = transaction.StatusPending
	occ.IsRecurring = false
	occ.RecurringPattern = ""
	occ.RecurringStartDate = nil
	occ.RecurringEndDate = nil
	occ.ReferenceType = transaction.ReferenceRecurrence
	occ.ReferenceID = tpl.ID.String()
	occ.IdempotencyKey = fmt.Sprintf("%s:%s:%s", transaction.ReferenceRecurrence, tpl.ID, d.Format(recurrence.DayLayout))
	return occ
}
