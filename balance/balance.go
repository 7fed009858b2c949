// Package balance derives what a vendor and a party owe each other from the
// party's ledger entries.
//
// One internal convention is used for every party kind:
//
//	Balance = TotalIn - TotalOut
//
// over entries not excluded from the balance. A negative balance means the
// party will pay the vendor ("will get"); a positive balance means the vendor
// will pay the party ("will give"). PartyKind only changes the wording.
package balance

import (
	"strings"

	"github.com/xraph/khata/transaction"
	"github.com/xraph/khata/types"
)

// Summary is the folded view of a party's entries.
type Summary struct {
	TotalIn  types.Money `json:"total_in"`
	TotalOut types.Money `json:"total_out"`
	Balance  types.Money `json:"balance"`

	// Gross totals include excluded entries; they feed statement headers,
	// never the balance.
	TotalReceived types.Money `json:"total_received"`
	TotalGiven    types.Money `json:"total_given"`

	TransactionCount int `json:"transaction_count"`
}

// Position is the direction of a balance.
type Position string

const (
	PositionWillGet  Position = "will_get"
	PositionWillGive Position = "will_give"
	PositionSettled  Position = "settled"
)

// Position reports who owes whom.
func (s Summary) Position() Position {
	switch s.Balance.Sign() {
	case -1:
		return PositionWillGet
	case 1:
		return PositionWillGive
	default:
		return PositionSettled
	}
}

// Summarize folds txs in any order. kind does not change the arithmetic; it
// is accepted so call sites state which ledger they are folding. Entries in
// another currency are counted but never summed.
func Summarize(txs []*transaction.Transaction, kind transaction.PartyKind, currency string) Summary {
	currency = strings.ToLower(currency)
	if currency == "" {
		currency = types.DefaultCurrency
	}

	var in, out, received, given int64
	for _, tx := range txs {
		if tx == nil || !strings.EqualFold(tx.Amount.Currency, currency) {
			continue
		}
		switch tx.Type {
		case transaction.TypeIn:
			received += tx.Amount.Amount
			if !tx.ExcludeFromBalance {
				in += tx.Amount.Amount
			}
		case transaction.TypeOut:
			given += tx.Amount.Amount
			if !tx.ExcludeFromBalance {
				out += tx.Amount.Amount
			}
		}
	}

	return Summary{
		TotalIn:          types.Money{Amount: in, Currency: currency},
		TotalOut:         types.Money{Amount: out, Currency: currency},
		Balance:          types.Money{Amount: in - out, Currency: currency},
		TotalReceived:    types.Money{Amount: received, Currency: currency},
		TotalGiven:       types.Money{Amount: given, Currency: currency},
		TransactionCount: len(txs),
	}
}

// SummarizeByParty groups txs by the party of the given kind and summarizes
// each group. Entries of other kinds are ignored; a general kind yields a
// single entry under the empty key.
func SummarizeByParty(txs []*transaction.Transaction, kind transaction.PartyKind, currency string) map[string]Summary {
	groups := make(map[string][]*transaction.Transaction)
	for _, tx := range txs {
		if tx == nil {
			continue
		}
		ref := tx.Party()
		if ref.Kind != kind {
			continue
		}
		groups[ref.ID] = append(groups[ref.ID], tx)
	}

	out := make(map[string]Summary, len(groups))
	for partyID, group := range groups {
		out[partyID] = Summarize(group, kind, currency)
	}
	return out
}
