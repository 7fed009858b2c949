package balance

import (
	"fmt"

	"github.com/xraph/khata/transaction"
)

// Describe renders the balance the way a statement header shows it.
func Describe(kind transaction.PartyKind, s Summary) string {
	amount := s.Balance.Abs().String()

	switch s.Position() {
	case PositionWillGet:
		switch kind {
		case transaction.PartyCustomer:
			return fmt.Sprintf("customer will pay you %s", amount)
		case transaction.PartySupplier:
			return fmt.Sprintf("supplier will pay you %s", amount)
		default:
			return fmt.Sprintf("you will get %s", amount)
		}
	case PositionWillGive:
		switch kind {
		case transaction.PartyCustomer:
			return fmt.Sprintf("you will pay customer %s", amount)
		case transaction.PartySupplier:
			return fmt.Sprintf("you will pay supplier %s", amount)
		default:
			return fmt.Sprintf("you will give %s", amount)
		}
	default:
		return "settled"
	}
}

// PositionLabel is the short badge shown next to a balance.
func PositionLabel(p Position) string {
	switch p {
	case PositionWillGet:
		return "You will GET"
	case PositionWillGive:
		return "You will GIVE"
	default:
		return "Settled"
	}
}

// TypeLabel names an entry type from the vendor's point of view for a party kind.
func TypeLabel(kind transaction.PartyKind, t transaction.Type) string {
	switch kind {
	case transaction.PartyCustomer:
		if t == transaction.TypeIn {
			return "You Got"
		}
		return "You Gave"
	case transaction.PartySupplier:
		if t == transaction.TypeIn {
			return "Goods Received"
		}
		return "Payment Made"
	default:
		if t == transaction.TypeIn {
			return "Money In"
		}
		return "Money Out"
	}
}
