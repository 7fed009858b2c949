package khata

import (
	"github.com/xraph/khata/balance"
	"github.com/xraph/khata/statement"
	"github.com/xraph/khata/transaction"
	"github.com/xraph/khata/types"
)

// Re-export common types so callers of the engine rarely need the leaf packages.

type (
	Money       = types.Money
	Entity      = types.Entity
	Transaction = transaction.Transaction
	Ref         = transaction.Ref
	PartyKind   = transaction.PartyKind
	ListOpts    = transaction.ListOpts
	Summary     = balance.Summary
	Statement   = statement.Statement
	Bucket      = statement.Bucket
)

// Re-export Money constructors
var (
	INR  = types.INR
	USD  = types.USD
	EUR  = types.EUR
	JPY  = types.JPY
	Zero = types.Zero
)

// Re-export party constructors
var (
	Customer = transaction.Customer
	Supplier = transaction.Supplier
	General  = transaction.General
)
