package khata

import "github.com/xraph/khata/id"

// ID is the primary identifier type for all khata entities.
type ID = id.ID

// Prefix identifies the entity type encoded in a TypeID.
type Prefix = id.Prefix

// TransactionID identifies a ledger entry.
type TransactionID = id.TransactionID
