// Package store defines the composite persistence interface khata runs on.
package store

import (
	"context"

	"github.com/xraph/khata/transaction"
)

// Store is the unified storage interface for khata. Backends live in the
// memory, postgres, sqlite and mongo sub-packages.
type Store interface {
	transaction.Store

	// Core methods
	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}
