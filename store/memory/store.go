// Package memory is an in-process khata store for tests and single-node use.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/xraph/khata"
	"github.com/xraph/khata/id"
	khatastore "github.com/xraph/khata/store"
	"github.com/xraph/khata/transaction"
)

// compile-time interface check
var _ khatastore.Store = (*Store)(nil)

// Store keeps entries in maps guarded by a single lock. Entries are cloned
// on the way in and out so callers never share memory with the store.
type Store struct {
	mu sync.RWMutex

	// Entries keyed by vendor then transaction id
	txs map[string]map[string]*transaction.Transaction

	// Idempotency index keyed by vendor then key
	keys map[string]map[string]string

	closed bool
}

// New returns an empty memory store.
func New() *Store {
	return &Store{
		txs:  make(map[string]map[string]*transaction.Transaction),
		keys: make(map[string]map[string]string),
	}
}

func (s *Store) Append(_ context.Context, tx *transaction.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return khata.ErrStoreClosed
	}

	vendor := s.txs[tx.VendorID]
	if vendor == nil {
		vendor = make(map[string]*transaction.Transaction)
		s.txs[tx.VendorID] = vendor
	}
	if _, exists := vendor[tx.ID.String()]; exists {
		return khata.ErrAlreadyExists
	}

	if tx.IdempotencyKey != "" {
		keys := s.keys[tx.VendorID]
		if keys == nil {
			keys = make(map[string]string)
			s.keys[tx.VendorID] = keys
		}
		if _, dup := keys[tx.IdempotencyKey]; dup {
			return khata.ErrDuplicateTransaction
		}
		keys[tx.IdempotencyKey] = tx.ID.String()
	}

	vendor[tx.ID.String()] = tx.Clone()
	return nil
}

func (s *Store) Get(_ context.Context, vendorID string, txID id.TransactionID) (*transaction.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, khata.ErrStoreClosed
	}
	if tx, ok := s.txs[vendorID][txID.String()]; ok {
		return tx.Clone(), nil
	}
	return nil, khata.ErrTransactionNotFound
}

func (s *Store) ListForVendor(_ context.Context, vendorID string, opts transaction.ListOpts) ([]*transaction.Transaction, error) {
	return s.list(vendorID, opts, nil)
}

func (s *Store) ListForParty(_ context.Context, vendorID string, party transaction.Ref, opts transaction.ListOpts) ([]*transaction.Transaction, error) {
	return s.list(vendorID, opts, party.Matches)
}

func (s *Store) ListRecurring(_ context.Context, vendorID string) ([]*transaction.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, khata.ErrStoreClosed
	}

	var result []*transaction.Transaction
	for vid, vendor := range s.txs {
		if vendorID != "" && vid != vendorID {
			continue
		}
		for _, tx := range vendor {
			if tx.IsRecurring {
				result = append(result, tx.Clone())
			}
		}
	}
	sortByDateDesc(result)
	return result, nil
}

func (s *Store) AmendMetadata(_ context.Context, vendorID string, txID id.TransactionID, a transaction.Amendment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return khata.ErrStoreClosed
	}
	tx, ok := s.txs[vendorID][txID.String()]
	if !ok {
		return khata.ErrTransactionNotFound
	}
	a.Apply(tx)
	return nil
}

func (s *Store) list(vendorID string, opts transaction.ListOpts, keep func(*transaction.Transaction) bool) ([]*transaction.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, khata.ErrStoreClosed
	}

	var result []*transaction.Transaction
	for _, tx := range s.txs[vendorID] {
		if keep != nil && !keep(tx) {
			continue
		}
		if !opts.Match(tx) {
			continue
		}
		result = append(result, tx.Clone())
	}
	sortByDateDesc(result)

	return paginate(result, opts.Offset, opts.Limit), nil
}

// sortByDateDesc orders newest first, breaking ties by id so pages are stable.
func sortByDateDesc(txs []*transaction.Transaction) {
	sort.Slice(txs, func(i, j int) bool {
		if !txs[i].TransactionDate.Equal(txs[j].TransactionDate) {
			return txs[i].TransactionDate.After(txs[j].TransactionDate)
		}
		return txs[i].ID.String() > txs[j].ID.String()
	})
}

func paginate(txs []*transaction.Transaction, offset, limit int) []*transaction.Transaction {
	if offset > 0 {
		if offset >= len(txs) {
			return nil
		}
		txs = txs[offset:]
	}
	if limit > 0 && limit < len(txs) {
		txs = txs[:limit]
	}
	return txs
}

// Migrate is a no-op.
func (s *Store) Migrate(_ context.Context) error {
	return nil
}

func (s *Store) Ping(_ context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return khata.ErrStoreClosed
	}
	return nil
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
