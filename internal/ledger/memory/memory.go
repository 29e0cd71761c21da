// Package memory keeps the ledger in process memory. Nothing survives a
// restart; it backs tests and throwaway demo runs.
package memory

import (
	"context"
	"os"
	"sync"

	"finvision/internal/core"
	"finvision/internal/ledger"
	"finvision/internal/ledger/csvfile"
)

type Store struct {
	mu    sync.Mutex
	items core.Ledger
}

// Ensure interface conformance
var _ ledger.Store = (*Store)(nil)

func New(seed ...core.Transaction) *Store {
	return &Store{items: append(core.Ledger(nil), seed...)}
}

// NewFromFile seeds the store from a ledger CSV file. A missing or
// unreadable seed gives an empty store.
func NewFromFile(path string) *Store {
	f, err := os.Open(path)
	if err != nil {
		return New()
	}
	defer f.Close()
	l, err := csvfile.Decode(f)
	if err != nil {
		return New()
	}
	return New(l...)
}

func (s *Store) Load(_ context.Context) (ledger.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.items) == 0 {
		return ledger.Snapshot{Ledger: core.Ledger{}, Notice: ledger.NoticeNoHistory}, nil
	}
	return ledger.Snapshot{Ledger: append(core.Ledger{}, s.items...)}, nil
}

// AppendAndSave appends tx to the stored ledger. l is only returned on
// failure.
func (s *Store) AppendAndSave(_ context.Context, l core.Ledger, tx core.Transaction) (core.Ledger, error) {
	if err := tx.Validate(); err != nil {
		return l, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = s.items.Append(tx)
	return append(core.Ledger{}, s.items...), nil
}
