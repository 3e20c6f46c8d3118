// Package store provides record store adapters for the ledger: an in-memory
// slice for tests and single-process development, a CSV flat file compatible
// with spreadsheet exports, and an append-only PostgreSQL table.
//
// All three expose only ledger.Store's "read all rows" and "append one row";
// none offers transactions or compare-and-swap, matching the guarantees of
// the spreadsheet-style backends the system was designed around.
package store

import (
	"context"
	"sync"

	"github.com/counterworks/counterlog/internal/ledger"
)

// Memory is an in-memory, thread-safe record store.
type Memory struct {
	mu      sync.RWMutex
	records []ledger.Record
}

// NewMemory creates an empty Memory store.
func NewMemory() *Memory {
	return &Memory{}
}

// ReadAll implements ledger.Store.
func (m *Memory) ReadAll(_ context.Context) ([]ledger.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]ledger.Record, len(m.records))
	copy(out, m.records)
	return out, nil
}

// Append implements ledger.Store.
func (m *Memory) Append(_ context.Context, rec ledger.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, rec)
	return nil
}
