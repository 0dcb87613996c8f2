package storage

import (
	"context"
	"sync"

	"aiteddy-hq/guardian/pkg/audit"
)

// MemoryStorage implements audit.Storage with an in-memory map. Records are
// lost on exit; use it for tests and for the "memory" backend.
type MemoryStorage struct {
	mu      sync.RWMutex
	records map[string]*audit.Record
	closed  bool
}

// NewMemoryStorage creates an empty in-memory store.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{records: make(map[string]*audit.Record)}
}

// Store keeps a copy of record.
func (s *MemoryStorage) Store(ctx context.Context, record *audit.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return audit.NewStorageError("memory", "store", audit.ErrClosed)
	}
	s.records[record.ID] = cloneRecord(record)
	return nil
}

// Query returns copies of the matching records.
func (s *MemoryStorage) Query(ctx context.Context, query *audit.Query) ([]*audit.Record, error) {
	if err := audit.Validate(query); err != nil {
		return nil, err
	}
	if query == nil {
		query = &audit.Query{}
	}

	s.mu.RLock()
	results := []*audit.Record{}
	for _, record := range s.records {
		if query.Matches(record) {
			results = append(results, cloneRecord(record))
		}
	}
	s.mu.RUnlock()

	audit.SortRecords(results, query.SortOrder)

	if query.Offset >= len(results) {
		return []*audit.Record{}, nil
	}
	results = results[query.Offset:]
	if query.Limit > 0 && query.Limit < len(results) {
		results = results[:query.Limit]
	}
	return results, nil
}

// Count returns the number of matching records.
func (s *MemoryStorage) Count(ctx context.Context, query *audit.Query) (int64, error) {
	if err := audit.Validate(query); err != nil {
		return 0, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int64
	for _, record := range s.records {
		if query.Matches(record) {
			count++
		}
	}
	return count, nil
}

// Delete removes matching records.
func (s *MemoryStorage) Delete(ctx context.Context, query *audit.Query) (int64, error) {
	if err := audit.Validate(query); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var count int64
	for id, record := range s.records {
		if query.Matches(record) {
			delete(s.records, id)
			count++
		}
	}
	return count, nil
}

// Ping fails only after Close.
func (s *MemoryStorage) Ping(ctx context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return audit.NewStorageError("memory", "ping", audit.ErrClosed)
	}
	return nil
}

// Close drops all records.
func (s *MemoryStorage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.records = make(map[string]*audit.Record)
	return nil
}

func cloneRecord(record *audit.Record) *audit.Record {
	c := *record
	if record.Concerns != nil {
		c.Concerns = append([]string(nil), record.Concerns...)
	}
	return &c
}
