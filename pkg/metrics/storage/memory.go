package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"kepler-hq/optic/pkg/metrics"
)

// MemoryStore implements the metrics.Store interface with an in-memory map
// partitioned by model identifier, so single-model queries never scan
// unrelated data. A single mutex guards the map; reads and writes are both
// exclusive to keep iteration-during-mutation safe.
type MemoryStore struct {
	byModel map[string][]*metrics.MetricRecord
	mu      sync.Mutex
}

// NewMemoryStore creates a new in-memory metric store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byModel: make(map[string][]*metrics.MetricRecord),
	}
}

// Append adds a record to the model's partition. O(1) amortized; it never
// rejects a well-formed record.
func (s *MemoryStore) Append(ctx context.Context, record *metrics.MetricRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Copy to keep stored records immutable from the caller's view
	recordCopy := *record
	s.byModel[record.ModelID] = append(s.byModel[record.ModelID], &recordCopy)

	return nil
}

// Query retrieves records for a model matching the filters, sorted by
// timestamp ascending. The time range is inclusive on both ends.
func (s *MemoryStore) Query(ctx context.Context, modelID string, query *metrics.Query) ([]*metrics.MetricRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if query == nil {
		query = &metrics.Query{}
	}

	results := []*metrics.MetricRecord{}
	for _, record := range s.byModel[modelID] {
		if !matchesRange(record, query) {
			continue
		}
		recordCopy := *record
		results = append(results, &recordCopy)
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Timestamp.Before(results[j].Timestamp)
	})

	if query.Limit > 0 && len(results) > query.Limit {
		results = results[:query.Limit]
	}

	return results, nil
}

// Models returns the model identifiers with at least one record.
func (s *MemoryStore) Models(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	models := make([]string, 0, len(s.byModel))
	for modelID, records := range s.byModel {
		if len(records) > 0 {
			models = append(models, modelID)
		}
	}
	sort.Strings(models)

	return models, nil
}

// Count returns the number of records stored for a model.
// An empty modelID counts across all models.
func (s *MemoryStore) Count(ctx context.Context, modelID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if modelID != "" {
		return int64(len(s.byModel[modelID])), nil
	}

	var count int64
	for _, records := range s.byModel {
		count += int64(len(records))
	}

	return count, nil
}

// CleanupOlderThan removes records older than the given age.
// Returns the number of records removed.
func (s *MemoryStore) CleanupOlderThan(ctx context.Context, age time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().Add(-age)

	var removed int64
	for modelID, records := range s.byModel {
		kept := records[:0]
		for _, record := range records {
			if record.Timestamp.Before(cutoff) {
				removed++
				continue
			}
			kept = append(kept, record)
		}
		if len(kept) == 0 {
			delete(s.byModel, modelID)
		} else {
			s.byModel[modelID] = kept
		}
	}

	return removed, nil
}

// Supported reports whether the backend persists records durably.
// The memory store does not.
func (s *MemoryStore) Supported() bool { return false }

// Flush is a no-op for the memory store.
func (s *MemoryStore) Flush(ctx context.Context) error { return nil }

// Close releases the store's memory.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.byModel = make(map[string][]*metrics.MetricRecord)
	return nil
}

// matchesRange checks whether a record falls inside the query's time range.
func matchesRange(record *metrics.MetricRecord, query *metrics.Query) bool {
	if query.StartTime != nil && record.Timestamp.Before(*query.StartTime) {
		return false
	}
	if query.EndTime != nil && record.Timestamp.After(*query.EndTime) {
		return false
	}
	return true
}
