package storage

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"kepler-hq/optic/pkg/metrics"
)

func testRecord(modelID string, ts time.Time) *metrics.MetricRecord {
	return &metrics.MetricRecord{
		ID:               fmt.Sprintf("%s-%d", modelID, ts.UnixNano()),
		ModelID:          modelID,
		Timestamp:        ts,
		TotalTimeSeconds: 1.5,
		LatencyMs:        1500,
		Tokens: metrics.TokenUsage{
			InputTokens:  100,
			OutputTokens: 50,
		},
		Currency: "USD",
	}
}

func TestMemoryStoreAppendAndQuery(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	defer store.Close()

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	// Append out of order; queries must come back sorted ascending.
	for _, offset := range []int{2, 0, 1} {
		if err := store.Append(ctx, testRecord("m1", base.Add(time.Duration(offset)*time.Minute))); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}

	records, err := store.Query(ctx, "m1", nil)
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("got %d records, want 3", len(records))
	}
	for i := 1; i < len(records); i++ {
		if records[i].Timestamp.Before(records[i-1].Timestamp) {
			t.Errorf("records not sorted ascending at index %d", i)
		}
	}
}

func TestMemoryStoreQueryTimeRange(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	defer store.Close()

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		if err := store.Append(ctx, testRecord("m1", base.Add(time.Duration(i)*time.Hour))); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}

	start := base.Add(1 * time.Hour)
	end := base.Add(3 * time.Hour)

	tests := []struct {
		name  string
		query *metrics.Query
		want  int
	}{
		{"no filter", nil, 5},
		{"start only", &metrics.Query{StartTime: &start}, 4},
		{"end only", &metrics.Query{EndTime: &end}, 4},
		{"both bounds inclusive", &metrics.Query{StartTime: &start, EndTime: &end}, 3},
		{"limit", &metrics.Query{Limit: 2}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records, err := store.Query(ctx, "m1", tt.query)
			if err != nil {
				t.Fatalf("Query failed: %v", err)
			}
			if len(records) != tt.want {
				t.Errorf("got %d records, want %d", len(records), tt.want)
			}
		})
	}
}

func TestMemoryStoreQueryUnknownModel(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	defer store.Close()

	records, err := store.Query(ctx, "never-seen", nil)
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("got %d records for unknown model, want 0", len(records))
	}
}

func TestMemoryStoreCopyOnAppend(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	defer store.Close()

	record := testRecord("m1", time.Now())
	if err := store.Append(ctx, record); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	// Mutating the caller's record must not affect the stored copy.
	record.LatencyMs = 999999

	records, err := store.Query(ctx, "m1", nil)
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if records[0].LatencyMs != 1500 {
		t.Errorf("stored record was mutated through caller reference: latency = %v", records[0].LatencyMs)
	}
}

func TestMemoryStoreModelsAndCount(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	defer store.Close()

	now := time.Now()
	for _, modelID := range []string{"zeta", "alpha", "alpha"} {
		if err := store.Append(ctx, testRecord(modelID, now)); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}

	models, err := store.Models(ctx)
	if err != nil {
		t.Fatalf("Models failed: %v", err)
	}
	if len(models) != 2 || models[0] != "alpha" || models[1] != "zeta" {
		t.Errorf("Models = %v, want [alpha zeta]", models)
	}

	count, err := store.Count(ctx, "alpha")
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 2 {
		t.Errorf("Count(alpha) = %d, want 2", count)
	}

	total, err := store.Count(ctx, "")
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if total != 3 {
		t.Errorf("Count(all) = %d, want 3", total)
	}
}

func TestMemoryStoreCleanupOlderThan(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	defer store.Close()

	now := time.Now()
	old := now.Add(-48 * time.Hour)

	if err := store.Append(ctx, testRecord("m1", old)); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if err := store.Append(ctx, testRecord("m1", now)); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	deleted, err := store.CleanupOlderThan(ctx, 24*time.Hour)
	if err != nil {
		t.Fatalf("CleanupOlderThan failed: %v", err)
	}
	if deleted != 1 {
		t.Errorf("deleted = %d, want 1", deleted)
	}

	count, err := store.Count(ctx, "m1")
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 1 {
		t.Errorf("Count after cleanup = %d, want 1", count)
	}
}

func TestMemoryStoreConcurrentAppend(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	defer store.Close()

	const goroutines = 8
	const perGoroutine = 1000

	var wg sync.WaitGroup
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < perGoroutine; i++ {
				record := testRecord("m1", time.Now())
				record.ID = fmt.Sprintf("g%d-i%d", g, i)
				if err := store.Append(ctx, record); err != nil {
					t.Errorf("Append failed: %v", err)
					return
				}
			}
		}(g)
	}
	wg.Wait()

	count, err := store.Count(ctx, "m1")
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != goroutines*perGoroutine {
		t.Errorf("Count = %d, want %d", count, goroutines*perGoroutine)
	}
}

func TestMemoryStoreNotPersistent(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()

	if store.Supported() {
		t.Error("memory store must report Supported() == false")
	}
	if err := store.Flush(context.Background()); err != nil {
		t.Errorf("Flush on memory store must be a no-op, got %v", err)
	}
}
