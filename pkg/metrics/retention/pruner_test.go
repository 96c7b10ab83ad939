package retention

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"kepler-hq/optic/pkg/metrics"
	"kepler-hq/optic/pkg/metrics/storage"
)

func seedStore(t *testing.T, ages ...time.Duration) metrics.Store {
	t.Helper()

	store := storage.NewMemoryStore()
	t.Cleanup(func() { store.Close() })

	ctx := context.Background()
	now := time.Now()
	for i, age := range ages {
		record := &metrics.MetricRecord{
			ID:               fmt.Sprintf("rec-%d", i),
			ModelID:          "m1",
			Timestamp:        now.Add(-age),
			TotalTimeSeconds: 1,
		}
		if err := store.Append(ctx, record); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}
	return store
}

func TestPrunerDeletesOldRecords(t *testing.T) {
	store := seedStore(t, 100*24*time.Hour, 50*24*time.Hour, time.Hour)

	pruner := NewPruner(store, &Config{RetentionDays: 90})
	deleted, err := pruner.Prune(context.Background())
	if err != nil {
		t.Fatalf("Prune failed: %v", err)
	}
	if deleted != 1 {
		t.Errorf("deleted = %d, want 1", deleted)
	}

	count, err := store.Count(context.Background(), "m1")
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 2 {
		t.Errorf("remaining = %d, want 2", count)
	}
}

func TestPrunerRetentionDisabled(t *testing.T) {
	store := seedStore(t, 1000*24*time.Hour)

	pruner := NewPruner(store, &Config{RetentionDays: 0})
	deleted, err := pruner.Prune(context.Background())
	if err != nil {
		t.Fatalf("Prune failed: %v", err)
	}
	if deleted != 0 {
		t.Errorf("deleted = %d with retention disabled, want 0", deleted)
	}

	count, _ := store.Count(context.Background(), "m1")
	if count != 1 {
		t.Errorf("record was deleted despite disabled retention")
	}
}

func TestPrunerArchivesBeforeDelete(t *testing.T) {
	store := seedStore(t, 100*24*time.Hour, time.Hour)
	archiveDir := t.TempDir()

	pruner := NewPruner(store, &Config{
		RetentionDays:       90,
		ArchiveBeforeDelete: true,
		ArchivePath:         archiveDir,
	})

	deleted, err := pruner.Prune(context.Background())
	if err != nil {
		t.Fatalf("Prune failed: %v", err)
	}
	if deleted != 1 {
		t.Errorf("deleted = %d, want 1", deleted)
	}

	matches, err := filepath.Glob(filepath.Join(archiveDir, "metrics-*.json"))
	if err != nil || len(matches) != 1 {
		t.Fatalf("archive files = %v (err %v), want exactly one", matches, err)
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("reading archive failed: %v", err)
	}
	var archived []*metrics.MetricRecord
	if err := json.Unmarshal(data, &archived); err != nil {
		t.Fatalf("archive is not valid JSON: %v", err)
	}
	if len(archived) != 1 || archived[0].ID != "rec-0" {
		t.Errorf("archived records = %v, want the single expired record", archived)
	}
}

func TestPrunerDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.RetentionDays != 90 {
		t.Errorf("RetentionDays = %d, want 90", cfg.RetentionDays)
	}
	if cfg.PruneSchedule == "" {
		t.Error("default prune schedule must not be empty")
	}
}

func TestSchedulerEmptyScheduleNoop(t *testing.T) {
	store := seedStore(t)
	pruner := NewPruner(store, &Config{RetentionDays: 90, PruneSchedule: ""})

	if err := pruner.Start(context.Background()); err != nil {
		t.Fatalf("Start with empty schedule must be a no-op: %v", err)
	}
	if pruner.NextPruning() != nil {
		t.Error("no pruning should be scheduled")
	}
}

func TestSchedulerInvalidSchedule(t *testing.T) {
	store := seedStore(t)
	pruner := NewPruner(store, &Config{RetentionDays: 90, PruneSchedule: "not a cron expr"})

	if err := pruner.Start(context.Background()); err == nil {
		t.Fatal("Start must reject an invalid cron expression")
	}
}

func TestSchedulerStartStop(t *testing.T) {
	store := seedStore(t)
	pruner := NewPruner(store, &Config{RetentionDays: 90, PruneSchedule: "0 3 * * *"})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := pruner.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if pruner.NextPruning() == nil {
		t.Error("expected a next pruning time after Start")
	}
	pruner.Stop()
}
