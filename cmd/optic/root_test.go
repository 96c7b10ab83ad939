package main

import (
	"testing"
	"time"

	"kepler-hq/optic/pkg/config"
	"kepler-hq/optic/pkg/metrics/storage"
)

func TestOpenStoreMemoryDefault(t *testing.T) {
	cfg := &config.Config{}
	config.ApplyDefaults(cfg)

	store, err := openStore(cfg)
	if err != nil {
		t.Fatalf("openStore failed: %v", err)
	}
	defer store.Close()

	if _, ok := store.(*storage.MemoryStore); !ok {
		t.Errorf("default store = %T, want *storage.MemoryStore", store)
	}
}

func TestTimeRangeFlags(t *testing.T) {
	t.Cleanup(func() {
		reportFlags.since = 0
		reportFlags.start = ""
		reportFlags.end = ""
	})

	t.Run("since wins", func(t *testing.T) {
		reportFlags.since = time.Hour
		reportFlags.start = ""
		reportFlags.end = ""

		start, end, err := timeRange()
		if err != nil {
			t.Fatalf("timeRange failed: %v", err)
		}
		if start == nil || end != nil {
			t.Fatalf("start/end = %v/%v, want bounded start only", start, end)
		}
		if since := time.Since(*start); since < time.Hour || since > time.Hour+time.Minute {
			t.Errorf("start = %v, want about an hour ago", *start)
		}
	})

	t.Run("explicit bounds", func(t *testing.T) {
		reportFlags.since = 0
		reportFlags.start = "2026-08-01T00:00:00Z"
		reportFlags.end = "2026-08-02T00:00:00Z"

		start, end, err := timeRange()
		if err != nil {
			t.Fatalf("timeRange failed: %v", err)
		}
		if start == nil || end == nil {
			t.Fatal("expected both bounds")
		}
		if !end.After(*start) {
			t.Errorf("end %v not after start %v", end, start)
		}
	})

	t.Run("bad start", func(t *testing.T) {
		reportFlags.since = 0
		reportFlags.start = "yesterday"
		reportFlags.end = ""

		if _, _, err := timeRange(); err == nil {
			t.Fatal("invalid --start must fail")
		}
	})
}

func TestVersionDefaults(t *testing.T) {
	if Version == "" {
		t.Error("Version must not be empty")
	}
}
