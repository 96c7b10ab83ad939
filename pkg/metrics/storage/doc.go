// Package storage provides metric record storage backends.
//
// # Backends
//
//   - MemoryStore: in-memory, partitioned by model identifier. Fast,
//     not durable (Persister.Supported() returns false).
//   - SQLiteStore: durable SQLite storage keyed by (model_id, timestamp),
//     with WAL mode and a schema version table. Two drivers are supported:
//     mattn/go-sqlite3 (cgo, default) and modernc.org/sqlite (pure Go).
//
// # Contract
//
// Both backends satisfy metrics.Store: Append is O(1) amortized and never
// rejects a well-formed record; Query returns records sorted by timestamp
// ascending with an inclusive time range; concurrent Append and Query
// calls never lose or duplicate a record.
//
// # Basic Usage
//
//	store := storage.NewMemoryStore()
//	defer store.Close()
//
//	err := store.Append(ctx, record)
//	records, err := store.Query(ctx, "llama-3-8b", &metrics.Query{
//	    StartTime: &start,
//	    EndTime:   &end,
//	})
package storage
