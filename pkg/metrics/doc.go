// Package metrics defines the domain model for Optic's model-inference
// performance metrics engine: immutable metric records, the storage
// contract, query filters, and the typed error taxonomy shared by all
// subsystems.
//
// # Metric Records
//
// Each MetricRecord captures one completed inference:
//   - Timing (total time, latency, time to first token)
//   - Token usage (typed TokenUsage sub-structure)
//   - Resource usage (memory, CPU, GPU; best-effort)
//   - Cost attribution (prompt and completion cost)
//   - Outcome (error, cache hit) and free-form metadata tags
//
// Records are created exactly once by an inference tracker and never
// mutated afterward. Derived values (total tokens, total cost, tokens
// per second) are computed on demand, never stored redundantly.
//
// # Data Flow
//
//	caller → tracker.Start/Stop → MetricRecord
//	     ↓
//	Store.Append (the only ingestion-path mutation)
//	     ↓
//	alert.Engine.Evaluate (side channel, synchronous)
//	     ↓ on demand
//	aggregate.Engine.Report → PerformanceReport
//
// # Storage
//
// The Store interface is implemented by storage.MemoryStore (in-memory,
// partitioned by model) and storage.SQLiteStore (durable). Backends that
// persist durably additionally implement the Persister capability;
// callers check Supported() instead of catching not-implemented errors.
package metrics
