// Package aggregate computes statistical performance reports from stored
// metric records.
//
// # Safe mean
//
// Averaged fields exclude non-positive values from the denominator: a
// zero latency or memory reading is treated as "never measured" rather
// than measured-as-zero, which avoids biasing averages toward zero for
// inferences where a field was unavailable. Counting fields (token
// totals, error counts) sum unconditionally.
//
// # Percentiles
//
// Percentiles use the nearest-rank method: values are sorted ascending
// and indexed at floor(count * p), clamped to the valid range, with no
// interpolation. For 100 values [1..100], p50 is the value at index 50,
// i.e. 51.
//
// # Determinism
//
// Reports are pure functions of the stored data: recomputing a report
// over an unchanged store yields byte-identical numeric results. An
// empty result set produces a zero-valued report, never an error.
package aggregate
