// Package tracker provides the per-inference lifecycle tracker and token
// cost attribution.
//
// # Lifecycle
//
// A Tracker moves through Created → Started → Stopped (terminal):
//
//	t := tracker.New("llama-3-8b", publisher, rates)
//	err := t.Start(prompt, 0)      // 0 requests the length estimate
//	_ = t.RecordFirstToken()       // optional, fixes latency
//	record, err := t.Stop(ctx, completion, 0)
//
// Start fails with AlreadyStartedError when called twice; Stop fails with
// NotStartedError when called before Start, and repeat Stop calls return
// the already-computed record without re-measuring.
//
// # Token estimation
//
// When a token count is not supplied, EstimateTokens approximates it as
// max(1, len(text)/4). This is a length heuristic, not a real tokenizer;
// records flag estimated counts.
//
// # Cost
//
// Cost is the pure rate calculation: rate * tokens / 1000 per side, using
// the per-model RateCard registered through the engine facade.
//
// # Degraded measurement
//
// Resource capture (memory, CPU, GPU) is best-effort: probe failures are
// logged at debug level and the field records zero. Capture failures
// never fail the inference.
package tracker
