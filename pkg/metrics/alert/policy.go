package alert

import "time"

// Severity buckets a breach by how far the value crossed the threshold.
// The ratio is value/threshold for upper bounds and threshold/value for
// lower bounds, so a larger ratio always means a worse breach.
type Severity int

const (
	SeverityNone Severity = iota
	SeverityLow
	SeverityMedium
	SeverityHigh
	SeverityCritical
)

// String implements fmt.Stringer.
func (s Severity) String() string {
	switch s {
	case SeverityLow:
		return "low"
	case SeverityMedium:
		return "medium"
	case SeverityHigh:
		return "high"
	case SeverityCritical:
		return "critical"
	default:
		return "none"
	}
}

// severityOf buckets the breach ratio: low (≤1.2), medium (≤1.5),
// high (≤2.0), critical (>2.0).
func severityOf(value, threshold float64, isUpperBound bool) Severity {
	var ratio float64
	if isUpperBound {
		if threshold != 0 {
			ratio = value / threshold
		}
	} else {
		if value != 0 {
			ratio = threshold / value
		}
	}

	switch {
	case ratio <= 1.2:
		return SeverityLow
	case ratio <= 1.5:
		return SeverityMedium
	case ratio <= 2.0:
		return SeverityHigh
	default:
		return SeverityCritical
	}
}

// Breach describes a confirmed threshold crossing, with the state needed
// for a suppression decision.
type Breach struct {
	// Config is the threshold configuration that was crossed.
	Config *Config

	// Value is the recorded metric value.
	Value float64

	// Severity is the bucketed severity of this breach.
	Severity Severity

	// HasFired is true when an alert for this key fired before.
	HasFired bool

	// Elapsed is the time since the last fired alert for this key.
	// Meaningless when HasFired is false.
	Elapsed time.Duration

	// LastSeverity is the severity of the alert that most recently
	// fired for this key. SeverityNone when HasFired is false.
	LastSeverity Severity
}

// SuppressionPolicy decides whether a confirmed breach is suppressed
// instead of dispatched. The engine calls it inside the same critical
// section that updates the cooldown state, so implementations must not
// block or call back into the engine.
type SuppressionPolicy interface {
	Suppress(b Breach) bool
}

// CooldownPolicy is the default policy: a breach is suppressed while the
// configured cooldown window since the last fired alert is still open.
// A key that never fired is always past cooldown.
type CooldownPolicy struct{}

// Suppress implements SuppressionPolicy.
func (CooldownPolicy) Suppress(b Breach) bool {
	if !b.HasFired {
		return false
	}
	return b.Elapsed < b.Config.Cooldown
}

// SeverityOverridePolicy layers severity escalation on top of the
// cooldown: a breach inside the cooldown window still fires when its
// severity strictly exceeds the severity of the alert that most recently
// fired for the same key. A critical spike therefore breaks through a
// cooldown established by a low-severity alert.
type SeverityOverridePolicy struct{}

// Suppress implements SuppressionPolicy.
func (SeverityOverridePolicy) Suppress(b Breach) bool {
	if !(CooldownPolicy{}).Suppress(b) {
		return false
	}
	return b.Severity <= b.LastSeverity
}
