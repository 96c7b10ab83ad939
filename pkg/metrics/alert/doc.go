// Package alert evaluates recorded metrics against configured thresholds
// and dispatches notifications with cooldown suppression.
//
// # Thresholds
//
// One Config exists per (model, metric) pair; SetThreshold fully replaces
// an existing config, cooldown state included. Breaches use strict
// inequality in both directions: a value exactly at the threshold never
// triggers.
//
// # Cooldown and suppression
//
// After an alert fires, further breaches of the same key are suppressed
// until the cooldown window closes. Suppression is pluggable:
//
//   - CooldownPolicy (default): pure time-window suppression.
//   - SeverityOverridePolicy: a breach whose severity strictly exceeds
//     the last fired alert's severity breaks through the cooldown.
//
// The breach decision and the cooldown state update happen in one
// critical section, so concurrent breaches cannot double-fire.
//
// # Handlers
//
// Handlers are registered per channel and invoked synchronously. A
// panicking handler is caught and logged; it never affects other
// handlers or the evaluation call.
package alert
