// Package otel publishes Coordinator metrics through OpenTelemetry.
//
// [New] registers one Int64ObservableCounter per counter and one
// Int64ObservableGauge per histogram bucket, fed by a single callback that
// reads [goCoord.Coordinator.MetricsSnapshot] on each collection cycle.
//
// # What this package must NOT do
//
//   - Own the MeterProvider; callers supply the Meter.
//   - Mutate coordinator state.
package otel
