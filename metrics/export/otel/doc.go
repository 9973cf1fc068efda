// Package otel provides OpenTelemetry metric exporter bindings for tripauth
// counters and histograms.
//
// [NewOTelExporter] registers Int64ObservableCounter instruments for each
// tripauth metric and Int64ObservableGauge per histogram bucket. A single
// callback reads [tripauth.Engine.MetricsSnapshot] on each collection cycle.
//
// # What this package must NOT do
//
//   - Own the OTel MeterProvider. Callers supply the Meter.
//   - Mutate engine state.
package otel
