// Package prometheus provides Prometheus collectors for tripauth metrics.
//
// [NewPrometheusExporter] accepts a [tripauth.Engine] and exposes an [http.Handler]
// that renders all tripauth counters and histograms in Prometheus text exposition
// format. Counter names are prefixed tripauth_*_total; the single histogram is
// tripauth_login_latency_seconds.
//
// # What this package must NOT do
//
//   - Register metrics in a global Prometheus registry. Callers mount the Handler.
//   - Mutate engine state.
package prometheus
