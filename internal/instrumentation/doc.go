// Package instrumentation provides the OpenTelemetry metrics for the
// assistant, exported in Prometheus format. Metrics cover the change
// watcher's poll cycles, emitted notifications, the OAuth credential
// lifecycle, and intent extraction.
package instrumentation
