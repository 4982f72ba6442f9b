// Package metric provides Prometheus metrics for tokgate.
//
//   - prometheus.go: private registry, auth, HTTP and build instruments, /metrics handler
//   - collector.go: gauges read from live state at scrape time
//
// Every instrument is registered on the Registry's own prometheus.Registry,
// never on the global default one, so tests can build as many as they like.
package metric
