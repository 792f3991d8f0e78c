// Package metrics provides Prometheus instrumentation for the dedup
// engine. All metrics are prefixed with "media_dedup_" and registered on
// the default registry via promauto; expose them by mounting
// promhttp.Handler() on a /metrics endpoint.
//
// Categories: HTTP request metrics (used by the query server middleware),
// database query and transaction metrics, scan progress and outcome
// metrics, and clustering query metrics. The [Collector] refreshes gauges
// that must be read from outside the process, such as SQLite file sizes.
package metrics
