package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_dedup_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "media_dedup_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_dedup_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)
)

// Database metrics
var (
	DBQueryTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_dedup_db_queries_total",
			Help: "Total number of database queries",
		},
		[]string{"operation", "status"},
	)

	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "media_dedup_db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"operation"},
	)

	DBTransactionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "media_dedup_db_transaction_duration_seconds",
			Help:    "Database transaction duration in seconds",
			Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 5, 15},
		},
		[]string{"outcome"}, // "commit", "rollback"
	)

	DBConnectionsOpen = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_dedup_db_connections_open",
			Help: "Number of open database connections",
		},
	)

	DBSizeBytes = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "media_dedup_db_size_bytes",
			Help: "Size of SQLite database files in bytes",
		},
		[]string{"file"}, // "main", "wal", "shm"
	)
)

// Scan metrics
var (
	ScanRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_dedup_scan_runs_total",
			Help: "Total number of scan runs by outcome",
		},
		[]string{"outcome"}, // "completed", "cancelled", "failed"
	)

	ScanFilesProcessed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "media_dedup_scan_files_processed_total",
			Help: "Total number of files hashed and recorded by scans",
		},
	)

	ScanFilesSkipped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_dedup_scan_files_skipped_total",
			Help: "Total number of files skipped by scans",
		},
		[]string{"reason"}, // "unreadable", "undecodable", "unprobeable"
	)

	ScanBytesHashed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "media_dedup_scan_bytes_hashed_total",
			Help: "Total bytes fed through the strong hashers",
		},
	)

	ScanFramesSampled = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "media_dedup_scan_frames_sampled_total",
			Help: "Total video frames extracted for perceptual hashing",
		},
	)

	ScanLastRunTimestamp = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_dedup_scan_last_run_timestamp",
			Help: "Unix timestamp of the last completed scan",
		},
	)

	ScanLastRunDuration = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_dedup_scan_last_run_duration_seconds",
			Help: "Duration of the last scan in seconds",
		},
	)

	ScanIsRunning = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_dedup_scan_running",
			Help: "Whether a scan is currently running (1 = running, 0 = idle)",
		},
	)
)

// Clustering metrics
var (
	ClusterGroupsFound = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "media_dedup_cluster_groups",
			Help: "Number of duplicate groups found by the last query",
		},
		[]string{"kind"}, // "exact", "similar"
	)

	ClusterQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "media_dedup_cluster_query_duration_seconds",
			Help:    "Duplicate clustering query duration in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 15, 60},
		},
		[]string{"kind"},
	)
)

// Application info
var (
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "media_dedup_app_info",
			Help: "Application build information",
		},
		[]string{"version", "go_version"},
	)
)
