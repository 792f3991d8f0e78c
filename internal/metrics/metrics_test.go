package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func TestMetricsRegistered(t *testing.T) {
	// Touch a label combination of each vec so Gather sees them.
	HTTPRequestsTotal.WithLabelValues("GET", "/api/files", "200").Add(0)
	DBQueryTotal.WithLabelValues("upsert_file", "success").Add(0)
	ScanRunsTotal.WithLabelValues("completed").Add(0)
	ScanFilesSkipped.WithLabelValues("unreadable").Add(0)
	ClusterGroupsFound.WithLabelValues("exact").Set(0)

	families, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}

	want := map[string]bool{
		"media_dedup_http_requests_total":        false,
		"media_dedup_db_queries_total":           false,
		"media_dedup_scan_runs_total":            false,
		"media_dedup_scan_files_skipped_total":   false,
		"media_dedup_cluster_groups":             false,
		"media_dedup_scan_files_processed_total": false,
	}
	for _, mf := range families {
		if _, ok := want[mf.GetName()]; ok {
			want[mf.GetName()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("metric %s not registered", name)
		}
	}
}

func TestCollectorStartStop(t *testing.T) {
	c := NewCollector(t.TempDir()+"/missing.db", time.Hour)
	c.Start()
	c.Stop()
}
