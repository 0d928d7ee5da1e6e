// Package observability holds the crawl metrics registry and its
// Prometheus-style exposition handler.
package observability

import (
	"fmt"
	"net/http"
	"sync/atomic"
)

// Metrics tracks operational counters for a crawl. All fields are safe for
// concurrent use; the zero value is ready.
type Metrics struct {
	// Cycle metrics
	Cycles         atomic.Int64
	SnapshotErrors atomic.Int64
	RateLimited    atomic.Int64

	// Extraction metrics
	PostsRecorded atomic.Int64
	Duplicates    atomic.Int64
	PersistErrors atomic.Int64

	// Scroll metrics
	Scrolls         atomic.Int64
	StuckRecoveries atomic.Int64
}

// NewMetrics creates a new Metrics instance.
func NewMetrics() *Metrics {
	return &Metrics{}
}

// ServeHTTP serves metrics in Prometheus text exposition format.
func (m *Metrics) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")

	metrics := []struct {
		name  string
		help  string
		value int64
	}{
		{"smcrawl_cycles_total", "Total crawl cycles executed", m.Cycles.Load()},
		{"smcrawl_snapshot_errors_total", "Total page snapshot failures", m.SnapshotErrors.Load()},
		{"smcrawl_rate_limited_total", "Total cycles skipped by position rate limiting", m.RateLimited.Load()},
		{"smcrawl_posts_recorded_total", "Total posts persisted", m.PostsRecorded.Load()},
		{"smcrawl_duplicates_total", "Total anchors skipped as already recorded", m.Duplicates.Load()},
		{"smcrawl_persist_errors_total", "Total storage write failures", m.PersistErrors.Load()},
		{"smcrawl_scrolls_total", "Total scroll advancements", m.Scrolls.Load()},
		{"smcrawl_stuck_recoveries_total", "Total jump-to-bottom recoveries", m.StuckRecoveries.Load()},
	}

	for _, metric := range metrics {
		fmt.Fprintf(w, "# HELP %s %s\n", metric.name, metric.help)
		fmt.Fprintf(w, "# TYPE %s counter\n", metric.name)
		fmt.Fprintf(w, "%s %d\n", metric.name, metric.value)
	}
}

// Snapshot returns all metrics as a map.
func (m *Metrics) Snapshot() map[string]int64 {
	return map[string]int64{
		"cycles":           m.Cycles.Load(),
		"snapshot_errors":  m.SnapshotErrors.Load(),
		"rate_limited":     m.RateLimited.Load(),
		"posts_recorded":   m.PostsRecorded.Load(),
		"duplicates":       m.Duplicates.Load(),
		"persist_errors":   m.PersistErrors.Load(),
		"scrolls":          m.Scrolls.Load(),
		"stuck_recoveries": m.StuckRecoveries.Load(),
	}
}
