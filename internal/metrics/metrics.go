package metrics

import (
	"context"
	"log/slog"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"frontdesk/internal/db"
)

var (
	requestsDesc = prometheus.NewDesc(
		"frontdesk_help_requests",
		"Help request count by lifecycle status",
		[]string{"status"},
		nil,
	)

	cacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "frontdesk_cache_lookups_total",
			Help: "Learned-answer cache lookup count by outcome",
		},
		[]string{"outcome"},
	)
)

// StatusCollector is a custom Prometheus collector that reads request counts
// from the database on each scrape, so every replica reports the same shared
// state.
type StatusCollector struct {
	db *db.DB
}

// Describe sends the metric descriptor to the channel.
func (c *StatusCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- requestsDesc
}

// Collect queries the database for request counts and emits them as gauges.
func (c *StatusCollector) Collect(ch chan<- prometheus.Metric) {
	stats, err := c.db.GetRequestStats(context.Background())
	if err != nil {
		slog.Error("failed to collect help request metrics", "error", err)
		return
	}
	ch <- prometheus.MustNewConstMetric(requestsDesc, prometheus.GaugeValue, float64(stats.Pending), "pending")
	ch <- prometheus.MustNewConstMetric(requestsDesc, prometheus.GaugeValue, float64(stats.Resolved), "resolved")
	ch <- prometheus.MustNewConstMetric(requestsDesc, prometheus.GaugeValue, float64(stats.Unresolved), "unresolved")
}

var initOnce sync.Once

// Init registers the custom collector and counters. Must be called once at
// startup.
func Init(database *db.DB) {
	initOnce.Do(func() {
		prometheus.MustRegister(&StatusCollector{db: database})
		prometheus.MustRegister(cacheLookups)
	})
}

// Cache lookup outcomes.
const (
	LookupExact     = "exact"
	LookupFuzzy     = "fuzzy"
	LookupMiss      = "miss"
	LookupEscalated = "escalated"
)

// RecordCacheLookup records a learned-answer lookup outcome.
func RecordCacheLookup(outcome string) {
	cacheLookups.WithLabelValues(outcome).Inc()
}
