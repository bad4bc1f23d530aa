// Package prometheus exports sigsearch operational metrics to Prometheus.
//
//	c := prometheus.NewCollector("sigsearch")
//	registry.MustRegister(c)
//	db, _ := sigsearch.Open(ctx, src, sigsearch.WithMetricsCollector(c))
package prometheus

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/hupe1980/sigsearch"
)

var _ sigsearch.MetricsCollector = (*Collector)(nil)
var _ prometheus.Collector = (*Collector)(nil)

// Collector implements sigsearch.MetricsCollector and prometheus.Collector.
type Collector struct {
	opLatency     *prometheus.HistogramVec
	searches      *prometheus.CounterVec
	searchResults prometheus.Histogram
	loads         *prometheus.CounterVec
	storeRecords  prometheus.Gauge
}

// NewCollector creates a Collector whose metric names start with namespace.
func NewCollector(namespace string) *Collector {
	return &Collector{
		opLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_latency_seconds",
			Help:      "Latency of store loads and searches",
			Buckets:   prometheus.DefBuckets,
		}, []string{"op", "status"}),
		searches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "searches_total",
			Help:      "Total searches by metric and status",
		}, []string{"metric", "status"}),
		searchResults: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_results",
			Help:      "Number of results returned per successful search",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
		}),
		loads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "loads_total",
			Help:      "Total store loads by status",
		}, []string{"status"}),
		storeRecords: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "store_records",
			Help:      "Records in the most recently loaded store",
		}),
	}
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

// RecordLoad implements sigsearch.MetricsCollector.
func (c *Collector) RecordLoad(records int, d time.Duration, err error) {
	s := status(err)
	c.opLatency.WithLabelValues("load", s).Observe(d.Seconds())
	c.loads.WithLabelValues(s).Inc()
	if err == nil {
		c.storeRecords.Set(float64(records))
	}
}

// RecordSearch implements sigsearch.MetricsCollector.
func (c *Collector) RecordSearch(metric string, k, results int, d time.Duration, err error) {
	s := status(err)
	c.opLatency.WithLabelValues("search", s).Observe(d.Seconds())
	c.searches.WithLabelValues(metric, s).Inc()
	if err == nil {
		c.searchResults.Observe(float64(results))
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	c.opLatency.Describe(ch)
	c.searches.Describe(ch)
	c.searchResults.Describe(ch)
	c.loads.Describe(ch)
	c.storeRecords.Describe(ch)
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	c.opLatency.Collect(ch)
	c.searches.Collect(ch)
	c.searchResults.Collect(ch)
	c.loads.Collect(ch)
	c.storeRecords.Collect(ch)
}
