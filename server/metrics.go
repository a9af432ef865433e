package server

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/amonks/tally/task"
)

type metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func newMetrics(registry *prometheus.Registry, store *task.Store) (*metrics, error) {
	m := &metrics{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tally_http_requests_total",
				Help: "Total HTTP requests by path and status",
			},
			[]string{"path", "status"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tally_http_request_duration_seconds",
				Help:    "HTTP request latency by path",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"path"},
		),
	}
	for _, c := range []prometheus.Collector{m.requests, m.duration, newStatsCollector(store)} {
		if err := registry.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *metrics) observe(path string, status int, elapsed time.Duration) {
	path = metricPath(path)
	m.requests.WithLabelValues(path, strconv.Itoa(status)).Inc()
	m.duration.WithLabelValues(path).Observe(elapsed.Seconds())
}

// metricPath keeps label cardinality bounded.
func metricPath(path string) string {
	switch path {
	case "/tasks/list", "/tasks/get", "/tasks/create", "/tasks/update",
		"/tasks/delete", "/tasks/stats", "/tasks/summary", "/healthz", "/metrics":
		return path
	default:
		return "other"
	}
}

// statsCollector reads task counts from the store on every scrape.
type statsCollector struct {
	store    *task.Store
	tasks    *prometheus.Desc
	progress *prometheus.Desc
	streak   *prometheus.Desc
}

func newStatsCollector(store *task.Store) *statsCollector {
	return &statsCollector{
		store:    store,
		tasks:    prometheus.NewDesc("tally_tasks", "Number of tasks by state", []string{"state"}, nil),
		progress: prometheus.NewDesc("tally_progress_percent", "Share of tasks completed", nil, nil),
		streak:   prometheus.NewDesc("tally_streak_days", "Consecutive days with a completed task", nil, nil),
	}
}

func (c *statsCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.tasks
	ch <- c.progress
	ch <- c.streak
}

func (c *statsCollector) Collect(ch chan<- prometheus.Metric) {
	stats, err := c.store.Stats()
	if err != nil {
		ch <- prometheus.NewInvalidMetric(c.tasks, err)
		return
	}
	for state, value := range map[string]int{
		"total":     stats.Total,
		"completed": stats.Completed,
		"pending":   stats.Pending,
		"overdue":   stats.Overdue,
	} {
		ch <- prometheus.MustNewConstMetric(c.tasks, prometheus.GaugeValue, float64(value), state)
	}
	ch <- prometheus.MustNewConstMetric(c.progress, prometheus.GaugeValue, float64(stats.Progress))
	ch <- prometheus.MustNewConstMetric(c.streak, prometheus.GaugeValue, float64(stats.Streak))
}
