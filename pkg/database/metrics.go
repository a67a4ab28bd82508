package database

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"go.mongodb.org/mongo-driver/event"
)

// PoolStatsCollector exports pgxpool statistics on scrape.
type PoolStatsCollector struct {
	pool    *pgxpool.Pool
	service string

	acquiredConns   *prometheus.Desc
	idleConns       *prometheus.Desc
	totalConns      *prometheus.Desc
	maxConns        *prometheus.Desc
	acquireCount    *prometheus.Desc
	acquireDuration *prometheus.Desc
	emptyAcquires   *prometheus.Desc
}

// NewPoolStatsCollector creates a collector for pool.
func NewPoolStatsCollector(pool *pgxpool.Pool, service string) *PoolStatsCollector {
	labels := []string{"service"}
	desc := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc(name, help, labels, nil)
	}
	return &PoolStatsCollector{
		pool:            pool,
		service:         service,
		acquiredConns:   desc("db_pool_acquired_connections", "Number of currently acquired connections"),
		idleConns:       desc("db_pool_idle_connections", "Number of currently idle connections"),
		totalConns:      desc("db_pool_total_connections", "Total number of connections in the pool"),
		maxConns:        desc("db_pool_max_connections", "Maximum number of connections allowed"),
		acquireCount:    desc("db_pool_acquire_count_total", "Total number of connection acquires"),
		acquireDuration: desc("db_pool_acquire_duration_seconds_total", "Total time spent acquiring connections in seconds"),
		emptyAcquires:   desc("db_pool_empty_acquire_count_total", "Total number of acquires that had to wait for a connection"),
	}
}

// Describe implements prometheus.Collector.
func (c *PoolStatsCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.acquiredConns
	ch <- c.idleConns
	ch <- c.totalConns
	ch <- c.maxConns
	ch <- c.acquireCount
	ch <- c.acquireDuration
	ch <- c.emptyAcquires
}

// Collect implements prometheus.Collector.
func (c *PoolStatsCollector) Collect(ch chan<- prometheus.Metric) {
	if c.pool == nil {
		return
	}
	s := c.pool.Stat()
	gauge := func(d *prometheus.Desc, v float64) {
		ch <- prometheus.MustNewConstMetric(d, prometheus.GaugeValue, v, c.service)
	}
	counter := func(d *prometheus.Desc, v float64) {
		ch <- prometheus.MustNewConstMetric(d, prometheus.CounterValue, v, c.service)
	}
	gauge(c.acquiredConns, float64(s.AcquiredConns()))
	gauge(c.idleConns, float64(s.IdleConns()))
	gauge(c.totalConns, float64(s.TotalConns()))
	gauge(c.maxConns, float64(s.MaxConns()))
	counter(c.acquireCount, float64(s.AcquireCount()))
	counter(c.acquireDuration, s.AcquireDuration().Seconds())
	counter(c.emptyAcquires, float64(s.EmptyAcquireCount()))
}

// MongoPoolMetrics tracks mongo driver connection pool events.
type MongoPoolMetrics struct {
	open       prometheus.Gauge
	checkedOut prometheus.Gauge
	failed     prometheus.Counter
}

// NewMongoPoolMetrics creates the mongo pool collectors and registers them.
func NewMongoPoolMetrics(reg prometheus.Registerer, service string) *MongoPoolMetrics {
	labels := prometheus.Labels{"service": service}
	m := &MongoPoolMetrics{
		open: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "mongo_pool_open_connections", Help: "Open connections in the mongo pool", ConstLabels: labels,
		}),
		checkedOut: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "mongo_pool_checked_out_connections", Help: "Connections currently checked out", ConstLabels: labels,
		}),
		failed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mongo_pool_checkout_failures_total", Help: "Failed connection checkouts", ConstLabels: labels,
		}),
	}
	reg.MustRegister(m.open, m.checkedOut, m.failed)
	return m
}

// Monitor returns a driver PoolMonitor feeding m.
func (m *MongoPoolMetrics) Monitor() *event.PoolMonitor {
	return &event.PoolMonitor{Event: m.handle}
}

func (m *MongoPoolMetrics) handle(e *event.PoolEvent) {
	switch e.Type {
	case event.ConnectionCreated:
		m.open.Inc()
	case event.ConnectionClosed:
		m.open.Dec()
	case event.GetSucceeded:
		m.checkedOut.Inc()
	case event.ConnectionReturned:
		m.checkedOut.Dec()
	case event.GetFailed:
		m.failed.Inc()
	}
}
