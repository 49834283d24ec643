package database

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
)

// RegisterPoolMetrics registers prometheus gauges exposing pgxpool statistics
// for the given pool, labeled with the service name. Safe to call once per
// process per pool.
func RegisterPoolMetrics(pool *pgxpool.Pool, service string) {
	labels := prometheus.Labels{"service": service}

	prometheus.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name:        "db_pool_total_conns",
			Help:        "Total number of connections in the pool",
			ConstLabels: labels,
		},
		func() float64 { return float64(pool.Stat().TotalConns()) },
	))

	prometheus.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name:        "db_pool_idle_conns",
			Help:        "Number of idle connections in the pool",
			ConstLabels: labels,
		},
		func() float64 { return float64(pool.Stat().IdleConns()) },
	))

	prometheus.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name:        "db_pool_acquired_conns",
			Help:        "Number of currently acquired connections",
			ConstLabels: labels,
		},
		func() float64 { return float64(pool.Stat().AcquiredConns()) },
	))
}
