// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path"},
	)

	// Rechazos counts ledger operations rejected with a domain error, by code.
	Rechazos = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledger_rechazos_total",
			Help: "Operations rejected by the ledger",
		},
		[]string{"motivo"},
	)

	Abonos = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "credito_abonos_total",
			Help: "Credit payments recorded, by payment channel",
		},
		[]string{"medio"},
	)

	Cierres = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cierres_total",
		Help: "Cash closings persisted",
	})

	// CierresPendientes is 1 while the previous commercial day has no closing.
	CierresPendientes = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "cierres_pendientes",
		Help: "Previous commercial days still waiting for a cash closing",
	})

	ReportesFallidos = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "reportes_cierre_fallidos_total",
		Help: "Closing report jobs sent to the dead letter queue",
	})
)

var once sync.Once

// InitMetrics registers every collector with the default registry. Safe to call more than once.
func InitMetrics() {
	once.Do(func() {
		prometheus.MustRegister(
			HTTPRequestsTotal, HTTPRequestDuration,
			Rechazos, Abonos, Cierres, CierresPendientes, ReportesFallidos,
		)
	})
}
