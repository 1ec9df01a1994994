package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ValidationsTotal counts validation passes by service and outcome (valid/invalid).
	ValidationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "vtu",
		Subsystem: "engine",
		Name:      "validations_total",
		Help:      "Order validation passes",
	}, []string{"service", "result"})

	// FieldErrorsTotal counts individual field failures by field and code.
	FieldErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "vtu",
		Subsystem: "engine",
		Name:      "field_errors_total",
		Help:      "Field-level validation failures",
	}, []string{"service", "field", "code"})

	// QuotedAmount tracks charged totals of issued quotations.
	QuotedAmount = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "vtu",
		Subsystem: "engine",
		Name:      "quoted_naira",
		Help:      "Charged amount of issued quotations in Naira",
		Buckets:   []float64{100, 500, 1000, 5000, 10000, 50000, 100000, 500000, 1000000},
	}, []string{"service"})

	SubmissionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "vtu",
		Subsystem: "submission",
		Name:      "total",
		Help:      "Order submissions by service and outcome",
	}, []string{"service", "outcome"})

	SubmissionDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "vtu",
		Subsystem: "submission",
		Name:      "duration_seconds",
		Help:      "Time spent at the submission boundary",
		Buckets:   prometheus.DefBuckets,
	}, []string{"service"})

	// SubmitConflictsTotal counts submits rejected because one was already in flight.
	SubmitConflictsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "vtu",
		Subsystem: "submission",
		Name:      "conflicts_total",
		Help:      "Submits rejected while another was in flight",
	})

	CatalogReloadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "vtu",
		Subsystem: "catalog",
		Name:      "reloads_total",
		Help:      "Catalog reload attempts",
	}, []string{"status"})

	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "vtu",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
)

// ObserveRequest records one HTTP request.
func ObserveRequest(method, route string, status int, d time.Duration) {
	RequestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(d.Seconds())
}

// ObserveSubmission records one resolved submission.
func ObserveSubmission(service, outcome string, d time.Duration) {
	SubmissionsTotal.WithLabelValues(service, outcome).Inc()
	SubmissionDuration.WithLabelValues(service).Observe(d.Seconds())
}
