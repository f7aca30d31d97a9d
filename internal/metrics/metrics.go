// Package metrics holds the Prometheus collectors of the service. Everything is
// registered on the default registry and served on /metrics.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "compliance_track"

// unmatchedRoute labels requests no route matched, so unknown paths cannot grow the
// label set.
const unmatchedRoute = "unmatched"

var (
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request duration by route and status.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route", "status_code"})

	HTTPRequestsInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "http_requests_in_flight",
		Help:      "Requests currently being served.",
	})

	Calculations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "migration_calculations_total",
		Help:      "Migration estimates by outcome.",
	}, []string{"status"})

	CalculationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "migration_calculation_duration_seconds",
		Help:      "Time spent estimating one table of substances.",
		Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
	})

	// MigrationValue observes estimated migration in mg/kg.
	MigrationValue = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "migration_value_mg_per_kg",
		Help:      "Estimated migration values.",
		Buckets:   prometheus.ExponentialBuckets(0.001, 10, 8),
	})

	Verdicts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "compliance_verdicts_total",
		Help:      "Verdicts per regulation column by outcome.",
	}, []string{"verdict"})

	SubstanceLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "substance_lookups_total",
		Help:      "Reference substance lookups by result.",
	}, []string{"result"})

	ActiveSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "calculation_sessions_active",
		Help:      "Calculation sessions held in memory.",
	})

	CacheOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cache_operations_total",
		Help:      "In-memory cache operations.",
	}, []string{"cache", "operation", "result"})

	CacheEntries = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "cache_entries",
		Help:      "Entries held per cache.",
	}, []string{"cache"})

	CacheCapacity = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "cache_capacity",
		Help:      "Entries a cache holds before evicting.",
	}, []string{"cache"})

	// CircuitBreakerState is 0 closed, 1 open, 2 half-open.
	CircuitBreakerState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "circuit_breaker_state",
		Help:      "Circuit breaker state (0 closed, 1 open, 2 half-open).",
	}, []string{"name"})

	ActivityEntries = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "activity_entries_total",
		Help:      "Activity log entries by outcome (queued, dropped, written, failed).",
	}, []string{"outcome"})
)

// PrometheusMiddleware observes every request under its route template.
func PrometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		HTTPRequestsInFlight.Inc()
		start := time.Now()

		c.Next()

		HTTPRequestsInFlight.Dec()
		route := c.FullPath()
		if route == "" {
			route = unmatchedRoute
		}
		HTTPRequestDuration.
			WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}

// RecordMigrationCalculation records one estimator run with the values and verdicts it produced.
func RecordMigrationCalculation(took time.Duration, status string, values []float64, verdicts []string) {
	CalculationDuration.Observe(took.Seconds())
	Calculations.WithLabelValues(status).Inc()
	for _, v := range values {
		MigrationValue.Observe(v)
	}
	for _, v := range verdicts {
		Verdicts.WithLabelValues(v).Inc()
	}
}

func RecordSubstanceLookup(result string) {
	SubstanceLookups.WithLabelValues(result).Inc()
}

func SetActiveSessions(n int) {
	ActiveSessions.Set(float64(n))
}

func RecordCacheOperation(cache, operation, result string) {
	CacheOperations.WithLabelValues(cache, operation, result).Inc()
}

func UpdateCacheMetrics(cache string, size, capacity int) {
	CacheEntries.WithLabelValues(cache).Set(float64(size))
	CacheCapacity.WithLabelValues(cache).Set(float64(capacity))
}

func SetCircuitBreakerState(name string, state int) {
	CircuitBreakerState.WithLabelValues(name).Set(float64(state))
}

// RecordActivity counts n activity entries with the given outcome.
func RecordActivity(outcome string, n int) {
	if n > 0 {
		ActivityEntries.WithLabelValues(outcome).Add(float64(n))
	}
}
