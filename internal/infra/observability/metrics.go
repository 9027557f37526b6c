package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"

	"github.com/smokemoha/mortgage-calc-api/internal/domain"
)

// Metrics holds all Prometheus metrics for the mortgage API.
type Metrics struct {
	// Registry is the Prometheus registry that owns these metrics.
	// Exposed so the /metrics endpoint can serve it.
	Registry *prometheus.Registry

	requestDuration *prometheus.HistogramVec
	quotesTotal     *prometheus.CounterVec
	rejectedInputs  *prometheus.CounterVec
	rateLimited     prometheus.Counter
}

// NewMetrics creates a dedicated Prometheus registry and registers all
// application metrics in it. A private registry avoids "duplicate collector"
// panics when NewMetrics is called more than once (e.g. in tests).
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "mortgage_request_duration_seconds",
				Help:    "Duration of requests by operation.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		quotesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mortgage_quotes_total",
				Help: "Total quote requests by outcome.",
			},
			[]string{"status"},
		),
		rejectedInputs: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mortgage_rejected_inputs_total",
				Help: "Total field-level validation rejections.",
			},
			[]string{"field"},
		),
		rateLimited: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "mortgage_rate_limited_total",
				Help: "Total requests rejected by the rate limiter.",
			},
		),
	}
}

// RecordRequestDuration records the duration of an operation.
func (m *Metrics) RecordRequestDuration(operation string, d time.Duration) {
	m.requestDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// IncrQuote increments the quote counter with an outcome label.
func (m *Metrics) IncrQuote(status string) {
	m.quotesTotal.WithLabelValues(status).Inc()
}

// IncrRejectedInput increments the rejection counter for a field.
func (m *Metrics) IncrRejectedInput(field string) {
	m.rejectedInputs.WithLabelValues(field).Inc()
}

// IncrRateLimited increments the rate-limited request counter.
func (m *Metrics) IncrRateLimited() {
	m.rateLimited.Inc()
}

// GetCalculatorSnapshot returns a snapshot of calculator metrics suitable for
// the GET /v1/metrics/calculator endpoint. Values are read back from the
// Prometheus counters, so the snapshot is cumulative since process start.
func (m *Metrics) GetCalculatorSnapshot() *domain.CalculatorMetrics {
	success := getCounterValue(m.quotesTotal, "success")
	validationErrs := getCounterValue(m.quotesTotal, "validation_error")
	calculationErrs := getCounterValue(m.quotesTotal, "calculation_error")
	total := success + validationErrs + calculationErrs

	errorRate := float64(0)
	if total > 0 {
		errorRate = (validationErrs + calculationErrs) / total
	}

	rejected := float64(0)
	for _, field := range []string{"Principal", "Annual Interest Rate", "Years"} {
		rejected += getCounterValue(m.rejectedInputs, field)
	}

	rateLimited := float64(0)
	metric := &dto.Metric{}
	if err := m.rateLimited.Write(metric); err == nil && metric.Counter != nil && metric.Counter.Value != nil {
		rateLimited = *metric.Counter.Value
	}

	return &domain.CalculatorMetrics{
		TotalQuotes:    int64(total),
		ErrorRate:      errorRate,
		RejectedInputs: int64(rejected),
		RateLimited:    int64(rateLimited),
		Period:         "all_time",
	}
}

// getCounterValue extracts the current float64 value from a CounterVec for a given label.
func getCounterValue(cv *prometheus.CounterVec, label string) float64 {
	counter := cv.WithLabelValues(label)
	m := &dto.Metric{}
	if err := counter.(prometheus.Metric).Write(m); err != nil {
		return 0
	}
	if m.Counter != nil && m.Counter.Value != nil {
		return *m.Counter.Value
	}
	return 0
}
