package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var durationBuckets = []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5}

// Metrics provides observability for the product module.
// Tracks lifecycle counts, post-commit dispatch failures and use case durations.
type Metrics struct {
	ProductsCreated   prometheus.Counter
	ProductsVerified  *prometheus.CounterVec
	DispatchFailures  *prometheus.CounterVec
	UseCaseDuration   *prometheus.HistogramVec
	VerifyLockTimeout prometheus.Counter
}

// New registers the product metrics on reg. A nil reg uses the default registerer.
// Tests pass a fresh prometheus.NewRegistry() to avoid duplicate registration.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Metrics{
		ProductsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "product_created_total",
			Help: "Total number of products created",
		}),
		ProductsVerified: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "product_verified_total",
			Help: "Total number of verifications by resulting status",
		}, []string{"status"}),
		DispatchFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "product_event_dispatch_failures_total",
			Help: "Domain events that failed to dispatch after commit",
		}, []string{"event"}),
		UseCaseDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "product_usecase_duration_seconds",
			Help:    "Duration of product use cases",
			Buckets: durationBuckets,
		}, []string{"usecase", "outcome"}),
		VerifyLockTimeout: factory.NewCounter(prometheus.CounterOpts{
			Name: "product_verify_lock_unavailable_total",
			Help: "Verify calls rejected because the per-product lock was held",
		}),
	}
}

func (m *Metrics) IncrementCreated() {
	if m == nil {
		return
	}
	m.ProductsCreated.Inc()
}

func (m *Metrics) IncrementVerified(status string) {
	if m == nil {
		return
	}
	m.ProductsVerified.WithLabelValues(status).Inc()
}

func (m *Metrics) IncrementDispatchFailure(event string) {
	if m == nil {
		return
	}
	m.DispatchFailures.WithLabelValues(event).Inc()
}

func (m *Metrics) IncrementLockUnavailable() {
	if m == nil {
		return
	}
	m.VerifyLockTimeout.Inc()
}

// ObserveUseCase records the duration of a use case.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveUseCase(usecase string, start time.Time, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.UseCaseDuration.WithLabelValues(usecase, outcome).Observe(time.Since(start).Seconds())
}
