package telemetry

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups the booking engine collectors. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	SlotsBooked        *prometheus.CounterVec
	Conflicts          prometheus.Counter
	ValidationFailures *prometheus.CounterVec
	SlotsCancelled     prometheus.Counter

	StorageDuration *prometheus.HistogramVec
	StorageErrors   *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)

	return &Metrics{
		SlotsBooked: f.NewCounterVec(prometheus.CounterOpts{
			Name: "slots_booked_total",
			Help: "Slots persisted by the manager, by booking mode.",
		}, []string{"mode"}),

		Conflicts: f.NewCounter(prometheus.CounterOpts{
			Name: "slot_conflicts_total",
			Help: "Bookings rejected because of overlapping slots.",
		}),

		ValidationFailures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "slot_validation_failures_total",
			Help: "Bookings rejected by input validation, by field.",
		}, []string{"field"}),

		SlotsCancelled: f.NewCounter(prometheus.CounterOpts{
			Name: "slots_cancelled_total",
			Help: "Slots removed through cancel operations.",
		}),

		StorageDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "slot_storage_operation_seconds",
			Help:    "Latency of storage adapter calls.",
			Buckets: prometheus.DefBuckets,
		}, []string{"backend", "op"}),

		StorageErrors: f.NewCounterVec(prometheus.CounterOpts{
			Name: "slot_storage_errors_total",
			Help: "Storage adapter calls that returned an error.",
		}, []string{"backend", "op"}),
	}
}

func (m *Metrics) Booked(mode string, n int) {
	if m == nil {
		return
	}
	m.SlotsBooked.WithLabelValues(mode).Add(float64(n))
}

func (m *Metrics) Conflict() {
	if m == nil {
		return
	}
	m.Conflicts.Inc()
}

func (m *Metrics) ValidationFailed(field string) {
	if m == nil {
		return
	}
	m.ValidationFailures.WithLabelValues(field).Inc()
}

func (m *Metrics) Cancelled(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.SlotsCancelled.Add(float64(n))
}

// ObserveStorage records one adapter call.
func (m *Metrics) ObserveStorage(backend, op string, started time.Time, err error) {
	if m == nil {
		return
	}
	m.StorageDuration.WithLabelValues(backend, op).Observe(time.Since(started).Seconds())
	if err != nil {
		m.StorageErrors.WithLabelValues(backend, op).Inc()
	}
}

// Handler exposes a prometheus.Gatherer on /metrics.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
