// Package metrics collects and exposes Prometheus metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector gathers HTTP and booking metrics.
type Collector struct {
	httpStatus       *prometheus.CounterVec
	requestLatency   prometheus.Histogram
	reservationsMade prometheus.Counter
	paymentIntents   prometheus.Counter
	slotsExhausted   prometheus.Counter
}

// NewCollector creates a Collector and registers its metrics with the
// given registry.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "diaglab_http_status_total",
			Help: "Responses by HTTP status code",
		}, []string{"status_code"}),
		requestLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "diaglab_request_latency_seconds",
			Help:    "Request handling latency in seconds",
			Buckets: prometheus.DefBuckets,
		}),
		reservationsMade: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "diaglab_reservations_created_total",
			Help: "Reservations created",
		}),
		paymentIntents: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "diaglab_payment_intents_total",
			Help: "Payment intents created",
		}),
		slotsExhausted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "diaglab_slots_exhausted_total",
			Help: "Bookings rejected because a test ran out of slots",
		}),
	}

	reg.MustRegister(
		c.httpStatus,
		c.requestLatency,
		c.reservationsMade,
		c.paymentIntents,
		c.slotsExhausted,
	)
	return c
}

// Collector methods are nil-safe so handlers can run without a
// registry in tests.

// RecordHTTPStatus counts a response by status code.
func (c *Collector) RecordHTTPStatus(statusCode int) {
	if c == nil {
		return
	}
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordRequestLatency observes one request duration.
func (c *Collector) RecordRequestLatency(duration time.Duration) {
	if c == nil {
		return
	}
	c.requestLatency.Observe(duration.Seconds())
}

// RecordReservationCreated counts a booked reservation.
func (c *Collector) RecordReservationCreated() {
	if c == nil {
		return
	}
	c.reservationsMade.Inc()
}

// RecordPaymentIntent counts a created payment intent.
func (c *Collector) RecordPaymentIntent() {
	if c == nil {
		return
	}
	c.paymentIntents.Inc()
}

// RecordSlotsExhausted counts a booking rejected for lack of slots.
func (c *Collector) RecordSlotsExhausted() {
	if c == nil {
		return
	}
	c.slotsExhausted.Inc()
}

// Middleware records status and latency for every request.
func (c *Collector) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		c.RecordHTTPStatus(status)
		c.RecordRequestLatency(time.Since(start))
	})
}

// Handler returns the Prometheus scrape handler.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
