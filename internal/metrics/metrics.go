package metrics

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wichananm65/clickshop-backend/internal/apperror"
)

const namespace = "clickshop"

// Metrics holds the counters for cart mutations and checkouts. A nil
// *Metrics is valid and records nothing.
type Metrics struct {
	CartMutations   *prometheus.CounterVec
	Checkouts       *prometheus.CounterVec
	CheckoutLatency prometheus.Histogram
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		CartMutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cart",
			Name:      "mutations_total",
			Help:      "Cart mutations by operation and outcome.",
		}, []string{"op", "outcome"}),
		Checkouts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "checkout",
			Name:      "attempts_total",
			Help:      "Checkout attempts by outcome.",
		}, []string{"outcome"}),
		CheckoutLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "checkout",
			Name:      "duration_ms",
			Help:      "Checkout latency in milliseconds.",
			Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500},
		}),
	}
	reg.MustRegister(m.CartMutations, m.Checkouts, m.CheckoutLatency)
	return m
}

func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	return string(apperror.KindOf(err))
}

func (m *Metrics) ObserveCartMutation(op string, err error) {
	if m == nil {
		return
	}
	m.CartMutations.WithLabelValues(op, outcome(err)).Inc()
}

func (m *Metrics) ObserveCheckout(start time.Time, err error) {
	if m == nil {
		return
	}
	m.Checkouts.WithLabelValues(outcome(err)).Inc()
	m.CheckoutLatency.Observe(float64(time.Since(start).Milliseconds()))
}

// Handler serves the Prometheus exposition format for g on a fiber route.
func Handler(g prometheus.Gatherer) fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(g, promhttp.HandlerOpts{}))
}
