package prometheus

import (
	"strconv"
	"time"

	"github.com/aescanero/demo-backend/pkg/ports"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector implements MetricsCollector using Prometheus
type Collector struct {
	httpRequests    *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
	entitiesCreated *prometheus.CounterVec
	storeSize       *prometheus.GaugeVec
	downstreamCalls *prometheus.CounterVec
	downstreamTime  *prometheus.HistogramVec
	downstreamUp    prometheus.Gauge
	eventsPublished *prometheus.CounterVec
}

var _ ports.MetricsCollector = (*Collector)(nil)

// NewCollector creates a collector registered on reg.
// Pass prometheus.DefaultRegisterer to expose metrics through promhttp.Handler.
func NewCollector(reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)

	return &Collector{
		httpRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "demo_backend_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		httpDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "demo_backend_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 10},
			},
			[]string{"method", "route"},
		),
		entitiesCreated: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "demo_backend_entities_created_total",
				Help: "Total number of records created",
			},
			[]string{"kind"},
		),
		storeSize: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "demo_backend_store_records",
				Help: "Current number of records per collection",
			},
			[]string{"kind"},
		),
		downstreamCalls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "demo_backend_downstream_calls_total",
				Help: "Total number of calls to the database service",
			},
			[]string{"op", "outcome"},
		),
		downstreamTime: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "demo_backend_downstream_call_duration_seconds",
				Help:    "Database service call latency in seconds",
				Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10},
			},
			[]string{"op"},
		),
		downstreamUp: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "demo_backend_downstream_up",
				Help: "1 if the last database service probe succeeded",
			},
		),
		eventsPublished: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "demo_backend_events_published_total",
				Help: "Total number of domain events published",
			},
			[]string{"type", "status"},
		),
	}
}

// ObserveRequest records a served HTTP request
func (c *Collector) ObserveRequest(method, route string, status int, duration time.Duration) {
	c.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.httpDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// IncEntitiesCreated increments the count of created records
func (c *Collector) IncEntitiesCreated(kind string) {
	c.entitiesCreated.WithLabelValues(kind).Inc()
}

// SetStoreSize sets the size of a collection
func (c *Collector) SetStoreSize(kind string, size int) {
	c.storeSize.WithLabelValues(kind).Set(float64(size))
}

// ObserveDownstreamCall records a database service call
func (c *Collector) ObserveDownstreamCall(op, outcome string, duration time.Duration) {
	c.downstreamCalls.WithLabelValues(op, outcome).Inc()
	c.downstreamTime.WithLabelValues(op).Observe(duration.Seconds())
}

// SetDownstreamUp records the latest probe result
func (c *Collector) SetDownstreamUp(up bool) {
	if up {
		c.downstreamUp.Set(1)
		return
	}
	c.downstreamUp.Set(0)
}

// IncEventsPublished counts a publish attempt
func (c *Collector) IncEventsPublished(eventType, status string) {
	c.eventsPublished.WithLabelValues(eventType, status).Inc()
}
