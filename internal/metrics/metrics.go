package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const unmatchedPath = "unmatched"

type HTTPMetrics struct {
	requestsTotal    *prometheus.CounterVec
	requestsDuration *prometheus.HistogramVec
	requestsInFlight prometheus.Gauge
}

func NewHTTPMetrics(reg prometheus.Registerer) *HTTPMetrics {
	factory := promauto.With(reg)
	return &HTTPMetrics{
		requestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests.",
			},
			[]string{"code", "method", "path"},
		),
		requestsDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		requestsInFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Current Number of HTTP requests being processed.",
			},
		),
	}
}

// Middleware etiqueta por plantilla de ruta (/api/v1/products/:id) para no
// abrir una serie por cada id.
func (m *HTTPMetrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		m.requestsInFlight.Inc()

		defer func() {
			path := c.FullPath()
			if path == "" {
				path = unmatchedPath
			}
			m.requestsTotal.WithLabelValues(strconv.Itoa(c.Writer.Status()), c.Request.Method, path).Inc()
			m.requestsDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
			m.requestsInFlight.Dec()
		}()

		c.Next()
	}
}

// ProductCounters cuenta escrituras exitosas de productos.
type ProductCounters struct {
	Created prometheus.Counter
	Updated prometheus.Counter
	Deleted prometheus.Counter
}

func NewProductCounters(reg prometheus.Registerer) ProductCounters {
	factory := promauto.With(reg)
	return ProductCounters{
		Created: factory.NewCounter(prometheus.CounterOpts{
			Name: "products_created_total",
			Help: "Total number of products created",
		}),
		Updated: factory.NewCounter(prometheus.CounterOpts{
			Name: "products_updated_total",
			Help: "Total number of products updated",
		}),
		Deleted: factory.NewCounter(prometheus.CounterOpts{
			Name: "products_deleted_total",
			Help: "Total number of products deleted",
		}),
	}
}

// Handler expone el registro dado en /metrics.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
