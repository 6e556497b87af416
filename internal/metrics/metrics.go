// Package metrics holds the Prometheus collectors shared by the studio
// components.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "audiogen"

var (
	Generations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "generations_total",
		Help:      "Speech generation attempts by outcome.",
	}, []string{"outcome"})

	ProviderFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tts_provider_failures_total",
		Help:      "Failed speech synthesis calls per provider.",
	}, []string{"provider"})

	TranscriptionAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "transcription_attempts_total",
		Help:      "Transcription endpoint attempts by path and outcome.",
	}, []string{"endpoint", "outcome"})

	CatalogFallbacks = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "voice_catalog_fallbacks_total",
		Help:      "Times the built-in voice catalog replaced the remote one.",
	})

	HealthProbes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "health_probes_total",
		Help:      "Remote service health probes by service and status.",
	}, []string{"service", "status"})

	ActiveSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "active_sessions",
		Help:      "Studio sessions currently held in memory.",
	})

	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests by method and status.",
	}, []string{"method", "status"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method"})
)

func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware records request counts and latency for every route.
func Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			status := c.Response().Status
			if err != nil {
				if he, ok := err.(*echo.HTTPError); ok {
					status = he.Code
				}
			}

			method := c.Request().Method
			HTTPRequests.WithLabelValues(method, strconv.Itoa(status)).Inc()
			HTTPDuration.WithLabelValues(method).Observe(time.Since(start).Seconds())
			return err
		}
	}
}
