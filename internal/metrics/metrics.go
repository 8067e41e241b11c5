package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "workbridg_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"method", "route", "status"},
	)

	BackendCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "workbridg_backend_call_duration_seconds",
			Help:    "Backend REST call duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 12), // 5ms to ~20s
		},
		[]string{"method", "resource", "status"},
	)

	TokenRefreshCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "workbridg_token_refresh_total",
			Help: "Access token refresh attempts",
		},
		[]string{"result"}, // result: success, failed
	)

	ChatPollCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "workbridg_chat_poll_total",
			Help: "Chat poll ticks by outcome",
		},
		[]string{"outcome"}, // outcome: changed, unchanged, error, skipped
	)

	ActiveChatStreams = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "workbridg_chat_streams_active",
			Help: "Open chat event streams",
		},
	)
)

func RecordBackendCall(method, resource string, status int, duration time.Duration) {
	BackendCallDuration.WithLabelValues(method, resource, strconv.Itoa(status)).Observe(duration.Seconds())
}

func IncrementTokenRefresh(result string) {
	TokenRefreshCount.WithLabelValues(result).Inc()
}

func IncrementChatPoll(outcome string) {
	ChatPollCount.WithLabelValues(outcome).Inc()
}

// Middleware records request durations labelled by the matched route.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		HTTPRequestDuration.
			WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}
