package middleware

import (
	"context"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	awspkg "github.com/rayhanbeg/Sajbela-sub000/pkg/aws"
)

const metricsFlushTimeout = 5 * time.Second

// MetricsMiddleware publishes request count, latency and error class for
// every request. Publishing happens off the request goroutine.
func MetricsMiddleware(metrics awspkg.MetricsRecorder, serviceName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if metrics == nil || !metrics.IsEnabled() {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		sample := requestSample{
			status:  c.Writer.Status(),
			latency: time.Since(start),
			dims: map[string]string{
				"Service": serviceName,
				"Method":  c.Request.Method,
				"Path":    routeOf(c),
			},
		}
		sample.dims["Status"] = statusClass(sample.status)

		go sample.publish(metrics)
	}
}

type requestSample struct {
	status  int
	latency time.Duration
	dims    map[string]string
}

func (s requestSample) publish(metrics awspkg.MetricsRecorder) {
	ctx, cancel := context.WithTimeout(context.Background(), metricsFlushTimeout)
	defer cancel()

	_ = metrics.RecordCount(ctx, awspkg.MetricHTTPRequests, s.dims)
	_ = metrics.RecordLatency(ctx, awspkg.MetricHTTPLatency, s.latency, s.dims)

	if s.status < 400 {
		return
	}
	_ = metrics.RecordCount(ctx, awspkg.MetricHTTPErrors, s.dims)
	if s.status >= 500 {
		_ = metrics.RecordCount(ctx, awspkg.MetricHTTP5xx, s.dims)
		return
	}
	_ = metrics.RecordCount(ctx, awspkg.MetricHTTP4xx, s.dims)
}

// statusClass buckets a status code as "2xx", "4xx" and so on.
func statusClass(status int) string {
	if status < 100 || status > 599 {
		return "unknown"
	}
	return strconv.Itoa(status/100) + "xx"
}
