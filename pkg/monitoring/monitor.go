package monitoring

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	requestCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "edulytics_http_requests_total",
			Help: "HTTP requests by method, route and status",
		},
		[]string{"method", "route", "status"},
	)

	requestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "edulytics_http_request_duration_seconds",
			Help:    "HTTP request latency by method and route",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"method", "route"},
	)

	// AIRequestCounter 按操作和结果统计 AI 协作服务调用，fallback
	// 占比是判断降级是否频发的依据
	AIRequestCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "edulytics_ai_requests_total",
			Help: "AI collaborator calls by operation and outcome",
		},
		[]string{"operation", "outcome"},
	)
)

const (
	AIOutcomeSuccess  = "success"
	AIOutcomeFallback = "fallback"
)

// MetricsMiddleware 以路由模板为维度记录次数与耗时，未注册路由
// 统一归并到 unmatched，防止标签基数失控。
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}

		requestCounter.WithLabelValues(
			c.Request.Method,
			route,
			strconv.Itoa(c.Writer.Status()),
		).Inc()

		requestDuration.WithLabelValues(
			c.Request.Method,
			route,
		).Observe(time.Since(start).Seconds())
	}
}

func PrometheusHandler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
