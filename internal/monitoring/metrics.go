package monitoring

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// 监控指标定义
var (
	// HTTP 请求指标
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "whisperwall_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "whisperwall_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	// 留言指标
	MessagesSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "whisperwall_messages_sent_total",
			Help: "Total number of messages sent",
		},
		[]string{"mode"}, // anonymous / identified
	)

	MessagesDeleted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "whisperwall_messages_deleted_total",
			Help: "Total number of messages deleted",
		},
	)

	MessagesRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "whisperwall_messages_rejected_total",
			Help: "Total number of rejected message deliveries",
		},
		[]string{"reason"},
	)

	// 用户指标
	UsersRegistered = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "whisperwall_users_registered_total",
			Help: "Total number of users registered",
		},
	)

	ProfileLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "whisperwall_profile_lookups_total",
			Help: "Total number of public profile lookups",
		},
		[]string{"result"}, // found / not_found
	)

	// 建议服务指标
	SuggestRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "whisperwall_suggest_requests_total",
			Help: "Total number of suggestion requests",
		},
		[]string{"source"}, // upstream / failed
	)

	// 限流指标
	RateLimitBlocks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "whisperwall_rate_limit_blocks_total",
			Help: "Total number of rate limit blocks",
		},
		[]string{"endpoint"},
	)

	// WebSocket 指标
	WebSocketConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "whisperwall_websocket_connections",
			Help: "Number of active WebSocket connections",
		},
	)

	// 错误指标
	PanicsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "whisperwall_panics_total",
			Help: "Total number of recovered panics",
		},
	)
)

// RecordHTTPRequest 记录 HTTP 请求指标
func RecordHTTPRequest(method, endpoint, statusCode string, duration time.Duration) {
	HTTPRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	HTTPRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// HTTPHandler 返回 Prometheus HTTP 处理器
func HTTPHandler() http.Handler {
	return promhttp.Handler()
}
