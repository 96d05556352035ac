// Package metrics 基于Prometheus的指标收集
//
// 指标分三类：
//   - HTTP：请求数、耗时、处理中的请求数
//   - 业务：用户操作（list/get/create/update/delete/export）的次数和耗时、集合大小
//   - 依赖：熔断器状态、事件发布结果
//
// 命名规范：Counter以_total结尾，Histogram以单位结尾（_seconds），
// 标签只用有限取值的维度（method、path模板、status、operation、result），不用user_id。
package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "usercenter"

// 结果标签
const (
	ResultSuccess  = "success"
	ResultFailure  = "failure"
	ResultRejected = "rejected"
)

var (
	initOnce sync.Once

	// HTTPRequestsTotal 标签：method、path（路由模板）、status
	HTTPRequestsTotal *prometheus.CounterVec
	// HTTPRequestDuration 标签：method、path
	HTTPRequestDuration    *prometheus.HistogramVec
	HTTPRequestsInProgress prometheus.Gauge

	// UserOperationsTotal 标签：operation、result
	UserOperationsTotal   *prometheus.CounterVec
	UserOperationDuration *prometheus.HistogramVec
	// UsersStored 最近一次写入后的集合大小
	UsersStored prometheus.Gauge

	// CircuitBreakerState 0=CLOSED, 1=OPEN, 2=HALF_OPEN
	CircuitBreakerState *prometheus.GaugeVec
	// CircuitBreakerRequests 标签：name、result（success/failure/rejected）
	CircuitBreakerRequests *prometheus.CounterVec

	// MessagesPublishedTotal 标签：routing_key、result
	MessagesPublishedTotal *prometheus.CounterVec
)

// InitMetrics 注册所有指标到默认Registry，重复调用无副作用
func InitMetrics() {
	initOnce.Do(func() {
		HTTPRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "HTTP请求总数",
			},
			[]string{"method", "path", "status"},
		)

		HTTPRequestDuration = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP请求耗时（秒）",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
			},
			[]string{"method", "path"},
		)

		HTTPRequestsInProgress = promauto.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "http_requests_in_progress",
				Help:      "正在处理的HTTP请求数",
			},
		)

		UserOperationsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "user_operations_total",
				Help:      "用户操作总数",
			},
			[]string{"operation", "result"},
		)

		// 每次写操作都整体读写集合，耗时随集合大小增长
		UserOperationDuration = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "user_operation_duration_seconds",
				Help:      "用户操作耗时（秒）",
				Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
			},
			[]string{"operation"},
		)

		UsersStored = promauto.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "users_stored",
				Help:      "集合中的用户数",
			},
		)

		CircuitBreakerState = promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "circuit_breaker_state",
				Help:      "熔断器状态（0=CLOSED, 1=OPEN, 2=HALF_OPEN）",
			},
			[]string{"name"},
		)

		CircuitBreakerRequests = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "circuit_breaker_requests_total",
				Help:      "熔断器请求总数",
			},
			[]string{"name", "result"},
		)

		MessagesPublishedTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "messages_published_total",
				Help:      "事件发布总数",
			},
			[]string{"routing_key", "result"},
		)
	})
}

// Handler /metrics端点
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveHTTPRequest 记录一次HTTP请求
func ObserveHTTPRequest(method, path string, status int, elapsed time.Duration) {
	InitMetrics()
	HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(elapsed.Seconds())
}

// ObserveUserOperation 记录一次用户操作
func ObserveUserOperation(operation string, err error, elapsed time.Duration) {
	InitMetrics()
	UserOperationsTotal.WithLabelValues(operation, resultOf(err)).Inc()
	UserOperationDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
}

// SetUsersStored 更新集合大小
func SetUsersStored(n int) {
	InitMetrics()
	UsersStored.Set(float64(n))
}

// SetCircuitBreakerState 更新熔断器状态
func SetCircuitBreakerState(name string, state int) {
	InitMetrics()
	CircuitBreakerState.WithLabelValues(name).Set(float64(state))
}

// IncCircuitBreakerRequest 记录熔断器请求结果
func IncCircuitBreakerRequest(name, result string) {
	InitMetrics()
	CircuitBreakerRequests.WithLabelValues(name, result).Inc()
}

// IncMessagePublished 记录事件发布结果
func IncMessagePublished(routingKey string, err error) {
	InitMetrics()
	MessagesPublishedTotal.WithLabelValues(routingKey, resultOf(err)).Inc()
}

func resultOf(err error) string {
	if err != nil {
		return ResultFailure
	}
	return ResultSuccess
}
