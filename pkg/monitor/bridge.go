package monitor

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// CodeKey 是 gin context 里业务码的 key。接口总是返回 HTTP 200, 按信封里的 code 统计
const CodeKey = "monitor.code"

// BridgeMetrics 定义桥接业务指标和接口指标
type BridgeMetrics struct {
	BundlesBuiltTotal     *prometheus.CounterVec
	BundleBuildFailures   *prometheus.CounterVec
	BundleBuildDuration   *prometheus.HistogramVec
	SubmissionsTotal      *prometheus.CounterVec
	LockedAmountTotal     *prometheus.CounterVec
	OffersInFlightRejects prometheus.Counter

	APIRequestsTotal   *prometheus.CounterVec
	APIRequestDuration *prometheus.HistogramVec
}

// Bridge 全局指标实例, Init 之前为 nil, 记录函数会忽略
var Bridge *BridgeMetrics

var initOnce sync.Once

// Init 在默认 registry 上注册指标, 多次调用只注册一次
func Init() {
	initOnce.Do(func() {
		InitBridgeMetrics(prometheus.DefaultRegisterer)
	})
}

// InitBridgeMetrics 初始化指标
func InitBridgeMetrics(reg prometheus.Registerer) *BridgeMetrics {
	f := promauto.With(reg)
	Bridge = &BridgeMetrics{
		BundlesBuiltTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "bridge_bundles_built_total",
			Help: "Lock bundles built, by asset kind",
		}, []string{"asset"}),
		BundleBuildFailures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "bridge_bundle_build_failures_total",
			Help: "Lock bundle builds that failed, by error code",
		}, []string{"code"}),
		BundleBuildDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "bridge_bundle_build_duration_seconds",
			Help:    "Duration of lock bundle builds",
			Buckets: prometheus.DefBuckets,
		}, []string{"asset"}),
		SubmissionsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "bridge_submissions_total",
			Help: "Spend bundle submissions, by result",
		}, []string{"result"}),
		LockedAmountTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "bridge_locked_amount_total",
			Help: "Base units locked, by asset",
		}, []string{"asset"}),
		OffersInFlightRejects: f.NewCounter(prometheus.CounterOpts{
			Name: "bridge_offer_in_flight_rejects_total",
			Help: "Lock requests rejected because the same offer was being built",
		}),
		APIRequestsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "bridge_api_requests_total",
			Help: "API requests, by route and response code",
		}, []string{"method", "route", "code"}),
		// 构建 + push_tx 都在请求里, 桶比普通接口放宽
		APIRequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "bridge_api_request_duration_seconds",
			Help:    "API request latency",
			Buckets: []float64{0.05, 0.25, 1, 2.5, 5, 15},
		}, []string{"method", "route"}),
	}
	return Bridge
}

// ObserveBuild 记录一次成功的构建
func ObserveBuild(asset string, amount uint64, elapsed time.Duration) {
	if Bridge == nil {
		return
	}
	Bridge.BundlesBuiltTotal.WithLabelValues(asset).Inc()
	Bridge.BundleBuildDuration.WithLabelValues(asset).Observe(elapsed.Seconds())
	Bridge.LockedAmountTotal.WithLabelValues(asset).Add(float64(amount))
}

// ObserveBuildFailure 记录失败的构建
func ObserveBuildFailure(code int) {
	if Bridge == nil {
		return
	}
	Bridge.BundleBuildFailures.WithLabelValues(strconv.Itoa(code)).Inc()
}

// ObserveSubmission 记录提交结果: "accepted" 或 "rejected"
func ObserveSubmission(result string) {
	if Bridge == nil {
		return
	}
	Bridge.SubmissionsTotal.WithLabelValues(result).Inc()
}

// ObserveInFlightReject 记录重复 offer 被拒
func ObserveInFlightReject() {
	if Bridge == nil {
		return
	}
	Bridge.OffersInFlightRejects.Inc()
}

// ObserveAPI 记录一次接口调用
func ObserveAPI(method, route string, code int, elapsed time.Duration) {
	if Bridge == nil {
		return
	}
	Bridge.APIRequestsTotal.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	Bridge.APIRequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// APIMiddleware 按路由模板 (/api/v1/bundles/:nonce) 和业务码统计请求, 未匹配的路由不记
func APIMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		route := c.FullPath()
		if route == "" {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()
		ObserveAPI(c.Request.Method, route, c.GetInt(CodeKey), time.Since(start))
	}
}
