// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector はメトリクス収集のインターフェース。
// ミドルウェアやサービス層から利用する。
type MetricsCollector interface {
	RecordHTTPRequest(method, route string, statusCode int, duration time.Duration)
	RecordHTTPStatus(statusCode int)
	RecordAuthEvent(event, result string)
	RecordTaskOperation(op string)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	httpRequests *prometheus.CounterVec
	httpLatency  *prometheus.HistogramVec
	httpStatus   *prometheus.CounterVec
	authEvents   *prometheus.CounterVec
	taskOps      *prometheus.CounterVec
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "taskman_http_requests_total",
			Help: "ルート・メソッド別のHTTPリクエスト数",
		}, []string{"method", "route"}),
		httpLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "taskman_http_request_duration_seconds",
			Help:    "HTTPリクエストの処理時間（秒）",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "taskman_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		authEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "taskman_auth_events_total",
			Help: "認証イベント（サインアップ・サインイン等）の結果別件数",
		}, []string{"event", "result"}),
		taskOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "taskman_task_operations_total",
			Help: "成功したタスク操作の件数",
		}, []string{"operation"}),
	}

	reg.MustRegister(
		c.httpRequests,
		c.httpLatency,
		c.httpStatus,
		c.authEvents,
		c.taskOps,
	)

	return c
}

// RecordHTTPRequest はリクエスト数・レイテンシ・ステータスをまとめて記録する。
// routeにはchiのルートパターン（例: /api/tasks/{id}）を渡し、ラベルの爆発を防ぐ。
func (c *Collector) RecordHTTPRequest(method, route string, statusCode int, duration time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	c.httpRequests.WithLabelValues(method, route).Inc()
	c.httpLatency.WithLabelValues(method, route).Observe(duration.Seconds())
	c.RecordHTTPStatus(statusCode)
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordAuthEvent は認証イベントを記録する。
func (c *Collector) RecordAuthEvent(event, result string) {
	c.authEvents.WithLabelValues(event, result).Inc()
}

// RecordTaskOperation はタスク操作を記録する。
func (c *Collector) RecordTaskOperation(op string) {
	c.taskOps.WithLabelValues(op).Inc()
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
