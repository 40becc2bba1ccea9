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
// ハンドラーやミドルウェアから利用する。
type MetricsCollector interface {
	RecordHTTPRequest(method, path string, status int, duration time.Duration)
	RecordRateLimitRejection()
	RecordAssetCreated()
	RecordAssetUpdated()
	RecordCSVExport()
	RecordStorageError(kind string)
	RecordSessionsCleaned(count int64)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	httpRequests        *prometheus.CounterVec
	httpLatency         prometheus.Histogram
	rateLimitRejections prometheus.Counter
	assetsCreated       prometheus.Counter
	assetsUpdated       prometheus.Counter
	csvExports          prometheus.Counter
	storageErrors       *prometheus.CounterVec
	sessionsCleaned     prometheus.Counter
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "inventory360_http_requests_total",
			Help: "メソッド・パス・ステータスコード別のHTTPリクエスト数",
		}, []string{"method", "path", "status"}),
		httpLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "inventory360_http_request_duration_seconds",
			Help:    "HTTPリクエスト処理時間（秒）",
			Buckets: prometheus.DefBuckets,
		}),
		rateLimitRejections: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "inventory360_rate_limit_rejections_total",
			Help: "レート制限で拒否したリクエストの合計数",
		}),
		assetsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "inventory360_assets_created_total",
			Help: "登録された資産の合計数",
		}),
		assetsUpdated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "inventory360_assets_updated_total",
			Help: "更新された資産の合計数",
		}),
		csvExports: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "inventory360_csv_exports_total",
			Help: "CSVエクスポートの合計数",
		}),
		storageErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "inventory360_storage_errors_total",
			Help: "種別ごとの永続化層エラーの合計数",
		}, []string{"kind"}),
		sessionsCleaned: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "inventory360_sessions_cleaned_total",
			Help: "クリーンアップで削除した期限切れセッションの合計数",
		}),
	}

	reg.MustRegister(
		c.httpRequests,
		c.httpLatency,
		c.rateLimitRejections,
		c.assetsCreated,
		c.assetsUpdated,
		c.csvExports,
		c.storageErrors,
		c.sessionsCleaned,
	)

	return c
}

// RecordHTTPRequest はリクエスト完了1件を記録する。
func (c *Collector) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	c.httpRequests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	c.httpLatency.Observe(duration.Seconds())
}

// RecordRateLimitRejection はレート制限拒否を記録する。
func (c *Collector) RecordRateLimitRejection() {
	c.rateLimitRejections.Inc()
}

// RecordAssetCreated は資産登録を記録する。
func (c *Collector) RecordAssetCreated() {
	c.assetsCreated.Inc()
}

// RecordAssetUpdated は資産更新を記録する。
func (c *Collector) RecordAssetUpdated() {
	c.assetsUpdated.Inc()
}

// RecordCSVExport はCSVエクスポートを記録する。
func (c *Collector) RecordCSVExport() {
	c.csvExports.Inc()
}

// RecordStorageError は永続化層エラーを種別付きで記録する。
// kindはエラータイプ（database_unavailable / server_error）をそのまま使う。
func (c *Collector) RecordStorageError(kind string) {
	c.storageErrors.WithLabelValues(kind).Inc()
}

// RecordSessionsCleaned は削除した期限切れセッション数を記録する。
func (c *Collector) RecordSessionsCleaned(count int64) {
	c.sessionsCleaned.Add(float64(count))
}

// SetupMetricsRoute は/metricsエンドポイントのハンドラーを返す。
func SetupMetricsRoute(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}
