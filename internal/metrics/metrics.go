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
// サービス層とミドルウェアから利用する。
type MetricsCollector interface {
	RecordSignIn(outcome string)
	RecordRegister(outcome string)
	RecordTokenVerify(outcome string)
	RecordHTTPStatus(statusCode int)
	RecordRequestDuration(duration time.Duration)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	signIn          *prometheus.CounterVec
	register        *prometheus.CounterVec
	tokenVerify     *prometheus.CounterVec
	httpStatus      *prometheus.CounterVec
	requestDuration prometheus.Histogram
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		signIn: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pizzauth_sign_in_total",
			Help: "サインイン試行の結果別合計数",
		}, []string{"outcome"}),
		register: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pizzauth_register_total",
			Help: "新規登録試行の結果別合計数",
		}, []string{"outcome"}),
		tokenVerify: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pizzauth_token_verify_total",
			Help: "トークン検証の結果別合計数",
		}, []string{"outcome"}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pizzauth_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		requestDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "pizzauth_http_request_duration_seconds",
			Help:    "HTTPリクエスト処理時間（秒）",
			Buckets: prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(
		c.signIn,
		c.register,
		c.tokenVerify,
		c.httpStatus,
		c.requestDuration,
	)

	return c
}

// RecordSignIn はサインイン結果を記録する。
func (c *Collector) RecordSignIn(outcome string) {
	c.signIn.WithLabelValues(outcome).Inc()
}

// RecordRegister は新規登録結果を記録する。
func (c *Collector) RecordRegister(outcome string) {
	c.register.WithLabelValues(outcome).Inc()
}

// RecordTokenVerify はトークン検証結果を記録する。
func (c *Collector) RecordTokenVerify(outcome string) {
	c.tokenVerify.WithLabelValues(outcome).Inc()
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordRequestDuration はリクエスト処理時間を記録する。
func (c *Collector) RecordRequestDuration(duration time.Duration) {
	c.requestDuration.Observe(duration.Seconds())
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
