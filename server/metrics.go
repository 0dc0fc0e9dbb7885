package server

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics 是服务的 Prometheus 指标集合，按推荐方法打标签，
// 用于观察 fallback 触发比例与请求延迟分布。
type Metrics struct {
	Requests *prometheus.CounterVec
	Latency  *prometheus.HistogramVec
	CacheHit *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "reco",
			Name:      "requests_total",
			Help:      "Total recommendation requests by method tag.",
		}, []string{"method"}),
		Latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "reco",
			Name:      "request_duration_seconds",
			Help:      "Recommendation request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
		CacheHit: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "reco",
			Name:      "cache_total",
			Help:      "Result cache lookups by outcome (hit/miss).",
		}, []string{"outcome"}),
	}
	reg.MustRegister(m.Requests, m.Latency, m.CacheHit)
	return m
}
