// Package metrics 는 Prometheus 수집기와 누적 통계를 관리한다.
package metrics

import (
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "tig"

// Metrics 는 HTTP/캐시/색인 수집기 모음이다.
type Metrics struct {
	registry *prometheus.Registry

	requests      *prometheus.CounterVec
	duration      *prometheus.HistogramVec
	cacheLookups  *prometheus.CounterVec
	queryTokens   prometheus.Histogram
	indexDocs     prometheus.Gauge
	indexTerms    prometheus.Gauge
	indexGen      prometheus.Gauge
	indexReloads  *prometheus.CounterVec
	totalRequests int64
	totalErrors   int64
	totalQueries  int64
}

// New 는 전용 레지스트리에 수집기를 등록한다. Go 런타임/프로세스 수집기도 함께 등록한다.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "result_cache_lookups_total",
			Help:      "Result cache lookups by kind and outcome.",
		}, []string{"kind", "result"}),
		queryTokens: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "query_tokens",
			Help:      "Index terms produced per query.",
			Buckets:   []float64{0, 1, 2, 4, 8, 16, 32, 64},
		}),
		indexDocs: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "index_documents",
			Help:      "Documents in the loaded search index.",
		}),
		indexTerms: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "index_terms",
			Help:      "Distinct terms in the loaded search index.",
		}),
		indexGen: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "index_generation",
			Help:      "Generation number of the loaded search index.",
		}),
		indexReloads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "index_reloads_total",
			Help:      "Index reload attempts by outcome.",
		}, []string{"result"}),
	}
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requests, m.duration, m.cacheLookups, m.queryTokens,
		m.indexDocs, m.indexTerms, m.indexGen, m.indexReloads,
	)
	return m
}

// Handler 는 /metrics 노출 핸들러다.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry 는 내부 레지스트리다.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// ObserveRequest 는 HTTP 요청 한 건을 기록한다.
func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	m.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.duration.WithLabelValues(method, route).Observe(elapsed.Seconds())
	atomic.AddInt64(&m.totalRequests, 1)
	if status >= http.StatusInternalServerError {
		atomic.AddInt64(&m.totalErrors, 1)
	}
}

// RecordCacheLookup 는 결과 캐시 조회를 기록한다.
func (m *Metrics) RecordCacheLookup(kind string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(kind, result).Inc()
}

// RecordQuery 는 질의 한 건의 용어 수를 기록한다.
func (m *Metrics) RecordQuery(tokens int) {
	m.queryTokens.Observe(float64(tokens))
	atomic.AddInt64(&m.totalQueries, 1)
}

// RecordIndex 는 색인 재로드 결과를 기록한다.
func (m *Metrics) RecordIndex(documents, terms int, generation uint64, err error) {
	if err != nil {
		m.indexReloads.WithLabelValues("error").Inc()
		return
	}
	m.indexReloads.WithLabelValues("ok").Inc()
	m.indexDocs.Set(float64(documents))
	m.indexTerms.Set(float64(terms))
	m.indexGen.Set(float64(generation))
}

// Snapshot 는 누적 통계다.
func (m *Metrics) Snapshot() map[string]float64 {
	return map[string]float64{
		"total_requests": float64(atomic.LoadInt64(&m.totalRequests)),
		"total_errors":   float64(atomic.LoadInt64(&m.totalErrors)),
		"total_queries":  float64(atomic.LoadInt64(&m.totalQueries)),
	}
}
