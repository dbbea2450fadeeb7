package observability

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/yungbote/tutor-backend/internal/platform/envutil"
	"github.com/yungbote/tutor-backend/internal/platform/logger"
)

// Metrics owns the process registry. All methods are nil-safe so callers can
// hold a nil *Metrics when METRICS_ENABLED=false.
type Metrics struct {
	registry *prometheus.Registry

	apiRequests *prometheus.CounterVec
	apiLatency  *prometheus.HistogramVec
	apiInflight prometheus.Gauge

	llmRequests *prometheus.CounterVec
	llmLatency  *prometheus.HistogramVec
	llmTokens   *prometheus.CounterVec

	aggregateOps       *prometheus.HistogramVec
	aggregateConflicts *prometheus.CounterVec
	aggregateRetries   *prometheus.CounterVec

	poolInflight  *prometheus.GaugeVec
	poolSaturated *prometheus.CounterVec
	poolWait      *prometheus.HistogramVec

	busPublished *prometheus.CounterVec
	degraded     *prometheus.CounterVec

	redisUp   prometheus.Gauge
	redisPing prometheus.Gauge
}

var (
	initOnce sync.Once
	instance *Metrics
)

func Enabled() bool {
	return envutil.Bool("METRICS_ENABLED", true)
}

func Current() *Metrics {
	return instance
}

func scrapeInterval() time.Duration {
	return envutil.Duration("METRICS_SCRAPE_INTERVAL", 10*time.Second)
}

// Init builds the process-wide metrics once. Returns nil when disabled.
func Init(log *logger.Logger) *Metrics {
	if !Enabled() {
		return nil
	}
	initOnce.Do(func() {
		instance = New()
		if log != nil {
			log.Info("metrics enabled")
		}
	})
	return instance
}

// New builds an independent registry. Tests use it directly.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		apiRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tutor_api_requests_total",
			Help: "Total API requests by method/route/status.",
		}, []string{"method", "route", "status"}),
		apiLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "tutor_api_request_duration_seconds",
			Help:    "API request latency in seconds by method/route/status.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		}, []string{"method", "route", "status"}),
		apiInflight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "tutor_api_inflight_requests",
			Help: "In-flight API requests.",
		}),
		llmRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tutor_llm_requests_total",
			Help: "LLM requests by model/operation/status.",
		}, []string{"model", "operation", "status"}),
		llmLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "tutor_llm_request_duration_seconds",
			Help:    "LLM request latency in seconds by model/operation/status.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60, 120},
		}, []string{"model", "operation", "status"}),
		llmTokens: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tutor_llm_tokens_total",
			Help: "LLM tokens by model/direction.",
		}, []string{"model", "direction"}),
		aggregateOps: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "tutor_aggregate_operation_duration_seconds",
			Help:    "Document write duration by operation/status.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		}, []string{"operation", "status"}),
		aggregateConflicts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tutor_aggregate_conflicts_total",
			Help: "Version conflicts on guarded document writes.",
		}, []string{"operation"}),
		aggregateRetries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tutor_aggregate_retries_total",
			Help: "Retried guarded document writes.",
		}, []string{"operation"}),
		poolInflight: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "tutor_worker_pool_inflight",
			Help: "Tasks currently holding a worker pool slot.",
		}, []string{"pool"}),
		poolSaturated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tutor_worker_pool_saturated_total",
			Help: "Submissions rejected or delayed because the pool was full.",
		}, []string{"pool", "mode"}),
		poolWait: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "tutor_worker_pool_wait_seconds",
			Help:    "Time spent waiting for a worker pool slot.",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}, []string{"pool"}),
		busPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tutor_activity_bus_published_total",
			Help: "Activity events published by bus/status.",
		}, []string{"bus", "status"}),
		degraded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tutor_degraded_items_total",
			Help: "Items skipped by degraded read paths.",
		}, []string{"path"}),
		redisUp: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "tutor_redis_up",
			Help: "Whether the last redis ping succeeded.",
		}),
		redisPing: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "tutor_redis_ping_seconds",
			Help: "Latency of the last redis ping.",
		}),
	}
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.apiRequests, m.apiLatency, m.apiInflight,
		m.llmRequests, m.llmLatency, m.llmTokens,
		m.aggregateOps, m.aggregateConflicts, m.aggregateRetries,
		m.poolInflight, m.poolSaturated, m.poolWait,
		m.busPublished, m.degraded,
		m.redisUp, m.redisPing,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func orUnknown(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return "unknown"
	}
	return v
}

func (m *Metrics) ObserveAPI(method, route, status string, dur time.Duration) {
	if m == nil {
		return
	}
	method = orUnknown(method)
	route = orUnknown(route)
	if status == "" {
		status = "0"
	}
	m.apiRequests.WithLabelValues(method, route, status).Inc()
	m.apiLatency.WithLabelValues(method, route, status).Observe(dur.Seconds())
}

func (m *Metrics) ApiInflightInc() {
	if m == nil {
		return
	}
	m.apiInflight.Inc()
}

func (m *Metrics) ApiInflightDec() {
	if m == nil {
		return
	}
	m.apiInflight.Dec()
}

func (m *Metrics) ObserveLLMRequest(model, operation, status string, dur time.Duration, inputTokens, outputTokens int) {
	if m == nil {
		return
	}
	model = orUnknown(model)
	operation = orUnknown(operation)
	status = orUnknown(status)
	m.llmRequests.WithLabelValues(model, operation, status).Inc()
	if dur > 0 {
		m.llmLatency.WithLabelValues(model, operation, status).Observe(dur.Seconds())
	}
	if inputTokens > 0 {
		m.llmTokens.WithLabelValues(model, "input").Add(float64(inputTokens))
	}
	if outputTokens > 0 {
		m.llmTokens.WithLabelValues(model, "output").Add(float64(outputTokens))
	}
}

func (m *Metrics) ObserveAggregateOperation(name, status string, dur time.Duration) {
	if m == nil {
		return
	}
	m.aggregateOps.WithLabelValues(orUnknown(name), orUnknown(status)).Observe(dur.Seconds())
}

func (m *Metrics) IncAggregateConflict(name string) {
	if m == nil {
		return
	}
	m.aggregateConflicts.WithLabelValues(orUnknown(name)).Inc()
}

func (m *Metrics) IncAggregateRetry(name string) {
	if m == nil {
		return
	}
	m.aggregateRetries.WithLabelValues(orUnknown(name)).Inc()
}

func (m *Metrics) PoolAcquired(pool string, wait time.Duration) {
	if m == nil {
		return
	}
	pool = orUnknown(pool)
	m.poolInflight.WithLabelValues(pool).Inc()
	m.poolWait.WithLabelValues(pool).Observe(wait.Seconds())
}

func (m *Metrics) PoolReleased(pool string) {
	if m == nil {
		return
	}
	m.poolInflight.WithLabelValues(orUnknown(pool)).Dec()
}

// PoolSaturated counts a submission that found the pool full. mode is
// "rejected" for fail-fast submits and "blocked" for waiting ones.
func (m *Metrics) PoolSaturated(pool, mode string) {
	if m == nil {
		return
	}
	m.poolSaturated.WithLabelValues(orUnknown(pool), orUnknown(mode)).Inc()
}

func (m *Metrics) IncBusPublished(bus, status string) {
	if m == nil {
		return
	}
	m.busPublished.WithLabelValues(orUnknown(bus), orUnknown(status)).Inc()
}

func (m *Metrics) IncDegraded(path string) {
	if m == nil {
		return
	}
	m.degraded.WithLabelValues(orUnknown(path)).Inc()
}

// RegisterDBStats exports database/sql pool statistics for db.
func (m *Metrics) RegisterDBStats(log *logger.Logger, db *gorm.DB, name string) {
	if m == nil || db == nil {
		return
	}
	sqlDB, err := db.DB()
	if err != nil {
		if log != nil {
			log.Warn("metrics: db stats unavailable", "error", err)
		}
		return
	}
	if err := m.registry.Register(collectors.NewDBStatsCollector(sqlDB, orUnknown(name))); err != nil && log != nil {
		log.Warn("metrics: register db stats failed", "error", err)
	}
}

// StartRedisCollector pings rdb on the scrape interval until ctx ends.
func (m *Metrics) StartRedisCollector(ctx context.Context, log *logger.Logger, rdb redis.UniversalClient) {
	if m == nil || rdb == nil {
		return
	}
	interval := scrapeInterval()
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				start := time.Now()
				if err := rdb.Ping(ctx).Err(); err != nil {
					m.redisUp.Set(0)
					if log != nil {
						log.Warn("metrics: redis ping failed", "error", err)
					}
					continue
				}
				m.redisUp.Set(1)
				m.redisPing.Set(time.Since(start).Seconds())
			}
		}
	}()
}
