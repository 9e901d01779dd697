package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP 请求延迟（秒）
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"method", "path", "status"},
	)

	// 数据库查询延迟（秒）
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"operation", "table"},
	)

	// 慢查询计数
	SlowQueryCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "db_slow_query_count",
			Help: "Total number of queries slower than the configured threshold",
		},
		[]string{"statement"},
	)

	// MQ 消费延迟（毫秒）
	MQConsumeLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mq_consume_latency_ms",
			Help:    "MQ message consumption latency in milliseconds",
			Buckets: prometheus.ExponentialBuckets(10, 2, 10), // 10ms to ~10s
		},
		[]string{"routing_key", "queue"},
	)

	// 统计计算耗时（秒）
	AnalyticsComputeDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "analytics_compute_duration_seconds",
			Help:    "Time spent deriving analytics views from a snapshot",
			Buckets: prometheus.ExponentialBuckets(0.0001, 2, 14), // 0.1ms to ~1.6s
		},
		[]string{"view"}, // view: focus, report, streak
	)

	// 打卡计数
	HabitLogCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "habit_log_count",
			Help: "Total number of habit logs recorded",
		},
		[]string{"status"}, // status: completed, skipped, failed
	)

	// 习惯变更计数
	HabitChangeCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "habit_change_count",
			Help: "Total number of habits created or archived",
		},
		[]string{"action"}, // action: created, archived
	)

	// 快照缓存命中
	SnapshotCacheCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "snapshot_cache_count",
			Help: "Snapshot cache lookups by result",
		},
		[]string{"result"}, // result: hit, miss, error
	)
)

// RecordHTTPRequestDuration 记录 HTTP 请求延迟
func RecordHTTPRequestDuration(method, path, status string, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// RecordDBQueryDuration 记录数据库查询延迟
func RecordDBQueryDuration(operation, table string, duration time.Duration) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
}

// IncrementSlowQuery 记录慢查询
func IncrementSlowQuery(statement string, duration time.Duration) {
	SlowQueryCount.WithLabelValues(statement).Inc()
	DBQueryDuration.WithLabelValues("slow", "unknown").Observe(duration.Seconds())
}

// RecordMQConsumeLatency 记录 MQ 消费延迟
func RecordMQConsumeLatency(routingKey, queue string, duration time.Duration) {
	MQConsumeLatency.WithLabelValues(routingKey, queue).Observe(float64(duration.Milliseconds()))
}

// RecordAnalyticsCompute 记录统计计算耗时
func RecordAnalyticsCompute(view string, duration time.Duration) {
	AnalyticsComputeDuration.WithLabelValues(view).Observe(duration.Seconds())
}

// IncrementHabitLog 增加打卡计数
func IncrementHabitLog(status string) {
	HabitLogCount.WithLabelValues(status).Inc()
}

// IncrementHabitChange 增加习惯变更计数
func IncrementHabitChange(action string) {
	HabitChangeCount.WithLabelValues(action).Inc()
}

// IncrementSnapshotCache 记录缓存查询结果
func IncrementSnapshotCache(result string) {
	SnapshotCacheCount.WithLabelValues(result).Inc()
}

// OutboxEventCount outbox 发布结果
var OutboxEventCount = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "outbox_event_count",
		Help: "Outbox events by publish result",
	},
	[]string{"result"}, // result: sent, failed
)

// IncrementOutboxEvent 记录 outbox 发布结果
func IncrementOutboxEvent(result string) {
	OutboxEventCount.WithLabelValues(result).Inc()
}
