package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	Namespace = "link_checker"

	ServiceSubsystem  = "service"
	PipelineSubsystem = "pipeline"
)

// Общие метрики для всех сервисов.
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"service", "method", "endpoint", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "endpoint"},
	)
)

// Метрики сервиса проверки.
var (
	ProbeRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: ServiceSubsystem,
			Name:      "probe_requests_total",
			Help:      "Total number of outbound reachability probes",
		},
		[]string{"method", "outcome"},
	)

	ProbeDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Subsystem: ServiceSubsystem,
			Name:      "probe_duration_seconds",
			Help:      "Outbound probe duration in seconds",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 15, 25},
		},
		[]string{"method"},
	)

	CacheLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: ServiceSubsystem,
			Name:      "cache_lookups_total",
			Help:      "Total number of probe result cache lookups",
		},
		[]string{"result"},
	)
)

// Метрики конвейера проверки.
var (
	LinkChecksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: PipelineSubsystem,
			Name:      "link_checks_total",
			Help:      "Total number of link checks by media type and result",
		},
		[]string{"link_type", "status"},
	)

	LinkCheckDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Subsystem: PipelineSubsystem,
			Name:      "link_check_duration_seconds",
			Help:      "Link check duration in seconds (p50, p95, p99)",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 15, 30},
		},
		[]string{"link_type"},
	)

	BatchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Subsystem: PipelineSubsystem,
			Name:      "batch_duration_seconds",
			Help:      "Duration of one batch join in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 15, 30, 60},
		},
	)

	ServiceOnline = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: Namespace,
			Subsystem: PipelineSubsystem,
			Name:      "checking_service_online",
			Help:      "1 if the last health probe of the checking service succeeded",
		},
	)
)

func RecordHTTPRequest(service, method, endpoint string, statusCode int, duration time.Duration) {
	status := "success"
	if statusCode >= 400 {
		status = "error"
	}

	HTTPRequestsTotal.WithLabelValues(service, method, endpoint, status).Inc()
	HTTPRequestDuration.WithLabelValues(service, method, endpoint).Observe(duration.Seconds())
}

func RecordProbe(method, outcome string, duration time.Duration) {
	ProbeRequestsTotal.WithLabelValues(method, outcome).Inc()
	ProbeDuration.WithLabelValues(method).Observe(duration.Seconds())
}

func RecordCacheLookup(result string) {
	CacheLookupsTotal.WithLabelValues(result).Inc()
}

func RecordLinkCheck(linkType, status string, duration time.Duration) {
	LinkChecksTotal.WithLabelValues(linkType, status).Inc()
	LinkCheckDuration.WithLabelValues(linkType).Observe(duration.Seconds())
}

func RecordBatch(duration time.Duration) {
	BatchDuration.Observe(duration.Seconds())
}

func SetServiceOnline(online bool) {
	if online {
		ServiceOnline.Set(1)
		return
	}

	ServiceOnline.Set(0)
}
