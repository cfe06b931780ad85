package service

import (
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for the API and
// the evaluation pipeline.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	pipelineSteps   *prometheus.CounterVec
	modelLatency    *prometheus.HistogramVec
}

// NewMetricsService registers core Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	pipelineSteps := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "evaluation_pipeline_steps_total",
		Help: "Pipeline steps executed, labeled by step and outcome",
	}, []string{"step", "outcome"})

	modelLatency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "model_request_duration_seconds",
		Help:    "Latency of chat completion calls",
		Buckets: []float64{0.5, 1, 2.5, 5, 10, 20, 40, 60},
	}, []string{"operation"})

	registry.MustRegister(requestDuration, requestTotal, pipelineSteps, modelLatency)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		pipelineSteps:   pipelineSteps,
		modelLatency:    modelLatency,
	}
}

// RegisterDBStats exposes connection pool statistics for the database.
func (s *MetricsService) RegisterDBStats(db *sql.DB, name string) {
	s.registry.MustRegister(collectors.NewDBStatsCollector(db, name))
}

// Handler exposes the /metrics endpoint.
func (s *MetricsService) Handler() http.Handler {
	return s.handler
}

// ObserveHTTPRequest records one served request.
func (s *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	labels := []string{method, path, fmt.Sprintf("%d", status)}
	s.requestDuration.WithLabelValues(labels...).Observe(duration.Seconds())
	s.requestTotal.WithLabelValues(labels...).Inc()
}

// ObservePipelineStep counts one pipeline step execution.
func (s *MetricsService) ObservePipelineStep(step string, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	s.pipelineSteps.WithLabelValues(step, outcome).Inc()
}

// ObserveModelRequest records a chat completion latency.
func (s *MetricsService) ObserveModelRequest(operation string, duration time.Duration) {
	s.modelLatency.WithLabelValues(operation).Observe(duration.Seconds())
}
