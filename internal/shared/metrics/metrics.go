package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "hr_analytics"

var (
	registerOnce sync.Once

	requestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	requestTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	predictionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "retention",
			Name:      "predictions_total",
			Help:      "Attrition predictions by outcome.",
		},
		[]string{"outcome"},
	)

	stageTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "stage_runs_total",
			Help:      "Resume pipeline stage runs by stage and outcome.",
		},
		[]string{"stage", "outcome"},
	)

	stageDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "stage_duration_seconds",
			Help:      "Resume pipeline stage duration in seconds.",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120, 300},
		},
		[]string{"stage"},
	)

	queueMessages = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "worker",
			Name:      "queue_messages_total",
			Help:      "Queue messages handled by the worker, by result.",
		},
		[]string{"result"},
	)
)

func register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(requestDuration, requestTotal, predictionsTotal, stageTotal, stageDuration, queueMessages)
	})
}

// GinMiddleware records request counts and latency per route.
func GinMiddleware() gin.HandlerFunc {
	register()
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		labels := prometheus.Labels{
			"method": c.Request.Method,
			"path":   path,
			"status": strconv.Itoa(c.Writer.Status()),
		}
		requestDuration.With(labels).Observe(time.Since(start).Seconds())
		requestTotal.With(labels).Inc()
	}
}

// IncPrediction counts a prediction with outcome "ok" or "error".
func IncPrediction(outcome string) {
	register()
	predictionsTotal.WithLabelValues(outcome).Inc()
}

// ObserveStage records one run of a pipeline stage.
func ObserveStage(stage string, started time.Time, err error) {
	register()
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	stageTotal.WithLabelValues(stage, outcome).Inc()
	stageDuration.WithLabelValues(stage).Observe(time.Since(started).Seconds())
}

// IncQueueMessage counts a worker message: received, completed, skipped or unrecoverable.
func IncQueueMessage(result string) {
	register()
	queueMessages.WithLabelValues(result).Inc()
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	register()
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
