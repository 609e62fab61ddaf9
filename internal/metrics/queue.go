package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Queue metrics - Métricas de la cola de trabajos
var (
	// JobsEnqueuedTotal contador total de jobs encolados
	JobsEnqueuedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "passportgen_jobs_enqueued_total",
			Help: "Total number of jobs enqueued by type",
		},
		[]string{"type"},
	)

	// JobsCompletedTotal contador total de jobs completados
	JobsCompletedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "passportgen_jobs_completed_total",
			Help: "Total number of jobs completed successfully by type",
		},
		[]string{"type"},
	)

	// JobsFailedTotal contador total de jobs fallidos
	JobsFailedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "passportgen_jobs_failed_total",
			Help: "Total number of jobs failed by type and reason",
		},
		[]string{"type", "reason"},
	)

	// JobDurationSeconds histograma de duración de jobs
	JobDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "passportgen_job_duration_seconds",
			Help:    "Job processing duration in seconds",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600}, // 1s a 10min
		},
		[]string{"type"},
	)
)

// RecordJobEnqueued registra un job encolado
func RecordJobEnqueued(jobType string) {
	JobsEnqueuedTotal.WithLabelValues(jobType).Inc()
}

// RecordJobCompleted registra un job completado con su duración
func RecordJobCompleted(jobType string, seconds float64) {
	JobsCompletedTotal.WithLabelValues(jobType).Inc()
	JobDurationSeconds.WithLabelValues(jobType).Observe(seconds)
}

// RecordJobFailed registra un job fallido
func RecordJobFailed(jobType, reason string) {
	JobsFailedTotal.WithLabelValues(jobType, reason).Inc()
}
