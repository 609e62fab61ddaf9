package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Worker metrics - Métricas del worker de datasets
var (
	// WorkerJobsProcessedTotal jobs procesados por estado
	WorkerJobsProcessedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "passportgen_worker_jobs_processed_total",
			Help: "Total number of jobs processed by the worker by status",
		},
		[]string{"worker", "status"},
	)

	// WorkerErrorsTotal errores del worker por tipo
	WorkerErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "passportgen_worker_errors_total",
			Help: "Total number of worker errors by type",
		},
		[]string{"worker", "error_type"},
	)

	// WorkerActiveJobs jobs en curso
	WorkerActiveJobs = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "passportgen_worker_active_jobs",
			Help: "Number of jobs currently being processed",
		},
		[]string{"worker"},
	)

	// WorkerConcurrency límite de concurrencia configurado
	WorkerConcurrency = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "passportgen_worker_concurrency_limit",
			Help: "Configured concurrency limit of the worker",
		},
		[]string{"worker"},
	)
)

// RecordWorkerJobProcessed registra un job terminado
func RecordWorkerJobProcessed(worker, status string) {
	WorkerJobsProcessedTotal.WithLabelValues(worker, status).Inc()
}

// RecordWorkerError registra un error del worker
func RecordWorkerError(worker, errorType string) {
	WorkerErrorsTotal.WithLabelValues(worker, errorType).Inc()
}

// SetWorkerActiveJobs actualiza los jobs en curso
func SetWorkerActiveJobs(worker string, count int) {
	WorkerActiveJobs.WithLabelValues(worker).Set(float64(count))
}

// SetWorkerConcurrency publica el límite de concurrencia
func SetWorkerConcurrency(worker string, limit int) {
	WorkerConcurrency.WithLabelValues(worker).Set(float64(limit))
}
