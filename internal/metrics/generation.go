package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Etapas de la generación de una muestra
const (
	StageSynthesize = "synthesize"
	StageCompose    = "compose"
	StageAugment    = "augment"
	StageSave       = "save"
	StageEmit       = "emit"
)

// Generation metrics - Métricas de generación del dataset
var (
	// SamplesGeneratedTotal contador de muestras completas (imagen + línea)
	SamplesGeneratedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "passportgen_samples_generated_total",
			Help: "Total number of samples written with their ground truth line",
		},
	)

	// FieldsRenderedTotal campos por estado: drawn o empty
	FieldsRenderedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "passportgen_fields_rendered_total",
			Help: "Total number of template fields processed by state",
		},
		[]string{"state"},
	)

	// StageDurationSeconds histograma de duración por etapa
	StageDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "passportgen_stage_duration_seconds",
			Help:    "Duration of each generation stage in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"stage"},
	)

	// GenerationErrorsTotal errores que abortaron una corrida, por etapa
	GenerationErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "passportgen_generation_errors_total",
			Help: "Total number of errors that aborted a run by stage",
		},
		[]string{"stage"},
	)

	// RunsTotal corridas por resultado: completed, failed, cancelled
	RunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "passportgen_runs_total",
			Help: "Total number of generation runs by status",
		},
		[]string{"status"},
	)
)

// RecordStage registra la duración de una etapa iniciada en start
func RecordStage(stage string, start time.Time) {
	StageDurationSeconds.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}

// RecordFields cuenta campos dibujados y vacíos de una muestra
func RecordFields(drawn, empty int) {
	FieldsRenderedTotal.WithLabelValues("drawn").Add(float64(drawn))
	FieldsRenderedTotal.WithLabelValues("empty").Add(float64(empty))
}

// RecordError cuenta un error de la etapa dada
func RecordError(stage string) {
	GenerationErrorsTotal.WithLabelValues(stage).Inc()
}

// WriteTextfile vuelca todas las métricas registradas en formato de texto
// (node_exporter textfile collector)
func WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, prometheus.DefaultGatherer)
}
