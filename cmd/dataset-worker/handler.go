package main

import (
	"context"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"github.com/YY-OhioU/Passport-Generator/internal/config"
	"github.com/YY-OhioU/Passport-Generator/internal/metrics"
	"github.com/YY-OhioU/Passport-Generator/internal/pipeline"
	"github.com/YY-OhioU/Passport-Generator/internal/queue"
	"github.com/YY-OhioU/Passport-Generator/internal/storage"
	"github.com/YY-OhioU/Passport-Generator/pkg/logger"
)

// GenerateHandler procesa jobs de generación de datasets
type GenerateHandler struct {
	logger *logger.Logger
	config *config.Config
	status *queue.JobStatusStore // nil = sin seguimiento de estado
	retry  *queue.RetryPolicy
}

// HandleGenerate corre una generación completa con los parámetros del job
func (h *GenerateHandler) HandleGenerate(ctx context.Context, task *asynq.Task) error {
	start := time.Now()

	payload, err := queue.ParseGeneratePayload(task)
	if err != nil {
		h.logger.WithError(err).Errorw("Failed to parse generation payload")
		metrics.RecordWorkerError(workerName, "invalid_payload")
		return h.retry.Classify(err)
	}

	log := h.logger.WithFields(map[string]interface{}{"job_id": payload.JobID})
	log.Infow("Processing generation job",
		"output_dir", payload.OutputDir,
		"count", payload.Count,
	)

	cfg := h.jobConfig(payload)
	if err := cfg.Validate(); err != nil {
		return h.fail(ctx, log, payload, start, fmt.Errorf("%w: %v", queue.ErrInvalidPayload, err), "invalid_config")
	}

	metrics.SetWorkerActiveJobs(workerName, 1)
	defer metrics.SetWorkerActiveJobs(workerName, 0)

	h.saveStatus(ctx, log, &queue.JobResult{JobID: payload.JobID, Status: queue.StatusProcessing})

	progress := func(done, total int) {
		if h.status == nil {
			return
		}
		if err := h.status.UpdateJobProgress(ctx, payload.JobID, done, total); err != nil {
			log.WithError(err).Warnw("Failed to update job progress")
		}
	}

	result, err := pipeline.Run(ctx, cfg, log, pipeline.WithProgress(progress))
	if err != nil {
		return h.fail(ctx, log, payload, start, err, "generation_error")
	}

	duration := time.Since(start)
	h.saveStatus(ctx, log, &queue.JobResult{
		JobID:       payload.JobID,
		Status:      queue.StatusCompleted,
		ResultPath:  result.GroundTruthPath,
		Count:       result.Count,
		Duration:    duration,
		Metadata:    map[string]string{"run_id": result.RunID},
		CompletedAt: time.Now(),
	})

	log.Infow("✅ Generation job completed",
		"run_id", result.RunID,
		"samples", result.Count,
		"duration", duration.String(),
	)

	metrics.RecordWorkerJobProcessed(workerName, "success")
	metrics.RecordJobCompleted(queue.TypeDatasetGenerate, duration.Seconds())
	return nil
}

// jobConfig copia la configuración del worker con los valores del job
func (h *GenerateHandler) jobConfig(p *queue.GeneratePayload) *config.Config {
	cfg := *h.config

	cfg.Output.Dir = p.OutputDir
	cfg.Output.Count = p.Count
	cfg.Output.RunKey = p.JobID
	if p.Template != "" {
		cfg.Assets.Template = storage.SanitizeFilename(p.Template)
	}
	if p.Seed != 0 {
		cfg.Seed = p.Seed
	}
	if p.Format != "" {
		cfg.Output.Format = p.Format
	}
	cfg.Augment.Enabled = p.Augment
	cfg.Render.Debug = p.Debug
	cfg.Synth.MRZ = p.MRZ

	return &cfg
}

func (h *GenerateHandler) fail(ctx context.Context, log *logger.Logger, p *queue.GeneratePayload, start time.Time, err error, reason string) error {
	log.WithError(err).Errorw("❌ Generation job failed")

	h.saveStatus(ctx, log, &queue.JobResult{
		JobID:       p.JobID,
		Status:      queue.StatusFailed,
		Error:       err.Error(),
		Duration:    time.Since(start),
		CompletedAt: time.Now(),
	})

	metrics.RecordWorkerJobProcessed(workerName, "failed")
	metrics.RecordWorkerError(workerName, reason)
	metrics.RecordJobFailed(queue.TypeDatasetGenerate, reason)

	return h.retry.Classify(err)
}

func (h *GenerateHandler) saveStatus(ctx context.Context, log *logger.Logger, r *queue.JobResult) {
	if h.status == nil {
		return
	}
	if err := h.status.SaveJobStatus(ctx, r); err != nil {
		log.WithError(err).Warnw("Failed to save job status")
	}
}
