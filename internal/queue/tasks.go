package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/YY-OhioU/Passport-Generator/internal/metrics"
	"github.com/YY-OhioU/Passport-Generator/pkg/logger"
)

// TypeDatasetGenerate genera un dataset completo en un directorio
const TypeDatasetGenerate = "dataset:generate"

// JobStatus estados de un job
type JobStatus string

const (
	StatusPending    JobStatus = "pending"
	StatusProcessing JobStatus = "processing"
	StatusCompleted  JobStatus = "completed"
	StatusFailed     JobStatus = "failed"
)

// GeneratePayload payload para jobs de generación
type GeneratePayload struct {
	JobID     string    `json:"job_id"`
	OutputDir string    `json:"output_dir"`
	Count     int       `json:"count"`
	Template  string    `json:"template,omitempty"`
	Seed      uint64    `json:"seed,omitempty"`
	Augment   bool      `json:"augment"`
	Debug     bool      `json:"debug"`
	MRZ       bool      `json:"mrz"`
	Format    string    `json:"format,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Validate rechaza payloads que nunca podrán procesarse
func (p *GeneratePayload) Validate() error {
	if p.JobID == "" {
		return fmt.Errorf("%w: job_id is required", ErrInvalidPayload)
	}
	if p.OutputDir == "" {
		return fmt.Errorf("%w: output_dir is required", ErrInvalidPayload)
	}
	if p.Count < 0 {
		return fmt.Errorf("%w: count must not be negative", ErrInvalidPayload)
	}
	return nil
}

// JobResult resultado de un job procesado
type JobResult struct {
	JobID       string            `json:"job_id"`
	Status      JobStatus         `json:"status"`
	ResultPath  string            `json:"result_path,omitempty"`
	Count       int               `json:"count"`
	Error       string            `json:"error,omitempty"`
	Duration    time.Duration     `json:"duration"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	CompletedAt time.Time         `json:"completed_at"`
}

// NewGenerateTask construye la tarea asynq. Asigna JobID si falta.
func NewGenerateTask(p *GeneratePayload) (*asynq.Task, error) {
	if p.JobID == "" {
		p.JobID = uuid.NewString()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}

	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}
	return asynq.NewTask(TypeDatasetGenerate, data), nil
}

// ParseGeneratePayload decodifica y valida el payload de una tarea
func ParseGeneratePayload(t *asynq.Task) (*GeneratePayload, error) {
	var p GeneratePayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// Client wrapper para Asynq client con métodos helper
type Client struct {
	asynqClient *asynq.Client
	config      *Config
	logger      *logger.Logger
}

// NewQueueClient crea un nuevo cliente de cola
func NewQueueClient(cfg *Config, log *logger.Logger) *Client {
	return &Client{
		asynqClient: NewClient(cfg),
		config:      cfg,
		logger:      log,
	}
}

// EnqueueGenerate encola un job de generación
func (c *Client) EnqueueGenerate(ctx context.Context, payload *GeneratePayload) (*asynq.TaskInfo, error) {
	task, err := NewGenerateTask(payload)
	if err != nil {
		return nil, err
	}

	info, err := c.asynqClient.EnqueueContext(ctx, task,
		asynq.Queue(c.config.Queue),
		asynq.MaxRetry(c.config.MaxRetries),
		asynq.Timeout(c.config.Timeout),
		asynq.TaskID(payload.JobID),
		asynq.Retention(c.config.Retention),
	)
	if err != nil {
		c.logger.Errorw("Failed to enqueue generation job",
			"job_id", payload.JobID,
			"error", err,
		)
		return nil, fmt.Errorf("failed to enqueue task: %w", err)
	}

	c.logger.Infow("📥 Generation job enqueued",
		"job_id", payload.JobID,
		"queue", info.Queue,
		"count", payload.Count,
		"output_dir", payload.OutputDir,
	)

	metrics.RecordJobEnqueued(TypeDatasetGenerate)

	return info, nil
}

// Close cierra el cliente
func (c *Client) Close() error {
	return c.asynqClient.Close()
}
