package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/YY-OhioU/Passport-Generator/pkg/logger"
)

// ErrJobNotFound no hay estado guardado para el job
var ErrJobNotFound = errors.New("job not found")

// JobStatusStore almacena y recupera estado de jobs en Redis
type JobStatusStore struct {
	redis  *redis.Client
	logger *logger.Logger
	ttl    time.Duration // Time to live para jobs terminados
}

// NewJobStatusStore crea un nuevo store de status
func NewJobStatusStore(redisClient *redis.Client, log *logger.Logger) *JobStatusStore {
	return &JobStatusStore{
		redis:  redisClient,
		logger: log,
		ttl:    24 * time.Hour,
	}
}

func statusKey(jobID string) string {
	return fmt.Sprintf("job:status:%s", jobID)
}

// SaveJobStatus guarda el estado de un job
func (s *JobStatusStore) SaveJobStatus(ctx context.Context, result *JobResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal job result: %w", err)
	}

	if err := s.redis.Set(ctx, statusKey(result.JobID), data, s.ttl).Err(); err != nil {
		s.logger.Errorw("Failed to save job status",
			"job_id", result.JobID,
			"error", err,
		)
		return fmt.Errorf("failed to save job status: %w", err)
	}

	s.logger.Debugw("Job status saved",
		"job_id", result.JobID,
		"status", result.Status,
	)
	return nil
}

// GetJobStatus obtiene el estado de un job
func (s *JobStatusStore) GetJobStatus(ctx context.Context, jobID string) (*JobResult, error) {
	data, err := s.redis.Get(ctx, statusKey(jobID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: %s", ErrJobNotFound, jobID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get job status: %w", err)
	}

	var result JobResult
	if err := json.Unmarshal([]byte(data), &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal job result: %w", err)
	}
	return &result, nil
}

// UpdateJobProgress actualiza el progreso de un job
func (s *JobStatusStore) UpdateJobProgress(ctx context.Context, jobID string, done, total int) error {
	result, err := s.GetJobStatus(ctx, jobID)
	if err != nil {
		// Si el job no existe aún, crear uno nuevo con estado processing
		result = &JobResult{
			JobID:  jobID,
			Status: StatusProcessing,
		}
	}

	if result.Metadata == nil {
		result.Metadata = make(map[string]string)
	}
	result.Count = done
	result.Metadata["progress"] = fmt.Sprintf("%d/%d", done, total)

	return s.SaveJobStatus(ctx, result)
}

// DeleteJob elimina un job del store
func (s *JobStatusStore) DeleteJob(ctx context.Context, jobID string) error {
	if err := s.redis.Del(ctx, statusKey(jobID)).Err(); err != nil {
		return fmt.Errorf("failed to delete job: %w", err)
	}
	s.logger.Infow("Job deleted", "job_id", jobID)
	return nil
}
