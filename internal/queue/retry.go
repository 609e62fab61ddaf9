package queue

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"github.com/hibiken/asynq"

	"github.com/YY-OhioU/Passport-Generator/internal/storage"
	"github.com/YY-OhioU/Passport-Generator/internal/template"
	"github.com/YY-OhioU/Passport-Generator/pkg/logger"
)

const (
	// Configuración de reintentos
	MaxRetries           = 3
	InitialRetryDelay    = 30 * time.Second
	MaxRetryDelay        = 30 * time.Minute
	RetryDelayMultiplier = 2.0
)

// ErrInvalidPayload payload que nunca podrá procesarse
var ErrInvalidPayload = errors.New("invalid payload")

// RetryPolicy define la política de reintentos
type RetryPolicy struct {
	MaxRetries   int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
	logger       *logger.Logger
}

// NewRetryPolicy crea una nueva política de reintentos
func NewRetryPolicy(log *logger.Logger) *RetryPolicy {
	return &RetryPolicy{
		MaxRetries:   MaxRetries,
		InitialDelay: InitialRetryDelay,
		MaxDelay:     MaxRetryDelay,
		Multiplier:   RetryDelayMultiplier,
		logger:       log,
	}
}

// ComputeRetryDelay backoff exponencial con jitter de ±20%
func (rp *RetryPolicy) ComputeRetryDelay(attempt int) time.Duration {
	if attempt <= 0 {
		return rp.InitialDelay
	}

	delay := time.Duration(float64(rp.InitialDelay) * math.Pow(rp.Multiplier, float64(attempt)))
	delay += time.Duration(float64(delay) * 0.2 * (2*rand.Float64() - 1))

	if delay > rp.MaxDelay {
		delay = rp.MaxDelay
	}
	return delay
}

// IsPermanent errores que no mejoran reintentando: assets inválidos,
// directorio de salida ocupado o payload corrupto.
func IsPermanent(err error) bool {
	return errors.Is(err, template.ErrAsset) ||
		errors.Is(err, storage.ErrOutputNotEmpty) ||
		errors.Is(err, ErrInvalidPayload)
}

// Classify marca los errores permanentes con asynq.SkipRetry
func (rp *RetryPolicy) Classify(err error) error {
	if err == nil || !IsPermanent(err) {
		return err
	}
	rp.logger.Warnw("Permanent error, not retrying", "error", err.Error())
	return fmt.Errorf("%w: %w", err, asynq.SkipRetry)
}

// RetryDelayFunc función de delay para Asynq
func (rp *RetryPolicy) RetryDelayFunc() asynq.RetryDelayFunc {
	return func(n int, err error, task *asynq.Task) time.Duration {
		delay := rp.ComputeRetryDelay(n)
		rp.logger.Infow("Scheduling retry",
			"task_type", task.Type(),
			"attempt", n+1,
			"delay", delay,
			"error", err.Error(),
		)
		return delay
	}
}
