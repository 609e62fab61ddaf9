package queue

import (
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"github.com/YY-OhioU/Passport-Generator/internal/config"
)

// Config configuración para la cola de trabajos
type Config struct {
	RedisOpt asynq.RedisConnOpt

	// Concurrency jobs simultáneos por worker; una corrida es secuencial
	Concurrency int
	Queue       string

	MaxRetries int
	Timeout    time.Duration
	Retention  time.Duration
}

// LoadConfig carga configuración desde config principal
func LoadConfig(cfg *config.Config) (*Config, error) {
	opt, err := RedisOpt(cfg.Redis.URL, cfg.Redis.Password)
	if err != nil {
		return nil, err
	}

	return &Config{
		RedisOpt:    opt,
		Concurrency: cfg.Queue.Concurrency,
		Queue:       cfg.Queue.Name,
		MaxRetries:  MaxRetries,
		Timeout:     30 * time.Minute,
		Retention:   24 * time.Hour, // Retener info por 24h
	}, nil
}

// RedisOpt convierte la URL de Redis en opciones de asynq
func RedisOpt(url, password string) (asynq.RedisConnOpt, error) {
	opt, err := asynq.ParseRedisURI(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	if rc, ok := opt.(asynq.RedisClientOpt); ok && password != "" {
		rc.Password = password
		opt = rc
	}
	return opt, nil
}

// NewClient crea un cliente Asynq para encolar jobs
func NewClient(cfg *Config) *asynq.Client {
	return asynq.NewClient(cfg.RedisOpt)
}

// NewServer crea un servidor Asynq para procesar jobs de generación
func NewServer(cfg *Config, retry *RetryPolicy) *asynq.Server {
	return asynq.NewServer(
		cfg.RedisOpt,
		asynq.Config{
			Concurrency: cfg.Concurrency,
			Queues: map[string]int{
				cfg.Queue: 1,
			},
			RetryDelayFunc: retry.RetryDelayFunc(),
			LogLevel:       asynq.InfoLevel,
		},
	)
}
