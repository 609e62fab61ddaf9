package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/YY-OhioU/Passport-Generator/internal/config"
	"github.com/YY-OhioU/Passport-Generator/internal/metrics"
	"github.com/YY-OhioU/Passport-Generator/internal/queue"
	"github.com/YY-OhioU/Passport-Generator/pkg/logger"
)

const workerName = "dataset"

func main() {
	// Cargar configuración
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	// Inicializar logger
	logger := logger.New(cfg.Log.Level, cfg.Log.Format)
	defer logger.Sync()

	logger.Infow("🛂 Starting dataset worker",
		"queue", cfg.Queue.Name,
		"concurrency", cfg.Queue.Concurrency,
		"template", cfg.Assets.Template,
	)

	// Configurar cola
	queueConfig, err := queue.LoadConfig(cfg)
	if err != nil {
		logger.Fatalw("Invalid queue configuration", "error", err)
	}
	retry := queue.NewRetryPolicy(logger)
	server := queue.NewServer(queueConfig, retry)

	// Estado de jobs en el mismo Redis
	redisOpts, err := redis.ParseURL(cfg.Redis.URL)
	if err != nil {
		logger.Fatalw("Invalid redis url", "error", err)
	}
	if cfg.Redis.Password != "" {
		redisOpts.Password = cfg.Redis.Password
	}
	redisClient := redis.NewClient(redisOpts)
	defer redisClient.Close()

	handler := &GenerateHandler{
		logger: logger,
		config: cfg,
		status: queue.NewJobStatusStore(redisClient, logger),
		retry:  retry,
	}

	// Registrar task handlers
	mux := asynq.NewServeMux()
	mux.HandleFunc(queue.TypeDatasetGenerate, handler.HandleGenerate)

	// Graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	metrics.SetWorkerConcurrency(workerName, queueConfig.Concurrency)

	go func() {
		logger.Infow("🚀 Dataset worker started", "concurrency", queueConfig.Concurrency)
		if err := server.Run(mux); err != nil {
			logger.Errorw("Dataset worker failed", "error", err)
			metrics.RecordWorkerError(workerName, "server_error")
			done <- syscall.SIGTERM
		}
	}()

	// Esperar señal de shutdown
	<-done
	logger.Infow("🛑 Shutting down dataset worker...")

	server.Shutdown()
	logger.Infow("✅ Dataset worker stopped")
}
