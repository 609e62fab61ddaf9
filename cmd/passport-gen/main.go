package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/YY-OhioU/Passport-Generator/internal/config"
	"github.com/YY-OhioU/Passport-Generator/internal/pipeline"
	"github.com/YY-OhioU/Passport-Generator/internal/queue"
	"github.com/YY-OhioU/Passport-Generator/internal/storage"
	"github.com/YY-OhioU/Passport-Generator/pkg/logger"
)

// Códigos de salida
const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

func main() {
	os.Exit(run())
}

func run() int {
	// Cargar configuración
	cfg, err := config.Load()
	if err != nil {
		log.Printf("Error loading config: %v", err)
		return exitError
	}

	var enqueue bool
	flag.IntVar(&cfg.Output.Count, "n", cfg.Output.Count, "number of samples to generate")
	flag.StringVar(&cfg.Output.Dir, "o", cfg.Output.Dir, "output directory (must be missing or empty)")
	flag.BoolVar(&cfg.Render.Debug, "bbox", cfg.Render.Debug, "draw bounding boxes on the generated images")
	flag.BoolVar(&cfg.Augment.Enabled, "augment", cfg.Augment.Enabled, "apply random scale and rotation")
	flag.StringVar(&cfg.Assets.Template, "template", cfg.Assets.Template, "template name under <assets>/template")
	flag.Uint64Var(&cfg.Seed, "seed", cfg.Seed, "random seed (0 = not reproducible)")
	flag.BoolVar(&cfg.Synth.MRZ, "mrz", cfg.Synth.MRZ, "fill the machine readable zone lines")
	flag.StringVar(&cfg.Output.Format, "format", cfg.Output.Format, "image format: png, jpg or tiff")
	flag.BoolVar(&cfg.Output.Preview, "preview", cfg.Output.Preview, "write preview.pdf with every generated image")
	flag.BoolVar(&enqueue, "enqueue", false, "submit the run to the dataset worker instead of running it")
	flag.Parse()

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid arguments: %v\n", err)
		flag.Usage()
		return exitUsage
	}

	// Inicializar logger
	logger := logger.New(cfg.Log.Level, cfg.Log.Format)
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if enqueue {
		return submit(ctx, cfg, logger)
	}

	if err := storage.EnsureOutputDir(cfg.Output.Dir); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		if errors.Is(err, storage.ErrOutputNotEmpty) {
			return exitUsage
		}
		return exitError
	}

	start := time.Now()
	result, err := pipeline.Run(ctx, cfg, logger)
	if err != nil {
		logger.WithError(err).Errorw("❌ Generation failed")
		if errors.Is(err, storage.ErrOutputNotEmpty) {
			return exitUsage
		}
		return exitError
	}

	logger.Infow("✅ Done",
		"run_id", result.RunID,
		"samples", result.Count,
		"output", cfg.Output.Dir,
		"duration", time.Since(start).String(),
	)
	return exitOK
}

func submit(ctx context.Context, cfg *config.Config, log *logger.Logger) int {
	qcfg, err := queue.LoadConfig(cfg)
	if err != nil {
		log.WithError(err).Errorw("Invalid queue configuration")
		return exitError
	}

	client := queue.NewQueueClient(qcfg, log)
	defer client.Close()

	payload := &queue.GeneratePayload{
		OutputDir: cfg.Output.Dir,
		Count:     cfg.Output.Count,
		Template:  cfg.Assets.Template,
		Seed:      cfg.Seed,
		Augment:   cfg.Augment.Enabled,
		Debug:     cfg.Render.Debug,
		MRZ:       cfg.Synth.MRZ,
		Format:    cfg.Output.Format,
	}
	if _, err := client.EnqueueGenerate(ctx, payload); err != nil {
		log.WithError(err).Errorw("❌ Enqueue failed")
		return exitError
	}

	fmt.Println(payload.JobID)
	return exitOK
}
