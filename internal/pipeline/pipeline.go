package pipeline

import (
	"context"
	"fmt"
	"image"
	"math"
	"math/rand/v2"

	"github.com/YY-OhioU/Passport-Generator/internal/augment"
	"github.com/YY-OhioU/Passport-Generator/internal/compose"
	"github.com/YY-OhioU/Passport-Generator/internal/config"
	"github.com/YY-OhioU/Passport-Generator/internal/dataset"
	"github.com/YY-OhioU/Passport-Generator/internal/faker"
	"github.com/YY-OhioU/Passport-Generator/internal/fields"
	"github.com/YY-OhioU/Passport-Generator/internal/glyph"
	"github.com/YY-OhioU/Passport-Generator/internal/metrics"
	"github.com/YY-OhioU/Passport-Generator/internal/preview"
	"github.com/YY-OhioU/Passport-Generator/internal/storage"
	"github.com/YY-OhioU/Passport-Generator/internal/template"
	"github.com/YY-OhioU/Passport-Generator/pkg/logger"
)

// Result resultado de una corrida completa
type Result struct {
	*dataset.Summary
	Preview *preview.Result `json:"preview,omitempty"`
}

// Option ajusta una corrida
type Option func(*runOptions)

type runOptions struct {
	progress func(done, total int)
	provider faker.Provider
}

// WithProgress recibe el avance tras cada muestra
func WithProgress(fn func(done, total int)) Option {
	return func(o *runOptions) { o.progress = fn }
}

// WithProvider reemplaza el proveedor de datos falsos
func WithProvider(p faker.Provider) Option {
	return func(o *runOptions) { o.provider = p }
}

// Run carga la plantilla, prepara el directorio de salida y genera
// cfg.Output.Count muestras. Errores de uso (directorio ocupado) y de assets
// se devuelven antes de generar nada.
func Run(ctx context.Context, cfg *config.Config, log *logger.Logger, opts ...Option) (*Result, error) {
	var o runOptions
	for _, opt := range opts {
		opt(&o)
	}

	store, err := storage.NewService(cfg.Output.Dir, cfg.Output.Format, log, storage.WithRunKey(cfg.Output.RunKey))
	if err != nil {
		return nil, err
	}

	loader := template.Loader{
		AssetsDir: cfg.Assets.Dir,
		Suffix:    cfg.Assets.TemplateSuffix,
		FontPath:  cfg.Assets.FontPath,
		FontSize:  cfg.Assets.FontSize,
		DPI:       cfg.Assets.FontDPI,
	}
	tpl, err := loader.Load(cfg.Assets.Template)
	if err != nil {
		return nil, err
	}
	defer tpl.Close()

	log.Infow("📋 Template loaded",
		"template", tpl.Name(),
		"fields", tpl.Len(),
		"size", tpl.Size().String(),
	)

	perSample := sampleBytesBound(tpl.Size(), cfg.Augment)
	if err := storage.NewDiskSpaceChecker(log).CheckSpaceForRun(store.Dir(), cfg.Output.Count, perSample, 0); err != nil {
		return nil, err
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}

	provider := o.provider
	if provider == nil {
		provider = faker.NewPassport(seed)
	}
	synth := fields.NewSynthesizer(provider, rand.New(rand.NewPCG(seed, 1)), fields.WithMRZ(cfg.Synth.MRZ))

	renderer := glyph.NewRenderer(tpl.Face(), cfg.Render.Margin, cfg.Render.BBAdjust)
	textColor, err := config.ParseColor(cfg.Render.TextColor)
	if err != nil {
		return nil, fmt.Errorf("text color: %w", err)
	}
	renderer.Color = textColor

	var aug *augment.Augmenter
	if cfg.Augment.Enabled {
		bg, err := config.ParseColor(cfg.Augment.Background)
		if err != nil {
			return nil, fmt.Errorf("augment background: %w", err)
		}
		aug = augment.New(augment.Options{
			MinScaleFactor: cfg.Augment.MinScaleFactor,
			MaxRotation:    cfg.Augment.MaxRotation,
			KeepSize:       cfg.Augment.KeepSize,
			Perspective:    cfg.Augment.Perspective,
			Background:     bg,
			Reproject:      cfg.Augment.Reproject,
		}, rand.New(rand.NewPCG(seed, 2)))
	}

	sink, err := openSinks(ctx, cfg, store)
	if err != nil {
		return nil, err
	}

	emitter := &dataset.Emitter{
		Template:  tpl,
		Fields:    synth,
		Composer:  compose.New(renderer, cfg.Render.Debug),
		Augmenter: aug,
		Store:     store,
		Sink:      sink,
		Logger:    log,
		Progress:  o.progress,
	}

	summary, err := emitter.Generate(ctx, cfg.Output.Count)
	result := &Result{Summary: summary}
	if err != nil {
		return result, err
	}

	if cfg.Output.Preview && summary.Count > 0 {
		paths := make([]string, len(summary.Files))
		for i, f := range summary.Files {
			paths[i] = store.Path(f)
		}
		result.Preview, err = preview.NewService(log).Build(paths, store.Path(preview.FileName))
		if err != nil {
			return result, fmt.Errorf("preview: %w", err)
		}
	}

	if cfg.Metrics.File != "" {
		if err := metrics.WriteTextfile(cfg.Metrics.File); err != nil {
			log.WithError(err).Warnw("Failed to write metrics textfile", "file", cfg.Metrics.File)
		}
	}

	return result, nil
}

// openSinks conecta Redis antes de crear ground_truth.jsonl: un fallo de
// conexión no deja archivos en el directorio de salida.
func openSinks(ctx context.Context, cfg *config.Config, store storage.Service) (dataset.Sink, error) {
	var stream *dataset.RedisStreamSink
	if cfg.Redis.Enabled {
		var err error
		stream, err = dataset.NewRedisStreamSink(ctx, cfg.Redis.URL, cfg.Redis.Password, cfg.Redis.Stream)
		if err != nil {
			return nil, err
		}
	}

	jsonl, err := dataset.NewJSONLSink(store.Path(storage.GroundTruthFile))
	if err != nil {
		if stream != nil {
			stream.Close()
		}
		return nil, err
	}
	if stream == nil {
		return jsonl, nil
	}
	return dataset.MultiSink{jsonl, stream}, nil
}

// sampleBytesBound cota superior por muestra: RGBA sin comprimir del lienzo
// más grande posible. Sin KeepSize la rotación agranda el lienzo; su área
// crece con el ángulo hasta 45°.
func sampleBytesBound(size image.Point, aug config.AugmentConfig) int64 {
	w, h := float64(size.X), float64(size.Y)
	area := w * h
	if aug.Enabled && !aug.KeepSize && aug.MaxRotation > 0 {
		sin, cos := math.Sincos(math.Min(aug.MaxRotation, 45) * math.Pi / 180)
		// +1 px por lado por el redondeo del lienzo rotado
		area = (w*cos + h*sin + 1) * (w*sin + h*cos + 1)
	}
	return int64(math.Ceil(area)) * 4
}
