package dataset

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/YY-OhioU/Passport-Generator/internal/augment"
	"github.com/YY-OhioU/Passport-Generator/internal/compose"
	"github.com/YY-OhioU/Passport-Generator/internal/fields"
	"github.com/YY-OhioU/Passport-Generator/internal/glyph"
	"github.com/YY-OhioU/Passport-Generator/internal/metrics"
	"github.com/YY-OhioU/Passport-Generator/internal/storage"
	"github.com/YY-OhioU/Passport-Generator/internal/template"
	"github.com/YY-OhioU/Passport-Generator/pkg/logger"
)

// FieldSource produce los valores de cada muestra
type FieldSource interface {
	Synthesize() (fields.FieldSet, error)
}

// Summary resultado de una corrida
type Summary struct {
	RunID           string   `json:"run_id"`
	Count           int      `json:"count"`
	Files           []string `json:"files"`
	GroundTruthPath string   `json:"ground_truth_path"`
}

// Emitter genera muestras de forma secuencial: una imagen y una línea por
// muestra. Augmenter nil desactiva el aumento.
type Emitter struct {
	Template  *template.Template
	Fields    FieldSource
	Composer  *compose.Composer
	Augmenter *augment.Augmenter
	Store     storage.Service
	Sink      Sink
	Logger    *logger.Logger

	// Progress opcional, se llama tras cada muestra escrita
	Progress func(done, total int)
}

// Generate produce count muestras. Cualquier error aborta la corrida; las
// líneas ya escritas siguen siendo válidas. El Sink se cierra siempre.
func (e *Emitter) Generate(ctx context.Context, count int) (summary *Summary, err error) {
	runID := uuid.NewString()
	log := e.Logger.WithRun(runID)

	summary = &Summary{
		RunID:           runID,
		GroundTruthPath: e.Store.Path(storage.GroundTruthFile),
	}

	defer func() {
		if cerr := e.Sink.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close sink: %w", cerr)
		}

		switch {
		case err == nil:
			metrics.RunsTotal.WithLabelValues("completed").Inc()
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			metrics.RunsTotal.WithLabelValues("cancelled").Inc()
		default:
			metrics.RunsTotal.WithLabelValues("failed").Inc()
		}
	}()

	log.Infow("🚀 Starting dataset generation",
		"count", count,
		"template", e.Template.Name(),
		"augment", e.Augmenter != nil,
	)
	start := time.Now()

	for i := 0; i < count; i++ {
		if err := ctx.Err(); err != nil {
			log.Warnw("Generation cancelled", "written", summary.Count)
			return summary, err
		}

		name, err := e.sample(ctx, i)
		if err != nil {
			log.WithError(err).Errorw("❌ Sample failed", "sample", i)
			return summary, fmt.Errorf("sample %d: %w", i, err)
		}

		summary.Count++
		summary.Files = append(summary.Files, name)
		metrics.SamplesGeneratedTotal.Inc()
		if e.Progress != nil {
			e.Progress(summary.Count, count)
		}

		log.Debugw("Sample written", "sample", i, "file", name)
	}

	log.Infow("✅ Dataset generated",
		"count", summary.Count,
		"ground_truth", summary.GroundTruthPath,
		"duration", time.Since(start).String(),
	)
	return summary, nil
}

func (e *Emitter) sample(ctx context.Context, i int) (string, error) {
	t := time.Now()
	values, err := e.Fields.Synthesize()
	if err != nil {
		metrics.RecordError(metrics.StageSynthesize)
		return "", fmt.Errorf("synthesize: %w", err)
	}
	metrics.RecordStage(metrics.StageSynthesize, t)

	t = time.Now()
	page, gt := e.Composer.Compose(e.Template, values)
	metrics.RecordStage(metrics.StageCompose, t)
	recordFieldCounts(gt)

	var transformation Transformation
	out := page
	if e.Augmenter != nil {
		t = time.Now()
		var (
			params augment.Params
			m      augment.Matrix
		)
		out, params, m = e.Augmenter.Augment(page)
		transformation = TransformationFrom(params)

		if e.Augmenter.Options().Reproject {
			size := out.Bounds().Size()
			bounds := glyph.Box{X0: 0, Y0: 0, X1: size.X, Y1: size.Y}
			gt.MapBoxes(func(b glyph.Box) glyph.Box {
				return augment.ReprojectBox(m, b, bounds)
			})
		}
		metrics.RecordStage(metrics.StageAugment, t)
	}

	t = time.Now()
	info, err := e.Store.SaveImage(i, out)
	if err != nil {
		metrics.RecordError(metrics.StageSave)
		return "", err
	}
	metrics.RecordStage(metrics.StageSave, t)

	t = time.Now()
	rec := Record{
		FileName:    info.Name,
		GroundTruth: gt,
		Meta:        Meta{Transformation: transformation},
	}
	if err := e.Sink.Write(ctx, rec); err != nil {
		metrics.RecordError(metrics.StageEmit)
		return "", err
	}
	metrics.RecordStage(metrics.StageEmit, t)

	return info.Name, nil
}

func recordFieldCounts(gt *compose.GroundTruth) {
	drawn, empty := 0, 0
	for _, k := range gt.Keys() {
		v, _ := gt.Get(k)
		if v.BB == nil {
			empty++
		} else {
			drawn++
		}
	}
	metrics.RecordFields(drawn, empty)
}
