package pipeline

import (
	"context"
	"errors"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YY-OhioU/Passport-Generator/internal/augment"
	"github.com/YY-OhioU/Passport-Generator/internal/config"
	"github.com/YY-OhioU/Passport-Generator/internal/faker"
	"github.com/YY-OhioU/Passport-Generator/internal/storage"
	"github.com/YY-OhioU/Passport-Generator/internal/template"
	"github.com/YY-OhioU/Passport-Generator/internal/testsupport"
	"github.com/YY-OhioU/Passport-Generator/pkg/logger"
)

const templateName = "passport_test"

func testConfig(t *testing.T) *config.Config {
	t.Helper()

	assets := t.TempDir()
	testsupport.MustWriteTemplate(t, assets, templateName, image.Pt(800, 520), testsupport.PassportLabels)

	return &config.Config{
		Environment: "test",
		Seed:        42,
		Assets: config.AssetsConfig{
			Dir:            assets,
			Template:       templateName,
			TemplateSuffix: "png",
			FontSize:       27,
			FontDPI:        72,
		},
		Render: config.RenderConfig{Margin: 2, BBAdjust: 2, TextColor: "#000000"},
		Augment: config.AugmentConfig{
			MinScaleFactor: 0.3,
			MaxRotation:    10,
			Background:     "#000000",
			Reproject:      true,
		},
		Output: config.OutputConfig{
			Dir:    filepath.Join(t.TempDir(), "output"),
			Count:  3,
			Format: "png",
		},
		Queue: config.QueueConfig{Name: "datasets", Concurrency: 1},
	}
}

func fixedProvider() faker.Provider {
	now := func() time.Time { return time.Date(2024, time.June, 15, 0, 0, 0, 0, time.UTC) }
	return faker.NewPassport(42, faker.WithClock(now))
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestRun_GeneratesDataset(t *testing.T) {
	cfg := testConfig(t)
	cfg.Augment.Enabled = true
	cfg.Output.Preview = true
	cfg.Synth.MRZ = true
	cfg.Metrics.File = filepath.Join(t.TempDir(), "passportgen.prom")

	var progress []int
	result, err := Run(context.Background(), cfg, logger.Nop(),
		WithProvider(fixedProvider()),
		WithProgress(func(done, total int) {
			assert.Equal(t, 3, total)
			progress = append(progress, done)
		}),
	)
	require.NoError(t, err)

	assert.Equal(t, 3, result.Count)
	assert.Equal(t, []int{1, 2, 3}, progress)
	for i := 0; i < 3; i++ {
		assert.FileExists(t, filepath.Join(cfg.Output.Dir, storage.ImageName(i, "png")))
	}

	lines := strings.Split(strings.TrimSpace(readFile(t, result.GroundTruthPath)), "\n")
	assert.Len(t, lines, 3)
	assert.Contains(t, lines[0], `"scale":`)
	assert.Contains(t, lines[0], `"bar_line_one":{"text":"P<USA`)

	require.NotNil(t, result.Preview)
	assert.Equal(t, 3, result.Preview.Pages)
	assert.FileExists(t, cfg.Metrics.File)
}

func TestRun_SeedIsReproducible(t *testing.T) {
	a := testConfig(t)
	a.Augment.Enabled = true
	b := testConfig(t)
	b.Augment.Enabled = true

	ra, err := Run(context.Background(), a, logger.Nop(), WithProvider(fixedProvider()))
	require.NoError(t, err)
	rb, err := Run(context.Background(), b, logger.Nop(), WithProvider(fixedProvider()))
	require.NoError(t, err)

	assert.Equal(t, readFile(t, ra.GroundTruthPath), readFile(t, rb.GroundTruthPath))
}

func TestRun_UsageAndAssetErrors(t *testing.T) {
	t.Run("directorio ocupado", func(t *testing.T) {
		cfg := testConfig(t)
		require.NoError(t, os.MkdirAll(cfg.Output.Dir, 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(cfg.Output.Dir, "old.png"), []byte("x"), 0o644))

		_, err := Run(context.Background(), cfg, logger.Nop())
		assert.ErrorIs(t, err, storage.ErrOutputNotEmpty)
	})

	t.Run("plantilla inexistente", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.Assets.Template = "missing"

		_, err := Run(context.Background(), cfg, logger.Nop())
		assert.ErrorIs(t, err, template.ErrAsset)
	})

	t.Run("fuente inexistente", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.Assets.FontPath = filepath.Join(t.TempDir(), "OCRB.otf")

		_, err := Run(context.Background(), cfg, logger.Nop())
		assert.ErrorIs(t, err, template.ErrAsset)
	})
}

func TestRun_ZeroSamples(t *testing.T) {
	cfg := testConfig(t)
	cfg.Output.Count = 0
	cfg.Output.Preview = true

	result, err := Run(context.Background(), cfg, logger.Nop())
	require.NoError(t, err)
	assert.Zero(t, result.Count)
	assert.Nil(t, result.Preview)
	assert.Empty(t, readFile(t, result.GroundTruthPath))
}

func TestRun_RetryReusesItsOwnDirectory(t *testing.T) {
	cfg := testConfig(t)
	cfg.Output.RunKey = "job-7"

	// Primer intento: se cancela tras la primera muestra
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	_, err := Run(ctx, cfg, logger.Nop(), WithProvider(fixedProvider()),
		WithProgress(func(done, total int) {
			if done == 1 {
				cancel()
			}
		}),
	)
	require.ErrorIs(t, err, context.Canceled)
	assert.FileExists(t, filepath.Join(cfg.Output.Dir, storage.ImageName(0, "png")))
	assert.FileExists(t, filepath.Join(cfg.Output.Dir, storage.RunMarkerFile))

	// Reintento con la misma clave
	result, err := Run(context.Background(), cfg, logger.Nop(), WithProvider(fixedProvider()))
	require.NoError(t, err)
	assert.Equal(t, 3, result.Count)

	lines := strings.Split(strings.TrimSpace(readFile(t, result.GroundTruthPath)), "\n")
	assert.Len(t, lines, 3)
	assert.Contains(t, lines[0], `"file_name":"output0.png"`)
}

func TestRun_DirectoryOfAnotherRun(t *testing.T) {
	cfg := testConfig(t)
	require.NoError(t, os.MkdirAll(cfg.Output.Dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(cfg.Output.Dir, storage.RunMarkerFile), []byte("job-a"), 0o644))

	cfg.Output.RunKey = "job-b"
	_, err := Run(context.Background(), cfg, logger.Nop())
	assert.ErrorIs(t, err, storage.ErrOutputNotEmpty)
}

func TestRun_RedisFailureLeavesDirectoryReusable(t *testing.T) {
	cfg := testConfig(t)
	cfg.Redis = config.RedisConfig{Enabled: true, URL: "redis://127.0.0.1:1/0", Stream: "passport:test"}

	_, err := Run(context.Background(), cfg, logger.Nop())
	require.Error(t, err)
	assert.False(t, errors.Is(err, storage.ErrOutputNotEmpty))

	entries, err := os.ReadDir(cfg.Output.Dir)
	require.NoError(t, err)
	assert.Empty(t, entries)

	cfg.Redis.Enabled = false
	result, err := Run(context.Background(), cfg, logger.Nop())
	require.NoError(t, err)
	assert.Equal(t, 3, result.Count)
}

func TestSampleBytesBound(t *testing.T) {
	size := image.Pt(800, 520)
	plain := int64(800 * 520 * 4)

	assert.Equal(t, plain, sampleBytesBound(size, config.AugmentConfig{}))
	assert.Equal(t, plain, sampleBytesBound(size, config.AugmentConfig{Enabled: true, MaxRotation: 10, KeepSize: true}))

	tests := []float64{5, 10, 30, 45}
	for _, angle := range tests {
		rotated, _ := augment.Rotate(image.NewNRGBA(image.Rect(0, 0, size.X, size.Y)), angle, color.Black)
		rs := rotated.Bounds().Size()

		bound := sampleBytesBound(size, config.AugmentConfig{Enabled: true, MaxRotation: angle})
		assert.GreaterOrEqual(t, bound, int64(rs.X)*int64(rs.Y)*4, "angle %v", angle)
		assert.Greater(t, bound, plain)
	}

	assert.Equal(t,
		sampleBytesBound(size, config.AugmentConfig{Enabled: true, MaxRotation: 45}),
		sampleBytesBound(size, config.AugmentConfig{Enabled: true, MaxRotation: 90}))
}
