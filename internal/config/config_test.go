package config

import (
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_Load(t *testing.T) {
	tests := []struct {
		name        string
		envVars     map[string]string
		expectError bool
	}{
		{
			name:        "defaults",
			envVars:     map[string]string{},
			expectError: false,
		},
		{
			name: "overrides",
			envVars: map[string]string{
				"ENVIRONMENT":              "test",
				"SEED":                     "1111",
				"RENDER_MARGIN":            "4",
				"AUGMENT_MAX_ROTATION":     "5",
				"AUGMENT_MIN_SCALE_FACTOR": "0.1",
				"OUTPUT_FORMAT":            "tiff",
			},
			expectError: false,
		},
		{
			name: "invalid_log_level",
			envVars: map[string]string{
				"LOG_LEVEL": "verbose",
			},
			expectError: true,
		},
		{
			name: "invalid_scale_factor",
			envVars: map[string]string{
				"AUGMENT_MIN_SCALE_FACTOR": "1.5",
			},
			expectError: true,
		},
		{
			name: "unsupported_format",
			envVars: map[string]string{
				"OUTPUT_FORMAT": "webp",
			},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for key, value := range tt.envVars {
				t.Setenv(key, value)
			}

			cfg, err := Load()

			if tt.expectError {
				assert.Error(t, err)
				assert.Nil(t, cfg)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, cfg)
			if tt.name == "overrides" {
				assert.Equal(t, "test", cfg.Environment)
				assert.Equal(t, uint64(1111), cfg.Seed)
				assert.Equal(t, 4, cfg.Render.Margin)
				assert.Equal(t, 5.0, cfg.Augment.MaxRotation)
				assert.Equal(t, 0.1, cfg.Augment.MinScaleFactor)
				assert.Equal(t, "tiff", cfg.Output.Format)
			} else {
				assert.Equal(t, 3, cfg.Output.Count)
				assert.Equal(t, 27.0, cfg.Assets.FontSize)
				assert.True(t, cfg.Augment.Reproject)
			}
		})
	}
}

func TestConfig_ApplyProfile(t *testing.T) {
	cfg := &Config{
		Render:  RenderConfig{Margin: 2, BBAdjust: 2, TextColor: "#000000"},
		Augment: AugmentConfig{MinScaleFactor: 0.3, MaxRotation: 10, Reproject: true},
	}

	profile := []byte(`
render:
  margin: 5
augment:
  max_rotation: 3.5
  keep_size: true
synth:
  mrz: true
`)
	require.NoError(t, cfg.ApplyProfile(profile))

	assert.Equal(t, 5, cfg.Render.Margin)
	assert.Equal(t, 2, cfg.Render.BBAdjust, "campos ausentes conservan su valor")
	assert.Equal(t, 3.5, cfg.Augment.MaxRotation)
	assert.Equal(t, 0.3, cfg.Augment.MinScaleFactor)
	assert.True(t, cfg.Augment.KeepSize)
	assert.True(t, cfg.Augment.Reproject)
	assert.True(t, cfg.Synth.MRZ)
}

func TestConfig_ProfileFileFromEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.yaml")
	require.NoError(t, os.WriteFile(path, []byte("render:\n  bb_adjust: 7\n"), 0o644))
	t.Setenv("PROFILE_FILE", path)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Render.BBAdjust)
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		expected  color.NRGBA
		expectErr bool
	}{
		{name: "black", input: "#000000", expected: color.NRGBA{A: 255}},
		{name: "rgb_no_hash", input: "ff8000", expected: color.NRGBA{R: 255, G: 128, A: 255}},
		{name: "rgba", input: "#11223380", expected: color.NRGBA{R: 0x11, G: 0x22, B: 0x33, A: 0x80}},
		{name: "too_short", input: "#fff", expectErr: true},
		{name: "not_hex", input: "#zzzzzz", expectErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := ParseColor(tt.input)
			if tt.expectErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, c)
		})
	}
}

func TestConfig_IsDevelopment(t *testing.T) {
	assert.True(t, (&Config{Environment: "development"}).IsDevelopment())
	assert.True(t, (&Config{Environment: "dev"}).IsDevelopment())
	assert.False(t, (&Config{Environment: "production"}).IsDevelopment())
}
