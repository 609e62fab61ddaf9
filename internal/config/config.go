package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config estructura principal de configuración
type Config struct {
	Environment string `json:"environment"`

	// Semilla para el proveedor de datos y el aumentador; 0 = no reproducible
	Seed uint64 `json:"seed"`

	Log     LogConfig     `json:"log"`
	Assets  AssetsConfig  `json:"assets"`
	Render  RenderConfig  `json:"render"`
	Augment AugmentConfig `json:"augment"`
	Output  OutputConfig  `json:"output"`
	Redis   RedisConfig   `json:"redis"`
	Queue   QueueConfig   `json:"queue"`
	Metrics MetricsConfig `json:"metrics"`
	Synth   SynthConfig   `json:"synth"`
	Profile string        `json:"profile"`
}

type LogConfig struct {
	Level  string `json:"level"`
	Format string `json:"format"`
}

type AssetsConfig struct {
	Dir            string  `json:"dir"`
	Template       string  `json:"template"`
	TemplateSuffix string  `json:"template_suffix"`
	FontPath       string  `json:"font_path"`
	FontSize       float64 `json:"font_size"`
	FontDPI        float64 `json:"font_dpi"`
}

// RenderConfig constantes del renderizador de glifos, ajustadas a la fuente
type RenderConfig struct {
	Margin    int    `json:"margin" yaml:"margin"`
	BBAdjust  int    `json:"bb_adjust" yaml:"bb_adjust"`
	TextColor string `json:"text_color" yaml:"text_color"`
	Debug     bool   `json:"debug" yaml:"debug"`
}

type AugmentConfig struct {
	Enabled        bool    `json:"enabled" yaml:"enabled"`
	MinScaleFactor float64 `json:"min_scale_factor" yaml:"min_scale_factor"`
	MaxRotation    float64 `json:"max_rotation" yaml:"max_rotation"`
	KeepSize       bool    `json:"keep_size" yaml:"keep_size"`
	Perspective    float64 `json:"perspective" yaml:"perspective"`
	Background     string  `json:"background" yaml:"background"`
	Reproject      bool    `json:"reproject" yaml:"reproject"`
}

type OutputConfig struct {
	Dir     string `json:"dir"`
	Count   int    `json:"count"`
	Format  string `json:"format"`
	Preview bool   `json:"preview"`

	// RunKey dueño del directorio entre reintentos (job ID del worker)
	RunKey string `json:"run_key,omitempty"`
}

type SynthConfig struct {
	MRZ bool `json:"mrz" yaml:"mrz"`
}

type RedisConfig struct {
	Enabled  bool   `json:"enabled"`
	URL      string `json:"url"`
	Password string `json:"-"` // No exponer
	Stream   string `json:"stream"`
}

type QueueConfig struct {
	Name        string `json:"name"`
	Concurrency int    `json:"concurrency"`
}

type MetricsConfig struct {
	File string `json:"file"`
}

// Load carga la configuración desde variables de entorno
func Load() (*Config, error) {
	// .env es opcional
	_ = godotenv.Load(".env")

	cfg := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		Seed:        getEnvUint64("SEED", 0),
		Profile:     getEnv("PROFILE_FILE", ""),

		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "console"),
		},

		Assets: AssetsConfig{
			Dir:            getEnv("ASSETS_DIR", "assets"),
			Template:       getEnv("TEMPLATE_NAME", "MO_passport_text_removed"),
			TemplateSuffix: getEnv("TEMPLATE_SUFFIX", "png"),
			FontPath:       getEnv("FONT_PATH", "assets/font/OCRB.otf"),
			FontSize:       getEnvFloat("FONT_SIZE", 27),
			FontDPI:        getEnvFloat("FONT_DPI", 72),
		},

		Render: RenderConfig{
			Margin:    getEnvInt("RENDER_MARGIN", 2),
			BBAdjust:  getEnvInt("RENDER_BB_ADJUST", 2),
			TextColor: getEnv("RENDER_TEXT_COLOR", "#000000"),
			Debug:     getEnvBool("RENDER_DEBUG_BOXES", false),
		},

		Augment: AugmentConfig{
			Enabled:        getEnvBool("AUGMENT_ENABLED", false),
			MinScaleFactor: getEnvFloat("AUGMENT_MIN_SCALE_FACTOR", 0.3),
			MaxRotation:    getEnvFloat("AUGMENT_MAX_ROTATION", 10),
			KeepSize:       getEnvBool("AUGMENT_KEEP_SIZE", false),
			Perspective:    getEnvFloat("AUGMENT_PERSPECTIVE", 0),
			Background:     getEnv("AUGMENT_BACKGROUND", "#000000"),
			Reproject:      getEnvBool("AUGMENT_REPROJECT_BOXES", true),
		},

		Output: OutputConfig{
			Dir:     getEnv("OUTPUT_DIR", "output"),
			Count:   getEnvInt("OUTPUT_COUNT", 3),
			Format:  getEnv("OUTPUT_FORMAT", "png"),
			Preview: getEnvBool("OUTPUT_PREVIEW_PDF", false),
		},

		Synth: SynthConfig{
			MRZ: getEnvBool("SYNTH_MRZ", false),
		},

		Redis: RedisConfig{
			Enabled:  getEnvBool("REDIS_ENABLED", false),
			URL:      getEnv("REDIS_URL", "redis://localhost:6379/0"),
			Password: getEnv("REDIS_PASSWORD", ""),
			Stream:   getEnv("REDIS_STREAM", "passport:ground_truth"),
		},

		Queue: QueueConfig{
			Name:        getEnv("QUEUE_NAME", "datasets"),
			Concurrency: getEnvInt("QUEUE_CONCURRENCY", 1),
		},

		Metrics: MetricsConfig{
			File: getEnv("METRICS_FILE", ""),
		},
	}

	if cfg.Profile != "" {
		if err := cfg.ApplyProfileFile(cfg.Profile); err != nil {
			return nil, fmt.Errorf("invalid configuration: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate valida la configuración
func (c *Config) Validate() error {
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log level must be one of debug, info, warn, error")
	}

	if c.Assets.FontSize <= 0 {
		return fmt.Errorf("FONT_SIZE must be positive")
	}
	if c.Assets.FontDPI <= 0 {
		return fmt.Errorf("FONT_DPI must be positive")
	}
	if c.Render.Margin < 0 || c.Render.BBAdjust < 0 {
		return fmt.Errorf("render margin and bb adjust must not be negative")
	}
	if _, err := ParseColor(c.Render.TextColor); err != nil {
		return fmt.Errorf("RENDER_TEXT_COLOR: %w", err)
	}

	if c.Augment.MinScaleFactor < 0 || c.Augment.MinScaleFactor >= 1 {
		return fmt.Errorf("min scale factor must be in [0, 1)")
	}
	if c.Augment.MaxRotation < 0 || c.Augment.MaxRotation > 180 {
		return fmt.Errorf("max rotation must be in [0, 180]")
	}
	if c.Augment.Perspective < 0 || c.Augment.Perspective >= 0.5 {
		return fmt.Errorf("perspective must be in [0, 0.5)")
	}
	if _, err := ParseColor(c.Augment.Background); err != nil {
		return fmt.Errorf("AUGMENT_BACKGROUND: %w", err)
	}

	if c.Output.Count < 0 {
		return fmt.Errorf("output count must not be negative")
	}
	switch strings.ToLower(c.Output.Format) {
	case "png", "jpg", "jpeg", "tif", "tiff":
	default:
		return fmt.Errorf("output format %q not supported", c.Output.Format)
	}

	if c.Queue.Concurrency < 1 {
		return fmt.Errorf("queue concurrency must be at least 1")
	}

	return nil
}

// IsDevelopment indica si corre en entorno de desarrollo
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development" || c.Environment == "dev"
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvUint64(key string, defaultValue uint64) uint64 {
	if value := os.Getenv(key); value != "" {
		if v, err := strconv.ParseUint(value, 10, 64); err == nil {
			return v
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if v, err := strconv.ParseFloat(value, 64); err == nil {
			return v
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
