package preview

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/YY-OhioU/Passport-Generator/internal/storage"
	"github.com/YY-OhioU/Passport-Generator/pkg/logger"
)

// FileName nombre del PDF de vista previa dentro del directorio de salida
const FileName = storage.PreviewFile

// Result resultado de construir la vista previa
type Result struct {
	OutputPath string        `json:"output_path"`
	Pages      int           `json:"pages"`
	Size       int64         `json:"size"`
	Duration   time.Duration `json:"duration"`
}

// Service arma un PDF con una página por imagen generada (pdfcpu nativo)
type Service struct {
	logger *logger.Logger
	conf   *model.Configuration
}

// NewService crea el servicio con la configuración por defecto de pdfcpu
func NewService(log *logger.Logger) *Service {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	return &Service{
		logger: log,
		conf:   conf,
	}
}

// Build importa images en orden, una por página, y valida el resultado
func (s *Service) Build(images []string, outputPath string) (*Result, error) {
	start := time.Now()

	if len(images) == 0 {
		return nil, errors.New("preview needs at least one image")
	}
	for _, img := range images {
		if _, err := os.Stat(img); err != nil {
			return nil, fmt.Errorf("preview image %s: %w", img, err)
		}
	}

	if err := api.ImportImagesFile(images, outputPath, nil, s.conf); err != nil {
		return nil, fmt.Errorf("import images: %w", err)
	}
	if err := api.ValidateFile(outputPath, s.conf); err != nil {
		return nil, fmt.Errorf("validate preview: %w", err)
	}

	pages, err := api.PageCountFile(outputPath)
	if err != nil {
		return nil, fmt.Errorf("count pages: %w", err)
	}
	stat, err := os.Stat(outputPath)
	if err != nil {
		return nil, fmt.Errorf("stat preview: %w", err)
	}

	result := &Result{
		OutputPath: outputPath,
		Pages:      pages,
		Size:       stat.Size(),
		Duration:   time.Since(start),
	}

	s.logger.Infow("📄 Preview PDF written",
		"output", outputPath,
		"pages", pages,
		"size", result.Size,
	)
	return result, nil
}
