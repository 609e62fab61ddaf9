package storage

import (
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/disintegration/imaging"

	"github.com/YY-OhioU/Passport-Generator/pkg/logger"
)

// GroundTruthFile nombre del archivo de verdad de terreno dentro del directorio de salida
const GroundTruthFile = "ground_truth.jsonl"

// ErrOutputNotEmpty el directorio de salida ya tiene contenido
var ErrOutputNotEmpty = errors.New("output directory exists and is not empty")

// Formatos de imagen soportados y su extensión
var formats = map[string]string{
	"png":  "png",
	"jpg":  "jpg",
	"jpeg": "jpg",
	"tif":  "tiff",
	"tiff": "tiff",
}

// Expresión regular para sanitización de nombres
var filenameRegex = regexp.MustCompile(`[^a-zA-Z0-9._-]`)

// Service interface para escribir los artefactos de una corrida
type Service interface {
	SaveImage(index int, img image.Image) (*FileInfo, error)
	Path(name string) string
	Dir() string
}

// FileInfo información de archivo almacenado
type FileInfo struct {
	Name      string    `json:"name"`
	Path      string    `json:"path"`
	Size      int64     `json:"size"`
	Format    string    `json:"format"`
	CreatedAt time.Time `json:"created_at"`
}

// LocalStorage escribe en un directorio local
type LocalStorage struct {
	dir    string
	ext    string
	runKey string
	logger *logger.Logger
}

// Option configura el almacenamiento
type Option func(*LocalStorage)

// WithRunKey marca el directorio con la clave de la corrida para que un
// reintento con la misma clave pueda reutilizarlo (ver ClaimOutputDir)
func WithRunKey(key string) Option {
	return func(s *LocalStorage) { s.runKey = key }
}

// NewService valida el formato y crea el directorio de salida. El
// directorio debe no existir, estar vacío o pertenecer a la misma corrida.
func NewService(dir, format string, log *logger.Logger, opts ...Option) (*LocalStorage, error) {
	ext, err := Extension(format)
	if err != nil {
		return nil, err
	}

	s := &LocalStorage{dir: dir, ext: ext, logger: log}
	for _, opt := range opts {
		opt(s)
	}

	removed, err := ClaimOutputDir(dir, s.runKey)
	if err != nil {
		return nil, err
	}
	if removed > 0 {
		log.Warnw("♻️ Reusing output directory from a previous attempt",
			"dir", dir,
			"run_key", s.runKey,
			"removed", removed,
		)
	}
	return s, nil
}

// EnsureOutputDir crea dir si no existe. Un directorio con contenido es un
// error de uso (ErrOutputNotEmpty).
func EnsureOutputDir(dir string) error {
	f, err := os.Open(dir)
	switch {
	case errors.Is(err, os.ErrNotExist):
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
		return nil
	case err != nil:
		return fmt.Errorf("open output directory: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat output directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s: %w", dir, ErrOutputNotEmpty)
	}

	if _, err := f.Readdirnames(1); err == nil {
		return fmt.Errorf("%s: %w", dir, ErrOutputNotEmpty)
	} else if !errors.Is(err, io.EOF) {
		return fmt.Errorf("read output directory: %w", err)
	}
	return nil
}

// Extension extensión de archivo para un formato de imagen
func Extension(format string) (string, error) {
	ext, ok := formats[strings.ToLower(format)]
	if !ok {
		return "", fmt.Errorf("image format %q not supported", format)
	}
	return ext, nil
}

// ImageName nombre de la i-ésima imagen: output{i}.<ext>
func ImageName(index int, ext string) string {
	return fmt.Sprintf("output%d.%s", index, ext)
}

func (s *LocalStorage) Dir() string { return s.dir }

// Path ruta de name dentro del directorio de salida
func (s *LocalStorage) Path(name string) string {
	return filepath.Join(s.dir, name)
}

// SaveImage codifica img como output{index}.<ext>
func (s *LocalStorage) SaveImage(index int, img image.Image) (*FileInfo, error) {
	name := ImageName(index, s.ext)
	path := s.Path(name)

	if err := imaging.Save(img, path, imaging.JPEGQuality(95)); err != nil {
		return nil, fmt.Errorf("save %s: %w", name, err)
	}

	stat, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", name, err)
	}

	s.logger.Debugw("💾 Image saved", "file", name, "size", stat.Size())

	return &FileInfo{
		Name:      name,
		Path:      path,
		Size:      stat.Size(),
		Format:    s.ext,
		CreatedAt: time.Now(),
	}, nil
}

// SanitizeFilename limpia un nombre para usarlo como ruta
func SanitizeFilename(filename string) string {
	filename = filepath.Base(filename)
	filename = filenameRegex.ReplaceAllString(filename, "_")
	if len(filename) > 255 {
		filename = filename[:255]
	}
	if filename == "" || filename == "." || filename == ".." {
		return "unnamed"
	}
	return filename
}
