package template

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/opentype"
)

// ErrAsset error de carga de recursos de plantilla (imagen, fuente o etiquetas)
var ErrAsset = errors.New("template asset error")

// labelEntry forma del archivo de etiquetas: lista de un elemento con anotaciones
type labelEntry struct {
	Annotations []annotation `json:"annotations"`
}

type annotation struct {
	Label       string       `json:"label"`
	Coordinates *coordinates `json:"coordinates"`
}

// coordinates centro y tamaño de la caja etiquetada
type coordinates struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Loader carga plantillas desde el directorio de assets
type Loader struct {
	AssetsDir string
	Suffix    string
	FontPath  string // vacío = Go Mono embebida
	FontSize  float64
	DPI       float64
}

// TemplateDir directorio con imágenes y etiquetas de plantillas
func (l Loader) TemplateDir() string {
	return filepath.Join(l.AssetsDir, "template")
}

// Load carga la imagen, la fuente y las posiciones de la plantilla name
func (l Loader) Load(name string) (*Template, error) {
	suffix := strings.TrimPrefix(l.Suffix, ".")
	if suffix == "" {
		suffix = "png"
	}

	imgPath := filepath.Join(l.TemplateDir(), name+"."+suffix)
	base, err := imaging.Open(imgPath)
	if err != nil {
		return nil, fmt.Errorf("%w: image %s: %v", ErrAsset, imgPath, err)
	}

	labelPath := filepath.Join(l.TemplateDir(), name+".json")
	fields, err := l.loadLabelFile(labelPath)
	if err != nil {
		return nil, err
	}

	face, err := l.loadFace()
	if err != nil {
		return nil, err
	}

	return New(name, base, face, fields), nil
}

func (l Loader) loadLabelFile(path string) ([]Field, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: labels %s: %v", ErrAsset, path, err)
	}
	defer f.Close()

	fields, err := LoadLabels(f)
	if err != nil {
		return nil, fmt.Errorf("labels %s: %w", path, err)
	}
	return fields, nil
}

func (l Loader) loadFace() (font.Face, error) {
	data := gomono.TTF
	if l.FontPath != "" {
		b, err := os.ReadFile(l.FontPath)
		if err != nil {
			return nil, fmt.Errorf("%w: font %s: %v", ErrAsset, l.FontPath, err)
		}
		data = b
	}

	return NewFace(data, l.FontSize, l.DPI)
}

// NewFace crea una cara de fuente OpenType/TrueType a tamaño fijo
func NewFace(data []byte, size, dpi float64) (font.Face, error) {
	if size <= 0 {
		size = 27
	}
	if dpi <= 0 {
		dpi = 72
	}

	parsed, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%w: parse font: %v", ErrAsset, err)
	}

	face, err := opentype.NewFace(parsed, &opentype.FaceOptions{
		Size:    size,
		DPI:     dpi,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: font face: %v", ErrAsset, err)
	}
	return face, nil
}

// LoadLabels interpreta el JSON de etiquetas y calcula la esquina superior
// izquierda de cada campo como centro - tamaño/2.
func LoadLabels(r io.Reader) ([]Field, error) {
	var entries []labelEntry
	dec := json.NewDecoder(r)
	if err := dec.Decode(&entries); err != nil {
		return nil, fmt.Errorf("%w: decode labels: %v", ErrAsset, err)
	}
	if len(entries) != 1 {
		return nil, fmt.Errorf("%w: expected a single label object, got %d", ErrAsset, len(entries))
	}
	if entries[0].Annotations == nil {
		return nil, fmt.Errorf("%w: label object has no annotations", ErrAsset)
	}

	seen := make(map[string]bool, len(entries[0].Annotations))
	fields := make([]Field, 0, len(entries[0].Annotations))
	for i, a := range entries[0].Annotations {
		if a.Label == "" {
			return nil, fmt.Errorf("%w: annotation %d has an empty label", ErrAsset, i)
		}
		if a.Coordinates == nil {
			return nil, fmt.Errorf("%w: annotation %q has no coordinates", ErrAsset, a.Label)
		}
		if seen[a.Label] {
			return nil, fmt.Errorf("%w: duplicate label %q", ErrAsset, a.Label)
		}
		seen[a.Label] = true

		c := a.Coordinates
		fields = append(fields, Field{
			Key: a.Label,
			X:   c.X - c.Width/2,
			Y:   c.Y - c.Height/2,
		})
	}

	return fields, nil
}
