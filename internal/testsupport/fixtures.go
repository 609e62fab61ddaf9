package testsupport

import (
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/opentype"
)

// LabelBox anotación centro+tamaño tal como aparece en el archivo de etiquetas
type LabelBox struct {
	Label  string
	X, Y   float64
	Width  float64
	Height float64
}

// PassportLabels diseño reducido de un pasaporte para fixtures
var PassportLabels = []LabelBox{
	{Label: "type", X: 40, Y: 30, Width: 40, Height: 30},
	{Label: "USA", X: 140, Y: 30, Width: 80, Height: 30},
	{Label: "p_id", X: 350, Y: 30, Width: 180, Height: 30},
	{Label: "last_name", X: 120, Y: 80, Width: 200, Height: 30},
	{Label: "first_name", X: 120, Y: 130, Width: 200, Height: 30},
	{Label: "country_full", X: 220, Y: 180, Width: 400, Height: 30},
	{Label: "dob", X: 110, Y: 230, Width: 180, Height: 30},
	{Label: "place_of_birth", X: 370, Y: 230, Width: 260, Height: 30},
	{Label: "gender", X: 40, Y: 280, Width: 40, Height: 30},
	{Label: "date_of_issue", X: 110, Y: 330, Width: 180, Height: 30},
	{Label: "authority", X: 370, Y: 330, Width: 220, Height: 30},
	{Label: "valid_through", X: 110, Y: 380, Width: 180, Height: 30},
	{Label: "extra_information", X: 370, Y: 380, Width: 220, Height: 30},
	{Label: "bar_line_one", X: 390, Y: 440, Width: 760, Height: 30},
	{Label: "bar_line_two", X: 390, Y: 480, Width: 760, Height: 30},
}

// LabelJSON codifica las anotaciones con la forma de lista de un elemento
func LabelJSON(labels []LabelBox) ([]byte, error) {
	type coords struct {
		X      float64 `json:"x"`
		Y      float64 `json:"y"`
		Width  float64 `json:"width"`
		Height float64 `json:"height"`
	}
	type ann struct {
		Label       string `json:"label"`
		Coordinates coords `json:"coordinates"`
	}

	anns := make([]ann, 0, len(labels))
	for _, l := range labels {
		anns = append(anns, ann{Label: l.Label, Coordinates: coords{X: l.X, Y: l.Y, Width: l.Width, Height: l.Height}})
	}
	return json.Marshal([]map[string]any{{"annotations": anns}})
}

// WriteTemplate escribe <dir>/template/<name>.png y <name>.json
func WriteTemplate(dir, name string, size image.Point, labels []LabelBox) error {
	if size.X <= 0 || size.Y <= 0 {
		return errors.New("testsupport: template size must be positive")
	}

	tplDir := filepath.Join(dir, "template")
	if err := os.MkdirAll(tplDir, 0o755); err != nil {
		return fmt.Errorf("testsupport: mkdir: %w", err)
	}

	f, err := os.Create(filepath.Join(tplDir, name+".png"))
	if err != nil {
		return fmt.Errorf("testsupport: create image: %w", err)
	}
	defer f.Close()

	if err := png.Encode(f, Background(size.X, size.Y)); err != nil {
		return fmt.Errorf("testsupport: encode image: %w", err)
	}

	data, err := LabelJSON(labels)
	if err != nil {
		return fmt.Errorf("testsupport: encode labels: %w", err)
	}
	if err := os.WriteFile(filepath.Join(tplDir, name+".json"), data, 0o644); err != nil {
		return fmt.Errorf("testsupport: write labels: %w", err)
	}
	return nil
}

// Background fondo claro con una banda inferior, sin simetría
func Background(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := color.NRGBA{R: 235, G: 232, B: 220, A: 255}
			if y > h*4/5 {
				c = color.NRGBA{R: 210, G: 215, B: 225, A: 255}
			}
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

// MustWriteTemplate versión de WriteTemplate para tests
func MustWriteTemplate(t *testing.T, dir, name string, size image.Point, labels []LabelBox) {
	t.Helper()
	if err := WriteTemplate(dir, name, size, labels); err != nil {
		t.Fatalf("write template: %v", err)
	}
}

// Face cara Go Mono de 27pt, cerrada al terminar el test
func Face(t *testing.T) font.Face {
	t.Helper()

	parsed, err := opentype.Parse(gomono.TTF)
	if err != nil {
		t.Fatalf("parse font: %v", err)
	}
	face, err := opentype.NewFace(parsed, &opentype.FaceOptions{Size: 27, DPI: 72, Hinting: font.HintingNone})
	if err != nil {
		t.Fatalf("new face: %v", err)
	}
	t.Cleanup(func() { face.Close() })
	return face
}
