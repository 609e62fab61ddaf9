package compose

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/disintegration/imaging"

	"github.com/YY-OhioU/Passport-Generator/internal/glyph"
	"github.com/YY-OhioU/Passport-Generator/internal/template"
)

// Colores de las marcas de esquina: sup-izq, sup-der, inf-der, inf-izq
var cornerColors = [4]color.NRGBA{
	{R: 255, A: 255},
	{G: 255, A: 255},
	{B: 255, A: 255},
	{R: 255, G: 255, A: 255},
}

var outlineColor = color.NRGBA{R: 255, G: 0, B: 255, A: 255}

// Composer dibuja los valores de una muestra sobre una copia de la plantilla
type Composer struct {
	Glyphs *glyph.Renderer
	Debug  bool
}

// New crea un compositor
func New(r *glyph.Renderer, debug bool) *Composer {
	return &Composer{Glyphs: r, Debug: debug}
}

// Compose dibuja cada campo de la plantilla en orden. Un valor vacío o
// ausente queda registrado con caja nula y no se dibuja nada.
func (c *Composer) Compose(tpl *template.Template, values map[string]string) (*image.NRGBA, *GroundTruth) {
	page := imaging.Clone(tpl.Base())
	gt := NewGroundTruth()

	for _, f := range tpl.Fields() {
		text := values[f.Key]
		if text == "" {
			gt.Set(f.Key, FieldTruth{Text: ""})
			continue
		}

		box := c.Glyphs.RenderString(page, f.Anchor(), text)
		gt.Set(f.Key, FieldTruth{Text: text, BB: &box})
	}

	if c.Debug {
		DrawBoxes(page, gt)
	}

	return page, gt
}

// DrawBoxes marca las esquinas y el contorno de cada caja no nula
func DrawBoxes(dst draw.Image, gt *GroundTruth) {
	for _, k := range gt.Keys() {
		v, _ := gt.Get(k)
		if v.BB == nil {
			continue
		}
		drawOutline(dst, v.BB.Rect())
		for i, p := range v.BB.Corners() {
			mark := image.Rect(p.X-1, p.Y-1, p.X+2, p.Y+2)
			draw.Draw(dst, mark, image.NewUniform(cornerColors[i]), image.Point{}, draw.Src)
		}
	}
}

func drawOutline(dst draw.Image, r image.Rectangle) {
	src := image.NewUniform(outlineColor)
	edges := []image.Rectangle{
		image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+1),
		image.Rect(r.Min.X, r.Max.Y-1, r.Max.X, r.Max.Y),
		image.Rect(r.Min.X, r.Min.Y, r.Min.X+1, r.Max.Y),
		image.Rect(r.Max.X-1, r.Min.Y, r.Max.X, r.Max.Y),
	}
	for _, e := range edges {
		draw.Draw(dst, e, src, image.Point{}, draw.Src)
	}
}
