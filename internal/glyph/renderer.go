package glyph

import (
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// Renderer dibuja cadenas glifo a glifo y acumula la caja envolvente.
//
// Cada carácter se dibuja, se mide su caja en la posición de dibujo y el
// cursor avanza hasta el borde derecho medido menos Margin. El resultado
// añade BBAdjust al borde derecho para compensar el solape acumulado.
// Margin y BBAdjust dependen de la fuente y vienen de la configuración.
//
// font.Face no es seguro para uso concurrente; un Renderer tampoco.
type Renderer struct {
	Face     font.Face
	Color    color.Color
	Margin   int
	BBAdjust int
}

// NewRenderer crea un renderer con texto negro
func NewRenderer(face font.Face, margin, bbAdjust int) *Renderer {
	return &Renderer{
		Face:     face,
		Color:    color.Black,
		Margin:   margin,
		BBAdjust: bbAdjust,
	}
}

// RenderString dibuja text en dst con la esquina superior izquierda en anchor
// y devuelve la caja del texto completo. Una cadena vacía no dibuja nada y
// devuelve Degenerate.
func (r *Renderer) RenderString(dst draw.Image, anchor image.Point, text string) Box {
	return r.walk(dst, anchor, text)
}

// Measure calcula la misma caja que RenderString sin dibujar
func (r *Renderer) Measure(anchor image.Point, text string) Box {
	return r.walk(nil, anchor, text)
}

func (r *Renderer) walk(dst draw.Image, anchor image.Point, text string) Box {
	if text == "" {
		return Degenerate
	}

	margin := fixed.I(r.Margin)
	ascent := r.Face.Metrics().Ascent

	// El punto de dibujo está sobre la línea base; anchor es la parte superior.
	dot := fixed.Point26_6{
		X: fixed.I(anchor.X),
		Y: fixed.I(anchor.Y) + ascent,
	}

	var drawer *font.Drawer
	if dst != nil {
		drawer = &font.Drawer{
			Dst:  dst,
			Src:  image.NewUniform(r.Color),
			Face: r.Face,
		}
	}

	var right fixed.Int26_6
	bottom := dot.Y
	for _, ch := range text {
		if drawer != nil {
			drawer.Dot = dot
			drawer.DrawString(string(ch))
		}

		cb := r.charBox(dot, ch)
		right = cb.Max.X
		if cb.Max.Y > bottom {
			bottom = cb.Max.Y
		}

		dot.X = right - margin
	}

	return Box{
		X0: anchor.X,
		Y0: anchor.Y,
		X1: (right - margin).Ceil() + r.BBAdjust,
		Y1: bottom.Ceil(),
	}
}

// charBox caja de un carácter dibujado con el punto en dot. Horizontalmente
// cubre tanto la tinta como el avance, así los espacios conservan ancho.
func (r *Renderer) charBox(dot fixed.Point26_6, ch rune) fixed.Rectangle26_6 {
	bounds, advance, ok := r.Face.GlyphBounds(ch)
	if !ok {
		advance, _ = r.Face.GlyphAdvance(ch)
		bounds = fixed.Rectangle26_6{}
	}

	minX := bounds.Min.X
	if minX > 0 {
		minX = 0
	}
	maxX := bounds.Max.X
	if advance > maxX {
		maxX = advance
	}
	maxY := bounds.Max.Y
	if maxY < 0 {
		maxY = 0
	}

	return fixed.Rectangle26_6{
		Min: fixed.Point26_6{X: dot.X + minX, Y: dot.Y + bounds.Min.Y},
		Max: fixed.Point26_6{X: dot.X + maxX, Y: dot.Y + maxY},
	}
}
