package glyph

import (
	"encoding/json"
	"fmt"
	"image"
)

// Box caja alineada a ejes en píxeles: (X0, Y0) esquina superior izquierda,
// (X1, Y1) esquina inferior derecha.
type Box struct {
	X0, Y0, X1, Y1 int
}

// Degenerate centinela para "sin contenido"
var Degenerate = Box{X0: 1, Y0: 1, X1: 1, Y1: 1}

func (b Box) Width() int  { return b.X1 - b.X0 }
func (b Box) Height() int { return b.Y1 - b.Y0 }

// IsDegenerate indica si la caja es el centinela de vacío
func (b Box) IsDegenerate() bool { return b == Degenerate }

// Rect convierte la caja a image.Rectangle
func (b Box) Rect() image.Rectangle {
	return image.Rect(b.X0, b.Y0, b.X1, b.Y1)
}

// Corners devuelve las cuatro esquinas en orden: sup-izq, sup-der, inf-der, inf-izq
func (b Box) Corners() [4]image.Point {
	return [4]image.Point{
		{X: b.X0, Y: b.Y0},
		{X: b.X1, Y: b.Y0},
		{X: b.X1, Y: b.Y1},
		{X: b.X0, Y: b.Y1},
	}
}

// MarshalJSON codifica la caja como [x0,y0,x1,y1]
func (b Box) MarshalJSON() ([]byte, error) {
	return json.Marshal([4]int{b.X0, b.Y0, b.X1, b.Y1})
}

// UnmarshalJSON decodifica [x0,y0,x1,y1]
func (b *Box) UnmarshalJSON(data []byte) error {
	var v []int
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	if len(v) != 4 {
		return fmt.Errorf("bounding box needs 4 coordinates, got %d", len(v))
	}
	*b = Box{X0: v[0], Y0: v[1], X1: v[2], Y1: v[3]}
	return nil
}
