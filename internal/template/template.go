package template

import (
	"image"
	"math"

	"golang.org/x/image/font"
)

// Field posición de un campo en la plantilla: esquina superior izquierda
// en píxeles de la plantilla.
type Field struct {
	Key string  `json:"key"`
	X   float64 `json:"x"`
	Y   float64 `json:"y"`
}

// Anchor posición de dibujo redondeada a píxel entero
func (f Field) Anchor() image.Point {
	return image.Pt(int(math.Round(f.X)), int(math.Round(f.Y)))
}

// Template recurso inmutable compartido por todas las muestras de una corrida.
// Nunca se dibuja sobre Base: el compositor trabaja sobre una copia.
type Template struct {
	name   string
	base   image.Image
	face   font.Face
	fields []Field
}

// New construye una plantilla en memoria
func New(name string, base image.Image, face font.Face, fields []Field) *Template {
	fs := make([]Field, len(fields))
	copy(fs, fields)
	return &Template{
		name:   name,
		base:   base,
		face:   face,
		fields: fs,
	}
}

func (t *Template) Name() string { return t.name }
func (t *Template) Base() image.Image { return t.base }
func (t *Template) Face() font.Face { return t.face }
func (t *Template) Size() image.Point { return t.base.Bounds().Size() }
func (t *Template) Len() int { return len(t.fields) }

// Fields copia de los campos en orden del archivo de etiquetas
func (t *Template) Fields() []Field {
	fs := make([]Field, len(t.fields))
	copy(fs, t.fields)
	return fs
}

// Keys claves de los campos en orden
func (t *Template) Keys() []string {
	keys := make([]string, len(t.fields))
	for i, f := range t.fields {
		keys[i] = f.Key
	}
	return keys
}

// Close libera la fuente si la plantilla la posee
func (t *Template) Close() error {
	if t.face == nil {
		return nil
	}
	return t.face.Close()
}
