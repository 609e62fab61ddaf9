package dataset

import (
	"github.com/YY-OhioU/Passport-Generator/internal/augment"
	"github.com/YY-OhioU/Passport-Generator/internal/compose"
)

// Record una línea del archivo de verdad de terreno
type Record struct {
	FileName    string               `json:"file_name"`
	GroundTruth *compose.GroundTruth `json:"ground_truth"`
	Meta        Meta                 `json:"meta"`
}

// Meta metadatos de la muestra
type Meta struct {
	Transformation Transformation `json:"transformation"`
}

// Transformation parámetros geométricos aplicados. Vacío ({}) si la muestra
// no fue aumentada.
type Transformation struct {
	Scale       *float64         `json:"scale,omitempty"`
	Rotation    *float64         `json:"rotation,omitempty"`
	Perspective *augment.Corners `json:"perspective,omitempty"`
}

// TransformationFrom convierte los parámetros sorteados
func TransformationFrom(p augment.Params) Transformation {
	scale, rotation := p.Scale, p.Rotation
	return Transformation{
		Scale:       &scale,
		Rotation:    &rotation,
		Perspective: p.Perspective,
	}
}
