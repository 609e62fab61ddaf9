package augment

import (
	"math"

	"github.com/YY-OhioU/Passport-Generator/internal/glyph"
)

// Matrix transformación proyectiva 3x3 en orden de filas. Lleva puntos de
// la imagen de entrada a la imagen de salida.
type Matrix [9]float64

// Identity matriz identidad
var Identity = Matrix{1, 0, 0, 0, 1, 0, 0, 0, 1}

// Affine construye una matriz afín [a b c; d e f; 0 0 1]
func Affine(a, b, c, d, e, f float64) Matrix {
	return Matrix{a, b, c, d, e, f, 0, 0, 1}
}

// Mul devuelve m·n: primero se aplica n y luego m
func (m Matrix) Mul(n Matrix) Matrix {
	var out Matrix
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			var v float64
			for k := 0; k < 3; k++ {
				v += m[r*3+k] * n[k*3+c]
			}
			out[r*3+c] = v
		}
	}
	return out
}

// Apply transforma el punto (x, y)
func (m Matrix) Apply(x, y float64) (float64, float64) {
	u := m[0]*x + m[1]*y + m[2]
	v := m[3]*x + m[4]*y + m[5]
	w := m[6]*x + m[7]*y + m[8]
	if w == 0 {
		return math.Inf(1), math.Inf(1)
	}
	return u / w, v / w
}

// ReprojectBox lleva las cuatro esquinas de b a través de m y devuelve su
// envolvente alineada a ejes recortada a bounds.
func ReprojectBox(m Matrix, b glyph.Box, bounds glyph.Box) glyph.Box {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range b.Corners() {
		x, y := m.Apply(float64(p.X), float64(p.Y))
		minX = math.Min(minX, x)
		minY = math.Min(minY, y)
		maxX = math.Max(maxX, x)
		maxY = math.Max(maxY, y)
	}

	return glyph.Box{
		X0: clamp(int(math.Floor(minX)), bounds.X0, bounds.X1),
		Y0: clamp(int(math.Floor(minY)), bounds.Y0, bounds.Y1),
		X1: clamp(int(math.Ceil(maxX)), bounds.X0, bounds.X1),
		Y1: clamp(int(math.Ceil(maxY)), bounds.Y0, bounds.Y1),
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// homography resuelve la proyección que lleva src[i] a dst[i]
func homography(src, dst [4][2]float64) (Matrix, bool) {
	var a [8][9]float64
	for i := 0; i < 4; i++ {
		x, y := src[i][0], src[i][1]
		u, v := dst[i][0], dst[i][1]
		a[2*i] = [9]float64{x, y, 1, 0, 0, 0, -u * x, -u * y, u}
		a[2*i+1] = [9]float64{0, 0, 0, x, y, 1, -v * x, -v * y, v}
	}

	// Eliminación gaussiana con pivoteo parcial
	for col := 0; col < 8; col++ {
		pivot := col
		for r := col + 1; r < 8; r++ {
			if math.Abs(a[r][col]) > math.Abs(a[pivot][col]) {
				pivot = r
			}
		}
		if math.Abs(a[pivot][col]) < 1e-12 {
			return Matrix{}, false
		}
		a[col], a[pivot] = a[pivot], a[col]

		for r := 0; r < 8; r++ {
			if r == col {
				continue
			}
			f := a[r][col] / a[col][col]
			for c := col; c < 9; c++ {
				a[r][c] -= f * a[col][c]
			}
		}
	}

	var h Matrix
	for i := 0; i < 8; i++ {
		h[i] = a[i][8] / a[i][i]
	}
	h[8] = 1
	return h, true
}
