package augment

import (
	"image"
	"image/color"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YY-OhioU/Passport-Generator/internal/glyph"
)

func newRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

func noise(w, h int, seed uint64) *image.NRGBA {
	r := newRand(seed)
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = uint8(r.IntN(256))
	}
	for i := 3; i < len(img.Pix); i += 4 {
		img.Pix[i] = 255
	}
	return img
}

func square(w, h int, at image.Rectangle) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := color.NRGBA{A: 255}
			if image.Pt(x, y).In(at) {
				c = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
			}
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func TestAugmenter_SampleBounds(t *testing.T) {
	a := New(DefaultOptions(), newRand(1))

	for i := 0; i < 1000; i++ {
		p := a.Sample(image.Pt(100, 80))
		assert.GreaterOrEqual(t, p.Scale, 0.7)
		assert.LessOrEqual(t, p.Scale, 1.0)
		assert.GreaterOrEqual(t, p.Rotation, -10.0)
		assert.LessOrEqual(t, p.Rotation, 10.0)
		assert.Nil(t, p.Perspective)
	}
}

func TestAugmenter_SamplePerspective(t *testing.T) {
	opts := DefaultOptions()
	opts.Perspective = 0.05
	a := New(opts, newRand(2))

	for i := 0; i < 100; i++ {
		p := a.Sample(image.Pt(200, 100))
		require.NotNil(t, p.Perspective)
		for _, c := range p.Perspective {
			assert.LessOrEqual(t, math.Abs(c[0]), 10.0)
			assert.LessOrEqual(t, math.Abs(c[1]), 5.0)
		}
	}
}

func TestAugmenter_SeedIsReproducible(t *testing.T) {
	a := New(DefaultOptions(), newRand(7))
	b := New(DefaultOptions(), newRand(7))
	for i := 0; i < 10; i++ {
		assert.Equal(t, a.Sample(image.Pt(10, 10)), b.Sample(image.Pt(10, 10)))
	}
}

func TestRotate_ExpandsCanvas(t *testing.T) {
	img := noise(100, 50, 3)

	out, _ := Rotate(img, 10, color.Black)
	assert.Greater(t, out.Bounds().Dx(), 100)
	assert.Greater(t, out.Bounds().Dy(), 50)

	same, m := Rotate(img, 0, color.Black)
	assert.Equal(t, img.Bounds(), same.Bounds())
	x, y := m.Apply(13, 17)
	assert.InDelta(t, 13, x, 1e-9)
	assert.InDelta(t, 17, y, 1e-9)
}

func TestRotate_MatrixUsesPixelEdges(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 40, 20))
	red := color.NRGBA{R: 255, A: 255}
	img.SetNRGBA(0, 0, red)

	tests := []struct {
		angle  float64
		size   image.Point
		corner [2]float64
		pixel  image.Point
	}{
		{angle: 90, size: image.Pt(20, 40), corner: [2]float64{0, 40}, pixel: image.Pt(0, 39)},
		{angle: 180, size: image.Pt(40, 20), corner: [2]float64{40, 20}, pixel: image.Pt(39, 19)},
		{angle: 270, size: image.Pt(20, 40), corner: [2]float64{20, 0}, pixel: image.Pt(19, 0)},
	}

	for _, tt := range tests {
		out, m := Rotate(img, tt.angle, color.Black)
		require.Equal(t, tt.size, out.Bounds().Size())

		x, y := m.Apply(0, 0)
		assert.InDelta(t, tt.corner[0], x, 1e-9, "angle %v", tt.angle)
		assert.InDelta(t, tt.corner[1], y, 1e-9, "angle %v", tt.angle)

		cx, cy := m.Apply(0.5, 0.5)
		assert.Equal(t, tt.pixel, image.Pt(int(math.Floor(cx)), int(math.Floor(cy))))
		assert.Equal(t, red, out.NRGBAAt(tt.pixel.X, tt.pixel.Y))

		full := glyph.Box{X0: 0, Y0: 0, X1: tt.size.X, Y1: tt.size.Y}
		assert.Equal(t, full, ReprojectBox(m, glyph.Box{X0: 0, Y0: 0, X1: 40, Y1: 20}, full), "angle %v", tt.angle)
	}
}

func TestAugment_PerspectiveSizedOnRotatedCanvas(t *testing.T) {
	opts := DefaultOptions()
	opts.Perspective = 0.05
	img := noise(100, 60, 11)

	out, p, _ := New(opts, newRand(11)).Augment(img)
	require.NotNil(t, p.Perspective)

	rotated, _ := Rotate(img, p.Rotation, color.Black)
	assert.Equal(t, rotated.Bounds(), out.Bounds())

	want := New(opts, newRand(11)).Sample(rotated.Bounds().Size())
	assert.Equal(t, want, p)
}

func TestScale_KeepsCanvasAndFillsBackground(t *testing.T) {
	img := noise(80, 60, 4)
	bg := color.NRGBA{R: 1, G: 2, B: 3, A: 255}

	out, _ := Scale(img, 0.5, bg)
	assert.Equal(t, img.Bounds(), out.Bounds())
	assert.Equal(t, bg, out.NRGBAAt(0, 0))
	assert.Equal(t, bg, out.NRGBAAt(79, 59))
}

func TestApply_OrderMatters(t *testing.T) {
	img := noise(64, 64, 5)

	s, _ := Scale(img, 0.7, color.Black)
	scaleThenRotate, _ := Rotate(s, 17, color.Black)

	r, _ := Rotate(img, 17, color.Black)
	rotateThenScale, _ := Scale(r, 0.7, color.Black)

	require.Equal(t, scaleThenRotate.Bounds(), rotateThenScale.Bounds())
	assert.NotEqual(t, scaleThenRotate.Pix, rotateThenScale.Pix)
}

func TestApply_KeepSize(t *testing.T) {
	opts := DefaultOptions()
	opts.KeepSize = true
	a := New(opts, newRand(6))
	img := noise(120, 90, 6)

	out, m := a.Apply(img, Params{Scale: 0.8, Rotation: 8})
	assert.Equal(t, img.Bounds(), out.Bounds())

	// Las esquinas del lienzo rotado caen dentro de la salida
	box := ReprojectBox(m, glyph.Box{X0: 0, Y0: 0, X1: 119, Y1: 89}, glyph.Box{X0: -1000, Y0: -1000, X1: 1000, Y1: 1000})
	assert.GreaterOrEqual(t, box.X0, -1)
	assert.LessOrEqual(t, box.X1, 121)
}

func TestApply_IdentityKeepsBoxes(t *testing.T) {
	a := New(DefaultOptions(), newRand(8))
	img := noise(100, 80, 8)

	out, m := a.Apply(img, Params{Scale: 1, Rotation: 0})
	assert.Equal(t, img.Bounds(), out.Bounds())

	bounds := glyph.Box{X0: 0, Y0: 0, X1: 100, Y1: 80}
	box := glyph.Box{X0: 10, Y0: 12, X1: 40, Y1: 30}
	assert.Equal(t, box, ReprojectBox(m, box, bounds))
}

func TestApply_MatrixTracksContent(t *testing.T) {
	a := New(DefaultOptions(), newRand(9))
	img := square(100, 80, image.Rect(28, 18, 37, 27))

	tests := []Params{
		{Scale: 0.8, Rotation: 15},
		{Scale: 0.7, Rotation: -10},
		{Scale: 1, Rotation: 5},
	}

	for _, p := range tests {
		out, m := a.Apply(img, p)
		x, y := m.Apply(32.5, 22.5)
		px := out.NRGBAAt(int(math.Floor(x)), int(math.Floor(y)))
		assert.Greater(t, px.R, uint8(128), "params %+v -> (%.1f, %.1f)", p, x, y)
	}
}

func TestWarp_MatrixTracksContent(t *testing.T) {
	img := square(100, 80, image.Rect(45, 35, 56, 46))
	c := Corners{{4, 2}, {-3, 5}, {2, -4}, {-5, -1}}

	out, m := Warp(img, c, color.Black)
	assert.Equal(t, img.Bounds(), out.Bounds())

	x, y := m.Apply(50.5, 40.5)
	px := out.NRGBAAt(int(x), int(y))
	assert.Greater(t, px.R, uint8(128))

	cx, cy := m.Apply(0, 0)
	assert.InDelta(t, 4, cx, 1e-6)
	assert.InDelta(t, 2, cy, 1e-6)
}

func TestReprojectBox_Clamps(t *testing.T) {
	m := Affine(1, 0, -20, 0, 1, 50)
	box := ReprojectBox(m, glyph.Box{X0: 10, Y0: 10, X1: 30, Y1: 40}, glyph.Box{X0: 0, Y0: 0, X1: 100, Y1: 80})
	assert.Equal(t, glyph.Box{X0: 0, Y0: 60, X1: 10, Y1: 80}, box)
}

func TestMatrix_Mul(t *testing.T) {
	a := Affine(2, 0, 1, 0, 2, 1)
	b := Affine(1, 0, 5, 0, 1, -3)

	x, y := a.Mul(b).Apply(1, 1)
	bx, by := b.Apply(1, 1)
	ex, ey := a.Apply(bx, by)
	assert.InDelta(t, ex, x, 1e-9)
	assert.InDelta(t, ey, y, 1e-9)
	assert.Equal(t, Identity, Identity.Mul(Identity))
}
