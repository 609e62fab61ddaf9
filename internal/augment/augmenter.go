package augment

import (
	"image"
	"image/color"
	"math"
	"math/rand/v2"

	"github.com/disintegration/imaging"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
)

// Options límites del muestreo geométrico
type Options struct {
	// MinScaleFactor la escala se sortea en [1-MinScaleFactor, 1]
	MinScaleFactor float64
	// MaxRotation grados; la rotación se sortea en [-MaxRotation, MaxRotation]
	MaxRotation float64
	// KeepSize vuelve al tamaño original tras rotar
	KeepSize bool
	// Perspective desplazamiento máximo de esquinas, fracción del lienzo que
	// se deforma (el ya rotado, o el original con KeepSize). 0 = sin perspectiva
	Perspective float64
	Background  color.Color
	// Reproject lleva las cajas al espacio de la imagen aumentada
	Reproject bool
}

// DefaultOptions valores por defecto
func DefaultOptions() Options {
	return Options{
		MinScaleFactor: 0.3,
		MaxRotation:    10,
		Background:     color.Black,
		Reproject:      true,
	}
}

// Corners desplazamientos (dx, dy) en píxeles de las esquinas
// sup-izq, sup-der, inf-der, inf-izq.
type Corners [4][2]float64

// Params parámetros sorteados para una muestra
type Params struct {
	Scale       float64
	Rotation    float64
	Perspective *Corners
}

// Augmenter aplica escala y rotación aleatorias. No es seguro para uso
// concurrente: comparte un único generador.
type Augmenter struct {
	opts Options
	rng  *rand.Rand
}

// New crea un aumentador con su propio generador
func New(opts Options, rng *rand.Rand) *Augmenter {
	if opts.Background == nil {
		opts.Background = color.Black
	}
	return &Augmenter{opts: opts, rng: rng}
}

// Options opciones en uso
func (a *Augmenter) Options() Options { return a.opts }

// Sample sortea los parámetros de una muestra. size es el lienzo que deforma
// la perspectiva, es decir el de salida de la rotación.
func (a *Augmenter) Sample(size image.Point) Params {
	p := a.sampleAffine()
	p.Perspective = a.sampleCorners(size)
	return p
}

func (a *Augmenter) sampleAffine() Params {
	return Params{
		Scale:    1 - a.rng.Float64()*a.opts.MinScaleFactor,
		Rotation: (a.rng.Float64()*2 - 1) * a.opts.MaxRotation,
	}
}

func (a *Augmenter) sampleCorners(size image.Point) *Corners {
	if a.opts.Perspective <= 0 {
		return nil
	}
	var c Corners
	for i := range c {
		c[i][0] = (a.rng.Float64()*2 - 1) * a.opts.Perspective * float64(size.X)
		c[i][1] = (a.rng.Float64()*2 - 1) * a.opts.Perspective * float64(size.Y)
	}
	return &c
}

// Apply escala, rota y opcionalmente redimensiona y deforma img. Devuelve la
// imagen resultante y la matriz que lleva puntos de img a la salida.
func (a *Augmenter) Apply(img image.Image, p Params) (*image.NRGBA, Matrix) {
	out, m := a.affine(img, p)

	if p.Perspective != nil {
		var pm Matrix
		out, pm = Warp(out, *p.Perspective, a.opts.Background)
		m = pm.Mul(m)
	}
	return out, m
}

// affine escala, rota y con KeepSize vuelve al tamaño original
func (a *Augmenter) affine(img image.Image, p Params) (*image.NRGBA, Matrix) {
	size := img.Bounds().Size()

	out, m := Scale(img, p.Scale, a.opts.Background)

	var rm Matrix
	out, rm = Rotate(out, p.Rotation, a.opts.Background)
	m = rm.Mul(m)

	if a.opts.KeepSize && out.Bounds().Size() != size {
		rs := out.Bounds().Size()
		out = imaging.Resize(out, size.X, size.Y, imaging.Linear)
		m = Affine(float64(size.X)/float64(rs.X), 0, 0, 0, float64(size.Y)/float64(rs.Y), 0).Mul(m)
	}
	return out, m
}

// Augment sortea y aplica en un paso. Las esquinas de la perspectiva se
// sortean sobre el lienzo ya rotado, el mismo que deforma Warp.
func (a *Augmenter) Augment(img image.Image) (*image.NRGBA, Params, Matrix) {
	p := a.sampleAffine()
	out, m := a.affine(img, p)

	p.Perspective = a.sampleCorners(out.Bounds().Size())
	if p.Perspective != nil {
		var pm Matrix
		out, pm = Warp(out, *p.Perspective, a.opts.Background)
		m = pm.Mul(m)
	}
	return out, p, m
}

// Scale reduce img por s alrededor del centro en el mismo lienzo. El área
// liberada toma bg.
func Scale(img image.Image, s float64, bg color.Color) (*image.NRGBA, Matrix) {
	src := imaging.Clone(img)
	b := src.Bounds()
	dst := imaging.New(b.Dx(), b.Dy(), bg)

	cx, cy := float64(b.Dx())/2, float64(b.Dy())/2
	m := Affine(s, 0, (1-s)*cx, 0, s, (1-s)*cy)

	aff := f64.Aff3{m[0], m[1], m[2], m[3], m[4], m[5]}
	xdraw.BiLinear.Transform(dst, aff, src, b, xdraw.Over, nil)

	return dst, m
}

// Rotate gira img angle grados en sentido antihorario sobre su centro,
// ampliando el lienzo para que la imagen entre completa.
//
// Como Scale, Resize y Warp, la matriz trabaja en coordenadas de borde: el
// píxel i cubre [i, i+1) y su centro es i+0.5. imaging.Rotate gira sobre
// centros de píxel (W/2-0.5); desplazado medio píxel eso es W/2 en bordes.
func Rotate(img image.Image, angle float64, bg color.Color) (*image.NRGBA, Matrix) {
	b := img.Bounds()
	dst := imaging.Rotate(img, angle, bg)
	db := dst.Bounds()

	sx, sy := float64(b.Dx())/2, float64(b.Dy())/2
	dx, dy := float64(db.Dx())/2, float64(db.Dy())/2

	sin, cos := math.Sincos(math.Pi * angle / 180)
	m := Affine(
		cos, sin, dx-cos*sx-sin*sy,
		-sin, cos, dy+sin*sx-cos*sy,
	)
	return dst, m
}

// Warp deforma img desplazando sus esquinas según c. El lienzo se mantiene.
func Warp(img image.Image, c Corners, bg color.Color) (*image.NRGBA, Matrix) {
	src := imaging.Clone(img)
	w, h := src.Bounds().Dx(), src.Bounds().Dy()

	from := [4][2]float64{{0, 0}, {float64(w), 0}, {float64(w), float64(h)}, {0, float64(h)}}
	var to [4][2]float64
	for i := range from {
		to[i] = [2]float64{from[i][0] + c[i][0], from[i][1] + c[i][1]}
	}

	fwd, ok := homography(from, to)
	inv, ok2 := homography(to, from)
	if !ok || !ok2 {
		return src, Identity
	}

	bgc := color.NRGBAModel.Convert(bg).(color.NRGBA)
	dst := imaging.New(w, h, bgc)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			sxf, syf := inv.Apply(float64(x)+0.5, float64(y)+0.5)
			if px, ok := bilinear(src, sxf-0.5, syf-0.5); ok {
				dst.SetNRGBA(x, y, px)
			}
		}
	}
	return dst, fwd
}

// bilinear muestrea src en (x, y) en coordenadas de píxel
func bilinear(src *image.NRGBA, x, y float64) (color.NRGBA, bool) {
	w, h := src.Bounds().Dx(), src.Bounds().Dy()
	if x < 0 || y < 0 || x > float64(w-1) || y > float64(h-1) || math.IsNaN(x) || math.IsNaN(y) {
		return color.NRGBA{}, false
	}

	x0, y0 := int(x), int(y)
	x1, y1 := min(x0+1, w-1), min(y0+1, h-1)
	fx, fy := x-float64(x0), y-float64(y0)

	p00 := src.NRGBAAt(x0, y0)
	p10 := src.NRGBAAt(x1, y0)
	p01 := src.NRGBAAt(x0, y1)
	p11 := src.NRGBAAt(x1, y1)

	mix := func(a, b, c, d uint8) uint8 {
		top := float64(a)*(1-fx) + float64(b)*fx
		bot := float64(c)*(1-fx) + float64(d)*fx
		return uint8(math.Round(top*(1-fy) + bot*fy))
	}

	return color.NRGBA{
		R: mix(p00.R, p10.R, p01.R, p11.R),
		G: mix(p00.G, p10.G, p01.G, p11.G),
		B: mix(p00.B, p10.B, p01.B, p11.B),
		A: mix(p00.A, p10.A, p01.A, p11.A),
	}, true
}
