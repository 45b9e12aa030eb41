package render

import (
	"math"
	"strconv"
)

// Transform is a uniform scale followed by a translate: screen = base*K + (X,Y).
type Transform struct {
	K float64
	X float64
	Y float64
}

// Identity is the transform after every base geometry swap.
var Identity = Transform{K: 1}

func (t Transform) Apply(x, y float64) (float64, float64) { return x*t.K + t.X, y*t.K + t.Y }

func (t Transform) Invert(x, y float64) (float64, float64) { return (x - t.X) / t.K, (y - t.Y) / t.K }

// String renders the SVG transform attribute.
func (t Transform) String() string {
	return "translate(" + ftoa(t.X) + "," + ftoa(t.Y) + ") scale(" + ftoa(t.K) + ")"
}

func ftoa(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

// Default scale limits for wheel and key zoom.
const (
	MinScale = 1.0
	MaxScale = 8.0
)

// Zoom owns the one transform shared by the region and marker layers.
// Constraint: every gesture ends in constrain, so the viewport never leaves
// the [0,0]-[w,h] extent and no panning is possible at scale 1.
type Zoom struct {
	w, h       float64
	minK, maxK float64
	t          Transform
}

func NewZoom(w, h, maxK float64) *Zoom {
	if maxK < MinScale {
		maxK = MaxScale
	}
	return &Zoom{w: w, h: h, minK: MinScale, maxK: maxK, t: Identity}
}

func (z *Zoom) Transform() Transform { return z.t }

// Extent returns the scale limits.
func (z *Zoom) Extent() (float64, float64) { return z.minK, z.maxK }

// Reset returns to the identity transform.
func (z *Zoom) Reset() { z.t = Identity }

func (z *Zoom) resize(w, h float64) {
	z.w, z.h = w, h
	z.t = Identity
}

// ScaleBy multiplies the scale by factor keeping the screen point (px, py)
// fixed, then constrains.
func (z *Zoom) ScaleBy(factor, px, py float64) Transform {
	k := math.Max(z.minK, math.Min(z.maxK, z.t.K*factor))
	bx, by := z.t.Invert(px, py)
	z.t = z.constrain(Transform{K: k, X: px - bx*k, Y: py - by*k})
	return z.t
}

// TranslateBy pans by a screen-space delta, then constrains.
func (z *Zoom) TranslateBy(dx, dy float64) Transform {
	z.t = z.constrain(Transform{K: z.t.K, X: z.t.X + dx, Y: z.t.Y + dy})
	return z.t
}

// constrain is the d3-zoom default with viewport and translate extent both
// equal to the surface box.
func (z *Zoom) constrain(t Transform) Transform {
	ix0, iy0 := t.Invert(0, 0)
	ix1, iy1 := t.Invert(z.w, z.h)
	dx0, dx1 := ix0, ix1-z.w
	dy0, dy1 := iy0, iy1-z.h
	return Transform{
		K: t.K,
		X: t.X + t.K*shift(dx0, dx1),
		Y: t.Y + t.K*shift(dy0, dy1),
	}
}

func shift(d0, d1 float64) float64 {
	if d1 > d0 {
		return (d0 + d1) / 2
	}
	if v := math.Min(0, d0); v != 0 {
		return v
	}
	return math.Max(0, d1)
}
