// Package projection maps longitude/latitude to surface pixels. A Projection is
// a raw spherical projection plus a uniform scale and a translate, fitted to the
// render surface the way d3 fitSize does.
package projection

import (
	"errors"
	"math"
	"strings"
)

// Raw projects radians to unit plane coordinates, y pointing north.
type Raw func(lambda, phi float64) (x, y float64)

// Projection is a fitted cartographic projection. The zero value is unusable;
// build one with a Factory.
type Projection struct {
	name string
	raw  Raw
	k    float64
	tx   float64
	ty   float64
}

// Factory builds an unfitted projection.
type Factory func() *Projection

func newProjection(name string, raw Raw) *Projection {
	return &Projection{name: name, raw: raw, k: 150}
}

func (p *Projection) Name() string { return p.name }

// Scale returns the current scale factor.
func (p *Projection) Scale() float64 { return p.k }

// Translate returns the pixel offset of the projection origin.
func (p *Projection) Translate() (float64, float64) { return p.tx, p.ty }

// Project maps degrees to surface pixels (y pointing down).
func (p *Projection) Project(lon, lat float64) (float64, float64) {
	x, y := p.raw(lon*math.Pi/180, lat*math.Pi/180)
	return x*p.k + p.tx, p.ty - y*p.k
}

// Bounds is an axis-aligned box in degrees: minLon, minLat, maxLon, maxLat.
type Bounds [4]float64

var ErrEmptyBounds = errors.New("projection: empty bounds")

// FitSize scales and translates the projection so that the projected outline
// of pts (lon, lat pairs) is centred in [0,0]-[w,h] and touches its limiting
// sides. The sample points are the region ring vertices.
func (p *Projection) FitSize(w, h float64, pts [][2]float64) error {
	if len(pts) == 0 || w <= 0 || h <= 0 {
		return ErrEmptyBounds
	}
	x0, y0 := math.Inf(1), math.Inf(1)
	x1, y1 := math.Inf(-1), math.Inf(-1)
	for _, pt := range pts {
		x, y := p.raw(pt[0]*math.Pi/180, pt[1]*math.Pi/180)
		y = -y
		if math.IsNaN(x) || math.IsNaN(y) {
			continue
		}
		x0, x1 = math.Min(x0, x), math.Max(x1, x)
		y0, y1 = math.Min(y0, y), math.Max(y1, y)
	}
	if math.IsInf(x0, 0) {
		return ErrEmptyBounds
	}
	dx, dy := x1-x0, y1-y0
	var k float64
	switch {
	case dx == 0 && dy == 0:
		k = 1
	case dx == 0:
		k = h / dy
	case dy == 0:
		k = w / dx
	default:
		k = math.Min(w/dx, h/dy)
	}
	p.k = k
	p.tx = (w - k*(x1+x0)) / 2
	// y0 and y1 are already flipped, so the centring term is the same as for x.
	p.ty = (h - k*(y1+y0)) / 2
	return nil
}

// EqualEarth is the equal-area Equal Earth projection.
func EqualEarth() *Projection { return newProjection("equal-earth", equalEarthRaw) }

// Winkel3 is the Winkel tripel compromise projection.
func Winkel3() *Projection { return newProjection("winkel3", winkel3Raw) }

// Mercator is the conformal cylindrical projection.
func Mercator() *Projection { return newProjection("mercator", mercatorRaw) }

var ErrUnknown = errors.New("projection: unknown name")

// ByName resolves a configured projection name.
func ByName(name string) (Factory, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "equal-earth", "equalearth":
		return EqualEarth, nil
	case "winkel3", "winkel-tripel":
		return Winkel3, nil
	case "mercator":
		return Mercator, nil
	}
	return nil, ErrUnknown
}

const (
	a1 = 1.340264
	a2 = -0.081106
	a3 = 0.000893
	a4 = 0.003796
)

var eeM = math.Sqrt(3) / 2

func equalEarthRaw(lambda, phi float64) (float64, float64) {
	l := math.Asin(eeM * math.Sin(phi))
	l2 := l * l
	l6 := l2 * l2 * l2
	x := lambda * math.Cos(l) / (eeM * (a1 + 3*a2*l2 + l6*(7*a3+9*a4*l2)))
	y := l * (a1 + a2*l2 + l6*(a3+a4*l2))
	return x, y
}

func winkel3Raw(lambda, phi float64) (float64, float64) {
	ax, ay := aitoffRaw(lambda, phi)
	return (ax + lambda/(math.Pi/2)) / 2, (ay + phi) / 2
}

func aitoffRaw(lambda, phi float64) (float64, float64) {
	cosy := math.Cos(phi)
	half := lambda / 2
	s := sinci(math.Acos(cosy * math.Cos(half)))
	return 2 * cosy * math.Sin(half) * s, math.Sin(phi) * s
}

func sinci(x float64) float64 {
	if x == 0 {
		return 1
	}
	return x / math.Sin(x)
}

func mercatorRaw(lambda, phi float64) (float64, float64) {
	return lambda, math.Log(math.Tan((math.Pi/2 + phi) / 2))
}
