// Package render draws the map: a projected region layer and a marker layer
// under one shared zoom transform, with a hover tooltip and a color legend.
package render

import (
	"errors"
	"fmt"
	"math"

	"rental-atlas/internal/aggregate"
	"rental-atlas/internal/geometry"
	"rental-atlas/internal/listing"
	"rental-atlas/internal/metrics"
	"rental-atlas/internal/projection"
)

var ErrNoBase = errors.New("render: no base geometry installed")

// Mode tells which marker layer variant is on the surface.
type Mode int

const (
	ModeNone Mode = iota
	ModeAggregated
	ModeDetail
)

func (m Mode) String() string {
	switch m {
	case ModeAggregated:
		return "aggregated"
	case ModeDetail:
		return "detail"
	}
	return "none"
}

// Layer is the marker layer content: Aggregated or Detail.
type Layer interface {
	mode() Mode
}

// Aggregated draws one filled circle per city summary, colored by Scale.
type Aggregated struct {
	Summaries []aggregate.CitySummary
	Scale     ColorScale
}

// Detail draws one pin with a price label per listing.
type Detail struct {
	Listings []listing.Listing
}

func (Aggregated) mode() Mode { return ModeAggregated }
func (Detail) mode() Mode     { return ModeDetail }

// MarkerKind is the glyph drawn for a marker.
type MarkerKind int

const (
	Circle MarkerKind = iota
	Pin
)

// Marker owns the record it was drawn from; hover reads it directly.
// X and Y are base (untransformed) surface coordinates.
type Marker struct {
	Key    string
	X, Y   float64
	Radius float64
	Fill   string
	Kind   MarkerKind
	Label  string
	Record listing.Record
}

// RegionPath is a projected region: rings of base surface coordinates.
type RegionPath struct {
	ID    string
	Name  string
	Rings [][][2]float64
}

const (
	circleRadius = 2.0
	pinRadius    = 3.0
	hitSlop      = 4.0
)

// Surface is the render target. It is not safe for concurrent use.
type Surface struct {
	w, h    float64
	proj    *projection.Projection
	base    *geometry.Collection
	regions []RegionPath
	markers []Marker
	mode    Mode
	legend  *Legend
	zoom    *Zoom
	tip     *Tooltip
	index   *kdNode
}

// NewSurface creates a w x h surface. maxScale bounds zoom-in (<1 means default).
func NewSurface(w, h, maxScale float64) *Surface {
	return &Surface{w: w, h: h, zoom: NewZoom(w, h, maxScale), tip: &Tooltip{}}
}

func (s *Surface) Size() (float64, float64) { return s.w, s.h }

func (s *Surface) Zoom() *Zoom { return s.zoom }

func (s *Surface) Tooltip() *Tooltip { return s.tip }

func (s *Surface) Base() *geometry.Collection { return s.base }

func (s *Surface) Mode() Mode { return s.mode }

func (s *Surface) Legend() *Legend { return s.legend }

// Markers returns the current marker layer.
func (s *Surface) Markers() []Marker { return s.markers }

// Projection returns the fitted projection, nil before the first base geometry.
func (s *Surface) Projection() *projection.Projection { return s.proj }

// SetBaseGeometry fits a fresh projection from factory to the collection,
// projects every region and resets zoom and tooltip. The marker layer is
// cleared: its positions belong to the previous projection.
func (s *Surface) SetBaseGeometry(c *geometry.Collection, factory projection.Factory) error {
	if c == nil {
		return fmt.Errorf("render: nil collection")
	}
	p := factory()
	if err := p.FitSize(s.w, s.h, c.Vertices()); err != nil {
		return fmt.Errorf("render: fit %s: %w", c.Name, err)
	}
	s.proj = p
	s.base = c
	s.regions = projectRegions(p, c)
	s.clearMarkers()
	s.zoom.Reset()
	s.tip.OnLeave()
	return nil
}

// Resize changes the surface box and refits the installed geometry. The
// marker layer is re-projected from the records it owns.
func (s *Surface) Resize(w, h float64) error {
	s.w, s.h = w, h
	s.zoom.resize(w, h)
	s.tip.OnLeave()
	if s.base == nil {
		return nil
	}
	if err := s.proj.FitSize(w, h, s.base.Vertices()); err != nil {
		return err
	}
	s.regions = projectRegions(s.proj, s.base)
	for i := range s.markers {
		lat, lng := s.markers[i].Record.Coordinates()
		s.markers[i].X, s.markers[i].Y = s.proj.Project(lng, lat)
	}
	s.reindex()
	return nil
}

func projectRegions(p *projection.Projection, c *geometry.Collection) []RegionPath {
	out := make([]RegionPath, 0, len(c.Regions))
	for _, r := range c.Regions {
		rp := RegionPath{ID: r.ID, Name: r.Name}
		for _, poly := range r.Polys {
			for _, ring := range poly.Rings {
				pr := make([][2]float64, len(ring))
				for i, pt := range ring {
					x, y := p.Project(pt.Lon, pt.Lat)
					pr[i] = [2]float64{x, y}
				}
				rp.Rings = append(rp.Rings, pr)
			}
		}
		out = append(out, rp)
	}
	return out
}

func (s *Surface) clearMarkers() {
	s.markers = nil
	s.index = nil
	s.legend = nil
	s.mode = ModeNone
}

// RenderMarkers replaces the whole marker layer. Records without finite
// coordinates are skipped; an empty layer is valid. The tooltip is hidden and
// reconfigured for the new mode and allow-list.
func (s *Surface) RenderMarkers(layer Layer, tooltipFields []listing.Field) error {
	if s.proj == nil {
		return ErrNoBase
	}
	s.clearMarkers()
	s.mode = layer.mode()
	switch l := layer.(type) {
	case Aggregated:
		for _, c := range l.Summaries {
			v, ok := c.Mean(l.Scale.Field)
			if !ok {
				v = math.NaN()
			}
			s.add(Marker{Key: c.City, Radius: circleRadius, Fill: l.Scale.Color(v), Kind: Circle, Label: c.City, Record: c})
		}
		s.legend = l.Scale.Legend()
	case Detail:
		for _, r := range l.Listings {
			label := ""
			if !math.IsNaN(r.Price) {
				label = fmt.Sprintf("€%.0f", r.Price)
			}
			s.add(Marker{Key: r.ID, Radius: pinRadius, Fill: "#d7301f", Kind: Pin, Label: label, Record: r})
		}
	}
	s.tip.configure(tooltipFields, s.mode == ModeDetail)
	s.reindex()
	metrics.MarkersRendered.Reset()
	metrics.MarkersRendered.WithLabelValues(s.mode.String()).Set(float64(len(s.markers)))
	return nil
}

func (s *Surface) add(m Marker) {
	lat, lng := m.Record.Coordinates()
	if math.IsNaN(lat) || math.IsNaN(lng) || math.IsInf(lat, 0) || math.IsInf(lng, 0) {
		return
	}
	m.X, m.Y = s.proj.Project(lng, lat)
	s.markers = append(s.markers, m)
}

func (s *Surface) reindex() {
	ps := make([]kdPoint, len(s.markers))
	for i, m := range s.markers {
		ps[i] = kdPoint{i: i, x: m.X, y: m.Y}
	}
	s.index = buildKD(ps, 0)
}

// MarkerAt hit-tests a screen point against the marker layer under the
// current transform.
func (s *Surface) MarkerAt(px, py float64) (*Marker, bool) {
	if s.index == nil {
		return nil, false
	}
	t := s.zoom.Transform()
	bx, by := t.Invert(px, py)
	i := nearest(s.index, bx, by, hitSlop/t.K)
	if i < 0 {
		return nil, false
	}
	return &s.markers[i], true
}

// Hover drives the tooltip from a pointer position: enter on a new marker,
// move on the same one, leave when no marker is hit.
func (s *Surface) Hover(px, py float64) (*Marker, bool) {
	m, ok := s.MarkerAt(px, py)
	switch {
	case !ok:
		if s.tip.Showing() != "" {
			s.tip.OnLeave()
		}
	case s.tip.Showing() == m.Key:
		s.tip.OnMove(px, py)
	default:
		s.tip.OnEnter(m, px, py)
	}
	return m, ok
}

// Frame is an immutable snapshot of what to draw. Both layers use Transform.
type Frame struct {
	Width, Height float64
	Transform     Transform
	Regions       []RegionPath
	Markers       []Marker
	Mode          Mode
	Legend        *Legend
	Tooltip       Panel
}

func (s *Surface) Frame() Frame {
	return Frame{
		Width:     s.w,
		Height:    s.h,
		Transform: s.zoom.Transform(),
		Regions:   s.regions,
		Markers:   append([]Marker(nil), s.markers...),
		Mode:      s.mode,
		Legend:    s.legend,
		Tooltip:   s.tip.Panel(),
	}
}
