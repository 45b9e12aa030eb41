package render

import (
	"bytes"
	"errors"
	"math"
	"strings"
	"testing"

	"rental-atlas/internal/aggregate"
	"rental-atlas/internal/geometry"
	"rental-atlas/internal/listing"
	"rental-atlas/internal/projection"
)

func square(name string, lon0, lat0, lon1, lat1 float64) *geometry.Collection {
	ring := []geometry.Point{{Lat: lat0, Lon: lon0}, {Lat: lat0, Lon: lon1}, {Lat: lat1, Lon: lon1}, {Lat: lat1, Lon: lon0}, {Lat: lat0, Lon: lon0}}
	return &geometry.Collection{
		Name:    name,
		Regions: []geometry.Region{{ID: "1", Name: name, Polys: []geometry.Polygon{{Rings: [][]geometry.Point{ring}, BBox: [4]float64{lon0, lat0, lon1, lat1}}}}},
		BBox:    [4]float64{lon0, lat0, lon1, lat1},
	}
}

func rows() []listing.Listing {
	return []listing.Listing{
		{ID: "listing-0", City: "Amsterdam", Price: 100, RoomType: "Entire home", Lat: 52.37, Lng: 4.89, HostIsSuperhost: true},
		{ID: "listing-1", City: "Amsterdam", Price: 200, RoomType: "Private room", Lat: 52.35, Lng: 4.91},
		{ID: "listing-2", City: "Paris", Price: 300, RoomType: "Entire home", Lat: 48.85, Lng: 2.35},
	}
}

func europeSurface(t *testing.T) *Surface {
	t.Helper()
	s := NewSurface(400, 300, 0)
	if err := s.SetBaseGeometry(square("europe", -10, 35, 30, 70), projection.EqualEarth); err != nil {
		t.Fatal(err)
	}
	return s
}

func TestZoomClampAndConstrain(t *testing.T) {
	z := NewZoom(100, 80, 0)
	if tr := z.TranslateBy(30, -20); tr != Identity {
		t.Errorf("pan at k=1 = %+v, want identity", tr)
	}
	tr := z.ScaleBy(100, 50, 40)
	if tr.K != MaxScale {
		t.Errorf("K = %v, want clamp to %v", tr.K, MaxScale)
	}
	if tr.X > 0 || tr.Y > 0 || tr.X < 100-100*tr.K || tr.Y < 80-80*tr.K {
		t.Errorf("transform %+v lets the viewport leave the surface", tr)
	}
	// The pointer stays on the same base point while inside the extent.
	z.Reset()
	z.ScaleBy(2, 50, 40)
	bx, by := z.Transform().Invert(50, 40)
	if math.Abs(bx-50) > 1e-9 || math.Abs(by-40) > 1e-9 {
		t.Errorf("centre drifted to %v,%v", bx, by)
	}
	tr = z.TranslateBy(1000, 1000)
	if tr.X != 0 || tr.Y != 0 {
		t.Errorf("pan past top-left = %+v, want X=Y=0", tr)
	}
	tr = z.TranslateBy(-1000, -1000)
	if tr.X != -100 || tr.Y != -80 {
		t.Errorf("pan past bottom-right = %+v, want -100,-80", tr)
	}
	if tr := z.ScaleBy(0.01, 0, 0); tr != Identity {
		t.Errorf("zoom out below 1 = %+v, want identity", tr)
	}
	if lo, hi := NewZoom(1, 1, 12).Extent(); lo != 1 || hi != 12 {
		t.Errorf("Extent = %v,%v", lo, hi)
	}
}

func TestRenderBeforeBase(t *testing.T) {
	s := NewSurface(10, 10, 0)
	if err := s.RenderMarkers(Detail{}, nil); !errors.Is(err, ErrNoBase) {
		t.Errorf("err = %v, want ErrNoBase", err)
	}
}

func TestAggregatedLayer(t *testing.T) {
	s := europeSurface(t)
	sums := aggregate.CityMeans(rows())
	if err := s.RenderMarkers(Aggregated{Summaries: sums, Scale: PriceScale(sums)}, listing.TooltipFields); err != nil {
		t.Fatal(err)
	}
	ms := s.Markers()
	if len(ms) != 2 || ms[0].Key != "Amsterdam" || ms[1].Key != "Paris" || s.Mode() != ModeAggregated {
		t.Fatalf("markers = %+v", ms)
	}
	if ms[0].Fill != "#f7fbff" || ms[1].Fill != "#08306b" {
		t.Errorf("fills = %s %s, want ramp ends", ms[0].Fill, ms[1].Fill)
	}
	if ms[0].Record.(aggregate.CitySummary).Count != 2 {
		t.Errorf("marker does not own its summary")
	}
	if s.Legend() == nil || len(s.Legend().Entries) != LegendSteps || s.Legend().Entries[0].Label != "€150" {
		t.Errorf("legend = %+v", s.Legend())
	}

	tip := s.Tooltip()
	m, ok := s.Hover(ms[0].X, ms[0].Y)
	if !ok || m.Key != "Amsterdam" {
		t.Fatalf("Hover = %v,%v", m, ok)
	}
	p := tip.Panel()
	if !p.Visible || p.X != ms[0].X+TooltipOffset || p.Y != ms[0].Y+TooltipOffset || p.Title != "Amsterdam" {
		t.Errorf("panel = %+v", p)
	}
	for _, l := range p.Lines {
		if l.Name == "Room Type" || l.Name == "Host Is Superhost" || l.Name == "Room Shared" || l.Name == "Room Private" {
			t.Errorf("aggregated tooltip shows %q", l.Name)
		}
	}
	if p.Lines[0].Name != "RealSum" || p.Lines[0].Value != "150.00" {
		t.Errorf("first line = %+v", p.Lines[0])
	}
	s.Hover(ms[0].X+1, ms[0].Y)
	if q := tip.Panel(); q.X != ms[0].X+1+TooltipOffset || len(q.Lines) != len(p.Lines) {
		t.Errorf("move panel = %+v", q)
	}
	s.Hover(-500, -500)
	if tip.Panel().Visible {
		t.Errorf("tooltip still visible after leave")
	}
}

func TestDetailLayerReplaces(t *testing.T) {
	s := europeSurface(t)
	tip := s.Tooltip()
	sums := aggregate.CityMeans(rows())
	_ = s.RenderMarkers(Aggregated{Summaries: sums, Scale: PriceScale(sums)}, listing.TooltipFields)
	if err := s.SetBaseGeometry(square("amsterdam_21", 4.7, 52.3, 5.0, 52.45), projection.EqualEarth); err != nil {
		t.Fatal(err)
	}
	if len(s.Markers()) != 0 || s.Legend() != nil {
		t.Errorf("base swap must clear the marker layer")
	}
	ams := listing.InCity(rows(), "Amsterdam")
	ams = append(ams, listing.Listing{ID: "listing-9", City: "Amsterdam", Lat: math.NaN(), Lng: 4.9})
	if err := s.RenderMarkers(Detail{Listings: ams}, listing.TooltipFields); err != nil {
		t.Fatal(err)
	}
	ms := s.Markers()
	if len(ms) != 2 || ms[0].Kind != Pin || ms[0].Label != "€100" || s.Legend() != nil {
		t.Fatalf("detail markers = %+v", ms)
	}
	if s.Tooltip() != tip {
		t.Errorf("tooltip was recreated")
	}
	s.Hover(ms[0].X, ms[0].Y)
	found := false
	for _, l := range tip.Panel().Lines {
		if l.Name == "Host Is Superhost" && l.Value == "true" {
			found = true
		}
	}
	if !found {
		t.Errorf("detail tooltip should show superhost: %+v", tip.Panel().Lines)
	}
	if err := s.RenderMarkers(Detail{}, nil); err != nil || len(s.Markers()) != 0 {
		t.Errorf("empty render = %v, %d markers", err, len(s.Markers()))
	}
	if tip.Panel().Visible {
		t.Errorf("re-render must hide the tooltip")
	}
}

func TestZoomedHitTestAndFrame(t *testing.T) {
	s := europeSurface(t)
	sums := aggregate.CityMeans(rows())
	_ = s.RenderMarkers(Aggregated{Summaries: sums, Scale: PriceScale(sums)}, listing.TooltipFields)
	paris := s.Markers()[1]
	s.Zoom().ScaleBy(4, paris.X, paris.Y)
	tr := s.Zoom().Transform()
	sx, sy := tr.Apply(paris.X, paris.Y)
	if m, ok := s.MarkerAt(sx+1, sy); !ok || m.Key != "Paris" {
		t.Errorf("MarkerAt under zoom = %v,%v", m, ok)
	}
	if m, ok := s.MarkerAt(sx+hitSlop+1, sy); ok {
		t.Errorf("hit %s outside the slop radius", m.Key)
	}
	f := s.Frame()
	if f.Transform != tr {
		t.Errorf("frame transform = %+v, want %+v", f.Transform, tr)
	}
	var buf bytes.Buffer
	if err := WriteSVG(&buf, f); err != nil {
		t.Fatal(err)
	}
	svg := buf.String()
	attr := `transform="` + tr.String() + `"`
	if strings.Count(svg, attr) != 2 {
		t.Errorf("both layers must share %s:\n%s", attr, svg)
	}
	if !strings.Contains(svg, `class="legend"`) || !strings.Contains(svg, `data-key="Paris"`) {
		t.Errorf("svg missing legend or markers")
	}
	if err := s.SetBaseGeometry(square("europe", -10, 35, 30, 70), projection.Winkel3); err != nil {
		t.Fatal(err)
	}
	if s.Zoom().Transform() != Identity {
		t.Errorf("base swap must reset zoom")
	}
}

func TestResizeReprojects(t *testing.T) {
	s := europeSurface(t)
	_ = s.RenderMarkers(Detail{Listings: rows()}, nil)
	s.Zoom().ScaleBy(2, 10, 10)
	if err := s.Resize(800, 600); err != nil {
		t.Fatal(err)
	}
	if s.Zoom().Transform() != Identity {
		t.Errorf("resize must reset zoom")
	}
	for _, m := range s.Markers() {
		if m.X < 0 || m.X > 800 || m.Y < 0 || m.Y > 600 {
			t.Errorf("marker %s off surface after resize: %v,%v", m.Key, m.X, m.Y)
		}
	}
}

func TestCanvas(t *testing.T) {
	s := NewSurface(40, 32, 0)
	if err := s.SetBaseGeometry(square("europe", -10, 35, 30, 70), projection.Mercator); err != nil {
		t.Fatal(err)
	}
	_ = s.RenderMarkers(Detail{Listings: rows()}, nil)
	cells := Canvas(s.Frame(), 20, 8)
	if len(cells) != 8 || len(cells[0]) != 20 {
		t.Fatalf("canvas size = %dx%d", len(cells), len(cells[0]))
	}
	outline, pins := 0, 0
	for _, row := range cells {
		for _, c := range row {
			switch {
			case c.Rune == '▼':
				pins++
			case c.Rune >= 0x2800 && c.Rune <= 0x28ff:
				outline++
			}
		}
	}
	if outline == 0 || pins == 0 {
		t.Errorf("canvas outline=%d pins=%d", outline, pins)
	}
	if b := brailleBit(1, 3); b != 0x80 {
		t.Errorf("brailleBit(1,3) = %#x", b)
	}
	if b := brailleBit(1, 0); b != 0x08 {
		t.Errorf("brailleBit(1,0) = %#x", b)
	}
}

func TestColorScale(t *testing.T) {
	sc := ColorScale{Min: 0, Max: 100, Field: listing.Price}
	cases := map[float64]string{-5: "#f7fbff", 0: "#f7fbff", 100: "#08306b", 500: "#08306b", 50: "#6baed6"}
	for v, want := range cases {
		if got := sc.Color(v); got != want {
			t.Errorf("Color(%v) = %s, want %s", v, got, want)
		}
	}
	if got := sc.Color(math.NaN()); got != "#bdbdbd" {
		t.Errorf("Color(NaN) = %s", got)
	}
	if got := PriceScale(nil); got.Min != 0 || got.Max != 0 {
		t.Errorf("PriceScale(nil) = %+v", got)
	}
}

func TestNearest(t *testing.T) {
	ps := []kdPoint{{0, 0, 0}, {1, 10, 0}, {2, 0, 10}, {3, 10, 10}, {4, 5, 5}}
	root := buildKD(ps, 0)
	cases := []struct {
		x, y float64
		want int
	}{{9, 9, 3}, {1, 1, 0}, {5, 4, 4}, {50, 50, -1}}
	for _, c := range cases {
		if got := nearest(root, c.x, c.y, 3); got != c.want {
			t.Errorf("nearest(%v,%v) = %d, want %d", c.x, c.y, got, c.want)
		}
	}
}
