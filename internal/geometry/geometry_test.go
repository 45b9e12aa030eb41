package geometry

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"
)

const squareGeoJSON = `{
  "type": "FeatureCollection",
  "features": [
    {"type": "Feature", "id": "c", "properties": {"name": "Centrum"},
     "geometry": {"type": "Polygon", "coordinates": [[[4,52],[5,52],[5,53],[4,53],[4,52]],[[4.4,52.4],[4.6,52.4],[4.6,52.6],[4.4,52.6],[4.4,52.4]]]}},
    {"type": "Feature", "properties": {"NAME": "Noord"},
     "geometry": {"type": "MultiPolygon", "coordinates": [[[[5,53],[6,53],[6,54],[5,54],[5,53]]]]}},
    {"type": "Feature", "properties": {}, "geometry": {"type": "Point", "coordinates": [1,1]}}
  ]
}`

// Two districts sharing arc 1, quantized with a transform.
const twoDistrictTopo = `{
  "type": "Topology",
  "transform": {"scale": [0.5, 0.5], "translate": [10, 40]},
  "arcs": [
    [[0,0],[0,2]],
    [[0,2],[2,0],[0,-2]],
    [[2,0],[2,0],[0,2],[-2,0]]
  ],
  "objects": {
    "town_": {"type": "GeometryCollection", "geometries": [
      {"type": "Polygon", "id": 1, "properties": {"name": "West"}, "arcs": [[0, 1, 3]]},
      {"type": "Polygon", "properties": {"name": "East"}, "arcs": [[-2, 2]]}
    ]}
  }
}`

func TestDecodeGeoJSON(t *testing.T) {
	c, err := Decode([]byte(squareGeoJSON), "amsterdam_21")
	if err != nil {
		t.Fatal(err)
	}
	if len(c.Regions) != 2 {
		t.Fatalf("regions = %d, want 2", len(c.Regions))
	}
	if c.Regions[0].ID != "c" || c.Regions[0].Name != "Centrum" || c.Regions[1].Name != "Noord" || c.Regions[1].ID != "1" {
		t.Errorf("regions = %+v", c.Regions)
	}
	if c.BBox != [4]float64{4, 52, 6, 54} {
		t.Errorf("bbox = %v", c.BBox)
	}
	cases := []struct {
		lat, lon float64
		want     string
		ok       bool
	}{
		{52.2, 4.2, "Centrum", true},
		{52.5, 4.5, "", false}, // hole
		{53.5, 5.5, "Noord", true},
		{60, 20, "", false},
	}
	for _, cs := range cases {
		r, ok := c.Locate(cs.lat, cs.lon)
		if ok != cs.ok || r.Name != cs.want {
			t.Errorf("Locate(%v,%v) = %q,%v, want %q,%v", cs.lat, cs.lon, r.Name, ok, cs.want, cs.ok)
		}
	}
	if n := len(c.Vertices()); n != 15 {
		t.Errorf("Vertices = %d, want 15", n)
	}
}

func TestDecodeTopology(t *testing.T) {
	// arc 3 does not exist: the West polygon must fail.
	if _, err := Decode([]byte(twoDistrictTopo), "town_"); err == nil {
		t.Fatal("expected out of range arc error")
	}
	fixed := []byte(`{
  "type": "Topology",
  "transform": {"scale": [0.5, 0.5], "translate": [10, 40]},
  "arcs": [
    [[0,2],[0,-2],[2,0]],
    [[2,0],[0,2]],
    [[2,2],[-2,0]],
    [[2,0],[2,0],[0,2],[-2,0]]
  ],
  "objects": {
    "town_": {"type": "GeometryCollection", "geometries": [
      {"type": "Polygon", "id": 7, "properties": {"name": "West"}, "arcs": [[0, 1, 2]]},
      {"type": "Polygon", "properties": {"name": "East"}, "arcs": [[-2, 3]]}
    ]}
  }
}`)
	c, err := Decode(fixed, "town_")
	if err != nil {
		t.Fatal(err)
	}
	if len(c.Regions) != 2 || c.Regions[0].ID != "7" || c.Regions[1].Name != "East" {
		t.Fatalf("regions = %+v", c.Regions)
	}
	west := c.Regions[0].Polys[0].Rings[0]
	if len(west) != 5 || west[0] != (Point{Lon: 10, Lat: 41}) || west[0] != west[len(west)-1] {
		t.Errorf("west ring = %v", west)
	}
	east := c.Regions[1].Polys[0].Rings[0]
	if east[0] != (Point{Lon: 11, Lat: 41}) || east[1] != (Point{Lon: 11, Lat: 40}) {
		t.Errorf("east ring should start with reversed arc 1: %v", east)
	}
	if r, ok := c.Locate(40.5, 10.5); !ok || r.Name != "West" {
		t.Errorf("Locate west = %q,%v", r.Name, ok)
	}
	if r, ok := c.Locate(40.5, 11.5); !ok || r.Name != "East" {
		t.Errorf("Locate east = %q,%v", r.Name, ok)
	}
	if _, err := Decode(fixed, "europe"); !errors.Is(err, ErrObjectNotFound) {
		t.Errorf("missing object err = %v, want ErrObjectNotFound", err)
	}
	if _, err := Decode([]byte(`{"type":"Feature"}`), "x"); !errors.Is(err, ErrUnsupported) {
		t.Errorf("feature err = %v, want ErrUnsupported", err)
	}
}

func TestLRU(t *testing.T) {
	c := NewLRU(2, 60)
	now := time.Unix(1000, 0)
	c.now = func() time.Time { return now }
	a, b, d := &Collection{Name: "a"}, &Collection{Name: "b"}, &Collection{Name: "d"}
	c.Set("a", a)
	c.Set("b", b)
	if got, ok := c.Get("a"); !ok || got != a {
		t.Fatalf("Get(a) = %v,%v", got, ok)
	}
	c.Set("d", d) // evicts b
	if _, ok := c.Get("b"); ok {
		t.Errorf("b should be evicted")
	}
	now = now.Add(2 * time.Minute)
	if _, ok := c.Get("a"); ok {
		t.Errorf("a should be expired")
	}
	if c.Len() != 1 {
		t.Errorf("Len = %d, want 1", c.Len())
	}
}

type countingSource struct {
	n    int
	data []byte
}

func (s *countingSource) Load(context.Context, Resource) ([]byte, error) {
	s.n++
	return s.data, nil
}

func TestChainAndLoader(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "paris_.json"), []byte(squareGeoJSON), 0o644); err != nil {
		t.Fatal(err)
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/geo/Rome.json" {
			_, _ = w.Write([]byte(squareGeoJSON))
			return
		}
		http.NotFound(w, r)
	}))
	defer srv.Close()

	chain := NewChainSource(nil, FileSource{Dir: dir}, HTTPSource{Base: srv.URL + "/geo/"})
	ctx := context.Background()
	if _, err := chain.Load(ctx, Resource{Object: "paris_"}); err != nil {
		t.Errorf("file hit: %v", err)
	}
	if _, err := chain.Load(ctx, Resource{Object: "Rome"}); err != nil {
		t.Errorf("http fallback: %v", err)
	}
	if _, err := chain.Load(ctx, Resource{Object: "Lisbon"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing err = %v, want ErrNotFound", err)
	}

	src := &countingSource{data: []byte(squareGeoJSON)}
	l := NewLoader(RedisSource{Next: src}, NewLRU(4, 60))
	for i := 0; i < 3; i++ {
		c, err := l.Fetch(ctx, Resource{Object: "vienna_"})
		if err != nil {
			t.Fatal(err)
		}
		if c.Name != "vienna_" {
			t.Errorf("collection name = %q", c.Name)
		}
	}
	if src.n != 1 {
		t.Errorf("source loaded %d times, want 1 (LRU)", src.n)
	}
}

func TestHTTPSourceStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()
	_, err := HTTPSource{Base: srv.URL}.Load(context.Background(), Resource{Object: "europe"})
	if err == nil || errors.Is(err, ErrNotFound) {
		t.Errorf("502 err = %v, want hard error", err)
	}
}

func TestBinding(t *testing.T) {
	b := DefaultBinding()
	if b.Root().Object != "europe" {
		t.Errorf("root = %q", b.Root().Object)
	}
	if r, ok := b.City("Budapest"); !ok || r.File() != "varosreszek.json" {
		t.Errorf("Budapest = %v,%v", r, ok)
	}
	if _, ok := b.City("Lisbon"); ok {
		t.Errorf("Lisbon should have no geometry")
	}
	path := filepath.Join(t.TempDir(), "binding.json")
	if err := os.WriteFile(path, []byte(`{"cities":{"Lisbon":"lisboa"}}`), 0o644); err != nil {
		t.Fatal(err)
	}
	lb, err := LoadBinding(path)
	if err != nil {
		t.Fatal(err)
	}
	if r, ok := lb.City("Lisbon"); !ok || r.Object != "lisboa" || lb.Root().Object != RootObject {
		t.Errorf("loaded binding = %+v", lb)
	}
}
