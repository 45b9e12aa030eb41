package geometry

import (
	"encoding/json"
	"fmt"

	geojson "github.com/paulmach/go.geojson"
)

type topology struct {
	Type      string                     `json:"type"`
	Transform *topoTransform             `json:"transform"`
	Arcs      [][][]float64              `json:"arcs"`
	Objects   map[string]json.RawMessage `json:"objects"`
}

type topoTransform struct {
	Scale     [2]float64 `json:"scale"`
	Translate [2]float64 `json:"translate"`
}

type topoGeometry struct {
	Type       string          `json:"type"`
	ID         any             `json:"id"`
	Properties map[string]any  `json:"properties"`
	Arcs       json.RawMessage `json:"arcs"`
	Geometries []topoGeometry  `json:"geometries"`
}

// decodeTopology converts one named TopoJSON object into GeoJSON features.
func decodeTopology(data []byte, object string) (*geojson.FeatureCollection, error) {
	var t topology
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("geometry: topology: %w", err)
	}
	raw, ok := t.Objects[object]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrObjectNotFound, object)
	}
	var root topoGeometry
	if err := json.Unmarshal(raw, &root); err != nil {
		return nil, fmt.Errorf("geometry: object %q: %w", object, err)
	}
	arcs := absoluteArcs(t.Arcs, t.Transform)
	fc := geojson.NewFeatureCollection()
	var add func(g topoGeometry) error
	add = func(g topoGeometry) error {
		switch g.Type {
		case "GeometryCollection":
			for _, child := range g.Geometries {
				if err := add(child); err != nil {
					return err
				}
			}
			return nil
		case "Polygon":
			var idx [][]int
			if err := json.Unmarshal(g.Arcs, &idx); err != nil {
				return fmt.Errorf("geometry: polygon arcs: %w", err)
			}
			rings, err := polygonRings(arcs, idx)
			if err != nil {
				return err
			}
			fc.AddFeature(newFeature(g, geojson.NewPolygonGeometry(rings)))
		case "MultiPolygon":
			var idx [][][]int
			if err := json.Unmarshal(g.Arcs, &idx); err != nil {
				return fmt.Errorf("geometry: multipolygon arcs: %w", err)
			}
			parts := make([][][][]float64, 0, len(idx))
			for _, p := range idx {
				rings, err := polygonRings(arcs, p)
				if err != nil {
					return err
				}
				parts = append(parts, rings)
			}
			fc.AddFeature(newFeature(g, geojson.NewMultiPolygonGeometry(parts...)))
		}
		return nil
	}
	if err := add(root); err != nil {
		return nil, err
	}
	return fc, nil
}

func newFeature(g topoGeometry, geom *geojson.Geometry) *geojson.Feature {
	f := geojson.NewFeature(geom)
	f.ID = g.ID
	for k, v := range g.Properties {
		f.Properties[k] = v
	}
	return f
}

// absoluteArcs undoes delta encoding and quantization when a transform is set.
func absoluteArcs(arcs [][][]float64, tr *topoTransform) [][][]float64 {
	if tr == nil {
		return arcs
	}
	out := make([][][]float64, len(arcs))
	for i, arc := range arcs {
		var x, y float64
		pts := make([][]float64, 0, len(arc))
		for _, p := range arc {
			if len(p) < 2 {
				continue
			}
			x += p[0]
			y += p[1]
			pts = append(pts, []float64{x*tr.Scale[0] + tr.Translate[0], y*tr.Scale[1] + tr.Translate[1]})
		}
		out[i] = pts
	}
	return out
}

func polygonRings(arcs [][][]float64, idx [][]int) ([][][]float64, error) {
	rings := make([][][]float64, 0, len(idx))
	for _, r := range idx {
		ring, err := stitch(arcs, r)
		if err != nil {
			return nil, err
		}
		rings = append(rings, ring)
	}
	return rings, nil
}

// stitch joins arcs into one ring. A negative index ~i means arc i reversed;
// the first point of every arc after the first repeats the previous end.
func stitch(arcs [][][]float64, idx []int) ([][]float64, error) {
	var ring [][]float64
	for n, i := range idx {
		rev := i < 0
		if rev {
			i = ^i
		}
		if i >= len(arcs) {
			return nil, fmt.Errorf("geometry: arc index %d out of range", i)
		}
		arc := arcs[i]
		pts := make([][]float64, len(arc))
		for j := range arc {
			if rev {
				pts[j] = arc[len(arc)-1-j]
			} else {
				pts[j] = arc[j]
			}
		}
		if n > 0 && len(pts) > 0 {
			pts = pts[1:]
		}
		ring = append(ring, pts...)
	}
	return ring, nil
}
