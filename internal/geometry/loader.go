package geometry

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	geojson "github.com/paulmach/go.geojson"
)

var (
	ErrUnsupported    = errors.New("geometry: unsupported document type")
	ErrObjectNotFound = errors.New("geometry: object not found in topology")
)

// Decode parses a geometry resource. TopoJSON documents must contain the named
// object; plain GeoJSON FeatureCollections ignore it. Only Polygon and
// MultiPolygon features become regions.
func Decode(data []byte, object string) (*Collection, error) {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("geometry: %w", err)
	}
	var fc *geojson.FeatureCollection
	var err error
	switch head.Type {
	case "Topology":
		fc, err = decodeTopology(data, object)
	case "FeatureCollection":
		fc, err = geojson.UnmarshalFeatureCollection(data)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupported, head.Type)
	}
	if err != nil {
		return nil, err
	}
	return fromFeatureCollection(object, fc), nil
}

func fromFeatureCollection(name string, fc *geojson.FeatureCollection) *Collection {
	c := &Collection{Name: name, BBox: [4]float64{180, 90, -180, -90}}
	for i, f := range fc.Features {
		if f == nil || f.Geometry == nil {
			continue
		}
		r := Region{ID: featureID(f, i), Name: featureName(f)}
		switch {
		case f.Geometry.IsPolygon():
			r.Polys = append(r.Polys, toPolygon(f.Geometry.Polygon))
		case f.Geometry.IsMultiPolygon():
			for _, part := range f.Geometry.MultiPolygon {
				r.Polys = append(r.Polys, toPolygon(part))
			}
		default:
			continue
		}
		for _, p := range r.Polys {
			c.BBox = unionBBox(c.BBox, p.BBox)
		}
		c.Regions = append(c.Regions, r)
	}
	return c
}

func toPolygon(rings [][][]float64) Polygon {
	var poly Polygon
	for _, ring := range rings {
		rr := make([]Point, 0, len(ring))
		for _, p := range ring {
			if len(p) >= 2 {
				rr = append(rr, Point{Lat: p[1], Lon: p[0]})
			}
		}
		poly.Rings = append(poly.Rings, rr)
	}
	poly.BBox = computeBBox(poly)
	return poly
}

func featureID(f *geojson.Feature, i int) string {
	switch v := f.ID.(type) {
	case string:
		if v != "" {
			return v
		}
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return strconv.Itoa(i)
}

var nameKeys = []string{"name", "NAME", "Name", "NAME_EN", "name_en", "neighbourhood", "NAME_1"}

func featureName(f *geojson.Feature) string {
	for _, k := range nameKeys {
		if s, ok := f.Properties[k].(string); ok && s != "" {
			return s
		}
	}
	return ""
}
