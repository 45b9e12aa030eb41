// Package geometry loads region boundary collections (the base layer of the
// map) and answers point-in-region queries against them.
package geometry

// Point is a WGS84 coordinate.
type Point struct {
	Lat float64
	Lon float64
}

// Polygon follows GeoJSON ring order: the first ring is the shell, the rest
// are holes.
type Polygon struct {
	Rings [][]Point
	BBox  [4]float64 // minLon, minLat, maxLon, maxLat
}

// Region is one feature of a collection: a district, borough or country.
type Region struct {
	ID    string
	Name  string
	Polys []Polygon
}

// Collection is a decoded geometry resource. It is read-only once built and
// shared between the cache and the render surface.
type Collection struct {
	Name    string
	Regions []Region
	BBox    [4]float64
}

// Vertices returns every ring vertex as lon/lat pairs, the sample set a
// projection is fitted to.
func (c *Collection) Vertices() [][2]float64 {
	var out [][2]float64
	for _, r := range c.Regions {
		for _, p := range r.Polys {
			for _, ring := range p.Rings {
				for _, pt := range ring {
					out = append(out, [2]float64{pt.Lon, pt.Lat})
				}
			}
		}
	}
	return out
}

// Locate returns the first region containing the coordinate.
func (c *Collection) Locate(lat, lon float64) (Region, bool) {
	pt := Point{Lat: lat, Lon: lon}
	if c == nil || !inBBox(pt, c.BBox) {
		return Region{}, false
	}
	for _, r := range c.Regions {
		for _, p := range r.Polys {
			if inBBox(pt, p.BBox) && pointInPoly(pt, p) {
				return r, true
			}
		}
	}
	return Region{}, false
}

func computeBBox(p Polygon) [4]float64 {
	b := [4]float64{180, 90, -180, -90}
	for _, r := range p.Rings {
		for _, pt := range r {
			if pt.Lon < b[0] {
				b[0] = pt.Lon
			}
			if pt.Lat < b[1] {
				b[1] = pt.Lat
			}
			if pt.Lon > b[2] {
				b[2] = pt.Lon
			}
			if pt.Lat > b[3] {
				b[3] = pt.Lat
			}
		}
	}
	return b
}

func unionBBox(a, b [4]float64) [4]float64 {
	if b[0] < a[0] {
		a[0] = b[0]
	}
	if b[1] < a[1] {
		a[1] = b[1]
	}
	if b[2] > a[2] {
		a[2] = b[2]
	}
	if b[3] > a[3] {
		a[3] = b[3]
	}
	return a
}
