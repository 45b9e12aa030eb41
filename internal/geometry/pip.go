package geometry

// pointInPoly is the even-odd test: inside the shell and outside every hole.
func pointInPoly(pt Point, poly Polygon) bool {
	if len(poly.Rings) == 0 {
		return false
	}
	if !pointInRing(pt, poly.Rings[0]) {
		return false
	}
	for i := 1; i < len(poly.Rings); i++ {
		if pointInRing(pt, poly.Rings[i]) {
			return false
		}
	}
	return true
}

// pointInRing casts a ray towards +lon and counts edge crossings.
func pointInRing(pt Point, ring []Point) bool {
	n := len(ring)
	if n < 3 {
		return false
	}
	inside := false
	x, y := pt.Lon, pt.Lat
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		xi, yi := ring[i].Lon, ring[i].Lat
		xj, yj := ring[j].Lon, ring[j].Lat
		if (yi > y) != (yj > y) && x < (xj-xi)*(y-yi)/(yj-yi+1e-12)+xi {
			inside = !inside
		}
	}
	return inside
}

func inBBox(pt Point, b [4]float64) bool {
	return pt.Lon >= b[0] && pt.Lon <= b[2] && pt.Lat >= b[1] && pt.Lat <= b[3]
}
