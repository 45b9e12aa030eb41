// Package listing holds the immutable rental row and the generic field accessors
// shared by aggregation, filtering and the tooltip.
package listing

import "math"

// Listing is one rental offer. Numeric cells that failed to parse hold NaN.
type Listing struct {
	ID                string
	City              string
	Price             float64
	RoomType          string
	RoomShared        bool
	RoomPrivate       bool
	HostIsSuperhost   bool
	PersonCapacity    float64
	Multi             bool
	Biz               bool
	CleanlinessRating float64
	GuestSatisfaction float64
	Bedrooms          float64
	Dist              float64
	MetroDist         float64
	AttrIndex         float64
	RestIndex         float64
	AttrIndexNorm     float64
	RestIndexNorm     float64
	Lat               float64
	Lng               float64
	DayStatus         string
}

// Record is what a marker carries: a keyed, located bag of attributes.
type Record interface {
	Key() string
	Coordinates() (lat, lng float64)
	Attr(f Field) (Value, bool)
}

func (l Listing) Key() string { return l.ID }

func (l Listing) Coordinates() (float64, float64) { return l.Lat, l.Lng }

// Attr returns the value of f. Numeric fields holding NaN are reported absent.
func (l Listing) Attr(f Field) (Value, bool) {
	switch f {
	case City:
		return String(l.City), true
	case RoomType:
		return String(l.RoomType), true
	case DayStatus:
		return String(l.DayStatus), true
	case RoomShared:
		return Bool(l.RoomShared), true
	case RoomPrivate:
		return Bool(l.RoomPrivate), true
	case HostIsSuperhost:
		return Bool(l.HostIsSuperhost), true
	case Multi:
		return Bool(l.Multi), true
	case Biz:
		return Bool(l.Biz), true
	}
	v, ok := l.Number(f)
	if !ok || math.IsNaN(v) {
		return Value{}, false
	}
	return Number(v), true
}

// Number returns the raw numeric cell for f (NaN included). Booleans map to 0/1.
func (l Listing) Number(f Field) (float64, bool) {
	switch f {
	case Price:
		return l.Price, true
	case PersonCapacity:
		return l.PersonCapacity, true
	case CleanlinessRating:
		return l.CleanlinessRating, true
	case GuestSatisfaction:
		return l.GuestSatisfaction, true
	case Bedrooms:
		return l.Bedrooms, true
	case Dist:
		return l.Dist, true
	case MetroDist:
		return l.MetroDist, true
	case AttrIndex:
		return l.AttrIndex, true
	case RestIndex:
		return l.RestIndex, true
	case AttrIndexNorm:
		return l.AttrIndexNorm, true
	case RestIndexNorm:
		return l.RestIndexNorm, true
	case Lat:
		return l.Lat, true
	case Lng:
		return l.Lng, true
	case RoomShared:
		return b2f(l.RoomShared), true
	case RoomPrivate:
		return b2f(l.RoomPrivate), true
	case HostIsSuperhost:
		return b2f(l.HostIsSuperhost), true
	case Multi:
		return b2f(l.Multi), true
	case Biz:
		return b2f(l.Biz), true
	}
	return 0, false
}

func b2f(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// Cities returns the distinct city names in first-seen order.
func Cities(rows []Listing) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, r := range rows {
		if _, ok := seen[r.City]; ok {
			continue
		}
		seen[r.City] = struct{}{}
		out = append(out, r.City)
	}
	return out
}

// InCity returns the rows whose city equals name.
func InCity(rows []Listing, name string) []Listing {
	var out []Listing
	for _, r := range rows {
		if r.City == name {
			out = append(out, r)
		}
	}
	return out
}
