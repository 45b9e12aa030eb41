// Package views defines the dashboard's dependent views, which of them are
// shown in each scope, and the Board that owns one panel per view.
package views

// ID names a dependent view.
type ID int

const (
	Map ID = iota
	Statistics
	Histogram
	Composition
	DistanceStack
	PriceByRoomType
	RatingsCorrelation
	IndexCorrelation
	RoomTypeBar
	DistanceScatter
)

// All lists every view in display order.
var All = []ID{
	Map, Statistics, Histogram, Composition, DistanceStack,
	PriceByRoomType, RatingsCorrelation, IndexCorrelation, RoomTypeBar, DistanceScatter,
}

var names = map[ID]string{
	Map:                "map",
	Statistics:         "statistics",
	Histogram:          "satisfaction histogram",
	Composition:        "composition",
	DistanceStack:      "distance stack",
	PriceByRoomType:    "price by room type",
	RatingsCorrelation: "cleanliness x satisfaction",
	IndexCorrelation:   "attraction x restaurant",
	RoomTypeBar:        "room types",
	DistanceScatter:    "distance scatter",
}

func (id ID) String() string { return names[id] }

// ScopeKind selects a column of the visibility table.
type ScopeKind int

const (
	RootScope ScopeKind = iota
	CityScope
	EmptyScope
)

// visibility is the public contract: a view shown in the wrong scope is a bug.
var visibility = map[ScopeKind]map[ID]bool{
	RootScope: {
		Map: true, Statistics: true, Histogram: true, Composition: true, DistanceStack: true,
		PriceByRoomType: true, RatingsCorrelation: true, IndexCorrelation: true,
		RoomTypeBar: false, DistanceScatter: false,
	},
	CityScope: {
		Map: true, Statistics: true, Histogram: true, Composition: true, DistanceStack: false,
		PriceByRoomType: false, RatingsCorrelation: true, IndexCorrelation: true,
		RoomTypeBar: true, DistanceScatter: true,
	},
	EmptyScope: {
		Map: true, Statistics: true, Histogram: false, Composition: false, DistanceStack: false,
		PriceByRoomType: false, RatingsCorrelation: false, IndexCorrelation: false,
		RoomTypeBar: false, DistanceScatter: false,
	},
}

// Visible reports whether id is shown in scope kind k.
func Visible(k ScopeKind, id ID) bool { return visibility[k][id] }

// VisibleSet returns the shown views of k in display order.
func VisibleSet(k ScopeKind) []ID {
	var out []ID
	for _, id := range All {
		if visibility[k][id] {
			out = append(out, id)
		}
	}
	return out
}
