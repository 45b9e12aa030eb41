package aggregate

import (
	"fmt"
	"math"
	"sort"
	"strconv"

	"rental-atlas/internal/listing"
)

// CitySummary is the per-city mean of every numeric field. A field whose group
// has no finite value is absent from Means.
type CitySummary struct {
	City  string
	Count int
	Means map[listing.Field]float64
}

func (s CitySummary) Key() string { return s.City }

// Coordinates returns the mean position, NaN when unknown.
func (s CitySummary) Coordinates() (float64, float64) {
	lat, ok1 := s.Means[listing.Lat]
	lng, ok2 := s.Means[listing.Lng]
	if !ok1 || !ok2 {
		return math.NaN(), math.NaN()
	}
	return lat, lng
}

func (s CitySummary) Attr(f listing.Field) (listing.Value, bool) {
	if f == listing.City {
		return listing.String(s.City), true
	}
	v, ok := s.Means[f]
	if !ok {
		return listing.Value{}, false
	}
	return listing.Number(v), true
}

// Mean returns the mean of f.
func (s CitySummary) Mean(f listing.Field) (float64, bool) {
	v, ok := s.Means[f]
	return v, ok
}

// CityMeans groups by city and averages every numeric field. Sorted by city.
func CityMeans(rows []listing.Listing) []CitySummary {
	groups := GroupByChain(rows, []KeyFunc[listing.Listing]{ByField(listing.City)}, func(rs []listing.Listing) map[listing.Field]float64 {
		means := make(map[listing.Field]float64, len(listing.NumericFields))
		for _, f := range listing.NumericFields {
			if m, ok := MeanOf(rs, f); ok {
				means[f] = m
			}
		}
		return means
	})
	out := make([]CitySummary, len(groups))
	for i, g := range groups {
		out[i] = CitySummary{City: g.Keys[0].S, Count: g.Count, Means: g.Value}
	}
	return out
}

// Bucket is one category of a rollup.
type Bucket struct {
	Key   listing.Value
	Count int
}

// CategoryRollup counts rows per distinct key, ascending by key.
func CategoryRollup(rows []listing.Listing, key KeyFunc[listing.Listing]) []Bucket {
	groups := GroupByChain(rows, []KeyFunc[listing.Listing]{key}, count[listing.Listing])
	out := make([]Bucket, len(groups))
	for i, g := range groups {
		out[i] = Bucket{Key: g.Keys[0], Count: g.Count}
	}
	return out
}

// CrossCell is one (city, a, b) leaf with the sum of a value field.
type CrossCell struct {
	City  string
	A     listing.Value
	B     listing.Value
	Sum   float64
	Count int
}

// CrossRollup groups by city, then keyA, then keyB, summing value over each
// leaf. NaN values contribute nothing to the sum.
func CrossRollup(rows []listing.Listing, keyA, keyB KeyFunc[listing.Listing], value listing.Field) []CrossCell {
	keys := []KeyFunc[listing.Listing]{ByField(listing.City), keyA, keyB}
	groups := GroupByChain(rows, keys, func(rs []listing.Listing) float64 { return SumOf(rs, value) })
	out := make([]CrossCell, len(groups))
	for i, g := range groups {
		out[i] = CrossCell{City: g.Keys[0].S, A: g.Keys[1], B: g.Keys[2], Sum: g.Value, Count: g.Count}
	}
	return out
}

// PivotRow holds one city's mean value per category. Missing categories are
// absent, never zero.
type PivotRow struct {
	City   string
	Values map[string]float64
}

// CityByCategoryPivot averages value per (city, category) and reshapes the
// result into one row per city. It also returns the sorted category labels.
func CityByCategoryPivot(rows []listing.Listing, category KeyFunc[listing.Listing], value listing.Field) ([]PivotRow, []string) {
	keys := []KeyFunc[listing.Listing]{ByField(listing.City), category}
	groups := GroupByChain(rows, keys, func(rs []listing.Listing) meanResult {
		m, ok := MeanOf(rs, value)
		return meanResult{m, ok}
	})
	var out []PivotRow
	cats := make(map[string]listing.Value)
	for _, g := range groups {
		city := g.Keys[0].S
		if len(out) == 0 || out[len(out)-1].City != city {
			out = append(out, PivotRow{City: city, Values: map[string]float64{}})
		}
		label := pivotLabel(g.Keys[1])
		cats[label] = g.Keys[1]
		if g.Value.ok {
			out[len(out)-1].Values[label] = g.Value.mean
		}
	}
	vals := make([]listing.Value, 0, len(cats))
	for _, v := range cats {
		vals = append(vals, v)
	}
	sort.Slice(vals, func(i, j int) bool { return vals[i].Less(vals[j]) })
	labels := make([]string, len(vals))
	for i, v := range vals {
		labels[i] = pivotLabel(v)
	}
	return out, labels
}

// pivotLabel keeps numeric categories at full precision so distinct values
// never share a column.
func pivotLabel(v listing.Value) string {
	if v.Kind != listing.KindNumber || math.IsNaN(v.N) || math.IsInf(v.N, 0) {
		return v.String()
	}
	if v.N == 0 {
		return "0"
	}
	return strconv.FormatFloat(v.N, 'g', -1, 64)
}

type meanResult struct {
	mean float64
	ok   bool
}

// Stats backs the statistics cards.
type Stats struct {
	Count            int
	MeanPrice        float64
	MeanSatisfaction float64
}

// Summarize computes the statistics cards. Empty input yields zeros.
func Summarize(rows []listing.Listing) Stats {
	s := Stats{Count: len(rows)}
	s.MeanPrice, _ = MeanOf(rows, listing.Price)
	s.MeanSatisfaction, _ = MeanOf(rows, listing.GuestSatisfaction)
	return s
}

// PriceLabel renders the average price card.
func (s Stats) PriceLabel() string { return fmt.Sprintf("€%.2f", s.MeanPrice) }

// SatisfactionLabel renders mean satisfaction (0..100) as a percentage.
func (s Stats) SatisfactionLabel() string { return fmt.Sprintf("%.2f%%", s.MeanSatisfaction) }
