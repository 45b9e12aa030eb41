// Package aggregate turns listing rows into the summary tables the map and the
// linked views render. Every rollup is built on GroupByChain.
package aggregate

import (
	"math"
	"sort"

	"rental-atlas/internal/listing"
)

// KeyFunc extracts one grouping key from a row.
type KeyFunc[R any] func(R) listing.Value

// Group is one leaf of a grouping chain: the key path from the outermost
// selector inwards, the number of rows and the reduced value.
type Group[V any] struct {
	Keys  []listing.Value
	Count int
	Value V
}

// GroupByChain partitions rows by each key selector in turn and reduces every
// leaf. Leaves are ordered ascending by key path. Without selectors the whole
// input is one group; without rows the result is empty.
func GroupByChain[R, V any](rows []R, keys []KeyFunc[R], reduce func([]R) V) []Group[V] {
	if len(rows) == 0 {
		return nil
	}
	type leaf struct {
		keys []listing.Value
		rows []R
	}
	index := make(map[string]int)
	var leaves []leaf
	for _, r := range rows {
		path := make([]listing.Value, len(keys))
		id := ""
		for i, k := range keys {
			path[i] = k(r)
			id += path[i].Hash() + "\x00"
		}
		i, ok := index[id]
		if !ok {
			i = len(leaves)
			index[id] = i
			leaves = append(leaves, leaf{keys: path})
		}
		leaves[i].rows = append(leaves[i].rows, r)
	}
	sort.SliceStable(leaves, func(i, j int) bool { return lessPath(leaves[i].keys, leaves[j].keys) })
	out := make([]Group[V], len(leaves))
	for i, l := range leaves {
		out[i] = Group[V]{Keys: l.keys, Count: len(l.rows), Value: reduce(l.rows)}
	}
	return out
}

func lessPath(a, b []listing.Value) bool {
	for i := range a {
		if a[i].Less(b[i]) {
			return true
		}
		if b[i].Less(a[i]) {
			return false
		}
	}
	return false
}

// ByField selects a listing attribute. Absent numeric cells group under NaN.
func ByField(f listing.Field) KeyFunc[listing.Listing] {
	return func(l listing.Listing) listing.Value {
		if v, ok := l.Attr(f); ok {
			return v
		}
		return listing.Number(math.NaN())
	}
}

// count is the reducer for pure rollups.
func count[R any](rows []R) int { return len(rows) }

// MeanOf averages the finite values of f. ok is false when none are finite.
func MeanOf(rows []listing.Listing, f listing.Field) (float64, bool) {
	var sum float64
	n := 0
	for _, r := range rows {
		v, ok := r.Number(f)
		if !ok || math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		sum += v
		n++
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}

// SumOf adds the finite values of f.
func SumOf(rows []listing.Listing, f listing.Field) float64 {
	var sum float64
	for _, r := range rows {
		v, ok := r.Number(f)
		if !ok || math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		sum += v
	}
	return sum
}
