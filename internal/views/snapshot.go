package views

import (
	"math"
	"time"

	"rental-atlas/internal/aggregate"
	"rental-atlas/internal/listing"
	"rental-atlas/internal/metrics"
)

// HistogramBins is the bin count of the satisfaction histogram.
const HistogramBins = 40

// ComposeOptions are the keys the composition view can be switched to.
var ComposeOptions = []listing.Field{
	listing.City, listing.RoomType, listing.DayStatus, listing.HostIsSuperhost, listing.Bedrooms,
}

// HistogramData bins guest satisfaction over equal-width bins.
type HistogramData struct {
	Min, Max float64
	Counts   []int
}

// CompositionData is a category rollup of the scoped rows.
type CompositionData struct {
	Field   listing.Field
	Buckets []aggregate.Bucket
}

// PivotData is the city x room type mean price table.
type PivotData struct {
	Rows       []aggregate.PivotRow
	Categories []string
}

// ScatterPoint is one listing of the distance scatter.
type ScatterPoint struct {
	Dist      float64
	MetroDist float64
	RoomType  string
}

// Snapshot holds every dependent view's payload for one scope. It is
// rebuilt from scratch on every transition.
type Snapshot struct {
	Stats              aggregate.Stats
	Histogram          HistogramData
	Composition        CompositionData
	DistanceStack      []aggregate.CitySummary
	PriceByRoomType    PivotData
	RatingsCorrelation []aggregate.CrossCell
	IndexCorrelation   []aggregate.CrossCell
	RoomTypeBar        []aggregate.Bucket
	DistanceScatter    []ScatterPoint
}

// Input is what Build needs from the state machine.
type Input struct {
	Rows      []listing.Listing       // scoped rows
	Summaries []aggregate.CitySummary // unfiltered city summaries, used at root
	City      bool
	ComposeBy listing.Field
}

// Build computes every payload from the scoped rows. Views hidden in the
// scope still get a payload; visibility is applied by the Board.
func Build(in Input) Snapshot {
	var s Snapshot
	timed("stats", func() { s.Stats = aggregate.Summarize(in.Rows) })
	timed("histogram", func() { s.Histogram = histogram(in.Rows, HistogramBins) })
	timed("category_rollup", func() { s.Composition = Compose(in.Rows, in.ComposeBy) })
	timed("city_means", func() {
		if in.City {
			s.DistanceStack = aggregate.CityMeans(in.Rows)
		} else {
			s.DistanceStack = in.Summaries
		}
	})
	timed("pivot", func() {
		s.PriceByRoomType.Rows, s.PriceByRoomType.Categories = aggregate.CityByCategoryPivot(in.Rows, aggregate.ByField(listing.RoomType), listing.Price)
	})
	timed("cross_rollup", func() {
		s.RatingsCorrelation = aggregate.CrossRollup(in.Rows, aggregate.ByField(listing.CleanlinessRating), aggregate.ByField(listing.GuestSatisfaction), listing.Price)
		s.IndexCorrelation = aggregate.CrossRollup(in.Rows, aggregate.ByField(listing.AttrIndexNorm), aggregate.ByField(listing.RestIndexNorm), listing.Price)
	})
	s.RoomTypeBar = aggregate.CategoryRollup(in.Rows, aggregate.ByField(listing.RoomType))
	for _, r := range in.Rows {
		s.DistanceScatter = append(s.DistanceScatter, ScatterPoint{Dist: r.Dist, MetroDist: r.MetroDist, RoomType: r.RoomType})
	}
	return s
}

// Compose rolls rows up by field; an empty field means room type.
func Compose(rows []listing.Listing, field listing.Field) CompositionData {
	if field == "" {
		field = listing.RoomType
	}
	return CompositionData{Field: field, Buckets: aggregate.CategoryRollup(rows, aggregate.ByField(field))}
}

func timed(op string, fn func()) {
	start := time.Now()
	fn()
	metrics.AggregationDurationMs.WithLabelValues(op).Observe(float64(time.Since(start).Microseconds()) / 1000)
}

func histogram(rows []listing.Listing, bins int) HistogramData {
	h := HistogramData{Min: math.Inf(1), Max: math.Inf(-1), Counts: make([]int, bins)}
	var vals []float64
	for _, r := range rows {
		v := r.GuestSatisfaction
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		vals = append(vals, v)
		h.Min = math.Min(h.Min, v)
		h.Max = math.Max(h.Max, v)
	}
	if len(vals) == 0 {
		h.Min, h.Max = 0, 0
		return h
	}
	width := (h.Max - h.Min) / float64(bins)
	for _, v := range vals {
		i := 0
		if width > 0 {
			i = int((v - h.Min) / width)
		}
		if i >= bins {
			i = bins - 1
		}
		h.Counts[i]++
	}
	return h
}
