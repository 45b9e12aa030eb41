package views

import (
	"math"
	"strings"
	"testing"

	"rental-atlas/internal/aggregate"
	"rental-atlas/internal/listing"
)

func rows() []listing.Listing {
	return []listing.Listing{
		{ID: "listing-0", City: "Amsterdam", Price: 100, RoomType: "Entire home", GuestSatisfaction: 80, Dist: 1, MetroDist: 0.5},
		{ID: "listing-1", City: "Amsterdam", Price: 200, RoomType: "Private room", GuestSatisfaction: 100, Dist: 3, MetroDist: 1.5},
		{ID: "listing-2", City: "Paris", Price: 300, RoomType: "Entire home", GuestSatisfaction: math.NaN(), Dist: 2, MetroDist: 0.2},
	}
}

func TestVisibilityTable(t *testing.T) {
	cases := []struct {
		k     ScopeKind
		id    ID
		shown bool
	}{
		{RootScope, PriceByRoomType, true},
		{CityScope, PriceByRoomType, false},
		{RootScope, IndexCorrelation, true},
		{CityScope, IndexCorrelation, true},
		{RootScope, DistanceStack, true},
		{CityScope, DistanceStack, false},
		{RootScope, RoomTypeBar, false},
		{CityScope, RoomTypeBar, true},
		{RootScope, DistanceScatter, false},
		{CityScope, DistanceScatter, true},
		{EmptyScope, Statistics, true},
		{EmptyScope, Histogram, false},
	}
	for _, c := range cases {
		if got := Visible(c.k, c.id); got != c.shown {
			t.Errorf("Visible(%d, %s) = %v, want %v", c.k, c.id, got, c.shown)
		}
	}
	for _, k := range []ScopeKind{RootScope, CityScope, EmptyScope} {
		if len(visibility[k]) != len(All) {
			t.Errorf("scope %d lists %d views, want all %d", k, len(visibility[k]), len(All))
		}
	}
	if got := VisibleSet(EmptyScope); len(got) != 2 || got[0] != Map || got[1] != Statistics {
		t.Errorf("VisibleSet(empty) = %v", got)
	}
}

func TestBuild(t *testing.T) {
	all := rows()
	sums := aggregate.CityMeans(all)
	s := Build(Input{Rows: all, Summaries: sums})
	if s.Stats.Count != 3 || s.Stats.MeanPrice != 200 || s.Stats.MeanSatisfaction != 90 {
		t.Errorf("stats = %+v", s.Stats)
	}
	total := 0
	for _, c := range s.Histogram.Counts {
		total += c
	}
	if len(s.Histogram.Counts) != HistogramBins || total != 2 || s.Histogram.Counts[HistogramBins-1] != 1 {
		t.Errorf("histogram = %+v", s.Histogram)
	}
	if s.Composition.Field != listing.RoomType || len(s.Composition.Buckets) != 2 || s.Composition.Buckets[0].Count != 2 {
		t.Errorf("composition = %+v", s.Composition)
	}
	if len(s.DistanceStack) != 2 || len(s.PriceByRoomType.Rows) != 2 || len(s.RatingsCorrelation) != 3 {
		t.Errorf("root payloads = %d %d %d", len(s.DistanceStack), len(s.PriceByRoomType.Rows), len(s.RatingsCorrelation))
	}

	ams := listing.InCity(all, "Amsterdam")
	c := Build(Input{Rows: ams, Summaries: sums, City: true, ComposeBy: listing.DayStatus})
	if len(c.DistanceStack) != 1 || c.DistanceStack[0].City != "Amsterdam" {
		t.Errorf("city distance stack = %+v", c.DistanceStack)
	}
	if len(c.DistanceScatter) != 2 || c.Composition.Field != listing.DayStatus {
		t.Errorf("city payloads = %+v %+v", c.DistanceScatter, c.Composition)
	}

	e := Build(Input{Summaries: sums})
	if e.Stats.Count != 0 || e.Stats.PriceLabel() != "€0.00" || len(e.Composition.Buckets) != 0 {
		t.Errorf("empty snapshot = %+v", e)
	}
}

func TestBoard(t *testing.T) {
	b := NewBoard()
	s := Build(Input{Rows: rows(), Summaries: aggregate.CityMeans(rows())})
	b.Apply(s, RootScope)
	if !b.Panel(PriceByRoomType).Visible() || b.Panel(RoomTypeBar).Visible() {
		t.Errorf("root visibility wrong: %v", b.Shown())
	}
	if r := b.Panel(RoomTypeBar).Renders(); r != 0 {
		t.Errorf("hidden panel rendered %d times", r)
	}
	lines := b.Panel(Statistics).Lines()
	if len(lines) != 3 || !strings.Contains(lines[1], "€200.00") || !strings.Contains(lines[2], "90.00%") {
		t.Errorf("statistics lines = %q", lines)
	}
	before := b.Panel(Composition).Renders()
	b.Recompose(Compose(rows(), listing.City))
	if b.Panel(Composition).Renders() != before+1 || b.Snapshot().Composition.Field != listing.City {
		t.Errorf("recompose did not re-render composition")
	}
	if got := b.Panel(Composition).Lines(); !strings.HasPrefix(got[0], "by City") {
		t.Errorf("composition lines = %q", got)
	}
	b.Apply(s, CityScope)
	if b.Panel(PriceByRoomType).Visible() || !b.Panel(DistanceScatter).Visible() || b.Scope() != CityScope {
		t.Errorf("city visibility wrong: %v", b.Shown())
	}
	for _, id := range All {
		_ = Describe(id, s)
	}
	if hist := Describe(Histogram, s); len([]rune(hist[0])) != HistogramBins {
		t.Errorf("sparkline = %q", hist[0])
	}
}
