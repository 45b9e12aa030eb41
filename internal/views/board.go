package views

import (
	"fmt"
	"sort"
	"strings"

	"rental-atlas/internal/aggregate"
	"rental-atlas/internal/listing"
)

// Panel is the widget instance of one view: its visibility and the payload
// it last rendered.
type Panel struct {
	ID      ID
	visible bool
	renders int
	snap    *Snapshot
}

func (p *Panel) Visible() bool { return p.visible }

// Renders counts how many payloads the panel has received.
func (p *Panel) Renders() int { return p.renders }

// Lines is the text rendering of the panel's payload.
func (p *Panel) Lines() []string {
	if p.snap == nil {
		return nil
	}
	return Describe(p.ID, *p.snap)
}

// Board owns one Panel per view. The state machine holds it by reference and
// is the only writer.
type Board struct {
	panels map[ID]*Panel
	snap   Snapshot
	scope  ScopeKind
}

func NewBoard() *Board {
	b := &Board{panels: make(map[ID]*Panel, len(All))}
	for _, id := range All {
		b.panels[id] = &Panel{ID: id}
	}
	return b
}

// Apply installs a snapshot and the visibility column of k. Hidden panels keep
// their previous payload but are not re-rendered.
func (b *Board) Apply(s Snapshot, k ScopeKind) {
	b.snap = s
	b.scope = k
	cur := &s
	for _, id := range All {
		p := b.panels[id]
		p.visible = Visible(k, id)
		if p.visible {
			p.snap = cur
			p.renders++
		}
	}
}

// Recompose swaps the composition payload only.
func (b *Board) Recompose(c CompositionData) {
	b.snap.Composition = c
	if p := b.panels[Composition]; p.visible {
		cur := b.snap
		p.snap = &cur
		p.renders++
	}
}

func (b *Board) Panel(id ID) *Panel { return b.panels[id] }

func (b *Board) Snapshot() Snapshot { return b.snap }

func (b *Board) Scope() ScopeKind { return b.scope }

// Shown returns the visible views in display order.
func (b *Board) Shown() []ID {
	var out []ID
	for _, id := range All {
		if b.panels[id].visible {
			out = append(out, id)
		}
	}
	return out
}

const sparks = "▁▂▃▄▅▆▇█"

// Describe renders a payload as short text lines for terminal panels.
func Describe(id ID, s Snapshot) []string {
	switch id {
	case Statistics:
		return []string{
			fmt.Sprintf("Available Rentals  %d", s.Stats.Count),
			fmt.Sprintf("Average Price      %s", s.Stats.PriceLabel()),
			fmt.Sprintf("Avg Satisfaction   %s", s.Stats.SatisfactionLabel()),
		}
	case Histogram:
		peak := 0
		for _, c := range s.Histogram.Counts {
			if c > peak {
				peak = c
			}
		}
		var sb strings.Builder
		runes := []rune(sparks)
		for _, c := range s.Histogram.Counts {
			i := 0
			if peak > 0 {
				i = c * (len(runes) - 1) / peak
			}
			sb.WriteRune(runes[i])
		}
		return []string{sb.String(), fmt.Sprintf("%.0f .. %.0f", s.Histogram.Min, s.Histogram.Max)}
	case Composition:
		return bucketLines(s.Composition.Buckets, s.Stats.Count, "by "+s.Composition.Field.Humanize())
	case RoomTypeBar:
		return bucketLines(s.RoomTypeBar, s.Stats.Count, "")
	case DistanceStack:
		var out []string
		for _, c := range s.DistanceStack {
			d, _ := c.Mean(listing.Dist)
			m, _ := c.Mean(listing.MetroDist)
			out = append(out, fmt.Sprintf("%-10s centre %5.2f  metro %5.2f", c.City, d, m))
		}
		return out
	case PriceByRoomType:
		out := []string{"city        " + strings.Join(s.PriceByRoomType.Categories, " | ")}
		for _, r := range s.PriceByRoomType.Rows {
			cells := make([]string, len(s.PriceByRoomType.Categories))
			for i, c := range s.PriceByRoomType.Categories {
				if v, ok := r.Values[c]; ok {
					cells[i] = fmt.Sprintf("€%.0f", v)
				} else {
					cells[i] = "-"
				}
			}
			out = append(out, fmt.Sprintf("%-10s  %s", r.City, strings.Join(cells, " | ")))
		}
		return out
	case RatingsCorrelation:
		return crossLines(s.RatingsCorrelation, "cleanliness", "satisfaction")
	case IndexCorrelation:
		return crossLines(s.IndexCorrelation, "attraction", "restaurant")
	case DistanceScatter:
		return []string{fmt.Sprintf("%d listings plotted (centre vs metro distance)", len(s.DistanceScatter))}
	}
	return nil
}

func bucketLines(bs []aggregate.Bucket, total int, title string) []string {
	var out []string
	if title != "" {
		out = append(out, title)
	}
	for _, b := range bs {
		pct := 0.0
		if total > 0 {
			pct = float64(b.Count) * 100 / float64(total)
		}
		out = append(out, fmt.Sprintf("%-16s %5d %5.1f%%", b.Key.String(), b.Count, pct))
	}
	return out
}

// crossLines lists the five leaves with the highest price sum.
func crossLines(cells []aggregate.CrossCell, a, b string) []string {
	top := append([]aggregate.CrossCell(nil), cells...)
	sort.SliceStable(top, func(i, j int) bool { return top[i].Sum > top[j].Sum })
	if len(top) > 5 {
		top = top[:5]
	}
	out := []string{fmt.Sprintf("%d leaves", len(cells))}
	for _, c := range top {
		out = append(out, fmt.Sprintf("%-10s %s=%s %s=%s €%.0f", c.City, a, c.A.Format(), b, c.B.Format(), c.Sum))
	}
	return out
}
