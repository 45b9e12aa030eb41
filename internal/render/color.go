package render

import (
	"fmt"
	"math"

	"rental-atlas/internal/aggregate"
	"rental-atlas/internal/listing"
)

// blues is the nine-step sequential Blues scheme.
var blues = [9][3]uint8{
	{0xf7, 0xfb, 0xff}, {0xde, 0xeb, 0xf7}, {0xc6, 0xdb, 0xef},
	{0x9e, 0xca, 0xe1}, {0x6b, 0xae, 0xd6}, {0x42, 0x92, 0xc6},
	{0x21, 0x71, 0xb5}, {0x08, 0x51, 0x9c}, {0x08, 0x30, 0x6b},
}

// LegendSteps is the number of swatches in the generated legend.
const LegendSteps = 10

// ColorScale maps a magnitude onto the Blues ramp, linearly over [Min, Max].
type ColorScale struct {
	Min   float64
	Max   float64
	Field listing.Field
}

// PriceScale builds the scale from the mean prices of the given summaries.
func PriceScale(summaries []aggregate.CitySummary) ColorScale {
	s := ColorScale{Min: math.Inf(1), Max: math.Inf(-1), Field: listing.Price}
	for _, c := range summaries {
		if v, ok := c.Mean(listing.Price); ok {
			s.Min = math.Min(s.Min, v)
			s.Max = math.Max(s.Max, v)
		}
	}
	if math.IsInf(s.Min, 0) {
		s.Min, s.Max = 0, 0
	}
	return s
}

// Color returns a #rrggbb fill. Values outside the domain clamp to the ends;
// NaN maps to grey.
func (s ColorScale) Color(v float64) string {
	if math.IsNaN(v) {
		return "#bdbdbd"
	}
	t := 0.5
	if s.Max > s.Min {
		t = (v - s.Min) / (s.Max - s.Min)
	}
	t = math.Max(0, math.Min(1, t))
	pos := t * float64(len(blues)-1)
	i := int(math.Floor(pos))
	if i >= len(blues)-1 {
		i = len(blues) - 2
	}
	f := pos - float64(i)
	a, b := blues[i], blues[i+1]
	mix := func(x, y uint8) uint8 { return uint8(math.Round(float64(x) + (float64(y)-float64(x))*f)) }
	return fmt.Sprintf("#%02x%02x%02x", mix(a[0], b[0]), mix(a[1], b[1]), mix(a[2], b[2]))
}

// LegendEntry is one swatch.
type LegendEntry struct {
	Value float64
	Color string
	Label string
}

// Legend is the color key generated with an aggregated marker layer.
type Legend struct {
	Title   string
	Entries []LegendEntry
}

// Legend spreads LegendSteps swatches evenly over the domain.
func (s ColorScale) Legend() *Legend {
	l := &Legend{Title: "Avg " + s.Field.Humanize()}
	step := (s.Max - s.Min) / float64(LegendSteps-1)
	for i := 0; i < LegendSteps; i++ {
		v := s.Min + step*float64(i)
		l.Entries = append(l.Entries, LegendEntry{Value: v, Color: s.Color(v), Label: fmt.Sprintf("€%.0f", v)})
	}
	return l
}
