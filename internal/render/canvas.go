package render

import "math"

// Cell is one terminal character of a canvas.
type Cell struct {
	Rune rune
	Fill string // marker color, "" for outline dots
}

// Canvas rasterizes a frame into cols x rows braille cells (2x4 dots each).
// The frame is expected to be sized in dots: Width = cols*2, Height = rows*4.
// Region outlines are dots; markers overwrite their cell with a glyph.
func Canvas(f Frame, cols, rows int) [][]Cell {
	dots := make([][]uint8, rows)
	for i := range dots {
		dots[i] = make([]uint8, cols)
	}
	set := func(x, y int) {
		if x < 0 || y < 0 || x >= cols*2 || y >= rows*4 {
			return
		}
		dots[y/4][x/2] |= brailleBit(x%2, y%4)
	}
	t := f.Transform
	for _, r := range f.Regions {
		for _, ring := range r.Rings {
			for i := 1; i < len(ring); i++ {
				x0, y0 := t.Apply(ring[i-1][0], ring[i-1][1])
				x1, y1 := t.Apply(ring[i][0], ring[i][1])
				line(x0, y0, x1, y1, set)
			}
		}
	}
	out := make([][]Cell, rows)
	for y := range out {
		out[y] = make([]Cell, cols)
		for x := range out[y] {
			out[y][x] = Cell{Rune: ' '}
			if dots[y][x] != 0 {
				out[y][x].Rune = rune(0x2800 + int(dots[y][x]))
			}
		}
	}
	for _, m := range f.Markers {
		sx, sy := t.Apply(m.X, m.Y)
		cx, cy := int(math.Floor(sx/2)), int(math.Floor(sy/4))
		if cx < 0 || cy < 0 || cx >= cols || cy >= rows {
			continue
		}
		g := '●'
		if m.Kind == Pin {
			g = '▼'
		}
		out[cy][cx] = Cell{Rune: g, Fill: m.Fill}
	}
	return out
}

// brailleBit maps a dot inside a 2x4 cell to its Unicode bit.
func brailleBit(dx, dy int) uint8 {
	if dy == 3 {
		if dx == 0 {
			return 0x40
		}
		return 0x80
	}
	if dx == 0 {
		return 1 << dy
	}
	return 1 << (dy + 3)
}

// line walks a segment with Bresenham on rounded endpoints.
func line(fx0, fy0, fx1, fy1 float64, set func(x, y int)) {
	x0, y0 := int(math.Round(fx0)), int(math.Round(fy0))
	x1, y1 := int(math.Round(fx1)), int(math.Round(fy1))
	dx, dy := abs(x1-x0), -abs(y1-y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy
	for n := 0; n < 1<<16; n++ {
		set(x0, y0)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
