package render

import "rental-atlas/internal/listing"

// TooltipOffset keeps the panel off the pointer, right and below.
const TooltipOffset = 10

// aggregateHidden are flags with no meaning on a city average.
var aggregateHidden = map[listing.Field]bool{
	listing.RoomShared:      true,
	listing.RoomType:        true,
	listing.RoomPrivate:     true,
	listing.HostIsSuperhost: true,
}

// Line is one humanized field of the panel.
type Line struct {
	Name  string
	Value string
}

// Panel is the visible state of the tooltip in a frame.
type Panel struct {
	Visible bool
	X, Y    float64
	Title   string
	Lines   []Line
}

// Tooltip is the single hover panel of a surface. It is created with the
// surface and reused across renders.
type Tooltip struct {
	fields []listing.Field
	detail bool
	panel  Panel
	key    string
}

func (t *Tooltip) configure(fields []listing.Field, detail bool) {
	t.fields = fields
	t.detail = detail
	t.OnLeave()
}

// OnEnter renders the marker's record and places the panel near the pointer.
func (t *Tooltip) OnEnter(m *Marker, px, py float64) {
	t.key = m.Key
	t.panel.Title = m.Key
	t.panel.Lines = t.panel.Lines[:0]
	for _, f := range t.fields {
		if !t.detail && aggregateHidden[f] {
			continue
		}
		v, ok := m.Record.Attr(f)
		if !ok {
			continue
		}
		t.panel.Lines = append(t.panel.Lines, Line{Name: f.Humanize(), Value: v.Format()})
	}
	t.panel.Visible = true
	t.OnMove(px, py)
}

// OnMove repositions a visible panel without touching its content.
func (t *Tooltip) OnMove(px, py float64) {
	t.panel.X = px + TooltipOffset
	t.panel.Y = py + TooltipOffset
}

func (t *Tooltip) OnLeave() {
	t.panel.Visible = false
	t.key = ""
}

// Showing returns the key of the marker under the panel, "" when hidden.
func (t *Tooltip) Showing() string { return t.key }

// Panel returns a copy of the current panel state.
func (t *Tooltip) Panel() Panel {
	p := t.panel
	p.Lines = append([]Line(nil), t.panel.Lines...)
	return p
}
