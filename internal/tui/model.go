// Package tui is the terminal dashboard: a braille map on the left, the
// visible views on the right and a status line. All state changes go through
// the drill machine on the bubbletea update loop; geometry loads run as
// commands and come back as messages tagged with their request id.
package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"rental-atlas/internal/drill"
	"rental-atlas/internal/filter"
	"rental-atlas/internal/geometry"
	"rental-atlas/internal/listing"
	"rental-atlas/internal/logger"
	"rental-atlas/internal/render"
	"rental-atlas/internal/views"
)

const (
	sidebarWidth = 46
	headerHeight = 1
	footerHeight = 2
	panStep      = 8.0
	zoomStep     = 1.5
)

// Preset is one entry of the filter cycle bound to "f".
type Preset struct {
	Label   string
	Options map[string]string
}

// Presets mirror the most used combinations of the filter form.
var Presets = []Preset{
	{"all listings", map[string]string{}},
	{"price 0-150", map[string]string{filter.OptPrice: "0-150"}},
	{"price 150-300", map[string]string{filter.OptPrice: "150-300"}},
	{"price 300+", map[string]string{filter.OptPrice: "300-20000"}},
	{"entire homes", map[string]string{filter.OptRoomType: "Entire home/apt"}},
	{"weekends", map[string]string{filter.OptDayStatus: "weekends"}},
	{"superhosts", map[string]string{filter.OptSuperhost: "true"}},
	{"business, 2 guests", map[string]string{filter.OptBusiness: "true", filter.OptCapacity: "2"}},
}

// geometryMsg carries a finished fetch back to the update loop.
type geometryMsg struct {
	id   string
	coll *geometry.Collection
	err  error
}

// Model is the bubbletea model. It owns no domain state of its own.
type Model struct {
	ctx     context.Context
	machine *drill.Machine
	surface *render.Surface
	board   *views.Board
	log     *slog.Logger

	spin    spinner.Model
	width   int
	height  int
	preset  int
	hovered string
	status  string
}

func New(ctx context.Context, m *drill.Machine, s *render.Surface, b *views.Board) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = accentStyle
	return Model{ctx: ctx, machine: m, surface: s, board: b, log: logger.L(), spin: sp, status: "loading europe"}
}

func (m Model) Init() tea.Cmd {
	return m.begin(m.machine.Start())
}

// begin starts the fetch for req and keeps the spinner running while busy.
func (m Model) begin(req *drill.Request) tea.Cmd {
	if req == nil {
		return nil
	}
	ctx := m.ctx
	fetch := func() tea.Msg {
		c, err := req.Fetch(ctx)
		return geometryMsg{id: req.ID, coll: c, err: err}
	}
	return tea.Batch(fetch, m.spin.Tick)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		cols, rows := m.mapSize()
		if err := m.surface.Resize(float64(cols*2), float64(rows*4)); err != nil {
			m.log.Error("surface_resize_error", "err", err)
		}
	case geometryMsg:
		err := m.machine.Complete(msg.id, msg.coll, msg.err)
		switch {
		case errors.Is(err, drill.ErrStale):
		case err != nil:
			m.status = m.machine.Notice().Text
		default:
			m.status = "showing " + scopeTitle(m.machine.Scope())
		}
	case spinner.TickMsg:
		if !m.machine.Busy() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	case tea.KeyMsg:
		return m.key(msg)
	case tea.MouseMsg:
		return m.mouse(msg)
	}
	return m, nil
}

func (m Model) key(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	z := m.surface.Zoom()
	w, h := m.surface.Size()
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "up":
		z.TranslateBy(0, panStep)
	case "down":
		z.TranslateBy(0, -panStep)
	case "left":
		z.TranslateBy(panStep, 0)
	case "right":
		z.TranslateBy(-panStep, 0)
	case "+", "=":
		z.ScaleBy(zoomStep, w/2, h/2)
	case "-", "_":
		z.ScaleBy(1/zoomStep, w/2, h/2)
	case "0":
		z.Reset()
	case "enter":
		if m.hovered == "" {
			m.status = "hover a city marker first"
			return m, nil
		}
		return m.drill(m.hovered)
	case "b", "backspace", "esc":
		req, err := m.machine.BeginBack()
		if err != nil {
			m.status = "already at the overview"
			return m, nil
		}
		if req == nil {
			m.status = "drill cancelled"
			return m, nil
		}
		m.status = "loading europe"
		return m, m.begin(req)
	case "f":
		m.preset = (m.preset + 1) % len(Presets)
		return m.applyPreset()
	case "c":
		m.preset = 0
		req := m.machine.BeginFilter(filter.Cleared())
		m.status = "filters cleared"
		return m, m.begin(req)
	case "1", "2", "3", "4", "5":
		i := int(msg.String()[0] - '1')
		if err := m.machine.Recompose(views.ComposeOptions[i]); err != nil {
			m.status = err.Error()
		} else {
			m.status = "composition by " + views.ComposeOptions[i].Humanize()
		}
	}
	return m, nil
}

func (m Model) applyPreset() (tea.Model, tea.Cmd) {
	p := Presets[m.preset]
	f, err := filter.Parse(p.Options)
	if err != nil {
		m.status = err.Error()
		return m, nil
	}
	m.status = "filter: " + p.Label
	return m, m.begin(m.machine.BeginFilter(f))
}

func (m Model) drill(city string) (tea.Model, tea.Cmd) {
	req, err := m.machine.BeginDrill(city)
	if err != nil {
		m.status = m.machine.Notice().Text
		if m.status == "" {
			m.status = err.Error()
		}
		return m, nil
	}
	m.status = "loading " + city
	return m, m.begin(req)
}

func (m Model) mouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	cols, rows := m.mapSize()
	cx, cy := msg.X, msg.Y-headerHeight
	if cx < 0 || cy < 0 || cx >= cols || cy >= rows {
		if m.surface.Tooltip().Showing() != "" {
			m.surface.Tooltip().OnLeave()
		}
		m.hovered = ""
		return m, nil
	}
	px, py := float64(cx*2)+1, float64(cy*4)+2
	switch msg.Type {
	case tea.MouseWheelUp:
		m.surface.Zoom().ScaleBy(zoomStep, px, py)
	case tea.MouseWheelDown:
		m.surface.Zoom().ScaleBy(1/zoomStep, px, py)
	case tea.MouseMotion:
		m.hover(px, py)
	case tea.MouseLeft:
		m.hover(px, py)
		if m.hovered != "" {
			return m.drill(m.hovered)
		}
	}
	return m, nil
}

// hover updates the tooltip and remembers the city marker under the pointer.
// Listing pins are never drill targets.
func (m *Model) hover(px, py float64) {
	mk, ok := m.surface.Hover(px, py)
	m.hovered = ""
	if !ok || m.surface.Mode() != render.ModeAggregated {
		return
	}
	m.hovered = mk.Key
}

// mapSize is the map area in terminal cells.
func (m Model) mapSize() (int, int) {
	cols := m.width - sidebarWidth - 1
	rows := m.height - headerHeight - footerHeight
	return max(cols, 10), max(rows, 4)
}

func scopeTitle(s drill.Scope) string {
	if s.IsRoot() {
		return "Europe"
	}
	return s.Name()
}

// filterLabel lists the active predicates, "no filters" when none.
func filterLabel(f filter.Filter) string {
	if f.IsZero() {
		return "no filters"
	}
	out := ""
	opts := f.Options()
	for _, k := range []string{filter.OptPrice, filter.OptDayStatus, filter.OptCapacity, filter.OptBusiness, filter.OptBedrooms, filter.OptRoomType, filter.OptSuperhost} {
		if v := opts[k]; v != filter.All {
			if out != "" {
				out += ", "
			}
			out += fmt.Sprintf("%s=%s", listing.Field(k).Humanize(), v)
		}
	}
	return out
}
