package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"rental-atlas/internal/render"
	"rental-atlas/internal/views"
)

var (
	baseFg    = lipgloss.Color("#E6E6E6")
	dimFg     = lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#6B7280"}
	accentFg  = lipgloss.Color("#2171B5")
	outlineFg = lipgloss.Color("#4B5563")
	borderCol = lipgloss.Color("#243141")
	noticeFg  = lipgloss.Color("#D7301F")

	titleStyle   = lipgloss.NewStyle().Foreground(accentFg).Bold(true)
	accentStyle  = lipgloss.NewStyle().Foreground(accentFg)
	dimStyle     = lipgloss.NewStyle().Foreground(dimFg)
	outlineStyle = lipgloss.NewStyle().Foreground(outlineFg)
	noticeStyle  = lipgloss.NewStyle().Foreground(noticeFg)
	boxStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(borderCol).Padding(0, 1)
	panelStyle   = lipgloss.NewStyle().Foreground(baseFg)
)

const help = "←↑↓→ pan  +/- zoom  0 reset  enter/click drill  b back  f filter  c clear  1-5 compose  q quit"

func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	cols, rows := m.mapSize()

	header := titleStyle.Render("Rental Atlas · "+scopeTitle(m.machine.Scope())) + "  " +
		dimStyle.Render(filterLabel(m.machine.Filter()))
	if m.machine.Busy() {
		header += "  " + m.spin.View()
	}
	header = lipgloss.NewStyle().Width(m.width).MaxHeight(headerHeight).Render(header)

	mapView := lipgloss.NewStyle().Width(cols).Height(rows).Render(m.renderMap(cols, rows))
	sidebar := lipgloss.NewStyle().Width(sidebarWidth).MaxHeight(rows).Render(m.renderSidebar())
	body := lipgloss.JoinHorizontal(lipgloss.Top, mapView, " ", sidebar)

	status := m.status
	if n := m.machine.Notice(); n.Text != "" {
		status = noticeStyle.Render(n.Text)
	}
	footer := lipgloss.JoinVertical(lipgloss.Left, status, dimStyle.Render(help))
	footer = lipgloss.NewStyle().Width(m.width).MaxHeight(footerHeight).Render(footer)
	return lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
}

// renderMap draws the current frame. Outlines are dim, markers take their fill.
func (m Model) renderMap(cols, rows int) string {
	grid := render.Canvas(m.surface.Frame(), cols, rows)
	styles := map[string]lipgloss.Style{}
	var sb strings.Builder
	for y, line := range grid {
		if y > 0 {
			sb.WriteByte('\n')
		}
		for _, c := range line {
			switch {
			case c.Fill != "":
				st, ok := styles[c.Fill]
				if !ok {
					st = lipgloss.NewStyle().Foreground(lipgloss.Color(c.Fill))
					styles[c.Fill] = st
				}
				sb.WriteString(st.Render(string(c.Rune)))
			case c.Rune != ' ':
				sb.WriteString(outlineStyle.Render(string(c.Rune)))
			default:
				sb.WriteByte(' ')
			}
		}
	}
	return sb.String()
}

// renderSidebar stacks the tooltip, the legend and every visible view.
func (m Model) renderSidebar() string {
	var blocks []string
	inner := sidebarWidth - 4
	if p := m.surface.Tooltip().Panel(); p.Visible {
		lines := []string{titleStyle.Render(p.Title)}
		for _, l := range p.Lines {
			lines = append(lines, fmt.Sprintf("%s: %s", l.Name, l.Value))
		}
		blocks = append(blocks, boxStyle.Width(inner).Render(strings.Join(lines, "\n")))
	}
	if lg := m.surface.Legend(); lg != nil && len(lg.Entries) > 0 {
		var sw strings.Builder
		for _, e := range lg.Entries {
			sw.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(e.Color)).Render("█"))
		}
		first, last := lg.Entries[0], lg.Entries[len(lg.Entries)-1]
		blocks = append(blocks, fmt.Sprintf("%s %s %s %s", dimStyle.Render(lg.Title), first.Label, sw.String(), last.Label))
	}
	for _, id := range m.board.Shown() {
		if id == views.Map {
			continue
		}
		lines := m.board.Panel(id).Lines()
		if len(lines) == 0 {
			continue
		}
		body := titleStyle.Render(id.String()) + "\n" + panelStyle.Render(strings.Join(lines, "\n"))
		blocks = append(blocks, boxStyle.Width(inner).Render(body))
	}
	return lipgloss.JoinVertical(lipgloss.Left, blocks...)
}
