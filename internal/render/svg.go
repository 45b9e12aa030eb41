package render

import (
	"bufio"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// WriteSVG serializes a frame. The region group and the marker group carry
// the same transform attribute; legend and tooltip sit in screen space.
func WriteSVG(w io.Writer, f Frame) error {
	bw := bufio.NewWriter(w)
	tr := f.Transform.String()
	fmt.Fprintf(bw, `<svg xmlns="http://www.w3.org/2000/svg" width="%s" height="%s" viewBox="0 0 %s %s">`+"\n",
		ftoa(f.Width), ftoa(f.Height), ftoa(f.Width), ftoa(f.Height))
	fmt.Fprintf(bw, `<g class="regions" transform="%s">`+"\n", tr)
	for _, r := range f.Regions {
		fmt.Fprintf(bw, `<path class="region" data-id="%s" d="%s" fill="#eeeeee" stroke="#999999" stroke-width="0.5"><title>%s</title></path>`+"\n",
			esc(r.ID), pathData(r.Rings), esc(r.Name))
	}
	bw.WriteString("</g>\n")
	fmt.Fprintf(bw, `<g class="markers %s" transform="%s">`+"\n", f.Mode, tr)
	for _, m := range f.Markers {
		switch m.Kind {
		case Circle:
			fmt.Fprintf(bw, `<circle data-key="%s" cx="%s" cy="%s" r="%s" fill="%s"/>`+"\n",
				esc(m.Key), ftoa(m.X), ftoa(m.Y), ftoa(m.Radius), m.Fill)
		case Pin:
			r, d := ftoa(m.Radius), ftoa(m.Radius*2)
			fmt.Fprintf(bw, `<g class="pin" data-key="%s" transform="translate(%s,%s)"><path d="M0,0L-%s,-%sA%s,%s 0 1 1 %s,-%sZ" fill="%s"/><text x="%s" y="-%s" font-size="4">%s</text></g>`+"\n",
				esc(m.Key), ftoa(m.X), ftoa(m.Y), r, d, r, r, r, d, m.Fill, r, d, esc(m.Label))
		}
	}
	bw.WriteString("</g>\n")
	if f.Legend != nil {
		fmt.Fprintf(bw, `<g class="legend" transform="translate(10,10)"><text y="-2" font-size="8">%s</text>`+"\n", esc(f.Legend.Title))
		for i, e := range f.Legend.Entries {
			fmt.Fprintf(bw, `<rect x="%d" y="0" width="24" height="8" fill="%s"/><text x="%d" y="16" font-size="5">%s</text>`+"\n",
				i*24, e.Color, i*24, esc(e.Label))
		}
		bw.WriteString("</g>\n")
	}
	if f.Tooltip.Visible {
		fmt.Fprintf(bw, `<g class="tooltip" transform="translate(%s,%s)"><text font-size="6"><tspan x="0" dy="6">%s</tspan>`,
			ftoa(f.Tooltip.X), ftoa(f.Tooltip.Y), esc(f.Tooltip.Title))
		for _, l := range f.Tooltip.Lines {
			fmt.Fprintf(bw, `<tspan x="0" dy="7">%s: %s</tspan>`, esc(l.Name), esc(l.Value))
		}
		bw.WriteString("</text></g>\n")
	}
	bw.WriteString("</svg>\n")
	return bw.Flush()
}

func pathData(rings [][][2]float64) string {
	var sb strings.Builder
	for _, ring := range rings {
		for i, p := range ring {
			if i == 0 {
				sb.WriteByte('M')
			} else {
				sb.WriteByte('L')
			}
			sb.WriteString(fmt.Sprintf("%.2f,%.2f", p[0], p[1]))
		}
		if len(ring) > 0 {
			sb.WriteByte('Z')
		}
	}
	return sb.String()
}

func esc(s string) string {
	var sb strings.Builder
	_ = xml.EscapeText(&sb, []byte(s))
	return sb.String()
}
