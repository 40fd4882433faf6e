package chart

import (
	"bytes"
	"fmt"
	"io"
)

// Placeholder is shown instead of a plot when the batch is too small.
const Placeholder = "Not enough data for this period."

const (
	lineColor    = "#10B981"
	gridColor    = "#e5e7eb"
	labelColor   = "#9ca3af"
	guideColor   = "#9ca3af"
	textColor    = "#374151"
	priceColor   = "#1f2937"
	mutedColor   = "#737373"
	gradientID   = "areaGradient"
	strokeWidth  = 1.5
	gridStroke   = 0.5
	labelOffsetX = -10
)

// RenderSVG writes the chart as an SVG document. A non-nil probe adds the
// hover overlay.
func RenderSVG(w io.Writer, c *Chart, probe *ProbeResult) error {
	var b bytes.Buffer
	s := c.Surface()
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %s %s">`, num(s.Width), num(s.Height))

	if c.Insufficient() {
		fmt.Fprintf(&b, `<text x="%s" y="%s" text-anchor="middle" fill="%s" font-size="12">%s</text>`,
			num(s.Width/2), num(s.Height/2), mutedColor, Placeholder)
		b.WriteString("</svg>")
		_, err := w.Write(b.Bytes())
		return err
	}

	fmt.Fprintf(&b, `<defs><linearGradient id="%s" x1="0" y1="0" x2="0" y2="1">`, gradientID)
	fmt.Fprintf(&b, `<stop offset="0%%" stop-color="%s" stop-opacity="0.4"/>`, lineColor)
	fmt.Fprintf(&b, `<stop offset="100%%" stop-color="%s" stop-opacity="0"/>`, lineColor)
	b.WriteString("</linearGradient></defs>")

	for _, g := range c.Gridlines() {
		y := num(g.Y)
		fmt.Fprintf(&b, `<g><line x1="0" y1="%s" x2="%s" y2="%s" stroke="%s" stroke-width="%s"/>`,
			y, num(s.Width), y, gridColor, num(gridStroke))
		fmt.Fprintf(&b, `<text x="%d" y="%s" dy="3" text-anchor="end" fill="%s" font-size="10">%s</text></g>`,
			labelOffsetX, y, labelColor, g.Label)
	}

	fmt.Fprintf(&b, `<path d="%s" fill="none" stroke="%s" stroke-width="%s"/>`,
		PathData(c.Points(), false), lineColor, num(strokeWidth))
	fmt.Fprintf(&b, `<path d="%s" fill="url(#%s)"/>`, PathData(c.Area(), true), gradientID)

	if probe != nil {
		writeTooltip(&b, Layout(*probe, s), s)
	}

	b.WriteString("</svg>")
	_, err := w.Write(b.Bytes())
	return err
}

func writeTooltip(b *bytes.Buffer, t Tooltip, s Surface) {
	x := num(t.GuideX)
	b.WriteString("<g>")
	fmt.Fprintf(b, `<line x1="%s" y1="0" x2="%s" y2="%s" stroke="%s" stroke-width="1" stroke-dasharray="4 2"/>`,
		x, x, num(s.Height), guideColor)
	fmt.Fprintf(b, `<circle cx="%s" cy="%s" r="%d" fill="%s" stroke="white" stroke-width="2"/>`,
		num(t.MarkerX), num(t.MarkerY), markerRadius, lineColor)
	fmt.Fprintf(b, `<g transform="translate(%s, %s)">`, num(t.BoxX), num(t.BoxY))
	fmt.Fprintf(b, `<rect x="0" y="0" width="%s" height="%s" rx="4" fill="white" stroke="%s"/>`,
		num(t.BoxWidth), num(t.BoxHeight), gridColor)
	fmt.Fprintf(b, `<text x="10" y="18" font-size="10" fill="%s">%s</text>`, textColor, t.DateLabel)
	fmt.Fprintf(b, `<text x="10" y="32" font-size="10" font-weight="bold" fill="%s">%s</text>`, priceColor, t.PriceLabel)
	b.WriteString("</g></g>")
}

func num(v float64) string {
	return fmt.Sprintf("%.2f", v)
}
