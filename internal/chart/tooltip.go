package chart

const (
	tooltipWidth   = 120
	tooltipHeight  = 40
	tooltipGap     = 8
	tooltipTop     = 8
	markerRadius   = 4
	flipLeftOffset = tooltipWidth + 10
)

// Tooltip places the probe overlay: guide line, marker dot and label box.
type Tooltip struct {
	GuideX     float64 `json:"guide_x"`
	MarkerX    float64 `json:"marker_x"`
	MarkerY    float64 `json:"marker_y"`
	BoxX       float64 `json:"box_x"`
	BoxY       float64 `json:"box_y"`
	BoxWidth   float64 `json:"box_width"`
	BoxHeight  float64 `json:"box_height"`
	DateLabel  string  `json:"date_label"`
	PriceLabel string  `json:"price_label"`
}

// Layout positions the tooltip for a probe. Past the horizontal midpoint the
// box flips to the left of the pointer so it stays on the surface.
func Layout(r ProbeResult, s Surface) Tooltip {
	boxX := r.SurfaceX + tooltipGap
	if r.SurfaceX > s.Width/2 {
		boxX = r.SurfaceX - flipLeftOffset
	}
	return Tooltip{
		GuideX:     r.SurfaceX,
		MarkerX:    r.SurfaceX,
		MarkerY:    r.SurfaceY,
		BoxX:       boxX,
		BoxY:       tooltipTop,
		BoxWidth:   tooltipWidth,
		BoxHeight:  tooltipHeight,
		DateLabel:  FormatDate(r.Timestamp),
		PriceLabel: FormatPrice(r.Value),
	}
}
