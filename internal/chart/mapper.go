package chart

import (
	"fmt"
	"strings"
	"time"
)

// GridlineCount is the number of horizontal value gridlines drawn across the domain.
const GridlineCount = 5

// Surface is the logical drawing area. Y grows downward.
type Surface struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// DefaultSurface matches the item page's chart viewBox.
var DefaultSurface = Surface{Width: 600, Height: 150}

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type Gridline struct {
	Value float64 `json:"value"`
	Y     float64 `json:"y"`
	Label string  `json:"label"`
}

// Mapper projects (time, value) pairs onto a Surface with an affine transform.
type Mapper struct {
	domain  Domain
	surface Surface
}

func NewMapper(domain Domain, surface Surface) Mapper {
	return Mapper{domain: domain, surface: surface}
}

// X maps a timestamp to a surface X. With a zero time span every timestamp
// maps to the horizontal centre.
func (m Mapper) X(t time.Time) float64 {
	if m.domain.TimeSpanZero() {
		return m.surface.Width / 2
	}
	minMs := m.domain.TimeMin.UnixMilli()
	span := float64(m.domain.TimeMax.UnixMilli() - minMs)
	return float64(t.UnixMilli()-minMs) / span * m.surface.Width
}

// Y maps a value to a surface Y. With a zero value span every value maps
// to the vertical centre.
func (m Mapper) Y(v float64) float64 {
	if m.domain.ValueSpanZero() {
		return m.surface.Height / 2
	}
	span := m.domain.ValueMax - m.domain.ValueMin
	return m.surface.Height - (v-m.domain.ValueMin)/span*m.surface.Height
}

// Value inverts Y.
func (m Mapper) Value(y float64) float64 {
	if m.domain.ValueSpanZero() || m.surface.Height == 0 {
		return m.domain.ValueMin
	}
	span := m.domain.ValueMax - m.domain.ValueMin
	return m.domain.ValueMin + ((m.surface.Height-y)/m.surface.Height)*span
}

// Points maps each sample in order.
func (m Mapper) Points(samples []Sample) []Point {
	points := make([]Point, len(samples))
	for i, s := range samples {
		points[i] = Point{X: m.X(s.Timestamp), Y: m.Y(s.Value)}
	}
	return points
}

// Area closes a polyline against the bottom edge under its last and first X.
func (m Mapper) Area(points []Point) []Point {
	if len(points) == 0 {
		return nil
	}
	area := make([]Point, 0, len(points)+2)
	area = append(area, points...)
	area = append(area,
		Point{X: points[len(points)-1].X, Y: m.surface.Height},
		Point{X: points[0].X, Y: m.surface.Height},
	)
	return area
}

// Gridlines spaces GridlineCount values linearly from ValueMin to ValueMax inclusive.
func (m Mapper) Gridlines() []Gridline {
	lines := make([]Gridline, 0, GridlineCount)
	step := (m.domain.ValueMax - m.domain.ValueMin) / float64(GridlineCount-1)
	for i := 0; i < GridlineCount; i++ {
		v := m.domain.ValueMin + float64(i)*step
		lines = append(lines, Gridline{Value: v, Y: m.Y(v), Label: FormatAxis(v)})
	}
	return lines
}

// PathData renders points as an SVG path "d" attribute. Closed paths end with Z.
func PathData(points []Point, closed bool) string {
	if len(points) == 0 {
		return ""
	}
	var b strings.Builder
	for i, p := range points {
		if i == 0 {
			b.WriteString("M ")
		} else {
			b.WriteString(" L ")
		}
		fmt.Fprintf(&b, "%.2f,%.2f", p.X, p.Y)
	}
	if closed {
		b.WriteString(" Z")
	}
	return b.String()
}
