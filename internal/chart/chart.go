// Package chart turns a batch of price samples into drawing-surface geometry:
// a sorted series with padded bounds, a polyline and filled area, value
// gridlines, and pointer probes that interpolate between samples.
//
// Everything here is pure apart from Tracker, which caches the last probe
// for a single view.
package chart

import (
	"math"
	"sort"
	"time"
)

// Chart is a normalized series projected onto a surface.
type Chart struct {
	series  Series
	surface Surface
	mapper  Mapper
	points  []Point
}

// New normalizes samples and projects them onto surface.
func New(samples []Sample, surface Surface) *Chart {
	series := Normalize(samples)
	c := &Chart{
		series:  series,
		surface: surface,
		mapper:  NewMapper(series.Domain, surface),
	}
	if !series.Insufficient() {
		c.points = c.mapper.Points(series.Samples)
	}
	return c
}

func (c *Chart) Series() Series   { return c.series }
func (c *Chart) Surface() Surface { return c.surface }
func (c *Chart) Mapper() Mapper   { return c.mapper }

// Insufficient reports whether the chart should show the placeholder instead of a plot.
func (c *Chart) Insufficient() bool {
	return c.series.Insufficient()
}

// Points returns the mapped polyline, one point per sorted sample.
func (c *Chart) Points() []Point {
	return c.points
}

// Area returns the polyline closed against the bottom edge.
func (c *Chart) Area() []Point {
	return c.mapper.Area(c.points)
}

func (c *Chart) Gridlines() []Gridline {
	if c.Insufficient() {
		return nil
	}
	return c.mapper.Gridlines()
}

// ProbeResult is the interpolated reading under the pointer.
type ProbeResult struct {
	SurfaceX  float64   `json:"surface_x"`
	SurfaceY  float64   `json:"surface_y"`
	Timestamp time.Time `json:"timestamp"`
	Value     float64   `json:"value"`
}

// Probe interpolates the series at a surface X. It yields nothing at or left
// of the first sample, right of the last sample, or when all samples share
// one timestamp. A pointer exactly on the last sample resolves to it.
func (c *Chart) Probe(pointerX float64) (ProbeResult, bool) {
	if c.Insufficient() || c.series.Domain.TimeSpanZero() {
		return ProbeResult{}, false
	}
	if math.IsNaN(pointerX) || pointerX <= c.points[0].X {
		return ProbeResult{}, false
	}

	last := len(c.points) - 1
	i := sort.Search(len(c.points), func(k int) bool { return c.points[k].X > pointerX })
	if i == len(c.points) {
		if pointerX != c.points[last].X {
			return ProbeResult{}, false
		}
		i = last
	}
	if i == 0 {
		return ProbeResult{}, false
	}

	a, b := c.points[i-1], c.points[i]
	weight := 1.0
	if dx := b.X - a.X; dx != 0 {
		weight = (pointerX - a.X) / dx
	}
	y := a.Y + weight*(b.Y-a.Y)

	t1 := c.series.Samples[i-1].Timestamp.UnixMilli()
	t2 := c.series.Samples[i].Timestamp.UnixMilli()
	ms := float64(t1) + weight*float64(t2-t1)

	return ProbeResult{
		SurfaceX:  pointerX,
		SurfaceY:  y,
		Timestamp: time.UnixMilli(int64(math.Trunc(ms))).UTC(),
		Value:     c.mapper.Value(y),
	}, true
}
