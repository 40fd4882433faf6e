package chart

import (
	"bytes"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const eps = 1e-9

var t0 = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

func day(n int) time.Time { return t0.Add(time.Duration(n) * 24 * time.Hour) }

func exampleSamples() []Sample {
	return []Sample{
		{Timestamp: day(0), Value: 100},
		{Timestamp: day(1), Value: 120},
		{Timestamp: day(2), Value: 80},
	}
}

func TestNormalize_SortsAndPads(t *testing.T) {
	input := []Sample{
		{Timestamp: day(2), Value: 80},
		{Timestamp: day(0), Value: 100},
		{Timestamp: day(1), Value: 120},
	}

	s := Normalize(input)

	require.False(t, s.Insufficient())
	require.Len(t, s.Samples, 3)
	assert.True(t, s.Samples[0].Timestamp.Equal(day(0)))
	assert.True(t, s.Samples[1].Timestamp.Equal(day(1)))
	assert.True(t, s.Samples[2].Timestamp.Equal(day(2)))

	assert.InDelta(t, 76.0, s.Domain.ValueMin, eps)
	assert.InDelta(t, 126.0, s.Domain.ValueMax, eps)
	assert.True(t, s.Domain.TimeMin.Equal(day(0)))
	assert.True(t, s.Domain.TimeMax.Equal(day(2)))

	// input left untouched
	assert.True(t, input[0].Timestamp.Equal(day(2)))
}

func TestNormalize_InsufficientData(t *testing.T) {
	for _, samples := range [][]Sample{nil, {}, {{Timestamp: t0, Value: 100}}} {
		s := Normalize(samples)
		assert.True(t, s.Insufficient())
		assert.Equal(t, Domain{}, s.Domain)
	}
}

func TestNormalize_ZeroMinimumStaysZero(t *testing.T) {
	s := Normalize([]Sample{{Timestamp: day(0), Value: 0}, {Timestamp: day(1), Value: 10}})
	assert.Equal(t, 0.0, s.Domain.ValueMin)
	assert.InDelta(t, 10.5, s.Domain.ValueMax, eps)
}

func TestNormalize_DuplicateTimestampsKept(t *testing.T) {
	s := Normalize([]Sample{
		{Timestamp: day(1), Value: 5},
		{Timestamp: day(0), Value: 1},
		{Timestamp: day(1), Value: 7},
	})
	require.Len(t, s.Samples, 3)
	assert.True(t, s.Samples[0].Timestamp.Equal(day(0)))
	values := []float64{s.Samples[1].Value, s.Samples[2].Value}
	assert.ElementsMatch(t, []float64{5, 7}, values)
}

func TestMapper_XMonotone(t *testing.T) {
	c := New([]Sample{
		{Timestamp: day(5), Value: 3},
		{Timestamp: day(0), Value: 1},
		{Timestamp: day(3), Value: 9},
		{Timestamp: day(3), Value: 4},
		{Timestamp: day(9), Value: 2},
	}, DefaultSurface)

	points := c.Points()
	for i := 1; i < len(points); i++ {
		assert.GreaterOrEqual(t, points[i].X, points[i-1].X)
	}
	assert.InDelta(t, 0, points[0].X, eps)
	assert.InDelta(t, DefaultSurface.Width, points[len(points)-1].X, eps)
}

func TestMapper_YWithinSurface(t *testing.T) {
	sets := [][]Sample{
		exampleSamples(),
		{{Timestamp: day(0), Value: 0}, {Timestamp: day(1), Value: 0.01}},
		{{Timestamp: day(0), Value: 50}, {Timestamp: day(1), Value: 50}, {Timestamp: day(2), Value: 50}},
		{{Timestamp: day(0), Value: -20}, {Timestamp: day(1), Value: 15}, {Timestamp: day(2), Value: -3}},
		{{Timestamp: day(0), Value: -40}, {Timestamp: day(1), Value: -10}},
		{{Timestamp: day(0), Value: 0}, {Timestamp: day(1), Value: 0}},
	}
	for _, samples := range sets {
		c := New(samples, DefaultSurface)
		for _, p := range c.Points() {
			assert.False(t, math.IsNaN(p.Y))
			assert.GreaterOrEqual(t, p.Y, 0.0)
			assert.LessOrEqual(t, p.Y, DefaultSurface.Height)
		}
	}
}

func TestMapper_ValueRoundTrip(t *testing.T) {
	c := New(exampleSamples(), DefaultSurface)
	m := c.Mapper()
	for _, v := range []float64{76, 80, 99.99, 100, 113.7, 126} {
		assert.InDelta(t, v, m.Value(m.Y(v)), eps)
	}
}

func TestMapper_ExampleCoordinates(t *testing.T) {
	c := New(exampleSamples(), DefaultSurface)
	points := c.Points()
	require.Len(t, points, 3)

	want := []Point{{0, 78}, {300, 18}, {600, 138}}
	for i, p := range want {
		assert.InDelta(t, p.X, points[i].X, eps)
		assert.InDelta(t, p.Y, points[i].Y, eps)
	}
}

func TestMapper_ZeroTimeSpanFallsBackToCentre(t *testing.T) {
	c := New([]Sample{{Timestamp: t0, Value: 100}, {Timestamp: t0, Value: 200}}, DefaultSurface)

	d := c.Series().Domain
	assert.True(t, d.TimeMax.Equal(d.TimeMin))
	for _, p := range c.Points() {
		assert.False(t, math.IsNaN(p.X))
		assert.Equal(t, DefaultSurface.Width/2, p.X)
	}
}

func TestMapper_ZeroValueSpanFallsBackToCentre(t *testing.T) {
	c := New([]Sample{{Timestamp: day(0), Value: 0}, {Timestamp: day(1), Value: 0}}, DefaultSurface)
	m := c.Mapper()
	assert.Equal(t, DefaultSurface.Height/2, m.Y(0))
	assert.Equal(t, 0.0, m.Value(10))
}

func TestMapper_Area(t *testing.T) {
	c := New(exampleSamples(), DefaultSurface)
	area := c.Area()
	require.Len(t, area, 5)
	assert.Equal(t, Point{X: 600, Y: 150}, Point{X: area[3].X, Y: area[3].Y})
	assert.Equal(t, Point{X: 0, Y: 150}, Point{X: area[4].X, Y: area[4].Y})
}

func TestMapper_Gridlines(t *testing.T) {
	c := New(exampleSamples(), DefaultSurface)
	lines := c.Gridlines()
	require.Len(t, lines, GridlineCount)

	assert.InDelta(t, 76, lines[0].Value, eps)
	assert.InDelta(t, 126, lines[4].Value, eps)
	assert.InDelta(t, 101, lines[2].Value, eps)
	assert.InDelta(t, DefaultSurface.Height, lines[0].Y, eps)
	assert.InDelta(t, 0, lines[4].Y, eps)
	assert.Equal(t, "$76", lines[0].Label)
	assert.Equal(t, "$126", lines[4].Label)
}

func TestGridlines_EmptyWhenInsufficient(t *testing.T) {
	c := New([]Sample{{Timestamp: t0, Value: 1}}, DefaultSurface)
	assert.Nil(t, c.Gridlines())
	assert.Nil(t, c.Points())
	assert.Nil(t, c.Area())
}

func TestPathData(t *testing.T) {
	points := []Point{{0, 78}, {300, 18.5}}
	assert.Equal(t, "M 0.00,78.00 L 300.00,18.50", PathData(points, false))
	assert.Equal(t, "M 0.00,78.00 L 300.00,18.50 Z", PathData(points, true))
	assert.Equal(t, "", PathData(nil, true))
}

func TestProbe_NothingAtOrBeforeFirstSample(t *testing.T) {
	c := New(exampleSamples(), DefaultSurface)
	for _, x := range []float64{-50, -0.001, 0} {
		_, ok := c.Probe(x)
		assert.False(t, ok, "x=%v", x)
	}
}

func TestProbe_AtSampleReturnsExactSample(t *testing.T) {
	c := New(exampleSamples(), DefaultSurface)

	r, ok := c.Probe(300)
	require.True(t, ok)
	assert.InDelta(t, 120, r.Value, eps)
	assert.True(t, r.Timestamp.Equal(day(1)))
	assert.InDelta(t, 18, r.SurfaceY, eps)

	r, ok = c.Probe(600)
	require.True(t, ok)
	assert.InDelta(t, 80, r.Value, eps)
	assert.True(t, r.Timestamp.Equal(day(2)))
}

func TestProbe_Interpolates(t *testing.T) {
	c := New(exampleSamples(), DefaultSurface)

	r, ok := c.Probe(150)
	require.True(t, ok)
	assert.InDelta(t, 110, r.Value, eps)
	assert.InDelta(t, 48, r.SurfaceY, eps)
	assert.True(t, r.Timestamp.Equal(day(0).Add(12*time.Hour)))
	assert.Equal(t, 150.0, r.SurfaceX)

	r, ok = c.Probe(450)
	require.True(t, ok)
	assert.InDelta(t, 100, r.Value, eps)
	assert.True(t, r.Timestamp.Equal(day(1).Add(12*time.Hour)))
}

func TestProbe_NothingPastLastSample(t *testing.T) {
	c := New(exampleSamples(), DefaultSurface)
	_, ok := c.Probe(600.5)
	assert.False(t, ok)
	_, ok = c.Probe(math.NaN())
	assert.False(t, ok)
}

func TestProbe_DegenerateInputs(t *testing.T) {
	single := New([]Sample{{Timestamp: t0, Value: 100}}, DefaultSurface)
	_, ok := single.Probe(10)
	assert.False(t, ok)

	sameTime := New([]Sample{{Timestamp: t0, Value: 100}, {Timestamp: t0, Value: 200}}, DefaultSurface)
	for _, x := range []float64{0, 299, 300, 301, 600} {
		_, ok := sameTime.Probe(x)
		assert.False(t, ok)
	}
}

func TestProbe_Idempotent(t *testing.T) {
	c := New(exampleSamples(), DefaultSurface)
	a, okA := c.Probe(222.2)
	b, okB := c.Probe(222.2)
	assert.Equal(t, okA, okB)
	assert.Equal(t, a, b)
}

func TestTracker_MoveAndLeave(t *testing.T) {
	tr := NewTracker(New(exampleSamples(), DefaultSurface))

	_, ok := tr.Current()
	assert.False(t, ok)

	_, ok = tr.Move(150)
	require.True(t, ok)
	cur, ok := tr.Current()
	require.True(t, ok)
	assert.InDelta(t, 110, cur.Value, eps)

	// a miss clears the previous reading
	_, ok = tr.Move(0)
	assert.False(t, ok)
	_, ok = tr.Current()
	assert.False(t, ok)

	tr.Move(450)
	tr.Leave()
	_, ok = tr.Current()
	assert.False(t, ok)
}

func TestTracker_MoveClientUsesHostConversion(t *testing.T) {
	tr := NewTracker(New(exampleSamples(), DefaultSurface))

	// host viewport is 1200px wide with a 100px offset
	toSurface := func(clientX float64) float64 { return (clientX - 100) / 2 }

	r, ok := tr.MoveClient(400, toSurface)
	require.True(t, ok)
	assert.Equal(t, 150.0, r.SurfaceX)
	assert.InDelta(t, 110, r.Value, eps)
}

func TestTracker_ResetClears(t *testing.T) {
	tr := NewTracker(New(exampleSamples(), DefaultSurface))
	tr.Move(150)
	tr.Reset(New(nil, DefaultSurface))
	_, ok := tr.Current()
	assert.False(t, ok)
	_, ok = tr.Move(150)
	assert.False(t, ok)
}

func TestLayout_FlipsPastMidpoint(t *testing.T) {
	c := New(exampleSamples(), DefaultSurface)

	left, _ := c.Probe(150)
	tip := Layout(left, DefaultSurface)
	assert.Equal(t, 158.0, tip.BoxX)
	assert.Equal(t, 8.0, tip.BoxY)
	assert.Equal(t, "Jan 1, 2025", tip.DateLabel)
	assert.Equal(t, "$110.00", tip.PriceLabel)

	right, _ := c.Probe(450)
	tip = Layout(right, DefaultSurface)
	assert.Equal(t, 320.0, tip.BoxX)
	assert.Equal(t, "Jan 2, 2025", tip.DateLabel)

	mid, _ := c.Probe(300)
	assert.Equal(t, 308.0, Layout(mid, DefaultSurface).BoxX)
}

func TestFormatPrice_Grouping(t *testing.T) {
	assert.Equal(t, "$1,234.56", FormatPrice(1234.56))
	assert.Equal(t, "$0.50", FormatPrice(0.5))
}

func TestRenderSVG(t *testing.T) {
	c := New(exampleSamples(), DefaultSurface)

	var buf bytes.Buffer
	require.NoError(t, RenderSVG(&buf, c, nil))
	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "<svg"))
	assert.Contains(t, out, `viewBox="0 0 600.00 150.00"`)
	assert.Contains(t, out, PathData(c.Points(), false))
	assert.Contains(t, out, `fill="url(#areaGradient)"`)
	assert.Equal(t, GridlineCount, strings.Count(out, "<line"))
	assert.NotContains(t, out, "<circle")

	buf.Reset()
	probe, ok := c.Probe(450)
	require.True(t, ok)
	require.NoError(t, RenderSVG(&buf, c, &probe))
	out = buf.String()
	assert.Contains(t, out, "<circle")
	assert.Contains(t, out, "translate(320.00, 8.00)")
	assert.Contains(t, out, "$100.00")
}

func TestRenderSVG_Placeholder(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderSVG(&buf, New([]Sample{{Timestamp: t0, Value: 100}}, DefaultSurface), nil))
	assert.Contains(t, buf.String(), Placeholder)
	assert.NotContains(t, buf.String(), "<path")
}
