package tui

import (
	"math"
	"strings"

	"grailify/internal/chart"
)

const labelWidth = 8

type cellKind int

const (
	cellEmpty cellKind = iota
	cellGrid
	cellArea
	cellLine
	cellGuide
	cellMarker
)

var cellRunes = map[cellKind]rune{
	cellEmpty:  ' ',
	cellGrid:   '┈',
	cellArea:   '░',
	cellLine:   '•',
	cellGuide:  '│',
	cellMarker: '●',
}

// grid maps surface coordinates onto a cols x rows character plot.
type grid struct {
	cols, rows int
	surface    chart.Surface
}

func newGrid(cols, rows int, surface chart.Surface) grid {
	if cols < 2 {
		cols = 2
	}
	if rows < 2 {
		rows = 2
	}
	return grid{cols: cols, rows: rows, surface: surface}
}

func (g grid) col(x float64) int {
	return clamp(int(math.Round(x/g.surface.Width*float64(g.cols-1))), 0, g.cols-1)
}

func (g grid) row(y float64) int {
	return clamp(int(math.Round(y/g.surface.Height*float64(g.rows-1))), 0, g.rows-1)
}

// surfaceX converts a plot column back to a surface X.
func (g grid) surfaceX(col float64) float64 {
	return col / float64(g.cols-1) * g.surface.Width
}

// step is the surface width of one column.
func (g grid) step() float64 {
	return g.surface.Width / float64(g.cols-1)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

type plot struct {
	g      grid
	cells  [][]cellKind
	labels map[int]string
}

// rasterize draws the chart's line, area, gridlines and optional probe onto
// the grid. Insufficient charts produce an empty plot.
func rasterize(c *chart.Chart, g grid, probe *chart.ProbeResult) plot {
	p := plot{g: g, cells: make([][]cellKind, g.rows), labels: make(map[int]string)}
	for r := range p.cells {
		p.cells[r] = make([]cellKind, g.cols)
	}
	if c == nil || c.Insufficient() {
		return p
	}

	top := make([]int, g.cols)
	for i := range top {
		top[i] = -1
	}
	mark := func(r, col int) {
		p.cells[r][col] = cellLine
		if top[col] < 0 || r < top[col] {
			top[col] = r
		}
	}

	points := c.Points()
	prevRow := -1
	for i := range points {
		col, row := g.col(points[i].X), g.row(points[i].Y)
		if i == 0 {
			mark(row, col)
			prevRow = row
			continue
		}
		prevCol := g.col(points[i-1].X)
		startRow := g.row(points[i-1].Y)
		if col == prevCol {
			fillColumn(mark, col, prevRow, row)
			prevRow = row
			continue
		}
		for cc := prevCol + 1; cc <= col; cc++ {
			t := float64(cc-prevCol) / float64(col-prevCol)
			r := int(math.Round(float64(startRow) + t*float64(row-startRow)))
			fillColumn(mark, cc, prevRow, r)
			prevRow = r
		}
	}

	for col, r := range top {
		if r < 0 {
			continue
		}
		for rr := r + 1; rr < g.rows; rr++ {
			if p.cells[rr][col] == cellEmpty {
				p.cells[rr][col] = cellArea
			}
		}
	}

	for _, gl := range c.Gridlines() {
		r := g.row(gl.Y)
		p.labels[r] = gl.Label
		for col := range p.cells[r] {
			if p.cells[r][col] == cellEmpty {
				p.cells[r][col] = cellGrid
			}
		}
	}

	if probe != nil {
		col := g.col(probe.SurfaceX)
		for r := range p.cells {
			if p.cells[r][col] != cellLine {
				p.cells[r][col] = cellGuide
			}
		}
		p.cells[g.row(probe.SurfaceY)][col] = cellMarker
	}
	return p
}

// fillColumn marks every row between from and to in col, so steep segments
// stay connected.
func fillColumn(mark func(r, col int), col, from, to int) {
	if from < 0 {
		from = to
	}
	lo, hi := from, to
	if lo > hi {
		lo, hi = hi, lo
	}
	for r := lo; r <= hi; r++ {
		mark(r, col)
	}
}

// lines renders the plot with right-aligned axis labels, grouping runs of
// the same cell kind so each run is styled once.
func (p plot) lines(st styles) []string {
	out := make([]string, 0, len(p.cells))
	for r, row := range p.cells {
		var b strings.Builder
		label := p.labels[r]
		b.WriteString(st.axis.Render(padLeft(label, labelWidth)))
		b.WriteString(" ")

		start := 0
		for col := 1; col <= len(row); col++ {
			if col < len(row) && row[col] == row[start] {
				continue
			}
			run := strings.Repeat(string(cellRunes[row[start]]), col-start)
			b.WriteString(st.cell(row[start]).Render(run))
			start = col
		}
		out = append(out, b.String())
	}
	return out
}

func padLeft(s string, width int) string {
	n := len([]rune(s))
	if n >= width {
		return s
	}
	return strings.Repeat(" ", width-n) + s
}
