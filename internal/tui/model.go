// Package tui renders an item's price chart in the terminal and lets the
// user inspect it with the mouse or arrow keys.
package tui

import (
	"context"
	"fmt"
	"strings"

	"grailify/internal/chart"
	"grailify/internal/domain"
	"grailify/internal/service"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	headerLines = 2
	footerLines = 8
	minCols     = 20
	minRows     = 6
	defaultCols = 60
	defaultRows = 12
)

// ItemSource is what the viewer reads items from.
type ItemSource interface {
	PriceChart(ctx context.Context, id int, tf domain.Timeframe) (*service.ItemView, error)
	Trending(ctx context.Context) (*domain.TrendingResponse, error)
}

type viewLoadedMsg struct {
	itemID    int
	timeframe domain.Timeframe
	view      *service.ItemView
	err       error
}

type trendingLoadedMsg struct {
	ids []int
	err error
}

type Model struct {
	source ItemSource

	itemIDs []int
	current int
	tf      domain.Timeframe

	view    *service.ItemView
	tracker *chart.Tracker
	err     error
	loading bool

	width, height int

	keys    keyMap
	help    help.Model
	spinner spinner.Model
	styles  styles
}

// NewModel opens itemID, or the first trending item when itemID is zero.
func NewModel(source ItemSource, itemID int, tf domain.Timeframe) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(accentColor)

	m := Model{
		source:  source,
		tf:      tf,
		loading: true,
		keys:    defaultKeyMap(),
		help:    help.New(),
		spinner: sp,
		styles:  defaultStyles(),
	}
	if itemID > 0 {
		m.itemIDs = []int{itemID}
	}
	return m
}

// SetSize sets the terminal size before the program starts.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.help.Width = width
}

func (m Model) Init() tea.Cmd {
	if len(m.itemIDs) == 0 {
		return tea.Batch(m.spinner.Tick, m.loadTrending())
	}
	return tea.Batch(m.spinner.Tick, m.loadView())
}

func (m Model) loadTrending() tea.Cmd {
	source := m.source
	return func() tea.Msg {
		trending, err := source.Trending(context.Background())
		if err != nil {
			return trendingLoadedMsg{err: err}
		}
		return trendingLoadedMsg{ids: trending.ItemIDs()}
	}
}

func (m Model) loadView() tea.Cmd {
	source, id, tf := m.source, m.itemIDs[m.current], m.tf
	return func() tea.Msg {
		view, err := source.PriceChart(context.Background(), id, tf)
		return viewLoadedMsg{itemID: id, timeframe: tf, view: view, err: err}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case trendingLoadedMsg:
		if msg.err != nil {
			m.loading = false
			m.err = fmt.Errorf("load trending: %w", msg.err)
			return m, nil
		}
		if len(msg.ids) == 0 {
			m.loading = false
			m.err = fmt.Errorf("no trending items to show")
			return m, nil
		}
		m.itemIDs = msg.ids
		m.current = 0
		return m, m.loadView()

	case viewLoadedMsg:
		if len(m.itemIDs) == 0 || msg.itemID != m.itemIDs[m.current] || msg.timeframe != m.tf {
			return m, nil
		}
		m.loading = false
		m.err = msg.err
		if msg.err != nil {
			return m, nil
		}
		m.view = msg.view
		if m.tracker == nil {
			m.tracker = chart.NewTracker(msg.view.Plot())
		} else {
			m.tracker.Reset(msg.view.Plot())
		}
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.MouseMsg:
		m.handleMouse(msg)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, m.keys.Left):
		m.stepProbe(-1)
	case key.Matches(msg, m.keys.Right):
		m.stepProbe(1)
	case key.Matches(msg, m.keys.Timeframe):
		if len(m.itemIDs) == 0 {
			return m, nil
		}
		m.tf = m.tf.Next()
		return m.reload()
	case key.Matches(msg, m.keys.NextItem):
		if len(m.itemIDs) < 2 {
			return m, nil
		}
		m.current = (m.current + 1) % len(m.itemIDs)
		return m.reload()
	case key.Matches(msg, m.keys.Reload):
		if len(m.itemIDs) == 0 {
			return m, nil
		}
		return m.reload()
	}
	return m, nil
}

func (m Model) reload() (tea.Model, tea.Cmd) {
	m.loading = true
	m.err = nil
	if m.tracker != nil {
		m.tracker.Leave()
	}
	return m, tea.Batch(m.spinner.Tick, m.loadView())
}

func (m Model) plotGrid() grid {
	cols := defaultCols
	rows := defaultRows
	if m.width > 0 {
		cols = max(m.width-labelWidth-2, minCols)
	}
	if m.height > 0 {
		rows = max(m.height-headerLines-footerLines, minRows)
	}
	surface := chart.DefaultSurface
	if m.view != nil {
		surface = m.view.Chart.Surface
	}
	return newGrid(cols, rows, surface)
}

// toSurface is the pointer conversion for a terminal: a cell column left of
// the plot origin maps to a negative surface X.
func (m Model) toSurface(clientX float64) float64 {
	return m.plotGrid().surfaceX(clientX - float64(labelWidth+1))
}

func (m Model) handleMouse(msg tea.MouseMsg) {
	if m.tracker == nil || m.view == nil {
		return
	}
	g := m.plotGrid()
	inRows := msg.Y >= headerLines && msg.Y < headerLines+g.rows
	inCols := msg.X >= labelWidth+1 && msg.X < labelWidth+1+g.cols
	if !inRows || !inCols {
		m.tracker.Leave()
		return
	}
	if msg.Action != tea.MouseActionMotion && msg.Action != tea.MouseActionPress {
		return
	}
	m.tracker.MoveClient(float64(msg.X), m.toSurface)
}

// stepProbe moves the probe one column left or right, starting from the
// latest sample when nothing is probed yet.
func (m Model) stepProbe(dir int) {
	if m.tracker == nil || m.view == nil || m.view.Chart.Insufficient {
		return
	}
	g := m.plotGrid()
	points := m.view.Chart.Points

	x := points[len(points)-1].X
	if current, ok := m.tracker.Current(); ok {
		x = current.SurfaceX + float64(dir)*g.step()
	}
	first, last := points[0].X, points[len(points)-1].X
	if x <= first {
		x = first + g.step()
	}
	if x > last {
		x = last
	}
	m.tracker.Move(x)
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(m.headerView())
	b.WriteString("\n\n")

	switch {
	case m.err != nil:
		b.WriteString(m.styles.err.Render("Error: " + m.err.Error()))
		b.WriteString("\n")
	case m.view == nil:
		b.WriteString(m.spinner.View() + " Loading...")
		b.WriteString("\n")
	case m.view.Chart.Insufficient:
		g := m.plotGrid()
		pad := strings.Repeat("\n", g.rows/2)
		b.WriteString(pad)
		b.WriteString(lipgloss.PlaceHorizontal(labelWidth+1+g.cols, lipgloss.Center, m.styles.muted.Render(chart.Placeholder)))
		b.WriteString(pad)
		b.WriteString("\n")
		b.WriteString(m.statsView())
	default:
		b.WriteString(m.chartView())
		b.WriteString(m.statsView())
	}

	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m Model) headerView() string {
	if m.view == nil {
		return m.styles.title.Render("Grailify") + "  " + m.styles.badge.Render("["+string(m.tf)+"]")
	}
	title := m.styles.title.Render(m.view.Item.Name)
	brand := m.styles.muted.Render(m.view.Item.Brand)
	tf := m.styles.badge.Render("[" + string(m.tf) + "]")
	header := title + "  " + brand + "  " + tf
	if m.loading {
		header += "  " + m.spinner.View()
	}
	return header
}

func (m Model) chartView() string {
	g := m.plotGrid()
	probe, ok := m.tracker.Current()
	var overlay *chart.ProbeResult
	if ok {
		overlay = &probe
	}

	var b strings.Builder
	for _, line := range rasterize(m.view.Plot(), g, overlay).lines(m.styles) {
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString(m.axisView(g))
	b.WriteString("\n")

	if ok {
		tip := chart.Layout(probe, g.surface)
		b.WriteString(m.styles.tooltip.Render(tip.DateLabel + "  " + m.styles.stat.Render(tip.PriceLabel)))
	} else {
		b.WriteString(m.styles.muted.Render("Hover the chart or use ←/→ to inspect a price."))
	}
	b.WriteString("\n")
	return b.String()
}

func (m Model) axisView(g grid) string {
	d := m.view.Chart.Domain
	if d == nil {
		return ""
	}
	left := chart.FormatDate(d.TimeMin)
	right := chart.FormatDate(d.TimeMax)
	gap := g.cols - len(left) - len(right)
	if gap < 1 {
		gap = 1
	}
	return strings.Repeat(" ", labelWidth+1) + m.styles.axis.Render(left+strings.Repeat(" ", gap)+right)
}

func (m Model) statsView() string {
	st := m.view.Stats
	parts := []string{
		"Last sale " + m.styles.stat.Render(optionalPrice(st.LastSale)),
		"Retail " + m.styles.stat.Render("$"+st.RetailPrice.StringFixed(2)),
		"Trades " + m.styles.stat.Render(fmt.Sprintf("%d", st.Trades)),
	}
	if st.Low != nil && st.High != nil {
		parts = append(parts, "Range "+m.styles.stat.Render(chart.FormatPrice(*st.Low)+" - "+chart.FormatPrice(*st.High)))
	}
	if st.Volatility != nil {
		parts = append(parts, "Volatility "+m.styles.stat.Render(fmt.Sprintf("%.1f%%", *st.Volatility)))
	}
	return strings.Join(parts, "   ") + "\n"
}

func optionalPrice(v *float64) string {
	if v == nil {
		return "--"
	}
	return chart.FormatPrice(*v)
}
