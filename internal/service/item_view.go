package service

import (
	"math"
	"time"

	"grailify/internal/chart"
	"grailify/internal/domain"
	"grailify/internal/ta"

	"github.com/shopspring/decimal"
)

// ItemView is everything the item page shows for one timeframe.
type ItemView struct {
	Item         domain.Item            `json:"item"`
	DisplayPrice decimal.Decimal        `json:"displayPrice"`
	Timeframe    domain.Timeframe       `json:"timeframe"`
	Inventory    []domain.InventoryInfo `json:"inventory"`
	AllSizes     []domain.AllSizeInfo   `json:"allSizes"`
	Chart        ChartView              `json:"chart"`
	Stats        Stats                  `json:"stats"`

	chart *chart.Chart
}

// Plot returns the projected chart behind the view.
func (v *ItemView) Plot() *chart.Chart {
	return v.chart
}

// ChartView is the serializable geometry of a chart.
type ChartView struct {
	Insufficient bool             `json:"insufficient"`
	Placeholder  string           `json:"placeholder,omitempty"`
	Surface      chart.Surface    `json:"surface"`
	Domain       *chart.Domain    `json:"domain,omitempty"`
	Points       []chart.Point    `json:"points"`
	Path         string           `json:"path"`
	AreaPath     string           `json:"areaPath"`
	Gridlines    []chart.Gridline `json:"gridlines"`
}

type Stats struct {
	LastSale    *float64        `json:"lastSale"`
	RetailPrice decimal.Decimal `json:"retailPrice"`
	Trades      int             `json:"trades"`
	Volatility  *float64        `json:"volatility"`
	Low         *float64        `json:"low"`
	High        *float64        `json:"high"`
	ChangePct   *float64        `json:"changePct"`
}

// BuildItemView filters history to tf relative to now and projects it.
func BuildItemView(detail *domain.ItemDetail, tf domain.Timeframe, now time.Time, surface chart.Surface) *ItemView {
	filtered := tf.Filter(detail.PriceHistory, now)
	c := chart.New(Samples(filtered), surface)

	inventory := detail.Inventory
	if inventory == nil {
		inventory = []domain.InventoryInfo{}
	}
	sizes := detail.AllSizes
	if sizes == nil {
		sizes = []domain.AllSizeInfo{}
	}

	return &ItemView{
		Item:         detail.Item,
		DisplayPrice: detail.DisplayPrice,
		Timeframe:    tf,
		Inventory:    inventory,
		AllSizes:     sizes,
		Chart:        NewChartView(c),
		Stats:        computeStats(detail, filtered, c),
		chart:        c,
	}
}

func NewChartView(c *chart.Chart) ChartView {
	v := ChartView{
		Insufficient: c.Insufficient(),
		Surface:      c.Surface(),
		Points:       []chart.Point{},
		Gridlines:    []chart.Gridline{},
	}
	if c.Insufficient() {
		v.Placeholder = chart.Placeholder
		return v
	}
	d := c.Series().Domain
	v.Domain = &d
	v.Points = c.Points()
	v.Path = chart.PathData(c.Points(), false)
	v.AreaPath = chart.PathData(c.Area(), true)
	v.Gridlines = c.Gridlines()
	return v
}

// Samples converts history to chart samples, dropping entries without a
// timestamp or with a negative or non-finite price.
func Samples(history []domain.PriceHistoryEntry) []chart.Sample {
	out := make([]chart.Sample, 0, len(history))
	for _, e := range history {
		if e.RecordedAt.IsZero() || e.Price < 0 || math.IsNaN(e.Price) || math.IsInf(e.Price, 0) {
			continue
		}
		out = append(out, chart.Sample{Timestamp: e.RecordedAt, Value: e.Price})
	}
	return out
}

// computeStats follows the item page: last sale is the final entry of the
// filtered history as received, trades counts the full history.
func computeStats(detail *domain.ItemDetail, filtered []domain.PriceHistoryEntry, c *chart.Chart) Stats {
	stats := Stats{
		RetailPrice: detail.Item.Price,
		Trades:      len(detail.PriceHistory),
	}
	if len(filtered) > 0 {
		last := filtered[len(filtered)-1].Price
		stats.LastSale = &last
	}

	samples := c.Series().Samples
	if len(samples) == 0 {
		return stats
	}
	lo, hi := c.Series().Range()
	stats.Low, stats.High = &lo, &hi

	prices := make([]float64, len(samples))
	for i, sm := range samples {
		prices[i] = sm.Value
	}
	if v, ok := ta.Volatility(prices); ok {
		stats.Volatility = &v
	}
	if len(prices) >= 2 {
		if ch, ok := ta.PercentChange(prices[0], prices[len(prices)-1]); ok {
			stats.ChangePct = &ch
		}
	}
	return stats
}
