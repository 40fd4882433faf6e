package handler

import (
	"bytes"
	"errors"
	"math"
	"net/http"
	"strconv"

	"grailify/internal/chart"
	"grailify/internal/domain"
	"grailify/internal/service"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
)

var errInvalidX = errors.New("x must be a finite number")

// ProbeResponse is the reading under the pointer plus where to draw it.
type ProbeResponse struct {
	Probe   chart.ProbeResult `json:"probe"`
	Tooltip chart.Tooltip     `json:"tooltip"`
}

func parseItemID(c *gin.Context) (int, error) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return 0, service.ErrInvalidItemID
	}
	return id, nil
}

// parseX reads the optional x query parameter as a surface coordinate.
func parseX(c *gin.Context) (float64, bool, error) {
	raw, ok := c.GetQuery("x")
	if !ok || raw == "" {
		return 0, false, nil
	}
	x, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(x) || math.IsInf(x, 0) {
		return 0, false, errInvalidX
	}
	return x, true, nil
}

// loadView parses id and timeframe and builds the item view, writing a 4xx/5xx
// response itself when anything fails.
func (h *Handler) loadView(c *gin.Context, spanName string) (*service.ItemView, bool) {
	ctx, span := h.tracer.Start(c.Request.Context(), spanName)
	defer span.End()

	id, err := parseItemID(c)
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	tf, err := domain.ParseTimeframe(c.Query("timeframe"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":                err.Error(),
			"supported_timeframes": domain.SupportedTimeframes,
		})
		return nil, false
	}
	span.SetAttributes(attribute.Int("item_id", id), attribute.String("timeframe", string(tf)))

	view, err := h.itemService.PriceChart(ctx, id, tf)
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	return view, true
}

// GetItem godoc
// @Summary      Get an item with its price chart
// @Description  Returns item detail, inventory, chart geometry and stats for a timeframe
// @Tags         items
// @Produce      json
// @Param        id         path   int     true   "Item ID"
// @Param        timeframe  query  string  false  "Timeframe (7D, 1M, 3M, 6M, 1Y, All)"  default(All)
// @Success      200  {object}  service.ItemView
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/items/{id} [get]
func (h *Handler) GetItem(c *gin.Context) {
	view, ok := h.loadView(c, "handler.get-item")
	if !ok {
		return
	}
	h.metrics.ChartRendered("json", view.Chart.Insufficient)
	c.JSON(http.StatusOK, view)
}

// GetChartSVG godoc
// @Summary      Render an item's price chart as SVG
// @Description  Draws the line, area and gridlines, with a tooltip overlay when x hits the series
// @Tags         items
// @Produce      image/svg+xml
// @Param        id         path   int     true   "Item ID"
// @Param        timeframe  query  string  false  "Timeframe (7D, 1M, 3M, 6M, 1Y, All)"  default(All)
// @Param        x          query  number  false  "Pointer position in surface units"
// @Success      200  {string}  string
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/items/{id}/chart.svg [get]
func (h *Handler) GetChartSVG(c *gin.Context) {
	x, hasX, err := parseX(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	view, ok := h.loadView(c, "handler.get-chart-svg")
	if !ok {
		return
	}

	plot := view.Plot()
	var overlay *chart.ProbeResult
	if hasX {
		probe, hit := plot.Probe(x)
		h.metrics.ProbeResolved(hit)
		if hit {
			overlay = &probe
		}
	}

	var buf bytes.Buffer
	if err := chart.RenderSVG(&buf, plot, overlay); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	h.metrics.ChartRendered("svg", plot.Insufficient())
	c.Data(http.StatusOK, "image/svg+xml", buf.Bytes())
}

// GetProbe godoc
// @Summary      Probe an item's chart at a pointer position
// @Description  Interpolates the price under x and lays out the tooltip; 204 when x is off the series
// @Tags         items
// @Produce      json
// @Param        id         path   int     true   "Item ID"
// @Param        timeframe  query  string  false  "Timeframe (7D, 1M, 3M, 6M, 1Y, All)"  default(All)
// @Param        x          query  number  true   "Pointer position in surface units"
// @Success      200  {object}  ProbeResponse
// @Success      204
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/items/{id}/probe [get]
func (h *Handler) GetProbe(c *gin.Context) {
	x, hasX, err := parseX(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !hasX {
		c.JSON(http.StatusBadRequest, gin.H{"error": "x is required"})
		return
	}
	view, ok := h.loadView(c, "handler.get-probe")
	if !ok {
		return
	}

	plot := view.Plot()
	probe, hit := plot.Probe(x)
	h.metrics.ProbeResolved(hit)
	if !hit {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, ProbeResponse{
		Probe:   probe,
		Tooltip: chart.Layout(probe, plot.Surface()),
	})
}

// GetTrending godoc
// @Summary      Trending items
// @Tags         items
// @Produce      json
// @Success      200  {object}  domain.TrendingResponse
// @Failure      500  {object}  map[string]string
// @Router       /api/trending [get]
func (h *Handler) GetTrending(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-trending")
	defer span.End()

	trending, err := h.itemService.Trending(ctx)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, trending)
}

// Search godoc
// @Summary      Search the catalog
// @Description  Returns matching items; a blank query returns an empty list
// @Tags         items
// @Produce      json
// @Param        q  query  string  false  "Search text"
// @Success      200  {array}   domain.SearchResult
// @Failure      500  {object}  map[string]string
// @Router       /api/search [get]
func (h *Handler) Search(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.search")
	defer span.End()

	results, err := h.itemService.Search(ctx, c.Query("q"))
	if err != nil {
		respondError(c, err)
		return
	}
	if results == nil {
		results = []domain.SearchResult{}
	}
	c.JSON(http.StatusOK, results)
}
