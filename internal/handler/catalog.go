package handler

import (
	"net/http"
	"strconv"

	"grailify/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

func parseBrowseFilter(c *gin.Context) (domain.BrowseFilter, bool) {
	filter := domain.BrowseFilter{Brands: c.QueryArray("brand"), MinPrice: decimal.Zero}
	if raw := c.Query("minPrice"); raw != "" {
		lo, err := decimal.NewFromString(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "minPrice must be a number"})
			return filter, false
		}
		filter.MinPrice = lo
	}
	if raw := c.Query("maxPrice"); raw != "" {
		hi, err := decimal.NewFromString(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "maxPrice must be a number"})
			return filter, false
		}
		filter.MaxPrice = &hi
	}
	return filter, true
}

// BrowseItems godoc
// @Summary      Browse a category
// @Description  One catalog page of a category, filtered by brand and price. Brands lists every brand on the unfiltered page.
// @Tags         items
// @Produce      json
// @Param        category  query  string  false  "Category slug, allgrails for every category"
// @Param        page      query  int     false  "Page number, from 1"
// @Param        brand     query  []string  false  "Brand to keep; repeat for several"
// @Param        minPrice  query  number  false  "Lowest price"
// @Param        maxPrice  query  number  false  "Highest price"
// @Success      200  {object}  service.BrowseView
// @Failure      400  {object}  map[string]string
// @Router       /api/items [get]
func (h *Handler) BrowseItems(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.browse-items")
	defer span.End()

	page := 1
	if raw := c.Query("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "page must be a positive integer"})
			return
		}
		page = n
	}
	filter, ok := parseBrowseFilter(c)
	if !ok {
		return
	}

	view, err := h.itemService.Browse(ctx, c.DefaultQuery("category", domain.AllCategories), page, filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// GetCategories godoc
// @Summary      List categories
// @Tags         items
// @Produce      json
// @Success      200  {array}   domain.Category
// @Failure      500  {object}  map[string]string
// @Router       /api/categories [get]
func (h *Handler) GetCategories(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-categories")
	defer span.End()

	categories, err := h.itemService.Categories(ctx)
	if err != nil {
		respondError(c, err)
		return
	}
	if categories == nil {
		categories = []domain.Category{}
	}
	c.JSON(http.StatusOK, categories)
}

// GetSellPage godoc
// @Summary      Items to sell, grouped by category
// @Tags         items
// @Produce      json
// @Success      200  {array}   domain.SellPageCategory
// @Failure      500  {object}  map[string]string
// @Router       /api/sell-page-items [get]
func (h *Handler) GetSellPage(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-sell-page")
	defer span.End()

	groups, err := h.itemService.SellPage(ctx)
	if err != nil {
		respondError(c, err)
		return
	}
	if groups == nil {
		groups = []domain.SellPageCategory{}
	}
	c.JSON(http.StatusOK, groups)
}
