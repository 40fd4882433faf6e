package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
)

// RefreshItem godoc
// @Summary      Refresh an item's cached detail
// @Tags         admin
// @Param        id  path  int  true  "Item ID"
// @Security     ApiKeyAuth
// @Success      204
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/admin/items/{id}/refresh [post]
func (h *Handler) RefreshItem(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.refresh-item")
	defer span.End()

	id, err := parseItemID(c)
	if err != nil {
		respondError(c, err)
		return
	}
	span.SetAttributes(attribute.Int("item_id", id))

	if err := h.itemService.RefreshItem(ctx, id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// PurgeStore godoc
// @Summary      Delete expired client-store entries
// @Tags         admin
// @Produce      json
// @Security     ApiKeyAuth
// @Success      200  {object}  map[string]int64
// @Failure      503  {object}  map[string]string
// @Router       /api/admin/store/purge [post]
func (h *Handler) PurgeStore(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.purge-store")
	defer span.End()

	if h.purger == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "store backend does not support purging"})
		return
	}
	n, err := h.purger.PurgeExpired(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"purged": n})
}
