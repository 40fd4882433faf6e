package handler

import (
	"net/http"
	"strconv"

	"grailify/internal/cart"
	"grailify/internal/domain"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
)

type addToCartRequest struct {
	ItemID      int `json:"itemId" binding:"required"`
	InventoryID int `json:"inventoryId" binding:"required"`
}

// CartResponse is a cart with its totals.
type CartResponse struct {
	Items   []cart.Item  `json:"items"`
	Summary cart.Summary `json:"summary"`
}

func newCartResponse(items []cart.Item) CartResponse {
	if items == nil {
		items = []cart.Item{}
	}
	return CartResponse{Items: items, Summary: cart.Summarize(items)}
}

// GetCart godoc
// @Summary      Get the session's cart
// @Tags         cart
// @Produce      json
// @Success      200  {object}  CartResponse
// @Router       /api/cart [get]
func (h *Handler) GetCart(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-cart")
	defer span.End()

	items, err := h.cartService.Items(ctx, sessionID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newCartResponse(items))
}

// AddToCart godoc
// @Summary      Add an inventory listing to the cart
// @Description  Looks up the listing on the item and stores a snapshot of it in the cart
// @Tags         cart
// @Accept       json
// @Produce      json
// @Param        body  body  addToCartRequest  true  "Item and inventory ids"
// @Success      201  {object}  CartResponse
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Router       /api/cart [post]
func (h *Handler) AddToCart(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.add-to-cart")
	defer span.End()

	var req addToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "itemId and inventoryId are required"})
		return
	}
	span.SetAttributes(attribute.Int("item_id", req.ItemID), attribute.Int("inventory_id", req.InventoryID))

	detail, err := h.itemService.GetItem(ctx, req.ItemID)
	if err != nil {
		respondError(c, err)
		return
	}
	inv, ok := detail.FindInventory(req.InventoryID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "inventory " + strconv.Itoa(req.InventoryID) + " not found for item"})
		return
	}
	size := inv.Size
	if size == "" {
		size = domain.DefaultSize
	}

	items, err := h.cartService.Add(ctx, sessionID(c), cart.Item{
		ID:          detail.Item.ID,
		InventoryID: inv.InventoryID,
		Name:        detail.Item.Name,
		Brand:       detail.Item.Brand,
		Size:        size,
		Price:       inv.Price,
		ImageURL:    detail.Item.ImageURL,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newCartResponse(items))
}

// RemoveFromCart godoc
// @Summary      Remove a listing from the cart
// @Tags         cart
// @Produce      json
// @Param        inventoryId  path  int  true  "Inventory ID"
// @Success      200  {object}  CartResponse
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/cart/{inventoryId} [delete]
func (h *Handler) RemoveFromCart(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.remove-from-cart")
	defer span.End()

	inventoryID, err := strconv.Atoi(c.Param("inventoryId"))
	if err != nil || inventoryID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "inventoryId must be a positive integer"})
		return
	}

	items, err := h.cartService.Remove(ctx, sessionID(c), inventoryID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newCartResponse(items))
}

// ClearCart godoc
// @Summary      Empty the cart
// @Tags         cart
// @Produce      json
// @Success      200  {object}  CartResponse
// @Router       /api/cart [delete]
func (h *Handler) ClearCart(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.clear-cart")
	defer span.End()

	if err := h.cartService.Clear(ctx, sessionID(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newCartResponse(nil))
}
