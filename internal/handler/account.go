package handler

import (
	"errors"
	"io"
	"net/http"

	"grailify/internal/account"

	"github.com/gin-gonic/gin"
)

type placeOrderRequest struct {
	ShippingAddressID int `json:"shippingAddressId"`
	PaymentMethodID   int `json:"paymentMethodId"`
}

func (h *Handler) accountsReady(c *gin.Context) bool {
	if h.accounts == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "accounts are not configured"})
		return false
	}
	return true
}

func respondSignedOut(c *gin.Context) {
	c.JSON(http.StatusUnauthorized, gin.H{"error": account.ErrSignedOut.Error(), "redirect": loginPath})
}

// GetProfile godoc
// @Summary      Signed-in user's profile
// @Description  Forwards the session's token to the catalog. A rejected token is cleared.
// @Tags         account
// @Produce      json
// @Success      200  {object}  domain.Profile
// @Failure      401  {object}  map[string]string
// @Failure      503  {object}  map[string]string
// @Router       /api/account/profile [get]
func (h *Handler) GetProfile(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-profile")
	defer span.End()

	if !h.accountsReady(c) {
		return
	}
	profile, err := h.accounts.Profile(ctx, sessionID(c))
	if errors.Is(err, account.ErrSignedOut) {
		respondSignedOut(c)
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// PlaceOrder godoc
// @Summary      Place an order for the cart
// @Description  Sends the cart to the catalog as an order and empties it once accepted
// @Tags         cart
// @Accept       json
// @Produce      json
// @Param        body  body  placeOrderRequest  false  "Shipping address and payment method ids"
// @Success      201  {object}  account.Receipt
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Failure      503  {object}  map[string]string
// @Router       /api/checkout [post]
func (h *Handler) PlaceOrder(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.place-order")
	defer span.End()

	if !h.accountsReady(c) {
		return
	}
	var req placeOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order body"})
		return
	}

	receipt, err := h.accounts.PlaceOrder(ctx, sessionID(c), req.ShippingAddressID, req.PaymentMethodID)
	if errors.Is(err, account.ErrSignedOut) {
		respondSignedOut(c)
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, receipt)
}
