package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const loginPath = "/login"

type setTokenRequest struct {
	Token string `json:"token" binding:"required"`
}

// GetSession godoc
// @Summary      Session status
// @Tags         session
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /api/session [get]
func (h *Handler) GetSession(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-session")
	defer span.End()

	signedIn, err := h.tokens.SignedIn(ctx, sessionID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sessionId": sessionID(c), "signedIn": signedIn})
}

// SetToken godoc
// @Summary      Store the session's auth token
// @Tags         session
// @Accept       json
// @Param        body  body  setTokenRequest  true  "Opaque token"
// @Success      204
// @Failure      400  {object}  map[string]string
// @Router       /api/session/token [put]
func (h *Handler) SetToken(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.set-token")
	defer span.End()

	var req setTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "token is required"})
		return
	}
	if err := h.tokens.SetToken(ctx, sessionID(c), req.Token); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ClearToken godoc
// @Summary      Sign the session out
// @Tags         session
// @Success      204
// @Router       /api/session/token [delete]
func (h *Handler) ClearToken(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.clear-token")
	defer span.End()

	if err := h.tokens.ClearToken(ctx, sessionID(c)); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Checkout godoc
// @Summary      Checkout summary
// @Description  Requires a signed-in session with a non-empty cart
// @Tags         cart
// @Produce      json
// @Success      200  {object}  CartResponse
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Router       /api/checkout [get]
func (h *Handler) Checkout(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.checkout")
	defer span.End()

	sid := sessionID(c)
	signedIn, err := h.tokens.SignedIn(ctx, sid)
	if err != nil {
		respondError(c, err)
		return
	}
	if !signedIn {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "sign in to check out", "redirect": loginPath})
		return
	}

	items, err := h.cartService.Items(ctx, sid)
	if err != nil {
		respondError(c, err)
		return
	}
	if len(items) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cart is empty"})
		return
	}
	c.JSON(http.StatusOK, newCartResponse(items))
}
