package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const serviceName = "grailify"

// Health godoc
// @Summary      Health check
// @Description  Reports liveness and whether the admin routes are mounted
// @Tags         health
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /health [get]
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": serviceName,
		"admin":   h.adminKey != "",
	})
}
