package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// HandleWelcomeImage returns the welcome illustration, or 204 when none is
// available. The page works without it.
func (h *Handler) HandleWelcomeImage(c *gin.Context) {
	if h.Images == nil {
		c.Status(http.StatusNoContent)
		return
	}
	url, err := h.Images.Welcome(c.Request.Context())
	if err != nil {
		h.Log.Warn("welcome image unavailable", "error", err)
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}
