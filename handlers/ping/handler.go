package ping

import (
	"github.com/gin-gonic/gin"
)

type Handler struct{}

func New() *Handler {
	return &Handler{}
}

// @Summary Ping test
// @Description Health check endpoint that answers pong
// @Tags test
// @Produce json
// @Success 200 {object} map[string]string
// @Router /ping [get]
func (h *Handler) HandlePing(c *gin.Context) {
	c.JSON(200, gin.H{
		"message": "pong",
	})
}
