package handlers

import (
	"net/http"

	"github.com/kyp2022/ghostlink/pkg/utilities/timeutil"

	"github.com/gin-gonic/gin"
)

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"application": "ghostlink",
		"status":      "running",
		"timestamp":   timeutil.NowUTC().T,
	})
}
