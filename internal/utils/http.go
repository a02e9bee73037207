package utils

import (
	"github.com/gin-gonic/gin"
	"github.com/haojie06/dallebot/internal/model"
)

func GinFailedWithMessage(c *gin.Context, status int, message string) {
	c.JSON(status, model.StatsHTTPResponse{
		Status:  "failed",
		Message: message,
	})
}
