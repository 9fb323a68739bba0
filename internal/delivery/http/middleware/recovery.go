package middleware

import (
	"net/http"

	"github.com/LavaJover/shvark-rate-service/internal/delivery/http/dto"
	"github.com/gin-gonic/gin"
)

func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		LoggerFrom(c).Error("panic recovered", "panic", recovered)
		c.AbortWithStatusJSON(http.StatusInternalServerError, dto.Fail("internal server error"))
	})
}
