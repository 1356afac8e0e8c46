package middleware

import (
	"log"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"launcx-order-api/internal/constant"
	"launcx-order-api/internal/utils"
)

// Recover turns panics into a 500 envelope instead of a dropped connection.
func Recover() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("[PANIC] %s %s: %v\n%s", c.Request.Method, c.Request.URL.Path, r, debug.Stack())
				c.AbortWithStatusJSON(http.StatusInternalServerError, utils.Error(constant.CodeSystemError))
			}
		}()
		c.Next()
	}
}
