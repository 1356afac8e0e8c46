package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"

	"launcx-order-api/internal/config"
	"launcx-order-api/internal/constant"
	"launcx-order-api/internal/utils"
)

// InternalOnly guards operator endpoints with the configured admin token,
// passed as X-Admin-Token. With no token configured the endpoints are
// disabled outright.
func InternalOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := config.C.Server.AdminToken
		got := c.GetHeader("X-Admin-Token")
		if token == "" || subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
			c.AbortWithStatusJSON(http.StatusForbidden, utils.Error(constant.CodeUnauthorized))
			return
		}
		c.Next()
	}
}
