package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"launcx-order-api/internal/system"
	"launcx-order-api/internal/utils"
)

// Healthz handles GET /healthz.
func Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// RefreshSettings handles POST /api/v1/system/refresh, reloading sys_config
// after an operator change.
func RefreshSettings(c *gin.Context) {
	system.Refresh()
	c.JSON(http.StatusOK, utils.Success(nil))
}
