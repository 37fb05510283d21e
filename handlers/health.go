package handlers

import (
	"net/http"

	"servicedesk/utils"

	"github.com/gin-gonic/gin"
)

// HealthHandler reports the last snapshot taken by the health monitor.
type HealthHandler struct {
	Version string
}

func (h *HealthHandler) HealthCheckHandler(c *gin.Context) {
	status := utils.GetHealthStatus()
	code := http.StatusOK
	state := "ok"
	if !status.Healthy {
		code = http.StatusServiceUnavailable
		state = "degraded"
	}
	c.JSON(code, gin.H{
		"status":    state,
		"version":   h.Version,
		"services":  status.Services,
		"checkedAt": status.CheckedAt,
	})
}
