package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/merchantops/sentinel/internal/config"
)

func (api *Api) GetConfig(c *gin.Context) {
	c.JSON(http.StatusOK, api.engine.MonitoringSettings())
}

// UpdateConfig replaces the monitoring settings and restarts the scheduler so
// new intervals take effect on the next run.
func (api *Api) UpdateConfig(c *gin.Context) {
	var mc config.MonitoringConfig
	if err := c.ShouldBindJSON(&mc); err != nil {
		apiError(c, http.StatusBadRequest, "INVALID_PARAMETER", err.Error())
		return
	}
	if mc.MetricRetentionDays <= 0 || mc.AlertRetentionDays <= 0 {
		apiError(c, http.StatusBadRequest, "INVALID_PARAMETER", "retention days must be positive")
		return
	}
	api.engine.UpdateMonitoringConfig(mc)
	c.JSON(http.StatusOK, mc)
}
