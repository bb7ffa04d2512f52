package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/merchantops/sentinel/internal/monitoring/model"
)

// GetStatus returns the current system health plus active alert counts.
func (api *Api) GetStatus(c *gin.Context) {
	status, err := api.engine.SystemStatus(c.Request.Context())
	if err != nil {
		apiError(c, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}
	c.JSON(http.StatusOK, status)
}

// ListAlerts returns alerts filtered by status and severity. Without a status
// filter it returns everything still requiring attention.
func (api *Api) ListAlerts(c *gin.Context) {
	status := model.AlertStatus(c.Query("status"))
	severity := model.Severity(c.Query("severity"))
	ctx := c.Request.Context()

	var (
		list []model.Alert
		err  error
	)
	if status == "" {
		list, err = api.engine.Manager.Active(ctx)
		if err == nil && severity != "" {
			filtered := list[:0]
			for _, a := range list {
				if a.Severity == severity {
					filtered = append(filtered, a)
				}
			}
			list = filtered
		}
	} else {
		list, err = api.engine.AlertStore().FindBy(ctx, status, severity)
	}
	if err != nil {
		apiError(c, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}
	if list == nil {
		list = []model.Alert{}
	}
	c.JSON(http.StatusOK, gin.H{"alerts": list, "total": len(list)})
}

type ackRequest struct {
	UserID string `json:"userID" binding:"required"`
	Note   string `json:"note"`
}

func (api *Api) AcknowledgeAlert(c *gin.Context) {
	var req ackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apiError(c, http.StatusBadRequest, "INVALID_PARAMETER", err.Error())
		return
	}
	alert, err := api.engine.Manager.Acknowledge(c.Request.Context(), c.Param("alertID"), req.UserID, req.Note)
	if err != nil {
		writeAlertError(c, err)
		return
	}
	c.JSON(http.StatusOK, alert)
}

type resolveRequest struct {
	UserID string `json:"userID" binding:"required"`
	Note   string `json:"note"`
	Action string `json:"action"`
}

func (api *Api) ResolveAlert(c *gin.Context) {
	var req resolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apiError(c, http.StatusBadRequest, "INVALID_PARAMETER", err.Error())
		return
	}
	alert, err := api.engine.Manager.Resolve(c.Request.Context(), c.Param("alertID"), req.UserID, req.Note, req.Action)
	if err != nil {
		writeAlertError(c, err)
		return
	}
	c.JSON(http.StatusOK, alert)
}

func writeAlertError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, model.ErrAlertNotFound):
		apiError(c, http.StatusNotFound, "NOT_FOUND", "alert not found")
	case errors.Is(err, model.ErrAlertResolved):
		apiError(c, http.StatusConflict, "ALREADY_RESOLVED", "alert is already resolved")
	default:
		apiError(c, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
	}
}

// GetMetricsHistory serves raw samples for dashboard trend charts.
func (api *Api) GetMetricsHistory(c *gin.Context) {
	t := model.MetricType(c.Query("type"))
	cat := model.MetricCategory(c.Query("category"))
	if t == "" || cat == "" {
		apiError(c, http.StatusBadRequest, "INVALID_PARAMETER", "type and category are required")
		return
	}
	hours, _ := strconv.Atoi(c.DefaultQuery("hours", "24"))
	samples, err := api.engine.MetricsHistory(c.Request.Context(), t, cat, hours)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}
	if samples == nil {
		samples = []model.MetricSample{}
	}
	c.JSON(http.StatusOK, gin.H{"samples": samples, "total": len(samples)})
}
