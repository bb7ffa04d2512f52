package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/merchantops/sentinel/internal/monitoring/model"
	"github.com/merchantops/sentinel/internal/monitoring/service/report"
)

func (api *Api) ListRules(c *gin.Context) {
	rules := api.engine.Catalog.List()
	c.JSON(http.StatusOK, gin.H{"rules": rules, "total": len(rules)})
}

func (api *Api) CreateRule(c *gin.Context) {
	var rule model.AlertRule
	if err := c.ShouldBindJSON(&rule); err != nil {
		apiError(c, http.StatusBadRequest, "INVALID_PARAMETER", err.Error())
		return
	}
	created, err := api.engine.Catalog.Add(rule)
	if err != nil {
		apiError(c, http.StatusBadRequest, "INVALID_RULE", err.Error())
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (api *Api) UpdateRule(c *gin.Context) {
	var rule model.AlertRule
	if err := c.ShouldBindJSON(&rule); err != nil {
		apiError(c, http.StatusBadRequest, "INVALID_PARAMETER", err.Error())
		return
	}
	rule.ID = c.Param("ruleID")
	if err := api.engine.Catalog.Update(rule); err != nil {
		writeRuleError(c, err)
		return
	}
	c.JSON(http.StatusOK, rule)
}

func (api *Api) DeleteRule(c *gin.Context) {
	if err := api.engine.Catalog.Remove(c.Param("ruleID")); err != nil {
		writeRuleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func writeRuleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, model.ErrRuleNotFound):
		apiError(c, http.StatusNotFound, "NOT_FOUND", "rule not found")
	case errors.Is(err, model.ErrInvalidRule):
		apiError(c, http.StatusBadRequest, "INVALID_RULE", err.Error())
	default:
		apiError(c, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
	}
}

// GetReport returns the latest generated report for a period, generating one on
// demand when no scheduled run has happened yet.
func (api *Api) GetReport(c *gin.Context) {
	p := report.Period(c.Param("period"))
	switch p {
	case report.PeriodDaily, report.PeriodWeekly, report.PeriodMonthly:
	default:
		apiError(c, http.StatusBadRequest, "INVALID_PARAMETER", "period must be daily, weekly or monthly")
		return
	}
	if r, ok := api.engine.Reports.Latest(p); ok {
		c.JSON(http.StatusOK, r)
		return
	}
	r, err := api.engine.Reports.Generate(c.Request.Context(), p)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}
	c.JSON(http.StatusOK, r)
}
