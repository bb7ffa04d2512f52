package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/merchantops/sentinel/internal/middleware"
	"github.com/merchantops/sentinel/internal/monitoring"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Api serves the operator endpoints on top of the monitoring engine.
type Api struct {
	engine *monitoring.Engine
	router *gin.Engine
}

func NewApi(engine *monitoring.Engine, router *gin.Engine, authToken string) (*Api, error) {
	api := &Api{
		engine: engine,
		router: router,
	}
	api.setupRouters(router, authToken)
	return api, nil
}

func (api *Api) setupRouters(router *gin.Engine, authToken string) {
	router.Use(middleware.RequestID())
	router.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/v1", middleware.Authentication(authToken))
	v1.GET("/status", api.GetStatus)
	v1.GET("/alerts", api.ListAlerts)
	v1.POST("/alerts/:alertID/acknowledge", api.AcknowledgeAlert)
	v1.POST("/alerts/:alertID/resolve", api.ResolveAlert)
	v1.GET("/metrics/history", api.GetMetricsHistory)
	v1.GET("/rules", api.ListRules)
	v1.POST("/rules", api.CreateRule)
	v1.PUT("/rules/:ruleID", api.UpdateRule)
	v1.DELETE("/rules/:ruleID", api.DeleteRule)
	v1.GET("/reports/:period", api.GetReport)
	v1.GET("/config", api.GetConfig)
	v1.PUT("/config", api.UpdateConfig)
}

func apiError(c *gin.Context, status int, code, message string) {
	c.JSON(status, map[string]any{"error": map[string]any{"code": code, "message": message}})
}
