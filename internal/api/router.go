// Package api exposes the engine over HTTP with gin.
package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/abhisek/skillquest/internal/engine"
	"github.com/abhisek/skillquest/internal/logger"
)

// Handler serves the engine's operations.
type Handler struct {
	eng *engine.Engine
	log *logger.Logger
}

func NewHandler(eng *engine.Engine, log *logger.Logger) *Handler {
	if log == nil {
		log = logger.Nop()
	}
	return &Handler{eng: eng, log: log.With("component", "api")}
}

// NewRouter registers every route on a new gin engine.
func NewRouter(h *Handler) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), h.accessLog())

	router.GET("/healthz", healthCheck)

	v1 := router.Group("/v1")
	{
		v1.POST("/score", h.Score)

		student := v1.Group("/tenants/:tenant/students/:student")
		student.GET("/quests", h.DailyQuests)
		student.POST("/week", h.WeeklyPlan)
		student.POST("/attempts", h.Record)
		student.GET("/insights", h.Insights)
		student.GET("/careers", h.Careers)
		student.GET("/report.xlsx", h.Report)

		v1.PUT("/tenants/:tenant/teachers/:teacher/focus", h.SaveFocus)
		v1.GET("/tenants/:tenant/teachers/:teacher/focus", h.ActiveFocus)
	}
	return router
}

func healthCheck(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}

func (h *Handler) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		h.log.Debug("http request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"latency_ms", time.Since(start).Milliseconds())
	}
}
