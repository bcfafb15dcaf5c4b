package api

import (
	"net/http"
	"time"

	"jobtrack/internal/api/handler"
	"jobtrack/internal/core/ports"
	"jobtrack/internal/document"
	"jobtrack/internal/metrics"
	"jobtrack/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
)

type Dependencies struct {
	Workflows service.WorkflowService
	Jobs      service.JobService
	Bus       ports.EventBus
	Metrics   *metrics.Metrics
	Log       *logrus.Entry
}

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(document.JSONTagName)
	}
}

func NewRouter(deps Dependencies) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(deps.Log), observe(deps.Metrics))

	workflowHandler := handler.NewWorkflowHandler(deps.Workflows)
	jobHandler := handler.NewJobHandler(deps.Jobs, deps.Workflows)
	eventHandler := handler.NewEventHandler(deps.Bus)

	api := router.Group("/api")
	{
		api.GET("/job", jobHandler.Schema)
		api.POST("/job", jobHandler.Call)

		api.GET("/workflows", workflowHandler.List)
		api.POST("/workflows", workflowHandler.Create)
		api.GET("/workflows/:id", workflowHandler.Get)
		api.PATCH("/workflows/:id", workflowHandler.Update)
		api.DELETE("/workflows/:id", workflowHandler.Delete)
		api.POST("/workflows/:id/name", workflowHandler.Rename)

		api.GET("/workflows/:id/jobs", jobHandler.List)
		api.POST("/workflows/:id/jobs", jobHandler.Create)
		api.POST("/workflows/:id/jobs/consume", jobHandler.Consume)
		api.POST("/workflows/:id/jobs/:jobId/reactivate", jobHandler.Reactivate)

		api.GET("/events", eventHandler.Stream)
	}

	if deps.Metrics != nil {
		router.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	}
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	return router
}

func requestLogger(log *logrus.Entry) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		if log == nil {
			return
		}

		entry := log.WithFields(logrus.Fields{
			"method":  c.Request.Method,
			"path":    c.Request.URL.Path,
			"status":  c.Writer.Status(),
			"latency": time.Since(start),
		})
		if len(c.Errors) > 0 {
			entry.WithError(c.Errors.Last()).Error("request failed")
			return
		}
		entry.Debug("request")
	}
}

func observe(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.ObserveHTTP(c.Request.Method, route, c.Writer.Status())
	}
}
