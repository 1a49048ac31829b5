package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/bmu-faultfinder/internal/http/handlers"
	httpMW "github.com/yungbote/bmu-faultfinder/internal/http/middleware"
	"github.com/yungbote/bmu-faultfinder/internal/observability"
	"github.com/yungbote/bmu-faultfinder/internal/platform/logger"
)

type RouterConfig struct {
	ServiceName string
	CORSOrigins []string
	Log         *logger.Logger
	Metrics     *observability.Metrics

	HealthHandler    *httpH.HealthHandler
	CatalogHandler   *httpH.CatalogHandler
	FaultFlowHandler *httpH.FaultFlowHandler
	JobHandler       *httpH.JobHandler
}

func NewRouter(cfg RouterConfig) (*gin.Engine, error) {
	corsMW, err := httpMW.CORS(cfg.CORSOrigins)
	if err != nil {
		return nil, err
	}

	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.RequestIDs())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(corsMW)

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	api := r.Group("/api")
	{
		// Catalog
		if cfg.CatalogHandler != nil {
			api.GET("/models", cfg.CatalogHandler.ListModels)
			api.GET("/subsystems", cfg.CatalogHandler.ListSubsystems)
			api.GET("/symptoms", cfg.CatalogHandler.ListSymptoms)
			api.GET("/components", cfg.CatalogHandler.ListComponents)
			api.GET("/components/:id", cfg.CatalogHandler.GetComponent)
			api.GET("/offline-data", cfg.CatalogHandler.OfflineData)
		}

		// Fault flows
		if cfg.FaultFlowHandler != nil {
			api.GET("/fault-flow", cfg.FaultFlowHandler.GetFaultFlow)
			api.GET("/fault-flows", cfg.FaultFlowHandler.ListFaultFlows)
			api.GET("/fault-flows/analysis", cfg.FaultFlowHandler.Analyze)
			api.GET("/fault-flows/:id", cfg.FaultFlowHandler.GetFlow)
			api.GET("/fault-flows/:id/next", cfg.FaultFlowHandler.NextStep)
		}

		// Job log
		if cfg.JobHandler != nil {
			api.GET("/jobs", cfg.JobHandler.ListJobs)
			api.POST("/jobs", cfg.JobHandler.CreateJob)
			api.GET("/jobs/:id", cfg.JobHandler.GetJob)
			api.GET("/jobs/:id/summary", cfg.JobHandler.GetJobSummary)
		}
	}

	return r, nil
}
