package app

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/bmu-faultfinder/internal/http"
	httpH "github.com/yungbote/bmu-faultfinder/internal/http/handlers"
	"github.com/yungbote/bmu-faultfinder/internal/observability"
	"github.com/yungbote/bmu-faultfinder/internal/platform/logger"
)

type Handlers struct {
	Health    *httpH.HealthHandler
	Catalog   *httpH.CatalogHandler
	FaultFlow *httpH.FaultFlowHandler
	Job       *httpH.JobHandler
}

func wireHandlers(log *logger.Logger, services Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:    httpH.NewHealthHandler(),
		Catalog:   httpH.NewCatalogHandler(services.Catalog),
		FaultFlow: httpH.NewFaultFlowHandler(services.Catalog),
		Job:       httpH.NewJobHandler(log, services.JobLog),
	}
}

// wireRouter mounts otelgin only when a tracer provider was installed.
func wireRouter(cfg Config, log *logger.Logger, handlers Handlers, metrics *observability.Metrics, tracing bool) (*gin.Engine, error) {
	serviceName := ""
	if tracing {
		serviceName = cfg.ServiceName
	}
	return http.NewRouter(http.RouterConfig{
		ServiceName:      serviceName,
		CORSOrigins:      cfg.CORSOrigins,
		Log:              log,
		Metrics:          metrics,
		HealthHandler:    handlers.Health,
		CatalogHandler:   handlers.Catalog,
		FaultFlowHandler: handlers.FaultFlow,
		JobHandler:       handlers.Job,
	})
}
