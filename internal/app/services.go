package app

import (
	"github.com/yungbote/bmu-faultfinder/internal/catalog"
	"github.com/yungbote/bmu-faultfinder/internal/observability"
	"github.com/yungbote/bmu-faultfinder/internal/platform/logger"
	"github.com/yungbote/bmu-faultfinder/internal/services"
)

type Services struct {
	Catalog services.CatalogService
	JobLog  services.JobLogService
}

func wireServices(log *logger.Logger, store *catalog.Store, reposet Repos, clients Clients, metrics *observability.Metrics) Services {
	log.Info("Wiring services...")
	var notify services.JobNotifier
	if clients.JobBus != nil {
		notify = services.NewRedisJobNotifier(clients.JobBus)
	}
	return Services{
		Catalog: services.NewCatalogService(store, log, metrics),
		JobLog:  services.NewJobLogService(log, reposet.Job, store, notify, metrics),
	}
}
