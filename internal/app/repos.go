package app

import (
	"fmt"
	"strings"

	"github.com/yungbote/bmu-faultfinder/internal/data/db"
	"github.com/yungbote/bmu-faultfinder/internal/data/repos"
	"github.com/yungbote/bmu-faultfinder/internal/platform/logger"
)

type Repos struct {
	Job repos.JobRepo
}

// wireRepos picks the job log backend. The db service is nil for the memory
// store.
func wireRepos(cfg Config, log *logger.Logger) (Repos, *db.Service, error) {
	log.Info("Wiring repos...", "job_store", cfg.JobStore)
	switch strings.ToLower(strings.TrimSpace(cfg.JobStore)) {
	case "", JobStoreMemory:
		return Repos{Job: repos.NewMemoryJobRepo()}, nil, nil
	case JobStoreSQLite, JobStorePostgres:
		svc, err := db.Open(cfg.DB, log)
		if err != nil {
			return Repos{}, nil, fmt.Errorf("init job store: %w", err)
		}
		return Repos{Job: repos.NewJobRepo(svc.DB(), log)}, svc, nil
	}
	return Repos{}, nil, fmt.Errorf("unknown JOBLOG_STORE %q", cfg.JobStore)
}
