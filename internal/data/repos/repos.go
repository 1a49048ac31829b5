package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/bmu-faultfinder/internal/data/repos/joblog"
	"github.com/yungbote/bmu-faultfinder/internal/platform/logger"
)

type JobRepo = joblog.JobRepo

func NewJobRepo(db *gorm.DB, log *logger.Logger) JobRepo { return joblog.NewJobRepo(db, log) }

func NewMemoryJobRepo() JobRepo { return joblog.NewMemoryJobRepo() }
