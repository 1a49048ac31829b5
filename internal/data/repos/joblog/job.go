package joblog

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	types "github.com/yungbote/bmu-faultfinder/internal/domain"
	"github.com/yungbote/bmu-faultfinder/internal/pkg/dbctx"
	"github.com/yungbote/bmu-faultfinder/internal/platform/logger"
)

// JobRepo is the append-only job log. GetByID returns (nil, nil) when the id
// is unknown.
type JobRepo interface {
	Create(dbc dbctx.Context, job *types.Job) (*types.Job, error)
	List(dbc dbctx.Context) ([]*types.Job, error)
	GetByID(dbc dbctx.Context, id string) (*types.Job, error)
}

type jobRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewJobRepo(db *gorm.DB, baseLog *logger.Logger) JobRepo {
	return &jobRepo{
		db:  db,
		log: baseLog.With("repo", "JobRepo"),
	}
}

func (r *jobRepo) Create(dbc dbctx.Context, job *types.Job) (*types.Job, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	row := job.Clone()
	if row.Checks == nil {
		row.Checks = datatypes.JSONSlice[string]{}
	}
	row.Model = nil
	if err := transaction.WithContext(dbc.Ctx).Create(row).Error; err != nil {
		return nil, err
	}
	return normalize(row), nil
}

func (r *jobRepo) List(dbc dbctx.Context) ([]*types.Job, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.Job
	if err := transaction.WithContext(dbc.Ctx).
		Order("created_at DESC").
		Order("id DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	for _, j := range out {
		normalize(j)
	}
	if out == nil {
		out = []*types.Job{}
	}
	return out, nil
}

func (r *jobRepo) GetByID(dbc dbctx.Context, id string) (*types.Job, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if id == "" {
		return nil, nil
	}
	var job types.Job
	if err := transaction.WithContext(dbc.Ctx).
		Where("id = ?", id).
		Limit(1).
		Find(&job).Error; err != nil {
		return nil, err
	}
	if job.ID == "" {
		return nil, nil
	}
	return normalize(&job), nil
}

// normalize undoes driver differences: sqlite hands back a fixed-offset zone
// and null JSON decodes to a nil slice.
func normalize(j *types.Job) *types.Job {
	j.CreatedAt = j.CreatedAt.In(time.UTC)
	if j.Checks == nil {
		j.Checks = datatypes.JSONSlice[string]{}
	}
	return j
}
