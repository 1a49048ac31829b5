package joblog

import (
	"sync"

	"gorm.io/datatypes"

	types "github.com/yungbote/bmu-faultfinder/internal/domain"
	"github.com/yungbote/bmu-faultfinder/internal/pkg/dbctx"
)

// memoryJobRepo keeps the log newest first. Values are cloned on the way in
// and out so stored rows are never shared.
type memoryJobRepo struct {
	mu   sync.RWMutex
	jobs []*types.Job
}

func NewMemoryJobRepo() JobRepo {
	return &memoryJobRepo{}
}

func (r *memoryJobRepo) Create(_ dbctx.Context, job *types.Job) (*types.Job, error) {
	row := job.Clone()
	row.Model = nil
	if row.Checks == nil {
		row.Checks = datatypes.JSONSlice[string]{}
	}
	r.mu.Lock()
	r.jobs = append([]*types.Job{row}, r.jobs...)
	r.mu.Unlock()
	return row.Clone(), nil
}

func (r *memoryJobRepo) List(_ dbctx.Context) ([]*types.Job, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*types.Job, 0, len(r.jobs))
	for _, j := range r.jobs {
		out = append(out, j.Clone())
	}
	return out, nil
}

func (r *memoryJobRepo) GetByID(_ dbctx.Context, id string) (*types.Job, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, j := range r.jobs {
		if j.ID == id {
			return j.Clone(), nil
		}
	}
	return nil, nil
}
