package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gorm.io/datatypes"

	"github.com/yungbote/bmu-faultfinder/internal/data/repos"
	types "github.com/yungbote/bmu-faultfinder/internal/domain"
	"github.com/yungbote/bmu-faultfinder/internal/observability"
	"github.com/yungbote/bmu-faultfinder/internal/pkg/dbctx"
	"github.com/yungbote/bmu-faultfinder/internal/platform/apierr"
	"github.com/yungbote/bmu-faultfinder/internal/platform/ctxutil"
	"github.com/yungbote/bmu-faultfinder/internal/platform/logger"
)

const notifyTimeout = 2 * time.Second

// ModelLookup resolves the model attached to jobs on read.
type ModelLookup interface {
	Model(id string) (types.Model, bool)
}

type JobLogService interface {
	Save(ctx context.Context, in types.JobInput) (*types.Job, error)
	List(ctx context.Context) ([]*types.Job, error)
	Get(ctx context.Context, id string) (*types.Job, error)
	Summary(job *types.Job) string
}

type jobLogService struct {
	log     *logger.Logger
	repo    repos.JobRepo
	models  ModelLookup
	notify  JobNotifier
	metrics *observability.Metrics

	// mu serializes appends so createdAt order matches append order.
	mu   sync.Mutex
	last time.Time
	now  func() time.Time
}

// NewJobLogService wires the job log. notify and metrics may be nil.
func NewJobLogService(
	baseLog *logger.Logger,
	repo repos.JobRepo,
	models ModelLookup,
	notify JobNotifier,
	metrics *observability.Metrics,
) JobLogService {
	return &jobLogService{
		log:     baseLog.With("service", "JobLogService"),
		repo:    repo,
		models:  models,
		notify:  notify,
		metrics: metrics,
		now:     time.Now,
	}
}

func (s *jobLogService) Save(ctx context.Context, in types.JobInput) (*types.Job, error) {
	ctx, span := tracer.Start(ctx, "JobLogService.Save")
	defer span.End()

	checks := datatypes.JSONSlice[string]{}
	if len(in.Checks) > 0 {
		checks = append(checks, in.Checks...)
	}

	s.mu.Lock()
	createdAt := s.nextTimestamp()
	job := &types.Job{
		ID:        newJobID(createdAt),
		Site:      in.Site,
		BmuID:     in.BmuID,
		ModelID:   in.ModelID,
		Date:      in.Date,
		Reported:  in.Reported,
		Checks:    checks,
		Diagnosis: in.Diagnosis,
		Parts:     in.Parts,
		CreatedAt: createdAt,
	}
	created, err := s.repo.Create(dbctx.Context{Ctx: ctx}, job)
	s.mu.Unlock()

	if err != nil {
		s.metrics.IncJobSave("error")
		span.SetStatus(codes.Error, err.Error())
		s.log.Error("job save failed", append(ctxutil.LogFields(ctx), "error", err)...)
		return nil, fmt.Errorf("save job: %w", err)
	}
	s.metrics.IncJobSave("ok")
	span.SetAttributes(attribute.String("bmu.job_id", created.ID))
	s.attachModel(created)
	s.log.Info("job saved", append(ctxutil.LogFields(ctx), "job_id", created.ID, "model_id", created.ModelID)...)

	if s.notify != nil {
		nctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
		if err := s.notify.JobSaved(nctx, created); err != nil {
			s.log.Warn("job saved notification failed", append(ctxutil.LogFields(ctx), "job_id", created.ID, "error", err)...)
		}
		cancel()
	}
	return created, nil
}

func (s *jobLogService) List(ctx context.Context) ([]*types.Job, error) {
	ctx, span := tracer.Start(ctx, "JobLogService.List")
	defer span.End()

	jobs, err := s.repo.List(dbctx.Context{Ctx: ctx})
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	for _, j := range jobs {
		s.attachModel(j)
	}
	span.SetAttributes(attribute.Int("bmu.jobs", len(jobs)))
	return jobs, nil
}

func (s *jobLogService) Get(ctx context.Context, id string) (*types.Job, error) {
	ctx, span := tracer.Start(ctx, "JobLogService.Get")
	defer span.End()

	id = strings.TrimSpace(id)
	job, err := s.repo.GetByID(dbctx.Context{Ctx: ctx}, id)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("get job: %w", err)
	}
	if job == nil {
		return nil, apierr.NotFound("job %q", id)
	}
	s.attachModel(job)
	return job, nil
}

func (s *jobLogService) Summary(job *types.Job) string {
	return FormatSummary(job)
}

// nextTimestamp returns a UTC instant strictly after the previous one at
// microsecond resolution. Caller holds s.mu.
func (s *jobLogService) nextTimestamp() time.Time {
	t := s.now().UTC().Truncate(time.Microsecond)
	if !t.After(s.last) {
		t = s.last.Add(time.Microsecond)
	}
	s.last = t
	return t
}

func (s *jobLogService) attachModel(job *types.Job) {
	if job == nil || s.models == nil {
		return
	}
	if m, ok := s.models.Model(job.ModelID); ok {
		job.Model = &m
	}
}

func newJobID(at time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("job-%d-%s", at.UnixMilli(), suffix)
}
