package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	types "github.com/yungbote/bmu-faultfinder/internal/domain"
	"github.com/yungbote/bmu-faultfinder/internal/http/response"
	"github.com/yungbote/bmu-faultfinder/internal/platform/apierr"
	"github.com/yungbote/bmu-faultfinder/internal/platform/ctxutil"
	"github.com/yungbote/bmu-faultfinder/internal/platform/logger"
	"github.com/yungbote/bmu-faultfinder/internal/services"
)

const maxJobBody = 1 << 20

type JobHandler struct {
	log  *logger.Logger
	jobs services.JobLogService
}

func NewJobHandler(log *logger.Logger, jobs services.JobLogService) *JobHandler {
	return &JobHandler{log: log.With("handler", "JobHandler"), jobs: jobs}
}

// GET /api/jobs
func (h *JobHandler) ListJobs(c *gin.Context) {
	jobs, err := h.jobs.List(c.Request.Context())
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, jobs)
}

// POST /api/jobs
// A body that is not a JSON object is saved as an empty job. Bodies over
// maxJobBody get 413.
func (h *JobHandler) CreateJob(c *gin.Context) {
	var in types.JobInput
	raw, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxJobBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.RespondAPIError(c, apierr.TooLarge("job payload exceeds %d bytes", tooLarge.Limit))
			return
		}
		h.log.Warn("reading job payload failed, saving empty job", append(ctxutil.LogFields(c.Request.Context()), "error", err)...)
	} else if len(raw) > 0 {
		if err := json.Unmarshal(raw, &in); err != nil {
			h.log.Warn("malformed job payload, saving empty job", append(ctxutil.LogFields(c.Request.Context()), "error", err)...)
			in = types.JobInput{}
		}
	}
	job, err := h.jobs.Save(c.Request.Context(), in)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondCreated(c, job)
}

// GET /api/jobs/:id
func (h *JobHandler) GetJob(c *gin.Context) {
	job, err := h.jobs.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, job)
}

// GET /api/jobs/:id/summary
func (h *JobHandler) GetJobSummary(c *gin.Context) {
	job, err := h.jobs.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	c.String(http.StatusOK, h.jobs.Summary(job))
}
