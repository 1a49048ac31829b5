package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/bmu-faultfinder/internal/faultflow"
	"github.com/yungbote/bmu-faultfinder/internal/http/response"
	"github.com/yungbote/bmu-faultfinder/internal/services"
)

type FaultFlowHandler struct {
	catalog services.CatalogService
}

func NewFaultFlowHandler(catalog services.CatalogService) *FaultFlowHandler {
	return &FaultFlowHandler{catalog: catalog}
}

// bindFlowQuery reads the three optional string ids. Binding plain strings
// cannot fail; missing ids are reported by Query.Validate in the service.
func bindFlowQuery(c *gin.Context) faultflow.Query {
	var q faultflow.Query
	_ = c.ShouldBindQuery(&q)
	return q
}

// GET /api/fault-flow
// First match only. 404 when nothing matches.
func (h *FaultFlowHandler) GetFaultFlow(c *gin.Context) {
	flow, err := h.catalog.FirstFlow(c.Request.Context(), bindFlowQuery(c))
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, flow)
}

// GET /api/fault-flows
func (h *FaultFlowHandler) ListFaultFlows(c *gin.Context) {
	flows, err := h.catalog.ResolveFlows(c.Request.Context(), bindFlowQuery(c))
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"flows": flows})
}

// GET /api/fault-flows/analysis
func (h *FaultFlowHandler) Analyze(c *gin.Context) {
	a, err := h.catalog.Analyze(c.Request.Context(), bindFlowQuery(c))
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, a)
}

// GET /api/fault-flows/:id
func (h *FaultFlowHandler) GetFlow(c *gin.Context) {
	d, err := h.catalog.GetFlow(c.Param("id"))
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, d)
}

// GET /api/fault-flows/:id/next?stepId=&outcome=
func (h *FaultFlowHandler) NextStep(c *gin.Context) {
	tr, err := h.catalog.NextStep(c.Request.Context(), c.Param("id"), c.Query("stepId"), c.Query("outcome"))
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, tr)
}
