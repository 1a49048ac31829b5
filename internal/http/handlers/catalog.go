package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/bmu-faultfinder/internal/http/response"
	"github.com/yungbote/bmu-faultfinder/internal/services"
)

type CatalogHandler struct {
	catalog services.CatalogService
}

func NewCatalogHandler(catalog services.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

// GET /api/models
func (h *CatalogHandler) ListModels(c *gin.Context) {
	response.RespondOK(c, h.catalog.ListModels())
}

// GET /api/subsystems?modelId=
func (h *CatalogHandler) ListSubsystems(c *gin.Context) {
	response.RespondOK(c, h.catalog.ListSubsystems(c.Query("modelId")))
}

// GET /api/symptoms?subsystemId=
func (h *CatalogHandler) ListSymptoms(c *gin.Context) {
	response.RespondOK(c, h.catalog.ListSymptoms(c.Query("subsystemId")))
}

// GET /api/components?modelId=&subsystemId=&q=
func (h *CatalogHandler) ListComponents(c *gin.Context) {
	var f services.ComponentFilter
	// every field is an optional string, binding cannot fail in practice
	_ = c.ShouldBindQuery(&f)
	response.RespondOK(c, h.catalog.SearchComponents(f))
}

// GET /api/components/:id
func (h *CatalogHandler) GetComponent(c *gin.Context) {
	comp, err := h.catalog.GetComponent(c.Param("id"))
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, comp)
}

// GET /api/offline-data
func (h *CatalogHandler) OfflineData(c *gin.Context) {
	response.RespondOK(c, h.catalog.OfflineDataset())
}
