package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/wbaguley/GTM-Systems-AI-Planner-sub000/internal/application/services"
	"github.com/wbaguley/GTM-Systems-AI-Planner-sub000/internal/domain/models"
)

// ModuleHandler serves module definitions and the Platforms migration
type ModuleHandler struct {
	svc *services.ServiceManager
}

// NewModuleHandler creates a new ModuleHandler
func NewModuleHandler(svc *services.ServiceManager) *ModuleHandler {
	return &ModuleHandler{svc: svc}
}

// ListModules handles GET /api/modules
func (h *ModuleHandler) ListModules(c *gin.Context) {
	HandleGetEnvelope(c, "modules", func() (interface{}, error) {
		return h.svc.Modules.List(c.Request.Context(), ownerID(c))
	})
}

// GetModule handles GET /api/modules/:id
func (h *ModuleHandler) GetModule(c *gin.Context) {
	HandleGetEnvelope(c, "module", func() (interface{}, error) {
		return h.svc.Modules.Get(c.Request.Context(), ownerID(c), c.Param("id"))
	})
}

// CreateModule handles POST /api/modules
func (h *ModuleHandler) CreateModule(c *gin.Context) {
	var in models.ModuleInput
	HandleCreateEnvelope(c, "module", "Module created successfully", &in, func() (interface{}, error) {
		return h.svc.Modules.Create(c.Request.Context(), ownerID(c), in)
	})
}

// UpdateModule handles PATCH /api/modules/:id. Unknown members such as
// isSystem are rejected.
func (h *ModuleHandler) UpdateModule(c *gin.Context) {
	var patch models.ModulePatch
	if !BindJSONStrict(c, &patch) {
		return
	}
	respond(c, http.StatusOK, "module", "Module updated successfully", func() (interface{}, error) {
		return h.svc.Modules.Update(c.Request.Context(), ownerID(c), c.Param("id"), patch)
	})
}

// DeleteModule handles DELETE /api/modules/:id
func (h *ModuleHandler) DeleteModule(c *gin.Context) {
	HandleDeleteEnvelope(c, "Module deleted successfully", func() error {
		return h.svc.Modules.Delete(c.Request.Context(), ownerID(c), c.Param("id"))
	})
}

// MigratePlatforms handles POST /api/modules/migrate-platforms. The body is optional.
func (h *ModuleHandler) MigratePlatforms(c *gin.Context) {
	var opts models.MigrationOptions
	if !BindOptionalJSON(c, &opts) {
		return
	}
	respond(c, http.StatusOK, "result", "Platforms migrated successfully", func() (interface{}, error) {
		return h.svc.Migration.MigratePlatforms(c.Request.Context(), ownerID(c), opts)
	})
}
