package rest

import (
	"github.com/gin-gonic/gin"

	"github.com/wbaguley/GTM-Systems-AI-Planner-sub000/internal/application/services"
	"github.com/wbaguley/GTM-Systems-AI-Planner-sub000/internal/domain/models"
)

// FieldHandler serves field definitions and form sections of a module
type FieldHandler struct {
	svc *services.ServiceManager
}

// NewFieldHandler creates a new FieldHandler
func NewFieldHandler(svc *services.ServiceManager) *FieldHandler {
	return &FieldHandler{svc: svc}
}

// ==================== Field Handlers ====================

// GetFields handles GET /api/modules/:id/fields
func (h *FieldHandler) GetFields(c *gin.Context) {
	HandleGetEnvelope(c, "fields", func() (interface{}, error) {
		return h.svc.Fields.List(c.Request.Context(), ownerID(c), c.Param("id"))
	})
}

// CreateField handles POST /api/modules/:id/fields
func (h *FieldHandler) CreateField(c *gin.Context) {
	var in models.FieldInput
	HandleCreateEnvelope(c, "field", "Field created successfully", &in, func() (interface{}, error) {
		return h.svc.Fields.Create(c.Request.Context(), ownerID(c), c.Param("id"), in)
	})
}

// UpdateField handles PATCH /api/modules/:id/fields/:fieldId
func (h *FieldHandler) UpdateField(c *gin.Context) {
	var patch models.FieldPatch
	HandleUpdateEnvelope(c, "field", "Field updated successfully", &patch, func() (interface{}, error) {
		return h.svc.Fields.Update(c.Request.Context(), ownerID(c), c.Param("id"), c.Param("fieldId"), patch)
	})
}

// DeleteField handles DELETE /api/modules/:id/fields/:fieldId
func (h *FieldHandler) DeleteField(c *gin.Context) {
	HandleDeleteEnvelope(c, "Field deleted successfully", func() error {
		return h.svc.Fields.Delete(c.Request.Context(), ownerID(c), c.Param("id"), c.Param("fieldId"))
	})
}

// ReorderFields handles PUT /api/modules/:id/fields/order
func (h *FieldHandler) ReorderFields(c *gin.Context) {
	var in models.ReorderInput
	HandleUpdateEnvelope(c, "fields", "Fields reordered successfully", &in, func() (interface{}, error) {
		return h.svc.Fields.Reorder(c.Request.Context(), ownerID(c), c.Param("id"), in.FieldIDs)
	})
}

// ==================== Section Handlers ====================

// GetSections handles GET /api/modules/:id/sections
func (h *FieldHandler) GetSections(c *gin.Context) {
	HandleGetEnvelope(c, "sections", func() (interface{}, error) {
		return h.svc.Sections.List(c.Request.Context(), ownerID(c), c.Param("id"))
	})
}

// CreateSection handles POST /api/modules/:id/sections
func (h *FieldHandler) CreateSection(c *gin.Context) {
	var in models.SectionInput
	HandleCreateEnvelope(c, "section", "Section created successfully", &in, func() (interface{}, error) {
		return h.svc.Sections.Create(c.Request.Context(), ownerID(c), c.Param("id"), in)
	})
}

// UpdateSection handles PATCH /api/modules/:id/sections/:sectionId
func (h *FieldHandler) UpdateSection(c *gin.Context) {
	var patch models.SectionPatch
	HandleUpdateEnvelope(c, "section", "Section updated successfully", &patch, func() (interface{}, error) {
		return h.svc.Sections.Update(c.Request.Context(), ownerID(c), c.Param("id"), c.Param("sectionId"), patch)
	})
}

// DeleteSection handles DELETE /api/modules/:id/sections/:sectionId.
// Fields of the section are kept and become unsectioned.
func (h *FieldHandler) DeleteSection(c *gin.Context) {
	HandleDeleteEnvelope(c, "Section deleted successfully", func() error {
		return h.svc.Sections.Delete(c.Request.Context(), ownerID(c), c.Param("id"), c.Param("sectionId"))
	})
}
