package rest

import (
	"github.com/gin-gonic/gin"

	"github.com/wbaguley/GTM-Systems-AI-Planner-sub000/internal/application/services"
	"github.com/wbaguley/GTM-Systems-AI-Planner-sub000/internal/domain/models"
)

// CustomValuesRequest is the body of PUT /api/platforms/:platformId/custom-values.
// A null or empty value clears the stored value.
type CustomValuesRequest struct {
	Values map[string]interface{} `json:"values"`
}

// CustomFieldHandler serves the legacy per-user custom fields of platforms
type CustomFieldHandler struct {
	svc *services.ServiceManager
}

// NewCustomFieldHandler creates a new CustomFieldHandler
func NewCustomFieldHandler(svc *services.ServiceManager) *CustomFieldHandler {
	return &CustomFieldHandler{svc: svc}
}

// GetCustomFields handles GET /api/custom-fields
func (h *CustomFieldHandler) GetCustomFields(c *gin.Context) {
	HandleGetEnvelope(c, "customFields", func() (interface{}, error) {
		return h.svc.CustomFields.ListFields(c.Request.Context(), ownerID(c))
	})
}

// CreateCustomField handles POST /api/custom-fields
func (h *CustomFieldHandler) CreateCustomField(c *gin.Context) {
	var in models.CustomFieldInput
	HandleCreateEnvelope(c, "customField", "Custom field created successfully", &in, func() (interface{}, error) {
		return h.svc.CustomFields.CreateField(c.Request.Context(), ownerID(c), in)
	})
}

// UpdateCustomField handles PATCH /api/custom-fields/:id
func (h *CustomFieldHandler) UpdateCustomField(c *gin.Context) {
	var patch models.CustomFieldPatch
	HandleUpdateEnvelope(c, "customField", "Custom field updated successfully", &patch, func() (interface{}, error) {
		return h.svc.CustomFields.UpdateField(c.Request.Context(), ownerID(c), c.Param("id"), patch)
	})
}

// DeleteCustomField handles DELETE /api/custom-fields/:id
func (h *CustomFieldHandler) DeleteCustomField(c *gin.Context) {
	HandleDeleteEnvelope(c, "Custom field deleted successfully", func() error {
		return h.svc.CustomFields.DeleteField(c.Request.Context(), ownerID(c), c.Param("id"))
	})
}

// GetCustomValues handles GET /api/platforms/:platformId/custom-values
func (h *CustomFieldHandler) GetCustomValues(c *gin.Context) {
	HandleGetEnvelope(c, "values", func() (interface{}, error) {
		return h.svc.CustomFields.GetValues(c.Request.Context(), ownerID(c), c.Param("platformId"))
	})
}

// SetCustomValues handles PUT /api/platforms/:platformId/custom-values
func (h *CustomFieldHandler) SetCustomValues(c *gin.Context) {
	var req CustomValuesRequest
	HandleUpdateEnvelope(c, "values", "Custom values saved successfully", &req, func() (interface{}, error) {
		return h.svc.CustomFields.SetValues(c.Request.Context(), ownerID(c), c.Param("platformId"), req.Values)
	})
}
