package rest

import (
	"github.com/gin-gonic/gin"

	"github.com/wbaguley/GTM-Systems-AI-Planner-sub000/internal/application/services"
	"github.com/wbaguley/GTM-Systems-AI-Planner-sub000/internal/domain/models"
)

// RecordRequest is the body of record create and update
type RecordRequest struct {
	Data models.RecordData `json:"data"`
}

// RecordHandler serves module records
type RecordHandler struct {
	svc *services.ServiceManager
}

// NewRecordHandler creates a new RecordHandler
func NewRecordHandler(svc *services.ServiceManager) *RecordHandler {
	return &RecordHandler{svc: svc}
}

// GetRecords handles GET /api/modules/:id/records
func (h *RecordHandler) GetRecords(c *gin.Context) {
	HandleGetEnvelope(c, "records", func() (interface{}, error) {
		return h.svc.Records.List(c.Request.Context(), ownerID(c), c.Param("id"))
	})
}

// GetRecord handles GET /api/modules/:id/records/:recordId
func (h *RecordHandler) GetRecord(c *gin.Context) {
	HandleGetEnvelope(c, "record", func() (interface{}, error) {
		return h.svc.Records.Get(c.Request.Context(), ownerID(c), c.Param("id"), c.Param("recordId"))
	})
}

// CreateRecord handles POST /api/modules/:id/records
func (h *RecordHandler) CreateRecord(c *gin.Context) {
	var req RecordRequest
	HandleCreateEnvelope(c, "record", "Record created successfully", &req, func() (interface{}, error) {
		owner := ownerID(c)
		return h.svc.Records.Create(c.Request.Context(), owner, c.Param("id"), req.Data, owner)
	})
}

// UpdateRecord handles PATCH /api/modules/:id/records/:recordId. Data is
// merged into the stored record; a null value removes the key.
func (h *RecordHandler) UpdateRecord(c *gin.Context) {
	var req RecordRequest
	HandleUpdateEnvelope(c, "record", "Record updated successfully", &req, func() (interface{}, error) {
		owner := ownerID(c)
		return h.svc.Records.Update(c.Request.Context(), owner, c.Param("id"), c.Param("recordId"), req.Data, owner)
	})
}

// DeleteRecord handles DELETE /api/modules/:id/records/:recordId
func (h *RecordHandler) DeleteRecord(c *gin.Context) {
	HandleDeleteEnvelope(c, "Record deleted successfully", func() error {
		return h.svc.Records.Delete(c.Request.Context(), ownerID(c), c.Param("id"), c.Param("recordId"))
	})
}

// GetOrphanKeys handles GET /api/modules/:id/orphan-keys
func (h *RecordHandler) GetOrphanKeys(c *gin.Context) {
	HandleGetEnvelope(c, "report", func() (interface{}, error) {
		return h.svc.Records.AuditKeys(c.Request.Context(), ownerID(c), c.Param("id"))
	})
}
