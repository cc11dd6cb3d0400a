package rest

import (
	"github.com/gin-gonic/gin"

	"github.com/wbaguley/GTM-Systems-AI-Planner-sub000/pkg/fieldtypes"
)

// FieldTypeInfo represents field type information for API response
type FieldTypeInfo struct {
	Name            string   `json:"name"`
	Label           string   `json:"label"`
	Description     string   `json:"description"`
	Icon            string   `json:"icon"`
	Storage         string   `json:"storage"`
	Constraints     []string `json:"constraints"`
	RequiresOptions bool     `json:"requiresOptions"`
	IsSearchable    bool     `json:"isSearchable"`
	IsGroupable     bool     `json:"isGroupable"`
	IsSummable      bool     `json:"isSummable"`
}

// GetAllFieldTypes returns the closed set of field types, sorted by name
func GetAllFieldTypes() []FieldTypeInfo {
	builtin := fieldtypes.GetAllFieldTypes()
	result := make([]FieldTypeInfo, 0, len(builtin))
	for _, ft := range builtin {
		constraints := ft.Constraints
		if constraints == nil {
			constraints = []string{}
		}
		result = append(result, FieldTypeInfo{
			Name:            ft.Name,
			Label:           ft.Label,
			Description:     ft.Description,
			Icon:            ft.Icon,
			Storage:         ft.Storage,
			Constraints:     constraints,
			RequiresOptions: ft.RequiresOptions,
			IsSearchable:    ft.IsSearchable,
			IsGroupable:     ft.IsGroupable,
			IsSummable:      ft.IsSummable,
		})
	}
	return result
}

// GetFieldTypes handles GET /api/fieldtypes
func GetFieldTypes(c *gin.Context) {
	HandleGetEnvelope(c, "fieldTypes", func() (interface{}, error) {
		return GetAllFieldTypes(), nil
	})
}
