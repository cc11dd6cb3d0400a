package services

import (
	"fmt"
	"strings"

	"github.com/wbaguley/GTM-Systems-AI-Planner-sub000/internal/domain/models"
	apperrors "github.com/wbaguley/GTM-Systems-AI-Planner-sub000/pkg/errors"
	"github.com/wbaguley/GTM-Systems-AI-Planner-sub000/pkg/fieldtypes"
)

// validateFieldDefinition checks a complete field definition and canonicalises
// its default value in place. section is the referenced section, nil when
// SectionID is unset or the section does not exist. Every problem is reported
// in one ValidationErrors.
func validateFieldDefinition(f *models.ModuleField, section *models.ModuleSection) error {
	var verrs apperrors.ValidationErrors

	checkFieldKey(&verrs, "fieldKey", f.FieldKey)
	checkRequired(&verrs, "label", f.Label)

	typeOK := fieldtypes.IsValidType(f.FieldType)
	if !typeOK {
		verrs.Add("fieldType", fmt.Sprintf("unknown field type '%s'", f.FieldType))
	} else {
		if err := verrs.Append("options", fieldtypes.ValidateOptions(f.FieldType, f.Options)); err != nil {
			return err
		}
		if err := verrs.Append("validation", fieldtypes.ValidateConstraints(f.FieldType, f.Validation)); err != nil {
			return err
		}
	}

	if f.ColumnSpan == 0 {
		f.ColumnSpan = models.MinColumnSpan
	}
	if f.ColumnSpan < models.MinColumnSpan || f.ColumnSpan > models.MaxColumnSpan {
		verrs.Add("columnSpan", fmt.Sprintf("must be between %d and %d", models.MinColumnSpan, models.MaxColumnSpan))
	}
	if f.DisplayOrder < 0 {
		verrs.Add("displayOrder", "must not be negative")
	}
	if f.SectionID != nil && (section == nil || section.ModuleID != f.ModuleID) {
		verrs.Add("sectionId", "section does not belong to this module")
	}

	if typeOK && f.DefaultValue != nil && !verrs.HasErrors() {
		value, err := fieldtypes.ValidateValue(f.FieldType, f.DefaultValue, f.Rules())
		if err != nil {
			if other := verrs.Append("defaultValue", err); other != nil {
				return other
			}
		} else {
			f.DefaultValue = value
		}
	}
	return verrs.ErrOrNil()
}

// newField builds a field from creation input with trimmed text attributes
func newField(moduleID string, in models.FieldInput) *models.ModuleField {
	f := &models.ModuleField{
		ModuleID:     moduleID,
		FieldKey:     strings.TrimSpace(in.FieldKey),
		Label:        strings.TrimSpace(in.Label),
		FieldType:    strings.TrimSpace(in.FieldType),
		Placeholder:  in.Placeholder,
		HelpText:     in.HelpText,
		IsRequired:   in.IsRequired,
		IsUnique:     in.IsUnique,
		DefaultValue: in.DefaultValue,
		Options:      in.Options,
		Validation:   in.Validation,
		SectionID:    in.SectionID,
		ColumnSpan:   in.ColumnSpan,
		IsSystem:     in.IsSystem,
	}
	if f.SectionID != nil && *f.SectionID == "" {
		f.SectionID = nil
	}
	return f
}
