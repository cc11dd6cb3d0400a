package models

import (
	"encoding/json"
	"time"

	"github.com/wbaguley/GTM-Systems-AI-Planner-sub000/pkg/fieldtypes"
)

// Column span bounds of the form layout grid
const (
	MinColumnSpan = 1
	MaxColumnSpan = 3
)

// ModuleField is a typed attribute definition attached to a module.
// FieldKey is the join point between the definition and record data.
type ModuleField struct {
	ID           string                  `json:"id"`
	ModuleID     string                  `json:"moduleId"`
	FieldKey     string                  `json:"fieldKey"`
	Label        string                  `json:"label"`
	FieldType    string                  `json:"fieldType"`
	Placeholder  *string                 `json:"placeholder,omitempty"`
	HelpText     *string                 `json:"helpText,omitempty"`
	IsRequired   bool                    `json:"isRequired"`
	IsUnique     bool                    `json:"isUnique"`
	DefaultValue interface{}             `json:"defaultValue,omitempty"`
	Options      []string                `json:"options,omitempty"`
	Validation   *fieldtypes.Constraints `json:"validation,omitempty"`
	DisplayOrder int                     `json:"displayOrder"`
	SectionID    *string                 `json:"sectionId,omitempty"`
	ColumnSpan   int                     `json:"columnSpan"`
	IsSystem     bool                    `json:"isSystem"`
	CreatedAt    time.Time               `json:"createdAt"`
	UpdatedAt    time.Time               `json:"updatedAt"`
}

// Rules returns the value rules the field type registry checks record data against
func (f *ModuleField) Rules() fieldtypes.Rules {
	return fieldtypes.Rules{Options: f.Options, Constraints: f.Validation}
}

// FieldInput is the payload of field creation. A nil DisplayOrder appends the
// field after the module's last field; a zero ColumnSpan means 1.
type FieldInput struct {
	FieldKey     string                  `json:"fieldKey"`
	Label        string                  `json:"label"`
	FieldType    string                  `json:"fieldType"`
	Placeholder  *string                 `json:"placeholder,omitempty"`
	HelpText     *string                 `json:"helpText,omitempty"`
	IsRequired   bool                    `json:"isRequired"`
	IsUnique     bool                    `json:"isUnique"`
	DefaultValue interface{}             `json:"defaultValue,omitempty"`
	Options      []string                `json:"options,omitempty"`
	Validation   *fieldtypes.Constraints `json:"validation,omitempty"`
	DisplayOrder *int                    `json:"displayOrder,omitempty"`
	SectionID    *string                 `json:"sectionId,omitempty"`
	ColumnSpan   int                     `json:"columnSpan,omitempty"`
	IsSystem     bool                    `json:"-"`
}

// FieldPatch is a partial field update. Nil members are left untouched.
// Empty strings clear Placeholder, HelpText and SectionID; an empty Validation
// object clears the constraints. DefaultValue is kept raw so that an explicit
// JSON null (clear) can be told apart from an absent member.
type FieldPatch struct {
	FieldKey     *string                 `json:"fieldKey,omitempty"`
	Label        *string                 `json:"label,omitempty"`
	FieldType    *string                 `json:"fieldType,omitempty"`
	Placeholder  *string                 `json:"placeholder,omitempty"`
	HelpText     *string                 `json:"helpText,omitempty"`
	IsRequired   *bool                   `json:"isRequired,omitempty"`
	IsUnique     *bool                   `json:"isUnique,omitempty"`
	DefaultValue json.RawMessage         `json:"defaultValue,omitempty"`
	Options      *[]string               `json:"options,omitempty"`
	Validation   *fieldtypes.Constraints `json:"validation,omitempty"`
	DisplayOrder *int                    `json:"displayOrder,omitempty"`
	SectionID    *string                 `json:"sectionId,omitempty"`
	ColumnSpan   *int                    `json:"columnSpan,omitempty"`
}

// ReorderInput lists field ids in their new display order
type ReorderInput struct {
	FieldIDs []string `json:"fieldIds"`
}
