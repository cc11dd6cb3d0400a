package models

import "time"

// ModuleSection groups fields in a module's form. Presentation only.
type ModuleSection struct {
	ID                   string    `json:"id"`
	ModuleID             string    `json:"moduleId"`
	Title                string    `json:"title"`
	Description          *string   `json:"description,omitempty"`
	DisplayOrder         int       `json:"displayOrder"`
	IsCollapsible        bool      `json:"isCollapsible"`
	IsCollapsedByDefault bool      `json:"isCollapsedByDefault"`
	CreatedAt            time.Time `json:"createdAt"`
	UpdatedAt            time.Time `json:"updatedAt"`
}

type SectionInput struct {
	Title                string  `json:"title"`
	Description          *string `json:"description,omitempty"`
	DisplayOrder         *int    `json:"displayOrder,omitempty"`
	IsCollapsible        bool    `json:"isCollapsible"`
	IsCollapsedByDefault bool    `json:"isCollapsedByDefault"`
}

type SectionPatch struct {
	Title                *string `json:"title,omitempty"`
	Description          *string `json:"description,omitempty"`
	DisplayOrder         *int    `json:"displayOrder,omitempty"`
	IsCollapsible        *bool   `json:"isCollapsible,omitempty"`
	IsCollapsedByDefault *bool   `json:"isCollapsedByDefault,omitempty"`
}
