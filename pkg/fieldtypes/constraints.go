package fieldtypes

import (
	"fmt"
	"regexp"
	"strings"

	apperrors "github.com/wbaguley/GTM-Systems-AI-Planner-sub000/pkg/errors"
)

// Constraint kinds, as named in fieldTypes.json
const (
	ConstraintMin       = "min"
	ConstraintMax       = "max"
	ConstraintMinLength = "minLength"
	ConstraintMaxLength = "maxLength"
	ConstraintPattern   = "pattern"
)

// Constraints are the optional per-field value rules stored in a field's
// validation column.
type Constraints struct {
	Min       *float64 `json:"min,omitempty"`
	Max       *float64 `json:"max,omitempty"`
	MinLength *int     `json:"minLength,omitempty"`
	MaxLength *int     `json:"maxLength,omitempty"`
	Pattern   string   `json:"pattern,omitempty"`
	// Message replaces the generic pattern mismatch error
	Message string `json:"message,omitempty"`
}

// IsZero reports whether no rule is set
func (c *Constraints) IsZero() bool {
	return c == nil || (c.Min == nil && c.Max == nil && c.MinLength == nil && c.MaxLength == nil && c.Pattern == "")
}

func (c *Constraints) rangeConfig() map[string]interface{} {
	cfg := map[string]interface{}{}
	if c.Min != nil {
		cfg["min"] = *c.Min
	}
	if c.Max != nil {
		cfg["max"] = *c.Max
	}
	return cfg
}

func (c *Constraints) lengthConfig() map[string]interface{} {
	cfg := map[string]interface{}{}
	if c.MinLength != nil {
		cfg["min"] = *c.MinLength
	}
	if c.MaxLength != nil {
		cfg["max"] = *c.MaxLength
	}
	return cfg
}

// ValidateConstraints checks a field definition's constraints at definition time:
// each rule must apply to the type, bounds must be ordered and the pattern must compile.
func ValidateConstraints(typeName string, c *Constraints) error {
	if c.IsZero() {
		return nil
	}
	reg := GetRegistry()
	var verrs apperrors.ValidationErrors

	check := func(set bool, kind string) {
		if set && !reg.AllowsConstraint(typeName, kind) {
			verrs.Add("validation."+kind, fmt.Sprintf("not applicable to %s fields", typeName))
		}
	}
	check(c.Min != nil, ConstraintMin)
	check(c.Max != nil, ConstraintMax)
	check(c.MinLength != nil, ConstraintMinLength)
	check(c.MaxLength != nil, ConstraintMaxLength)
	check(c.Pattern != "", ConstraintPattern)

	if c.Min != nil && c.Max != nil && *c.Min > *c.Max {
		verrs.Add("validation.min", "min must not exceed max")
	}
	if c.MinLength != nil && *c.MinLength < 0 {
		verrs.Add("validation.minLength", "must not be negative")
	}
	if c.MaxLength != nil && *c.MaxLength < 0 {
		verrs.Add("validation.maxLength", "must not be negative")
	}
	if c.MinLength != nil && c.MaxLength != nil && *c.MinLength > *c.MaxLength {
		verrs.Add("validation.minLength", "minLength must not exceed maxLength")
	}
	if c.Pattern != "" {
		if _, err := regexp.Compile(c.Pattern); err != nil {
			verrs.Add("validation.pattern", fmt.Sprintf("invalid pattern: %v", err))
		}
	}
	return verrs.ErrOrNil()
}

// ValidateOptions checks the options list of a field definition: required, non-empty
// and distinct for select/multiselect, absent for every other type.
func ValidateOptions(typeName string, options []string) error {
	var verrs apperrors.ValidationErrors
	if !RequiresOptions(typeName) {
		if len(options) > 0 {
			verrs.Add("options", fmt.Sprintf("%s fields do not take options", typeName))
		}
		return verrs.ErrOrNil()
	}

	if len(options) == 0 {
		verrs.Add("options", fmt.Sprintf("%s fields require at least one option", typeName))
		return verrs.ErrOrNil()
	}
	seen := make(map[string]bool, len(options))
	for _, opt := range options {
		if strings.TrimSpace(opt) == "" {
			verrs.Add("options", "options must not be blank")
			continue
		}
		if seen[opt] {
			verrs.Add("options", fmt.Sprintf("duplicate option '%s'", opt))
		}
		seen[opt] = true
	}
	return verrs.ErrOrNil()
}
