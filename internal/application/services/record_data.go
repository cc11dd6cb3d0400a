package services

import (
	"fmt"

	"github.com/wbaguley/GTM-Systems-AI-Planner-sub000/internal/domain/models"
	apperrors "github.com/wbaguley/GTM-Systems-AI-Planner-sub000/pkg/errors"
	"github.com/wbaguley/GTM-Systems-AI-Planner-sub000/pkg/fieldtypes"
)

// prepareData validates input against the module's fields and returns the
// canonical data to store. Every violation is collected. Keys without a field
// definition are kept verbatim and returned as orphans.
func prepareData(fields []*models.ModuleField, input models.RecordData, applyDefaults bool) (models.RecordData, []string, error) {
	out := make(models.RecordData, len(input))
	defined := make(map[string]bool, len(fields))
	var verrs apperrors.ValidationErrors

	for _, f := range fields {
		defined[f.FieldKey] = true
		raw, present := input[f.FieldKey]
		if !present && applyDefaults && f.DefaultValue != nil {
			raw = f.DefaultValue
		}

		value, err := fieldtypes.ValidateValue(f.FieldType, raw, f.Rules())
		if err != nil {
			if other := verrs.Append(f.FieldKey, err); other != nil {
				return nil, nil, other
			}
			continue
		}
		if f.IsRequired && fieldtypes.IsEmpty(value) {
			verrs.Add(f.FieldKey, fmt.Sprintf("%s is required", f.Label))
			continue
		}
		if value != nil {
			out[f.FieldKey] = value
		}
	}
	if err := verrs.ErrOrNil(); err != nil {
		return nil, nil, err
	}

	var orphans []string
	for key, value := range input {
		if defined[key] {
			continue
		}
		out[key] = value
		orphans = append(orphans, key)
	}
	return out, orphans, nil
}

// normalizeData restores canonical Go types of defined fields after a JSON
// round trip (numbers decode as float64, lists as []interface{}). Values that
// no longer validate are left as stored.
func normalizeData(fields []*models.ModuleField, data models.RecordData) models.RecordData {
	for _, f := range fields {
		raw, ok := data[f.FieldKey]
		if !ok || raw == nil {
			continue
		}
		if value, err := fieldtypes.ValidateValue(f.FieldType, raw, f.Rules()); err == nil && value != nil {
			data[f.FieldKey] = value
		}
	}
	return data
}

// uniqueViolations reports values of unique fields already held by another record
func uniqueViolations(fields []*models.ModuleField, data models.RecordData, others []*models.ModuleRecord, selfID string) error {
	var verrs apperrors.ValidationErrors
	for _, f := range fields {
		if !f.IsUnique {
			continue
		}
		value, ok := data[f.FieldKey]
		if !ok || fieldtypes.IsEmpty(value) {
			continue
		}
		want := fieldtypes.FormatValue(f.FieldType, value)
		for _, other := range others {
			if other.ID == selfID {
				continue
			}
			existing, ok := other.Data[f.FieldKey]
			if !ok || existing == nil {
				continue
			}
			if canonical, err := fieldtypes.ValidateValue(f.FieldType, existing, f.Rules()); err == nil {
				existing = canonical
			}
			if fieldtypes.FormatValue(f.FieldType, existing) == want {
				verrs.Add(f.FieldKey, fmt.Sprintf("value '%s' is already used by another record", want))
				break
			}
		}
	}
	return verrs.ErrOrNil()
}
