package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/wbaguley/GTM-Systems-AI-Planner-sub000/internal/domain/events"
	"github.com/wbaguley/GTM-Systems-AI-Planner-sub000/internal/domain/models"
	"github.com/wbaguley/GTM-Systems-AI-Planner-sub000/internal/infrastructure/persistence"
	apperrors "github.com/wbaguley/GTM-Systems-AI-Planner-sub000/pkg/errors"
	"github.com/wbaguley/GTM-Systems-AI-Planner-sub000/pkg/fieldtypes"
	"github.com/wbaguley/GTM-Systems-AI-Planner-sub000/pkg/logging"
	"github.com/wbaguley/GTM-Systems-AI-Planner-sub000/pkg/utils"
)

// FieldService manages a module's field definitions
type FieldService struct {
	tx       *persistence.TransactionManager
	modules  *persistence.ModuleRepository
	fields   *persistence.FieldRepository
	sections *persistence.SectionRepository
	records  *persistence.RecordRepository
	events   *EventBus
	log      *logrus.Entry
}

func NewFieldService(
	tx *persistence.TransactionManager,
	modules *persistence.ModuleRepository,
	fields *persistence.FieldRepository,
	sections *persistence.SectionRepository,
	records *persistence.RecordRepository,
	bus *EventBus,
) *FieldService {
	return &FieldService{
		tx:       tx,
		modules:  modules,
		fields:   fields,
		sections: sections,
		records:  records,
		events:   bus,
		log:      logging.Component("field_service"),
	}
}

// List returns the module's fields ordered by display order, then creation time
func (s *FieldService) List(ctx context.Context, ownerID, moduleID string) ([]*models.ModuleField, error) {
	m, err := loadOwnedModule(ctx, s.modules, nil, ownerID, moduleID)
	if err != nil {
		return nil, err
	}
	return s.fields.ListByModule(ctx, nil, m.ID)
}

// Create validates and stores a new field. Without an explicit display order
// the field is appended after the module's last field.
func (s *FieldService) Create(ctx context.Context, ownerID, moduleID string, in models.FieldInput) (*models.ModuleField, error) {
	f := newField(moduleID, in)
	f.ID = utils.GenerateID()
	if in.DisplayOrder != nil {
		f.DisplayOrder = *in.DisplayOrder
	}

	err := s.tx.WithTransaction(ctx, func(tx *sql.Tx) error {
		if _, err := loadOwnedModule(ctx, s.modules, tx, ownerID, moduleID); err != nil {
			return err
		}
		section, err := s.lookupSection(ctx, tx, f.SectionID)
		if err != nil {
			return err
		}
		if err := validateFieldDefinition(f, section); err != nil {
			return err
		}
		if in.DisplayOrder == nil {
			if f.DisplayOrder, err = s.fields.NextDisplayOrder(ctx, tx, moduleID); err != nil {
				return err
			}
		}
		f.CreatedAt = nowUTC()
		f.UpdatedAt = f.CreatedAt
		return s.fields.Insert(ctx, tx, f)
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"module_id": moduleID,
		"field_key": f.FieldKey,
		"type":      f.FieldType,
	}).Info("✅ Field created")
	s.events.notify(ctx, events.FieldCreated, SchemaEventPayload{ModuleID: moduleID, OwnerID: ownerID, FieldKey: f.FieldKey})
	return f, nil
}

func (s *FieldService) lookupSection(ctx context.Context, tx *sql.Tx, sectionID *string) (*models.ModuleSection, error) {
	if sectionID == nil {
		return nil, nil
	}
	return s.sections.FindByID(ctx, tx, *sectionID)
}

// loadField returns the field if it belongs to the module
func (s *FieldService) loadField(ctx context.Context, tx *sql.Tx, moduleID, fieldID string) (*models.ModuleField, error) {
	f, err := s.fields.FindByID(ctx, tx, fieldID)
	if err != nil {
		return nil, err
	}
	if f == nil || f.ModuleID != moduleID {
		return nil, apperrors.NewNotFoundError("Field", fieldID)
	}
	return f, nil
}

// Update applies a partial patch and re-validates the whole definition.
// The key and type of a system field, or of a field any record holds a value
// for, cannot change. New options or constraints must still accept every
// stored value.
func (s *FieldService) Update(ctx context.Context, ownerID, moduleID, fieldID string, patch models.FieldPatch) (*models.ModuleField, error) {
	var updated *models.ModuleField
	err := s.tx.WithTransaction(ctx, func(tx *sql.Tx) error {
		if _, err := loadOwnedModule(ctx, s.modules, tx, ownerID, moduleID); err != nil {
			return err
		}
		f, err := s.loadField(ctx, tx, moduleID, fieldID)
		if err != nil {
			return err
		}

		originalKey := f.FieldKey
		keyChanged := patch.FieldKey != nil && strings.TrimSpace(*patch.FieldKey) != f.FieldKey
		typeChanged := patch.FieldType != nil && strings.TrimSpace(*patch.FieldType) != f.FieldType
		if keyChanged || typeChanged {
			if err := s.ensureShapeMutable(ctx, tx, f); err != nil {
				return err
			}
		}

		if err := applyFieldPatch(f, patch); err != nil {
			return err
		}
		section, err := s.lookupSection(ctx, tx, f.SectionID)
		if err != nil {
			return err
		}
		if err := validateFieldDefinition(f, section); err != nil {
			return err
		}
		if patch.Options != nil || patch.Validation != nil {
			if err := s.ensureValuesFit(ctx, tx, f); err != nil {
				return err
			}
		}

		updates, err := persistence.FieldColumnValues(f)
		if err != nil {
			return err
		}
		if err := s.fields.Update(ctx, tx, f.ID, updates); err != nil {
			return err
		}
		if keyChanged {
			s.log.WithFields(logrus.Fields{"module_id": moduleID, "from": originalKey, "to": f.FieldKey}).Info("🔑 Field key renamed")
		}
		updated, err = s.fields.FindByID(ctx, tx, f.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// ensureShapeMutable rejects key or type changes of system fields and of
// fields with stored values
func (s *FieldService) ensureShapeMutable(ctx context.Context, tx *sql.Tx, f *models.ModuleField) error {
	if f.IsSystem {
		return apperrors.NewInvalidOperationError("change field key or type", fmt.Sprintf("'%s' is a system field", f.FieldKey))
	}
	records, err := s.records.ListByModule(ctx, tx, f.ModuleID)
	if err != nil {
		return err
	}
	for _, rec := range records {
		if v, ok := rec.Data[f.FieldKey]; ok && v != nil {
			return apperrors.NewInvalidOperationError("change field key or type",
				fmt.Sprintf("records already hold values for '%s'", f.FieldKey))
		}
	}
	return nil
}

// ensureValuesFit rejects options or constraints that a stored value of the
// field would no longer satisfy
func (s *FieldService) ensureValuesFit(ctx context.Context, tx *sql.Tx, f *models.ModuleField) error {
	records, err := s.records.ListByModule(ctx, tx, f.ModuleID)
	if err != nil {
		return err
	}
	rules := f.Rules()
	rejected := 0
	for _, rec := range records {
		v, ok := rec.Data[f.FieldKey]
		if !ok || v == nil {
			continue
		}
		if _, err := fieldtypes.ValidateValue(f.FieldType, v, rules); err != nil {
			rejected++
		}
	}
	if rejected > 0 {
		return apperrors.NewInvalidOperationError("narrow field options or validation",
			fmt.Sprintf("%d record(s) hold values for '%s' that would no longer be valid", rejected, f.FieldKey))
	}
	return nil
}

func applyFieldPatch(f *models.ModuleField, p models.FieldPatch) error {
	if p.FieldKey != nil {
		f.FieldKey = strings.TrimSpace(*p.FieldKey)
	}
	if p.Label != nil {
		f.Label = strings.TrimSpace(*p.Label)
	}
	if p.FieldType != nil {
		f.FieldType = strings.TrimSpace(*p.FieldType)
	}
	if p.Placeholder != nil {
		f.Placeholder = emptyToNil(p.Placeholder)
	}
	if p.HelpText != nil {
		f.HelpText = emptyToNil(p.HelpText)
	}
	if p.IsRequired != nil {
		f.IsRequired = *p.IsRequired
	}
	if p.IsUnique != nil {
		f.IsUnique = *p.IsUnique
	}
	if len(p.DefaultValue) > 0 {
		var value interface{}
		if err := json.Unmarshal(p.DefaultValue, &value); err != nil {
			return apperrors.NewValidationError("defaultValue", "must be valid JSON")
		}
		f.DefaultValue = value
	}
	if p.Options != nil {
		f.Options = *p.Options
	}
	if p.Validation != nil {
		f.Validation = p.Validation
		if f.Validation.IsZero() {
			f.Validation = nil
		}
	}
	if p.DisplayOrder != nil {
		f.DisplayOrder = *p.DisplayOrder
	}
	if p.SectionID != nil {
		f.SectionID = emptyToNil(p.SectionID)
	}
	if p.ColumnSpan != nil {
		f.ColumnSpan = *p.ColumnSpan
	}
	return nil
}

func emptyToNil(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	return s
}

// Delete removes a non-system field and scrubs its key from every record of
// the module in one transaction.
func (s *FieldService) Delete(ctx context.Context, ownerID, moduleID, fieldID string) error {
	var (
		key      string
		scrubbed int64
	)
	err := s.tx.WithTransaction(ctx, func(tx *sql.Tx) error {
		if _, err := loadOwnedModule(ctx, s.modules, tx, ownerID, moduleID); err != nil {
			return err
		}
		f, err := s.loadField(ctx, tx, moduleID, fieldID)
		if err != nil {
			return err
		}
		if f.IsSystem {
			return apperrors.NewInvalidOperationError("delete field", fmt.Sprintf("'%s' is a system field", f.FieldKey))
		}
		key = f.FieldKey

		if _, err := s.fields.Delete(ctx, tx, f.ID); err != nil {
			return err
		}
		records, err := s.records.ListByModule(ctx, tx, moduleID)
		if err != nil {
			return err
		}
		for _, rec := range records {
			if _, ok := rec.Data[key]; !ok {
				continue
			}
			delete(rec.Data, key)
			if err := s.records.UpdateData(ctx, tx, rec.ID, rec.Data, ownerID); err != nil {
				return fmt.Errorf("failed to scrub record %s: %w", rec.ID, err)
			}
			scrubbed++
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.log.WithFields(logrus.Fields{
		"module_id": moduleID,
		"field_key": key,
		"scrubbed":  scrubbed,
	}).Info("🗑️  Field deleted")
	s.events.notify(ctx, events.FieldDeleted, SchemaEventPayload{ModuleID: moduleID, OwnerID: ownerID, FieldKey: key, Affected: scrubbed})
	return nil
}

// Reorder gives the listed fields display orders 0..n-1 and moves the
// remaining fields after them, keeping their relative order. Concurrent
// reorders are last-writer-wins.
func (s *FieldService) Reorder(ctx context.Context, ownerID, moduleID string, fieldIDs []string) ([]*models.ModuleField, error) {
	var ordered []*models.ModuleField
	err := s.tx.WithTransaction(ctx, func(tx *sql.Tx) error {
		if _, err := loadOwnedModule(ctx, s.modules, tx, ownerID, moduleID); err != nil {
			return err
		}
		current, err := s.fields.ListByModule(ctx, tx, moduleID)
		if err != nil {
			return err
		}

		byID := make(map[string]*models.ModuleField, len(current))
		for _, f := range current {
			byID[f.ID] = f
		}
		var verrs apperrors.ValidationErrors
		listed := make(map[string]bool, len(fieldIDs))
		for _, id := range fieldIDs {
			switch {
			case byID[id] == nil:
				verrs.Add("fieldIds", fmt.Sprintf("unknown field '%s'", id))
			case listed[id]:
				verrs.Add("fieldIds", fmt.Sprintf("field '%s' is listed more than once", id))
			}
			listed[id] = true
		}
		if err := verrs.ErrOrNil(); err != nil {
			return err
		}

		ordered = make([]*models.ModuleField, 0, len(current))
		for _, id := range fieldIDs {
			ordered = append(ordered, byID[id])
		}
		for _, f := range current {
			if !listed[f.ID] {
				ordered = append(ordered, f)
			}
		}
		for i, f := range ordered {
			if f.DisplayOrder == i {
				continue
			}
			if err := s.fields.SetDisplayOrder(ctx, tx, f.ID, i); err != nil {
				return err
			}
			f.DisplayOrder = i
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"module_id": moduleID, "fields": len(ordered)}).Info("🔀 Fields reordered")
	s.events.notify(ctx, events.FieldsReordered, SchemaEventPayload{ModuleID: moduleID, OwnerID: ownerID})
	return ordered, nil
}
