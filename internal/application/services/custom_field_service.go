package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/wbaguley/GTM-Systems-AI-Planner-sub000/internal/domain/models"
	"github.com/wbaguley/GTM-Systems-AI-Planner-sub000/internal/infrastructure/persistence"
	"github.com/wbaguley/GTM-Systems-AI-Planner-sub000/pkg/constants"
	apperrors "github.com/wbaguley/GTM-Systems-AI-Planner-sub000/pkg/errors"
	"github.com/wbaguley/GTM-Systems-AI-Planner-sub000/pkg/fieldtypes"
	"github.com/wbaguley/GTM-Systems-AI-Planner-sub000/pkg/logging"
	"github.com/wbaguley/GTM-Systems-AI-Planner-sub000/pkg/utils"
)

// CustomFieldService manages the per-user custom field overlay of the legacy
// Platform entity. Values are stored in the registry's canonical string form.
type CustomFieldService struct {
	tx           *persistence.TransactionManager
	customFields *persistence.CustomFieldRepository
	platforms    *persistence.PlatformRepository
	log          *logrus.Entry
}

func NewCustomFieldService(
	tx *persistence.TransactionManager,
	customFields *persistence.CustomFieldRepository,
	platforms *persistence.PlatformRepository,
) *CustomFieldService {
	return &CustomFieldService{
		tx:           tx,
		customFields: customFields,
		platforms:    platforms,
		log:          logging.Component("custom_field_service"),
	}
}

func (s *CustomFieldService) ListFields(ctx context.Context, userID string) ([]*models.CustomField, error) {
	return s.customFields.ListByUser(ctx, nil, userID)
}

// CreateField validates and stores a custom field. A duplicate key for the
// user is a ConflictError.
func (s *CustomFieldService) CreateField(ctx context.Context, userID string, in models.CustomFieldInput) (*models.CustomField, error) {
	f := &models.CustomField{
		ID:          utils.GenerateID(),
		UserID:      userID,
		FieldKey:    strings.TrimSpace(in.FieldKey),
		Label:       strings.TrimSpace(in.Label),
		FieldType:   strings.TrimSpace(in.FieldType),
		Placeholder: emptyToNil(in.Placeholder),
		Required:    utils.BoolToInt(in.Required),
	}

	var verrs apperrors.ValidationErrors
	checkFieldKey(&verrs, "fieldKey", f.FieldKey)
	checkRequired(&verrs, "label", f.Label)
	if in.DisplayOrder != nil && *in.DisplayOrder < 0 {
		verrs.Add("displayOrder", "must not be negative")
	}
	if err := s.checkTypeAndOptions(&verrs, f.FieldType, in.Options); err != nil {
		return nil, err
	}
	if err := verrs.ErrOrNil(); err != nil {
		return nil, err
	}
	options, err := encodeOptions(in.Options)
	if err != nil {
		return nil, err
	}
	f.Options = options

	err = s.tx.WithTransaction(ctx, func(tx *sql.Tx) error {
		if in.DisplayOrder != nil {
			f.DisplayOrder = *in.DisplayOrder
		} else {
			next, err := s.customFields.NextDisplayOrder(ctx, tx, userID)
			if err != nil {
				return err
			}
			f.DisplayOrder = next
		}
		return s.customFields.Insert(ctx, tx, f)
	})
	if err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"user_id": userID, "field_key": f.FieldKey}).Info("✅ Custom field created")
	return f, nil
}

func (s *CustomFieldService) checkTypeAndOptions(verrs *apperrors.ValidationErrors, fieldType string, options []string) error {
	if !fieldtypes.IsValidType(fieldType) {
		verrs.Add("fieldType", fmt.Sprintf("unknown field type '%s'", fieldType))
		return nil
	}
	return verrs.Append("options", fieldtypes.ValidateOptions(fieldType, options))
}

func encodeOptions(options []string) (*string, error) {
	if len(options) == 0 {
		return nil, nil
	}
	encoded, err := json.Marshal(options)
	if err != nil {
		return nil, fmt.Errorf("failed to encode options: %w", err)
	}
	s := string(encoded)
	return &s, nil
}

func decodeOptions(f *models.CustomField) []string {
	if f.Options == nil || *f.Options == "" {
		return nil
	}
	var options []string
	if err := json.Unmarshal([]byte(*f.Options), &options); err != nil {
		return nil
	}
	return options
}

func (s *CustomFieldService) loadField(ctx context.Context, tx *sql.Tx, userID, fieldID string) (*models.CustomField, error) {
	f, err := s.customFields.FindByID(ctx, tx, fieldID)
	if err != nil {
		return nil, err
	}
	if f == nil || f.UserID != userID {
		return nil, apperrors.NewNotFoundError("CustomField", fieldID)
	}
	return f, nil
}

// UpdateField changes presentation attributes; key and type are fixed
func (s *CustomFieldService) UpdateField(ctx context.Context, userID, fieldID string, patch models.CustomFieldPatch) (*models.CustomField, error) {
	f, err := s.loadField(ctx, nil, userID, fieldID)
	if err != nil {
		return nil, err
	}

	var verrs apperrors.ValidationErrors
	updates := map[string]interface{}{}
	if patch.Label != nil {
		label := strings.TrimSpace(*patch.Label)
		checkRequired(&verrs, "label", label)
		updates[constants.FieldLabel] = label
	}
	if patch.Placeholder != nil {
		updates[constants.FieldPlaceholder] = emptyToNilValue(patch.Placeholder)
	}
	if patch.Required != nil {
		updates[constants.FieldRequired] = utils.BoolToInt(*patch.Required)
	}
	if patch.Options != nil {
		if err := s.checkTypeAndOptions(&verrs, f.FieldType, *patch.Options); err != nil {
			return nil, err
		}
		options, err := encodeOptions(*patch.Options)
		if err != nil {
			return nil, err
		}
		if options == nil {
			updates[constants.FieldOptions] = nil
		} else {
			updates[constants.FieldOptions] = *options
		}
	}
	if patch.DisplayOrder != nil {
		if *patch.DisplayOrder < 0 {
			verrs.Add("displayOrder", "must not be negative")
		}
		updates[constants.FieldDisplayOrder] = *patch.DisplayOrder
	}
	if err := verrs.ErrOrNil(); err != nil {
		return nil, err
	}
	if len(updates) == 0 {
		return f, nil
	}
	if err := s.customFields.Update(ctx, nil, f.ID, updates); err != nil {
		return nil, err
	}
	return s.customFields.FindByID(ctx, nil, f.ID)
}

// DeleteField removes the field's values from every platform of the user and
// then the field itself, in one transaction
func (s *CustomFieldService) DeleteField(ctx context.Context, userID, fieldID string) error {
	var (
		key      string
		scrubbed int64
	)
	err := s.tx.WithTransaction(ctx, func(tx *sql.Tx) error {
		f, err := s.loadField(ctx, tx, userID, fieldID)
		if err != nil {
			return err
		}
		key = f.FieldKey
		if scrubbed, err = s.customFields.DeleteValuesForKey(ctx, tx, userID, f.FieldKey); err != nil {
			return err
		}
		_, err = s.customFields.Delete(ctx, tx, f.ID)
		return err
	})
	if err != nil {
		return err
	}
	s.log.WithFields(logrus.Fields{"user_id": userID, "field_key": key, "scrubbed": scrubbed}).Info("🗑️  Custom field deleted")
	return nil
}

func (s *CustomFieldService) loadPlatform(ctx context.Context, tx *sql.Tx, userID, platformID string) (*models.Platform, error) {
	p, err := s.platforms.FindByID(ctx, tx, platformID)
	if err != nil {
		return nil, err
	}
	if p == nil || p.UserID != userID {
		return nil, apperrors.NewNotFoundError("Platform", platformID)
	}
	return p, nil
}

// GetValues returns the custom values of one of the user's platforms
func (s *CustomFieldService) GetValues(ctx context.Context, userID, platformID string) ([]*models.CustomFieldValue, error) {
	if _, err := s.loadPlatform(ctx, nil, userID, platformID); err != nil {
		return nil, err
	}
	return s.customFields.ListValues(ctx, nil, platformID)
}

// SetValues validates each value against its field and stores its canonical
// string form. A nil value clears the key. Unknown keys are rejected.
func (s *CustomFieldService) SetValues(ctx context.Context, userID, platformID string, values map[string]interface{}) ([]*models.CustomFieldValue, error) {
	var stored []*models.CustomFieldValue
	err := s.tx.WithTransaction(ctx, func(tx *sql.Tx) error {
		if _, err := s.loadPlatform(ctx, tx, userID, platformID); err != nil {
			return err
		}
		fields, err := s.customFields.ListByUser(ctx, tx, userID)
		if err != nil {
			return err
		}
		byKey := make(map[string]*models.CustomField, len(fields))
		for _, f := range fields {
			byKey[f.FieldKey] = f
		}

		keys := make([]string, 0, len(values))
		for key := range values {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		var verrs apperrors.ValidationErrors
		canonical := make(map[string]interface{}, len(values))
		for _, key := range keys {
			f := byKey[key]
			if f == nil {
				verrs.Add(key, "no custom field with this key")
				continue
			}
			value, err := fieldtypes.ValidateValue(f.FieldType, values[key], fieldtypes.Rules{Options: decodeOptions(f)})
			if err != nil {
				if other := verrs.Append(key, err); other != nil {
					return other
				}
				continue
			}
			if f.Required == 1 && fieldtypes.IsEmpty(value) {
				verrs.Add(key, fmt.Sprintf("%s is required", f.Label))
				continue
			}
			canonical[key] = value
		}
		if err := verrs.ErrOrNil(); err != nil {
			return err
		}

		for _, key := range keys {
			value := canonical[key]
			if value == nil {
				if err := s.customFields.DeleteValue(ctx, tx, platformID, key); err != nil {
					return err
				}
				continue
			}
			formatted := fieldtypes.FormatValue(byKey[key].FieldType, value)
			if err := s.customFields.PutValue(ctx, tx, &models.CustomFieldValue{
				ID:         utils.GenerateID(),
				PlatformID: platformID,
				FieldKey:   key,
				Value:      &formatted,
			}); err != nil {
				return err
			}
		}
		stored, err = s.customFields.ListValues(ctx, tx, platformID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return stored, nil
}
