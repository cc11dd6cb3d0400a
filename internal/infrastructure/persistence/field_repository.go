package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/wbaguley/GTM-Systems-AI-Planner-sub000/internal/domain/models"
	"github.com/wbaguley/GTM-Systems-AI-Planner-sub000/internal/infrastructure/database"
	"github.com/wbaguley/GTM-Systems-AI-Planner-sub000/pkg/constants"
	apperrors "github.com/wbaguley/GTM-Systems-AI-Planner-sub000/pkg/errors"
	"github.com/wbaguley/GTM-Systems-AI-Planner-sub000/pkg/fieldtypes"
	"github.com/wbaguley/GTM-Systems-AI-Planner-sub000/pkg/query"
)

var fieldColumns = []string{
	constants.FieldID, constants.FieldModuleID, constants.FieldFieldKey, constants.FieldLabel,
	constants.FieldFieldType, constants.FieldPlaceholder, constants.FieldHelpText,
	constants.FieldIsRequired, constants.FieldIsUnique, constants.FieldDefaultValue,
	constants.FieldOptions, constants.FieldValidation, constants.FieldDisplayOrder,
	constants.FieldSectionID, constants.FieldColumnSpan, constants.FieldIsSystem,
	constants.FieldCreatedAt, constants.FieldUpdatedAt,
}

// FieldRepository persists module field definitions
type FieldRepository struct {
	conn *database.Connection
}

func NewFieldRepository(conn *database.Connection) *FieldRepository {
	return &FieldRepository{conn: conn}
}

// GetExecutor returns the transaction if present, or the DB connection
func (r *FieldRepository) GetExecutor(tx *sql.Tx) Executor {
	return executorFor(r.conn.DB(), tx)
}

// FieldColumnValues encodes the mutable attributes of a field as column values.
// Services use it to build partial updates.
func FieldColumnValues(f *models.ModuleField) (map[string]interface{}, error) {
	defaultValue, err := encodeJSON(f.DefaultValue)
	if err != nil {
		return nil, err
	}
	var options interface{}
	if len(f.Options) > 0 {
		if options, err = encodeJSON(f.Options); err != nil {
			return nil, err
		}
	}
	var validation interface{}
	if !f.Validation.IsZero() {
		if validation, err = encodeJSON(f.Validation); err != nil {
			return nil, err
		}
	}
	return map[string]interface{}{
		constants.FieldFieldKey:     f.FieldKey,
		constants.FieldLabel:        f.Label,
		constants.FieldFieldType:    f.FieldType,
		constants.FieldPlaceholder:  nullableString(f.Placeholder),
		constants.FieldHelpText:     nullableString(f.HelpText),
		constants.FieldIsRequired:   f.IsRequired,
		constants.FieldIsUnique:     f.IsUnique,
		constants.FieldDefaultValue: defaultValue,
		constants.FieldOptions:      options,
		constants.FieldValidation:   validation,
		constants.FieldDisplayOrder: f.DisplayOrder,
		constants.FieldSectionID:    nullableString(f.SectionID),
		constants.FieldColumnSpan:   f.ColumnSpan,
	}, nil
}

func fieldRow(f *models.ModuleField) (map[string]interface{}, error) {
	row, err := FieldColumnValues(f)
	if err != nil {
		return nil, err
	}
	row[constants.FieldID] = f.ID
	row[constants.FieldModuleID] = f.ModuleID
	row[constants.FieldIsSystem] = f.IsSystem
	row[constants.FieldCreatedAt] = f.CreatedAt
	row[constants.FieldUpdatedAt] = f.UpdatedAt
	return row, nil
}

// Insert stores a new field. A duplicate key within the module is a ConflictError.
func (r *FieldRepository) Insert(ctx context.Context, tx *sql.Tx, f *models.ModuleField) error {
	row, err := fieldRow(f)
	if err != nil {
		return err
	}
	q := query.Insert(constants.TableModuleField, row).Build()
	if _, err := r.GetExecutor(tx).ExecContext(ctx, q.SQL, q.Params...); err != nil {
		if r.conn.Dialect().IsUniqueViolation(err) {
			return apperrors.NewConflictError("Field", "fieldKey", f.FieldKey)
		}
		return wrapDBError(fmt.Errorf("failed to insert field: %w", err))
	}
	return nil
}

// InsertIgnore stores f unless the module already has a field with its key
func (r *FieldRepository) InsertIgnore(ctx context.Context, tx *sql.Tx, f *models.ModuleField) (bool, error) {
	row, err := fieldRow(f)
	if err != nil {
		return false, err
	}
	q := query.Insert(constants.TableModuleField, row).Verb(r.conn.Dialect().InsertIgnoreVerb()).Build()
	res, err := r.GetExecutor(tx).ExecContext(ctx, q.SQL, q.Params...)
	if err != nil {
		return false, wrapDBError(fmt.Errorf("failed to insert field: %w", err))
	}
	return rowsAffected(res) > 0, nil
}

// FindByID returns the field or nil when it does not exist
func (r *FieldRepository) FindByID(ctx context.Context, tx *sql.Tx, id string) (*models.ModuleField, error) {
	q := query.From(constants.TableModuleField).Select(fieldColumns).WhereEq(constants.FieldID, id).Limit(1).Build()
	f, err := scanField(r.GetExecutor(tx).QueryRowContext(ctx, q.SQL, q.Params...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, wrapDBError(fmt.Errorf("failed to load field: %w", err))
	}
	return f, nil
}

// ListByModule returns the module's fields by display order
func (r *FieldRepository) ListByModule(ctx context.Context, tx *sql.Tx, moduleID string) ([]*models.ModuleField, error) {
	q := query.From(constants.TableModuleField).Select(fieldColumns).
		WhereEq(constants.FieldModuleID, moduleID).
		OrderBy(constants.FieldDisplayOrder, KeywordAsc).
		OrderBy(constants.FieldCreatedAt, KeywordAsc).
		OrderBy(constants.FieldFieldKey, KeywordAsc).
		Build()

	rows, err := r.GetExecutor(tx).QueryContext(ctx, q.SQL, q.Params...)
	if err != nil {
		return nil, wrapDBError(fmt.Errorf("failed to list fields: %w", err))
	}
	defer rows.Close()

	fields := make([]*models.ModuleField, 0)
	for rows.Next() {
		f, err := scanField(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan field: %w", err)
		}
		fields = append(fields, f)
	}
	return fields, wrapDBError(rows.Err())
}

// NextDisplayOrder returns max(display_order)+1 for the module, 0 when it has no fields
func (r *FieldRepository) NextDisplayOrder(ctx context.Context, tx *sql.Tx, moduleID string) (int, error) {
	return nextDisplayOrder(ctx, r.GetExecutor(tx), constants.TableModuleField, moduleID)
}

func nextDisplayOrder(ctx context.Context, exec Executor, table, moduleID string) (int, error) {
	q := query.From(table).
		SelectRaw(fmt.Sprintf("MAX(`%s`)", constants.FieldDisplayOrder)).
		WhereEq(constants.FieldModuleID, moduleID).
		Build()
	var max sql.NullInt64
	if err := exec.QueryRowContext(ctx, q.SQL, q.Params...).Scan(&max); err != nil {
		return 0, wrapDBError(fmt.Errorf("failed to read display order: %w", err))
	}
	if !max.Valid {
		return 0, nil
	}
	return int(max.Int64) + 1, nil
}

// Update writes the given columns and refreshes updated_at
func (r *FieldRepository) Update(ctx context.Context, tx *sql.Tx, id string, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}
	updates[constants.FieldUpdatedAt] = now()
	q := query.Update(constants.TableModuleField).Set(updates).WhereEq(constants.FieldID, id).Build()
	if _, err := r.GetExecutor(tx).ExecContext(ctx, q.SQL, q.Params...); err != nil {
		if key, ok := updates[constants.FieldFieldKey].(string); ok && r.conn.Dialect().IsUniqueViolation(err) {
			return apperrors.NewConflictError("Field", "fieldKey", key)
		}
		return wrapDBError(fmt.Errorf("failed to update field: %w", err))
	}
	return nil
}

// SetDisplayOrder rewrites one field's position
func (r *FieldRepository) SetDisplayOrder(ctx context.Context, tx *sql.Tx, id string, order int) error {
	return r.Update(ctx, tx, id, map[string]interface{}{constants.FieldDisplayOrder: order})
}

// ClearSection detaches every field from a section
func (r *FieldRepository) ClearSection(ctx context.Context, tx *sql.Tx, sectionID string) (int64, error) {
	q := query.Update(constants.TableModuleField).
		Set(map[string]interface{}{constants.FieldSectionID: nil, constants.FieldUpdatedAt: now()}).
		WhereEq(constants.FieldSectionID, sectionID).
		Build()
	res, err := r.GetExecutor(tx).ExecContext(ctx, q.SQL, q.Params...)
	if err != nil {
		return 0, wrapDBError(fmt.Errorf("failed to detach fields from section: %w", err))
	}
	return rowsAffected(res), nil
}

// Delete removes one field
func (r *FieldRepository) Delete(ctx context.Context, tx *sql.Tx, id string) (int64, error) {
	q := query.Delete(constants.TableModuleField).WhereEq(constants.FieldID, id).Build()
	res, err := r.GetExecutor(tx).ExecContext(ctx, q.SQL, q.Params...)
	if err != nil {
		return 0, wrapDBError(fmt.Errorf("failed to delete field: %w", err))
	}
	return rowsAffected(res), nil
}

// DeleteByModule removes every field of a module
func (r *FieldRepository) DeleteByModule(ctx context.Context, tx *sql.Tx, moduleID string) (int64, error) {
	return deleteByModule(ctx, r.GetExecutor(tx), constants.TableModuleField, moduleID)
}

func deleteByModule(ctx context.Context, exec Executor, table, moduleID string) (int64, error) {
	q := query.Delete(table).WhereEq(constants.FieldModuleID, moduleID).Build()
	res, err := exec.ExecContext(ctx, q.SQL, q.Params...)
	if err != nil {
		return 0, wrapDBError(fmt.Errorf("failed to delete from %s: %w", table, err))
	}
	return rowsAffected(res), nil
}

func scanField(s rowScanner) (*models.ModuleField, error) {
	var (
		f                              models.ModuleField
		placeholder, helpText, section sql.NullString
		defaultValue, options, rules   []byte
	)
	if err := s.Scan(&f.ID, &f.ModuleID, &f.FieldKey, &f.Label, &f.FieldType,
		&placeholder, &helpText, &f.IsRequired, &f.IsUnique, &defaultValue,
		&options, &rules, &f.DisplayOrder, &section, &f.ColumnSpan, &f.IsSystem,
		timestamp{&f.CreatedAt}, timestamp{&f.UpdatedAt}); err != nil {
		return nil, err
	}
	f.Placeholder = stringPtr(placeholder)
	f.HelpText = stringPtr(helpText)
	f.SectionID = stringPtr(section)

	if len(options) > 0 {
		if err := json.Unmarshal(options, &f.Options); err != nil {
			return nil, fmt.Errorf("invalid options on field %s: %w", f.ID, err)
		}
	}
	if len(rules) > 0 {
		var c fieldtypes.Constraints
		if err := json.Unmarshal(rules, &c); err != nil {
			return nil, fmt.Errorf("invalid validation on field %s: %w", f.ID, err)
		}
		f.Validation = &c
	}
	if len(defaultValue) > 0 {
		var raw interface{}
		if err := json.Unmarshal(defaultValue, &raw); err != nil {
			return nil, fmt.Errorf("invalid default on field %s: %w", f.ID, err)
		}
		// Stored defaults are canonical; restore their Go type
		if v, err := fieldtypes.ValidateValue(f.FieldType, raw, f.Rules()); err == nil {
			raw = v
		}
		f.DefaultValue = raw
	}
	return &f, nil
}
