package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/wbaguley/GTM-Systems-AI-Planner-sub000/internal/domain/models"
	"github.com/wbaguley/GTM-Systems-AI-Planner-sub000/internal/infrastructure/database"
	"github.com/wbaguley/GTM-Systems-AI-Planner-sub000/pkg/constants"
	apperrors "github.com/wbaguley/GTM-Systems-AI-Planner-sub000/pkg/errors"
	"github.com/wbaguley/GTM-Systems-AI-Planner-sub000/pkg/query"
)

var customFieldColumns = []string{
	constants.FieldID, constants.FieldUserID, constants.FieldFieldKey, constants.FieldLabel,
	constants.FieldFieldType, constants.FieldPlaceholder, constants.FieldRequired,
	constants.FieldOptions, constants.FieldDisplayOrder,
}

var customValueColumns = []string{
	constants.FieldID, constants.FieldPlatformID, constants.FieldFieldKey, constants.FieldValue,
}

// CustomFieldRepository persists the legacy per-user platform field overlay
type CustomFieldRepository struct {
	conn *database.Connection
}

func NewCustomFieldRepository(conn *database.Connection) *CustomFieldRepository {
	return &CustomFieldRepository{conn: conn}
}

// GetExecutor returns the transaction if present, or the DB connection
func (r *CustomFieldRepository) GetExecutor(tx *sql.Tx) Executor {
	return executorFor(r.conn.DB(), tx)
}

func (r *CustomFieldRepository) Insert(ctx context.Context, tx *sql.Tx, f *models.CustomField) error {
	q := query.Insert(constants.TableCustomField, map[string]interface{}{
		constants.FieldID:           f.ID,
		constants.FieldUserID:       f.UserID,
		constants.FieldFieldKey:     f.FieldKey,
		constants.FieldLabel:        f.Label,
		constants.FieldFieldType:    f.FieldType,
		constants.FieldPlaceholder:  nullableString(f.Placeholder),
		constants.FieldRequired:     f.Required,
		constants.FieldOptions:      nullableString(f.Options),
		constants.FieldDisplayOrder: f.DisplayOrder,
	}).Build()
	if _, err := r.GetExecutor(tx).ExecContext(ctx, q.SQL, q.Params...); err != nil {
		if r.conn.Dialect().IsUniqueViolation(err) {
			return apperrors.NewConflictError("CustomField", "fieldKey", f.FieldKey)
		}
		return wrapDBError(fmt.Errorf("failed to insert custom field: %w", err))
	}
	return nil
}

// FindByID returns the custom field or nil when it does not exist
func (r *CustomFieldRepository) FindByID(ctx context.Context, tx *sql.Tx, id string) (*models.CustomField, error) {
	q := query.From(constants.TableCustomField).Select(customFieldColumns).WhereEq(constants.FieldID, id).Limit(1).Build()
	f, err := scanCustomField(r.GetExecutor(tx).QueryRowContext(ctx, q.SQL, q.Params...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, wrapDBError(fmt.Errorf("failed to load custom field: %w", err))
	}
	return f, nil
}

// ListByUser returns a user's custom fields by display order
func (r *CustomFieldRepository) ListByUser(ctx context.Context, tx *sql.Tx, userID string) ([]*models.CustomField, error) {
	q := query.From(constants.TableCustomField).Select(customFieldColumns).
		WhereEq(constants.FieldUserID, userID).
		OrderBy(constants.FieldDisplayOrder, KeywordAsc).
		OrderBy(constants.FieldFieldKey, KeywordAsc).
		Build()

	rows, err := r.GetExecutor(tx).QueryContext(ctx, q.SQL, q.Params...)
	if err != nil {
		return nil, wrapDBError(fmt.Errorf("failed to list custom fields: %w", err))
	}
	defer rows.Close()

	fields := make([]*models.CustomField, 0)
	for rows.Next() {
		f, err := scanCustomField(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan custom field: %w", err)
		}
		fields = append(fields, f)
	}
	return fields, wrapDBError(rows.Err())
}

// NextDisplayOrder returns max(display_order)+1 over the user's custom fields
func (r *CustomFieldRepository) NextDisplayOrder(ctx context.Context, tx *sql.Tx, userID string) (int, error) {
	q := query.From(constants.TableCustomField).
		SelectRaw(fmt.Sprintf("MAX(`%s`)", constants.FieldDisplayOrder)).
		WhereEq(constants.FieldUserID, userID).
		Build()
	var max sql.NullInt64
	if err := r.GetExecutor(tx).QueryRowContext(ctx, q.SQL, q.Params...).Scan(&max); err != nil {
		return 0, wrapDBError(fmt.Errorf("failed to read display order: %w", err))
	}
	if !max.Valid {
		return 0, nil
	}
	return int(max.Int64) + 1, nil
}

func (r *CustomFieldRepository) Update(ctx context.Context, tx *sql.Tx, id string, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}
	q := query.Update(constants.TableCustomField).Set(updates).WhereEq(constants.FieldID, id).Build()
	if _, err := r.GetExecutor(tx).ExecContext(ctx, q.SQL, q.Params...); err != nil {
		return wrapDBError(fmt.Errorf("failed to update custom field: %w", err))
	}
	return nil
}

func (r *CustomFieldRepository) Delete(ctx context.Context, tx *sql.Tx, id string) (int64, error) {
	q := query.Delete(constants.TableCustomField).WhereEq(constants.FieldID, id).Build()
	res, err := r.GetExecutor(tx).ExecContext(ctx, q.SQL, q.Params...)
	if err != nil {
		return 0, wrapDBError(fmt.Errorf("failed to delete custom field: %w", err))
	}
	return rowsAffected(res), nil
}

// ListValues returns the stored values of one platform
func (r *CustomFieldRepository) ListValues(ctx context.Context, tx *sql.Tx, platformID string) ([]*models.CustomFieldValue, error) {
	q := query.From(constants.TableCustomFieldValue).Select(customValueColumns).
		WhereEq(constants.FieldPlatformID, platformID).
		OrderBy(constants.FieldFieldKey, KeywordAsc).
		Build()

	rows, err := r.GetExecutor(tx).QueryContext(ctx, q.SQL, q.Params...)
	if err != nil {
		return nil, wrapDBError(fmt.Errorf("failed to list custom values: %w", err))
	}
	defer rows.Close()

	values := make([]*models.CustomFieldValue, 0)
	for rows.Next() {
		var (
			v   models.CustomFieldValue
			raw sql.NullString
		)
		if err := rows.Scan(&v.ID, &v.PlatformID, &v.FieldKey, &raw); err != nil {
			return nil, fmt.Errorf("failed to scan custom value: %w", err)
		}
		v.Value = stringPtr(raw)
		values = append(values, &v)
	}
	return values, wrapDBError(rows.Err())
}

// PutValue replaces the value of one key on one platform
func (r *CustomFieldRepository) PutValue(ctx context.Context, tx *sql.Tx, v *models.CustomFieldValue) error {
	if err := r.DeleteValue(ctx, tx, v.PlatformID, v.FieldKey); err != nil {
		return err
	}
	var value interface{}
	if v.Value != nil {
		value = *v.Value
	}
	q := query.Insert(constants.TableCustomFieldValue, map[string]interface{}{
		constants.FieldID:         v.ID,
		constants.FieldPlatformID: v.PlatformID,
		constants.FieldFieldKey:   v.FieldKey,
		constants.FieldValue:      value,
	}).Build()
	if _, err := r.GetExecutor(tx).ExecContext(ctx, q.SQL, q.Params...); err != nil {
		return wrapDBError(fmt.Errorf("failed to store custom value: %w", err))
	}
	return nil
}

// DeleteValue removes the value of one key on one platform
func (r *CustomFieldRepository) DeleteValue(ctx context.Context, tx *sql.Tx, platformID, fieldKey string) error {
	q := query.Delete(constants.TableCustomFieldValue).
		WhereEq(constants.FieldPlatformID, platformID).
		WhereEq(constants.FieldFieldKey, fieldKey).
		Build()
	if _, err := r.GetExecutor(tx).ExecContext(ctx, q.SQL, q.Params...); err != nil {
		return wrapDBError(fmt.Errorf("failed to delete custom value: %w", err))
	}
	return nil
}

// DeleteValuesForKey scrubs a key from every platform owned by userID
func (r *CustomFieldRepository) DeleteValuesForKey(ctx context.Context, tx *sql.Tx, userID, fieldKey string) (int64, error) {
	q := query.Delete(constants.TableCustomFieldValue).
		WhereEq(constants.FieldFieldKey, fieldKey).
		Where(fmt.Sprintf("`%s` IN (SELECT `%s` FROM `%s` WHERE `%s` = ?)",
			constants.FieldPlatformID, constants.FieldID, constants.TablePlatform, constants.FieldUserID), userID).
		Build()
	res, err := r.GetExecutor(tx).ExecContext(ctx, q.SQL, q.Params...)
	if err != nil {
		return 0, wrapDBError(fmt.Errorf("failed to scrub custom values: %w", err))
	}
	return rowsAffected(res), nil
}

func scanCustomField(s rowScanner) (*models.CustomField, error) {
	var (
		f                    models.CustomField
		placeholder, options sql.NullString
	)
	if err := s.Scan(&f.ID, &f.UserID, &f.FieldKey, &f.Label, &f.FieldType,
		&placeholder, &f.Required, &options, &f.DisplayOrder); err != nil {
		return nil, err
	}
	f.Placeholder = stringPtr(placeholder)
	f.Options = stringPtr(options)
	return &f, nil
}
