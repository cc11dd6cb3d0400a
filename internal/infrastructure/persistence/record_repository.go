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
	"github.com/wbaguley/GTM-Systems-AI-Planner-sub000/pkg/query"
)

var recordColumns = []string{
	constants.FieldID, constants.FieldModuleID, constants.FieldOwnerID, constants.FieldData,
	constants.FieldSourceKey, constants.FieldCreatedBy, constants.FieldUpdatedBy,
	constants.FieldCreatedAt, constants.FieldUpdatedAt,
}

// RecordRepository stores module records. The data column holds the record's
// JSON object as written; type normalisation happens in the service layer.
type RecordRepository struct {
	conn *database.Connection
}

// NewRecordRepository creates a new RecordRepository
func NewRecordRepository(conn *database.Connection) *RecordRepository {
	return &RecordRepository{conn: conn}
}

// GetExecutor returns the transaction if present, or the DB connection
func (r *RecordRepository) GetExecutor(tx *sql.Tx) Executor {
	return executorFor(r.conn.DB(), tx)
}

func recordRow(rec *models.ModuleRecord) (map[string]interface{}, error) {
	data := rec.Data
	if data == nil {
		data = models.RecordData{}
	}
	encoded, err := encodeJSON(data)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{
		constants.FieldID:        rec.ID,
		constants.FieldModuleID:  rec.ModuleID,
		constants.FieldOwnerID:   rec.OwnerID,
		constants.FieldData:      encoded,
		constants.FieldSourceKey: nullableString(rec.SourceKey),
		constants.FieldCreatedBy: rec.CreatedBy,
		constants.FieldUpdatedBy: rec.UpdatedBy,
		constants.FieldCreatedAt: rec.CreatedAt,
		constants.FieldUpdatedAt: rec.UpdatedAt,
	}, nil
}

// Insert executes an INSERT statement
func (r *RecordRepository) Insert(ctx context.Context, tx *sql.Tx, rec *models.ModuleRecord) error {
	row, err := recordRow(rec)
	if err != nil {
		return err
	}
	q := query.Insert(constants.TableModuleRecord, row).Build()
	if _, err := r.GetExecutor(tx).ExecContext(ctx, q.SQL, q.Params...); err != nil {
		return wrapDBError(fmt.Errorf("failed to insert record: %w", err))
	}
	return nil
}

// InsertIgnore inserts rec unless a record with the same source key exists in the module
func (r *RecordRepository) InsertIgnore(ctx context.Context, tx *sql.Tx, rec *models.ModuleRecord) (bool, error) {
	row, err := recordRow(rec)
	if err != nil {
		return false, err
	}
	q := query.Insert(constants.TableModuleRecord, row).Verb(r.conn.Dialect().InsertIgnoreVerb()).Build()
	res, err := r.GetExecutor(tx).ExecContext(ctx, q.SQL, q.Params...)
	if err != nil {
		return false, wrapDBError(fmt.Errorf("failed to insert record: %w", err))
	}
	return rowsAffected(res) > 0, nil
}

// FindByID returns the record or nil when it does not exist
func (r *RecordRepository) FindByID(ctx context.Context, tx *sql.Tx, id string) (*models.ModuleRecord, error) {
	q := query.From(constants.TableModuleRecord).Select(recordColumns).WhereEq(constants.FieldID, id).Limit(1).Build()
	rec, err := scanRecord(r.GetExecutor(tx).QueryRowContext(ctx, q.SQL, q.Params...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, wrapDBError(fmt.Errorf("failed to load record: %w", err))
	}
	return rec, nil
}

// ListByOwner returns the owner's records of a module, newest first
func (r *RecordRepository) ListByOwner(ctx context.Context, tx *sql.Tx, moduleID, ownerID string) ([]*models.ModuleRecord, error) {
	q := query.From(constants.TableModuleRecord).Select(recordColumns).
		WhereEq(constants.FieldModuleID, moduleID).
		WhereEq(constants.FieldOwnerID, ownerID).
		OrderBy(constants.FieldCreatedAt, KeywordDesc).
		OrderBy(constants.FieldID, KeywordAsc).
		Build()
	return r.list(ctx, tx, q)
}

// ListByModule returns every record of a module regardless of owner. Field
// maintenance (scrub, unique and in-use checks) works module-wide.
func (r *RecordRepository) ListByModule(ctx context.Context, tx *sql.Tx, moduleID string) ([]*models.ModuleRecord, error) {
	q := query.From(constants.TableModuleRecord).Select(recordColumns).
		WhereEq(constants.FieldModuleID, moduleID).
		OrderBy(constants.FieldCreatedAt, KeywordAsc).
		OrderBy(constants.FieldID, KeywordAsc).
		Build()
	return r.list(ctx, tx, q)
}

func (r *RecordRepository) list(ctx context.Context, tx *sql.Tx, q query.QueryResult) ([]*models.ModuleRecord, error) {
	rows, err := r.GetExecutor(tx).QueryContext(ctx, q.SQL, q.Params...)
	if err != nil {
		return nil, wrapDBError(fmt.Errorf("failed to list records: %w", err))
	}
	defer rows.Close()

	records := make([]*models.ModuleRecord, 0)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		records = append(records, rec)
	}
	return records, wrapDBError(rows.Err())
}

// UpdateData replaces a record's data and stamps the updater
func (r *RecordRepository) UpdateData(ctx context.Context, tx *sql.Tx, id string, data models.RecordData, updatedBy string) error {
	encoded, err := encodeJSON(data)
	if err != nil {
		return err
	}
	q := query.Update(constants.TableModuleRecord).Set(map[string]interface{}{
		constants.FieldData:      encoded,
		constants.FieldUpdatedBy: updatedBy,
		constants.FieldUpdatedAt: now(),
	}).WhereEq(constants.FieldID, id).Build()
	if _, err := r.GetExecutor(tx).ExecContext(ctx, q.SQL, q.Params...); err != nil {
		return wrapDBError(fmt.Errorf("failed to update record: %w", err))
	}
	return nil
}

// Delete executes a DELETE statement for one record
func (r *RecordRepository) Delete(ctx context.Context, tx *sql.Tx, id string) (int64, error) {
	q := query.Delete(constants.TableModuleRecord).WhereEq(constants.FieldID, id).Build()
	res, err := r.GetExecutor(tx).ExecContext(ctx, q.SQL, q.Params...)
	if err != nil {
		return 0, wrapDBError(fmt.Errorf("failed to delete record: %w", err))
	}
	return rowsAffected(res), nil
}

// DeleteByModule removes every record of a module
func (r *RecordRepository) DeleteByModule(ctx context.Context, tx *sql.Tx, moduleID string) (int64, error) {
	return deleteByModule(ctx, r.GetExecutor(tx), constants.TableModuleRecord, moduleID)
}

// CountByModule counts a module's records
func (r *RecordRepository) CountByModule(ctx context.Context, tx *sql.Tx, moduleID string) (int, error) {
	q := query.From(constants.TableModuleRecord).SelectRaw(FuncCount).WhereEq(constants.FieldModuleID, moduleID).Build()
	var n int
	if err := r.GetExecutor(tx).QueryRowContext(ctx, q.SQL, q.Params...).Scan(&n); err != nil {
		return 0, wrapDBError(fmt.Errorf("failed to count records: %w", err))
	}
	return n, nil
}

func scanRecord(s rowScanner) (*models.ModuleRecord, error) {
	var (
		rec       models.ModuleRecord
		data      []byte
		sourceKey sql.NullString
	)
	if err := s.Scan(&rec.ID, &rec.ModuleID, &rec.OwnerID, &data, &sourceKey,
		&rec.CreatedBy, &rec.UpdatedBy,
		timestamp{&rec.CreatedAt}, timestamp{&rec.UpdatedAt}); err != nil {
		return nil, err
	}
	rec.SourceKey = stringPtr(sourceKey)
	rec.Data = models.RecordData{}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &rec.Data); err != nil {
			return nil, fmt.Errorf("invalid data on record %s: %w", rec.ID, err)
		}
	}
	return &rec, nil
}
