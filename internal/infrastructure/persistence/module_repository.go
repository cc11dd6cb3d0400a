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
	"github.com/wbaguley/GTM-Systems-AI-Planner-sub000/pkg/query"
)

var moduleColumns = []string{
	constants.FieldID, constants.FieldOwnerID, constants.FieldName,
	constants.FieldSingularName, constants.FieldPluralName, constants.FieldIcon,
	constants.FieldDescription, constants.FieldIsSystem, constants.FieldStatsPolicy,
	constants.FieldCreatedAt, constants.FieldUpdatedAt,
}

// ModuleRepository persists module definitions
type ModuleRepository struct {
	conn *database.Connection
}

func NewModuleRepository(conn *database.Connection) *ModuleRepository {
	return &ModuleRepository{conn: conn}
}

// GetExecutor returns the transaction if present, or the DB connection
func (r *ModuleRepository) GetExecutor(tx *sql.Tx) Executor {
	return executorFor(r.conn.DB(), tx)
}

// ModuleColumnValues encodes the mutable attributes of a module as column values
func ModuleColumnValues(m *models.Module) (map[string]interface{}, error) {
	var policy interface{}
	if !m.StatsPolicy.IsZero() {
		encoded, err := encodeJSON(m.StatsPolicy)
		if err != nil {
			return nil, err
		}
		policy = encoded
	}
	return map[string]interface{}{
		constants.FieldName:         m.Name,
		constants.FieldSingularName: m.SingularName,
		constants.FieldPluralName:   m.PluralName,
		constants.FieldIcon:         nullableString(m.Icon),
		constants.FieldDescription:  nullableString(m.Description),
		constants.FieldStatsPolicy:  policy,
	}, nil
}

func moduleRow(m *models.Module) (map[string]interface{}, error) {
	row, err := ModuleColumnValues(m)
	if err != nil {
		return nil, err
	}
	row[constants.FieldID] = m.ID
	row[constants.FieldOwnerID] = m.OwnerID
	row[constants.FieldIsSystem] = m.IsSystem
	row[constants.FieldCreatedAt] = m.CreatedAt
	row[constants.FieldUpdatedAt] = m.UpdatedAt
	return row, nil
}

// Insert stores a new module. A duplicate name for the owner is a ConflictError.
func (r *ModuleRepository) Insert(ctx context.Context, tx *sql.Tx, m *models.Module) error {
	row, err := moduleRow(m)
	if err != nil {
		return err
	}
	q := query.Insert(constants.TableModule, row).Build()
	if _, err := r.GetExecutor(tx).ExecContext(ctx, q.SQL, q.Params...); err != nil {
		if r.conn.Dialect().IsUniqueViolation(err) {
			return apperrors.NewConflictError("Module", "name", m.Name)
		}
		return wrapDBError(fmt.Errorf("failed to insert module: %w", err))
	}
	return nil
}

// InsertIgnore stores m unless a module with the same owner and name exists.
// It reports whether a row was written.
func (r *ModuleRepository) InsertIgnore(ctx context.Context, tx *sql.Tx, m *models.Module) (bool, error) {
	row, err := moduleRow(m)
	if err != nil {
		return false, err
	}
	q := query.Insert(constants.TableModule, row).Verb(r.conn.Dialect().InsertIgnoreVerb()).Build()
	res, err := r.GetExecutor(tx).ExecContext(ctx, q.SQL, q.Params...)
	if err != nil {
		return false, wrapDBError(fmt.Errorf("failed to insert module: %w", err))
	}
	return rowsAffected(res) > 0, nil
}

// FindByID returns the module or nil when it does not exist
func (r *ModuleRepository) FindByID(ctx context.Context, tx *sql.Tx, id string) (*models.Module, error) {
	q := query.From(constants.TableModule).Select(moduleColumns).WhereEq(constants.FieldID, id).Limit(1).Build()
	return r.findOne(ctx, tx, q)
}

// FindByOwnerAndName returns the owner's module with the given name, or nil
func (r *ModuleRepository) FindByOwnerAndName(ctx context.Context, tx *sql.Tx, ownerID, name string) (*models.Module, error) {
	q := query.From(constants.TableModule).Select(moduleColumns).
		WhereEq(constants.FieldOwnerID, ownerID).
		WhereEq(constants.FieldName, name).
		Limit(1).Build()
	return r.findOne(ctx, tx, q)
}

func (r *ModuleRepository) findOne(ctx context.Context, tx *sql.Tx, q query.QueryResult) (*models.Module, error) {
	m, err := scanModule(r.GetExecutor(tx).QueryRowContext(ctx, q.SQL, q.Params...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, wrapDBError(fmt.Errorf("failed to load module: %w", err))
	}
	return m, nil
}

// ListByOwner returns the owner's modules ordered by name
func (r *ModuleRepository) ListByOwner(ctx context.Context, ownerID string) ([]*models.Module, error) {
	q := query.From(constants.TableModule).Select(moduleColumns).
		WhereEq(constants.FieldOwnerID, ownerID).
		OrderBy(constants.FieldName, KeywordAsc).
		Build()

	rows, err := r.conn.DB().QueryContext(ctx, q.SQL, q.Params...)
	if err != nil {
		return nil, wrapDBError(fmt.Errorf("failed to list modules: %w", err))
	}
	defer rows.Close()

	modules := make([]*models.Module, 0)
	for rows.Next() {
		m, err := scanModule(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan module: %w", err)
		}
		modules = append(modules, m)
	}
	return modules, wrapDBError(rows.Err())
}

// Update writes the given columns and refreshes updated_at
func (r *ModuleRepository) Update(ctx context.Context, tx *sql.Tx, id string, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}
	updates[constants.FieldUpdatedAt] = now()
	q := query.Update(constants.TableModule).Set(updates).WhereEq(constants.FieldID, id).Build()
	if _, err := r.GetExecutor(tx).ExecContext(ctx, q.SQL, q.Params...); err != nil {
		if name, ok := updates[constants.FieldName].(string); ok && r.conn.Dialect().IsUniqueViolation(err) {
			return apperrors.NewConflictError("Module", "name", name)
		}
		return wrapDBError(fmt.Errorf("failed to update module: %w", err))
	}
	return nil
}

// Delete removes a module row and reports the affected count
func (r *ModuleRepository) Delete(ctx context.Context, tx *sql.Tx, id string) (int64, error) {
	q := query.Delete(constants.TableModule).WhereEq(constants.FieldID, id).Build()
	res, err := r.GetExecutor(tx).ExecContext(ctx, q.SQL, q.Params...)
	if err != nil {
		return 0, wrapDBError(fmt.Errorf("failed to delete module: %w", err))
	}
	return rowsAffected(res), nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanModule(s rowScanner) (*models.Module, error) {
	var (
		m                 models.Module
		icon, description sql.NullString
		policy            []byte
	)
	if err := s.Scan(&m.ID, &m.OwnerID, &m.Name, &m.SingularName, &m.PluralName,
		&icon, &description, &m.IsSystem, &policy,
		timestamp{&m.CreatedAt}, timestamp{&m.UpdatedAt}); err != nil {
		return nil, err
	}
	m.Icon = stringPtr(icon)
	m.Description = stringPtr(description)
	if len(policy) > 0 {
		var p models.StatsPolicy
		if err := json.Unmarshal(policy, &p); err != nil {
			return nil, fmt.Errorf("invalid stats policy on module %s: %w", m.ID, err)
		}
		m.StatsPolicy = &p
	}
	return &m, nil
}
