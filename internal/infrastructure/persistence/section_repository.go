package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/wbaguley/GTM-Systems-AI-Planner-sub000/internal/domain/models"
	"github.com/wbaguley/GTM-Systems-AI-Planner-sub000/internal/infrastructure/database"
	"github.com/wbaguley/GTM-Systems-AI-Planner-sub000/pkg/constants"
	"github.com/wbaguley/GTM-Systems-AI-Planner-sub000/pkg/query"
)

var sectionColumns = []string{
	constants.FieldID, constants.FieldModuleID, constants.FieldTitle, constants.FieldDescription,
	constants.FieldDisplayOrder, constants.FieldIsCollapsible, constants.FieldIsCollapsedByDefault,
	constants.FieldCreatedAt, constants.FieldUpdatedAt,
}

// SectionRepository persists form sections
type SectionRepository struct {
	conn *database.Connection
}

func NewSectionRepository(conn *database.Connection) *SectionRepository {
	return &SectionRepository{conn: conn}
}

// GetExecutor returns the transaction if present, or the DB connection
func (r *SectionRepository) GetExecutor(tx *sql.Tx) Executor {
	return executorFor(r.conn.DB(), tx)
}

func (r *SectionRepository) Insert(ctx context.Context, tx *sql.Tx, s *models.ModuleSection) error {
	q := query.Insert(constants.TableModuleSection, map[string]interface{}{
		constants.FieldID:                   s.ID,
		constants.FieldModuleID:             s.ModuleID,
		constants.FieldTitle:                s.Title,
		constants.FieldDescription:          nullableString(s.Description),
		constants.FieldDisplayOrder:         s.DisplayOrder,
		constants.FieldIsCollapsible:        s.IsCollapsible,
		constants.FieldIsCollapsedByDefault: s.IsCollapsedByDefault,
		constants.FieldCreatedAt:            s.CreatedAt,
		constants.FieldUpdatedAt:            s.UpdatedAt,
	}).Build()
	if _, err := r.GetExecutor(tx).ExecContext(ctx, q.SQL, q.Params...); err != nil {
		return wrapDBError(fmt.Errorf("failed to insert section: %w", err))
	}
	return nil
}

// FindByID returns the section or nil when it does not exist
func (r *SectionRepository) FindByID(ctx context.Context, tx *sql.Tx, id string) (*models.ModuleSection, error) {
	q := query.From(constants.TableModuleSection).Select(sectionColumns).WhereEq(constants.FieldID, id).Limit(1).Build()
	s, err := scanSection(r.GetExecutor(tx).QueryRowContext(ctx, q.SQL, q.Params...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, wrapDBError(fmt.Errorf("failed to load section: %w", err))
	}
	return s, nil
}

// ListByModule returns the module's sections by display order
func (r *SectionRepository) ListByModule(ctx context.Context, moduleID string) ([]*models.ModuleSection, error) {
	q := query.From(constants.TableModuleSection).Select(sectionColumns).
		WhereEq(constants.FieldModuleID, moduleID).
		OrderBy(constants.FieldDisplayOrder, KeywordAsc).
		OrderBy(constants.FieldCreatedAt, KeywordAsc).
		Build()

	rows, err := r.conn.DB().QueryContext(ctx, q.SQL, q.Params...)
	if err != nil {
		return nil, wrapDBError(fmt.Errorf("failed to list sections: %w", err))
	}
	defer rows.Close()

	sections := make([]*models.ModuleSection, 0)
	for rows.Next() {
		s, err := scanSection(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan section: %w", err)
		}
		sections = append(sections, s)
	}
	return sections, wrapDBError(rows.Err())
}

func (r *SectionRepository) NextDisplayOrder(ctx context.Context, tx *sql.Tx, moduleID string) (int, error) {
	return nextDisplayOrder(ctx, r.GetExecutor(tx), constants.TableModuleSection, moduleID)
}

// Update writes the given columns and refreshes updated_at
func (r *SectionRepository) Update(ctx context.Context, tx *sql.Tx, id string, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}
	updates[constants.FieldUpdatedAt] = now()
	q := query.Update(constants.TableModuleSection).Set(updates).WhereEq(constants.FieldID, id).Build()
	if _, err := r.GetExecutor(tx).ExecContext(ctx, q.SQL, q.Params...); err != nil {
		return wrapDBError(fmt.Errorf("failed to update section: %w", err))
	}
	return nil
}

func (r *SectionRepository) Delete(ctx context.Context, tx *sql.Tx, id string) (int64, error) {
	q := query.Delete(constants.TableModuleSection).WhereEq(constants.FieldID, id).Build()
	res, err := r.GetExecutor(tx).ExecContext(ctx, q.SQL, q.Params...)
	if err != nil {
		return 0, wrapDBError(fmt.Errorf("failed to delete section: %w", err))
	}
	return rowsAffected(res), nil
}

// DeleteByModule removes every section of a module
func (r *SectionRepository) DeleteByModule(ctx context.Context, tx *sql.Tx, moduleID string) (int64, error) {
	return deleteByModule(ctx, r.GetExecutor(tx), constants.TableModuleSection, moduleID)
}

func scanSection(s rowScanner) (*models.ModuleSection, error) {
	var (
		sec         models.ModuleSection
		description sql.NullString
	)
	if err := s.Scan(&sec.ID, &sec.ModuleID, &sec.Title, &description, &sec.DisplayOrder,
		&sec.IsCollapsible, &sec.IsCollapsedByDefault,
		timestamp{&sec.CreatedAt}, timestamp{&sec.UpdatedAt}); err != nil {
		return nil, err
	}
	sec.Description = stringPtr(description)
	return &sec, nil
}
