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

var platformColumns = []string{
	constants.FieldID, constants.FieldUserID, constants.FieldName,
	constants.PlatformVendor, constants.PlatformCategory, constants.PlatformWebsite,
	constants.FieldDescription, constants.PlatformStatus, constants.PlatformBillingCycle,
	constants.PlatformMonthly, constants.PlatformYearly, constants.PlatformRenewalDate,
	constants.PlatformStartDate, constants.PlatformAccountOwner, constants.PlatformDepartment,
	constants.PlatformSeats, constants.PlatformLoginURL, constants.PlatformSupportEmail,
	constants.PlatformAutoRenew, constants.PlatformIsCritical, constants.PlatformNotes,
	constants.FieldCreatedAt, constants.FieldUpdatedAt,
}

// PlatformRepository reads the legacy fixed platforms table
type PlatformRepository struct {
	conn *database.Connection
}

func NewPlatformRepository(conn *database.Connection) *PlatformRepository {
	return &PlatformRepository{conn: conn}
}

// GetExecutor returns the transaction if present, or the DB connection
func (r *PlatformRepository) GetExecutor(tx *sql.Tx) Executor {
	return executorFor(r.conn.DB(), tx)
}

// Insert writes a legacy platform row. Only fixtures and imports use it; the
// module system never writes this table.
func (r *PlatformRepository) Insert(ctx context.Context, tx *sql.Tx, p *models.Platform) error {
	var seats interface{}
	if p.Seats != nil {
		seats = *p.Seats
	}
	q := query.Insert(constants.TablePlatform, map[string]interface{}{
		constants.FieldID:              p.ID,
		constants.FieldUserID:          p.UserID,
		constants.FieldName:            p.Name,
		constants.PlatformVendor:       nullableString(p.Vendor),
		constants.PlatformCategory:     nullableString(p.Category),
		constants.PlatformWebsite:      nullableString(p.Website),
		constants.FieldDescription:     nullableString(p.Description),
		constants.PlatformStatus:       nullableString(p.Status),
		constants.PlatformBillingCycle: nullableString(p.BillingCycle),
		constants.PlatformMonthly:      p.MonthlyAmount,
		constants.PlatformYearly:       p.YearlyAmount,
		constants.PlatformRenewalDate:  nullableString(p.RenewalDate),
		constants.PlatformStartDate:    nullableString(p.StartDate),
		constants.PlatformAccountOwner: nullableString(p.AccountOwner),
		constants.PlatformDepartment:   nullableString(p.Department),
		constants.PlatformSeats:        seats,
		constants.PlatformLoginURL:     nullableString(p.LoginURL),
		constants.PlatformSupportEmail: nullableString(p.SupportEmail),
		constants.PlatformAutoRenew:    p.AutoRenew,
		constants.PlatformIsCritical:   p.IsCritical,
		constants.PlatformNotes:        nullableString(p.Notes),
		constants.FieldCreatedAt:       p.CreatedAt,
		constants.FieldUpdatedAt:       p.UpdatedAt,
	}).Build()
	if _, err := r.GetExecutor(tx).ExecContext(ctx, q.SQL, q.Params...); err != nil {
		return wrapDBError(fmt.Errorf("failed to insert platform: %w", err))
	}
	return nil
}

// FindByID returns the platform or nil when it does not exist
func (r *PlatformRepository) FindByID(ctx context.Context, tx *sql.Tx, id string) (*models.Platform, error) {
	q := query.From(constants.TablePlatform).Select(platformColumns).WhereEq(constants.FieldID, id).Limit(1).Build()
	p, err := scanPlatform(r.GetExecutor(tx).QueryRowContext(ctx, q.SQL, q.Params...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, wrapDBError(fmt.Errorf("failed to load platform: %w", err))
	}
	return p, nil
}

// ListByUser returns a user's platforms in creation order
func (r *PlatformRepository) ListByUser(ctx context.Context, tx *sql.Tx, userID string) ([]*models.Platform, error) {
	q := query.From(constants.TablePlatform).Select(platformColumns).
		WhereEq(constants.FieldUserID, userID).
		OrderBy(constants.FieldCreatedAt, KeywordAsc).
		OrderBy(constants.FieldID, KeywordAsc).
		Build()

	rows, err := r.GetExecutor(tx).QueryContext(ctx, q.SQL, q.Params...)
	if err != nil {
		return nil, wrapDBError(fmt.Errorf("failed to list platforms: %w", err))
	}
	defer rows.Close()

	platforms := make([]*models.Platform, 0)
	for rows.Next() {
		p, err := scanPlatform(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan platform: %w", err)
		}
		platforms = append(platforms, p)
	}
	return platforms, wrapDBError(rows.Err())
}

func scanPlatform(s rowScanner) (*models.Platform, error) {
	var (
		p                                                      models.Platform
		vendor, category, website, description, status, cycle  sql.NullString
		renewal, start, accountOwner, department, login, email sql.NullString
		notes                                                  sql.NullString
		seats                                                  sql.NullInt64
	)
	if err := s.Scan(&p.ID, &p.UserID, &p.Name, &vendor, &category, &website, &description,
		&status, &cycle, &p.MonthlyAmount, &p.YearlyAmount, &renewal, &start, &accountOwner,
		&department, &seats, &login, &email, &p.AutoRenew, &p.IsCritical, &notes,
		timestamp{&p.CreatedAt}, timestamp{&p.UpdatedAt}); err != nil {
		return nil, err
	}
	p.Vendor = stringPtr(vendor)
	p.Category = stringPtr(category)
	p.Website = stringPtr(website)
	p.Description = stringPtr(description)
	p.Status = stringPtr(status)
	p.BillingCycle = stringPtr(cycle)
	p.RenewalDate = stringPtr(renewal)
	p.StartDate = stringPtr(start)
	p.AccountOwner = stringPtr(accountOwner)
	p.Department = stringPtr(department)
	p.LoginURL = stringPtr(login)
	p.SupportEmail = stringPtr(email)
	p.Notes = stringPtr(notes)
	if seats.Valid {
		n := seats.Int64
		p.Seats = &n
	}
	return &p, nil
}
