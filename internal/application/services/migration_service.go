package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/wbaguley/GTM-Systems-AI-Planner-sub000/internal/domain/events"
	"github.com/wbaguley/GTM-Systems-AI-Planner-sub000/internal/domain/models"
	"github.com/wbaguley/GTM-Systems-AI-Planner-sub000/internal/infrastructure/persistence"
	apperrors "github.com/wbaguley/GTM-Systems-AI-Planner-sub000/pkg/errors"
	"github.com/wbaguley/GTM-Systems-AI-Planner-sub000/pkg/fieldtypes"
	"github.com/wbaguley/GTM-Systems-AI-Planner-sub000/pkg/logging"
	"github.com/wbaguley/GTM-Systems-AI-Planner-sub000/pkg/utils"
)

// Identity of the system module created by the platforms migration
const (
	PlatformsModuleName     = "Platforms"
	platformsSingularName   = "Platform"
	platformsIcon           = "layers"
	platformsDescription    = "Software platforms and subscriptions"
	platformSourceKeyPrefix = "platform:"
)

type systemField struct {
	key, label, fieldType string
	required              bool
}

// platformFields are the canonical fields of the Platforms module, in display order.
// status and billingCycle stay free text so legacy values outside any fixed
// option list still migrate.
var platformFields = []systemField{
	{"name", "Name", fieldtypes.Text, true},
	{"vendor", "Vendor", fieldtypes.Text, false},
	{"category", "Category", fieldtypes.Text, false},
	{"website", "Website", fieldtypes.URL, false},
	{"description", "Description", fieldtypes.LongText, false},
	{"status", "Status", fieldtypes.Text, false},
	{"billingCycle", "Billing Cycle", fieldtypes.Text, false},
	{"monthlyAmount", "Monthly Amount", fieldtypes.Currency, false},
	{"yearlyAmount", "Yearly Amount", fieldtypes.Currency, false},
	{"renewalDate", "Renewal Date", fieldtypes.Date, false},
	{"startDate", "Start Date", fieldtypes.Date, false},
	{"accountOwner", "Account Owner", fieldtypes.Text, false},
	{"department", "Department", fieldtypes.Text, false},
	{"seats", "Seats", fieldtypes.Number, false},
	{"loginUrl", "Login URL", fieldtypes.URL, false},
	{"supportEmail", "Support Email", fieldtypes.Email, false},
	{"autoRenew", "Auto Renew", fieldtypes.Checkbox, false},
	{"isCritical", "Critical", fieldtypes.Checkbox, false},
	{"notes", "Notes", fieldtypes.LongText, false},
}

// PlatformFieldKeys returns the canonical field keys of the Platforms module
func PlatformFieldKeys() []string {
	keys := make([]string, len(platformFields))
	for i, f := range platformFields {
		keys[i] = f.key
	}
	return keys
}

// MigrationService backfills the generic module system from the legacy
// platforms table
type MigrationService struct {
	tx           *persistence.TransactionManager
	modules      *persistence.ModuleRepository
	fields       *persistence.FieldRepository
	records      *persistence.RecordRepository
	platforms    *persistence.PlatformRepository
	customFields *persistence.CustomFieldRepository
	events       *EventBus
	log          *logrus.Entry
}

func NewMigrationService(
	tx *persistence.TransactionManager,
	modules *persistence.ModuleRepository,
	fields *persistence.FieldRepository,
	records *persistence.RecordRepository,
	platforms *persistence.PlatformRepository,
	customFields *persistence.CustomFieldRepository,
	bus *EventBus,
) *MigrationService {
	return &MigrationService{
		tx:           tx,
		modules:      modules,
		fields:       fields,
		records:      records,
		platforms:    platforms,
		customFields: customFields,
		events:       bus,
		log:          logging.Component("migration_service"),
	}
}

// MigratePlatforms copies the owner's legacy platforms into the system
// Platforms module in one transaction. It is idempotent: the module, its
// fields and each record are inserted only when missing.
func (s *MigrationService) MigratePlatforms(ctx context.Context, ownerID string, opts models.MigrationOptions) (*models.MigrationResult, error) {
	var result *models.MigrationResult
	err := s.tx.WithRetry(ctx, func(tx *sql.Tx) error {
		res, err := s.migrate(ctx, tx, ownerID, opts)
		if err != nil {
			return err
		}
		result = res
		return nil
	}, persistence.DefaultTxRetries)
	if err != nil {
		s.log.WithError(err).WithField("owner_id", ownerID).Error("❌ Platforms migration failed")
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"owner_id":        ownerID,
		"module_id":       result.ModuleID,
		"module_created":  result.ModuleCreated,
		"fields_created":  result.FieldsCreated,
		"custom_folded":   result.CustomFieldsFolded,
		"records_created": result.RecordsCreated,
		"records_skipped": result.RecordsSkipped,
	}).Info("✅ Platforms migrated")
	s.events.notify(ctx, events.PlatformsMigrated, SchemaEventPayload{
		ModuleID: result.ModuleID,
		OwnerID:  ownerID,
		Affected: int64(result.RecordsCreated),
	})
	return result, nil
}

func (s *MigrationService) migrate(ctx context.Context, tx *sql.Tx, ownerID string, opts models.MigrationOptions) (*models.MigrationResult, error) {
	result := &models.MigrationResult{}

	module, created, err := s.ensureModule(ctx, tx, ownerID)
	if err != nil {
		return nil, err
	}
	result.ModuleID = module.ID
	result.ModuleCreated = created

	if result.FieldsCreated, err = s.ensureSystemFields(ctx, tx, module.ID); err != nil {
		return nil, err
	}

	var folded map[string]bool
	if opts.IncludeCustomFields {
		var n int
		if folded, n, err = s.foldCustomFields(ctx, tx, ownerID, module.ID); err != nil {
			return nil, err
		}
		result.CustomFieldsFolded = n
		result.FieldsCreated += n
	}

	fields, err := s.fields.ListByModule(ctx, tx, module.ID)
	if err != nil {
		return nil, err
	}
	platforms, err := s.platforms.ListByUser(ctx, tx, ownerID)
	if err != nil {
		return nil, err
	}

	for _, p := range platforms {
		data := legacyRecordData(p)
		if len(folded) > 0 {
			if err := s.mergeCustomValues(ctx, tx, p.ID, folded, data); err != nil {
				return nil, err
			}
		}
		prepared, _, err := prepareData(fields, data, false)
		if err != nil {
			return nil, namePlatformRow(p.ID, err)
		}

		sourceKey := platformSourceKeyPrefix + p.ID
		rec := &models.ModuleRecord{
			ID:        utils.GenerateID(),
			ModuleID:  module.ID,
			OwnerID:   ownerID,
			Data:      prepared,
			SourceKey: &sourceKey,
			CreatedBy: ownerID,
			UpdatedBy: ownerID,
			CreatedAt: p.CreatedAt,
			UpdatedAt: p.UpdatedAt,
		}
		inserted, err := s.records.InsertIgnore(ctx, tx, rec)
		if err != nil {
			return nil, fmt.Errorf("failed to copy platform %s: %w", p.ID, err)
		}
		if inserted {
			result.RecordsCreated++
		} else {
			result.RecordsSkipped++
		}
	}
	return result, nil
}

func (s *MigrationService) ensureModule(ctx context.Context, tx *sql.Tx, ownerID string) (*models.Module, bool, error) {
	icon, description := platformsIcon, platformsDescription
	now := nowUTC()
	candidate := &models.Module{
		ID:           utils.GenerateID(),
		OwnerID:      ownerID,
		Name:         PlatformsModuleName,
		SingularName: platformsSingularName,
		PluralName:   PlatformsModuleName,
		Icon:         &icon,
		Description:  &description,
		IsSystem:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	created, err := s.modules.InsertIgnore(ctx, tx, candidate)
	if err != nil {
		return nil, false, err
	}
	module, err := s.modules.FindByOwnerAndName(ctx, tx, ownerID, PlatformsModuleName)
	if err != nil {
		return nil, false, err
	}
	if module == nil {
		return nil, false, apperrors.NewInternalError("platforms module missing after insert", nil)
	}
	// A user module already holds the name; system fields must not land on it
	if !module.IsSystem {
		return nil, false, apperrors.NewConflictError("Module", "name", PlatformsModuleName)
	}
	return module, created, nil
}

func (s *MigrationService) ensureSystemFields(ctx context.Context, tx *sql.Tx, moduleID string) (int, error) {
	created := 0
	for i, def := range platformFields {
		now := nowUTC()
		f := &models.ModuleField{
			ID:           utils.GenerateID(),
			ModuleID:     moduleID,
			FieldKey:     def.key,
			Label:        def.label,
			FieldType:    def.fieldType,
			IsRequired:   def.required,
			DisplayOrder: i,
			ColumnSpan:   models.MinColumnSpan,
			IsSystem:     true,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		inserted, err := s.fields.InsertIgnore(ctx, tx, f)
		if err != nil {
			return 0, fmt.Errorf("failed to ensure field %s: %w", def.key, err)
		}
		if inserted {
			created++
		}
	}
	return created, nil
}

// foldCustomFields turns the owner's legacy custom fields into non-system
// module fields and returns the set of folded keys. Keys that collide with a
// canonical field are skipped.
func (s *MigrationService) foldCustomFields(ctx context.Context, tx *sql.Tx, ownerID, moduleID string) (map[string]bool, int, error) {
	canonical := make(map[string]bool, len(platformFields))
	for _, f := range platformFields {
		canonical[f.key] = true
	}

	legacy, err := s.customFields.ListByUser(ctx, tx, ownerID)
	if err != nil {
		return nil, 0, err
	}
	folded := make(map[string]bool, len(legacy))
	created := 0
	for _, cf := range legacy {
		if canonical[cf.FieldKey] {
			s.log.WithField("field_key", cf.FieldKey).Warn("⚠️  Custom field shadows a platform field, skipped")
			continue
		}
		fieldType, options := foldedType(cf)
		order, err := s.fields.NextDisplayOrder(ctx, tx, moduleID)
		if err != nil {
			return nil, 0, err
		}
		now := nowUTC()
		f := &models.ModuleField{
			ID:           utils.GenerateID(),
			ModuleID:     moduleID,
			FieldKey:     cf.FieldKey,
			Label:        cf.Label,
			FieldType:    fieldType,
			Placeholder:  cf.Placeholder,
			Options:      options,
			DisplayOrder: order,
			ColumnSpan:   models.MinColumnSpan,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		inserted, err := s.fields.InsertIgnore(ctx, tx, f)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to fold custom field %s: %w", cf.FieldKey, err)
		}
		if inserted {
			created++
		}
		folded[cf.FieldKey] = true
	}
	return folded, created, nil
}

// foldedType maps a legacy custom field onto a registry type. Unknown types
// and option lists the registry rejects degrade to text.
func foldedType(cf *models.CustomField) (string, []string) {
	if !fieldtypes.IsValidType(cf.FieldType) {
		return fieldtypes.Text, nil
	}
	if !fieldtypes.RequiresOptions(cf.FieldType) {
		return cf.FieldType, nil
	}
	var options []string
	if cf.Options != nil {
		if err := json.Unmarshal([]byte(*cf.Options), &options); err != nil {
			return fieldtypes.Text, nil
		}
	}
	if fieldtypes.ValidateOptions(cf.FieldType, options) != nil {
		return fieldtypes.Text, nil
	}
	return cf.FieldType, options
}

func (s *MigrationService) mergeCustomValues(ctx context.Context, tx *sql.Tx, platformID string, folded map[string]bool, data models.RecordData) error {
	values, err := s.customFields.ListValues(ctx, tx, platformID)
	if err != nil {
		return err
	}
	for _, v := range values {
		if folded[v.FieldKey] && v.Value != nil {
			data[v.FieldKey] = *v.Value
		}
	}
	return nil
}

// legacyRecordData renders a platform row the way the legacy client stored
// it: booleans as "true"/"false" and amounts as strings
func legacyRecordData(p *models.Platform) models.RecordData {
	data := models.RecordData{
		"name":          p.Name,
		"monthlyAmount": strconv.FormatInt(p.MonthlyAmount, 10),
		"yearlyAmount":  strconv.FormatInt(p.YearlyAmount, 10),
		"autoRenew":     strconv.FormatBool(p.AutoRenew),
		"isCritical":    strconv.FormatBool(p.IsCritical),
	}
	optional := map[string]*string{
		"vendor":       p.Vendor,
		"category":     p.Category,
		"website":      p.Website,
		"description":  p.Description,
		"status":       p.Status,
		"billingCycle": p.BillingCycle,
		"renewalDate":  p.RenewalDate,
		"startDate":    p.StartDate,
		"accountOwner": p.AccountOwner,
		"department":   p.Department,
		"loginUrl":     p.LoginURL,
		"supportEmail": p.SupportEmail,
		"notes":        p.Notes,
	}
	for key, value := range optional {
		if value != nil {
			data[key] = *value
		}
	}
	if p.Seats != nil {
		data["seats"] = strconv.FormatInt(*p.Seats, 10)
	}
	return data
}

// namePlatformRow prefixes every validation failure with the platform id
func namePlatformRow(platformID string, err error) error {
	var rowErrs apperrors.ValidationErrors
	if other := rowErrs.Append("", err); other != nil {
		return other
	}
	var named apperrors.ValidationErrors
	for _, ve := range rowErrs.Errors {
		named.Add(fmt.Sprintf("platforms[%s].%s", platformID, ve.Field), ve.Message)
	}
	return named.ErrOrNil()
}
