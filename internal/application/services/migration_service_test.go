package services_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wbaguley/GTM-Systems-AI-Planner-sub000/internal/application/services"
	"github.com/wbaguley/GTM-Systems-AI-Planner-sub000/internal/domain/models"
	"github.com/wbaguley/GTM-Systems-AI-Planner-sub000/internal/infrastructure/persistence"
	apperrors "github.com/wbaguley/GTM-Systems-AI-Planner-sub000/pkg/errors"
	"github.com/wbaguley/GTM-Systems-AI-Planner-sub000/pkg/fieldtypes"
	"github.com/wbaguley/GTM-Systems-AI-Planner-sub000/pkg/utils"
)

func strPtr(s string) *string { return &s }

func seedPlatform(t *testing.T, fx *fixture, name, status string, monthly, yearly int64) *models.Platform {
	t.Helper()
	ts := time.Now().UTC().Truncate(time.Second)
	p := &models.Platform{
		ID:            utils.GenerateID(),
		UserID:        fx.owner,
		Name:          name,
		Status:        strPtr(status),
		MonthlyAmount: monthly,
		YearlyAmount:  yearly,
		AutoRenew:     true,
		CreatedAt:     ts,
		UpdatedAt:     ts,
	}
	require.NoError(t, persistence.NewPlatformRepository(fx.conn).Insert(fx.ctx, nil, p))
	return p
}

func TestMigrationService_IsIdempotent(t *testing.T) {
	fx := newFixture(t)
	seedPlatform(t, fx, "Slack", "Active", 1250, 0)
	seedPlatform(t, fx, "Jira", "Active", 0, 120000)
	seedPlatform(t, fx, "Zoom", "Cancelled", 1599, 0)

	first, err := fx.sm.Migration.MigratePlatforms(fx.ctx, fx.owner, models.MigrationOptions{})
	require.NoError(t, err)
	assert.True(t, first.ModuleCreated)
	assert.Equal(t, 19, first.FieldsCreated)
	assert.Equal(t, 3, first.RecordsCreated)
	assert.Equal(t, 0, first.RecordsSkipped)

	second, err := fx.sm.Migration.MigratePlatforms(fx.ctx, fx.owner, models.MigrationOptions{})
	require.NoError(t, err)
	assert.Equal(t, first.ModuleID, second.ModuleID)
	assert.False(t, second.ModuleCreated)
	assert.Equal(t, 0, second.FieldsCreated)
	assert.Equal(t, 0, second.RecordsCreated)
	assert.Equal(t, 3, second.RecordsSkipped)

	modules, err := fx.sm.Modules.List(fx.ctx, fx.owner)
	require.NoError(t, err)
	require.Len(t, modules, 1)
	assert.Equal(t, services.PlatformsModuleName, modules[0].Name)
	assert.True(t, modules[0].IsSystem)

	fields, err := fx.sm.Fields.List(fx.ctx, fx.owner, first.ModuleID)
	require.NoError(t, err)
	assert.Equal(t, services.PlatformFieldKeys(), fieldKeys(fields))

	records, err := fx.sm.Records.List(fx.ctx, fx.owner, first.ModuleID)
	require.NoError(t, err)
	assert.Len(t, records, 3)
}

func TestMigrationService_StoresCanonicalData(t *testing.T) {
	fx := newFixture(t)
	p := seedPlatform(t, fx, "Slack", "Active", 1250, 0)

	result, err := fx.sm.Migration.MigratePlatforms(fx.ctx, fx.owner, models.MigrationOptions{})
	require.NoError(t, err)
	records, err := fx.sm.Records.List(fx.ctx, fx.owner, result.ModuleID)
	require.NoError(t, err)
	require.Len(t, records, 1)

	rec := records[0]
	require.NotNil(t, rec.SourceKey)
	assert.Equal(t, "platform:"+p.ID, *rec.SourceKey)
	assert.True(t, p.CreatedAt.Equal(rec.CreatedAt))
	assert.Equal(t, models.RecordData{
		"name":          "Slack",
		"status":        "Active",
		"monthlyAmount": int64(1250),
		"yearlyAmount":  int64(0),
		"autoRenew":     true,
		"isCritical":    false,
	}, rec.Data)

	// The raw JSON holds real booleans and integer cents, not strings
	var raw string
	require.NoError(t, fx.conn.DB().QueryRowContext(fx.ctx, "SELECT data FROM module_records WHERE id = ?", rec.ID).Scan(&raw))
	assert.Regexp(t, `"autoRenew":\s*true`, raw)
	assert.Regexp(t, `"monthlyAmount":\s*1250[,}]`, raw)

	stats, err := fx.sm.Stats.ComputeStats(fx.ctx, fx.owner, result.ModuleID)
	require.NoError(t, err)
	assert.Equal(t, 1250.0*12, stats.EstimatedAnnual)
}

func TestMigrationService_FoldsCustomFields(t *testing.T) {
	fx := newFixture(t)
	p := seedPlatform(t, fx, "Slack", "Active", 100, 0)

	tier, err := fx.sm.CustomFields.CreateField(fx.ctx, fx.owner, models.CustomFieldInput{
		FieldKey: "tier", Label: "Tier", FieldType: fieldtypes.Select, Options: []string{"Gold", "Silver"},
	})
	require.NoError(t, err)
	_, err = fx.sm.CustomFields.CreateField(fx.ctx, fx.owner, models.CustomFieldInput{
		FieldKey: "vendor", Label: "Vendor (custom)", FieldType: fieldtypes.Text,
	})
	require.NoError(t, err)
	_, err = fx.sm.CustomFields.SetValues(fx.ctx, fx.owner, p.ID, map[string]interface{}{"tier": "Gold", "vendor": "Salesforce"})
	require.NoError(t, err)

	opts := models.MigrationOptions{IncludeCustomFields: true}
	result, err := fx.sm.Migration.MigratePlatforms(fx.ctx, fx.owner, opts)
	require.NoError(t, err)
	assert.Equal(t, 1, result.CustomFieldsFolded)
	assert.Equal(t, 20, result.FieldsCreated)

	fields, err := fx.sm.Fields.List(fx.ctx, fx.owner, result.ModuleID)
	require.NoError(t, err)
	require.Len(t, fields, 20)
	folded := fields[19]
	assert.Equal(t, tier.FieldKey, folded.FieldKey)
	assert.Equal(t, []string{"Gold", "Silver"}, folded.Options)
	assert.False(t, folded.IsSystem)

	records, err := fx.sm.Records.List(fx.ctx, fx.owner, result.ModuleID)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Gold", records[0].Data["tier"])
	assert.NotContains(t, records[0].Data, "vendor")

	again, err := fx.sm.Migration.MigratePlatforms(fx.ctx, fx.owner, opts)
	require.NoError(t, err)
	assert.Equal(t, 0, again.FieldsCreated)
	assert.Equal(t, 0, again.CustomFieldsFolded)
	assert.Equal(t, 1, again.RecordsSkipped)
}

func TestMigrationService_InvalidRowFailsWholeRun(t *testing.T) {
	fx := newFixture(t)
	seedPlatform(t, fx, "Slack", "Active", 100, 0)
	bad := seedPlatform(t, fx, "Broken", "Active", 100, 0)
	_, err := fx.conn.DB().ExecContext(fx.ctx, "UPDATE platforms SET website = ? WHERE id = ?", "not a url", bad.ID)
	require.NoError(t, err)

	_, err = fx.sm.Migration.MigratePlatforms(fx.ctx, fx.owner, models.MigrationOptions{})
	var verrs *apperrors.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, "platforms["+bad.ID+"].website", verrs.Errors[0].Field)

	modules, err := fx.sm.Modules.List(fx.ctx, fx.owner)
	require.NoError(t, err)
	assert.Empty(t, modules)
}

func TestMigrationService_OtherOwnersUntouched(t *testing.T) {
	fx := newFixture(t)
	seedPlatform(t, fx, "Slack", "Active", 100, 0)

	stranger := &fixture{sm: fx.sm, conn: fx.conn, ctx: fx.ctx, owner: utils.GenerateID()}
	result, err := stranger.sm.Migration.MigratePlatforms(stranger.ctx, stranger.owner, models.MigrationOptions{})
	require.NoError(t, err)
	assert.Equal(t, 0, result.RecordsCreated)

	mine, err := fx.sm.Migration.MigratePlatforms(fx.ctx, fx.owner, models.MigrationOptions{})
	require.NoError(t, err)
	assert.NotEqual(t, result.ModuleID, mine.ModuleID)
	assert.Equal(t, 1, mine.RecordsCreated)
}

func TestMigrationService_UserModuleNamedPlatformsConflicts(t *testing.T) {
	fx := newFixture(t)
	seedPlatform(t, fx, "Slack", "Active", 1250, 0)
	own := fx.module(t, services.PlatformsModuleName)
	require.False(t, own.IsSystem)

	_, err := fx.sm.Migration.MigratePlatforms(fx.ctx, fx.owner, models.MigrationOptions{})
	assert.True(t, apperrors.IsConflict(err))

	fields, err := fx.sm.Fields.List(fx.ctx, fx.owner, own.ID)
	require.NoError(t, err)
	assert.Empty(t, fields)
	records, err := fx.sm.Records.List(fx.ctx, fx.owner, own.ID)
	require.NoError(t, err)
	assert.Empty(t, records)

	// The module stays an ordinary user module
	require.NoError(t, fx.sm.Modules.Delete(fx.ctx, fx.owner, own.ID))
	result, err := fx.sm.Migration.MigratePlatforms(fx.ctx, fx.owner, models.MigrationOptions{})
	require.NoError(t, err)
	assert.True(t, result.ModuleCreated)
	assert.Equal(t, 1, result.RecordsCreated)
}
