package persistence_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wbaguley/GTM-Systems-AI-Planner-sub000/internal/domain/models"
	"github.com/wbaguley/GTM-Systems-AI-Planner-sub000/internal/infrastructure/persistence"
	"github.com/wbaguley/GTM-Systems-AI-Planner-sub000/internal/testutil"
	apperrors "github.com/wbaguley/GTM-Systems-AI-Planner-sub000/pkg/errors"
	"github.com/wbaguley/GTM-Systems-AI-Planner-sub000/pkg/fieldtypes"
	"github.com/wbaguley/GTM-Systems-AI-Planner-sub000/pkg/utils"
)

func newModule(owner, name string) *models.Module {
	ts := time.Now().UTC().Truncate(time.Second)
	return &models.Module{
		ID: utils.GenerateID(), OwnerID: owner, Name: name,
		SingularName: name, PluralName: name + "s",
		CreatedAt: ts, UpdatedAt: ts,
	}
}

func newField(moduleID, key, typ string, order int) *models.ModuleField {
	ts := time.Now().UTC().Truncate(time.Second)
	return &models.ModuleField{
		ID: utils.GenerateID(), ModuleID: moduleID, FieldKey: key, Label: key,
		FieldType: typ, DisplayOrder: order, ColumnSpan: 1,
		CreatedAt: ts, UpdatedAt: ts,
	}
}

func TestModuleRepository(t *testing.T) {
	conn := testutil.NewDatabase(t)
	repo := persistence.NewModuleRepository(conn)
	ctx := context.Background()
	owner := utils.GenerateID()

	icon := "layers"
	m := newModule(owner, "Contacts")
	m.Icon = &icon
	m.StatsPolicy = &models.StatsPolicy{ActiveWhen: `stage == "Won"`}
	require.NoError(t, repo.Insert(ctx, nil, m))

	got, err := repo.FindByID(ctx, nil, m.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Contacts", got.Name)
	assert.Equal(t, "layers", *got.Icon)
	assert.Nil(t, got.Description)
	assert.Equal(t, `stage == "Won"`, got.StatsPolicy.ActiveWhen)
	assert.True(t, m.CreatedAt.Equal(got.CreatedAt))

	err = repo.Insert(ctx, nil, newModule(owner, "Contacts"))
	assert.True(t, apperrors.IsConflict(err))

	created, err := repo.InsertIgnore(ctx, nil, newModule(owner, "Contacts"))
	require.NoError(t, err)
	assert.False(t, created)

	require.NoError(t, repo.Insert(ctx, nil, newModule(owner, "Accounts")))
	require.NoError(t, repo.Insert(ctx, nil, newModule(utils.GenerateID(), "Accounts")))
	list, err := repo.ListByOwner(ctx, owner)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Accounts", list[0].Name)

	byName, err := repo.FindByOwnerAndName(ctx, nil, owner, "Contacts")
	require.NoError(t, err)
	assert.Equal(t, m.ID, byName.ID)

	require.NoError(t, repo.Update(ctx, nil, m.ID, map[string]interface{}{"description": "People", "stats_policy": nil}))
	got, err = repo.FindByID(ctx, nil, m.ID)
	require.NoError(t, err)
	assert.Equal(t, "People", *got.Description)
	assert.Nil(t, got.StatsPolicy)

	n, err := repo.Delete(ctx, nil, m.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	missing, err := repo.FindByID(ctx, nil, m.ID)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestFieldRepository(t *testing.T) {
	conn := testutil.NewDatabase(t)
	repo := persistence.NewFieldRepository(conn)
	ctx := context.Background()
	moduleID := utils.GenerateID()

	next, err := repo.NextDisplayOrder(ctx, nil, moduleID)
	require.NoError(t, err)
	assert.Equal(t, 0, next)

	minSeats := 1.0
	status := newField(moduleID, "status", fieldtypes.Select, 1)
	status.Options = []string{"Active", "Cancelled"}
	status.DefaultValue = "Active"
	seats := newField(moduleID, "seats", fieldtypes.Number, 0)
	seats.Validation = &fieldtypes.Constraints{Min: &minSeats}
	amount := newField(moduleID, "monthlyAmount", fieldtypes.Currency, 2)
	amount.DefaultValue = int64(0)
	sectionID := utils.GenerateID()
	amount.SectionID = &sectionID

	for _, f := range []*models.ModuleField{status, seats, amount} {
		require.NoError(t, repo.Insert(ctx, nil, f))
	}
	assert.True(t, apperrors.IsConflict(repo.Insert(ctx, nil, newField(moduleID, "status", fieldtypes.Text, 9))))

	fields, err := repo.ListByModule(ctx, nil, moduleID)
	require.NoError(t, err)
	require.Len(t, fields, 3)
	assert.Equal(t, []string{"seats", "status", "monthlyAmount"}, []string{fields[0].FieldKey, fields[1].FieldKey, fields[2].FieldKey})
	assert.Equal(t, []string{"Active", "Cancelled"}, fields[1].Options)
	assert.Equal(t, "Active", fields[1].DefaultValue)
	assert.Equal(t, int64(0), fields[2].DefaultValue)
	assert.Equal(t, 1.0, *fields[0].Validation.Min)

	next, err = repo.NextDisplayOrder(ctx, nil, moduleID)
	require.NoError(t, err)
	assert.Equal(t, 3, next)

	cleared, err := repo.ClearSection(ctx, nil, sectionID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, cleared)
	got, err := repo.FindByID(ctx, nil, amount.ID)
	require.NoError(t, err)
	assert.Nil(t, got.SectionID)

	created, err := repo.InsertIgnore(ctx, nil, newField(moduleID, "seats", fieldtypes.Number, 5))
	require.NoError(t, err)
	assert.False(t, created)

	n, err := repo.DeleteByModule(ctx, nil, moduleID)
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)
}

func TestRecordRepository(t *testing.T) {
	conn := testutil.NewDatabase(t)
	repo := persistence.NewRecordRepository(conn)
	ctx := context.Background()
	moduleID, owner := utils.GenerateID(), utils.GenerateID()
	ts := time.Now().UTC()

	sourceKey := "platform:p1"
	rec := &models.ModuleRecord{
		ID: utils.GenerateID(), ModuleID: moduleID, OwnerID: owner,
		Data:      models.RecordData{"name": "Slack", "seats": 25.0, "autoRenew": true},
		SourceKey: &sourceKey, CreatedBy: owner, UpdatedBy: owner,
		CreatedAt: ts, UpdatedAt: ts,
	}
	created, err := repo.InsertIgnore(ctx, nil, rec)
	require.NoError(t, err)
	assert.True(t, created)

	dup := *rec
	dup.ID = utils.GenerateID()
	created, err = repo.InsertIgnore(ctx, nil, &dup)
	require.NoError(t, err)
	assert.False(t, created, "same source key is skipped")

	plain := &models.ModuleRecord{
		ID: utils.GenerateID(), ModuleID: moduleID, OwnerID: utils.GenerateID(),
		Data: models.RecordData{}, CreatedAt: ts, UpdatedAt: ts,
	}
	require.NoError(t, repo.Insert(ctx, nil, plain))

	got, err := repo.FindByID(ctx, nil, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, rec.Data, got.Data)
	assert.Equal(t, sourceKey, *got.SourceKey)

	mine, err := repo.ListByOwner(ctx, nil, moduleID, owner)
	require.NoError(t, err)
	assert.Len(t, mine, 1)
	all, err := repo.ListByModule(ctx, nil, moduleID)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	require.NoError(t, repo.UpdateData(ctx, nil, rec.ID, models.RecordData{"name": "Slack Pro"}, "editor"))
	got, err = repo.FindByID(ctx, nil, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RecordData{"name": "Slack Pro"}, got.Data)
	assert.Equal(t, "editor", got.UpdatedBy)

	count, err := repo.CountByModule(ctx, nil, moduleID)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	n, err := repo.Delete(ctx, nil, rec.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	missing, err := repo.FindByID(ctx, nil, rec.ID)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestCustomFieldRepository_ScrubsValuesOfOwnPlatformsOnly(t *testing.T) {
	conn := testutil.NewDatabase(t)
	platforms := persistence.NewPlatformRepository(conn)
	repo := persistence.NewCustomFieldRepository(conn)
	ctx := context.Background()
	ts := time.Now().UTC()

	alice, bob := utils.GenerateID(), utils.GenerateID()
	pa := &models.Platform{ID: utils.GenerateID(), UserID: alice, Name: "Slack", MonthlyAmount: 1200, CreatedAt: ts, UpdatedAt: ts}
	pb := &models.Platform{ID: utils.GenerateID(), UserID: bob, Name: "Zoom", CreatedAt: ts, UpdatedAt: ts}
	require.NoError(t, platforms.Insert(ctx, nil, pa))
	require.NoError(t, platforms.Insert(ctx, nil, pb))

	listed, err := platforms.ListByUser(ctx, nil, alice)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.EqualValues(t, 1200, listed[0].MonthlyAmount)
	assert.False(t, listed[0].AutoRenew)

	require.NoError(t, repo.Insert(ctx, nil, &models.CustomField{ID: utils.GenerateID(), UserID: alice, FieldKey: "costCenter", Label: "Cost center", FieldType: fieldtypes.Text}))
	err = repo.Insert(ctx, nil, &models.CustomField{ID: utils.GenerateID(), UserID: alice, FieldKey: "costCenter", Label: "Dup", FieldType: fieldtypes.Text})
	assert.True(t, apperrors.IsConflict(err))

	v := "CC-1"
	require.NoError(t, repo.PutValue(ctx, nil, &models.CustomFieldValue{ID: utils.GenerateID(), PlatformID: pa.ID, FieldKey: "costCenter", Value: &v}))
	v2 := "CC-2"
	require.NoError(t, repo.PutValue(ctx, nil, &models.CustomFieldValue{ID: utils.GenerateID(), PlatformID: pa.ID, FieldKey: "costCenter", Value: &v2}))
	require.NoError(t, repo.PutValue(ctx, nil, &models.CustomFieldValue{ID: utils.GenerateID(), PlatformID: pb.ID, FieldKey: "costCenter", Value: &v}))

	values, err := repo.ListValues(ctx, nil, pa.ID)
	require.NoError(t, err)
	require.Len(t, values, 1)
	assert.Equal(t, "CC-2", *values[0].Value)

	n, err := repo.DeleteValuesForKey(ctx, nil, alice, "costCenter")
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	values, err = repo.ListValues(ctx, nil, pb.ID)
	require.NoError(t, err)
	assert.Len(t, values, 1, "other users' values stay")
}

func TestRepositories_InsideRolledBackTransaction(t *testing.T) {
	conn := testutil.NewDatabase(t)
	tm := persistence.NewTransactionManager(conn)
	modules := persistence.NewModuleRepository(conn)
	ctx := context.Background()
	m := newModule(utils.GenerateID(), "Vendors")

	err := tm.WithTransaction(ctx, func(tx *sql.Tx) error {
		if err := modules.Insert(ctx, tx, m); err != nil {
			return err
		}
		inTx, err := modules.FindByID(ctx, tx, m.ID)
		require.NoError(t, err)
		require.NotNil(t, inTx)
		return apperrors.NewInvalidOperationError("create module", "forced failure")
	})
	assert.True(t, apperrors.IsInvalidOperation(err))

	got, err := modules.FindByID(ctx, nil, m.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}
