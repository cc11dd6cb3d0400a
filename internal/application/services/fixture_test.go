package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wbaguley/GTM-Systems-AI-Planner-sub000/internal/application/services"
	"github.com/wbaguley/GTM-Systems-AI-Planner-sub000/internal/domain/models"
	"github.com/wbaguley/GTM-Systems-AI-Planner-sub000/internal/infrastructure/database"
	"github.com/wbaguley/GTM-Systems-AI-Planner-sub000/internal/testutil"
	"github.com/wbaguley/GTM-Systems-AI-Planner-sub000/pkg/utils"
)

type fixture struct {
	sm    *services.ServiceManager
	conn  *database.Connection
	ctx   context.Context
	owner string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	conn := testutil.NewDatabase(t)
	return &fixture{
		sm:    services.NewServiceManager(conn),
		conn:  conn,
		ctx:   context.Background(),
		owner: utils.GenerateID(),
	}
}

func (fx *fixture) module(t *testing.T, name string) *models.Module {
	t.Helper()
	m, err := fx.sm.Modules.Create(fx.ctx, fx.owner, models.ModuleInput{
		Name:         name,
		SingularName: name,
		PluralName:   name + "s",
	})
	require.NoError(t, err)
	return m
}

func (fx *fixture) field(t *testing.T, moduleID, key, fieldType string, opts ...func(*models.FieldInput)) *models.ModuleField {
	t.Helper()
	in := models.FieldInput{FieldKey: key, Label: key, FieldType: fieldType}
	for _, opt := range opts {
		opt(&in)
	}
	f, err := fx.sm.Fields.Create(fx.ctx, fx.owner, moduleID, in)
	require.NoError(t, err)
	return f
}

func withOptions(options ...string) func(*models.FieldInput) {
	return func(in *models.FieldInput) { in.Options = options }
}

func required(in *models.FieldInput) { in.IsRequired = true }

func unique(in *models.FieldInput) { in.IsUnique = true }

func withDefault(v interface{}) func(*models.FieldInput) {
	return func(in *models.FieldInput) { in.DefaultValue = v }
}

func (fx *fixture) record(t *testing.T, moduleID string, data models.RecordData) *models.ModuleRecord {
	t.Helper()
	rec, err := fx.sm.Records.Create(fx.ctx, fx.owner, moduleID, data, fx.owner)
	require.NoError(t, err)
	return rec
}

func fieldKeys(fields []*models.ModuleField) []string {
	keys := make([]string, len(fields))
	for i, f := range fields {
		keys[i] = f.FieldKey
	}
	return keys
}
