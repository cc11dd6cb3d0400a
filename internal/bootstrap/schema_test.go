package bootstrap_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wbaguley/GTM-Systems-AI-Planner-sub000/internal/bootstrap"
	"github.com/wbaguley/GTM-Systems-AI-Planner-sub000/internal/infrastructure/database"
	"github.com/wbaguley/GTM-Systems-AI-Planner-sub000/internal/testutil"
)

func TestSchema_InitializeIsRepeatableAndDropRemovesTables(t *testing.T) {
	ctx := context.Background()
	conn := testutil.NewDatabase(t)

	// testutil already initialised once
	require.NoError(t, bootstrap.InitializeSchema(ctx, conn))

	defs, err := bootstrap.GetTableDefinitions()
	require.NoError(t, err)
	require.NotEmpty(t, defs)

	for _, def := range defs {
		_, err := conn.DB().ExecContext(ctx, "SELECT COUNT(*) FROM "+def.TableName)
		assert.NoError(t, err, def.TableName)
	}

	if conn.Dialect() != database.DialectSQLite {
		t.Skip("Dropping tables of a shared database is left to modulectl")
	}
	require.NoError(t, bootstrap.DropSchema(ctx, conn))
	for _, def := range defs {
		_, err := conn.DB().ExecContext(ctx, "SELECT COUNT(*) FROM "+def.TableName)
		assert.Error(t, err, def.TableName)
	}

	require.NoError(t, bootstrap.InitializeSchema(ctx, conn))
}
