package main

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wbaguley/GTM-Systems-AI-Planner-sub000/internal/domain/models"
	"github.com/wbaguley/GTM-Systems-AI-Planner-sub000/pkg/auth"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCommand()
	root.SetOut(&out)
	root.SetArgs(append(args, "--env-file", filepath.Join(t.TempDir(), "missing.env")))
	err := root.Execute()
	return out.String(), err
}

func useSQLite(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("SQLITE_PATH", filepath.Join(t.TempDir(), "modulectl.db"))
	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("JWT_SECRET", "modulectl-test-secret")
}

func TestTokenCommand(t *testing.T) {
	useSQLite(t)

	out, err := run(t, "token", "--user", "owner-1", "--name", "Ops")
	require.NoError(t, err)

	claims, err := auth.ValidateToken(strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Equal(t, "owner-1", claims.User.ID)
	assert.Equal(t, "Ops", claims.User.Name)

	_, err = run(t, "token")
	assert.Error(t, err)
}

func TestMigrateAndAuditCommands(t *testing.T) {
	useSQLite(t)

	_, err := run(t, "schema", "init")
	require.NoError(t, err)

	out, err := run(t, "migrate-platforms", "--owner", "owner-1")
	require.NoError(t, err)
	var result models.MigrationResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.True(t, result.ModuleCreated)
	assert.Equal(t, 19, result.FieldsCreated)
	assert.Zero(t, result.RecordsCreated)

	out, err = run(t, "audit-keys", "--owner", "owner-1", "--module", result.ModuleID)
	require.NoError(t, err)
	var report models.OrphanKeyReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, result.ModuleID, report.ModuleID)
	assert.Empty(t, report.Keys)

	_, err = run(t, "audit-keys", "--owner", "someone-else", "--module", result.ModuleID)
	assert.Error(t, err)
}

func TestSchemaDropNeedsConfirmation(t *testing.T) {
	useSQLite(t)

	_, err := run(t, "schema", "drop")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--yes")

	_, err = run(t, "schema", "drop", "--yes")
	assert.NoError(t, err)
}

func TestSchemaDDLCommand(t *testing.T) {
	useSQLite(t)

	out, err := run(t, "schema", "ddl")
	require.NoError(t, err)
	assert.Contains(t, out, "CREATE TABLE IF NOT EXISTS")
	assert.Contains(t, out, "module_records")
}
