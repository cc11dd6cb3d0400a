// Package testutil opens throwaway databases for package tests.
package testutil

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wbaguley/GTM-Systems-AI-Planner-sub000/internal/bootstrap"
	"github.com/wbaguley/GTM-Systems-AI-Planner-sub000/internal/config"
	"github.com/wbaguley/GTM-Systems-AI-Planner-sub000/internal/infrastructure/database"
)

// EnvTestDriver selects the backend of NewDatabase. Unset means a temporary SQLite file.
const EnvTestDriver = "TEST_DB_DRIVER"

// NewDatabase returns a connection with the full schema initialised.
// By default it is a fresh SQLite file under t.TempDir(). With
// TEST_DB_DRIVER=mysql the DB_* settings are used instead; that variant is an
// integration test and is skipped in -short mode or when the server is unreachable.
func NewDatabase(t testing.TB) *database.Connection {
	t.Helper()
	ctx := context.Background()

	cfg := config.DatabaseConfig{
		Driver:     config.DriverSQLite,
		SQLitePath: filepath.Join(t.TempDir(), "modules.db"),
	}
	if os.Getenv(EnvTestDriver) == config.DriverMySQL {
		if testing.Short() {
			t.Skip("Skipping integration test in short mode")
		}
		// Only the DB_* settings matter here
		t.Setenv("DEV_MODE", "true")
		loaded, err := config.Load()
		require.NoError(t, err)
		cfg = loaded.Database
	}

	conn, err := database.Open(ctx, cfg)
	if err != nil {
		if cfg.Driver == config.DriverMySQL {
			t.Skip("Database not available: " + err.Error())
		}
		require.NoError(t, err)
	}
	t.Cleanup(func() { _ = conn.Close() })

	require.NoError(t, bootstrap.InitializeSchema(ctx, conn))
	return conn
}
