package database

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wbaguley/GTM-Systems-AI-Planner-sub000/internal/config"
)

func TestOpen_SQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "modules.db")
	conn, err := Open(context.Background(), config.DatabaseConfig{Driver: config.DriverSQLite, SQLitePath: path})
	require.NoError(t, err)
	defer conn.Close()

	assert.Equal(t, DialectSQLite, conn.Dialect())
	var one int
	require.NoError(t, conn.DB().QueryRow("SELECT 1").Scan(&one))
	assert.Equal(t, 1, one)
}

func TestOpen_UnreachableMySQLFailsFast(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping network test in short mode")
	}
	_, err := Open(context.Background(), config.DatabaseConfig{
		Driver: config.DriverMySQL, Host: "127.0.0.1", Port: "1", User: "root", Name: "modules", TLS: "false",
	})
	assert.Error(t, err)
}

func TestDialect(t *testing.T) {
	assert.Equal(t, "INSERT IGNORE INTO", DialectMySQL.InsertIgnoreVerb())
	assert.Equal(t, "INSERT OR IGNORE INTO", DialectSQLite.InsertIgnoreVerb())

	assert.Equal(t, "JSON", DialectMySQL.ColumnType("JSON"))
	assert.Equal(t, "TEXT", DialectSQLite.ColumnType("JSON"))
	assert.Equal(t, "TEXT", DialectSQLite.ColumnType("VARCHAR(255)"))
	assert.Equal(t, "INTEGER", DialectSQLite.ColumnType("BOOLEAN"))
	assert.Equal(t, "TINYINT(1)", DialectMySQL.ColumnType("BOOLEAN"))
	assert.Contains(t, DialectMySQL.TableOptions(), "InnoDB")
	assert.Empty(t, DialectSQLite.TableOptions())

	assert.True(t, DialectMySQL.IsUniqueViolation(&mysql.MySQLError{Number: 1062}))
	assert.False(t, DialectMySQL.IsUniqueViolation(&mysql.MySQLError{Number: 1213}))
	assert.True(t, DialectSQLite.IsUniqueViolation(errors.New("constraint failed: UNIQUE constraint failed: modules.owner_id, modules.name (2067)")))
	assert.False(t, DialectSQLite.IsUniqueViolation(nil))
}
