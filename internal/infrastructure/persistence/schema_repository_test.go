package persistence_test

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wbaguley/GTM-Systems-AI-Planner-sub000/internal/domain/schema"
	"github.com/wbaguley/GTM-Systems-AI-Planner-sub000/internal/infrastructure/database"
	"github.com/wbaguley/GTM-Systems-AI-Planner-sub000/internal/infrastructure/persistence"
)

var sectionsDef = schema.TableDefinition{
	TableName: "module_sections",
	Columns: []schema.ColumnDefinition{
		{Name: "id", Type: "VARCHAR(36)", PrimaryKey: true},
		{Name: "module_id", Type: "VARCHAR(36)"},
		{Name: "description", Type: "TEXT", Nullable: true},
		{Name: "is_collapsible", Type: "BOOLEAN", Default: "0"},
		{Name: "settings", Type: "JSON", Nullable: true},
	},
	Indices: []schema.IndexDefinition{
		{Name: "uq_sections", Columns: []string{"module_id", "id"}, Unique: true},
		{Columns: []string{"module_id"}},
	},
}

func TestBuildCreateTableDDL_MySQL(t *testing.T) {
	repo := persistence.NewSchemaRepository(database.NewConnection(nil, database.DialectMySQL))
	stmts, err := repo.BuildCreateTableDDL(sectionsDef)
	require.NoError(t, err)
	require.Len(t, stmts, 1)

	ddl := stmts[0]
	assert.Contains(t, ddl, "CREATE TABLE IF NOT EXISTS `module_sections`")
	assert.Contains(t, ddl, "`id` VARCHAR(36) PRIMARY KEY")
	assert.Contains(t, ddl, "`description` TEXT,")
	assert.Contains(t, ddl, "`is_collapsible` TINYINT(1) NOT NULL DEFAULT 0")
	assert.Contains(t, ddl, "`settings` JSON")
	assert.Contains(t, ddl, "UNIQUE KEY `uq_sections` (`module_id`, `id`)")
	assert.Contains(t, ddl, "KEY `idx_module_sections_module_id` (`module_id`)")
	assert.Contains(t, ddl, "ENGINE=InnoDB")
}

func TestBuildCreateTableDDL_SQLite(t *testing.T) {
	repo := persistence.NewSchemaRepository(database.NewConnection(nil, database.DialectSQLite))
	stmts, err := repo.BuildCreateTableDDL(sectionsDef)
	require.NoError(t, err)
	require.Len(t, stmts, 2)

	assert.Contains(t, stmts[0], "`is_collapsible` INTEGER NOT NULL DEFAULT 0")
	assert.Contains(t, stmts[0], "`settings` TEXT")
	assert.Contains(t, stmts[0], "CONSTRAINT `uq_sections` UNIQUE (`module_id`, `id`)")
	assert.NotContains(t, stmts[0], "ENGINE")
	assert.Equal(t, "CREATE INDEX IF NOT EXISTS `idx_module_sections_module_id` ON `module_sections` (`module_id`)", stmts[1])
}

func TestBuildCreateTableDDL_RejectsBadNames(t *testing.T) {
	repo := persistence.NewSchemaRepository(database.NewConnection(nil, database.DialectMySQL))

	_, err := repo.BuildCreateTableDDL(schema.TableDefinition{TableName: "Modules; DROP", Columns: sectionsDef.Columns})
	assert.Error(t, err)

	_, err = repo.BuildCreateTableDDL(schema.TableDefinition{TableName: "modules"})
	assert.Error(t, err)

	_, err = repo.BuildCreateTableDDL(schema.TableDefinition{
		TableName: "modules",
		Columns:   []schema.ColumnDefinition{{Name: "bad-name", Type: "TEXT"}},
	})
	assert.Error(t, err)
}

func TestCreateTable_ExecutesEveryStatement(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := persistence.NewSchemaRepository(database.NewConnection(db, database.DialectSQLite))
	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS `module_sections`")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("CREATE INDEX IF NOT EXISTS")).WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.CreateTable(context.Background(), sectionsDef))
	assert.NoError(t, mock.ExpectationsWereMet())
}
