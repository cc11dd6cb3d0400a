package persistence

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/wbaguley/GTM-Systems-AI-Planner-sub000/internal/domain/schema"
	"github.com/wbaguley/GTM-Systems-AI-Planner-sub000/internal/infrastructure/database"
)

var validTableName = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// SchemaRepository renders table definitions into dialect DDL and applies them
type SchemaRepository struct {
	conn *database.Connection
}

func NewSchemaRepository(conn *database.Connection) *SchemaRepository {
	return &SchemaRepository{conn: conn}
}

// BuildCreateTableDDL returns the statements that create def: the CREATE TABLE
// itself followed, on SQLite, by one CREATE INDEX per non-unique index.
func (r *SchemaRepository) BuildCreateTableDDL(def schema.TableDefinition) ([]string, error) {
	if !validTableName.MatchString(def.TableName) {
		return nil, fmt.Errorf("table name '%s' must be snake_case (lowercase, alphanumeric, underscores)", def.TableName)
	}
	if len(def.Columns) == 0 {
		return nil, fmt.Errorf("table '%s' has no columns", def.TableName)
	}

	dialect := r.conn.Dialect()
	lines := make([]string, 0, len(def.Columns)+len(def.Indices))
	for _, col := range def.Columns {
		if !validTableName.MatchString(col.Name) {
			return nil, fmt.Errorf("invalid column name '%s' in table '%s'", col.Name, def.TableName)
		}
		lines = append(lines, r.buildColumnDDL(col))
	}

	var trailing []string
	for _, idx := range def.Indices {
		name := idx.Name
		if name == "" {
			name = fmt.Sprintf("idx_%s_%s", def.TableName, strings.Join(idx.Columns, "_"))
		}
		cols := quoteAll(idx.Columns)
		switch {
		case dialect == database.DialectSQLite && idx.Unique:
			lines = append(lines, fmt.Sprintf("CONSTRAINT `%s` UNIQUE (%s)", name, cols))
		case dialect == database.DialectSQLite:
			trailing = append(trailing, fmt.Sprintf("CREATE INDEX IF NOT EXISTS `%s` ON `%s` (%s)", name, def.TableName, cols))
		case idx.Unique:
			lines = append(lines, fmt.Sprintf("UNIQUE KEY `%s` (%s)", name, cols))
		default:
			lines = append(lines, fmt.Sprintf("KEY `%s` (%s)", name, cols))
		}
	}

	var ddl strings.Builder
	ddl.WriteString(fmt.Sprintf("CREATE TABLE IF NOT EXISTS `%s` (\n  ", def.TableName))
	ddl.WriteString(strings.Join(lines, ",\n  "))
	ddl.WriteString("\n)")
	ddl.WriteString(dialect.TableOptions())

	return append([]string{ddl.String()}, trailing...), nil
}

func (r *SchemaRepository) buildColumnDDL(col schema.ColumnDefinition) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("`%s` %s", col.Name, r.conn.Dialect().ColumnType(col.Type)))
	if col.PrimaryKey {
		b.WriteString(" PRIMARY KEY")
	} else if !col.Nullable {
		b.WriteString(" NOT NULL")
	}
	if col.Default != "" {
		b.WriteString(" DEFAULT " + col.Default)
	}
	return b.String()
}

// CreateTable creates def if it does not exist yet
func (r *SchemaRepository) CreateTable(ctx context.Context, def schema.TableDefinition) error {
	stmts, err := r.BuildCreateTableDDL(def)
	if err != nil {
		return err
	}
	for _, stmt := range stmts {
		if _, err := r.conn.DB().ExecContext(ctx, stmt); err != nil {
			return wrapDBError(fmt.Errorf("failed to create table %s: %w", def.TableName, err))
		}
	}
	logrus.WithField("table", def.TableName).Debug("table ensured")
	return nil
}

// DropTable drops a table if it exists
func (r *SchemaRepository) DropTable(ctx context.Context, tableName string) error {
	if !validTableName.MatchString(tableName) {
		return fmt.Errorf("invalid table name '%s'", tableName)
	}
	_, err := r.conn.DB().ExecContext(ctx, fmt.Sprintf("DROP TABLE IF EXISTS `%s`", tableName))
	return wrapDBError(err)
}

func quoteAll(cols []string) string {
	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = "`" + c + "`"
	}
	return strings.Join(quoted, ", ")
}
