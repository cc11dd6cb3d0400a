package database

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"

	"github.com/wbaguley/GTM-Systems-AI-Planner-sub000/pkg/query"
)

// Dialect captures the few places where MySQL/TiDB and SQLite SQL differ
type Dialect string

const (
	DialectMySQL  Dialect = "mysql"
	DialectSQLite Dialect = "sqlite"
)

// InsertIgnoreVerb returns the INSERT form that skips unique-key conflicts
func (d Dialect) InsertIgnoreVerb() string {
	if d == DialectSQLite {
		return query.VerbInsertIgnoreSQLite
	}
	return query.VerbInsertIgnoreMySQL
}

// ColumnType maps a logical column type onto the dialect's DDL type
func (d Dialect) ColumnType(logical string) string {
	upper := strings.ToUpper(logical)
	if d == DialectSQLite {
		switch {
		case upper == "JSON", strings.HasPrefix(upper, "VARCHAR"), upper == "TEXT", upper == "LONGTEXT":
			return "TEXT"
		case upper == "BOOLEAN", upper == "TINYINT(1)", upper == "INT", upper == "BIGINT":
			return "INTEGER"
		case upper == "DATETIME", upper == "DATE":
			return "DATETIME"
		}
		return upper
	}
	if upper == "BOOLEAN" {
		return "TINYINT(1)"
	}
	return upper
}

// TableOptions is appended to CREATE TABLE statements
func (d Dialect) TableOptions() string {
	if d == DialectMySQL {
		return " ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci"
	}
	return ""
}

// IsUniqueViolation reports whether err is a duplicate-key error
func (d Dialect) IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == 1062
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || strings.Contains(msg, "Duplicate entry")
}
