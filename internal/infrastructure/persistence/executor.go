package persistence

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"

	apperrors "github.com/wbaguley/GTM-Systems-AI-Planner-sub000/pkg/errors"
)

// Executor interface for db/tx flexibility
type Executor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// executorFor returns the transaction if present, or the DB connection
func executorFor(db *sql.DB, tx *sql.Tx) Executor {
	if tx != nil {
		return tx
	}
	return db
}

// wrapDBError turns connectivity failures into UnavailableError and leaves
// every other error as is
func wrapDBError(err error) error {
	if err == nil {
		return nil
	}
	var netErr net.Error
	switch {
	case apperrors.IsUnavailable(err):
		return err
	case errors.Is(err, driver.ErrBadConn),
		errors.Is(err, sql.ErrConnDone),
		errors.Is(err, mysql.ErrInvalidConn),
		errors.As(err, &netErr):
		return apperrors.NewUnavailableError(err)
	}
	if strings.Contains(err.Error(), "connection refused") || strings.Contains(err.Error(), "database is closed") {
		return apperrors.NewUnavailableError(err)
	}
	return err
}

// encodeJSON marshals v for a JSON column. Nil values are stored as NULL.
func encodeJSON(v interface{}) (interface{}, error) {
	if v == nil {
		return nil, nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode json column: %w", err)
	}
	return string(raw), nil
}

// nullableString stores empty strings as NULL
func nullableString(s *string) interface{} {
	if s == nil || *s == "" {
		return nil
	}
	return *s
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

// timestamp scans DATETIME columns from either driver: MySQL with parseTime
// yields time.Time, SQLite may hand back text.
type timestamp struct {
	t *time.Time
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999 -0700 MST",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func (ts timestamp) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*ts.t = time.Time{}
		return nil
	case time.Time:
		*ts.t = v.UTC()
		return nil
	case []byte:
		return ts.parse(string(v))
	case string:
		return ts.parse(v)
	}
	return fmt.Errorf("cannot scan %T into timestamp", src)
}

func (ts timestamp) parse(s string) error {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			*ts.t = t.UTC()
			return nil
		}
	}
	return fmt.Errorf("unrecognised timestamp %q", s)
}

func now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

// rowsAffected returns the affected row count; drivers that cannot report it count as zero
func rowsAffected(res sql.Result) int64 {
	n, err := res.RowsAffected()
	if err != nil {
		return 0
	}
	return n
}
