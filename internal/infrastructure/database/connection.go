package database

import (
	"context"
	"crypto/tls"
	"database/sql"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"

	"github.com/wbaguley/GTM-Systems-AI-Planner-sub000/internal/config"
)

// Connection wraps the pooled *sql.DB together with its dialect.
// sql.DB is already safe for concurrent use; no extra locking is added.
type Connection struct {
	db      *sql.DB
	dialect Dialect
}

var tlsOnce sync.Once // TLS config may only be registered once per process

const tlsConfigName = "tidb"

// Open connects to the configured backend and pings it. A store that cannot
// reach its database is never constructed.
func Open(ctx context.Context, cfg config.DatabaseConfig) (*Connection, error) {
	var (
		conn *Connection
		err  error
	)
	switch cfg.Driver {
	case config.DriverSQLite:
		conn, err = openSQLite(cfg)
	default:
		conn, err = openMySQL(cfg)
	}
	if err != nil {
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := conn.db.PingContext(pingCtx); err != nil {
		_ = conn.db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return conn, nil
}

// NewConnection wraps an existing handle, e.g. a sqlmock or a test database
func NewConnection(db *sql.DB, dialect Dialect) *Connection {
	return &Connection{db: db, dialect: dialect}
}

func openMySQL(cfg config.DatabaseConfig) (*Connection, error) {
	dsn := mysql.NewConfig()
	dsn.User = cfg.User
	dsn.Passwd = cfg.Password
	dsn.Net = "tcp"
	dsn.Addr = net.JoinHostPort(cfg.Host, cfg.Port)
	dsn.DBName = cfg.Name
	dsn.ParseTime = true
	dsn.Loc = time.UTC
	dsn.Params = map[string]string{"charset": "utf8mb4"}

	if cfg.UseTLS() {
		host := cfg.Host
		tlsOnce.Do(func() {
			if err := mysql.RegisterTLSConfig(tlsConfigName, &tls.Config{
				MinVersion: tls.VersionTLS12,
				ServerName: host,
			}); err != nil {
				logrus.WithError(err).Error("failed to register TLS config")
			}
		})
		dsn.TLSConfig = tlsConfigName
	}

	db, err := sql.Open("mysql", dsn.FormatDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// MaxIdleConns matches MaxOpenConns so pooled connections are not churned
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxOpenConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	return &Connection{db: db, dialect: DialectMySQL}, nil
}

// SQLiteDSN builds a modernc.org/sqlite DSN with foreign keys, WAL and a busy timeout
func SQLiteDSN(path string) string {
	return fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)", path)
}

func openSQLite(cfg config.DatabaseConfig) (*Connection, error) {
	if dir := filepath.Dir(cfg.SQLitePath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create sqlite directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", SQLiteDSN(cfg.SQLitePath))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// SQLite serialises writers; one connection avoids SQLITE_BUSY inside transactions
	db.SetMaxOpenConns(1)
	return &Connection{db: db, dialect: DialectSQLite}, nil
}

// DB returns the underlying *sql.DB connection
func (c *Connection) DB() *sql.DB {
	return c.db
}

// Dialect returns the SQL dialect of the connection
func (c *Connection) Dialect() Dialect {
	return c.dialect
}

// BeginTx starts a new transaction with context
func (c *Connection) BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error) {
	return c.db.BeginTx(ctx, opts)
}

// Close closes the database connection
func (c *Connection) Close() error {
	return c.db.Close()
}
