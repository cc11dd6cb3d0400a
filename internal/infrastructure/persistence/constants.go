package persistence

// Logical column types understood by database.Dialect.ColumnType
const (
	SQLTypeVarchar36  = "VARCHAR(36)"
	SQLTypeVarchar50  = "VARCHAR(50)"
	SQLTypeVarchar100 = "VARCHAR(100)"
	SQLTypeVarchar255 = "VARCHAR(255)"
	SQLTypeText       = "TEXT"
	SQLTypeJSON       = "JSON"
	SQLTypeBoolean    = "BOOLEAN"
	SQLTypeInt        = "INT"
	SQLTypeBigInt     = "BIGINT"
	SQLTypeDateTime   = "DATETIME"
)

// SQL Keyword Constants
const (
	KeywordAsc  = "ASC"
	KeywordDesc = "DESC"

	FuncCount = "COUNT(*)"
)

// Transaction Constraints
const (
	ErrCodeDeadlock = "1213"
	ErrCodeLockWait = "1205"
)

// DefaultTxRetries bounds deadlock retries of multi-row mutations
const DefaultTxRetries = 3
