package schema

// ColumnDefinition represents a single column in a table. Type is a logical
// SQL type (VARCHAR(n), TEXT, JSON, BOOLEAN, INT, BIGINT, DATETIME) that the
// dialect maps onto its own DDL type.
type ColumnDefinition struct {
	Name       string `json:"name"`
	Type       string `json:"type"`
	PrimaryKey bool   `json:"primary_key,omitempty"`
	Nullable   bool   `json:"nullable,omitempty"`
	Default    string `json:"default,omitempty"`
}

// IndexDefinition represents an index on a table
type IndexDefinition struct {
	Name    string   `json:"name,omitempty"`
	Columns []string `json:"columns"`
	Unique  bool     `json:"unique,omitempty"`
}

// TableDefinition represents a complete table schema
type TableDefinition struct {
	TableName   string             `json:"table_name"`
	Category    string             `json:"category"` // modules, legacy
	Description string             `json:"description"`
	Columns     []ColumnDefinition `json:"columns"`
	Indices     []IndexDefinition  `json:"indices,omitempty"`
}
