package query

import (
	"fmt"
	"sort"
	"strings"
)

// QueryType represents the type of SQL query
type QueryType string

const (
	QueryTypeSelect QueryType = "SELECT"
	QueryTypeInsert QueryType = "INSERT"
	QueryTypeUpdate QueryType = "UPDATE"
	QueryTypeDelete QueryType = "DELETE"
)

// Insert verbs. MySQL/TiDB and SQLite spell "skip rows that violate a unique key" differently.
const (
	VerbInsert             = "INSERT INTO"
	VerbInsertIgnoreMySQL  = "INSERT IGNORE INTO"
	VerbInsertIgnoreSQLite = "INSERT OR IGNORE INTO"
)

// QueryResult represents the built SQL query and parameters
type QueryResult struct {
	SQL    string
	Params []interface{}
}

// Builder is a fluent SQL query builder. Identifiers are backtick-quoted and
// parameters use ? placeholders, which both MySQL and SQLite accept.
type Builder struct {
	queryType    QueryType
	table        string
	fields       []string
	whereClauses []string
	params       []interface{}
	orderBy      []string
	limit        *int
	values       map[string]interface{}
	insertVerb   string
}

// From creates a new SELECT query builder
func From(table string) *Builder {
	return &Builder{
		queryType:    QueryTypeSelect,
		table:        table,
		fields:       make([]string, 0),
		whereClauses: make([]string, 0),
		params:       make([]interface{}, 0),
	}
}

// Insert creates a new INSERT query builder
func Insert(table string, data map[string]interface{}) *Builder {
	return &Builder{
		queryType:  QueryTypeInsert,
		table:      table,
		values:     data,
		params:     make([]interface{}, 0),
		insertVerb: VerbInsert,
	}
}

// Update creates a new UPDATE query builder
func Update(table string) *Builder {
	return &Builder{
		queryType:    QueryTypeUpdate,
		table:        table,
		values:       make(map[string]interface{}),
		whereClauses: make([]string, 0),
		params:       make([]interface{}, 0),
	}
}

// Delete creates a new DELETE query builder
func Delete(table string) *Builder {
	return &Builder{
		queryType:    QueryTypeDelete,
		table:        table,
		whereClauses: make([]string, 0),
		params:       make([]interface{}, 0),
	}
}

// Verb replaces the INSERT verb, e.g. with the dialect's insert-ignore form
func (b *Builder) Verb(verb string) *Builder {
	if b.queryType == QueryTypeInsert && verb != "" {
		b.insertVerb = verb
	}
	return b
}

// Select specifies which columns to select
func (b *Builder) Select(fields []string) *Builder {
	if b.queryType != QueryTypeSelect {
		return b
	}
	for _, field := range fields {
		b.fields = append(b.fields, quoteColumn(field))
	}
	return b
}

// SelectRaw adds a raw select expression such as COUNT(*)
func (b *Builder) SelectRaw(expression string) *Builder {
	if b.queryType == QueryTypeSelect {
		b.fields = append(b.fields, expression)
	}
	return b
}

// Where adds a WHERE condition
func (b *Builder) Where(condition string, value ...interface{}) *Builder {
	b.whereClauses = append(b.whereClauses, condition)
	if len(value) > 0 {
		b.params = append(b.params, value...)
	}
	return b
}

// WhereEq adds a `column` = ? condition
func (b *Builder) WhereEq(column string, value interface{}) *Builder {
	return b.Where(fmt.Sprintf("%s = ?", quoteColumn(column)), value)
}

// WhereIn adds a `column` IN (?, ...) condition. An empty list matches nothing.
func (b *Builder) WhereIn(column string, values []interface{}) *Builder {
	if len(values) == 0 {
		return b.Where("1 = 0")
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(values)), ", ")
	return b.Where(fmt.Sprintf("%s IN (%s)", quoteColumn(column), placeholders), values...)
}

// Set sets values for UPDATE query
func (b *Builder) Set(data map[string]interface{}) *Builder {
	if b.queryType != QueryTypeUpdate {
		return b
	}
	b.values = data
	return b
}

// OrderBy adds an ORDER BY term; repeated calls add tie-breakers
func (b *Builder) OrderBy(field string, direction string) *Builder {
	if b.queryType != QueryTypeSelect {
		return b
	}
	b.orderBy = append(b.orderBy, fmt.Sprintf("%s %s", quoteColumn(field), direction))
	return b
}

// Limit adds LIMIT clause
func (b *Builder) Limit(n int) *Builder {
	if b.queryType != QueryTypeSelect {
		return b
	}
	b.limit = &n
	return b
}

// Build constructs the final SQL query
func (b *Builder) Build() QueryResult {
	var sql string
	var params []interface{}

	switch b.queryType {
	case QueryTypeSelect:
		sql = b.buildSelect()
		params = b.params
	case QueryTypeInsert:
		sql, params = b.buildInsert()
	case QueryTypeUpdate:
		sql, params = b.buildUpdate()
	case QueryTypeDelete:
		sql = b.buildDelete()
		params = b.params
	}

	return QueryResult{
		SQL:    sql,
		Params: params,
	}
}

func (b *Builder) buildSelect() string {
	var parts []string

	fields := "*"
	if len(b.fields) > 0 {
		fields = strings.Join(b.fields, ", ")
	}
	parts = append(parts, fmt.Sprintf("SELECT %s FROM `%s`", fields, b.table))

	if len(b.whereClauses) > 0 {
		parts = append(parts, fmt.Sprintf("WHERE %s", strings.Join(b.whereClauses, " AND ")))
	}
	if len(b.orderBy) > 0 {
		parts = append(parts, "ORDER BY "+strings.Join(b.orderBy, ", "))
	}
	if b.limit != nil {
		parts = append(parts, fmt.Sprintf("LIMIT %d", *b.limit))
	}

	return strings.Join(parts, " ")
}

// sortedKeys keeps generated SQL deterministic
func sortedKeys(values map[string]interface{}) []string {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (b *Builder) buildInsert() (string, []interface{}) {
	keys := sortedKeys(b.values)
	cols := make([]string, 0, len(keys))
	placeholders := make([]string, 0, len(keys))
	params := make([]interface{}, 0, len(keys))

	for _, key := range keys {
		cols = append(cols, quoteColumn(key))
		placeholders = append(placeholders, "?")
		params = append(params, b.values[key])
	}

	sql := fmt.Sprintf("%s `%s` (%s) VALUES (%s)",
		b.insertVerb,
		b.table,
		strings.Join(cols, ", "),
		strings.Join(placeholders, ", "))

	return sql, params
}

func (b *Builder) buildUpdate() (string, []interface{}) {
	keys := sortedKeys(b.values)
	setClauses := make([]string, 0, len(keys))
	params := make([]interface{}, 0, len(keys)+len(b.params))

	for _, key := range keys {
		setClauses = append(setClauses, fmt.Sprintf("%s = ?", quoteColumn(key)))
		params = append(params, b.values[key])
	}

	sql := fmt.Sprintf("UPDATE `%s` SET %s", b.table, strings.Join(setClauses, ", "))

	if len(b.whereClauses) > 0 {
		sql += fmt.Sprintf(" WHERE %s", strings.Join(b.whereClauses, " AND "))
		params = append(params, b.params...)
	}

	return sql, params
}

func (b *Builder) buildDelete() string {
	sql := fmt.Sprintf("DELETE FROM `%s`", b.table)

	if len(b.whereClauses) > 0 {
		sql += fmt.Sprintf(" WHERE %s", strings.Join(b.whereClauses, " AND "))
	}

	return sql
}

func quoteColumn(column string) string {
	if column == "*" || strings.ContainsAny(column, "`(") {
		return column
	}
	return fmt.Sprintf("`%s`", column)
}
