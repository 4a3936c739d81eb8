package dialects

import "strings"

// MySQLDialect implements MySQL-specific SQL dialect.
type MySQLDialect struct{}

func init() {
	RegisterDialect("mysql", &MySQLDialect{})
}

// Name returns "mysql".
func (d *MySQLDialect) Name() string { return "mysql" }

// QuoteIdentifier quotes a MySQL identifier using backticks.
func (d *MySQLDialect) QuoteIdentifier(s string) string {
	return "`" + strings.ReplaceAll(s, "`", "``") + "`"
}

// Placeholder returns MySQL placeholder format (always "?").
func (d *MySQLDialect) Placeholder(_ int) string {
	return "?"
}

// PagingSQL renders LIMIT/OFFSET.
func (d *MySQLDialect) PagingSQL(limit, offset string) string {
	return "Limit " + limit + " Offset " + offset
}

// TableAliasKeyword returns "As".
func (d *MySQLDialect) TableAliasKeyword() string { return "As" }
