package dialects

import (
	"strconv"
	"strings"
)

// SQLServerDialect implements SQL Server quoting and OFFSET/FETCH paging.
// SQL Server requires an ORDER BY before OFFSET, which the builder enforces
// for every paged query anyway.
type SQLServerDialect struct{}

func init() {
	RegisterDialect("sqlserver", &SQLServerDialect{})
	RegisterDialect("mssql", &SQLServerDialect{})
}

// Name returns "sqlserver".
func (d *SQLServerDialect) Name() string { return "sqlserver" }

// QuoteIdentifier quotes a SQL Server identifier using square brackets.
func (d *SQLServerDialect) QuoteIdentifier(s string) string {
	return "[" + strings.ReplaceAll(s, "]", "]]") + "]"
}

// Placeholder returns SQL Server placeholder format (@p1, @p2, etc.).
func (d *SQLServerDialect) Placeholder(index int) string {
	return "@p" + strconv.Itoa(index)
}

// PagingSQL renders OFFSET ... ROWS FETCH NEXT ... ROWS ONLY.
func (d *SQLServerDialect) PagingSQL(limit, offset string) string {
	return "Offset " + offset + " Rows Fetch Next " + limit + " Rows Only"
}

// TableAliasKeyword returns "As".
func (d *SQLServerDialect) TableAliasKeyword() string { return "As" }
