package dialects

// GenericDialect renders identifiers verbatim. It is useful for logging,
// tests and databases that are case-insensitive with unquoted names.
type GenericDialect struct{}

func init() {
	RegisterDialect("generic", &GenericDialect{})
}

// Name returns "generic".
func (d *GenericDialect) Name() string { return "generic" }

// QuoteIdentifier returns the identifier unchanged.
func (d *GenericDialect) QuoteIdentifier(s string) string {
	return s
}

// Placeholder returns "?" for every index.
func (d *GenericDialect) Placeholder(_ int) string {
	return "?"
}

// PagingSQL renders ANSI-style LIMIT/OFFSET.
func (d *GenericDialect) PagingSQL(limit, offset string) string {
	return "Limit " + limit + " Offset " + offset
}

// TableAliasKeyword returns "As".
func (d *GenericDialect) TableAliasKeyword() string { return "As" }
