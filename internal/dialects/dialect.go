// Package dialects provides database-specific SQL dialect implementations for
// PostgreSQL, MySQL, SQLite and SQL Server, plus an unquoted generic dialect.
// A dialect handles identifier quoting, positional placeholders and paging syntax.
package dialects

import (
	"errors"
	"strings"
	"sync"
)

// ErrUnsupportedDialect is returned when no dialect is registered under a name.
var ErrUnsupportedDialect = errors.New("unsupported database dialect")

// Dialect defines database-specific behaviors.
type Dialect interface {
	// Name returns the canonical dialect name.
	Name() string
	// QuoteIdentifier quotes a single identifier part.
	QuoteIdentifier(string) string
	// Placeholder returns the positional placeholder for the 1-based index.
	Placeholder(int) string
	// PagingSQL renders the paging fragment from already rendered limit and
	// offset placeholders.
	PagingSQL(limit, offset string) string
	// TableAliasKeyword returns the keyword placed between a table and its alias.
	TableAliasKeyword() string
}

var (
	mu       sync.RWMutex
	dialects = make(map[string]Dialect)
)

// RegisterDialect registers a database dialect by driver name.
func RegisterDialect(name string, d Dialect) {
	mu.Lock()
	defer mu.Unlock()
	dialects[strings.ToLower(name)] = d
}

// Lookup retrieves a registered dialect by driver name.
func Lookup(name string) (Dialect, error) {
	mu.RLock()
	defer mu.RUnlock()
	if d, ok := dialects[strings.ToLower(name)]; ok {
		return d, nil
	}
	return nil, errors.Join(ErrUnsupportedDialect, errors.New(name))
}

// GetDialect retrieves a registered dialect by driver name, panics if not found.
func GetDialect(name string) Dialect {
	d, err := Lookup(name)
	if err != nil {
		panic("unsupported dialect: " + name)
	}
	return d
}

// SafeName quotes a possibly qualified name such as "schema.table" or
// "u.name" part by part. A trailing " as alias" (any casing) is preserved with
// the alias quoted too. "*" parts and names that already contain quoting,
// parentheses or spaces are left untouched.
func SafeName(d Dialect, name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}

	if column, alias, ok := splitAlias(name); ok {
		return SafeName(d, column) + " As " + quotePart(d, alias)
	}

	if strings.ContainsAny(name, "()'\"`[] ") {
		return name
	}

	parts := strings.Split(name, ".")
	for i, part := range parts {
		parts[i] = quotePart(d, part)
	}
	return strings.Join(parts, ".")
}

func quotePart(d Dialect, part string) string {
	part = strings.TrimSpace(part)
	if part == "*" || part == "" {
		return part
	}
	return d.QuoteIdentifier(part)
}

// splitAlias splits "column as alias" into its two halves.
func splitAlias(name string) (column, alias string, ok bool) {
	lower := strings.ToLower(name)
	idx := strings.LastIndex(lower, " as ")
	if idx <= 0 {
		return "", "", false
	}
	column = strings.TrimSpace(name[:idx])
	alias = strings.TrimSpace(name[idx+4:])
	if column == "" || alias == "" || strings.Contains(alias, " ") {
		return "", "", false
	}
	return column, alias, true
}
