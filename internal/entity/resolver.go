// Package entity resolves Go struct types into table and column names and
// tracks the per-query aliases assigned to them.
package entity

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
)

// ErrUnknownColumn is returned when a field cannot be resolved on an entity type.
var ErrUnknownColumn = errors.New("unknown entity column")

// TypeRef identifies an entity type.
type TypeRef struct {
	Type reflect.Type
}

// ColumnRef is a typed reference to a struct field of an entity.
// It stands in for a compile-time column accessor.
type ColumnRef struct {
	Type  reflect.Type
	Field string
}

// Table returns a TypeRef for T. Pointer types are dereferenced.
func Table[T any]() TypeRef {
	return TypeRef{Type: typeOf[T]()}
}

// Column returns a ColumnRef for the named field of T.
//
//	entity.Column[User]("CreatedAt")
func Column[T any](field string) ColumnRef {
	return ColumnRef{Type: typeOf[T](), Field: field}
}

// IsZero reports whether the reference is unset.
func (c ColumnRef) IsZero() bool {
	return c.Type == nil || c.Field == ""
}

func typeOf[T any]() reflect.Type {
	t := reflect.TypeOf((*T)(nil)).Elem()
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t
}

// Resolver maps entity types and fields to physical names.
type Resolver interface {
	// ResolveColumn returns the column name for the struct field.
	ResolveColumn(t reflect.Type, field string) (string, error)
	// TableName returns the table name for the entity type.
	TableName(t reflect.Type) string
	// Schema returns the schema of the entity type, or "".
	Schema(t reflect.Type) string
}

// TableNamer lets an entity override its table name.
type TableNamer interface {
	TableName() string
}

// SchemaNamer lets an entity declare its schema.
type SchemaNamer interface {
	SchemaName() string
}

// TagResolver resolves columns from `db:"..."` struct tags.
//
// Rules:
//   - db:"column" or db:"column,pk" maps to column.
//   - db:"-" fields are not columns.
//   - Fields without a db tag use the lower-cased field name.
type TagResolver struct {
	mu    sync.RWMutex
	cache map[reflect.Type]*typeInfo
}

type typeInfo struct {
	table   string
	schema  string
	columns map[string]string // field name -> column
}

// NewTagResolver creates a resolver with an empty metadata cache.
func NewTagResolver() *TagResolver {
	return &TagResolver{cache: make(map[reflect.Type]*typeInfo)}
}

// ResolveColumn returns the column for field on t.
func (r *TagResolver) ResolveColumn(t reflect.Type, field string) (string, error) {
	info, err := r.info(t)
	if err != nil {
		return "", err
	}
	col, ok := info.columns[field]
	if !ok {
		return "", fmt.Errorf("%w: %s.%s", ErrUnknownColumn, t.Name(), field)
	}
	return col, nil
}

// TableName returns the table name of t.
func (r *TagResolver) TableName(t reflect.Type) string {
	info, err := r.info(t)
	if err != nil {
		return DefaultTableName(t)
	}
	return info.table
}

// Schema returns the schema of t, or "".
func (r *TagResolver) Schema(t reflect.Type) string {
	info, err := r.info(t)
	if err != nil {
		return ""
	}
	return info.schema
}

// info returns cached type metadata or builds it.
func (r *TagResolver) info(t reflect.Type) (*typeInfo, error) {
	if t == nil {
		return nil, fmt.Errorf("%w: nil type", ErrUnknownColumn)
	}
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	// Fast path: check cache with read lock
	r.mu.RLock()
	info, ok := r.cache[t]
	r.mu.RUnlock()
	if ok {
		return info, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Double-check after acquiring write lock
	if info, ok := r.cache[t]; ok {
		return info, nil
	}

	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%w: %s is not a struct", ErrUnknownColumn, t)
	}

	info = &typeInfo{
		table:   DefaultTableName(t),
		columns: make(map[string]string),
	}
	if s, ok := reflect.New(t).Interface().(SchemaNamer); ok {
		info.schema = s.SchemaName()
	}
	collectColumns(t, info.columns)

	r.cache[t] = info
	return info, nil
}

// collectColumns walks exported fields, descending into embedded structs.
func collectColumns(t reflect.Type, columns map[string]string) {
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}

		tag, hasTag := field.Tag.Lookup("db")
		if field.Anonymous && field.Type.Kind() == reflect.Struct && !hasTag {
			collectColumns(field.Type, columns)
			continue
		}

		column := strings.ToLower(field.Name)
		if hasTag {
			column = parseDBTag(tag)
			if column == "-" {
				continue
			}
			if column == "" {
				column = strings.ToLower(field.Name)
			}
		}
		columns[field.Name] = column
	}
}

// parseDBTag extracts the column name from "column[,option...]".
func parseDBTag(tag string) string {
	parts := strings.Split(tag, ",")
	return strings.TrimSpace(parts[0])
}

// DefaultTableName determines the table name of an entity type: the
// TableName() method when present, otherwise the lower-cased type name with a
// naive plural "s".
func DefaultTableName(t reflect.Type) string {
	if t == nil {
		return ""
	}
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	if tn, ok := reflect.New(t).Interface().(TableNamer); ok {
		return tn.TableName()
	}
	if tn, ok := reflect.Zero(t).Interface().(TableNamer); ok {
		return tn.TableName()
	}

	name := t.Name()
	if !strings.HasSuffix(name, "s") {
		name += "s"
	}
	return strings.ToLower(name)
}
