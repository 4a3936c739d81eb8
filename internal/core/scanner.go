package core

import (
	"database/sql"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"
)

// scanner handles reflection-based scanning of SQL rows into structs.
type scanner struct {
	mu    sync.RWMutex
	cache map[reflect.Type]*structInfo
}

// structInfo maps lower-cased column names to field index paths.
type structInfo struct {
	fields map[string][]int
}

func newScanner() *scanner {
	return &scanner{
		cache: make(map[reflect.Type]*structInfo),
	}
}

// globalScanner is the global scanner instance.
var globalScanner = newScanner()

var (
	scannerType = reflect.TypeOf((*sql.Scanner)(nil)).Elem()
	timeType    = reflect.TypeOf(time.Time{})
)

// isStructTarget reports whether rows scan into t field by field rather than
// as a single value.
func isStructTarget(t reflect.Type) bool {
	if t.Kind() != reflect.Struct || t == timeType {
		return false
	}
	return !reflect.PointerTo(t).Implements(scannerType)
}

// getStructInfo returns cached struct metadata or builds it.
func (s *scanner) getStructInfo(typ reflect.Type) *structInfo {
	s.mu.RLock()
	info, ok := s.cache[typ]
	s.mu.RUnlock()
	if ok {
		return info
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if info, ok := s.cache[typ]; ok {
		return info
	}
	info = &structInfo{fields: make(map[string][]int)}
	s.collect(info, typ, nil)
	s.cache[typ] = info
	return info
}

// collect follows the entity column rules: db:"name[,opts]" tags,
// db:"-" skipped, untagged fields use the lower-cased field name and
// untagged embedded structs are flattened.
func (s *scanner) collect(info *structInfo, typ reflect.Type, index []int) {
	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		if !field.IsExported() {
			continue
		}
		fieldIndex := append(append([]int{}, index...), i)

		tag, tagged := field.Tag.Lookup("db")
		if tag == "-" {
			continue
		}
		if field.Anonymous && !tagged && field.Type.Kind() == reflect.Struct {
			s.collect(info, field.Type, fieldIndex)
			continue
		}

		name := field.Name
		if tagged {
			if n, _, _ := strings.Cut(tag, ","); n != "" {
				name = n
			}
		}
		name = strings.ToLower(name)
		if _, exists := info.fields[name]; !exists {
			info.fields[name] = fieldIndex
		}
	}
}

// scanTargets returns the scan destinations of one row into dest, a
// settable struct value. Unmapped columns are discarded.
func (s *scanner) scanTargets(dest reflect.Value, columns []string) []interface{} {
	info := s.getStructInfo(dest.Type())
	targets := make([]interface{}, len(columns))
	for i, col := range columns {
		index, ok := info.fields[strings.ToLower(col)]
		if !ok {
			var discard interface{}
			targets[i] = &discard
			continue
		}
		targets[i] = dest.FieldByIndex(index).Addr().Interface()
	}
	return targets
}

// scanRow scans the current row into a new T.
func scanRow[T any](rows *sql.Rows, columns []string) (T, error) {
	var out T
	v := reflect.ValueOf(&out).Elem()

	// *Struct targets get a fresh struct.
	target := v
	if v.Kind() == reflect.Ptr && isStructTarget(v.Type().Elem()) {
		v.Set(reflect.New(v.Type().Elem()))
		target = v.Elem()
	}

	var dests []interface{}
	if isStructTarget(target.Type()) {
		dests = globalScanner.scanTargets(target, columns)
	} else {
		if len(columns) != 1 {
			return out, fmt.Errorf("scanner: %d columns cannot scan into %T", len(columns), out)
		}
		dests = []interface{}{&out}
	}

	if err := rows.Scan(dests...); err != nil {
		return out, fmt.Errorf("scanner: scan failed: %w", err)
	}
	return out, nil
}

// scanRows scans all rows into a slice of T.
func scanRows[T any](rows *sql.Rows) ([]T, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("scanner: failed to get columns: %w", err)
	}

	items := make([]T, 0)
	for rows.Next() {
		item, err := scanRow[T](rows, columns)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("scanner: rows iteration failed: %w", err)
	}
	return items, nil
}

// scanMapRows scans all rows into maps keyed by column name. []byte values
// are converted to string.
func scanMapRows(rows *sql.Rows) ([]map[string]interface{}, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("scanner: failed to get columns: %w", err)
	}

	out := make([]map[string]interface{}, 0)
	for rows.Next() {
		values := make([]interface{}, len(columns))
		dests := make([]interface{}, len(columns))
		for i := range values {
			dests[i] = &values[i]
		}
		if err := rows.Scan(dests...); err != nil {
			return nil, fmt.Errorf("scanner: scan failed: %w", err)
		}

		row := make(map[string]interface{}, len(columns))
		for i, col := range columns {
			if b, ok := values[i].([]byte); ok {
				row[col] = string(b)
				continue
			}
			row[col] = values[i]
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("scanner: rows iteration failed: %w", err)
	}
	return out, nil
}
