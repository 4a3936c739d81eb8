package entity

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

// ErrConflictingAlias is returned when an entity is registered under a second,
// different alias.
var ErrConflictingAlias = errors.New("conflicting entity alias")

// AliasRegister maps entity identities to the aliases used in one query.
// Keys are reflect.Type values for entities or table names as strings.
//
// An AliasRegister is not safe for concurrent mutation. Clone it to give
// another query its own copy.
type AliasRegister struct {
	aliases map[any]string
}

// NewAliasRegister creates an empty register.
func NewAliasRegister() *AliasRegister {
	return &AliasRegister{aliases: make(map[any]string)}
}

// Register assigns alias to key. Registering the same alias again is a no-op;
// a different alias for the same key returns ErrConflictingAlias. An empty
// alias is ignored.
func (r *AliasRegister) Register(key any, alias string) error {
	alias = strings.TrimSpace(alias)
	if alias == "" || key == nil {
		return nil
	}
	key = normalizeKey(key)

	if existing, ok := r.aliases[key]; ok {
		if existing == alias {
			return nil
		}
		return fmt.Errorf("%w: %v is %q, cannot register %q", ErrConflictingAlias, key, existing, alias)
	}
	r.aliases[key] = alias
	return nil
}

// Lookup returns the alias registered for key.
func (r *AliasRegister) Lookup(key any) (string, bool) {
	if key == nil {
		return "", false
	}
	alias, ok := r.aliases[normalizeKey(key)]
	return alias, ok
}

// Resolve returns the registered alias for key, falling back to the table
// name for entity types and to the key itself for table names. Entity table
// names come from resolver, or DefaultTableName when resolver is nil.
func (r *AliasRegister) Resolve(key any, resolver Resolver) string {
	if alias, ok := r.Lookup(key); ok {
		return alias
	}
	tableName := DefaultTableName
	if resolver != nil {
		tableName = resolver.TableName
	}
	switch k := key.(type) {
	case TypeRef:
		return tableName(derefType(k.Type))
	case reflect.Type:
		return tableName(derefType(k))
	case string:
		return strings.TrimSpace(k)
	default:
		return ""
	}
}

// Len returns the number of registered aliases.
func (r *AliasRegister) Len() int {
	return len(r.aliases)
}

// Clone returns an independent copy of the register.
func (r *AliasRegister) Clone() *AliasRegister {
	aliases := make(map[any]string, len(r.aliases))
	for k, v := range r.aliases {
		aliases[k] = v
	}
	return &AliasRegister{aliases: aliases}
}

func normalizeKey(key any) any {
	switch k := key.(type) {
	case TypeRef:
		return derefType(k.Type)
	case reflect.Type:
		return derefType(k)
	case string:
		return strings.ToLower(strings.TrimSpace(k))
	default:
		return key
	}
}

func derefType(t reflect.Type) reflect.Type {
	for t != nil && t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t
}
