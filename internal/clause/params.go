package clause

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strconv"
)

// ErrDuplicateParameter is returned when one parameter name is bound to two
// different values.
var ErrDuplicateParameter = errors.New("duplicate query parameter")

// Params represents named parameter values for query binding.
// Named parameters are written in SQL as {:name}.
type Params map[string]interface{}

// NamedPlaceholderRegex matches named parameter placeholders {:name}.
var NamedPlaceholderRegex = regexp.MustCompile(`\{:(\w+)\}`)

// Placeholder renders the named placeholder for name.
func Placeholder(name string) string {
	return "{:" + name + "}"
}

// ParamSet holds the parameters bound by one clause. Generated names share
// the set's prefix, so sets with distinct prefixes never collide on
// generated names.
type ParamSet struct {
	prefix string
	next   int
	values Params
}

// NewParamSet creates an empty set generating names "<prefix><n>".
func NewParamSet(prefix string) *ParamSet {
	return &ParamSet{prefix: prefix, values: make(Params)}
}

// Add binds value under a generated name and returns the name. Names already
// bound explicitly through Set are skipped.
func (p *ParamSet) Add(value interface{}) string {
	for {
		name := p.prefix + strconv.Itoa(p.next)
		p.next++
		if _, taken := p.values[name]; taken {
			continue
		}
		p.values[name] = value
		return name
	}
}

// Set binds value under an explicit name. Rebinding a name to an equal value
// is a no-op; a different value returns ErrDuplicateParameter.
func (p *ParamSet) Set(name string, value interface{}) error {
	if existing, ok := p.values[name]; ok {
		if reflect.DeepEqual(existing, value) {
			return nil
		}
		return fmt.Errorf("%w: %s", ErrDuplicateParameter, name)
	}
	p.values[name] = value
	return nil
}

// Len returns the number of bound parameters.
func (p *ParamSet) Len() int {
	return len(p.values)
}

// Values returns a copy of the bound parameters.
func (p *ParamSet) Values() Params {
	out := make(Params, len(p.values))
	for k, v := range p.values {
		out[k] = v
	}
	return out
}

// Clear removes all parameters and restarts name generation.
func (p *ParamSet) Clear() {
	p.next = 0
	p.values = make(Params)
}

// Clone returns an independent copy.
func (p *ParamSet) Clone() *ParamSet {
	return &ParamSet{prefix: p.prefix, next: p.next, values: p.Values()}
}

// MergeParams merges parameter maps into one. A name bound to different
// values in two maps returns ErrDuplicateParameter.
func MergeParams(sets ...Params) (Params, error) {
	out := make(Params)
	for _, set := range sets {
		for name, value := range set {
			if existing, ok := out[name]; ok && !reflect.DeepEqual(existing, value) {
				return nil, fmt.Errorf("%w: %s", ErrDuplicateParameter, name)
			}
			out[name] = value
		}
	}
	return out, nil
}
