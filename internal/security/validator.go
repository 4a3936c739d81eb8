// Package security rejects rendered statements carrying injection patterns.
// Values bound through parameters are never inlined, so only raw fragments
// appended with AppendSQL can introduce them.
package security

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrUnsafeQuery is returned for a statement matching a dangerous pattern.
var ErrUnsafeQuery = errors.New("unsafe SQL pattern")

// Validator checks statements against dangerous patterns.
type Validator struct {
	patterns []pattern
	strict   bool
}

type pattern struct {
	name string
	re   *regexp.Regexp
}

// ValidatorOption configures the Validator.
type ValidatorOption func(*Validator)

// WithStrict also rejects any Union and Exec. A query rendered by the
// builder never contains them, so strict mode only limits raw fragments.
func WithStrict(strict bool) ValidatorOption {
	return func(v *Validator) {
		v.strict = strict
	}
}

// dangerousPatterns are matched against the upper-cased statement.
var dangerousPatterns = [][2]string{
	{"line comment", `--[\s]`},
	{"block comment", `/\*.*\*/`},
	{"mysql comment", `#[\s]`},
	{"stacked statement", `;\s*(DROP|DELETE|TRUNCATE|ALTER|CREATE|INSERT|UPDATE)\s+`},
	{"union select", `UNION\s+(ALL\s+)?SELECT`},
	{"command execution", `XP_CMDSHELL|SP_EXECUTESQL|\bEXEC(UTE)?\s*\(|\bEXEC\s+(XP|SP)_`},
	{"schema access", `INFORMATION_SCHEMA`},
	{"timing attack", `PG_SLEEP\s*\(|BENCHMARK\s*\(|WAITFOR\s+DELAY`},
	{"tautology", `\s+OR\s+1\s*=\s*1\b|\s+OR\s+'1'\s*=\s*'1'`},
}

var strictPatterns = [][2]string{
	{"union", `\bUNION\b`},
	{"exec", `\bEXEC(UTE)?\b`},
}

// NewValidator creates a validator with the default patterns.
func NewValidator(opts ...ValidatorOption) *Validator {
	v := &Validator{}
	for _, opt := range opts {
		opt(v)
	}

	v.patterns = compilePatterns(dangerousPatterns)
	if v.strict {
		v.patterns = append(v.patterns, compilePatterns(strictPatterns)...)
	}
	return v
}

// ValidateQuery returns ErrUnsafeQuery naming the first matched pattern.
func (v *Validator) ValidateQuery(query string) error {
	normalized := strings.ToUpper(query)
	for _, p := range v.patterns {
		if p.re.MatchString(normalized) {
			return fmt.Errorf("%w: %s", ErrUnsafeQuery, p.name)
		}
	}
	return nil
}

func compilePatterns(src [][2]string) []pattern {
	out := make([]pattern, len(src))
	for i, p := range src {
		out[i] = pattern{name: p[0], re: regexp.MustCompile(p[1])}
	}
	return out
}
