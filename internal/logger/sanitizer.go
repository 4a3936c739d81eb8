package logger

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// DefaultMask replaces sensitive parameter values in log output.
const DefaultMask = "***REDACTED***"

// Sanitizer masks sensitive query parameters before they are logged.
//
// A parameter is sensitive when its name contains a sensitive field as an
// underscore-separated token ("password", "user_password", "password_hash"),
// or when the statement mentions a sensitive column at all; generated names
// such as "_p_w0" carry no meaning, so the statement decides for them.
type Sanitizer struct {
	sensitiveFields []string
	maskValue       string
	patterns        []*regexp.Regexp
}

// NewSanitizer creates a sanitizer for the given field names. With no fields
// a default set of common secrets is used.
func NewSanitizer(sensitiveFields []string) *Sanitizer {
	if len(sensitiveFields) == 0 {
		sensitiveFields = []string{
			"password", "passwd", "pwd",
			"token", "api_key", "apikey", "api_token",
			"secret", "auth", "authorization",
			"credit_card", "card_number", "cvv", "cvc",
			"ssn", "social_security",
			"private_key", "priv_key",
		}
	}

	fields := make([]string, len(sensitiveFields))
	patterns := make([]*regexp.Regexp, 0, len(sensitiveFields))
	for i, field := range sensitiveFields {
		fields[i] = strings.ToLower(field)
		patterns = append(patterns, regexp.MustCompile(`(?i)\b`+regexp.QuoteMeta(field)+`\b`))
	}

	return &Sanitizer{
		sensitiveFields: fields,
		maskValue:       DefaultMask,
		patterns:        patterns,
	}
}

// IsSensitiveName reports whether a parameter name denotes a secret.
func (s *Sanitizer) IsSensitiveName(name string) bool {
	name = "_" + strings.Trim(strings.ToLower(name), "_") + "_"
	for _, field := range s.sensitiveFields {
		if strings.Contains(name, "_"+field+"_") {
			return true
		}
	}
	return false
}

// IsSensitiveSQL reports whether sql mentions a sensitive column.
func (s *Sanitizer) IsSensitiveSQL(sql string) bool {
	for _, pattern := range s.patterns {
		if pattern.MatchString(sql) {
			return true
		}
	}
	return false
}

// MaskParams returns a copy of params with sensitive values masked, and
// whether anything was masked. params is not modified.
func (s *Sanitizer) MaskParams(sql string, params map[string]any) (map[string]any, bool) {
	if len(params) == 0 {
		return params, false
	}

	all := s.IsSensitiveSQL(sql)
	masked := make(map[string]any, len(params))
	changed := false
	for name, value := range params {
		if all || s.IsSensitiveName(name) {
			masked[name] = s.maskValue
			changed = true
			continue
		}
		masked[name] = value
	}
	return masked, changed
}

// FormatParams renders params as "{a=1, b=x}" in name order. Long values
// are truncated. Mask sensitive values with MaskParams first.
func (s *Sanitizer) FormatParams(params map[string]any) string {
	if len(params) == 0 {
		return "{}"
	}

	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = name + "=" + s.formatValue(params[name])
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

func (s *Sanitizer) formatValue(v any) string {
	if v == nil {
		return "NULL"
	}

	str := fmt.Sprintf("%v", v)

	const maxLen = 100
	if len(str) > maxLen {
		return str[:maxLen] + "..."
	}
	return str
}
