package core

import (
	"errors"

	"github.com/coregx/sqlquery/internal/clause"
	"github.com/coregx/sqlquery/internal/dialects"
	"github.com/coregx/sqlquery/internal/entity"
)

// Errors returned by query building and execution. Test with errors.Is.
var (
	// ErrInvalidState is returned when the query cannot be rendered for the
	// requested operation, e.g. paging without an Order By clause.
	ErrInvalidState = clause.ErrInvalidState
	// ErrConflictingAlias is returned when one entity type is registered
	// under two different aliases.
	ErrConflictingAlias = entity.ErrConflictingAlias
	// ErrDuplicateParameter is returned when one parameter name is bound to
	// two different values.
	ErrDuplicateParameter = clause.ErrDuplicateParameter
	// ErrUnknownColumn is returned when a field cannot be resolved on an entity.
	ErrUnknownColumn = entity.ErrUnknownColumn
	// ErrUnsupportedDialect is returned for an unregistered dialect name.
	ErrUnsupportedDialect = dialects.ErrUnsupportedDialect
	// ErrMissingConnection is returned when no connection was supplied and
	// the query has no database to obtain one from.
	ErrMissingConnection = errors.New("no database connection available")
	// ErrMissingParameter is returned when SQL refers to an unbound parameter.
	ErrMissingParameter = errors.New("missing query parameter")
	// ErrNoRows is returned when a query that expects a row returns none.
	ErrNoRows = errors.New("no rows in result set")
)

// WrapError wraps an error with additional context message.
func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return &wrappedError{
		msg: message,
		err: err,
	}
}

type wrappedError struct {
	msg string
	err error
}

func (e *wrappedError) Error() string {
	return e.msg + ": " + e.err.Error()
}

func (e *wrappedError) Unwrap() error {
	return e.err
}
