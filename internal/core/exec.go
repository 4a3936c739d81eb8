package core

import (
	"context"
	"database/sql"

	"github.com/coregx/sqlquery/internal/dialects"
)

// Conn executes statements. *sql.DB, *sql.Conn, *sql.Tx and *DB satisfy it.
type Conn interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// Executor runs a rendered statement on conn. sql carries named {:name}
// placeholders whose values are in params.
type Executor[T any] func(ctx context.Context, conn Conn, sql string, params Params) (T, error)

// query binds sql for d and runs it on conn.
func query(ctx context.Context, d dialects.Dialect, conn Conn, sql string, params Params) (*sql.Rows, error) {
	bound, args, err := Bind(d, sql, params)
	if err != nil {
		return nil, err
	}
	return conn.QueryContext(ctx, bound, args...)
}

// ScanAll returns an executor scanning every row into T. T is a struct
// (columns matched by db tag), a pointer to one, or a single-column scalar.
func ScanAll[T any](d dialects.Dialect) Executor[[]T] {
	return func(ctx context.Context, conn Conn, sql string, params Params) ([]T, error) {
		rows, err := query(ctx, d, conn, sql, params)
		if err != nil {
			return nil, err
		}
		defer func() { _ = rows.Close() }()
		return scanRows[T](rows)
	}
}

// ScanOne returns an executor scanning the first row into T. ErrNoRows is
// returned when there is none.
func ScanOne[T any](d dialects.Dialect) Executor[T] {
	return func(ctx context.Context, conn Conn, sql string, params Params) (T, error) {
		var zero T
		rows, err := query(ctx, d, conn, sql, params)
		if err != nil {
			return zero, err
		}
		defer func() { _ = rows.Close() }()

		columns, err := rows.Columns()
		if err != nil {
			return zero, err
		}
		if !rows.Next() {
			if err := rows.Err(); err != nil {
				return zero, err
			}
			return zero, ErrNoRows
		}
		return scanRow[T](rows, columns)
	}
}

// ScanScalar returns an executor reading the single value of the first row,
// e.g. a Count(*).
func ScanScalar[T any](d dialects.Dialect) Executor[T] {
	return ScanOne[T](d)
}

// ScanMaps returns an executor scanning every row into a column-keyed map.
func ScanMaps(d dialects.Dialect) Executor[[]map[string]interface{}] {
	return func(ctx context.Context, conn Conn, sql string, params Params) ([]map[string]interface{}, error) {
		rows, err := query(ctx, d, conn, sql, params)
		if err != nil {
			return nil, err
		}
		defer func() { _ = rows.Close() }()
		return scanMapRows(rows)
	}
}

// Exec returns an executor running a statement that returns no rows.
func Exec(d dialects.Dialect) Executor[sql.Result] {
	return func(ctx context.Context, conn Conn, sql string, params Params) (sql.Result, error) {
		bound, args, err := Bind(d, sql, params)
		if err != nil {
			return nil, err
		}
		return conn.ExecContext(ctx, bound, args...)
	}
}
