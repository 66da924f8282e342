package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

// builder renders statements in the SQLite dialect.
var builder = entsql.Dialect(dialect.SQLite)

// dbtx is satisfied by *sql.DB and *sql.Tx.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// querier renders a statement and its arguments.
type querier interface {
	Query() (string, []any)
}

// scanner is implemented by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// exec runs a statement and returns the number of affected rows.
func exec(ctx context.Context, db dbtx, q querier) (int64, error) {
	query, args := q.Query()
	res, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// queryAll runs a select and scans every row with scan. Rows are drained
// and closed before returning.
func queryAll[T any](ctx context.Context, db dbtx, q querier, scan func(scanner) (T, error)) ([]T, error) {
	query, args := q.Query()
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []T
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// queryOne runs a select expected to match a single row.
func queryOne[T any](ctx context.Context, db dbtx, q querier, scan func(scanner) (T, error)) (T, error) {
	var zero T
	all, err := queryAll(ctx, db, q, scan)
	if err != nil {
		return zero, err
	}
	if len(all) == 0 {
		return zero, ErrNotFound
	}
	return all[0], nil
}

// insertNew inserts a row and reports ErrConflict if the id is taken.
func insertNew(ctx context.Context, db dbtx, ins *entsql.InsertBuilder) error {
	n, err := exec(ctx, db, ins.OnConflict(entsql.ConflictColumns("id"), entsql.DoNothing()))
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrConflict
	}
	return nil
}

// mustAffect turns a zero row count into ErrNotFound.
func mustAffect(n int64, err error) error {
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func encodeJSON(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("marshal json column: %w", err)
	}
	return string(b), nil
}

func decodeJSON(raw string, v any) error {
	if raw == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return fmt.Errorf("unmarshal json column: %w", err)
	}
	return nil
}
