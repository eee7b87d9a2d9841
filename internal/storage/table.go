package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// scanner is implemented by *sql.Row and *sql.Rows
type scanner interface {
	Scan(dest ...interface{}) error
}

// tableSpec describes how one entity maps onto its table
type tableSpec[T any] struct {
	name    string
	columns []string // persisted columns in order, excluding id
	values  func(row *T) []interface{}
	scan    func(s scanner) (*T, error)
	id      func(row *T) *int64
}

func (ts *tableSpec[T]) selectList() string {
	return "id, " + strings.Join(ts.columns, ", ")
}

// sqlTable implements Repository over a querier, which is either the
// database or an open transaction.
type sqlTable[T any] struct {
	spec *tableSpec[T]
	q    querier
}

func newTable[T any](spec *tableSpec[T], q querier) *sqlTable[T] {
	return &sqlTable[T]{spec: spec, q: q}
}

// storageErr marks a driver failure as ErrStorageFailure while keeping the cause
func storageErr(op, table string, err error) error {
	return fmt.Errorf("failed to %s %s: %w: %w", op, table, ErrStorageFailure, err)
}

func (t *sqlTable[T]) Find(ctx context.Context, field Field[T], value interface{}) (*T, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s = ? ORDER BY id LIMIT 1",
		t.spec.selectList(), t.spec.name, field.column)
	row, err := t.spec.scan(t.q.QueryRowContext(ctx, query, value))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s with %s=%v: %w", t.spec.name, field.column, value, ErrNotFound)
	}
	if err != nil {
		return nil, storageErr("read", t.spec.name, err)
	}
	return row, nil
}

func (t *sqlTable[T]) FindAll(ctx context.Context, field Field[T], value interface{}) ([]*T, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s = ? ORDER BY id",
		t.spec.selectList(), t.spec.name, field.column)
	return t.query(ctx, query, value)
}

func (t *sqlTable[T]) List(ctx context.Context) ([]*T, error) {
	query := fmt.Sprintf("SELECT %s FROM %s ORDER BY id", t.spec.selectList(), t.spec.name)
	return t.query(ctx, query)
}

func (t *sqlTable[T]) query(ctx context.Context, query string, args ...interface{}) ([]*T, error) {
	rows, err := t.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storageErr("query", t.spec.name, err)
	}
	defer func() { _ = rows.Close() }()

	var out []*T
	for rows.Next() {
		row, err := t.spec.scan(rows)
		if err != nil {
			return nil, storageErr("scan", t.spec.name, err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("iterate", t.spec.name, err)
	}
	return out, nil
}

func (t *sqlTable[T]) Count(ctx context.Context, field Field[T], value interface{}) (int, error) {
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE %s = ?", t.spec.name, field.column)
	var n int
	if err := t.q.QueryRowContext(ctx, query, value).Scan(&n); err != nil {
		return 0, storageErr("count", t.spec.name, err)
	}
	return n, nil
}

func (t *sqlTable[T]) Insert(ctx context.Context, row *T) error {
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(t.spec.columns)), ", ")
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		t.spec.name, strings.Join(t.spec.columns, ", "), placeholders)

	result, err := t.q.ExecContext(ctx, query, t.spec.values(row)...)
	if err != nil {
		return storageErr("insert into", t.spec.name, err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return storageErr("read id from", t.spec.name, err)
	}
	*t.spec.id(row) = id
	return nil
}

func (t *sqlTable[T]) Update(ctx context.Context, row *T) error {
	sets := make([]string, len(t.spec.columns))
	for i, c := range t.spec.columns {
		sets[i] = c + " = ?"
	}
	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = ?", t.spec.name, strings.Join(sets, ", "))
	args := append(t.spec.values(row), *t.spec.id(row))
	return t.expectOne(ctx, query, args...)
}

func (t *sqlTable[T]) UpdateByID(ctx context.Context, id int64, patch ...Assignment[T]) error {
	set, args := t.setClause(patch)
	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = ?", t.spec.name, set)
	return t.expectOne(ctx, query, append(args, id)...)
}

func (t *sqlTable[T]) UpdateWhere(ctx context.Context, field Field[T], value interface{}, patch ...Assignment[T]) (int, error) {
	set, args := t.setClause(patch)
	query := fmt.Sprintf("UPDATE %s SET %s WHERE %s = ?", t.spec.name, set, field.column)
	return t.exec(ctx, "update", query, append(args, value)...)
}

func (t *sqlTable[T]) DeleteByID(ctx context.Context, id int64) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE id = ?", t.spec.name)
	return t.expectOne(ctx, query, id)
}

func (t *sqlTable[T]) DeleteWhere(ctx context.Context, field Field[T], value interface{}) (int, error) {
	query := fmt.Sprintf("DELETE FROM %s WHERE %s = ?", t.spec.name, field.column)
	return t.exec(ctx, "delete from", query, value)
}

// setClause renders a patch. Every write marks the row dirty unless the
// patch sets sync_status itself.
func (t *sqlTable[T]) setClause(patch []Assignment[T]) (string, []interface{}) {
	sets := make([]string, 0, len(patch)+1)
	args := make([]interface{}, 0, len(patch)+1)
	touched := false
	for _, a := range patch {
		sets = append(sets, a.field.column+" = ?")
		args = append(args, a.value)
		if a.field.column == syncColumn {
			touched = true
		}
	}
	if !touched {
		sets = append(sets, syncColumn+" = ?")
		args = append(args, 0)
	}
	return strings.Join(sets, ", "), args
}

func (t *sqlTable[T]) exec(ctx context.Context, op, query string, args ...interface{}) (int, error) {
	result, err := t.q.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, storageErr(op, t.spec.name, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, storageErr(op, t.spec.name, err)
	}
	return int(n), nil
}

func (t *sqlTable[T]) expectOne(ctx context.Context, query string, args ...interface{}) error {
	n, err := t.exec(ctx, "write", query, args...)
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s row: %w", t.spec.name, ErrNotFound)
	}
	return nil
}
