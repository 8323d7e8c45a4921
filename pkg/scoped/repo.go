package scoped

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// DB is satisfied by *sql.DB and *sql.Tx.
type DB interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Repo is a SQL-backed Store.
type Repo[T any] struct {
	db    DB
	table Table[T]
}

var _ Store[struct{}] = (*Repo[struct{}])(nil)

// NewRepo returns a repository for table over db.
func NewRepo[T any](db DB, table Table[T]) (*Repo[T], error) {
	if db == nil {
		return nil, errors.New("scoped: db is required")
	}
	if err := table.validate(); err != nil {
		return nil, err
	}
	return &Repo[T]{db: db, table: table}, nil
}

// MustRepo is NewRepo that panics on an invalid table definition.
func MustRepo[T any](db DB, table Table[T]) *Repo[T] {
	r, err := NewRepo(db, table)
	if err != nil {
		panic(err)
	}
	return r
}

// Table returns the table definition.
func (r *Repo[T]) Table() Table[T] {
	return r.table
}

func (r *Repo[T]) Query(ctx context.Context, conds ...Cond) ([]T, error) {
	return r.QueryIn(ctx, FromContext(ctx), conds...)
}

func (r *Repo[T]) QueryAll(ctx context.Context, conds ...Cond) ([]T, error) {
	return r.QueryIn(ctx, Scope{}, conds...)
}

// QueryIn returns the rows visible in scope matching conds.
func (r *Repo[T]) QueryIn(ctx context.Context, scope Scope, conds ...Cond) ([]T, error) {
	if err := r.table.checkConds(conds); err != nil {
		return nil, err
	}

	query, args := r.selectSQL(scope, conds)
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", r.table.Name, err)
	}
	defer rows.Close()

	var out []T
	for rows.Next() {
		row, err := r.table.Scan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", r.table.Name, err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query %s: %w", r.table.Name, err)
	}
	return out, nil
}

func (r *Repo[T]) Get(ctx context.Context, id uuid.UUID) (T, error) {
	var zero T
	query, args := r.selectSQL(FromContext(ctx), []Cond{Eq(r.table.key(), id)})
	row, err := r.table.Scan(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return zero, ErrNotFound
		}
		return zero, fmt.Errorf("get %s: %w", r.table.Name, err)
	}
	return row, nil
}

func (r *Repo[T]) Insert(ctx context.Context, row T) error {
	values := r.table.Values(row)
	if len(values) != len(r.table.Columns) {
		return fmt.Errorf("%w: %s has %d columns, got %d values",
			ErrInvalidTable, r.table.Name, len(r.table.Columns), len(values))
	}

	placeholders := make([]string, len(values))
	for i := range values {
		placeholders[i] = "$" + strconv.Itoa(i+1)
	}
	query := "INSERT INTO " + r.table.Name +
		" (" + strings.Join(r.table.Columns, ", ") + ") VALUES (" +
		strings.Join(placeholders, ", ") + ")"

	if _, err := r.db.ExecContext(ctx, query, values...); err != nil {
		return fmt.Errorf("insert %s: %w", r.table.Name, err)
	}
	return nil
}

func (r *Repo[T]) Update(ctx context.Context, row T) error {
	values := r.table.Values(row)
	if len(values) != len(r.table.Columns) {
		return fmt.Errorf("%w: %s has %d columns, got %d values",
			ErrInvalidTable, r.table.Name, len(r.table.Columns), len(values))
	}

	var (
		sets []string
		args []any
	)
	for i, col := range r.table.Columns {
		if i == 0 || col == r.table.TenantColumn {
			continue
		}
		args = append(args, values[i])
		sets = append(sets, col+" = $"+strconv.Itoa(len(args)))
	}
	if len(sets) == 0 {
		return fmt.Errorf("%w: %s has no updatable columns", ErrInvalidTable, r.table.Name)
	}

	conds := []Cond{Eq(r.table.key(), r.table.ID(row))}
	if r.table.Scoped() {
		conds = append(conds, Eq(r.table.TenantColumn, r.table.TenantOf(row)))
	}
	where, args := r.whereSQL(FromContext(ctx), conds, args...)
	query := "UPDATE " + r.table.Name + " SET " + strings.Join(sets, ", ") + where

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update %s: %w", r.table.Name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update %s: %w", r.table.Name, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repo[T]) Delete(ctx context.Context, id uuid.UUID) error {
	where, args := r.whereSQL(FromContext(ctx), []Cond{Eq(r.table.key(), id)})
	res, err := r.db.ExecContext(ctx, "DELETE FROM "+r.table.Name+where, args...)
	if err != nil {
		return fmt.Errorf("delete %s: %w", r.table.Name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete %s: %w", r.table.Name, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repo[T]) selectSQL(scope Scope, conds []Cond) (string, []any) {
	where, args := r.whereSQL(scope, conds)
	query := "SELECT " + strings.Join(r.table.Columns, ", ") + " FROM " + r.table.Name + where
	if r.table.OrderBy != "" {
		query += " ORDER BY " + r.table.OrderBy
	}
	return query, args
}

// whereSQL numbers its placeholders after the leading args.
func (r *Repo[T]) whereSQL(scope Scope, conds []Cond, args ...any) (string, []any) {
	var clauses []string
	if id, ok := scope.TenantID(); ok && r.table.Scoped() {
		args = append(args, id)
		clauses = append(clauses, r.table.TenantColumn+" = $"+strconv.Itoa(len(args)))
	}
	for _, c := range conds {
		switch {
		case deref(c.Value) == nil && c.Negate:
			clauses = append(clauses, c.Column+" IS NOT NULL")
		case deref(c.Value) == nil:
			clauses = append(clauses, c.Column+" IS NULL")
		default:
			args = append(args, c.Value)
			op := " = $"
			if c.Negate {
				op = " <> $"
			}
			clauses = append(clauses, c.Column+op+strconv.Itoa(len(args)))
		}
	}
	if len(clauses) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}
