package scoped

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/google/uuid"
)

// Scanner is implemented by *sql.Row and *sql.Rows.
type Scanner interface {
	Scan(dest ...any) error
}

// Table describes how rows of T are stored.
type Table[T any] struct {
	// Name is the table name.
	Name string
	// Columns lists the stored columns in scan and insert order.
	// The first column is the primary key.
	Columns []string
	// TenantColumn names the tenant reference column. Empty for tables
	// outside tenant scoping.
	TenantColumn string
	// OrderBy is appended to SELECT statements, e.g. "created_at DESC".
	OrderBy string

	Scan     func(s Scanner) (T, error)
	Values   func(row T) []any
	ID       func(row T) uuid.UUID
	TenantOf func(row T) *uuid.UUID
}

func (t Table[T]) validate() error {
	var problems []error
	if t.Name == "" {
		problems = append(problems, errors.New("name is required"))
	}
	if len(t.Columns) == 0 {
		problems = append(problems, errors.New("columns are required"))
	}
	if t.Scan == nil || t.Values == nil || t.ID == nil {
		problems = append(problems, errors.New("scan, values and id functions are required"))
	}
	if t.TenantColumn != "" {
		if !slices.Contains(t.Columns, t.TenantColumn) {
			problems = append(problems, fmt.Errorf("tenant column %q is not declared", t.TenantColumn))
		}
		if t.TenantOf == nil {
			problems = append(problems, errors.New("tenant column requires a TenantOf function"))
		}
	}
	if len(problems) > 0 {
		return errors.Join(append([]error{fmt.Errorf("%w: %s", ErrInvalidTable, t.Name)}, problems...)...)
	}
	return nil
}

// Scoped reports whether the table takes part in tenant scoping.
func (t Table[T]) Scoped() bool {
	return t.TenantColumn != ""
}

func (t Table[T]) key() string {
	return t.Columns[0]
}

// Cond is an equality or inequality condition on a column.
type Cond struct {
	Column string
	Negate bool
	Value  any
}

// Eq matches rows whose column equals v. A nil v matches NULL.
func Eq(column string, v any) Cond {
	return Cond{Column: column, Value: v}
}

// Ne matches rows whose column differs from v. A nil v matches NOT NULL.
func Ne(column string, v any) Cond {
	return Cond{Column: column, Negate: true, Value: v}
}

func (t Table[T]) checkConds(conds []Cond) error {
	for _, c := range conds {
		if !slices.Contains(t.Columns, c.Column) {
			return fmt.Errorf("%w: %s.%s", ErrUnknownColumn, t.Name, c.Column)
		}
	}
	return nil
}

// Store is the tenant-scoped access contract shared by Repo and MemoryTable.
type Store[T any] interface {
	// Query returns the rows visible in the scope of ctx matching conds.
	Query(ctx context.Context, conds ...Cond) ([]T, error)
	// QueryAll returns every row matching conds, ignoring tenant scope.
	QueryAll(ctx context.Context, conds ...Cond) ([]T, error)
	// Get returns the row with id if visible in the scope of ctx.
	Get(ctx context.Context, id uuid.UUID) (T, error)
	// Insert stores row as is.
	Insert(ctx context.Context, row T) error
	// Update replaces the row with the id of row if visible in the scope of
	// ctx. The tenant of a row cannot change.
	Update(ctx context.Context, row T) error
	// Delete removes the row with id if visible in the scope of ctx.
	Delete(ctx context.Context, id uuid.UUID) error
}
