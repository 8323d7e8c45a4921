package scoped

import (
	"context"
	"reflect"
	"slices"
	"sync"

	"github.com/google/uuid"
)

// MemoryTable is an in-memory Store with the same scoping rules as Repo.
// Rows are returned in insertion order.
type MemoryTable[T any] struct {
	mu    sync.RWMutex
	table Table[T]
	rows  []T
}

var _ Store[struct{}] = (*MemoryTable[struct{}])(nil)

// NewMemoryTable returns an empty in-memory table.
func NewMemoryTable[T any](table Table[T]) (*MemoryTable[T], error) {
	if err := table.validate(); err != nil {
		return nil, err
	}
	return &MemoryTable[T]{table: table}, nil
}

func (m *MemoryTable[T]) Query(ctx context.Context, conds ...Cond) ([]T, error) {
	return m.query(FromContext(ctx), conds)
}

func (m *MemoryTable[T]) QueryAll(_ context.Context, conds ...Cond) ([]T, error) {
	return m.query(Scope{}, conds)
}

// QueryIn reads in an explicit scope instead of the ambient one.
func (m *MemoryTable[T]) QueryIn(_ context.Context, scope Scope, conds ...Cond) ([]T, error) {
	return m.query(scope, conds)
}

func (m *MemoryTable[T]) Get(ctx context.Context, id uuid.UUID) (T, error) {
	rows, err := m.query(FromContext(ctx), []Cond{Eq(m.table.key(), id)})
	if err != nil || len(rows) == 0 {
		var zero T
		if err == nil {
			err = ErrNotFound
		}
		return zero, err
	}
	return rows[0], nil
}

func (m *MemoryTable[T]) Insert(_ context.Context, row T) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows = append(m.rows, row)
	return nil
}

func (m *MemoryTable[T]) Update(ctx context.Context, row T) error {
	scope := FromContext(ctx)
	id := m.table.ID(row)

	m.mu.Lock()
	defer m.mu.Unlock()
	for i, cur := range m.rows {
		if m.table.ID(cur) != id || !m.visible(scope, cur) {
			continue
		}
		if m.table.Scoped() && !sameRef(m.table.TenantOf(cur), m.table.TenantOf(row)) {
			return ErrNotFound
		}
		m.rows[i] = row
		return nil
	}
	return ErrNotFound
}

func (m *MemoryTable[T]) Delete(ctx context.Context, id uuid.UUID) error {
	scope := FromContext(ctx)

	m.mu.Lock()
	defer m.mu.Unlock()
	before := len(m.rows)
	m.rows = slices.DeleteFunc(m.rows, func(row T) bool {
		return m.table.ID(row) == id && m.visible(scope, row)
	})
	if len(m.rows) == before {
		return ErrNotFound
	}
	return nil
}

func (m *MemoryTable[T]) query(scope Scope, conds []Cond) ([]T, error) {
	if err := m.table.checkConds(conds); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []T
	for _, row := range m.rows {
		if m.visible(scope, row) && m.matches(row, conds) {
			out = append(out, row)
		}
	}
	return out, nil
}

func (m *MemoryTable[T]) visible(scope Scope, row T) bool {
	if !m.table.Scoped() {
		return true
	}
	return scope.Allows(m.table.TenantOf(row))
}

func (m *MemoryTable[T]) matches(row T, conds []Cond) bool {
	if len(conds) == 0 {
		return true
	}
	values := m.table.Values(row)
	for _, c := range conds {
		i := slices.Index(m.table.Columns, c.Column)
		if i < 0 || i >= len(values) {
			return false
		}
		got, want := deref(values[i]), deref(c.Value)
		switch {
		case want == nil:
			if (got == nil) == c.Negate {
				return false
			}
		case got == nil:
			// NULL never compares equal or unequal to a value.
			return false
		case reflect.DeepEqual(got, want) == c.Negate:
			return false
		}
	}
	return true
}

func sameRef(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// deref treats a nil pointer as NULL and dereferences non-nil pointers.
func deref(v any) any {
	rv := reflect.ValueOf(v)
	for rv.IsValid() && rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	if !rv.IsValid() {
		return nil
	}
	return rv.Interface()
}
