package scoped_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/publishkit/pkg/scoped"
	"github.com/dmitrymomot/publishkit/pkg/tenant"
)

type note struct {
	ID       uuid.UUID
	TenantID *uuid.UUID
	Title    string
	Pinned   bool
}

func noteTable() scoped.Table[note] {
	return scoped.Table[note]{
		Name:         "notes",
		Columns:      []string{"id", "tenant_id", "title", "pinned"},
		TenantColumn: "tenant_id",
		OrderBy:      "title",
		Scan: func(s scoped.Scanner) (note, error) {
			var n note
			err := s.Scan(&n.ID, &n.TenantID, &n.Title, &n.Pinned)
			return n, err
		},
		Values:   func(n note) []any { return []any{n.ID, n.TenantID, n.Title, n.Pinned} },
		ID:       func(n note) uuid.UUID { return n.ID },
		TenantOf: func(n note) *uuid.UUID { return n.TenantID },
	}
}

// globalTable has no tenant column.
func globalTable() scoped.Table[note] {
	t := noteTable()
	t.Name = "global_notes"
	t.Columns = []string{"id", "title", "pinned"}
	t.TenantColumn = ""
	t.TenantOf = nil
	t.Scan = func(s scoped.Scanner) (note, error) {
		var n note
		err := s.Scan(&n.ID, &n.Title, &n.Pinned)
		return n, err
	}
	t.Values = func(n note) []any { return []any{n.ID, n.Title, n.Pinned} }
	return t
}

func ref(id uuid.UUID) *uuid.UUID { return &id }

// withTenant returns a context scoped to id and registers the cleanup.
func withTenant(t *testing.T, id uuid.UUID) context.Context {
	t.Helper()
	ctx, token := tenant.Set(tenant.NewScope(context.Background()), id)
	t.Cleanup(func() { tenant.Clear(token) })
	return ctx
}

func titles(notes []note) []string {
	out := make([]string, 0, len(notes))
	for _, n := range notes {
		out = append(out, n.Title)
	}
	return out
}

func newMemory(t *testing.T, table scoped.Table[note], rows ...note) *scoped.MemoryTable[note] {
	t.Helper()
	m, err := scoped.NewMemoryTable(table)
	require.NoError(t, err)
	for _, r := range rows {
		require.NoError(t, m.Insert(context.Background(), r))
	}
	return m
}
