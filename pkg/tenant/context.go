package tenant

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/dmitrymomot/publishkit/pkg/logger"
)

// slot is the mutable, request-owned holder of the current tenant.
// Each request gets its own slot, so a value set by one request is never
// visible to another even when goroutines are reused.
type slot struct {
	cur atomic.Pointer[state]
}

type state struct {
	id   uuid.UUID
	role Role
}

type slotKey struct{}

// Token captures the value a slot held before Set and is consumed by Clear.
type Token struct {
	s    *slot
	prev *state
}

// NewScope returns a context carrying a fresh, empty tenant slot.
// Values set through the returned context do not affect any parent scope.
func NewScope(ctx context.Context) context.Context {
	return context.WithValue(ctx, slotKey{}, &slot{})
}

func slotFrom(ctx context.Context) (*slot, bool) {
	s, ok := ctx.Value(slotKey{}).(*slot)
	return s, ok && s != nil
}

// Set makes id the current tenant of the slot carried by ctx and returns a
// token that restores the previous value. If ctx has no slot, a new scope is
// created and returned. uuid.Nil means "no tenant".
//
// Nested Set/Clear pairs must be cleared in reverse order.
func Set(ctx context.Context, id uuid.UUID) (context.Context, Token) {
	s, ok := slotFrom(ctx)
	if !ok {
		ctx = NewScope(ctx)
		s, _ = slotFrom(ctx)
	}

	prev := s.cur.Load()
	var next *state
	if id != uuid.Nil {
		next = &state{id: id}
	}
	s.cur.Store(next)
	return ctx, Token{s: s, prev: prev}
}

// Clear restores the value captured by t. Clearing a zero Token is a no-op.
func Clear(t Token) {
	if t.s != nil {
		t.s.cur.Store(t.prev)
	}
}

// IDFromContext returns the current tenant id. It never fails: the second
// result is false when no tenant is in scope.
func IDFromContext(ctx context.Context) (uuid.UUID, bool) {
	s, ok := slotFrom(ctx)
	if !ok {
		return uuid.Nil, false
	}
	st := s.cur.Load()
	if st == nil {
		return uuid.Nil, false
	}
	return st.id, true
}

// SetRole records the caller's role for the current tenant. It reports false
// and does nothing when no tenant is in scope. The role is discarded by the
// Clear that ends the current tenant.
func SetRole(ctx context.Context, role Role) bool {
	s, ok := slotFrom(ctx)
	if !ok {
		return false
	}
	st := s.cur.Load()
	if st == nil {
		return false
	}
	s.cur.Store(&state{id: st.id, role: role})
	return true
}

// RoleFromContext returns the caller's role in the current tenant.
func RoleFromContext(ctx context.Context) (Role, bool) {
	s, ok := slotFrom(ctx)
	if !ok {
		return "", false
	}
	st := s.cur.Load()
	if st == nil || st.role == "" {
		return "", false
	}
	return st.role, true
}

// LoggerExtractor returns a logger.ContextExtractor adding "tenant_id" to records.
func LoggerExtractor() func(ctx context.Context) (slog.Attr, bool) {
	return func(ctx context.Context) (slog.Attr, bool) {
		if id, ok := IDFromContext(ctx); ok {
			return logger.TenantID(id.String()), true
		}
		return slog.Attr{}, false
	}
}
