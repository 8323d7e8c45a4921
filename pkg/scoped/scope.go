package scoped

import (
	"context"

	"github.com/google/uuid"

	"github.com/dmitrymomot/publishkit/pkg/tenant"
)

// Scope is the tenant restriction applied to a read.
// The zero value is unrestricted.
type Scope struct {
	tenantID uuid.UUID
}

// FromContext returns the scope of the tenant in ctx, or an unrestricted
// scope when there is none.
func FromContext(ctx context.Context) Scope {
	id, _ := tenant.IDFromContext(ctx)
	return Scope{tenantID: id}
}

// ForTenant returns a scope restricted to id. uuid.Nil is unrestricted.
func ForTenant(id uuid.UUID) Scope {
	return Scope{tenantID: id}
}

// TenantID returns the tenant the scope is restricted to.
func (s Scope) TenantID() (uuid.UUID, bool) {
	return s.tenantID, s.tenantID != uuid.Nil
}

// Allows reports whether a row tagged with ref is visible in the scope.
// A nil ref is visible only to an unrestricted scope.
func (s Scope) Allows(ref *uuid.UUID) bool {
	if s.tenantID == uuid.Nil {
		return true
	}
	return ref != nil && *ref == s.tenantID
}

// TenantRef returns the tenant in ctx as a row reference, nil when none.
func TenantRef(ctx context.Context) *uuid.UUID {
	id, ok := tenant.IDFromContext(ctx)
	if !ok {
		return nil
	}
	return &id
}
