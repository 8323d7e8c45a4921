package tenant

import "errors"

var (
	// ErrTenantNotFound is returned when no active tenant matches a host or id.
	ErrTenantNotFound = errors.New("tenant not found")

	// ErrResolution wraps storage or cache failures during host resolution.
	ErrResolution = errors.New("tenant resolution failed")

	// ErrNoTenantInContext is returned when a tenant is required but none is in scope.
	ErrNoTenantInContext = errors.New("no tenant in context")

	// ErrMembershipNotFound is returned when a user has no membership in a tenant.
	ErrMembershipNotFound = errors.New("tenant membership not found")

	// ErrDomainTaken is returned when creating a tenant whose domain is already registered.
	ErrDomainTaken = errors.New("tenant domain already registered")

	// ErrInvalidTenant is returned when tenant attributes fail validation.
	ErrInvalidTenant = errors.New("invalid tenant attributes")

	// ErrInsufficientRole is returned when the caller's role is below the one required.
	ErrInsufficientRole = errors.New("insufficient tenant role")

	// ErrInvalidRole is returned for a role name outside OWNER, EDITOR and MEMBER.
	ErrInvalidRole = errors.New("invalid tenant role")
)
