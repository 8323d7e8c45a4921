package module

import "errors"

var (
	// ErrModuleNotFound indicates that no module is registered under the slug.
	ErrModuleNotFound = errors.New("module not found")

	// ErrOverrideNotFound indicates that a tenant has no override for a module.
	ErrOverrideNotFound = errors.New("module override not found")

	// ErrInvalidModule indicates that module attributes are invalid.
	ErrInvalidModule = errors.New("invalid module parameters")

	// ErrSystemModuleOverride is returned when an override is set on a system module.
	ErrSystemModuleOverride = errors.New("system modules cannot be overridden per tenant")
)
