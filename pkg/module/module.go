package module

import (
	"context"
	"errors"
	"regexp"
	"time"

	"github.com/google/uuid"
)

// Module is a feature area of the API that can be switched on or off.
type Module struct {
	ID          uuid.UUID      `json:"id"`
	Slug        string         `json:"slug"`
	Name        string         `json:"name"`
	DisplayName string         `json:"display_name,omitempty"`
	Description string         `json:"description,omitempty"`
	Active      bool           `json:"is_active"`
	System      bool           `json:"is_system_module"`
	Config      map[string]any `json:"config,omitempty"`
	CreatedAt   time.Time      `json:"created_at,omitzero"`
	UpdatedAt   time.Time      `json:"updated_at,omitzero"`
}

// Override is a tenant-specific activation of a non-system module.
type Override struct {
	TenantID uuid.UUID      `json:"tenant_id"`
	ModuleID uuid.UUID      `json:"module_id"`
	Active   bool           `json:"is_active"`
	Config   map[string]any `json:"config,omitempty"`
}

// Store is the read side used by the Gate.
type Store interface {
	// BySlug returns the module registered under slug, or ErrModuleNotFound.
	BySlug(ctx context.Context, slug string) (*Module, error)

	// Override returns the tenant's override for a module, or ErrOverrideNotFound.
	Override(ctx context.Context, tenantID, moduleID uuid.UUID) (*Override, error)
}

// Registry manages modules and overrides.
type Registry interface {
	Store

	// List returns every module ordered by slug.
	List(ctx context.Context) ([]*Module, error)

	// Upsert creates the module or updates the one with the same slug.
	Upsert(ctx context.Context, m *Module) error

	// SetOverride creates or replaces a tenant override.
	SetOverride(ctx context.Context, o Override) error

	// DeleteOverride removes a tenant override. Removing a missing override is not an error.
	DeleteOverride(ctx context.Context, tenantID, moduleID uuid.UUID) error
}

var slugPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)

// Validate checks the module's slug and name.
func (m *Module) Validate() error {
	if !slugPattern.MatchString(m.Slug) {
		return errors.Join(ErrInvalidModule, errors.New("slug must be lower-case letters, digits, '-' or '_'"))
	}
	if m.Name == "" {
		return errors.Join(ErrInvalidModule, errors.New("name is required"))
	}
	return nil
}

// Effective computes whether m is enabled given a tenant override, which may
// be nil. System modules follow their global flag only; for the rest an
// override wins over the global flag.
func Effective(m *Module, o *Override) bool {
	if m == nil {
		return true
	}
	if m.System || o == nil {
		return m.Active
	}
	return o.Active
}

// Status is a module together with its effective activation for one tenant.
type Status struct {
	*Module
	Enabled    bool `json:"enabled"`
	Overridden bool `json:"overridden"`
}

// Statuses lists every module with its effective activation for tenantID.
// uuid.Nil evaluates the global flags.
func Statuses(ctx context.Context, reg Registry, tenantID uuid.UUID) ([]Status, error) {
	modules, err := reg.List(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]Status, 0, len(modules))
	for _, m := range modules {
		var o *Override
		if tenantID != uuid.Nil && !m.System {
			o, err = reg.Override(ctx, tenantID, m.ID)
			if err != nil && !errors.Is(err, ErrOverrideNotFound) {
				return nil, err
			}
		}
		out = append(out, Status{Module: m, Enabled: Effective(m, o), Overridden: o != nil})
	}
	return out, nil
}
