// Package seed loads module catalogues and tenant overrides from YAML and
// applies them to a module registry.
package seed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/dmitrymomot/publishkit/pkg/module"
	"github.com/dmitrymomot/publishkit/pkg/tenant"
)

var (
	ErrInvalidSeed    = errors.New("invalid seed file")
	ErrUnknownModule  = errors.New("seed references an unknown module")
	ErrUnknownTenant  = errors.New("seed references an unknown tenant domain")
	ErrDuplicateEntry = errors.New("duplicate seed entry")
)

// File is the document layout of a seed file.
type File struct {
	Modules   []Module   `yaml:"modules"`
	Overrides []Override `yaml:"overrides"`
}

type Module struct {
	Slug        string         `yaml:"slug"`
	Name        string         `yaml:"name"`
	DisplayName string         `yaml:"display_name"`
	Description string         `yaml:"description"`
	Active      *bool          `yaml:"active"` // defaults to true
	System      bool           `yaml:"system"`
	Config      map[string]any `yaml:"config"`
}

// Override enables or disables a module for the tenant owning TenantDomain.
type Override struct {
	Module       string         `yaml:"module"`
	TenantDomain string         `yaml:"tenant_domain"`
	Active       *bool          `yaml:"active"` // defaults to true
	Config       map[string]any `yaml:"config"`
}

// Enabled reports the activation the override sets.
func (o Override) Enabled() bool {
	return o.Active == nil || *o.Active
}

// Parse decodes and validates a seed document.
func Parse(r io.Reader) (*File, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f File
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, errors.Join(ErrInvalidSeed, err)
	}
	if err := f.validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

// Load reads and parses the seed file at path.
func Load(path string) (*File, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open seed file: %w", err)
	}
	defer fh.Close()
	return Parse(fh)
}

func (f *File) validate() error {
	seen := make(map[string]bool, len(f.Modules))
	for i := range f.Modules {
		m := f.Modules[i].module()
		if err := m.Validate(); err != nil {
			return errors.Join(ErrInvalidSeed, fmt.Errorf("modules[%d]: %w", i, err))
		}
		if seen[m.Slug] {
			return errors.Join(ErrInvalidSeed, ErrDuplicateEntry, fmt.Errorf("module %q", m.Slug))
		}
		seen[m.Slug] = true
	}

	pairs := make(map[[2]string]bool, len(f.Overrides))
	for i, o := range f.Overrides {
		if o.Module == "" || o.TenantDomain == "" {
			return errors.Join(ErrInvalidSeed, fmt.Errorf("overrides[%d]: module and tenant_domain are required", i))
		}
		key := [2]string{o.Module, o.TenantDomain}
		if pairs[key] {
			return errors.Join(ErrInvalidSeed, ErrDuplicateEntry, fmt.Errorf("override %s@%s", o.Module, o.TenantDomain))
		}
		pairs[key] = true
	}
	return nil
}

func (m Module) module() *module.Module {
	active := true
	if m.Active != nil {
		active = *m.Active
	}
	return &module.Module{
		Slug:        m.Slug,
		Name:        m.Name,
		DisplayName: m.DisplayName,
		Description: m.Description,
		Active:      active,
		System:      m.System,
		Config:      m.Config,
	}
}

// Invalidator drops cached module decisions. *module.Gate satisfies it.
type Invalidator interface {
	Invalidate(ctx context.Context, tenantID uuid.UUID, slug string) error
}

// Result counts what Apply changed.
type Result struct {
	Modules   int
	Overrides int
}

// Apply upserts every module, then sets every override. Cached decisions for
// the touched entries are dropped when inv is non-nil; tenant-specific entries
// of a module whose global flag changed expire with the gate TTL.
func Apply(ctx context.Context, f *File, reg module.Registry, tenants tenant.Store, inv Invalidator) (Result, error) {
	var res Result
	for _, m := range f.Modules {
		if err := reg.Upsert(ctx, m.module()); err != nil {
			return res, fmt.Errorf("upsert module %q: %w", m.Slug, err)
		}
		res.Modules++
		invalidate(ctx, inv, uuid.Nil, m.Slug)
	}

	for _, o := range f.Overrides {
		if err := SetOverride(ctx, reg, tenants, inv, o); err != nil {
			return res, err
		}
		res.Overrides++
	}
	return res, nil
}

// SetOverride stores a single tenant override and drops its cached decision.
func SetOverride(ctx context.Context, reg module.Registry, tenants tenant.Store, inv Invalidator, o Override) error {
	m, err := reg.BySlug(ctx, o.Module)
	if err != nil {
		if errors.Is(err, module.ErrModuleNotFound) {
			return errors.Join(ErrUnknownModule, fmt.Errorf("%q", o.Module))
		}
		return fmt.Errorf("lookup module %q: %w", o.Module, err)
	}
	t, err := tenants.ActiveByDomain(ctx, o.TenantDomain)
	if err != nil {
		if errors.Is(err, tenant.ErrTenantNotFound) {
			return errors.Join(ErrUnknownTenant, fmt.Errorf("%q", o.TenantDomain))
		}
		return fmt.Errorf("lookup tenant %q: %w", o.TenantDomain, err)
	}

	err = reg.SetOverride(ctx, module.Override{TenantID: t.ID, ModuleID: m.ID, Active: o.Enabled(), Config: o.Config})
	if err != nil {
		return fmt.Errorf("override %s@%s: %w", o.Module, o.TenantDomain, err)
	}
	invalidate(ctx, inv, t.ID, m.Slug)
	return nil
}

func invalidate(ctx context.Context, inv Invalidator, tenantID uuid.UUID, slug string) {
	if inv != nil {
		// A stale entry only lives until the gate TTL.
		_ = inv.Invalidate(ctx, tenantID, slug)
	}
}
