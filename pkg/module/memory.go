package module

import (
	"context"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is an in-memory Registry, safe for concurrent use.
type MemoryStore struct {
	mu        sync.RWMutex
	modules   map[string]*Module
	overrides map[[2]uuid.UUID]Override
}

// NewMemoryStore creates a store holding copies of the given modules.
func NewMemoryStore(initial ...*Module) (*MemoryStore, error) {
	s := &MemoryStore{
		modules:   make(map[string]*Module),
		overrides: make(map[[2]uuid.UUID]Override),
	}
	for _, m := range initial {
		if m == nil {
			continue
		}
		if err := s.Upsert(context.Background(), m); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func cloneModule(m *Module) *Module {
	c := *m
	c.Config = maps.Clone(m.Config)
	return &c
}

// BySlug implements Store.
func (s *MemoryStore) BySlug(_ context.Context, slug string) (*Module, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.modules[slug]
	if !ok {
		return nil, ErrModuleNotFound
	}
	return cloneModule(m), nil
}

// Override implements Store.
func (s *MemoryStore) Override(_ context.Context, tenantID, moduleID uuid.UUID) (*Override, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, ok := s.overrides[[2]uuid.UUID{tenantID, moduleID}]
	if !ok {
		return nil, ErrOverrideNotFound
	}
	o.Config = maps.Clone(o.Config)
	return &o, nil
}

// List implements Registry.
func (s *MemoryStore) List(_ context.Context) ([]*Module, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Module, 0, len(s.modules))
	for _, m := range s.modules {
		out = append(out, cloneModule(m))
	}
	slices.SortFunc(out, func(a, b *Module) int { return strings.Compare(a.Slug, b.Slug) })
	return out, nil
}

// Upsert implements Registry. The stored module keeps its original id.
func (s *MemoryStore) Upsert(_ context.Context, m *Module) error {
	if err := m.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	c := cloneModule(m)
	if existing, ok := s.modules[m.Slug]; ok {
		c.ID = existing.ID
		c.CreatedAt = existing.CreatedAt
	} else {
		if c.ID == uuid.Nil {
			c.ID = uuid.New()
		}
		c.CreatedAt = now
	}
	c.UpdatedAt = now
	s.modules[m.Slug] = c
	m.ID = c.ID
	return nil
}

// SetOverride implements Registry.
func (s *MemoryStore) SetOverride(_ context.Context, o Override) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, m := range s.modules {
		if m.ID != o.ModuleID {
			continue
		}
		if m.System {
			return ErrSystemModuleOverride
		}
		o.Config = maps.Clone(o.Config)
		s.overrides[[2]uuid.UUID{o.TenantID, o.ModuleID}] = o
		return nil
	}
	return ErrModuleNotFound
}

// DeleteOverride implements Registry.
func (s *MemoryStore) DeleteOverride(_ context.Context, tenantID, moduleID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.overrides, [2]uuid.UUID{tenantID, moduleID})
	return nil
}
