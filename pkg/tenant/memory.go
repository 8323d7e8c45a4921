package tenant

import (
	"context"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore keeps tenants and memberships in memory. It implements Store,
// MembershipStore and Registry and is safe for concurrent use.
type MemoryStore struct {
	mu          sync.RWMutex
	tenants     map[uuid.UUID]*Tenant
	memberships map[membershipKey]Role
}

type membershipKey struct {
	user, tenant uuid.UUID
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		tenants:     make(map[uuid.UUID]*Tenant),
		memberships: make(map[membershipKey]Role),
	}
}

func clone(t *Tenant) *Tenant {
	c := *t
	if t.Domain != nil {
		d := *t.Domain
		c.Domain = &d
	}
	c.Features = maps.Clone(t.Features)
	c.Branding.SocialLinks = maps.Clone(t.Branding.SocialLinks)
	return &c
}

// ActiveByDomain implements Store.
func (s *MemoryStore) ActiveByDomain(_ context.Context, domain string) (*Tenant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, t := range s.tenants {
		if t.Active && t.Domain != nil && *t.Domain == domain {
			return clone(t), nil
		}
	}
	return nil, ErrTenantNotFound
}

// FirstActive implements Store.
func (s *MemoryStore) FirstActive(_ context.Context) (*Tenant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var first *Tenant
	for _, t := range s.tenants {
		if !t.Active {
			continue
		}
		if first == nil || compareCreation(t, first) < 0 {
			first = t
		}
	}
	if first == nil {
		return nil, ErrTenantNotFound
	}
	return clone(first), nil
}

func compareCreation(a, b *Tenant) int {
	if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
		return c
	}
	return slices.Compare(a.ID[:], b.ID[:])
}

// Role implements MembershipStore.
func (s *MemoryStore) Role(_ context.Context, userID, tenantID uuid.UUID) (Role, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	role, ok := s.memberships[membershipKey{userID, tenantID}]
	if !ok {
		return "", ErrMembershipNotFound
	}
	return role, nil
}

// AddMembership grants role to userID within tenantID, replacing any previous role.
func (s *MemoryStore) AddMembership(userID, tenantID uuid.UUID, role Role) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.memberships[membershipKey{userID, tenantID}] = role
}

// Grant implements MembershipRegistry.
func (s *MemoryStore) Grant(_ context.Context, userID, tenantID uuid.UUID, role Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tenants[tenantID]; !ok {
		return ErrTenantNotFound
	}
	s.memberships[membershipKey{userID, tenantID}] = role
	return nil
}

// Members implements MembershipRegistry. Users are ordered by id.
func (s *MemoryStore) Members(_ context.Context, tenantID uuid.UUID) ([]uuid.UUID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []uuid.UUID
	for k := range s.memberships {
		if k.tenant == tenantID {
			out = append(out, k.user)
		}
	}
	slices.SortFunc(out, func(a, b uuid.UUID) int { return strings.Compare(a.String(), b.String()) })
	return out, nil
}

// DomainExists implements Registry.
func (s *MemoryStore) DomainExists(_ context.Context, domain string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, t := range s.tenants {
		if t.Domain != nil && *t.Domain == domain {
			return true, nil
		}
	}
	return false, nil
}

// Create implements Registry.
func (s *MemoryStore) Create(_ context.Context, t *Tenant) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t.Domain != nil {
		for _, existing := range s.tenants {
			if existing.Domain != nil && *existing.Domain == *t.Domain {
				return ErrDomainTaken
			}
		}
	}
	s.tenants[t.ID] = clone(t)
	return nil
}

// GetByID implements Registry.
func (s *MemoryStore) GetByID(_ context.Context, id uuid.UUID) (*Tenant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tenants[id]
	if !ok {
		return nil, ErrTenantNotFound
	}
	return clone(t), nil
}

// UpdateBranding implements Registry.
func (s *MemoryStore) UpdateBranding(_ context.Context, id uuid.UUID, b Branding) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tenants[id]
	if !ok {
		return ErrTenantNotFound
	}
	t.Branding = b
	t.Branding.SocialLinks = maps.Clone(b.SocialLinks)
	return nil
}

// List implements Registry, ordered by creation time.
func (s *MemoryStore) List(_ context.Context) ([]*Tenant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Tenant, 0, len(s.tenants))
	for _, t := range s.tenants {
		out = append(out, clone(t))
	}
	slices.SortFunc(out, compareCreation)
	return out, nil
}
