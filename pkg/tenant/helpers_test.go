package tenant_test

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/publishkit/pkg/tenant"
)

// countingStore wraps a MemoryStore and records lookups.
type countingStore struct {
	*tenant.MemoryStore

	mu          sync.Mutex
	byDomain    int
	firstActive int
	err         error
}

func newCountingStore() *countingStore {
	return &countingStore{MemoryStore: tenant.NewMemoryStore()}
}

func (s *countingStore) ActiveByDomain(ctx context.Context, domain string) (*tenant.Tenant, error) {
	s.mu.Lock()
	s.byDomain++
	err := s.err
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return s.MemoryStore.ActiveByDomain(ctx, domain)
}

func (s *countingStore) FirstActive(ctx context.Context) (*tenant.Tenant, error) {
	s.mu.Lock()
	s.firstActive++
	s.mu.Unlock()
	return s.MemoryStore.FirstActive(ctx)
}

func (s *countingStore) calls() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.byDomain, s.firstActive
}

func (s *countingStore) setErr(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

func addTenant(s interface {
	Create(context.Context, *tenant.Tenant) error
}, domain string, active bool, createdAt time.Time) *tenant.Tenant {
	t := &tenant.Tenant{
		ID:        uuid.New(),
		Name:      domain,
		Active:    active,
		CreatedAt: createdAt,
	}
	if domain != "" {
		d := domain
		t.Domain = &d
	}
	if err := s.Create(context.Background(), t); err != nil {
		panic(err)
	}
	return t
}

// failingCache returns errors for the operations that are switched on.
type failingCache struct {
	getErr, setErr error
}

func (c failingCache) Get(context.Context, string) (string, bool, error) {
	return "", false, c.getErr
}

func (c failingCache) Set(context.Context, string, string, time.Duration) error {
	return c.setErr
}

func (c failingCache) Delete(context.Context, string) error { return nil }

var errStorage = errors.New("storage unavailable")

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func newClock() *clock {
	return &clock{now: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)}
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
