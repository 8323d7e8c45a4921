package cli_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/publishkit/internal/cli"
	"github.com/dmitrymomot/publishkit/pkg/cache"
	"github.com/dmitrymomot/publishkit/pkg/module"
	"github.com/dmitrymomot/publishkit/pkg/tenant"
)

type env struct {
	tenants  *tenant.MemoryStore
	modules  *module.MemoryStore
	migrated int
	released int
}

func newEnv(t *testing.T) *env {
	t.Helper()
	modules, err := module.NewMemoryStore()
	require.NoError(t, err)
	return &env{tenants: tenant.NewMemoryStore(), modules: modules}
}

func (e *env) open(context.Context) (*cli.Deps, func(), error) {
	return &cli.Deps{
		Tenants:     e.tenants,
		Memberships: e.tenants,
		Modules:     e.modules,
		Gate:        module.NewGate(e.modules, cache.NewMemoryStore()),
		Migrate: func(context.Context) error {
			e.migrated++
			return nil
		},
	}, func() { e.released++ }, nil
}

func (e *env) exec(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := cli.NewRootCommand(e.open)
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestMigrate(t *testing.T) {
	t.Parallel()
	e := newEnv(t)

	out, err := e.exec(t, "migrate")
	require.NoError(t, err)
	assert.Contains(t, out, "migrations applied")
	assert.Equal(t, 1, e.migrated)
	assert.Equal(t, 1, e.released)
}

func TestTenantCreate(t *testing.T) {
	t.Parallel()
	e := newEnv(t)

	out, err := e.exec(t, "tenant", "create", "--name", "Acme News", "--domain", "News.Acme.Example", "--footer-text", "(c) Acme")
	require.NoError(t, err)
	assert.Contains(t, out, "created tenant Acme News")

	got, err := e.tenants.ActiveByDomain(context.Background(), "news.acme.example")
	require.NoError(t, err)
	assert.Equal(t, "Acme News", got.Branding.BrandName)
	assert.Equal(t, tenant.DefaultPrimaryColor, got.Branding.PrimaryColor)
	assert.Equal(t, "(c) Acme", got.Branding.FooterText)

	_, err = e.exec(t, "tenant", "create", "--name", "Other", "--domain", "news.acme.example")
	assert.ErrorIs(t, err, tenant.ErrDomainTaken)

	_, err = e.exec(t, "tenant", "create", "--name", "Bad", "--domain", "bad.example", "--primary-color", "blue")
	assert.ErrorIs(t, err, tenant.ErrInvalidTenant)

	out, err = e.exec(t, "tenant", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "news.acme.example")
	assert.Contains(t, out, "DOMAIN")
}

func TestModuleCommands(t *testing.T) {
	t.Parallel()
	e := newEnv(t)

	_, err := e.exec(t, "tenant", "create", "--name", "A", "--domain", "a.example")
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "modules.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
modules:
  - slug: articles
    name: Articles
  - slug: auth
    name: Auth
    system: true
`), 0o600))

	out, err := e.exec(t, "module", "seed", "--file", path)
	require.NoError(t, err)
	assert.Contains(t, out, "seeded 2 modules and 0 overrides")

	out, err = e.exec(t, "module", "set", "--module", "articles", "--tenant-domain", "a.example", "--active", "false")
	require.NoError(t, err)
	assert.Contains(t, out, "module articles is disabled for a.example")

	out, err = e.exec(t, "module", "list", "--tenant-domain", "a.example")
	require.NoError(t, err)
	assert.Regexp(t, `articles\s+Articles\s+disabled\s+false\s+true`, out)

	out, err = e.exec(t, "module", "list")
	require.NoError(t, err)
	assert.Regexp(t, `articles\s+Articles\s+enabled`, out)

	_, err = e.exec(t, "module", "set", "--module", "auth", "--tenant-domain", "a.example", "--active", "false")
	assert.ErrorIs(t, err, module.ErrSystemModuleOverride)

	_, err = e.exec(t, "module", "set", "--module", "articles", "--tenant-domain", "a.example", "--active", "maybe")
	assert.Error(t, err)

	_, err = e.exec(t, "module", "set", "--module", "articles")
	assert.Error(t, err)
}

func TestMemberCommands(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.exec(t, "tenant", "create", "--name", "A", "--domain", "a.example")
	require.NoError(t, err)
	_, err = e.exec(t, "tenant", "create", "--name", "B", "--domain", "b.example")
	require.NoError(t, err)
	a, err := e.tenants.ActiveByDomain(ctx, "a.example")
	require.NoError(t, err)
	b, err := e.tenants.ActiveByDomain(ctx, "b.example")
	require.NoError(t, err)

	user := uuid.New()
	out, err := e.exec(t, "member", "grant", "--tenant-domain", "a.example", "--user", user.String(), "--role", "editor")
	require.NoError(t, err)
	assert.Contains(t, out, "granted EDITOR to "+user.String()+" on a.example")

	role, err := e.tenants.Role(ctx, user, a.ID)
	require.NoError(t, err)
	assert.Equal(t, tenant.RoleEditor, role)
	_, err = e.tenants.Role(ctx, user, b.ID)
	assert.ErrorIs(t, err, tenant.ErrMembershipNotFound, "a grant is limited to its tenant")

	_, err = e.exec(t, "member", "grant", "--tenant-domain", "a.example", "--user", user.String(), "--role", "owner")
	require.NoError(t, err)
	role, err = e.tenants.Role(ctx, user, a.ID)
	require.NoError(t, err)
	assert.Equal(t, tenant.RoleOwner, role)

	reader := uuid.New()
	_, err = e.exec(t, "member", "grant", "--tenant-domain", "a.example", "--user", reader.String())
	require.NoError(t, err)
	role, err = e.tenants.Role(ctx, reader, a.ID)
	require.NoError(t, err)
	assert.Equal(t, tenant.RoleMember, role, "role defaults to member")

	out, err = e.exec(t, "member", "list", "--tenant-domain", "a.example")
	require.NoError(t, err)
	assert.Regexp(t, user.String()+`\s+OWNER`, out)
	assert.Regexp(t, reader.String()+`\s+MEMBER`, out)

	out, err = e.exec(t, "member", "list", "--tenant-domain", "b.example")
	require.NoError(t, err)
	assert.NotContains(t, out, user.String())

	_, err = e.exec(t, "member", "grant", "--tenant-domain", "a.example", "--user", user.String(), "--role", "admin")
	assert.ErrorIs(t, err, tenant.ErrInvalidRole)

	_, err = e.exec(t, "member", "grant", "--tenant-domain", "a.example", "--user", "nobody")
	assert.Error(t, err)

	_, err = e.exec(t, "member", "grant", "--tenant-domain", "missing.example", "--user", user.String())
	assert.ErrorIs(t, err, tenant.ErrTenantNotFound)

	_, err = e.exec(t, "member", "grant", "--user", user.String())
	assert.Error(t, err)
}

func TestOpenFailure(t *testing.T) {
	t.Parallel()
	boom := errors.New("boom")
	root := cli.NewRootCommand(func(context.Context) (*cli.Deps, func(), error) {
		return nil, nil, boom
	})
	root.SetArgs([]string{"tenant", "list"})
	root.SetOut(&bytes.Buffer{})
	assert.ErrorIs(t, root.ExecuteContext(context.Background()), boom)
}
