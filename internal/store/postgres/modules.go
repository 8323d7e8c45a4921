package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/dmitrymomot/publishkit/pkg/module"
	"github.com/dmitrymomot/publishkit/pkg/pg"
)

// ModuleStore implements module.Registry.
type ModuleStore struct {
	db *sql.DB
}

var _ module.Registry = (*ModuleStore)(nil)

func NewModuleStore(db *sql.DB) *ModuleStore {
	return &ModuleStore{db: db}
}

const moduleColumns = `id, slug, name, display_name, description, is_active, is_system_module, config, created_at, updated_at`

func scanModule(row interface{ Scan(...any) error }) (*module.Module, error) {
	var (
		m   module.Module
		cfg []byte
	)
	err := row.Scan(&m.ID, &m.Slug, &m.Name, &m.DisplayName, &m.Description,
		&m.Active, &m.System, &cfg, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := fromJSONB(cfg, &m.Config); err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *ModuleStore) BySlug(ctx context.Context, slug string) (*module.Module, error) {
	m, err := scanModule(s.db.QueryRowContext(ctx, `SELECT `+moduleColumns+` FROM modules WHERE slug = $1`, slug))
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, module.ErrModuleNotFound
		}
		return nil, fmt.Errorf("query module: %w", err)
	}
	return m, nil
}

func (s *ModuleStore) Override(ctx context.Context, tenantID, moduleID uuid.UUID) (*module.Override, error) {
	var (
		o   = module.Override{TenantID: tenantID, ModuleID: moduleID}
		cfg []byte
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT is_active, config FROM tenant_modules WHERE tenant_id = $1 AND module_id = $2`,
		tenantID, moduleID,
	).Scan(&o.Active, &cfg)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, module.ErrOverrideNotFound
		}
		return nil, fmt.Errorf("query module override: %w", err)
	}
	if err := fromJSONB(cfg, &o.Config); err != nil {
		return nil, err
	}
	return &o, nil
}

func (s *ModuleStore) List(ctx context.Context) ([]*module.Module, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+moduleColumns+` FROM modules ORDER BY slug`)
	if err != nil {
		return nil, fmt.Errorf("list modules: %w", err)
	}
	defer rows.Close()

	var out []*module.Module
	for rows.Next() {
		m, err := scanModule(rows)
		if err != nil {
			return nil, fmt.Errorf("scan module: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// Upsert inserts m or updates the module with the same slug. m.ID is set to
// the stored id.
func (s *ModuleStore) Upsert(ctx context.Context, m *module.Module) error {
	if err := m.Validate(); err != nil {
		return err
	}
	cfg, err := jsonb(m.Config)
	if err != nil {
		return err
	}
	id := m.ID
	if id == uuid.Nil {
		id = uuid.New()
	}

	err = s.db.QueryRowContext(ctx, `INSERT INTO modules
		(id, slug, name, display_name, description, is_active, is_system_module, config)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (slug) DO UPDATE SET
			name = EXCLUDED.name,
			display_name = EXCLUDED.display_name,
			description = EXCLUDED.description,
			is_active = EXCLUDED.is_active,
			is_system_module = EXCLUDED.is_system_module,
			config = EXCLUDED.config,
			updated_at = now()
		RETURNING id`,
		id, m.Slug, m.Name, m.DisplayName, m.Description, m.Active, m.System, cfg,
	).Scan(&m.ID)
	if err != nil {
		return fmt.Errorf("upsert module: %w", err)
	}
	return nil
}

// SetOverride stores a tenant override. System modules cannot be overridden.
func (s *ModuleStore) SetOverride(ctx context.Context, o module.Override) error {
	var system bool
	err := s.db.QueryRowContext(ctx, `SELECT is_system_module FROM modules WHERE id = $1`, o.ModuleID).Scan(&system)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return module.ErrModuleNotFound
		}
		return fmt.Errorf("query module: %w", err)
	}
	if system {
		return module.ErrSystemModuleOverride
	}

	cfg, err := jsonb(o.Config)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO tenant_modules (tenant_id, module_id, is_active, config)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (tenant_id, module_id) DO UPDATE SET is_active = EXCLUDED.is_active, config = EXCLUDED.config`,
		o.TenantID, o.ModuleID, o.Active, cfg,
	)
	if err != nil {
		return fmt.Errorf("set module override: %w", err)
	}
	return nil
}

func (s *ModuleStore) DeleteOverride(ctx context.Context, tenantID, moduleID uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM tenant_modules WHERE tenant_id = $1 AND module_id = $2`, tenantID, moduleID)
	if err != nil {
		return fmt.Errorf("delete module override: %w", err)
	}
	return nil
}
