package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/dmitrymomot/publishkit/pkg/pg"
	"github.com/dmitrymomot/publishkit/pkg/tenant"
)

// TenantStore implements tenant.Store and tenant.Registry.
type TenantStore struct {
	db *sql.DB
}

var (
	_ tenant.Store    = (*TenantStore)(nil)
	_ tenant.Registry = (*TenantStore)(nil)
)

func NewTenantStore(db *sql.DB) *TenantStore {
	return &TenantStore{db: db}
}

const tenantColumns = `id, name, domain, brand_name, primary_color, secondary_color,
	primary_color_dark, secondary_color_dark, logo_url, favicon_url, footer_text,
	social_links, features, smtp_host, smtp_port, smtp_user, smtp_password,
	smtp_use_tls, smtp_from_address, smtp_from_name, is_active, created_at, updated_at`

func scanTenant(row interface{ Scan(...any) error }) (*tenant.Tenant, error) {
	var (
		t             tenant.Tenant
		domain        sql.NullString
		social, feats []byte
	)
	err := row.Scan(
		&t.ID, &t.Name, &domain,
		&t.Branding.BrandName, &t.Branding.PrimaryColor, &t.Branding.SecondaryColor,
		&t.Branding.PrimaryColorDark, &t.Branding.SecondaryColorDark,
		&t.Branding.LogoURL, &t.Branding.FaviconURL, &t.Branding.FooterText,
		&social, &feats,
		&t.SMTP.Host, &t.SMTP.Port, &t.SMTP.User, &t.SMTP.Password,
		&t.SMTP.UseTLS, &t.SMTP.FromAddress, &t.SMTP.FromName,
		&t.Active, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if domain.Valid {
		t.Domain = &domain.String
	}
	if err := fromJSONB(social, &t.Branding.SocialLinks); err != nil {
		return nil, err
	}
	if err := fromJSONB(feats, &t.Features); err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *TenantStore) one(ctx context.Context, query string, args ...any) (*tenant.Tenant, error) {
	t, err := scanTenant(s.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, tenant.ErrTenantNotFound
		}
		return nil, fmt.Errorf("query tenant: %w", err)
	}
	return t, nil
}

func (s *TenantStore) ActiveByDomain(ctx context.Context, domain string) (*tenant.Tenant, error) {
	return s.one(ctx, `SELECT `+tenantColumns+` FROM tenants WHERE domain = $1 AND is_active`, domain)
}

func (s *TenantStore) FirstActive(ctx context.Context) (*tenant.Tenant, error) {
	return s.one(ctx, `SELECT `+tenantColumns+` FROM tenants WHERE is_active ORDER BY created_at, id LIMIT 1`)
}

func (s *TenantStore) GetByID(ctx context.Context, id uuid.UUID) (*tenant.Tenant, error) {
	return s.one(ctx, `SELECT `+tenantColumns+` FROM tenants WHERE id = $1`, id)
}

func (s *TenantStore) DomainExists(ctx context.Context, domain string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM tenants WHERE domain = $1)`, domain).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check domain: %w", err)
	}
	return exists, nil
}

func (s *TenantStore) List(ctx context.Context) ([]*tenant.Tenant, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+tenantColumns+` FROM tenants ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list tenants: %w", err)
	}
	defer rows.Close()

	var out []*tenant.Tenant
	for rows.Next() {
		t, err := scanTenant(rows)
		if err != nil {
			return nil, fmt.Errorf("scan tenant: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *TenantStore) Create(ctx context.Context, t *tenant.Tenant) error {
	social, err := jsonb(t.Branding.SocialLinks)
	if err != nil {
		return err
	}
	feats, err := jsonb(t.Features)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `INSERT INTO tenants (`+tenantColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23)`,
		t.ID, t.Name, t.Domain,
		t.Branding.BrandName, t.Branding.PrimaryColor, t.Branding.SecondaryColor,
		t.Branding.PrimaryColorDark, t.Branding.SecondaryColorDark,
		t.Branding.LogoURL, t.Branding.FaviconURL, t.Branding.FooterText,
		social, feats,
		t.SMTP.Host, t.SMTP.Port, t.SMTP.User, t.SMTP.Password,
		t.SMTP.UseTLS, t.SMTP.FromAddress, t.SMTP.FromName,
		t.Active, t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		if pg.IsDuplicateKeyError(err) {
			return errors.Join(tenant.ErrDomainTaken, err)
		}
		return fmt.Errorf("insert tenant: %w", err)
	}
	return nil
}

func (s *TenantStore) UpdateBranding(ctx context.Context, id uuid.UUID, b tenant.Branding) error {
	social, err := jsonb(b.SocialLinks)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `UPDATE tenants SET
		brand_name = $2, primary_color = $3, secondary_color = $4,
		primary_color_dark = $5, secondary_color_dark = $6,
		logo_url = $7, favicon_url = $8, footer_text = $9, social_links = $10,
		updated_at = now()
		WHERE id = $1`,
		id, b.BrandName, b.PrimaryColor, b.SecondaryColor,
		b.PrimaryColorDark, b.SecondaryColorDark,
		b.LogoURL, b.FaviconURL, b.FooterText, social,
	)
	if err != nil {
		return fmt.Errorf("update branding: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("update branding: %w", err)
	} else if n == 0 {
		return tenant.ErrTenantNotFound
	}
	return nil
}
