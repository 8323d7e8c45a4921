package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/dmitrymomot/publishkit/pkg/pg"
	"github.com/dmitrymomot/publishkit/pkg/tenant"
)

// MembershipStore implements tenant.MembershipStore.
type MembershipStore struct {
	db *sql.DB
}

var (
	_ tenant.MembershipStore    = (*MembershipStore)(nil)
	_ tenant.MembershipRegistry = (*MembershipStore)(nil)
)

func NewMembershipStore(db *sql.DB) *MembershipStore {
	return &MembershipStore{db: db}
}

func (s *MembershipStore) Role(ctx context.Context, userID, tenantID uuid.UUID) (tenant.Role, error) {
	var raw string
	err := s.db.QueryRowContext(ctx,
		`SELECT role FROM tenant_memberships WHERE user_id = $1 AND tenant_id = $2`,
		userID, tenantID,
	).Scan(&raw)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return "", tenant.ErrMembershipNotFound
		}
		return "", fmt.Errorf("query membership: %w", err)
	}
	return tenant.ParseRole(raw)
}

// Grant gives userID role within tenantID, replacing an existing role.
func (s *MembershipStore) Grant(ctx context.Context, userID, tenantID uuid.UUID, role tenant.Role) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO tenant_memberships (user_id, tenant_id, role) VALUES ($1, $2, $3)
		ON CONFLICT (user_id, tenant_id) DO UPDATE SET role = EXCLUDED.role`,
		userID, tenantID, string(role),
	)
	if err != nil {
		if pg.IsForeignKeyViolationError(err) {
			return tenant.ErrTenantNotFound
		}
		return fmt.Errorf("grant membership: %w", err)
	}
	return nil
}

// Members returns the users holding any role within tenantID.
func (s *MembershipStore) Members(ctx context.Context, tenantID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT user_id FROM tenant_memberships WHERE tenant_id = $1 ORDER BY user_id`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("query members: %w", err)
	}
	defer rows.Close()

	var out []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan member: %w", err)
		}
		out = append(out, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query members: %w", err)
	}
	return out, nil
}
