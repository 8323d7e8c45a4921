package tenant

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const (
	DefaultPrimaryColor   = "#44B78B"
	DefaultSecondaryColor = "#2D3748"
)

// Tenant is an isolated customer of the platform, identified by its domain.
type Tenant struct {
	ID        uuid.UUID       `json:"id"`
	Name      string          `json:"name"`
	Domain    *string         `json:"domain,omitempty"`
	Branding  Branding        `json:"branding"`
	Features  map[string]bool `json:"features,omitempty"`
	SMTP      SMTPConfig      `json:"-"`
	Active    bool            `json:"is_active"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Branding holds the white-label presentation of a tenant.
type Branding struct {
	BrandName          string            `json:"brand_name"`
	PrimaryColor       string            `json:"primary_color"`
	SecondaryColor     string            `json:"secondary_color"`
	PrimaryColorDark   string            `json:"primary_color_dark,omitempty"`
	SecondaryColorDark string            `json:"secondary_color_dark,omitempty"`
	LogoURL            string            `json:"logo,omitempty"`
	FaviconURL         string            `json:"favicon,omitempty"`
	FooterText         string            `json:"footer_text,omitempty"`
	SocialLinks        map[string]string `json:"social_links,omitempty"`
}

// SMTPConfig is the per-tenant outgoing mail configuration. Delivery itself
// lives outside this module; the settings are stored with the tenant.
type SMTPConfig struct {
	Host        string
	Port        int
	User        string
	Password    string
	UseTLS      bool
	FromAddress string
	FromName    string
}

// Store is the read side used on the request path.
type Store interface {
	// ActiveByDomain returns the active tenant registered for domain,
	// or ErrTenantNotFound.
	ActiveByDomain(ctx context.Context, domain string) (*Tenant, error)

	// FirstActive returns the active tenant with the earliest creation time,
	// ties broken by id, or ErrTenantNotFound when there is none.
	FirstActive(ctx context.Context) (*Tenant, error)
}

// MembershipStore looks up a user's role within a tenant.
type MembershipStore interface {
	// Role returns the user's role in the tenant, or ErrMembershipNotFound.
	Role(ctx context.Context, userID, tenantID uuid.UUID) (Role, error)
}

// MembershipRegistry is the administrative side of membership storage.
type MembershipRegistry interface {
	// Grant gives userID role within tenantID, replacing an existing role.
	// It returns ErrTenantNotFound for an unknown tenant.
	Grant(ctx context.Context, userID, tenantID uuid.UUID, role Role) error
	// Members returns the users holding any role within tenantID.
	Members(ctx context.Context, tenantID uuid.UUID) ([]uuid.UUID, error)
}

// Registry is the administrative side of tenant storage.
type Registry interface {
	DomainExists(ctx context.Context, domain string) (bool, error)
	Create(ctx context.Context, t *Tenant) error
	GetByID(ctx context.Context, id uuid.UUID) (*Tenant, error)
	UpdateBranding(ctx context.Context, id uuid.UUID, b Branding) error
	List(ctx context.Context) ([]*Tenant, error)
}
