package tenant

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

var hexColor = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// CreateParams describes a tenant to register.
type CreateParams struct {
	Name           string
	Domain         string
	BrandName      string
	PrimaryColor   string
	SecondaryColor string
	FooterText     string
}

// Register validates p and creates an active tenant in reg.
// A domain that is already registered yields ErrDomainTaken.
func Register(ctx context.Context, reg Registry, p CreateParams) (*Tenant, error) {
	p.Name = strings.TrimSpace(p.Name)
	p.Domain = strings.ToLower(strings.TrimSpace(p.Domain))
	if p.BrandName == "" {
		p.BrandName = p.Name
	}
	if p.PrimaryColor == "" {
		p.PrimaryColor = DefaultPrimaryColor
	}
	if p.SecondaryColor == "" {
		p.SecondaryColor = DefaultSecondaryColor
	}

	var problems []error
	if p.Name == "" {
		problems = append(problems, errors.New("name is required"))
	}
	if p.Domain == "" || strings.ContainsAny(p.Domain, " /:") {
		problems = append(problems, fmt.Errorf("invalid domain %q", p.Domain))
	}
	if err := ValidateBranding(Branding{PrimaryColor: p.PrimaryColor, SecondaryColor: p.SecondaryColor}); err != nil {
		problems = append(problems, err)
	}
	if len(problems) > 0 {
		return nil, errors.Join(append([]error{ErrInvalidTenant}, problems...)...)
	}

	exists, err := reg.DomainExists(ctx, p.Domain)
	if err != nil {
		return nil, fmt.Errorf("check domain %q: %w", p.Domain, err)
	}
	if exists {
		return nil, fmt.Errorf("%w: %s", ErrDomainTaken, p.Domain)
	}

	now := time.Now().UTC()
	domain := p.Domain
	t := &Tenant{
		ID:     uuid.New(),
		Name:   p.Name,
		Domain: &domain,
		Branding: Branding{
			BrandName:      p.BrandName,
			PrimaryColor:   p.PrimaryColor,
			SecondaryColor: p.SecondaryColor,
			FooterText:     p.FooterText,
		},
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := reg.Create(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// ValidateBranding checks every non-empty colour is a hex colour.
func ValidateBranding(b Branding) error {
	colors := map[string]string{
		"primary_color":        b.PrimaryColor,
		"secondary_color":      b.SecondaryColor,
		"primary_color_dark":   b.PrimaryColorDark,
		"secondary_color_dark": b.SecondaryColorDark,
	}
	var errs []error
	for field, c := range colors {
		if c != "" && !hexColor.MatchString(c) {
			errs = append(errs, fmt.Errorf("%s: %q is not a hex colour", field, c))
		}
	}
	if len(errs) > 0 {
		return errors.Join(append([]error{ErrInvalidTenant}, errs...)...)
	}
	return nil
}
