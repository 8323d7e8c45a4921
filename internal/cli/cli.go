// Package cli implements the publishctl administrative commands.
package cli

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/publishkit/internal/seed"
	"github.com/dmitrymomot/publishkit/pkg/module"
	"github.com/dmitrymomot/publishkit/pkg/tenant"
)

// TenantStore is the tenant storage the commands operate on.
type TenantStore interface {
	tenant.Store
	tenant.Registry
}

// MembershipStore is the membership storage the commands operate on.
type MembershipStore interface {
	tenant.MembershipStore
	tenant.MembershipRegistry
}

// Deps are the collaborators of a command run.
type Deps struct {
	Tenants     TenantStore
	Memberships MembershipStore
	Modules     module.Registry
	Gate        seed.Invalidator
	Migrate     func(ctx context.Context) error
}

// Opener connects the collaborators for one command run. The returned
// function releases them.
type Opener func(ctx context.Context) (*Deps, func(), error)

// NewRootCommand builds the command tree.
func NewRootCommand(open Opener) *cobra.Command {
	root := &cobra.Command{
		Use:           "publishctl",
		Short:         "Administer tenants, members and modules of the publishing backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		newMigrateCommand(open),
		newTenantCommand(open),
		newMemberCommand(open),
		newModuleCommand(open),
	)
	return root
}

// run opens the collaborators, calls fn and releases them.
func run(cmd *cobra.Command, open Opener, fn func(ctx context.Context, d *Deps, out io.Writer) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	d, release, err := open(ctx)
	if err != nil {
		return err
	}
	defer release()
	return fn(ctx, d, cmd.OutOrStdout())
}

func newMigrateCommand(open Opener) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, open, func(ctx context.Context, d *Deps, out io.Writer) error {
				if err := d.Migrate(ctx); err != nil {
					return err
				}
				_, err := io.WriteString(out, "migrations applied\n")
				return err
			})
		},
	}
}
