package cli

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/go-extras/cobraflags"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/dmitrymomot/publishkit/pkg/tenant"
)

const (
	userFlag = "user"
	roleFlag = "role"
)

func newMemberCommand(open Opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "member",
		Short: "Manage tenant memberships",
	}
	cmd.AddCommand(newMemberGrantCommand(open), newMemberListCommand(open))
	return cmd
}

func newMemberGrantCommand(open Opener) *cobra.Command {
	flags := map[string]cobraflags.Flag{
		tenantDomainFlag: &cobraflags.StringFlag{
			Name:  tenantDomainFlag,
			Usage: "Domain of the tenant (required)",
		},
		userFlag: &cobraflags.StringFlag{
			Name:  userFlag,
			Usage: "User id (required)",
		},
		roleFlag: &cobraflags.StringFlag{
			Name:  roleFlag,
			Value: string(tenant.RoleMember),
			Usage: "Role to grant: OWNER, EDITOR or MEMBER",
		},
	}

	cmd := &cobra.Command{
		Use:   "grant",
		Short: "Grant a user a role within a tenant",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			domain := flags[tenantDomainFlag].GetString()
			if domain == "" {
				return fmt.Errorf("--%s is required", tenantDomainFlag)
			}
			userID, err := uuid.Parse(flags[userFlag].GetString())
			if err != nil || userID == uuid.Nil {
				return fmt.Errorf("--%s: invalid user id %q", userFlag, flags[userFlag].GetString())
			}
			role, err := tenant.ParseRole(flags[roleFlag].GetString())
			if err != nil {
				return fmt.Errorf("--%s: %w", roleFlag, err)
			}
			return run(cmd, open, func(ctx context.Context, d *Deps, out io.Writer) error {
				t, err := d.Tenants.ActiveByDomain(ctx, domain)
				if err != nil {
					return fmt.Errorf("lookup tenant %q: %w", domain, err)
				}
				if err := d.Memberships.Grant(ctx, userID, t.ID, role); err != nil {
					return err
				}
				_, err = fmt.Fprintf(out, "granted %s to %s on %s\n", role, userID, domain)
				return err
			})
		},
	}
	cobraflags.RegisterMap(cmd, flags)
	return cmd
}

func newMemberListCommand(open Opener) *cobra.Command {
	flags := map[string]cobraflags.Flag{
		tenantDomainFlag: &cobraflags.StringFlag{
			Name:  tenantDomainFlag,
			Usage: "Domain of the tenant (required)",
		},
	}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the members of a tenant",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			domain := flags[tenantDomainFlag].GetString()
			if domain == "" {
				return fmt.Errorf("--%s is required", tenantDomainFlag)
			}
			return run(cmd, open, func(ctx context.Context, d *Deps, out io.Writer) error {
				t, err := d.Tenants.ActiveByDomain(ctx, domain)
				if err != nil {
					return fmt.Errorf("lookup tenant %q: %w", domain, err)
				}
				members, err := d.Memberships.Members(ctx, t.ID)
				if err != nil {
					return err
				}
				tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "USER\tROLE")
				for _, userID := range members {
					role, err := d.Memberships.Role(ctx, userID, t.ID)
					if err != nil {
						return err
					}
					fmt.Fprintf(tw, "%s\t%s\n", userID, role)
				}
				return tw.Flush()
			})
		},
	}
	cobraflags.RegisterMap(cmd, flags)
	return cmd
}
