package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/go-extras/cobraflags"
	"github.com/spf13/cobra"

	"github.com/dmitrymomot/publishkit/pkg/tenant"
)

const (
	nameFlag           = "name"
	domainFlag         = "domain"
	brandNameFlag      = "brand-name"
	primaryColorFlag   = "primary-color"
	secondaryColorFlag = "secondary-color"
	footerTextFlag     = "footer-text"
)

func newTenantCommand(open Opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tenant",
		Short: "Manage tenants",
	}
	cmd.AddCommand(newTenantCreateCommand(open), newTenantListCommand(open))
	return cmd
}

func newTenantCreateCommand(open Opener) *cobra.Command {
	flags := map[string]cobraflags.Flag{
		nameFlag: &cobraflags.StringFlag{
			Name:  nameFlag,
			Usage: "Tenant name (required)",
		},
		domainFlag: &cobraflags.StringFlag{
			Name:  domainFlag,
			Usage: "Domain the tenant is served on, e.g. news.example.com (required)",
		},
		brandNameFlag: &cobraflags.StringFlag{
			Name:  brandNameFlag,
			Usage: "Brand name shown to readers; defaults to the tenant name",
		},
		primaryColorFlag: &cobraflags.StringFlag{
			Name:  primaryColorFlag,
			Value: tenant.DefaultPrimaryColor,
			Usage: "Primary brand colour",
		},
		secondaryColorFlag: &cobraflags.StringFlag{
			Name:  secondaryColorFlag,
			Value: tenant.DefaultSecondaryColor,
			Usage: "Secondary brand colour",
		},
		footerTextFlag: &cobraflags.StringFlag{
			Name:  footerTextFlag,
			Usage: "Footer text",
		},
	}

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Register a new tenant",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p := tenant.CreateParams{
				Name:           flags[nameFlag].GetString(),
				Domain:         flags[domainFlag].GetString(),
				BrandName:      flags[brandNameFlag].GetString(),
				PrimaryColor:   flags[primaryColorFlag].GetString(),
				SecondaryColor: flags[secondaryColorFlag].GetString(),
				FooterText:     flags[footerTextFlag].GetString(),
			}
			return run(cmd, open, func(ctx context.Context, d *Deps, out io.Writer) error {
				t, err := tenant.Register(ctx, d.Tenants, p)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintf(out, "created tenant %s (%s) on %s\n", t.Name, t.ID, *t.Domain)
				return err
			})
		},
	}
	cobraflags.RegisterMap(cmd, flags)
	return cmd
}

func newTenantListCommand(open Opener) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List tenants",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, open, func(ctx context.Context, d *Deps, out io.Writer) error {
				list, err := d.Tenants.List(ctx)
				if err != nil {
					return err
				}
				tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tDOMAIN\tNAME\tACTIVE")
				for _, t := range list {
					domain := "-"
					if t.Domain != nil {
						domain = *t.Domain
					}
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", t.ID, domain, t.Name, strconv.FormatBool(t.Active))
				}
				return tw.Flush()
			})
		},
	}
}
