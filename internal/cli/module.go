package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/go-extras/cobraflags"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/dmitrymomot/publishkit/internal/seed"
	"github.com/dmitrymomot/publishkit/pkg/module"
)

const (
	fileFlag         = "file"
	moduleFlag       = "module"
	tenantDomainFlag = "tenant-domain"
	activeFlag       = "active"
)

func newModuleCommand(open Opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "module",
		Short: "Manage modules and tenant overrides",
	}
	cmd.AddCommand(
		newModuleSeedCommand(open),
		newModuleSetCommand(open),
		newModuleListCommand(open),
	)
	return cmd
}

func newModuleSeedCommand(open Opener) *cobra.Command {
	flags := map[string]cobraflags.Flag{
		fileFlag: &cobraflags.StringFlag{
			Name:  fileFlag,
			Value: "modules.yaml",
			Usage: "YAML file listing modules and tenant overrides",
		},
	}

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create or update modules from a YAML file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := seed.Load(flags[fileFlag].GetString())
			if err != nil {
				return err
			}
			return run(cmd, open, func(ctx context.Context, d *Deps, out io.Writer) error {
				res, err := seed.Apply(ctx, f, d.Modules, d.Tenants, d.Gate)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintf(out, "seeded %d modules and %d overrides\n", res.Modules, res.Overrides)
				return err
			})
		},
	}
	cobraflags.RegisterMap(cmd, flags)
	return cmd
}

func newModuleSetCommand(open Opener) *cobra.Command {
	flags := map[string]cobraflags.Flag{
		moduleFlag: &cobraflags.StringFlag{
			Name:  moduleFlag,
			Usage: "Module slug (required)",
		},
		tenantDomainFlag: &cobraflags.StringFlag{
			Name:  tenantDomainFlag,
			Usage: "Domain of the tenant to override (required)",
		},
		activeFlag: &cobraflags.StringFlag{
			Name:  activeFlag,
			Value: "true",
			Usage: "Whether the module is enabled for the tenant",
		},
	}

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Enable or disable a module for one tenant",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			active, err := strconv.ParseBool(flags[activeFlag].GetString())
			if err != nil {
				return fmt.Errorf("--%s: %w", activeFlag, err)
			}
			o := seed.Override{
				Module:       flags[moduleFlag].GetString(),
				TenantDomain: flags[tenantDomainFlag].GetString(),
				Active:       &active,
			}
			if o.Module == "" || o.TenantDomain == "" {
				return fmt.Errorf("--%s and --%s are required", moduleFlag, tenantDomainFlag)
			}
			return run(cmd, open, func(ctx context.Context, d *Deps, out io.Writer) error {
				if err := seed.SetOverride(ctx, d.Modules, d.Tenants, d.Gate, o); err != nil {
					return err
				}
				_, err := fmt.Fprintf(out, "module %s is %s for %s\n", o.Module, state(o.Enabled()), o.TenantDomain)
				return err
			})
		},
	}
	cobraflags.RegisterMap(cmd, flags)
	return cmd
}

func newModuleListCommand(open Opener) *cobra.Command {
	flags := map[string]cobraflags.Flag{
		tenantDomainFlag: &cobraflags.StringFlag{
			Name:  tenantDomainFlag,
			Usage: "Show the effective state for this tenant instead of the global flags",
		},
	}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List modules",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			domain := flags[tenantDomainFlag].GetString()
			return run(cmd, open, func(ctx context.Context, d *Deps, out io.Writer) error {
				tenantID := uuid.Nil
				if domain != "" {
					t, err := d.Tenants.ActiveByDomain(ctx, domain)
					if err != nil {
						return fmt.Errorf("lookup tenant %q: %w", domain, err)
					}
					tenantID = t.ID
				}
				statuses, err := module.Statuses(ctx, d.Modules, tenantID)
				if err != nil {
					return err
				}

				tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "SLUG\tNAME\tSTATE\tSYSTEM\tOVERRIDDEN")
				for _, s := range statuses {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%t\t%t\n", s.Slug, s.Name, state(s.Enabled), s.System, s.Overridden)
				}
				return tw.Flush()
			})
		},
	}
	cobraflags.RegisterMap(cmd, flags)
	return cmd
}

func state(enabled bool) string {
	if enabled {
		return "enabled"
	}
	return "disabled"
}
