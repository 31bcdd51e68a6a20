package main

import (
	"fmt"

	"voice-console/internal/gateway"
	"voice-console/internal/session"
	"voice-console/pkg/models"

	"github.com/spf13/cobra"
)

var tenantsCmd = &cobra.Command{
	Use:   "tenants",
	Short: "List and select tenants (super admin)",
}

var tenantsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tenants and the selected one",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, s, err := superAdminSession(cmd)
		if err != nil {
			return err
		}
		tenants, err := a.client.For(s).Tenants(cmd.Context())
		if err != nil {
			return err
		}
		return render(cmd.OutOrStdout(), map[string]interface{}{"tenants": tenants, "selected": s.TenantScope()})
	},
}

var tenantsSelectCmd = &cobra.Command{
	Use:   "select <tenant-id>",
	Short: "Scope subsequent requests to one tenant",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, s, err := superAdminSession(cmd)
		if err != nil {
			return err
		}
		if err := a.sessions.SelectTenant(cmd.Context(), s, args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "tenant %s selected\n", args[0])
		return nil
	},
}

var tenantsClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Drop the tenant selection",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, s, err := superAdminSession(cmd)
		if err != nil {
			return err
		}
		if err := a.sessions.SelectTenant(cmd.Context(), s, ""); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "tenant selection cleared")
		return nil
	},
}

func init() {
	tenantsCmd.AddCommand(tenantsListCmd, tenantsSelectCmd, tenantsClearCmd)
}

func superAdminSession(cmd *cobra.Command) (*app, *session.Session, error) {
	a, err := getApp()
	if err != nil {
		return nil, nil, err
	}
	s, err := a.currentSession(cmd.Context())
	if err != nil {
		return nil, nil, err
	}
	if _, err := a.roles.Require(cmd.Context(), gateway.TokenOf(s), a.client.For(s), models.RoleSuperAdmin); err != nil {
		return nil, nil, err
	}
	return a, s, nil
}
