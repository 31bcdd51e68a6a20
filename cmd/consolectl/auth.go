package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"voice-console/internal/gateway"
	"voice-console/pkg/models"

	"github.com/spf13/cobra"
)

var loginCmd = &cobra.Command{
	Use:   "login <email>",
	Short: "Sign in and store a console session",
	Long:  "Signs in against the backend. The password is read from $CONSOLE_PASSWORD or the first line of stdin.",
	Args:  cobra.ExactArgs(1),
	RunE:  runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "End the current console session",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := getApp()
		if err != nil {
			return err
		}
		s, err := a.currentSession(cmd.Context())
		if err != nil {
			return err
		}
		a.roles.Forget(gateway.TokenOf(s))
		if err := a.sessions.Logout(cmd.Context(), s); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "signed out")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in user and verified role",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := getApp()
		if err != nil {
			return err
		}
		s, err := a.currentSession(cmd.Context())
		if err != nil {
			return err
		}
		gw := a.client.For(s)
		profile, err := gw.Me(cmd.Context())
		if err != nil {
			return err
		}
		if err := a.sessions.RefreshProfile(cmd.Context(), s, profile); err != nil {
			return err
		}
		id, err := a.roles.Resolve(cmd.Context(), gateway.TokenOf(s), gw)
		if err != nil {
			return err
		}
		return render(cmd.OutOrStdout(), map[string]interface{}{
			"session": s.ID,
			"user":    profile,
			"role":    id.Role,
			"tenant":  s.TenantScope(),
		})
	},
}

func runLogin(cmd *cobra.Command, args []string) error {
	a, err := getApp()
	if err != nil {
		return err
	}
	password := os.Getenv("CONSOLE_PASSWORD")
	if password == "" {
		line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		if err != nil && line == "" {
			return fmt.Errorf("reading password: %w", err)
		}
		password = strings.TrimRight(line, "\r\n")
	}

	resp, err := a.client.For(nil).Login(cmd.Context(), models.LoginRequest{Email: args[0], Password: password})
	if err != nil {
		return err
	}
	s, err := a.sessions.Create(cmd.Context(), resp.Token, resp.User)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "export CONSOLE_SESSION=%s\n", s.ID)
	return render(cmd.OutOrStdout(), map[string]interface{}{"session": s.ID, "user": resp.User})
}
