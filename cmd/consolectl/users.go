package main

import (
	"context"
	"errors"

	"voice-console/internal/gateway"
	"voice-console/internal/optimistic"
	"voice-console/pkg/models"

	"github.com/spf13/cobra"
)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Manage administered users (admin)",
}

var usersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List users in the selected tenant",
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
		if _, err := a.roles.Require(cmd.Context(), gateway.TokenOf(s), gw, models.RoleAdmin); err != nil {
			return err
		}
		users, err := gw.SubUsers(cmd.Context())
		if err != nil {
			return err
		}
		s.Users().Replace(users)
		return render(cmd.OutOrStdout(), map[string]interface{}{"users": filterTenant(s.Users().Store().Snapshot(), s.TenantScope())})
	},
}

var usersToggleCmd = &cobra.Command{
	Use:   "toggle <user-id>",
	Short: "Flip a user's active flag",
	Args:  cobra.ExactArgs(1),
	RunE:  runUsersToggle,
}

func init() {
	usersCmd.AddCommand(usersListCmd, usersToggleCmd)
}

// runUsersToggle applies the flip provisionally, then waits for the backend
// to confirm or revert it.
func runUsersToggle(cmd *cobra.Command, args []string) error {
	a, err := getApp()
	if err != nil {
		return err
	}
	s, err := a.currentSession(cmd.Context())
	if err != nil {
		return err
	}
	gw := a.client.For(s)
	if _, err := a.roles.Require(cmd.Context(), gateway.TokenOf(s), gw, models.RoleAdmin); err != nil {
		return err
	}
	users, err := gw.SubUsers(cmd.Context())
	if err != nil {
		return err
	}
	s.Users().Replace(users)

	id := args[0]
	result, err := s.Users().Apply(cmd.Context(), id, "isActive", func(u models.UserProfile) models.UserProfile {
		u.IsActive = !u.IsActive
		return u
	}, func(ctx context.Context) error {
		return gw.ToggleUserStatus(ctx, id)
	})
	if errors.Is(err, optimistic.ErrUnknownKey) {
		return errors.New("no such user: " + id)
	}
	if err != nil {
		return err
	}
	if err := <-result; err != nil {
		return err
	}
	u, _ := s.Users().Store().Get(id)
	return render(cmd.OutOrStdout(), u)
}

func filterTenant(users []models.UserProfile, scope string) []models.UserProfile {
	if scope == "" {
		return users
	}
	out := make([]models.UserProfile, 0, len(users))
	for _, u := range users {
		if u.TenantKey() == scope {
			out = append(out, u)
		}
	}
	return out
}
