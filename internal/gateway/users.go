package gateway

import (
	"context"
	"net/http"
	"net/url"

	"voice-console/pkg/models"
)

// SubUsers lists every user the caller administers. Tenant filtering is the
// caller's job.
func (s *Scoped) SubUsers(ctx context.Context) ([]models.UserProfile, error) {
	raw, err := s.get(ctx, "/admin/sub-users")
	if err != nil {
		return nil, err
	}
	return DecodeCollection[models.UserProfile](raw, "users", "subUsers"), nil
}

func (s *Scoped) CreateUser(ctx context.Context, req models.CreateUserRequest) (*models.UserProfile, error) {
	raw, err := s.send(ctx, http.MethodPost, "/admin/users", req)
	if err != nil {
		return nil, err
	}
	u, err := DecodeObject[models.UserProfile](raw, "user")
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// ToggleUserStatus flips isActive on the backend.
func (s *Scoped) ToggleUserStatus(ctx context.Context, userID string) error {
	_, err := s.send(ctx, http.MethodPatch, "/admin/sub-users/"+url.PathEscape(userID)+"/status", nil)
	return err
}

func (s *Scoped) UpdateUserBalance(ctx context.Context, userID string, balance float64) error {
	_, err := s.send(ctx, http.MethodPatch, "/admin/sub-users/"+url.PathEscape(userID)+"/balance", map[string]float64{"balance": balance})
	return err
}

func (s *Scoped) AssignUserTenant(ctx context.Context, userID, tenantID string) error {
	_, err := s.send(ctx, http.MethodPatch, "/admin/sub-users/"+url.PathEscape(userID)+"/tenant", models.AssignTenantRequest{TenantID: tenantID})
	return err
}

func (s *Scoped) UpdateUserPhone(ctx context.Context, userID, phone string) error {
	_, err := s.send(ctx, http.MethodPut, "/users/"+url.PathEscape(userID)+"/phone", models.UpdatePhoneRequest{PhoneNumber: phone})
	return err
}

func (s *Scoped) AssignUserAgents(ctx context.Context, userID string, agentIDs []string) error {
	_, err := s.send(ctx, http.MethodPatch, "/admin/users/"+url.PathEscape(userID)+"/agents", models.AssignAgentsRequest{AgentIDs: agentIDs})
	return err
}
