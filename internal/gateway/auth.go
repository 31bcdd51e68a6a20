package gateway

import (
	"context"
	"encoding/json"
	"net/http"

	"voice-console/pkg/models"
)

// Login exchanges credentials for a token and profile. A 2xx answer without a
// token or user id is ErrMalformed.
func (s *Scoped) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	var out models.LoginResponse
	if err := s.sendInto(ctx, http.MethodPost, "/auth/login", req, &out); err != nil {
		return nil, err
	}
	if out.Token == "" || out.User == nil {
		return nil, ErrMalformed
	}
	return &out, nil
}

func (s *Scoped) Register(ctx context.Context, req models.RegisterRequest) (json.RawMessage, error) {
	return s.send(ctx, http.MethodPost, "/auth/register", req)
}

// Me fetches the caller's profile as the backend currently sees it.
func (s *Scoped) Me(ctx context.Context) (*models.UserProfile, error) {
	raw, err := s.get(ctx, "/auth/me")
	if err != nil {
		return nil, err
	}
	u, err := DecodeObject[models.UserProfile](raw, "user")
	if err != nil {
		return nil, err
	}
	return &u, nil
}
