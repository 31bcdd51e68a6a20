package gateway

import (
	"context"
	"net/http"

	"voice-console/pkg/models"
)

func (s *Scoped) Agents(ctx context.Context) ([]models.Agent, error) {
	raw, err := s.get(ctx, "/agent")
	if err != nil {
		return nil, err
	}
	return DecodeCollection[models.Agent](raw, "agents"), nil
}

// AdminAgents lists agents across every tenant.
func (s *Scoped) AdminAgents(ctx context.Context) ([]models.Agent, error) {
	raw, err := s.get(ctx, "/admin/agents")
	if err != nil {
		return nil, err
	}
	return DecodeCollection[models.Agent](raw, "agents"), nil
}

func (s *Scoped) SaveAgent(ctx context.Context, req models.SaveAgentRequest) (*models.Agent, error) {
	raw, err := s.send(ctx, http.MethodPost, "/agent", req)
	if err != nil {
		return nil, err
	}
	a, err := DecodeObject[models.Agent](raw, "agent")
	if err != nil {
		return nil, err
	}
	return &a, nil
}
