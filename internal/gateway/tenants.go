package gateway

import (
	"context"
	"net/http"
	"net/url"

	"voice-console/pkg/models"
)

func (s *Scoped) Tenants(ctx context.Context) ([]models.Tenant, error) {
	raw, err := s.get(ctx, "/tenants")
	if err != nil {
		return nil, err
	}
	return DecodeCollection[models.Tenant](raw, "tenants"), nil
}

func (s *Scoped) CreateTenant(ctx context.Context, req models.CreateTenantRequest) (*models.Tenant, error) {
	raw, err := s.send(ctx, http.MethodPost, "/tenants", req)
	if err != nil {
		return nil, err
	}
	t, err := DecodeObject[models.Tenant](raw, "tenant")
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// ConfigureTenant binds a tenant to its calling agent and assigned number.
func (s *Scoped) ConfigureTenant(ctx context.Context, tenantID string, cfg models.TenantConfig) error {
	_, err := s.send(ctx, http.MethodPatch, "/tenants/"+url.PathEscape(tenantID)+"/config", cfg)
	return err
}
