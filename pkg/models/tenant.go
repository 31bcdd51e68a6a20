package models

import "encoding/json"

// Tenant is a billing and ownership scope. Selecting one narrows every list view.
type Tenant struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Balance        Amount `json:"balance"`
	BolnaAgentID   string `json:"bolnaAgentId,omitempty"`
	AssignedNumber string `json:"assignedNumber,omitempty"`
	CreatedAt      string `json:"createdAt,omitempty"`
}

func (t *Tenant) UnmarshalJSON(b []byte) error {
	type alias Tenant
	aux := struct {
		*alias
		MongoID string `json:"_id"`
	}{alias: (*alias)(t)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	t.ID = firstNonEmpty(t.ID, aux.MongoID)
	return nil
}

type CreateTenantRequest struct {
	Name string `json:"name" binding:"required"`
}

// TenantConfig binds a tenant to its calling agent and outbound number.
type TenantConfig struct {
	BolnaAgentID   string `json:"bolnaAgentId" binding:"required"`
	AssignedNumber string `json:"assignedNumber" binding:"required"`
}

type SelectTenantRequest struct {
	TenantID string `json:"tenant_id"`
}
