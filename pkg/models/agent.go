package models

import "encoding/json"

// Agent is an AI calling persona assignable per tenant.
type Agent struct {
	ID                  string   `json:"id"`
	Name                string   `json:"name"`
	Description         string   `json:"description,omitempty"`
	Prompt              string   `json:"prompt,omitempty"`
	BolnaAgentIDs       []string `json:"bolnaAgentIds"`
	AssignedPhoneNumber string   `json:"assignedPhoneNumber,omitempty"`
	Gender              string   `json:"gender,omitempty"`
	TenantID            string   `json:"tenant_id,omitempty"`
	CreatedAt           string   `json:"createdAt,omitempty"`
}

func (a *Agent) UnmarshalJSON(b []byte) error {
	type alias Agent
	aux := struct {
		*alias
		MongoID      string     `json:"_id"`
		BolnaAgentID string     `json:"bolnaAgentId"`
		Tenant       *TenantRef `json:"tenant_id"`
	}{alias: (*alias)(a)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	a.ID = firstNonEmpty(a.ID, aux.MongoID)
	if aux.BolnaAgentID != "" && !contains(a.BolnaAgentIDs, aux.BolnaAgentID) {
		a.BolnaAgentIDs = append(a.BolnaAgentIDs, aux.BolnaAgentID)
	}
	if a.BolnaAgentIDs == nil {
		a.BolnaAgentIDs = []string{}
	}
	if aux.Tenant != nil {
		a.TenantID = aux.Tenant.ID
	}
	return nil
}

// SaveAgentRequest is posted to /agent.
type SaveAgentRequest struct {
	Name         string `json:"name" binding:"required"`
	Prompt       string `json:"prompt" binding:"required"`
	BolnaAgentID string `json:"bolnaAgentId,omitempty"`
	TenantID     string `json:"tenant_id,omitempty"`
}

type AssignAgentsRequest struct {
	AgentIDs []string `json:"agentIds" binding:"required"`
}

func contains(xs []string, v string) bool {
	for _, x := range xs {
		if x == v {
			return true
		}
	}
	return false
}
