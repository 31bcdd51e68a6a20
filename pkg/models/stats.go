package models

import (
	"bytes"
	"encoding/json"
)

type CallActivityPoint struct {
	Date  string `json:"date"`
	Calls int    `json:"calls"`
}

// AdminStats is the aggregate view shown to super admins.
type AdminStats struct {
	TotalSubUsers        int                 `json:"totalSubUsers"`
	TotalTenants         int                 `json:"totalTenants"`
	TotalCreditsInSystem Amount              `json:"totalCreditsInSystem"`
	ActiveCampaigns      int                 `json:"activeCampaigns"`
	CallActivity         []CallActivityPoint `json:"callActivity"`
}

// ClientStats is the per-tenant view shown to everyone else.
type ClientStats struct {
	Balance       Amount `json:"balance"`
	TotalContacts int    `json:"totalContacts"`
	CallsMade     int    `json:"callsMade"`
}

// Dashboard carries exactly one of Admin or Client.
type Dashboard struct {
	Scope  string          `json:"scope"`
	Admin  *AdminStats     `json:"admin,omitempty"`
	Client *ClientStats    `json:"client,omitempty"`
	System json.RawMessage `json:"system,omitempty"`
}

type CreditTransaction struct {
	ID          string `json:"id"`
	Amount      Amount `json:"amount"`
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
	CreatedAt   string `json:"createdAt"`
}

func (t *CreditTransaction) UnmarshalJSON(b []byte) error {
	type alias CreditTransaction
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

// CreditBalance is /credits/balance, which arrives as {balance: n} or as a bare number.
type CreditBalance struct {
	Balance Amount `json:"balance"`
}

func (c *CreditBalance) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '{' {
		var obj struct {
			Balance Amount `json:"balance"`
		}
		if err := json.Unmarshal(b, &obj); err != nil {
			return err
		}
		c.Balance = obj.Balance
		return nil
	}
	return c.Balance.UnmarshalJSON(b)
}

type Billing struct {
	Balance Amount              `json:"balance"`
	History []CreditTransaction `json:"history"`
}

type RechargeRequest struct {
	Amount float64 `json:"amount" binding:"required,gt=0"`
}

type UpdateBalanceRequest struct {
	Balance *float64 `json:"balance" binding:"required,gte=0"`
}

type AssignTenantRequest struct {
	TenantID string `json:"tenant_id" binding:"required"`
}

type UpdatePhoneRequest struct {
	PhoneNumber string `json:"phoneNumber" binding:"required"`
}
