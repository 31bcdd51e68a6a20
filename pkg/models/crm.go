package models

import "encoding/json"

// ContactStatus tracks a contact through a calling campaign.
type ContactStatus string

const (
	ContactPending   ContactStatus = "pending"
	ContactCalling   ContactStatus = "calling"
	ContactCompleted ContactStatus = "completed"
	ContactFailed    ContactStatus = "failed"
	ContactNoAnswer  ContactStatus = "no-answer"
	ContactBusy      ContactStatus = "busy"
)

// Contact represents a person a campaign can call
type Contact struct {
	ID       string        `json:"id"`
	Name     string        `json:"name"`
	Phone    string        `json:"phone"`
	Status   ContactStatus `json:"status"`
	Retries  int           `json:"retries"`
	TenantID string        `json:"tenant_id,omitempty"`
	ListID   string        `json:"list_id,omitempty"`
}

func (c *Contact) UnmarshalJSON(b []byte) error {
	type alias Contact
	aux := struct {
		*alias
		MongoID string     `json:"_id"`
		Tenant  *TenantRef `json:"tenant_id"`
	}{alias: (*alias)(c)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	c.ID = firstNonEmpty(c.ID, aux.MongoID)
	if aux.Tenant != nil {
		c.TenantID = aux.Tenant.ID
	}
	if c.Status == "" {
		c.Status = ContactPending
	}
	return nil
}

// ContactList groups contacts for campaign targeting
type ContactList struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Description  string `json:"description,omitempty"`
	ContactCount int    `json:"contactCount"`
	CreatedAt    string `json:"createdAt,omitempty"`
}

func (l *ContactList) UnmarshalJSON(b []byte) error {
	type alias ContactList
	aux := struct {
		*alias
		MongoID  string            `json:"_id"`
		Contacts []json.RawMessage `json:"contacts"`
	}{alias: (*alias)(l)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	l.ID = firstNonEmpty(l.ID, aux.MongoID)
	if l.ContactCount == 0 {
		l.ContactCount = len(aux.Contacts)
	}
	return nil
}

// ContactInput is one row accepted by the bulk import endpoint
type ContactInput struct {
	Name     string `json:"name" binding:"required"`
	Phone    string `json:"phone" binding:"required"`
	TenantID string `json:"tenant_id,omitempty"`
	ListID   string `json:"list_id,omitempty"`
}

type CreateContactListRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description,omitempty"`
}
