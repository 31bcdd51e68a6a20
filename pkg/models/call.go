package models

import "encoding/json"

// CallLogEntry is a completed call as recorded by the backend. Read-only.
type CallLogEntry struct {
	ID         string `json:"id"`
	Phone      string `json:"phone"`
	Status     string `json:"status"`
	Transcript string `json:"transcript"`
	Summary    string `json:"summary"`
	Cost       Amount `json:"cost"`
	Duration   Amount `json:"duration"`
	CreatedAt  string `json:"createdAt"`
}

func (e *CallLogEntry) UnmarshalJSON(b []byte) error {
	type alias CallLogEntry
	aux := struct {
		*alias
		MongoID     string `json:"_id"`
		PhoneNumber string `json:"phoneNumber"`
	}{alias: (*alias)(e)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	e.ID = firstNonEmpty(e.ID, aux.MongoID)
	e.Phone = firstNonEmpty(e.Phone, aux.PhoneNumber)
	return nil
}

// TranscriptLine is one "speaker: text" line of a call transcript.
type TranscriptLine struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

type Pagination struct {
	CurrentPage    int    `json:"currentPage"`
	TotalPages     int    `json:"totalPages"`
	HasNextPage    bool   `json:"hasNextPage"`
	HasPrevPage    bool   `json:"hasPrevPage"`
	TotalCalls     int    `json:"totalCalls"`
	GrandTotalBurn Amount `json:"grandTotalBurn"`
}

// HistoryPage is one page of call history.
type HistoryPage struct {
	Calls      []CallLogEntry `json:"calls"`
	Pagination Pagination     `json:"pagination"`
}

// InitiateCallRequest starts calls either to one number or to a list of recipients.
type InitiateCallRequest struct {
	PhoneNumber string   `json:"phoneNumber,omitempty"`
	Recipients  []string `json:"recipients,omitempty"`
	AgentID     string   `json:"agent_id"`
	TenantID    string   `json:"tenant_id,omitempty"`
	Gender      string   `json:"gender,omitempty"`
}

// CampaignRequest is what the console accepts; ListID expands to recipients.
type CampaignRequest struct {
	PhoneNumber string `json:"phoneNumber"`
	ListID      string `json:"list_id"`
	AgentID     string `json:"agent_id" binding:"required"`
	Gender      string `json:"gender" binding:"omitempty,oneof=male female"`
}

type StartCampaignRequest struct {
	ListID  string `json:"list_id" binding:"required"`
	AgentID string `json:"agent_id" binding:"required"`
}
