package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"voice-console/pkg/models"
)

func (s *Scoped) InitiateCalls(ctx context.Context, req models.InitiateCallRequest) (json.RawMessage, error) {
	return s.send(ctx, http.MethodPost, "/calls/initiate", req)
}

func (s *Scoped) StartCampaign(ctx context.Context, req models.StartCampaignRequest) (json.RawMessage, error) {
	return s.send(ctx, http.MethodPost, "/campaigns/start", req)
}

// History returns one page of the caller's call history. allTenants selects
// the super admin view across every tenant.
func (s *Scoped) History(ctx context.Context, page, limit int, allTenants bool) (*models.HistoryPage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	path := "/call-logs/history"
	if allTenants {
		path = "/admin/all-calls"
	}
	path += "?" + url.Values{"page": {strconv.Itoa(page)}, "limit": {strconv.Itoa(limit)}}.Encode()

	raw, err := s.get(ctx, path)
	if err != nil {
		return nil, err
	}

	out := &models.HistoryPage{
		Calls:      DecodeCollection[models.CallLogEntry](raw, "calls", "history"),
		Pagination: models.Pagination{CurrentPage: page},
	}
	var env struct {
		Pagination *models.Pagination `json:"pagination"`
	}
	if json.Unmarshal(raw, &env) == nil && env.Pagination != nil {
		out.Pagination = *env.Pagination
	}
	return out, nil
}

// SyncCallResults asks the backend to pull finished call results.
func (s *Scoped) SyncCallResults(ctx context.Context, allTenants bool) (json.RawMessage, error) {
	path := "/call-logs/sync"
	if allTenants {
		path = "/admin/call-logs/sync"
	}
	return s.send(ctx, http.MethodPost, path, nil)
}

func (s *Scoped) CallStats(ctx context.Context) (json.RawMessage, error) {
	return s.get(ctx, "/call-logs/stats")
}
