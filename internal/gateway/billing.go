package gateway

import (
	"context"
	"encoding/json"
	"net/http"

	"voice-console/pkg/models"
)

// CreditBalance accepts {balance}, {data:{balance}} or a bare number; anything
// else reads as zero.
func (s *Scoped) CreditBalance(ctx context.Context) (models.Amount, error) {
	raw, err := s.get(ctx, "/credits/balance")
	if err != nil {
		return 0, err
	}
	b, err := DecodeObject[models.CreditBalance](raw)
	if err != nil {
		return 0, nil
	}
	return b.Balance, nil
}

func (s *Scoped) CreditHistory(ctx context.Context) ([]models.CreditTransaction, error) {
	raw, err := s.get(ctx, "/credits/history")
	if err != nil {
		return nil, err
	}
	return DecodeCollection[models.CreditTransaction](raw, "history", "transactions"), nil
}

// Recharge opens a payment session; the answer is passed through untouched.
func (s *Scoped) Recharge(ctx context.Context, amount float64) (json.RawMessage, error) {
	return s.send(ctx, http.MethodPost, "/billing/recharge", models.RechargeRequest{Amount: amount})
}

func (s *Scoped) AdminStats(ctx context.Context) (*models.AdminStats, error) {
	raw, err := s.get(ctx, "/admin/stats")
	if err != nil {
		return nil, err
	}
	st, err := DecodeObject[models.AdminStats](raw, "stats")
	if err != nil {
		return nil, err
	}
	if st.CallActivity == nil {
		st.CallActivity = []models.CallActivityPoint{}
	}
	return &st, nil
}

func (s *Scoped) ClientStats(ctx context.Context) (*models.ClientStats, error) {
	raw, err := s.get(ctx, "/client/stats")
	if err != nil {
		return nil, err
	}
	st, err := DecodeObject[models.ClientStats](raw, "stats")
	if err != nil {
		return nil, err
	}
	return &st, nil
}

func (s *Scoped) SystemStatus(ctx context.Context) (json.RawMessage, error) {
	return s.get(ctx, "/system-status")
}
