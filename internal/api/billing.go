package api

import (
	"net/http"

	"voice-console/pkg/models"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
)

type BillingHandler struct {
	env *Env
}

func NewBillingHandler(env *Env) *BillingHandler {
	return &BillingHandler{env: env}
}

// Get fetches balance and transaction history together.
func (h *BillingHandler) Get(c *gin.Context) {
	gw := h.env.Gateway.For(currentSession(c))
	var out models.Billing

	g, ctx := errgroup.WithContext(c.Request.Context())
	g.Go(func() error {
		b, err := gw.CreditBalance(ctx)
		out.Balance = b
		return err
	})
	g.Go(func() error {
		hist, err := gw.CreditHistory(ctx)
		out.History = hist
		return err
	})
	if err := g.Wait(); err != nil {
		h.env.respondError(c, err)
		return
	}
	if out.History == nil {
		out.History = []models.CreditTransaction{}
	}
	c.JSON(http.StatusOK, out)
}

func (h *BillingHandler) Recharge(c *gin.Context) {
	var req models.RechargeRequest
	if !bind(c, &req) {
		return
	}
	out, err := h.env.Gateway.For(currentSession(c)).Recharge(c.Request.Context(), req.Amount)
	if err != nil {
		h.env.respondError(c, err)
		return
	}
	c.Data(http.StatusOK, "application/json", nonEmpty(out))
}
