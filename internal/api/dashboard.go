package api

import (
	"encoding/json"
	"net/http"

	"voice-console/pkg/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type DashboardHandler struct {
	env *Env
}

func NewDashboardHandler(env *Env) *DashboardHandler {
	return &DashboardHandler{env: env}
}

// Get serves admin statistics to a verified super admin and client
// statistics to everyone else, with the system status alongside.
func (h *DashboardHandler) Get(c *gin.Context) {
	super, err := h.env.isSuperAdmin(c)
	if err != nil {
		h.env.respondError(c, err)
		return
	}
	gw := h.env.Gateway.For(currentSession(c))
	out := models.Dashboard{Scope: "client"}
	if super {
		out.Scope = "admin"
	}

	var system json.RawMessage
	g, ctx := errgroup.WithContext(c.Request.Context())
	g.Go(func() error {
		if super {
			st, err := gw.AdminStats(ctx)
			out.Admin = st
			return err
		}
		st, err := gw.ClientStats(ctx)
		out.Client = st
		return err
	})
	g.Go(func() error {
		raw, err := gw.SystemStatus(ctx)
		if err != nil {
			h.env.Logger.Debug("system status unavailable", zap.Error(err))
			return nil
		}
		system = raw
		return nil
	})
	if err := g.Wait(); err != nil {
		h.env.respondError(c, err)
		return
	}
	if len(system) > 0 && json.Valid(system) {
		out.System = system
	}
	c.JSON(http.StatusOK, out)
}

func (h *DashboardHandler) SystemStatus(c *gin.Context) {
	out, err := h.env.Gateway.For(currentSession(c)).SystemStatus(c.Request.Context())
	if err != nil {
		h.env.respondError(c, err)
		return
	}
	c.Data(http.StatusOK, "application/json", nonEmpty(out))
}
