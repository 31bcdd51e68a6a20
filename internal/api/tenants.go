package api

import (
	"net/http"

	"voice-console/pkg/models"

	"github.com/gin-gonic/gin"
)

type TenantHandler struct {
	env *Env
}

func NewTenantHandler(env *Env) *TenantHandler {
	return &TenantHandler{env: env}
}

func (h *TenantHandler) List(c *gin.Context) {
	s := currentSession(c)
	tenants, err := h.env.Gateway.For(s).Tenants(c.Request.Context())
	if err != nil {
		h.env.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tenants": tenants, "selected": s.TenantScope()})
}

func (h *TenantHandler) Create(c *gin.Context) {
	var req models.CreateTenantRequest
	if !bind(c, &req) {
		return
	}
	t, err := h.env.Gateway.For(currentSession(c)).CreateTenant(c.Request.Context(), req)
	if err != nil {
		h.env.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, t)
}

// Select sets the tenant scope used for X-Tenant-ID; an empty id clears it.
func (h *TenantHandler) Select(c *gin.Context) {
	var req models.SelectTenantRequest
	if !bind(c, &req) {
		return
	}
	h.setScope(c, req.TenantID)
}

func (h *TenantHandler) Clear(c *gin.Context) {
	h.setScope(c, "")
}

func (h *TenantHandler) setScope(c *gin.Context, tenantID string) {
	s := currentSession(c)
	if err := h.env.Sessions.SelectTenant(c.Request.Context(), s, tenantID); err != nil {
		h.env.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"selected": s.TenantScope()})
}

func (h *TenantHandler) Configure(c *gin.Context) {
	var req models.TenantConfig
	if !bind(c, &req) {
		return
	}
	if err := h.env.Gateway.For(currentSession(c)).ConfigureTenant(c.Request.Context(), c.Param("id"), req); err != nil {
		h.env.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "configured"})
}
