package api

import (
	"net/http"

	"voice-console/pkg/models"

	"github.com/gin-gonic/gin"
)

type AgentHandler struct {
	env *Env
}

func NewAgentHandler(env *Env) *AgentHandler {
	return &AgentHandler{env: env}
}

// List shows every tenant's agents to a verified super admin and the caller's
// own agents to everyone else.
func (h *AgentHandler) List(c *gin.Context) {
	super, err := h.env.isSuperAdmin(c)
	if err != nil {
		h.env.respondError(c, err)
		return
	}
	gw := h.env.Gateway.For(currentSession(c))
	var agents []models.Agent
	if super {
		agents, err = gw.AdminAgents(c.Request.Context())
	} else {
		agents, err = gw.Agents(c.Request.Context())
	}
	if err != nil {
		h.env.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"agents": agents})
}

func (h *AgentHandler) Save(c *gin.Context) {
	var req models.SaveAgentRequest
	if !bind(c, &req) {
		return
	}
	s := currentSession(c)
	if req.TenantID == "" {
		req.TenantID = tenantOf(s)
	}
	a, err := h.env.Gateway.For(s).SaveAgent(c.Request.Context(), req)
	if err != nil {
		h.env.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, a)
}
