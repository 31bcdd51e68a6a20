package api

import (
	"net/http"

	"voice-console/pkg/models"

	"github.com/gin-gonic/gin"
)

type CampaignHandler struct {
	env *Env
}

func NewCampaignHandler(env *Env) *CampaignHandler {
	return &CampaignHandler{env: env}
}

// Initiate calls one number, or every contact of a list.
func (h *CampaignHandler) Initiate(c *gin.Context) {
	var req models.CampaignRequest
	if !bind(c, &req) {
		return
	}
	if req.PhoneNumber == "" && req.ListID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "errors": gin.H{"phoneNumber": "phoneNumber or list_id is required"}})
		return
	}

	s := currentSession(c)
	gw := h.env.Gateway.For(s)
	call := models.InitiateCallRequest{
		PhoneNumber: req.PhoneNumber,
		AgentID:     req.AgentID,
		TenantID:    tenantOf(s),
		Gender:      req.Gender,
	}
	if req.PhoneNumber == "" {
		contacts, err := gw.Contacts(c.Request.Context(), req.ListID)
		if err != nil {
			h.env.respondError(c, err)
			return
		}
		for _, ct := range contacts {
			if ct.Phone != "" {
				call.Recipients = append(call.Recipients, ct.Phone)
			}
		}
		if len(call.Recipients) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "list has no contacts with a phone number"})
			return
		}
	}

	out, err := gw.InitiateCalls(c.Request.Context(), call)
	if err != nil {
		h.env.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"queued": max(len(call.Recipients), 1), "result": jsonOrNull(out)})
}

func (h *CampaignHandler) Start(c *gin.Context) {
	var req models.StartCampaignRequest
	if !bind(c, &req) {
		return
	}
	out, err := h.env.Gateway.For(currentSession(c)).StartCampaign(c.Request.Context(), req)
	if err != nil {
		h.env.respondError(c, err)
		return
	}
	c.Data(http.StatusOK, "application/json", nonEmpty(out))
}
