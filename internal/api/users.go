package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"voice-console/internal/optimistic"
	"voice-console/internal/session"
	"voice-console/pkg/models"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	env *Env
}

func NewUserHandler(env *Env) *UserHandler {
	return &UserHandler{env: env}
}

// List fetches the administered users, refreshes the session's local copy
// and returns it restricted to the selected tenant. Users with mutations in
// flight show their provisional values.
func (h *UserHandler) List(c *gin.Context) {
	s := currentSession(c)
	if err := h.refresh(c.Request.Context(), s); err != nil {
		h.env.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": inScope(s.Users().Store().Snapshot(), s.TenantScope()), "tenant": s.TenantScope()})
}

func (h *UserHandler) refresh(ctx context.Context, s *session.Session) error {
	users, err := h.env.Gateway.For(s).SubUsers(ctx)
	if err != nil {
		return err
	}
	s.Users().Replace(users)
	return nil
}

// inScope keeps users whose tenant resolves to scope; an empty scope keeps all.
func inScope(users []models.UserProfile, scope string) []models.UserProfile {
	if scope == "" {
		return users
	}
	out := make([]models.UserProfile, 0, len(users))
	for _, u := range users {
		if u.TenantKey() == scope {
			out = append(out, u)
		}
	}
	return out
}

func (h *UserHandler) Create(c *gin.Context) {
	var req models.CreateUserRequest
	if !bind(c, &req) {
		return
	}
	u, err := h.env.Gateway.For(currentSession(c)).CreateUser(c.Request.Context(), req)
	if err != nil {
		h.env.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, u)
}

// ToggleStatus flips isActive locally at once and commits it upstream.
func (h *UserHandler) ToggleStatus(c *gin.Context) {
	s := currentSession(c)
	id := c.Param("id")
	h.mutate(c, id, "isActive", func(u models.UserProfile) models.UserProfile {
		u.IsActive = !u.IsActive
		return u
	}, func(ctx context.Context) error {
		return h.env.Gateway.For(s).ToggleUserStatus(ctx, id)
	})
}

func (h *UserHandler) UpdateBalance(c *gin.Context) {
	var req models.UpdateBalanceRequest
	if !bind(c, &req) {
		return
	}
	s := currentSession(c)
	id, balance := c.Param("id"), *req.Balance
	h.mutate(c, id, "balance", func(u models.UserProfile) models.UserProfile {
		u.Balance = models.Amount(balance)
		return u
	}, func(ctx context.Context) error {
		return h.env.Gateway.For(s).UpdateUserBalance(ctx, id, balance)
	})
}

// mutate applies an optimistic change. By default it answers 202 with the
// provisional user; with ?wait=true it answers once the backend settled it.
func (h *UserHandler) mutate(c *gin.Context, id, field string, update func(models.UserProfile) models.UserProfile, commit optimistic.Commit) {
	s := currentSession(c)
	ctx := c.Request.Context()

	result, err := s.Users().Apply(ctx, id, field, update, commit)
	if errors.Is(err, optimistic.ErrUnknownKey) {
		if err = h.refresh(ctx, s); err == nil {
			result, err = s.Users().Apply(ctx, id, field, update, commit)
		}
	}
	if err != nil {
		h.env.respondError(c, err)
		return
	}

	if c.Query("wait") != "true" {
		u, _ := s.Users().Store().Get(id)
		c.JSON(http.StatusAccepted, gin.H{"user": u, "pending": true})
		return
	}

	select {
	case err = <-result:
	case <-ctx.Done():
		return
	}
	if err != nil {
		h.env.respondError(c, err)
		return
	}
	u, _ := s.Users().Store().Get(id)
	c.JSON(http.StatusOK, gin.H{"user": u, "pending": false})
}

func (h *UserHandler) AssignTenant(c *gin.Context) {
	var req models.AssignTenantRequest
	if !bind(c, &req) {
		return
	}
	if err := h.env.Gateway.For(currentSession(c)).AssignUserTenant(c.Request.Context(), c.Param("id"), req.TenantID); err != nil {
		h.env.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "tenant assigned"})
}

func (h *UserHandler) UpdatePhone(c *gin.Context) {
	var req models.UpdatePhoneRequest
	if !bind(c, &req) {
		return
	}
	if err := h.env.Gateway.For(currentSession(c)).UpdateUserPhone(c.Request.Context(), c.Param("id"), req.PhoneNumber); err != nil {
		h.env.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "phone assigned"})
}

func (h *UserHandler) AssignAgents(c *gin.Context) {
	var req models.AssignAgentsRequest
	if !bind(c, &req) {
		return
	}
	if err := h.env.Gateway.For(currentSession(c)).AssignUserAgents(c.Request.Context(), c.Param("id"), req.AgentIDs); err != nil {
		h.env.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "agents assigned"})
}

// Mutations lists how the session's recent optimistic changes settled.
func (h *UserHandler) Mutations(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	logs, err := h.env.Sessions.Mutations(c.Request.Context(), currentSession(c), limit)
	if err != nil {
		h.env.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"mutations": logs})
}
