package api

import (
	"encoding/json"
	"net/http"

	"voice-console/internal/gateway"
	"voice-console/pkg/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AuthHandler struct {
	env *Env
}

func NewAuthHandler(env *Env) *AuthHandler {
	return &AuthHandler{env: env}
}

// Login signs in against the backend and opens a console session.
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if !bind(c, &req) {
		return
	}

	resp, err := h.env.Gateway.For(nil).Login(c.Request.Context(), req)
	if err != nil {
		if gateway.IsUnauthorized(err) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid email or password"})
			return
		}
		h.env.respondError(c, err)
		return
	}

	s, err := h.env.Sessions.Create(c.Request.Context(), resp.Token, resp.User)
	if err != nil {
		h.env.respondError(c, err)
		return
	}
	h.env.setSessionCookie(c, s.ID)
	c.JSON(http.StatusOK, gin.H{"session_id": s.ID, "user": resp.User})
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if !bind(c, &req) {
		return
	}
	out, err := h.env.Gateway.For(nil).Register(c.Request.Context(), req)
	if err != nil {
		h.env.respondError(c, err)
		return
	}
	c.Data(http.StatusCreated, "application/json", nonEmpty(out))
}

func (h *AuthHandler) Logout(c *gin.Context) {
	s := currentSession(c)
	h.env.Roles.Forget(gateway.TokenOf(s))
	if err := h.env.Sessions.Logout(c.Request.Context(), s); err != nil {
		h.env.Logger.Error("logout", zap.String("session_id", s.ID), zap.Error(err))
	}
	c.SetCookie(SessionCookie, "", -1, "/", "", h.env.CookieSecure, true)
	c.JSON(http.StatusOK, gin.H{"status": "signed out", "redirect": signInPath})
}

// Me returns the backend's current view of the caller and the role the
// console will enforce.
func (h *AuthHandler) Me(c *gin.Context) {
	s := currentSession(c)
	profile, err := h.env.Gateway.For(s).Me(c.Request.Context())
	if err != nil {
		h.env.respondError(c, err)
		return
	}
	if err := h.env.Sessions.RefreshProfile(c.Request.Context(), s, profile); err != nil {
		h.env.Logger.Warn("refreshing stored profile", zap.String("session_id", s.ID), zap.Error(err))
	}
	resp := gin.H{"user": profile, "tenant_scope": s.TenantScope()}
	if id, err := h.env.identity(c); err == nil {
		resp["role"] = id.Role
		resp["role_source"] = id.Source
	}
	c.JSON(http.StatusOK, resp)
}

func nonEmpty(raw []byte) []byte {
	if len(raw) == 0 || !json.Valid(raw) {
		return []byte("{}")
	}
	return raw
}

// jsonOrNull embeds a passthrough body in a larger answer.
func jsonOrNull(raw []byte) json.RawMessage {
	if len(raw) == 0 || !json.Valid(raw) {
		return json.RawMessage("null")
	}
	return raw
}
