package api

import (
	"errors"
	"net/http"

	"voice-console/internal/auth"
	"voice-console/internal/gateway"
	"voice-console/internal/session"
	"voice-console/pkg/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	SessionCookie = "console_session"
	signInPath    = "/sign-in"

	ctxSession  = "session"
	ctxIdentity = "identity"
)

// CORS allows the browser console's origin, with credentials.
func CORS(allowedOrigin string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := allowedOrigin
		if origin == "*" {
			if o := c.GetHeader("Origin"); o != "" {
				origin = o
			}
		}
		c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With, X-Request-ID")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, PATCH, DELETE")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Writer.Header().Set("X-Request-ID", id)
		c.Next()
	}
}

// RequireSession loads the caller's console session or answers 401 with the
// sign-in redirect.
func (e *Env) RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, _ := c.Cookie(SessionCookie)
		s, err := e.Sessions.Load(c.Request.Context(), id)
		if err != nil {
			if !errors.Is(err, session.ErrNoSession) {
				e.Logger.Sugar().Errorw("loading session", "error", err)
			}
			e.signOut(c)
			return
		}
		c.Set(ctxSession, s)
		c.Next()
	}
}

// RequireRole lets the request through only when the backend vouches for at
// least min.
func (e *Env) RequireRole(min models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		s := currentSession(c)
		id, err := e.Roles.Require(c.Request.Context(), gateway.TokenOf(s), e.Gateway.For(s), min)
		if err != nil {
			e.respondError(c, err)
			c.Abort()
			return
		}
		c.Set(ctxIdentity, id)
		c.Next()
	}
}

func currentSession(c *gin.Context) *session.Session {
	return c.MustGet(ctxSession).(*session.Session)
}

// identity resolves the verified role of the current session, reusing one
// already resolved by RequireRole.
func (e *Env) identity(c *gin.Context) (*auth.Identity, error) {
	if v, ok := c.Get(ctxIdentity); ok {
		return v.(*auth.Identity), nil
	}
	s := currentSession(c)
	id, err := e.Roles.Resolve(c.Request.Context(), gateway.TokenOf(s), e.Gateway.For(s))
	if err != nil {
		return nil, err
	}
	c.Set(ctxIdentity, id)
	return id, nil
}

// isSuperAdmin reports whether the verified role is super_admin. An
// unverifiable role counts as not.
func (e *Env) isSuperAdmin(c *gin.Context) (bool, error) {
	id, err := e.identity(c)
	if errors.Is(err, auth.ErrUnverified) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return id.Role == models.RoleSuperAdmin, nil
}

func (e *Env) setSessionCookie(c *gin.Context, id string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookie, id, 0, "/", "", e.CookieSecure, true)
}

func (e *Env) signOut(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookie, "", -1, "/", "", e.CookieSecure, true)
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "not signed in", "redirect": signInPath})
}

// tenantOf is the tenant a session acts for: its own, else the selected scope.
func tenantOf(s *session.Session) string {
	if p := s.Profile(); p != nil && p.TenantKey() != "" {
		return p.TenantKey()
	}
	return s.TenantScope()
}
