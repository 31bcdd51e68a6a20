package api

import (
	"voice-console/internal/auth"
	"voice-console/internal/gateway"
	"voice-console/internal/session"
	"voice-console/internal/ws"

	"go.uber.org/zap"
)

// Env is what every handler needs to reach the backend on a session's behalf.
type Env struct {
	Gateway  *gateway.Client
	Sessions *session.Manager
	Roles    *auth.Resolver
	Hub      *ws.Hub
	Logger   *zap.Logger

	AllowedOrigin string
	CookieSecure  bool
}
