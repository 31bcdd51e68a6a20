package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"voice-console/internal/auth"
	"voice-console/internal/config"
	"voice-console/internal/database"
	"voice-console/internal/gateway"
	"voice-console/internal/logging"
	"voice-console/internal/session"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// app is the process-wide wiring, built on first use.
type app struct {
	cfg      *config.Config
	logger   *zap.Logger
	store    *database.Store
	sessions *session.Manager
	client   *gateway.Client
	roles    *auth.Resolver
}

var (
	appOnce sync.Once
	appInst *app
	appErr  error
)

func getApp() (*app, error) {
	appOnce.Do(func() {
		cfg := config.LoadConfig()
		logger, err := logging.New(cfg.LogLevel)
		if err != nil {
			appErr = err
			return
		}
		db, err := database.InitGorm(cfg)
		if err != nil {
			appErr = err
			return
		}
		store := database.NewStore(db)
		sessions := session.NewManager(store, nil, logger)
		appInst = &app{
			cfg:      cfg,
			logger:   logger,
			store:    store,
			sessions: sessions,
			client: gateway.NewClient(cfg.APIBaseURL,
				gateway.WithObserver(sessions),
				gateway.WithRetry(gateway.RetryConfig{Retries: cfg.ReadRetries, BaseDelay: 200 * time.Millisecond, MaxDelay: 2 * time.Second}),
				gateway.WithLogger(logger)),
			roles: auth.NewResolver(cfg.JWTSecret, cfg.RoleCacheTTL, logger),
		}
	})
	return appInst, appErr
}

func closeApp() {
	if appInst != nil {
		appInst.logger.Sync()
	}
}

// currentSession resolves --session, falling back to the only stored session.
func (a *app) currentSession(ctx context.Context) (*session.Session, error) {
	id := sessionFlag
	if id == "" {
		ids, err := a.store.Sessions(ctx)
		if err != nil {
			return nil, err
		}
		switch len(ids) {
		case 0:
			return nil, errors.New("not signed in; run consolectl login")
		case 1:
			id = ids[0]
		default:
			return nil, fmt.Errorf("%d stored sessions; pass --session or set CONSOLE_SESSION", len(ids))
		}
	}
	return a.sessions.Load(ctx, id)
}

// tenantOf is the tenant new records belong to: the user's own tenant, or the
// selected one for a super admin.
func tenantOf(s *session.Session) string {
	if p := s.Profile(); p != nil && p.TenantKey() != "" {
		return p.TenantKey()
	}
	return s.TenantScope()
}

func render(w io.Writer, v interface{}) error {
	switch outputFlag {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml", "":
		// Round-trip through JSON so yaml keys follow the wire names.
		raw, err := json.Marshal(v)
		if err != nil {
			return err
		}
		var generic interface{}
		if err := json.Unmarshal(raw, &generic); err != nil {
			return err
		}
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(generic)
	default:
		return fmt.Errorf("unknown output format %q", outputFlag)
	}
}

// describe turns errors into operator-facing text.
func describe(err error) string {
	switch {
	case gateway.IsTransport(err):
		return "connection error: the backend could not be reached, try again"
	case gateway.IsUnauthorized(err), errors.Is(err, session.ErrNoSession):
		return "session expired or missing; run consolectl login"
	case gateway.IsForbidden(err), errors.Is(err, auth.ErrForbidden):
		return "you do not have access to this action"
	default:
		return err.Error()
	}
}
