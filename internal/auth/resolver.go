package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"voice-console/pkg/models"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

var (
	ErrForbidden  = errors.New("auth: insufficient role")
	ErrUnverified = errors.New("auth: role could not be verified")
)

// Identity is a role the console trusts because the backend vouched for it.
type Identity struct {
	UserID   string      `json:"user_id"`
	TenantID string      `json:"tenant_id,omitempty"`
	Role     models.Role `json:"role"`
	Source   string      `json:"source"`
}

// ProfileFetcher asks the backend who the token belongs to.
type ProfileFetcher interface {
	Me(ctx context.Context) (*models.UserProfile, error)
}

// Resolver derives the caller's role from the token's verified claims when a
// signing secret is configured, otherwise from the backend's /auth/me answer.
// The profile cached in the console session is never consulted.
type Resolver struct {
	secret []byte
	ttl    time.Duration
	logger *zap.Logger
	now    func() time.Time

	mu    sync.Mutex
	cache map[string]cachedIdentity
}

type cachedIdentity struct {
	id      Identity
	expires time.Time
}

func NewResolver(secret string, ttl time.Duration, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Resolver{ttl: ttl, logger: logger, now: time.Now, cache: make(map[string]cachedIdentity)}
	if secret != "" {
		r.secret = []byte(secret)
	}
	return r
}

func (r *Resolver) Resolve(ctx context.Context, token string, fetch ProfileFetcher) (*Identity, error) {
	if token == "" {
		return nil, ErrUnverified
	}
	if r.secret != nil {
		return r.fromClaims(token)
	}

	if id, ok := r.cached(token); ok {
		return &id, nil
	}
	profile, err := fetch.Me(ctx)
	if err != nil {
		return nil, err
	}
	if profile == nil || profile.Role == "" {
		return nil, ErrUnverified
	}
	id := Identity{UserID: profile.ID, TenantID: profile.TenantKey(), Role: profile.Role, Source: "profile"}
	r.store(token, id)
	return &id, nil
}

// Require resolves the caller and checks it holds at least min.
func (r *Resolver) Require(ctx context.Context, token string, fetch ProfileFetcher, min models.Role) (*Identity, error) {
	id, err := r.Resolve(ctx, token, fetch)
	if err != nil {
		return nil, err
	}
	if !id.Role.AtLeast(min) {
		return id, fmt.Errorf("%w: %s needs %s", ErrForbidden, id.Role, min)
	}
	return id, nil
}

// Forget drops any cached identity for token.
func (r *Resolver) Forget(token string) {
	r.mu.Lock()
	delete(r.cache, token)
	r.mu.Unlock()
}

func (r *Resolver) fromClaims(token string) (*Identity, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return r.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		r.logger.Debug("token claims rejected", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrUnverified, err)
	}
	if claims.Role == "" {
		return nil, ErrUnverified
	}
	return &Identity{UserID: claims.UserKey(), TenantID: claims.TenantID, Role: claims.Role, Source: "claims"}, nil
}

func (r *Resolver) cached(token string) (Identity, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.cache[token]
	if !ok || r.now().After(c.expires) {
		delete(r.cache, token)
		return Identity{}, false
	}
	return c.id, true
}

func (r *Resolver) store(token string, id Identity) {
	if r.ttl <= 0 {
		return
	}
	r.mu.Lock()
	r.cache[token] = cachedIdentity{id: id, expires: r.now().Add(r.ttl)}
	r.mu.Unlock()
}
