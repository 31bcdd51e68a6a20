package gateway

import (
	"net/http"

	"voice-console/pkg/models"
)

// Credentials is what the signer reads from a console session's durable state.
type Credentials interface {
	// Token is the standalone "token" key.
	Token() string
	// Profile is the stored "user" profile; it may embed a token.
	Profile() *models.UserProfile
	// TenantScope is the "selectedTenantId" key, empty when cleared.
	TenantScope() string
}

// Sign attaches Authorization and X-Tenant-ID to req. A nil creds signs
// nothing. It never fails.
func Sign(req *http.Request, creds Credentials) {
	if creds == nil {
		req.Header.Del("Authorization")
		req.Header.Del("X-Tenant-ID")
		return
	}
	profile := creds.Profile()

	if token := TokenOf(creds); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	tenant := creds.TenantScope()
	if profile != nil && profile.TenantKey() != "" {
		tenant = profile.TenantKey()
	}
	if tenant != "" {
		req.Header.Set("X-Tenant-ID", tenant)
	} else {
		req.Header.Del("X-Tenant-ID")
	}
}

// TokenOf returns the token Sign would send: the profile-embedded token
// first, the standalone token second.
func TokenOf(creds Credentials) string {
	if creds == nil {
		return ""
	}
	if p := creds.Profile(); p != nil && p.Token != "" {
		return p.Token
	}
	return creds.Token()
}

// StaticCredentials is a fixed credential set.
type StaticCredentials struct {
	AccessToken string
	User        *models.UserProfile
	Scope       string
}

func (s StaticCredentials) Token() string                { return s.AccessToken }
func (s StaticCredentials) Profile() *models.UserProfile { return s.User }
func (s StaticCredentials) TenantScope() string          { return s.Scope }
