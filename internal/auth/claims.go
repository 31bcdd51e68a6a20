package auth

import (
	"voice-console/pkg/models"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the payload of a backend-issued access token.
type Claims struct {
	UserID   string      `json:"user_id"`
	LegacyID string      `json:"id,omitempty"`
	TenantID string      `json:"tenant_id"`
	Role     models.Role `json:"role"`
	jwt.RegisteredClaims
}

// UserKey returns the user id from whichever claim the backend filled.
func (c *Claims) UserKey() string {
	switch {
	case c.UserID != "":
		return c.UserID
	case c.LegacyID != "":
		return c.LegacyID
	default:
		return c.RegisteredClaims.Subject
	}
}
