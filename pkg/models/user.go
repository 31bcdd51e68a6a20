package models

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// Role is the platform role carried by a user profile or token claims.
type Role string

const (
	RoleSuperAdmin Role = "super_admin"
	RoleAdmin      Role = "admin"
	RoleUser       Role = "user"
)

func (r Role) rank() int {
	switch r {
	case RoleSuperAdmin:
		return 3
	case RoleAdmin:
		return 2
	case RoleUser:
		return 1
	default:
		return 0
	}
}

// AtLeast reports whether r grants everything min grants.
func (r Role) AtLeast(min Role) bool {
	return r.rank() >= min.rank() && r.rank() > 0
}

// Amount is a monetary or numeric field that the backend sends as a number,
// a numeric string or null. Anything unparseable decodes to zero.
type Amount float64

func (a *Amount) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*a = 0
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			*a = 0
			return nil
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			f = 0
		}
		*a = Amount(f)
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		*a = 0
		return nil
	}
	*a = Amount(f)
	return nil
}

// TenantRef is a user's tenant association. The backend sends it either as a
// bare id string or as an embedded {_id, name, balance} object.
type TenantRef struct {
	ID       string
	Name     string
	Balance  Amount
	Embedded bool
}

func (t *TenantRef) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	*t = TenantRef{}
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}
	switch {
	case b[0] == '"':
		if err := json.Unmarshal(b, &t.ID); err != nil {
			t.ID = ""
		}
		return nil
	case b[0] == '-' || (b[0] >= '0' && b[0] <= '9'):
		var n json.Number
		if err := json.Unmarshal(b, &n); err == nil {
			t.ID = n.String()
		}
		return nil
	case b[0] != '{':
		return nil
	}
	var obj struct {
		MongoID json.RawMessage `json:"_id"`
		ID      json.RawMessage `json:"id"`
		Name    json.RawMessage `json:"name"`
		Balance Amount          `json:"balance"`
	}
	if err := json.Unmarshal(b, &obj); err != nil {
		return nil
	}
	t.ID = firstNonEmpty(scalarString(obj.ID), scalarString(obj.MongoID))
	t.Name = scalarString(obj.Name)
	t.Balance = obj.Balance
	t.Embedded = true
	return nil
}

func (t TenantRef) MarshalJSON() ([]byte, error) {
	if !t.Embedded {
		return json.Marshal(t.ID)
	}
	return json.Marshal(struct {
		ID      string `json:"_id"`
		Name    string `json:"name"`
		Balance Amount `json:"balance"`
	}{t.ID, t.Name, t.Balance})
}

// UserProfile is an authenticated console user or an administered sub-user.
type UserProfile struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Email       string     `json:"email"`
	Role        Role       `json:"role"`
	Balance     Amount     `json:"balance"`
	TenantID    *TenantRef `json:"tenant_id"`
	IsActive    bool       `json:"isActive"`
	PhoneNumber string     `json:"phoneNumber,omitempty"`
	CreatedAt   string     `json:"createdAt,omitempty"`

	// Token is only present on profiles persisted by older console builds.
	Token string `json:"token,omitempty"`
}

// UnmarshalJSON accepts `_id` for id and a loose isActive (bool, 0/1 or their
// string forms). A field of the wrong type is left at its zero value; only a
// body that is not an object is an error.
func (u *UserProfile) UnmarshalJSON(b []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(b, &fields); err != nil {
		return err
	}
	*u = UserProfile{}
	set := func(key string, dst interface{}) {
		if raw, ok := fields[key]; ok {
			_ = json.Unmarshal(raw, dst)
		}
	}
	u.ID = firstNonEmpty(scalarString(fields["id"]), scalarString(fields["_id"]))
	set("name", &u.Name)
	set("email", &u.Email)
	set("role", &u.Role)
	set("balance", &u.Balance)
	set("tenant_id", &u.TenantID)
	set("phoneNumber", &u.PhoneNumber)
	set("createdAt", &u.CreatedAt)
	set("token", &u.Token)
	if u.TenantID != nil && u.TenantID.ID == "" && !u.TenantID.Embedded {
		u.TenantID = nil
	}
	u.IsActive = looseBool(fields["isActive"])
	return nil
}

// scalarString reads a JSON string or number as text; anything else is "".
func scalarString(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}

func looseBool(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return false
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		return b
	}
	switch strings.ToLower(scalarString(raw)) {
	case "1", "true", "yes":
		return true
	}
	return false
}

// TenantKey returns the id of the user's tenant, or "" when unassigned.
func (u *UserProfile) TenantKey() string {
	if u == nil || u.TenantID == nil {
		return ""
	}
	return u.TenantID.ID
}

// LoginRequest is the credential pair posted to /auth/login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RegisterRequest creates a console user.
type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Role     Role   `json:"role,omitempty" binding:"omitempty,oneof=super_admin admin user"`
	TenantID string `json:"tenant_id,omitempty"`
}

// CreateUserRequest creates a sub-user under a tenant.
type CreateUserRequest struct {
	Name     string  `json:"name" binding:"required"`
	Email    string  `json:"email" binding:"required,email"`
	Role     Role    `json:"role" binding:"required,oneof=super_admin admin user"`
	Balance  float64 `json:"balance" binding:"gte=0"`
	IsActive bool    `json:"isActive"`
	TenantID string  `json:"tenant_id" binding:"required"`
}

// LoginResponse accepts both the nested {token, user:{...}} form and the flat
// {token, _id, name, ...} form of the backend login answer.
type LoginResponse struct {
	Token string
	User  *UserProfile
}

func (r *LoginResponse) UnmarshalJSON(b []byte) error {
	var aux struct {
		Token string          `json:"token"`
		User  json.RawMessage `json:"user"`
	}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	r.Token = aux.Token
	src := b
	if len(aux.User) > 0 && !bytes.Equal(bytes.TrimSpace(aux.User), []byte("null")) {
		src = aux.User
	}
	var u UserProfile
	if err := json.Unmarshal(src, &u); err != nil {
		return err
	}
	u.Token = ""
	if u.ID != "" {
		r.User = &u
	}
	return nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
