package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserProfileTenantShapes(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantID   string
		wantName string
		wantNil  bool
	}{
		{name: "bare string", body: `{"_id":"u1","tenant_id":"t1"}`, wantID: "t1"},
		{name: "embedded object", body: `{"_id":"u1","tenant_id":{"_id":"t2","name":"Acme","balance":12}}`, wantID: "t2", wantName: "Acme"},
		{name: "null", body: `{"_id":"u1","tenant_id":null}`, wantNil: true},
		{name: "missing", body: `{"_id":"u1"}`, wantNil: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var u UserProfile
			require.NoError(t, json.Unmarshal([]byte(tt.body), &u))
			assert.Equal(t, "u1", u.ID)
			if tt.wantNil {
				assert.Nil(t, u.TenantID)
				assert.Empty(t, u.TenantKey())
				return
			}
			require.NotNil(t, u.TenantID)
			assert.Equal(t, tt.wantID, u.TenantKey())
			assert.Equal(t, tt.wantName, u.TenantID.Name)
		})
	}
}

func TestTenantRefRoundTripKeepsShape(t *testing.T) {
	var u UserProfile
	require.NoError(t, json.Unmarshal([]byte(`{"id":"u1","tenant_id":{"_id":"t2","name":"Acme"}}`), &u))
	b, err := json.Marshal(u)
	require.NoError(t, err)

	var again UserProfile
	require.NoError(t, json.Unmarshal(b, &again))
	assert.Equal(t, "t2", again.TenantKey())
	assert.Equal(t, "Acme", again.TenantID.Name)
	assert.True(t, again.TenantID.Embedded)
}

func TestLoginResponseNestedAndFlat(t *testing.T) {
	var nested LoginResponse
	require.NoError(t, json.Unmarshal([]byte(`{"token":"tok","user":{"_id":"u1","name":"Ana","role":"super_admin","balance":"40.5"}}`), &nested))
	assert.Equal(t, "tok", nested.Token)
	require.NotNil(t, nested.User)
	assert.Equal(t, "u1", nested.User.ID)
	assert.Equal(t, RoleSuperAdmin, nested.User.Role)
	assert.Equal(t, Amount(40.5), nested.User.Balance)

	var flat LoginResponse
	require.NoError(t, json.Unmarshal([]byte(`{"token":"tok","_id":"u2","name":"Bo","role":"admin","tenant_id":"t1"}`), &flat))
	require.NotNil(t, flat.User)
	assert.Equal(t, "u2", flat.User.ID)
	assert.Equal(t, "t1", flat.User.TenantKey())
	assert.Empty(t, flat.User.Token)

	var empty LoginResponse
	require.NoError(t, json.Unmarshal([]byte(`{"token":"tok"}`), &empty))
	assert.Nil(t, empty.User)
}

func TestAmountTolerance(t *testing.T) {
	var v struct {
		A Amount `json:"a"`
		B Amount `json:"b"`
		C Amount `json:"c"`
		D Amount `json:"d"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a":3,"b":"7.25","c":null,"d":"n/a"}`), &v))
	assert.Equal(t, Amount(3), v.A)
	assert.Equal(t, Amount(7.25), v.B)
	assert.Zero(t, v.C)
	assert.Zero(t, v.D)
}

func TestRoleAtLeast(t *testing.T) {
	assert.True(t, RoleSuperAdmin.AtLeast(RoleAdmin))
	assert.True(t, RoleAdmin.AtLeast(RoleAdmin))
	assert.False(t, RoleUser.AtLeast(RoleAdmin))
	assert.False(t, Role("").AtLeast(RoleUser))
}

func TestAgentFoldsSingularBolnaID(t *testing.T) {
	var a Agent
	require.NoError(t, json.Unmarshal([]byte(`{"_id":"a1","name":"Neha","bolnaAgentId":"b1","tenant_id":{"_id":"t1"}}`), &a))
	assert.Equal(t, "a1", a.ID)
	assert.Equal(t, []string{"b1"}, a.BolnaAgentIDs)
	assert.Equal(t, "t1", a.TenantID)
}

func TestUserProfileDefaultsBadFields(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantTenant string
		wantActive bool
	}{
		{name: "numeric tenant", body: `{"_id":"u1","name":"Ana","tenant_id":42,"isActive":true}`, wantTenant: "42", wantActive: true},
		{name: "numeric isActive", body: `{"_id":"u1","name":"Ana","tenant_id":"t1","isActive":1}`, wantTenant: "t1", wantActive: true},
		{name: "string isActive", body: `{"_id":"u1","name":"Ana","isActive":"false"}`},
		{name: "tenant of unknown shape", body: `{"_id":"u1","name":"Ana","tenant_id":[1,2],"isActive":0}`},
		{name: "wrong typed name", body: `{"_id":"u1","name":{"first":"Ana"},"isActive":"1"}`, wantActive: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var u UserProfile
			require.NoError(t, json.Unmarshal([]byte(tt.body), &u))
			assert.Equal(t, "u1", u.ID)
			assert.Equal(t, tt.wantTenant, u.TenantKey())
			assert.Equal(t, tt.wantActive, u.IsActive)
		})
	}
}

func TestLoginResponseWithNumericTenant(t *testing.T) {
	var resp LoginResponse
	require.NoError(t, json.Unmarshal([]byte(`{"token":"tok","user":{"_id":"u1","role":"admin","tenant_id":7,"isActive":1}}`), &resp))
	require.NotNil(t, resp.User)
	assert.Equal(t, "7", resp.User.TenantKey())
	assert.True(t, resp.User.IsActive)
}

func TestUserProfileRejectsNonObject(t *testing.T) {
	var u UserProfile
	assert.Error(t, json.Unmarshal([]byte(`"u1"`), &u))
}
