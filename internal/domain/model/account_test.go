package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPermission_Key(t *testing.T) {
	p := Permission{Resource: "chemicals", Action: "write"}
	assert.Equal(t, PermChemicalsWrite, p.Key())
	assert.Equal(t, PermHistoryRead, PermissionKey("history", "read"))
}

func TestToken_Usable(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		token *Token
		want  bool
	}{
		{name: "nil", token: nil},
		{name: "live refresh", token: &Token{Kind: TokenRefresh, ExpiresAt: now.Add(time.Minute)}, want: true},
		{name: "expired refresh", token: &Token{Kind: TokenRefresh, ExpiresAt: now}},
		{name: "revoked access token", token: &Token{Kind: TokenRevoked, ExpiresAt: now.Add(time.Hour)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.token.Usable(now))
		})
	}
}

func TestIdentity_Can(t *testing.T) {
	var nobody *Identity
	assert.False(t, nobody.Can(PermChemicalsRead))

	analyst := &Identity{Roles: []string{RoleUser}, Permissions: []string{PermCalculationsWrite, PermChemicalsRead}}
	assert.True(t, analyst.Can(PermChemicalsRead))
	assert.False(t, analyst.Can(PermChemicalsWrite))
}
