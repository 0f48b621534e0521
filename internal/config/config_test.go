package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"community-ops/internal/permissions"
)

func TestPermissionOverrides(t *testing.T) {
	cfg := &Config{
		PermissionRoleIDs: `{"g1":{"Senior Staff":"111","Administration":"222"}}`,
	}

	table, err := cfg.PermissionOverrides()
	require.NoError(t, err)
	require.Contains(t, table, "g1")
	assert.Equal(t, "111", table["g1"][permissions.SeniorStaff])
	assert.Equal(t, "222", table["g1"][permissions.Administration])
}

func TestPermissionOverridesRejectsUnknownLevel(t *testing.T) {
	cfg := &Config{
		PermissionRoleIDs: `{"g1":{"Supreme Leader":"111"}}`,
	}

	_, err := cfg.PermissionOverrides()
	assert.Error(t, err)
}

func TestPermissionOverridesEmpty(t *testing.T) {
	cfg := &Config{}
	table, err := cfg.PermissionOverrides()
	require.NoError(t, err)
	assert.Nil(t, table)
}

func TestDefaultRoleTableSkipsUnset(t *testing.T) {
	cfg := &Config{
		RoleSeniorStaff: "333",
		RoleMember:      "444",
	}

	table := cfg.DefaultRoleTable()
	assert.Equal(t, map[permissions.Level]string{
		permissions.SeniorStaff: "333",
		permissions.Member:      "444",
	}, table)
}

func TestResolverFromConfig(t *testing.T) {
	cfg := &Config{
		PermissionRoleIDs: `{"g1":{"Staff":"555"}}`,
		RoleSeniorStaff:   "333",
	}

	r, err := cfg.Resolver()
	require.NoError(t, err)

	level, ok := r.Resolve(permissions.Membership{GuildID: "g1", RoleIDs: []string{"555"}})
	require.True(t, ok)
	assert.Equal(t, permissions.Staff, level)
}
