package rbac

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanAccessSuperadminAlwaysPasses(t *testing.T) {
	cases := [][]string{
		{"superadmin", "admin"},
		{"admin"},
		{"manager", "user"},
		{},
		{"nonexistent-role"},
	}

	for _, allowed := range cases {
		assert.True(t, CanAccess("superadmin", allowed), "allowed=%v", allowed)
		assert.True(t, CanAccess("SuperAdmin", allowed), "case-insensitive, allowed=%v", allowed)
	}
}

func TestCanAccessRoleInAllowedSet(t *testing.T) {
	assert.True(t, CanAccess("admin", []string{"superadmin", "admin"}))
	assert.True(t, CanAccess("ADMIN", []string{"admin"}))
	assert.True(t, CanAccess("manager", []string{"Manager"}))
}

func TestCanAccessDeniedOutsideAllowedSet(t *testing.T) {
	assert.False(t, CanAccess("manager", []string{"superadmin", "admin"}))
	assert.False(t, CanAccess("user", []string{"admin", "manager"}))
	assert.False(t, CanAccess("custom-role", []string{"admin"}))
}

func TestCanAccessEmptyRoleDenied(t *testing.T) {
	assert.False(t, CanAccess("", []string{"admin"}))
	assert.False(t, CanAccess("   ", []string{"admin"}))
}

func TestRankOrdering(t *testing.T) {
	assert.Greater(t, Rank("superadmin"), Rank("admin"))
	assert.Greater(t, Rank("admin"), Rank("manager"))
	assert.Greater(t, Rank("manager"), Rank("user"))
	assert.Equal(t, 0, Rank("auditor"))
}

func TestOutranks(t *testing.T) {
	assert.True(t, Outranks("superadmin", "admin"))
	assert.True(t, Outranks("admin", "user"))
	assert.False(t, Outranks("manager", "manager"))
	assert.False(t, Outranks("user", "admin"))
}

func TestCapabilityTable(t *testing.T) {
	// superadmin holds everything through the override
	assert.True(t, Can("superadmin", CapHardDeleteUsers))
	assert.True(t, Can("superadmin", CapRecoverUsers))

	// admin manages but cannot hard-delete or recover
	assert.True(t, Can("admin", CapManageUsers))
	assert.True(t, Can("admin", CapManagePermissions))
	assert.False(t, Can("admin", CapHardDeleteUsers))
	assert.False(t, Can("admin", CapRecoverUsers))

	// manager sees users and dashboards only
	assert.True(t, Can("manager", CapManageUsers))
	assert.False(t, Can("manager", CapManageModules))

	// plain user only views the dashboard
	assert.True(t, Can("user", CapViewDashboard))
	assert.False(t, Can("user", CapManageUsers))

	// unknown roles hold nothing
	assert.False(t, Can("guest", CapViewDashboard))
}
