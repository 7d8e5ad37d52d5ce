package client

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanAccess(t *testing.T) {
	tests := []struct {
		name    string
		role    string
		allowed []string
		want    bool
	}{
		{"superadmin passes any list", "superadmin", []string{"admin"}, true},
		{"superadmin passes empty list", "superadmin", nil, true},
		{"superadmin case-insensitive", "SuperAdmin", []string{"manager"}, true},
		{"role in list", "admin", []string{"admin", "manager"}, true},
		{"role case-insensitive", "ADMIN", []string{"admin"}, true},
		{"role not in list", "user", []string{"admin", "manager"}, false},
		{"empty role denied", "", []string{"admin"}, false},
		{"whitespace role denied", "   ", []string{"admin"}, false},
		{"custom role in list", "auditor", []string{"auditor"}, true},
		{"custom role not in list", "auditor", []string{"admin"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanAccess(tt.role, tt.allowed))
		})
	}
}

func TestRoleRank(t *testing.T) {
	assert.Greater(t, RoleRank("superadmin"), RoleRank("admin"))
	assert.Greater(t, RoleRank("admin"), RoleRank("manager"))
	assert.Greater(t, RoleRank("manager"), RoleRank("user"))
	assert.Equal(t, 0, RoleRank("unknown"))
}

func TestGuardEvaluate(t *testing.T) {
	store := NewMemoryTokenStore()
	guard := NewGuard(store)

	t.Run("no session denies", func(t *testing.T) {
		assert.Equal(t, Denied, guard.Evaluate([]string{"admin"}))
	})

	t.Run("session without loaded user is undecided", func(t *testing.T) {
		store.SetTokens("access", "refresh")
		assert.Equal(t, Undecided, guard.Evaluate([]string{"admin"}))
	})

	t.Run("loaded user is decided", func(t *testing.T) {
		store.SetUser(&User{UserType: &UserType{Name: "manager"}})
		assert.Equal(t, Denied, guard.Evaluate([]string{"admin"}))
		assert.Equal(t, Allowed, guard.Evaluate([]string{"admin", "manager"}))
	})

	t.Run("superadmin always allowed", func(t *testing.T) {
		store.SetUser(&User{UserType: &UserType{Name: "superadmin"}})
		assert.Equal(t, Allowed, guard.Evaluate(nil))
	})

	t.Run("clear denies again", func(t *testing.T) {
		store.Clear()
		assert.Equal(t, Denied, guard.Evaluate([]string{"admin"}))
	})
}
