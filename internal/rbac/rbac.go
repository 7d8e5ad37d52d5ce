package rbac

import "strings"

// Role names of the fixed hierarchy
const (
	RoleSuperadmin = "superadmin"
	RoleAdmin      = "admin"
	RoleManager    = "manager"
	RoleUser       = "user"
)

// roleRank encodes the total order superadmin > admin > manager > user.
// Unknown/custom roles rank 0.
var roleRank = map[string]int{
	RoleSuperadmin: 4,
	RoleAdmin:      3,
	RoleManager:    2,
	RoleUser:       1,
}

// Capability is a coarse-grained action group used to gate route groups
type Capability string

const (
	CapManageUsers       Capability = "manage_users"
	CapManageModules     Capability = "manage_modules"
	CapManagePermissions Capability = "manage_permissions"
	CapManageUserTypes   Capability = "manage_user_types"
	CapRecoverUsers      Capability = "recover_users"
	CapHardDeleteUsers   Capability = "hard_delete_users"
	CapViewDashboard     Capability = "view_dashboard"
	CapViewActivity      Capability = "view_activity"
)

// capabilities is the single role→capability lookup table that replaces
// per-callsite role switches. Superadmin is intentionally absent: it passes
// every check via the override in Can.
var capabilities = map[string]map[Capability]bool{
	RoleAdmin: {
		CapManageUsers:       true,
		CapManageModules:     true,
		CapManagePermissions: true,
		CapManageUserTypes:   true,
		CapViewDashboard:     true,
		CapViewActivity:      true,
	},
	RoleManager: {
		CapManageUsers:   true,
		CapViewDashboard: true,
		CapViewActivity:  true,
	},
	RoleUser: {
		CapViewDashboard: true,
	},
}

// Rank returns the hierarchy rank of a role name (0 for unknown roles)
func Rank(role string) int {
	return roleRank[strings.ToLower(role)]
}

// CanAccess decides whether a user role may enter a route restricted to
// allowedRoles. Comparison is case-insensitive and superadmin always passes.
func CanAccess(userRole string, allowedRoles []string) bool {
	role := strings.ToLower(strings.TrimSpace(userRole))
	if role == "" {
		return false
	}
	if role == RoleSuperadmin {
		return true
	}
	for _, allowed := range allowedRoles {
		if role == strings.ToLower(strings.TrimSpace(allowed)) {
			return true
		}
	}
	return false
}

// Can reports whether a role holds a capability. Superadmin holds all.
func Can(userRole string, cap Capability) bool {
	role := strings.ToLower(strings.TrimSpace(userRole))
	if role == RoleSuperadmin {
		return true
	}
	caps, ok := capabilities[role]
	if !ok {
		return false
	}
	return caps[cap]
}

// Outranks reports whether role a sits strictly above role b in the hierarchy
func Outranks(a, b string) bool {
	return Rank(a) > Rank(b)
}
