package authz

import "strings"

const (
	RoleSales      = 10
	RoleOperations = 20
	RoleAudit      = 30
	RoleManagement = 40
	RoleAdmin      = 50
)

var roleNames = map[string]int{
	"sales":      RoleSales,
	"operations": RoleOperations,
	"audit":      RoleAudit,
	"management": RoleManagement,
	"admin":      RoleAdmin,
}

// ElevatedRoles may reassign leads in bulk and undo conversions.
var ElevatedRoles = []int{RoleOperations, RoleManagement, RoleAdmin}

func IsElevated(roleID int) bool {
	return roleID == RoleOperations || roleID == RoleManagement || roleID == RoleAdmin
}

func IsReadOnly(roleID int) bool {
	return roleID == RoleAudit
}

// ParseRole maps a role name such as "sales" to its id.
func ParseRole(name string) (int, bool) {
	id, ok := roleNames[strings.ToLower(strings.TrimSpace(name))]
	return id, ok
}
