package rbac

import "fmt"

// Role is a closed enumeration of the roles a user can hold.
type Role int

const (
	RoleInvalid Role = iota
	RoleUser
	RoleAdmin
	RoleSuperAdmin
)

var roleNames = map[Role]string{
	RoleUser:       "user",
	RoleAdmin:      "admin",
	RoleSuperAdmin: "super_admin",
}

var rolesByName = map[string]Role{
	"user":        RoleUser,
	"admin":       RoleAdmin,
	"super_admin": RoleSuperAdmin,
}

func (r Role) String() string {
	if name, ok := roleNames[r]; ok {
		return name
	}
	return "invalid"
}

// Parse maps a stored role name to its Role. Unknown names yield RoleInvalid.
func Parse(name string) Role {
	return rolesByName[name]
}

// implies is the role implication table: a row grants every role it maps to.
// super_admin implies admin, admin implies user. The reverse never holds.
var implies = map[Role][]Role{
	RoleUser:       {RoleUser},
	RoleAdmin:      {RoleAdmin, RoleUser},
	RoleSuperAdmin: {RoleSuperAdmin, RoleAdmin, RoleUser},
}

// Implies reports whether holding r grants the capabilities of other.
func (r Role) Implies(other Role) bool {
	for _, granted := range implies[r] {
		if granted == other {
			return true
		}
	}
	return false
}

// RoleSet is the set of roles assigned to one user. The effective grant is
// the union of what each assigned role implies.
type RoleSet []Role

// Satisfies reports whether any assigned role implies the required one.
func (s RoleSet) Satisfies(required Role) bool {
	for _, r := range s {
		if r.Implies(required) {
			return true
		}
	}
	return false
}

// Names returns the string form of each role, skipping invalid entries.
func (s RoleSet) Names() []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		if r != RoleInvalid {
			out = append(out, r.String())
		}
	}
	return out
}

// PermissionDeniedError marks an authenticated caller lacking the required
// role. It is distinct from "not authenticated": the identity was valid.
type PermissionDeniedError struct {
	UserID   int
	Required Role
}

func (e *PermissionDeniedError) Error() string {
	return fmt.Sprintf("insufficient role: %s required", e.Required)
}
