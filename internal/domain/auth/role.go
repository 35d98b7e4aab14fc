package auth

import "strings"

// Numeric role identifiers used by the marketplace API.
const (
	roleIDLegacyStudent = 2
	roleIDTeacher       = 3
	roleIDStudent       = 4
)

// RoleClaim is the role information carried by an API user object: either a role
// name, a numeric role id, both, or neither.
type RoleClaim struct {
	Name string
	ID   *int
}

// RoleName builds a claim carrying only a name.
func RoleName(name string) RoleClaim { return RoleClaim{Name: name} }

// RoleID builds a claim carrying only a numeric id.
func RoleID(id int) RoleClaim { return RoleClaim{ID: &id} }

// IsZero reports whether the claim carries no role information.
func (c RoleClaim) IsZero() bool {
	return strings.TrimSpace(c.Name) == "" && c.ID == nil
}

// Canonical maps the claim to a Role. A role name is used verbatim; otherwise the numeric
// id maps 3 to teacher and 4 or 2 to student; anything else is unknown.
func (c RoleClaim) Canonical() Role {
	if name := strings.TrimSpace(c.Name); name != "" {
		return Role(name)
	}
	if c.ID == nil {
		return RoleUnknown
	}
	switch *c.ID {
	case roleIDTeacher:
		return RoleTeacher
	case roleIDStudent, roleIDLegacyStudent:
		return RoleStudent
	default:
		return RoleUnknown
	}
}

// CanonicalRole resolves the claim and falls back to hint when the claim yields nothing.
func CanonicalRole(c RoleClaim, hint Role) Role {
	if r := c.Canonical(); r.IsKnown() {
		return r
	}
	return hint
}
