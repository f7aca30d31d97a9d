package model

import "slices"

// Role names seeded at startup.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// Identity is the authenticated caller of a request, with its active role names and the
// permission keys those roles grant.
type Identity struct {
	UserID      string   `json:"user_id"`
	Email       string   `json:"email"`
	Name        string   `json:"name,omitempty"`
	Roles       []string `json:"roles"`
	Permissions []string `json:"permissions,omitempty"`
}

// HasRole reports whether the identity holds the named role.
func (i *Identity) HasRole(name string) bool {
	return i != nil && slices.Contains(i.Roles, name)
}

// Can reports whether one of the identity's roles grants the permission key.
func (i *Identity) Can(permission string) bool {
	return i != nil && slices.Contains(i.Permissions, permission)
}
