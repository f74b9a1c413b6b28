// Package models defines the client-side view of platform entities. Values
// are snapshots of server state and are never reconciled locally.
package models

// User is the identity record held by the session.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
	Role     string `json:"role,omitempty"`
}

// UserPatch carries the fields to overwrite in User; nil fields are kept.
type UserPatch struct {
	Username *string
	Email    *string
	Role     *string
}

// Apply returns a copy of u with the non-nil fields of p applied.
func (p UserPatch) Apply(u User) User {
	if p.Username != nil {
		u.Username = *p.Username
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.Role != nil {
		u.Role = *p.Role
	}
	return u
}
