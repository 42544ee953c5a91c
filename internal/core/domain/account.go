package domain

import "time"

const (
	RoleOwner  = "owner"
	RoleAdmin  = "admin"
	RoleEditor = "editor"
)

// ValidRole reports whether role is one of the CMS roles. The auth core only
// carries the label; it never branches on it.
func ValidRole(role string) bool {
	switch role {
	case RoleOwner, RoleAdmin, RoleEditor:
		return true
	}
	return false
}

// Account models a CMS user allowed to sign in.
type Account struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Identity returns the public view of the account attached to gated requests.
func (a *Account) Identity() Identity {
	return Identity{UserID: a.ID, Username: a.Username, Role: a.Role}
}

// Identity is the caller resolved by the session gate.
type Identity struct {
	UserID   int64  `json:"userId"`
	Username string `json:"username"`
	Role     string `json:"role"`
}
