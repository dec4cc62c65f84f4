package entity

import (
	"time"
)

// User is the aggregate root for the account domain.
// Passwords are stored as bcrypt hashes in Password field; the hash and the
// reset token never leave the process.
type User struct {
	ID                  string     `json:"id"`
	Name                string     `json:"name"`
	Email               string     `json:"email"`
	Role                Role       `json:"role"`
	Password            string     `json:"-"`
	ResetPasswordToken  string     `json:"-"`
	ResetPasswordExpire *time.Time `json:"-"`
	CreatedAt           time.Time  `json:"createdAt"`
}

// IsAdmin reports whether u may act on resources it does not own.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// Owns reports whether u created the resource owned by ownerID.
func (u *User) Owns(ownerID string) bool {
	return u != nil && u.ID != "" && u.ID == ownerID
}
