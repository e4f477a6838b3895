package domain

import "time"

type Role string

const (
	RoleAdmin   Role = "admin"
	RoleSeller  Role = "seller"
	RoleKitchen Role = "kitchen"
)

// User is an operator of the system. PasswordHash is a bcrypt hash;
// the plaintext never leaves the login handler.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	FullName     string    `json:"full_name"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

func (u *User) IsAdmin() bool   { return u.Role == RoleAdmin }
func (u *User) IsSeller() bool  { return u.Role == RoleSeller }
func (u *User) IsKitchen() bool { return u.Role == RoleKitchen }
