package domain

import "time"

// Role is the account type of a user.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
	RoleWork  Role = "work"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin || r == RoleWork
}

// User is a marketplace account. Vendors and drivers are both users.
type User struct {
	ID                 string
	Avatar             string
	FullName           string
	Email              string
	PasswordHash       string
	MobileNumber       string
	Role               Role
	IsVerified         bool
	IsDocumentVerified bool
	VerifyCode         string
	VerifyCodeExpiry   time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// HasPassword reports whether the user finished registration.
func (u *User) HasPassword() bool {
	return u.PasswordHash != ""
}
