package models

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role"` // user, admin
}

// IsAdmin reports whether the user may reach the admin console.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
