package identity

import "github.com/erp/adminpanel/internal/domain/shared"

// Role is the access level shown next to a user
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleUser    Role = "user"
)

// Roles lists the roles the panel offers, in display order
var Roles = []Role{RoleAdmin, RoleManager, RoleUser}

// IsKnown reports whether r is one of Roles.
// The backend and the user schema both accept other values.
func (r Role) IsKnown() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleUser:
		return true
	}
	return false
}

// User is a user record as served by GET /users and GET /users/{id}
type User struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// UserInput is the editable field set sent on create and update.
// Update always sends the full set; there is no partial update.
type UserInput struct {
	Name  string `json:"name" mapstructure:"name" validate:"min=1"`
	Email string `json:"email" mapstructure:"email" validate:"min=1"`
	Role  string `json:"role" mapstructure:"role" validate:"min=1"`
}

// Input returns the editable fields of u
func (u User) Input() UserInput {
	return UserInput{
		Name:  u.Name,
		Email: u.Email,
		Role:  string(u.Role),
	}
}

// Filter keeps users whose name, email or role contains term, ignoring case
func Filter(users []User, term string) []User {
	if term == "" {
		return users
	}
	out := make([]User, 0, len(users))
	for _, u := range users {
		if shared.ContainsFold(u.Name, term) ||
			shared.ContainsFold(u.Email, term) ||
			shared.ContainsFold(string(u.Role), term) {
			out = append(out, u)
		}
	}
	return out
}
