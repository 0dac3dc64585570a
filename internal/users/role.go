package users

import "fmt"

type UserRole string

const (
	RoleAdministrator UserRole = "administrator"
	RoleManager       UserRole = "manager"
	RoleUser          UserRole = "user"
)

func (r UserRole) Valid() bool {
	switch r {
	case RoleAdministrator, RoleManager, RoleUser:
		return true
	default:
		return false
	}
}

func ParseUserRole(s string) (UserRole, error) {
	r := UserRole(s)
	if !r.Valid() {
		return "", fmt.Errorf("invalid role: %q", s)
	}
	return r, nil
}
