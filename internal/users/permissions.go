package users

// CanEdit decides whether actor may edit target. A nil actor is an
// anonymous caller. Unknown actor roles fail closed.
func CanEdit(actor *User, target *User) bool {
	if actor == nil || target == nil {
		return false
	}

	switch actor.Role {
	case RoleAdministrator:
		return true
	case RoleManager:
		return target.Role == RoleUser
	case RoleUser:
		return actor.ID == target.ID
	default:
		return false
	}
}
