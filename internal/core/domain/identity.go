package domain

// Identity is the caller resolved from a verified session token.
type Identity struct {
	Subject string
	Role    Role
	Email   string
}

// IsAdmin reports whether the identity carries the admin role.
func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}

// CanModify reports whether identity may change or delete task: admins may
// modify any task, everyone else only the tasks they authored.
func CanModify(identity Identity, task *Task) bool {
	if task == nil {
		return false
	}
	return identity.IsAdmin() || (identity.Subject != "" && identity.Subject == task.AuthorID)
}
