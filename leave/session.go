package leave

import "strings"

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleEmployee Role = "employee"
)

// ParseRole maps a directory position (chucVu) to a role.
func ParseRole(position string) Role {
	if strings.EqualFold(strings.TrimSpace(position), string(RoleAdmin)) {
		return RoleAdmin
	}
	return RoleEmployee
}

// Session identifies who is acting. It is passed explicitly to every
// service operation.
type Session struct {
	EmployeeID   string
	EmployeeName string
	Role         Role
}

func (s Session) IsAdmin() bool { return s.Role == RoleAdmin }
