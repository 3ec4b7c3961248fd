package entity

import "time"

const (
	RoleAdmin        = "admin"
	RoleProjectAdmin = "project_admin"
	RoleMember       = "member"
)

// AvailableUserRoles is the fixed role enumeration for project memberships.
// Authorization is a membership test against this flat set; there is no
// hierarchy and admin does not implicitly satisfy a member-only check.
var AvailableUserRoles = []string{RoleAdmin, RoleProjectAdmin, RoleMember}

func IsValidUserRole(role string) bool {
	for _, r := range AvailableUserRoles {
		if r == role {
			return true
		}
	}
	return false
}

type Project struct {
	ID          uint64
	Name        string
	Description string
	CreatedBy   uint64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type ProjectMember struct {
	ID        uint64
	ProjectID uint64
	UserID    uint64
	Role      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ProjectMemberDetail is a membership row joined with the member's user data.
type ProjectMemberDetail struct {
	ProjectMember
	Username string
	Email    string
	FullName string
}
