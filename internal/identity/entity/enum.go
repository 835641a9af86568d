package entity

// Role is the access level granted to a user account. Every account has
// exactly one role and it never changes implicitly.
type Role int16

const (
	RoleUnknown Role = iota
	RoleAdmin
	RoleTeacher
	RoleStudent
)

func (r Role) String() string {
	switch r {
	case RoleAdmin:
		return "Admin"
	case RoleTeacher:
		return "Teacher"
	case RoleStudent:
		return "Student"
	default:
		return "Unknown"
	}
}

func (r Role) IsUnknown() bool {
	return r != RoleAdmin && r != RoleTeacher && r != RoleStudent
}

// DashboardPath is where the client should land after a completed login.
func (r Role) DashboardPath() string {
	switch r {
	case RoleAdmin:
		return "/admin/dashboard"
	case RoleTeacher:
		return "/teacher/dashboard"
	case RoleStudent:
		return "/student/dashboard"
	default:
		return "/login"
	}
}

func RoleFromString(s string) Role {
	switch s {
	case "Admin":
		return RoleAdmin
	case "Teacher":
		return RoleTeacher
	case "Student":
		return RoleStudent
	default:
		return RoleUnknown
	}
}
