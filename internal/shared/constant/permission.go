// Package constant holds the authorization vocabulary shared by the
// modules and the casbin policy store.
package constant

// Objects guarded by the enforcer.
const (
	PermissionUsers         = "users"
	PermissionTasks         = "tasks"
	PermissionReports       = "reports"
	PermissionNotes         = "notes"
	PermissionNotifications = "notifications"
)

// Actions applied to objects.
const (
	ActionRead   = "read"
	ActionWrite  = "write"
	ActionDelete = "delete"
)

// Role names. These are both the application roles and the casbin
// grouping subjects.
const (
	RoleAdmin   = "Admin"
	RoleTeacher = "Teacher"
	RoleStudent = "Student"
)
