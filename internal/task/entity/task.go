package entity

import "time"

type Task struct {
	ID            int64
	Title         string
	Description   string
	AssignedTo    *int64
	CreatedBy     int64
	Status        Status
	DueDate       *time.Time
	TaskType      string
	AttachmentKey *string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type NewTask struct {
	ID            int64
	Title         string
	Description   string
	AssignedTo    *int64
	CreatedBy     int64
	Status        Status
	DueDate       *time.Time
	TaskType      string
	AttachmentKey *string
}

type UpdateTask struct {
	ID          int64
	Title       *string
	Description *string
	AssignedTo  *int64
	Status      *Status
	DueDate     *time.Time
	TaskType    *string
}

type TaskListFilter struct {
	CreatedBy  int64
	AssignedTo int64
	Status     Status
	Search     string
	Limit      int32
	Offset     int32
}

// TaskWithNames joins the assignee and creator display names for lists and
// detailed reports.
type TaskWithNames struct {
	Task
	AssignedToName string
	CreatedByName  string
}

type Note struct {
	ID         int64
	Title      string
	FileKey    string
	Size       int64
	UploadedBy int64
	CreatedAt  time.Time
}

// StatusCounts is a per-status breakdown used by every dashboard.
type StatusCounts struct {
	Total      int64
	Pending    int64
	InProgress int64
	Completed  int64
}

// ProgressPct is the completed share in percent, the way the dashboards
// display it.
func (c StatusCounts) ProgressPct() int {
	if c.Total == 0 {
		return 0
	}
	return int(c.Completed * 100 / c.Total)
}

type TeacherDashboard struct {
	Counts        StatusCounts
	StudentsCount int64
	DueToday      int64
	NewThisWeek   int64
}

type StudentDashboard struct {
	Counts   StatusCounts
	DueToday int64
}

type AdminDashboard struct {
	Counts        StatusCounts
	UsersTotal    int64
	TeachersCount int64
	StudentsCount int64
	NewThisWeek   int64
}
