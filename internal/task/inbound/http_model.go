package inbound

import "time"

type TaskCreateRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	AssignedTo  int64      `json:"assigned_to,string"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	TaskType    string     `json:"task_type,omitempty"`
}

type TaskCreateResponse struct {
	ID int64 `json:"id,string"`
}

type TaskAssignRequest struct {
	IdempotencyKey string     `json:"idempotency_key"`
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	AssignedTo     []int64    `json:"assigned_to"`
	DueDate        *time.Time `json:"due_date,omitempty"`
	TaskType       string     `json:"task_type,omitempty"`
}

type TaskAssignResponse struct {
	TaskIDs []int64 `json:"task_ids"`
}

type TaskUpdateRequest struct {
	Title       *string    `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	AssignedTo  *int64     `json:"assigned_to,omitempty,string"`
	Status      *string    `json:"status,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	TaskType    *string    `json:"task_type,omitempty"`
}

type TaskStatusUpdateRequest struct {
	Status string `json:"status"`
}

type TaskItemResponse struct {
	ID             int64      `json:"id,string"`
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	Status         string     `json:"status"`
	DueDate        *time.Time `json:"due_date,omitempty"`
	TaskType       string     `json:"task_type,omitempty"`
	AssignedTo     *int64     `json:"assigned_to,omitempty,string"`
	AssignedToName string     `json:"assigned_to_name,omitempty"`
	CreatedBy      int64      `json:"created_by,string"`
	CreatedByName  string     `json:"created_by_name,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

type TaskListResponse struct {
	Tasks []TaskItemResponse `json:"tasks"`
	Total int64              `json:"total"`
}

type TeacherDashboardResponse struct {
	TotalTasks      int64 `json:"total_tasks"`
	PendingTasks    int64 `json:"pending_tasks"`
	InProgressTasks int64 `json:"in_progress_tasks"`
	CompletedTasks  int64 `json:"completed_tasks"`
	ProgressPct     int   `json:"progress_pct"`
	StudentsCount   int64 `json:"students_count"`
	DueToday        int64 `json:"due_today"`
	NewThisWeek     int64 `json:"new_this_week"`
}

type StudentDashboardResponse struct {
	TotalTasks      int64 `json:"total_tasks"`
	PendingTasks    int64 `json:"pending_tasks"`
	InProgressTasks int64 `json:"in_progress_tasks"`
	CompletedTasks  int64 `json:"completed_tasks"`
	ProgressPct     int   `json:"progress_pct"`
	DueToday        int64 `json:"due_today"`
}

type AdminDashboardResponse struct {
	TotalTasks      int64 `json:"total_tasks"`
	PendingTasks    int64 `json:"pending_tasks"`
	InProgressTasks int64 `json:"in_progress_tasks"`
	CompletedTasks  int64 `json:"completed_tasks"`
	ProgressPct     int   `json:"progress_pct"`
	UsersTotal      int64 `json:"users_total"`
	TeachersCount   int64 `json:"teachers_count"`
	StudentsCount   int64 `json:"students_count"`
	NewThisWeek     int64 `json:"new_this_week"`
}

type NoteUploadResponse struct {
	ID      int64  `json:"id,string"`
	FileKey string `json:"file_key"`
}

type NoteItemResponse struct {
	ID         int64     `json:"id,string"`
	Title      string    `json:"title"`
	FileKey    string    `json:"file_key"`
	Size       int64     `json:"size"`
	UploadedBy int64     `json:"uploaded_by,string"`
	CreatedAt  time.Time `json:"created_at"`
}

type NotesListResponse struct {
	Notes []NoteItemResponse `json:"notes"`
	Total int64              `json:"total"`
}
