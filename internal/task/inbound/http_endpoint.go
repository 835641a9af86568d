package inbound

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"path"

	"github.com/taskgrid/taskgrid/internal/pkg/goerror"
	"github.com/taskgrid/taskgrid/internal/pkg/router"
	"github.com/taskgrid/taskgrid/internal/task/usecase"
)

// HTTPEndpoint exposes HTTP handlers for task management, dashboards,
// reports and shared notes.
type HTTPEndpoint struct {
	uc uc
}

// TaskCreate creates a single task for one student.
// @Summary Create task
// @Description Creates a task assigned to a single student.
// @Tags Task
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body TaskCreateRequest true "Task payload"
// @Success 200 {object} router.successResponse{data=TaskCreateResponse} "Task created"
// @Failure 401 {object} router.errorResponse "Unauthorized"
// @Failure 403 {object} router.errorResponse "Forbidden"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/tasks [post]
func (h *HTTPEndpoint) TaskCreate(r *router.Request) (any, error) {
	var req TaskCreateRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.TaskCreate(r.Context(), usecase.TaskCreateInput{
		Title:       req.Title,
		Description: req.Description,
		AssignedTo:  req.AssignedTo,
		DueDate:     req.DueDate,
		TaskType:    req.TaskType,
	})
	if err != nil {
		return nil, err
	}

	return TaskCreateResponse{ID: resp.ID}, nil
}

// TaskAssign fans one task out to many students.
// @Summary Bulk assign task
// @Description Creates one task per student in a single write, deduplicated by idempotency key.
// @Tags Task
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body TaskAssignRequest true "Assignment payload"
// @Success 200 {object} router.successResponse{data=TaskAssignResponse} "Tasks created"
// @Failure 401 {object} router.errorResponse "Unauthorized"
// @Failure 403 {object} router.errorResponse "Forbidden"
// @Failure 409 {object} router.errorResponse "Assignment already processed"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/tasks/assign [post]
func (h *HTTPEndpoint) TaskAssign(r *router.Request) (any, error) {
	var req TaskAssignRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.TaskAssign(r.Context(), usecase.TaskAssignInput{
		IdempotencyKey: req.IdempotencyKey,
		Title:          req.Title,
		Description:    req.Description,
		AssignedTo:     req.AssignedTo,
		DueDate:        req.DueDate,
		TaskType:       req.TaskType,
	})
	if err != nil {
		return nil, err
	}

	return TaskAssignResponse{TaskIDs: resp.TaskIDs}, nil
}

// TaskList returns tasks scoped by the caller's role.
func (h *HTTPEndpoint) TaskList(r *router.Request) (any, error) {
	page, err := r.GetQueryInt32("page")
	if err != nil {
		return nil, err
	}

	limit, err := r.GetQueryInt32("limit")
	if err != nil {
		return nil, err
	}

	resp, err := h.uc.TaskList(r.Context(), usecase.TaskListInput{
		Status: r.GetQuery("status"),
		Search: r.GetQuery("search"),
		Page:   page,
		Limit:  limit,
	})
	if err != nil {
		return nil, err
	}

	tasks := make([]TaskItemResponse, 0, len(resp.Tasks))
	for _, t := range resp.Tasks {
		tasks = append(tasks, TaskItemResponse{
			ID:             t.ID,
			Title:          t.Title,
			Description:    t.Description,
			Status:         t.Status,
			DueDate:        t.DueDate,
			TaskType:       t.TaskType,
			AssignedTo:     t.AssignedTo,
			AssignedToName: t.AssignedToName,
			CreatedBy:      t.CreatedBy,
			CreatedByName:  t.CreatedByName,
			CreatedAt:      t.CreatedAt,
		})
	}

	return TaskListResponse{Tasks: tasks, Total: resp.Total}, nil
}

// TaskUpdate edits a task owned by the caller.
func (h *HTTPEndpoint) TaskUpdate(r *router.Request) (any, error) {
	id, err := r.GetParamInt64("id")
	if err != nil {
		return nil, err
	}

	var req TaskUpdateRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	return nil, h.uc.TaskUpdate(r.Context(), usecase.TaskUpdateInput{
		ID:          id,
		Title:       req.Title,
		Description: req.Description,
		AssignedTo:  req.AssignedTo,
		Status:      req.Status,
		DueDate:     req.DueDate,
		TaskType:    req.TaskType,
	})
}

// TaskDelete removes a task owned by the caller.
func (h *HTTPEndpoint) TaskDelete(r *router.Request) (any, error) {
	id, err := r.GetParamInt64("id")
	if err != nil {
		return nil, err
	}

	return nil, h.uc.TaskDelete(r.Context(), id)
}

// TaskStatusUpdate moves a task the caller is assigned to through its states.
func (h *HTTPEndpoint) TaskStatusUpdate(r *router.Request) (any, error) {
	id, err := r.GetParamInt64("id")
	if err != nil {
		return nil, err
	}

	var req TaskStatusUpdateRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	return nil, h.uc.TaskStatusUpdate(r.Context(), usecase.TaskStatusUpdateInput{
		ID:     id,
		Status: req.Status,
	})
}

// DashboardTeacher aggregates the caller's created tasks.
func (h *HTTPEndpoint) DashboardTeacher(r *router.Request) (any, error) {
	resp, err := h.uc.DashboardTeacher(r.Context())
	if err != nil {
		return nil, err
	}

	return TeacherDashboardResponse{
		TotalTasks:      resp.TotalTasks,
		PendingTasks:    resp.PendingTasks,
		InProgressTasks: resp.InProgressTasks,
		CompletedTasks:  resp.CompletedTasks,
		ProgressPct:     resp.ProgressPct,
		StudentsCount:   resp.StudentsCount,
		DueToday:        resp.DueToday,
		NewThisWeek:     resp.NewThisWeek,
	}, nil
}

// DashboardStudent aggregates the caller's assigned tasks.
func (h *HTTPEndpoint) DashboardStudent(r *router.Request) (any, error) {
	resp, err := h.uc.DashboardStudent(r.Context())
	if err != nil {
		return nil, err
	}

	return StudentDashboardResponse{
		TotalTasks:      resp.TotalTasks,
		PendingTasks:    resp.PendingTasks,
		InProgressTasks: resp.InProgressTasks,
		CompletedTasks:  resp.CompletedTasks,
		ProgressPct:     resp.ProgressPct,
		DueToday:        resp.DueToday,
	}, nil
}

// DashboardAdmin aggregates tasks and users across the whole system.
func (h *HTTPEndpoint) DashboardAdmin(r *router.Request) (any, error) {
	resp, err := h.uc.DashboardAdmin(r.Context())
	if err != nil {
		return nil, err
	}

	return AdminDashboardResponse{
		TotalTasks:      resp.TotalTasks,
		PendingTasks:    resp.PendingTasks,
		InProgressTasks: resp.InProgressTasks,
		CompletedTasks:  resp.CompletedTasks,
		ProgressPct:     resp.ProgressPct,
		UsersTotal:      resp.UsersTotal,
		TeachersCount:   resp.TeachersCount,
		StudentsCount:   resp.StudentsCount,
		NewThisWeek:     resp.NewThisWeek,
	}, nil
}

// ReportDownload renders the CSV and streams it back as a download.
// @Summary Download task report
// @Description Generates a summary or detailed CSV over the selected range and streams it back.
// @Tags Task, Report
// @Security BearerAuth
// @Produce text/csv
// @Param kind query string true "summary or detailed"
// @Param range query string true "week, month, quarter or year"
// @Success 200 {string} string "CSV file"
// @Failure 401 {string} string "Unauthorized"
// @Failure 403 {string} string "Forbidden"
// @Router /api/v1/reports [get]
func (h *HTTPEndpoint) ReportDownload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	resp, err := h.uc.ReportGenerate(ctx, usecase.ReportGenerateInput{
		Kind:  r.URL.Query().Get("kind"),
		Range: r.URL.Query().Get("range"),
	})
	if err != nil {
		writeRawError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="`+resp.Filename+`"`)
	if _, err := w.Write(resp.CSV); err != nil {
		slog.ErrorContext(ctx, "failed to write report response", "error", err)
	}
}

// NotesUpload streams a shared note file into object storage.
// @Summary Upload note
// @Description Stores the uploaded file in object storage and records it for listing.
// @Tags Task, Note
// @Security BearerAuth
// @Accept multipart/form-data
// @Produce json
// @Param title query string false "Note title, defaults to the file name"
// @Param file formData file true "Note file"
// @Success 200 {object} router.successResponse{data=NoteUploadResponse} "Note stored"
// @Failure 401 {object} router.errorResponse "Unauthorized"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/notes [post]
func (h *HTTPEndpoint) NotesUpload(r *router.Request) (any, error) {
	ctx := r.Context()

	file, err := r.StreamSingleFile("file")
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := file.Close(); err != nil {
			slog.ErrorContext(ctx, "failed to close file", "error", err)
		}
	}()

	var filename string
	if part, ok := file.(*multipart.Part); ok {
		filename = path.Base(part.FileName())
	}

	// Notes are size-capped, so buffering to learn the byte count is fine.
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, file); err != nil {
		return nil, goerror.NewInvalidFormat()
	}

	title := r.GetQuery("title")
	if title == "" {
		title = filename
	}

	resp, err := h.uc.NotesUpload(ctx, usecase.NotesUploadInput{
		Title:    title,
		Filename: filename,
		Size:     int64(buf.Len()),
		Body:     &buf,
	})
	if err != nil {
		return nil, err
	}

	return NoteUploadResponse{ID: resp.ID, FileKey: resp.FileKey}, nil
}

// NotesList returns the shared notes, most recent first.
func (h *HTTPEndpoint) NotesList(r *router.Request) (any, error) {
	page, err := r.GetQueryInt32("page")
	if err != nil {
		return nil, err
	}

	limit, err := r.GetQueryInt32("limit")
	if err != nil {
		return nil, err
	}

	resp, err := h.uc.NotesList(r.Context(), usecase.NotesListInput{Page: page, Limit: limit})
	if err != nil {
		return nil, err
	}

	notes := make([]NoteItemResponse, 0, len(resp.Notes))
	for _, n := range resp.Notes {
		notes = append(notes, NoteItemResponse{
			ID:         n.ID,
			Title:      n.Title,
			FileKey:    n.FileKey,
			Size:       n.Size,
			UploadedBy: n.UploadedBy,
			CreatedAt:  n.CreatedAt,
		})
	}

	return NotesListResponse{Notes: notes, Total: resp.Total}, nil
}

func writeRawError(w http.ResponseWriter, err error) {
	var gerr *goerror.Error
	if !errors.As(err, &gerr) {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(gerr.StatusCode())
	if err := json.NewEncoder(w).Encode(map[string]string{"message": gerr.Msg()}); err != nil {
		slog.Error("failed to write error response", "error", err)
	}
}
