package inbound

import (
	"context"
	"net/http"

	"github.com/taskgrid/taskgrid/internal/pkg/router"
	"github.com/taskgrid/taskgrid/internal/task/usecase"
)

type uc interface {
	TaskCreate(ctx context.Context, in usecase.TaskCreateInput) (*usecase.TaskCreateOutput, error)
	TaskAssign(ctx context.Context, in usecase.TaskAssignInput) (*usecase.TaskAssignOutput, error)
	TaskUpdate(ctx context.Context, in usecase.TaskUpdateInput) error
	TaskDelete(ctx context.Context, id int64) error
	TaskStatusUpdate(ctx context.Context, in usecase.TaskStatusUpdateInput) error
	TaskList(ctx context.Context, in usecase.TaskListInput) (*usecase.TaskListOutput, error)

	DashboardTeacher(ctx context.Context) (*usecase.TeacherDashboardOutput, error)
	DashboardStudent(ctx context.Context) (*usecase.StudentDashboardOutput, error)
	DashboardAdmin(ctx context.Context) (*usecase.AdminDashboardOutput, error)

	ReportGenerate(ctx context.Context, in usecase.ReportGenerateInput) (*usecase.ReportGenerateOutput, error)

	NotesUpload(ctx context.Context, in usecase.NotesUploadInput) (*usecase.NotesUploadOutput, error)
	NotesList(ctx context.Context, in usecase.NotesListInput) (*usecase.NotesListOutput, error)
}

func RegisterHTTPEndpoint(r *router.Router, uc uc) {
	end := &HTTPEndpoint{uc: uc}

	// Tasks (need authenticated & authorization)
	r.POST("/api/v1/tasks", end.TaskCreate)
	r.POST("/api/v1/tasks/assign", end.TaskAssign)
	r.GET("/api/v1/tasks", end.TaskList)
	r.PUT("/api/v1/tasks/:id", end.TaskUpdate)
	r.DELETE("/api/v1/tasks/:id", end.TaskDelete)
	r.PATCH("/api/v1/tasks/:id/status", end.TaskStatusUpdate)

	// Dashboards
	r.GET("/api/v1/dashboard/teacher", end.DashboardTeacher)
	r.GET("/api/v1/dashboard/student", end.DashboardStudent)
	r.GET("/api/v1/dashboard/admin", end.DashboardAdmin)

	// Reports (admin; streams the CSV back)
	r.GETRaw("/api/v1/reports", http.HandlerFunc(end.ReportDownload))

	// Notes
	r.POST("/api/v1/notes", end.NotesUpload)
	r.GET("/api/v1/notes", end.NotesList)
}
