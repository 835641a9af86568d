package usecase

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/taskgrid/taskgrid/internal/pkg/goerror"
	"github.com/taskgrid/taskgrid/internal/shared/constant"
	"github.com/taskgrid/taskgrid/internal/task/entity"
)

func TestDashboards(t *testing.T) {
	t.Run("teacher dashboard aggregates their tasks", func(t *testing.T) {
		f := newFixture(t)
		seedPeople(f)
		f.repo.teacherDash = &entity.TeacherDashboard{
			Counts:        entity.StatusCounts{Total: 4, Pending: 1, InProgress: 1, Completed: 2},
			StudentsCount: 2,
			DueToday:      1,
			NewThisWeek:   3,
		}

		out, err := f.uc.DashboardTeacher(authCtx(teacherID, constant.RoleTeacher))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if out.TotalTasks != 4 || out.ProgressPct != 50 {
			t.Fatalf("unexpected aggregates: %+v", out)
		}
		if out.StudentsCount != 2 || out.DueToday != 1 || out.NewThisWeek != 3 {
			t.Fatalf("unexpected aggregates: %+v", out)
		}
	})

	t.Run("student may not open the teacher dashboard", func(t *testing.T) {
		f := newFixture(t)
		seedPeople(f)

		_, err := f.uc.DashboardTeacher(authCtx(studentID, constant.RoleStudent))
		assertBusinessCode(t, err, goerror.CodeForbidden)
	})

	t.Run("student dashboard aggregates their assignments", func(t *testing.T) {
		f := newFixture(t)
		seedPeople(f)
		f.repo.studentDash = &entity.StudentDashboard{
			Counts:   entity.StatusCounts{Total: 3, Pending: 2, Completed: 1},
			DueToday: 2,
		}

		out, err := f.uc.DashboardStudent(authCtx(studentID, constant.RoleStudent))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if out.TotalTasks != 3 || out.ProgressPct != 33 || out.DueToday != 2 {
			t.Fatalf("unexpected aggregates: %+v", out)
		}
	})

	t.Run("admin dashboard spans tasks and users", func(t *testing.T) {
		f := newFixture(t)
		seedPeople(f)
		f.repo.adminDash = &entity.AdminDashboard{
			Counts:        entity.StatusCounts{Total: 10, Completed: 5},
			UsersTotal:    12,
			TeachersCount: 3,
			StudentsCount: 8,
			NewThisWeek:   4,
		}

		out, err := f.uc.DashboardAdmin(authCtx(adminID, constant.RoleAdmin))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if out.UsersTotal != 12 || out.TeachersCount != 3 || out.StudentsCount != 8 {
			t.Fatalf("unexpected aggregates: %+v", out)
		}
		if out.ProgressPct != 50 {
			t.Fatalf("expected 50%% progress, got %d", out.ProgressPct)
		}

		_, err = f.uc.DashboardAdmin(authCtx(teacherID, constant.RoleTeacher))
		assertBusinessCode(t, err, goerror.CodeForbidden)
	})
}

func TestReportGenerate(t *testing.T) {
	seed := func(t *testing.T) *fixture {
		t.Helper()
		f := newFixture(t)
		seedPeople(f)

		ctx := authCtx(teacherID, constant.RoleTeacher)
		if _, err := f.uc.TaskCreate(ctx, TaskCreateInput{Title: "Read chapter 4", AssignedTo: studentID}); err != nil {
			t.Fatalf("seed task: %v", err)
		}
		if _, err := f.uc.TaskCreate(ctx, TaskCreateInput{Title: "Read chapter 5", AssignedTo: studentID}); err != nil {
			t.Fatalf("seed task: %v", err)
		}
		return f
	}

	t.Run("summary csv carries totals and the per student breakdown", func(t *testing.T) {
		f := seed(t)

		out, err := f.uc.ReportGenerate(authCtx(adminID, constant.RoleAdmin), ReportGenerateInput{
			Kind:  "summary",
			Range: "week",
		})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		rows, err := csv.NewReader(bytes.NewReader(out.CSV)).ReadAll()
		if err != nil {
			t.Fatalf("parse csv: %v", err)
		}
		if rows[0][0] != "Metric" {
			t.Fatalf("unexpected header row: %v", rows[0])
		}
		if rows[1][0] != "Total Tasks" || rows[1][1] != "2" {
			t.Fatalf("unexpected totals row: %v", rows[1])
		}

		var sawStudent bool
		for _, row := range rows {
			if len(row) > 0 && row[0] == "Sam Student" {
				sawStudent = true
			}
		}
		if !sawStudent {
			t.Fatal("expected a per-student row for Sam Student")
		}

		if !strings.HasPrefix(out.Filename, "task-report-summary-week-") {
			t.Fatalf("unexpected filename %q", out.Filename)
		}
	})

	t.Run("detailed csv has one row per task", func(t *testing.T) {
		f := seed(t)

		out, err := f.uc.ReportGenerate(authCtx(adminID, constant.RoleAdmin), ReportGenerateInput{
			Kind:  "detailed",
			Range: "month",
		})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		rows, err := csv.NewReader(bytes.NewReader(out.CSV)).ReadAll()
		if err != nil {
			t.Fatalf("parse csv: %v", err)
		}
		if len(rows) != 3 {
			t.Fatalf("expected header plus 2 rows, got %d", len(rows))
		}
		if rows[0][0] != "ID" {
			t.Fatalf("unexpected header row: %v", rows[0])
		}
	})

	t.Run("a copy is archived to the report bucket", func(t *testing.T) {
		f := seed(t)

		out, err := f.uc.ReportGenerate(authCtx(adminID, constant.RoleAdmin), ReportGenerateInput{
			Kind:  "summary",
			Range: "week",
		})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if len(f.storage.objects) != 1 {
			t.Fatalf("expected 1 archived object, got %d", len(f.storage.objects))
		}
		obj := f.storage.objects[0]
		if obj.bucket != "taskgrid-reports" {
			t.Fatalf("unexpected bucket %q", obj.bucket)
		}
		if obj.key != out.ObjectKey || !strings.HasPrefix(obj.key, "reports/") {
			t.Fatalf("unexpected key %q", obj.key)
		}
		if !bytes.Equal(obj.data, out.CSV) {
			t.Fatal("archived bytes differ from the download")
		}
	})

	t.Run("archive failure still returns the download", func(t *testing.T) {
		f := seed(t)
		f.storage.putErr = errStorageDown

		out, err := f.uc.ReportGenerate(authCtx(adminID, constant.RoleAdmin), ReportGenerateInput{
			Kind:  "summary",
			Range: "week",
		})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(out.CSV) == 0 {
			t.Fatal("expected csv bytes")
		}
		if out.ObjectKey != "" {
			t.Fatalf("expected empty object key, got %q", out.ObjectKey)
		}
	})

	t.Run("only admins may generate reports", func(t *testing.T) {
		f := seed(t)

		_, err := f.uc.ReportGenerate(authCtx(teacherID, constant.RoleTeacher), ReportGenerateInput{
			Kind:  "summary",
			Range: "week",
		})
		assertBusinessCode(t, err, goerror.CodeForbidden)
	})

	t.Run("range window excludes older tasks", func(t *testing.T) {
		f := seed(t)

		old := entity.Task{
			ID:        1,
			Title:     "Ancient homework",
			CreatedBy: teacherID,
			Status:    entity.StatusCompleted,
			CreatedAt: f.clock.Now().AddDate(0, -2, 0),
		}
		f.repo.tasks[old.ID] = old

		out, err := f.uc.ReportGenerate(authCtx(adminID, constant.RoleAdmin), ReportGenerateInput{
			Kind:  "detailed",
			Range: "week",
		})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		rows, err := csv.NewReader(bytes.NewReader(out.CSV)).ReadAll()
		if err != nil {
			t.Fatalf("parse csv: %v", err)
		}
		if len(rows) != 3 {
			t.Fatalf("expected header plus 2 recent rows, got %d", len(rows))
		}
	})
}
