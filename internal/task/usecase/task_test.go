package usecase

import (
	"context"
	"testing"

	"github.com/taskgrid/taskgrid/internal/pkg/goerror"
	"github.com/taskgrid/taskgrid/internal/shared/constant"
	"github.com/taskgrid/taskgrid/internal/task/entity"
)

const (
	teacherID = int64(10)
	studentID = int64(20)
	adminID   = int64(30)
)

func seedPeople(f *fixture) {
	f.repo.addPerson(teacherID, constant.RoleTeacher, "Tina Teacher", "tina@example.com")
	f.repo.addPerson(studentID, constant.RoleStudent, "Sam Student", "sam@example.com")
	f.repo.addPerson(adminID, constant.RoleAdmin, "Ada Admin", "ada@example.com")
}

func TestTaskCreate(t *testing.T) {
	t.Run("teacher creates a task and the event carries the assignee", func(t *testing.T) {
		f := newFixture(t)
		seedPeople(f)

		out, err := f.uc.TaskCreate(authCtx(teacherID, constant.RoleTeacher), TaskCreateInput{
			Title:      "Read chapter 4",
			AssignedTo: studentID,
		})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		task, ok := f.repo.tasks[out.ID]
		if !ok {
			t.Fatal("expected the task to be stored")
		}
		if task.Status != entity.StatusPending {
			t.Fatalf("expected new task to be pending, got %s", task.Status)
		}
		if task.CreatedBy != teacherID {
			t.Fatalf("expected creator %d, got %d", teacherID, task.CreatedBy)
		}

		if len(f.msg.published) != 1 {
			t.Fatalf("expected 1 published event, got %d", len(f.msg.published))
		}
		ev := f.msg.published[0]
		if ev.AssignedEmail != "sam@example.com" || ev.AssignedName != "Sam Student" {
			t.Fatalf("unexpected assignee in event: %+v", ev)
		}
		if ev.CreatedByName != "Tina Teacher" {
			t.Fatalf("unexpected creator name in event: %q", ev.CreatedByName)
		}
	})

	t.Run("student may not create tasks", func(t *testing.T) {
		f := newFixture(t)
		seedPeople(f)

		_, err := f.uc.TaskCreate(authCtx(studentID, constant.RoleStudent), TaskCreateInput{
			Title:      "Read chapter 4",
			AssignedTo: studentID,
		})
		assertBusinessCode(t, err, goerror.CodeForbidden)
	})

	t.Run("unauthenticated caller is rejected", func(t *testing.T) {
		f := newFixture(t)
		seedPeople(f)

		_, err := f.uc.TaskCreate(context.Background(), TaskCreateInput{
			Title:      "Read chapter 4",
			AssignedTo: studentID,
		})
		assertBusinessCode(t, err, goerror.CodeUnauthorized)
	})

	t.Run("assignee must be a student", func(t *testing.T) {
		f := newFixture(t)
		seedPeople(f)

		_, err := f.uc.TaskCreate(authCtx(teacherID, constant.RoleTeacher), TaskCreateInput{
			Title:      "Read chapter 4",
			AssignedTo: adminID,
		})
		assertBusinessCode(t, err, goerror.CodeInvalidInput)
	})

	t.Run("unknown assignee is invalid input", func(t *testing.T) {
		f := newFixture(t)
		seedPeople(f)

		_, err := f.uc.TaskCreate(authCtx(teacherID, constant.RoleTeacher), TaskCreateInput{
			Title:      "Read chapter 4",
			AssignedTo: 999,
		})
		assertBusinessCode(t, err, goerror.CodeInvalidInput)
	})
}

func TestTaskAssign(t *testing.T) {
	input := func() TaskAssignInput {
		return TaskAssignInput{
			IdempotencyKey: "assign-2025-06-02",
			Title:          "Group project",
			AssignedTo:     []int64{studentID, 21},
		}
	}

	t.Run("one task per student in a single submit", func(t *testing.T) {
		f := newFixture(t)
		seedPeople(f)
		f.repo.addPerson(21, constant.RoleStudent, "Sue Student", "sue@example.com")

		out, err := f.uc.TaskAssign(authCtx(teacherID, constant.RoleTeacher), input())
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if len(out.TaskIDs) != 2 {
			t.Fatalf("expected 2 task ids, got %d", len(out.TaskIDs))
		}
		if len(f.repo.tasks) != 2 {
			t.Fatalf("expected 2 stored tasks, got %d", len(f.repo.tasks))
		}
		if len(f.msg.published) != 2 {
			t.Fatalf("expected 2 published events, got %d", len(f.msg.published))
		}
	})

	t.Run("retried submit with the same key is a conflict, not a duplicate", func(t *testing.T) {
		f := newFixture(t)
		seedPeople(f)
		f.repo.addPerson(21, constant.RoleStudent, "Sue Student", "sue@example.com")

		ctx := authCtx(teacherID, constant.RoleTeacher)
		if _, err := f.uc.TaskAssign(ctx, input()); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		_, err := f.uc.TaskAssign(ctx, input())
		assertBusinessCode(t, err, goerror.CodeConflict)

		if len(f.repo.tasks) != 2 {
			t.Fatalf("expected still 2 stored tasks, got %d", len(f.repo.tasks))
		}
	})

	t.Run("one non-student assignee rejects the whole batch", func(t *testing.T) {
		f := newFixture(t)
		seedPeople(f)

		in := input()
		in.AssignedTo = []int64{studentID, adminID}

		_, err := f.uc.TaskAssign(authCtx(teacherID, constant.RoleTeacher), in)
		assertBusinessCode(t, err, goerror.CodeInvalidInput)

		if len(f.repo.tasks) != 0 {
			t.Fatalf("expected no stored tasks, got %d", len(f.repo.tasks))
		}
	})
}

func TestTaskUpdate(t *testing.T) {
	seedTask := func(t *testing.T, f *fixture) int64 {
		t.Helper()
		seedPeople(f)
		out, err := f.uc.TaskCreate(authCtx(teacherID, constant.RoleTeacher), TaskCreateInput{
			Title:      "Read chapter 4",
			AssignedTo: studentID,
		})
		if err != nil {
			t.Fatalf("seed task: %v", err)
		}
		return out.ID
	}

	t.Run("creator edits title and status", func(t *testing.T) {
		f := newFixture(t)
		id := seedTask(t, f)

		title := "Read chapter 5"
		status := "Completed"
		err := f.uc.TaskUpdate(authCtx(teacherID, constant.RoleTeacher), TaskUpdateInput{
			ID:     id,
			Title:  &title,
			Status: &status,
		})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		task := f.repo.tasks[id]
		if task.Title != title {
			t.Fatalf("expected title %q, got %q", title, task.Title)
		}
		if task.Status != entity.StatusCompleted {
			t.Fatalf("expected status completed, got %s", task.Status)
		}
	})

	t.Run("another teacher may not edit it", func(t *testing.T) {
		f := newFixture(t)
		id := seedTask(t, f)
		f.repo.addPerson(11, constant.RoleTeacher, "Tom Teacher", "tom@example.com")

		title := "Hijacked"
		err := f.uc.TaskUpdate(authCtx(11, constant.RoleTeacher), TaskUpdateInput{ID: id, Title: &title})
		assertBusinessCode(t, err, goerror.CodeForbidden)
	})

	t.Run("admin may edit any task", func(t *testing.T) {
		f := newFixture(t)
		id := seedTask(t, f)

		title := "Adjusted by admin"
		err := f.uc.TaskUpdate(authCtx(adminID, constant.RoleAdmin), TaskUpdateInput{ID: id, Title: &title})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if f.repo.tasks[id].Title != title {
			t.Fatalf("expected title %q, got %q", title, f.repo.tasks[id].Title)
		}
	})

	t.Run("unknown task is not found", func(t *testing.T) {
		f := newFixture(t)
		seedPeople(f)

		title := "Anything"
		err := f.uc.TaskUpdate(authCtx(teacherID, constant.RoleTeacher), TaskUpdateInput{ID: 999, Title: &title})
		assertBusinessCode(t, err, goerror.CodeNotFound)
	})
}

func TestTaskDelete(t *testing.T) {
	t.Run("creator deletes own task", func(t *testing.T) {
		f := newFixture(t)
		seedPeople(f)
		out, err := f.uc.TaskCreate(authCtx(teacherID, constant.RoleTeacher), TaskCreateInput{
			Title:      "Read chapter 4",
			AssignedTo: studentID,
		})
		if err != nil {
			t.Fatalf("seed task: %v", err)
		}

		if err := f.uc.TaskDelete(authCtx(teacherID, constant.RoleTeacher), out.ID); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(f.repo.tasks) != 0 {
			t.Fatalf("expected no stored tasks, got %d", len(f.repo.tasks))
		}
	})

	t.Run("student may not delete", func(t *testing.T) {
		f := newFixture(t)
		seedPeople(f)

		err := f.uc.TaskDelete(authCtx(studentID, constant.RoleStudent), 1)
		assertBusinessCode(t, err, goerror.CodeForbidden)
	})
}

func TestTaskStatusUpdate(t *testing.T) {
	seed := func(t *testing.T) (*fixture, int64) {
		t.Helper()
		f := newFixture(t)
		seedPeople(f)
		out, err := f.uc.TaskCreate(authCtx(teacherID, constant.RoleTeacher), TaskCreateInput{
			Title:      "Read chapter 4",
			AssignedTo: studentID,
		})
		if err != nil {
			t.Fatalf("seed task: %v", err)
		}
		return f, out.ID
	}

	t.Run("assignee moves the task forward", func(t *testing.T) {
		f, id := seed(t)

		err := f.uc.TaskStatusUpdate(authCtx(studentID, constant.RoleStudent), TaskStatusUpdateInput{
			ID:     id,
			Status: "In Progress",
		})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if f.repo.tasks[id].Status != entity.StatusInProgress {
			t.Fatalf("expected in progress, got %s", f.repo.tasks[id].Status)
		}
	})

	t.Run("someone else's task reads as not found", func(t *testing.T) {
		f, id := seed(t)
		f.repo.addPerson(21, constant.RoleStudent, "Sue Student", "sue@example.com")

		err := f.uc.TaskStatusUpdate(authCtx(21, constant.RoleStudent), TaskStatusUpdateInput{
			ID:     id,
			Status: "Completed",
		})
		assertBusinessCode(t, err, goerror.CodeNotFound)
	})

	t.Run("invalid status value fails validation", func(t *testing.T) {
		f, id := seed(t)

		err := f.uc.TaskStatusUpdate(authCtx(studentID, constant.RoleStudent), TaskStatusUpdateInput{
			ID:     id,
			Status: "Done",
		})
		if err == nil {
			t.Fatal("expected a validation error")
		}
	})
}

func TestTaskList(t *testing.T) {
	seed := func(t *testing.T) *fixture {
		t.Helper()
		f := newFixture(t)
		seedPeople(f)
		f.repo.addPerson(11, constant.RoleTeacher, "Tom Teacher", "tom@example.com")
		f.repo.addPerson(21, constant.RoleStudent, "Sue Student", "sue@example.com")

		ctxTina := authCtx(teacherID, constant.RoleTeacher)
		ctxTom := authCtx(11, constant.RoleTeacher)

		if _, err := f.uc.TaskCreate(ctxTina, TaskCreateInput{Title: "Tina to Sam", AssignedTo: studentID}); err != nil {
			t.Fatalf("seed task: %v", err)
		}
		if _, err := f.uc.TaskCreate(ctxTina, TaskCreateInput{Title: "Tina to Sue", AssignedTo: 21}); err != nil {
			t.Fatalf("seed task: %v", err)
		}
		if _, err := f.uc.TaskCreate(ctxTom, TaskCreateInput{Title: "Tom to Sam", AssignedTo: studentID}); err != nil {
			t.Fatalf("seed task: %v", err)
		}
		return f
	}

	t.Run("teacher sees only tasks they created", func(t *testing.T) {
		f := seed(t)

		out, err := f.uc.TaskList(authCtx(teacherID, constant.RoleTeacher), TaskListInput{})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if out.Total != 2 {
			t.Fatalf("expected 2 tasks, got %d", out.Total)
		}
		for _, task := range out.Tasks {
			if task.CreatedBy != teacherID {
				t.Fatalf("unexpected creator %d in teacher list", task.CreatedBy)
			}
		}
	})

	t.Run("student sees only tasks assigned to them", func(t *testing.T) {
		f := seed(t)

		out, err := f.uc.TaskList(authCtx(studentID, constant.RoleStudent), TaskListInput{})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if out.Total != 2 {
			t.Fatalf("expected 2 tasks, got %d", out.Total)
		}
		for _, task := range out.Tasks {
			if task.AssignedTo == nil || *task.AssignedTo != studentID {
				t.Fatalf("unexpected assignee in student list: %+v", task)
			}
		}
	})

	t.Run("admin sees everything", func(t *testing.T) {
		f := seed(t)

		out, err := f.uc.TaskList(authCtx(adminID, constant.RoleAdmin), TaskListInput{})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if out.Total != 3 {
			t.Fatalf("expected 3 tasks, got %d", out.Total)
		}
	})

	t.Run("status filter narrows the list", func(t *testing.T) {
		f := seed(t)

		out, err := f.uc.TaskList(authCtx(adminID, constant.RoleAdmin), TaskListInput{Status: "Completed"})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if out.Total != 0 {
			t.Fatalf("expected no completed tasks, got %d", out.Total)
		}
	})
}
