package usecase

import (
	"context"
	"strings"
	"testing"

	"github.com/taskgrid/taskgrid/internal/notification/entity"
)

func TestConsumeTaskAssigned(t *testing.T) {
	t.Run("success sends email and records an inbox row", func(t *testing.T) {
		f := newFixture(t)

		err := f.uc.ConsumeTaskAssigned(context.Background(), ConsumeTaskAssignedInput{
			TaskID:        501,
			Title:         "Read chapter 4",
			DueDate:       "2025-06-10",
			AssignedToID:  20,
			AssignedEmail: "sam@student.test",
			AssignedName:  "Sam Student",
			CreatedByName: "Tina Teacher",
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(f.ml.sent) != 1 {
			t.Fatalf("expected 1 email, got %d", len(f.ml.sent))
		}
		msg := f.ml.sent[0]
		if msg.To[0] != "sam@student.test" {
			t.Fatalf("expected email to assignee, got %v", msg.To)
		}
		if msg.Subject != "New task: Read chapter 4" {
			t.Fatalf("unexpected subject %q", msg.Subject)
		}
		if !strings.Contains(msg.HTMLBody, "Tina Teacher") || !strings.Contains(msg.HTMLBody, "2025-06-10") {
			t.Fatalf("email body missing details: %q", msg.HTMLBody)
		}

		if len(f.repo.rows) != 1 {
			t.Fatalf("expected 1 notification row, got %d", len(f.repo.rows))
		}
		row := f.repo.rows[0]
		if row.UserID != 20 || row.Kind != entity.KindTaskAssigned {
			t.Fatalf("unexpected row: %+v", row)
		}
		if row.Data["task_id"] != int64(501) {
			t.Fatalf("expected task_id in data, got %v", row.Data["task_id"])
		}
	})

	t.Run("email without due date omits the due line", func(t *testing.T) {
		f := newFixture(t)

		err := f.uc.ConsumeTaskAssigned(context.Background(), ConsumeTaskAssignedInput{
			TaskID:        502,
			Title:         "Untimed task",
			AssignedToID:  20,
			AssignedEmail: "sam@student.test",
			AssignedName:  "Sam Student",
			CreatedByName: "Tina Teacher",
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if strings.Contains(f.ml.sent[0].HTMLBody, "due on") {
			t.Fatalf("did not expect due date line: %q", f.ml.sent[0].HTMLBody)
		}
	})

	t.Run("malformed payload is dropped without redelivery", func(t *testing.T) {
		f := newFixture(t)

		err := f.uc.ConsumeTaskAssigned(context.Background(), ConsumeTaskAssignedInput{
			TaskID:        503,
			Title:         "Broken payload",
			AssignedToID:  20,
			AssignedEmail: "not-an-email",
		})
		if err != nil {
			t.Fatalf("expected nil so the broker does not redeliver, got %v", err)
		}
		if len(f.ml.sent) != 0 || len(f.repo.rows) != 0 {
			t.Fatalf("expected no side effects for malformed payload")
		}
	})

	t.Run("mail failure still records the inbox row", func(t *testing.T) {
		f := newFixture(t)
		f.ml.sendErr = errMailDown

		err := f.uc.ConsumeTaskAssigned(context.Background(), ConsumeTaskAssignedInput{
			TaskID:        504,
			Title:         "Flaky SMTP",
			AssignedToID:  20,
			AssignedEmail: "sam@student.test",
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(f.repo.rows) != 1 {
			t.Fatalf("expected inbox row despite mail failure, got %d", len(f.repo.rows))
		}
	})

	t.Run("row failure returns the error for redelivery", func(t *testing.T) {
		f := newFixture(t)
		f.repo.createErr = errDBDown

		err := f.uc.ConsumeTaskAssigned(context.Background(), ConsumeTaskAssignedInput{
			TaskID:        505,
			Title:         "DB outage",
			AssignedToID:  20,
			AssignedEmail: "sam@student.test",
		})
		if err == nil {
			t.Fatalf("expected error when the row cannot be stored")
		}
	})
}

func TestConsumeUserRegistered(t *testing.T) {
	t.Run("success welcomes the user", func(t *testing.T) {
		f := newFixture(t)

		err := f.uc.ConsumeUserRegistered(context.Background(), ConsumeUserRegisteredInput{
			UserID:   20,
			Email:    "sam@student.test",
			FullName: "Sam Student",
			Role:     "Student",
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(f.ml.sent) != 1 {
			t.Fatalf("expected 1 email, got %d", len(f.ml.sent))
		}
		msg := f.ml.sent[0]
		if msg.Subject != "Welcome to TaskGrid" {
			t.Fatalf("unexpected subject %q", msg.Subject)
		}
		if !strings.Contains(msg.HTMLBody, "Sam Student") || !strings.Contains(msg.HTMLBody, "no-reply@taskgrid.dev") {
			t.Fatalf("email body missing details: %q", msg.HTMLBody)
		}

		if len(f.repo.rows) != 1 {
			t.Fatalf("expected 1 notification row, got %d", len(f.repo.rows))
		}
		row := f.repo.rows[0]
		if row.Kind != entity.KindUserWelcome || row.Body != "Your account was created as Student." {
			t.Fatalf("unexpected row: %+v", row)
		}
	})

	t.Run("malformed payload is dropped", func(t *testing.T) {
		f := newFixture(t)

		err := f.uc.ConsumeUserRegistered(context.Background(), ConsumeUserRegisteredInput{
			UserID: 0,
			Email:  "sam@student.test",
		})
		if err != nil {
			t.Fatalf("expected nil, got %v", err)
		}
		if len(f.repo.rows) != 0 {
			t.Fatalf("expected no row for malformed payload")
		}
	})
}
