package usecase

import (
	"context"
	"log/slog"

	"github.com/taskgrid/taskgrid/internal/notification/entity"
	"github.com/taskgrid/taskgrid/internal/pkg/mail"
	"github.com/taskgrid/taskgrid/internal/pkg/valueobject"
)

type ConsumeTaskAssignedInput struct {
	TaskID        int64  `validate:"required,gt=0"`
	Title         string `validate:"required"`
	DueDate       string
	AssignedToID  int64  `validate:"required,gt=0"`
	AssignedEmail string `validate:"required,email"`
	AssignedName  string
	CreatedByName string
}

const taskAssignedEmailTemplate = `<p>Hi {{.assigned_name}},</p>
<p>{{.created_by_name}} assigned you a new task: <strong>{{.title}}</strong>.</p>
{{if .due_date}}<p>It is due on {{.due_date}}.</p>{{end}}
<p>Log in to {{.app_name}} to see the details.</p>`

// ConsumeTaskAssigned handles the broker event: mail the student and
// record an in-app notification row. Malformed payloads are dropped so
// the broker does not redeliver them forever.
func (s *Usecase) ConsumeTaskAssigned(ctx context.Context, in ConsumeTaskAssignedInput) error {
	ctx, span := s.startSpan(ctx, "ConsumeTaskAssigned")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		slog.ErrorContext(ctx, "invalid task assigned payload", "task_id", in.TaskID, "error", err)
		return nil
	}

	data := s.baseEmailTemplateData()
	data["assigned_name"] = in.AssignedName
	data["created_by_name"] = in.CreatedByName
	data["title"] = in.Title
	data["due_date"] = in.DueDate

	body, err := s.renderTemplate("task_assigned", taskAssignedEmailTemplate, data)
	if err != nil {
		slog.ErrorContext(ctx, "failed to render task assigned email", "task_id", in.TaskID, "error", err)
		return nil
	}

	if err := s.repoMail.Send(ctx, mail.Message{
		From:     s.cfg.GetString("mail.from"),
		To:       []string{in.AssignedEmail},
		Subject:  "New task: " + in.Title,
		HTMLBody: body,
	}); err != nil {
		// The in-app row still lands. Returning the error would make the
		// broker redeliver and mail the student twice on a flaky SMTP day.
		slog.ErrorContext(ctx, "failed to send task assigned email", "task_id", in.TaskID, "user_id", in.AssignedToID, "error", err)
	}

	n := entity.CreateNotification{
		ID:     s.uid.Generate(),
		UserID: in.AssignedToID,
		Kind:   entity.KindTaskAssigned,
		Title:  "New task assigned",
		Body:   in.Title,
		Data: valueobject.JSONMap{
			"task_id":  in.TaskID,
			"due_date": in.DueDate,
		},
	}

	if err := s.repoDB.CreateNotification(ctx, n); err != nil {
		slog.ErrorContext(ctx, "failed to repo create notification", "user_id", in.AssignedToID, "error", err)
		return err
	}

	return nil
}
