package usecase

import (
	"context"
	"log/slog"

	"github.com/taskgrid/taskgrid/internal/notification/entity"
	"github.com/taskgrid/taskgrid/internal/pkg/mail"
	"github.com/taskgrid/taskgrid/internal/pkg/valueobject"
)

type ConsumeUserRegisteredInput struct {
	UserID   int64  `validate:"required,gt=0"`
	Email    string `validate:"required,email"`
	FullName string `validate:"required,max=120"`
	Role     string `validate:"required"`
}

const userWelcomeEmailTemplate = `<p>Hi {{.full_name}},</p>
<p>Your {{.app_name}} account is ready. You signed up as a {{.role}}.</p>
<p>If anything looks wrong, reply to {{.support_email}}.</p>`

// ConsumeUserRegistered welcomes a freshly verified account.
func (s *Usecase) ConsumeUserRegistered(ctx context.Context, in ConsumeUserRegisteredInput) error {
	ctx, span := s.startSpan(ctx, "ConsumeUserRegistered")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		slog.ErrorContext(ctx, "invalid user registered payload", "user_id", in.UserID, "error", err)
		return nil
	}

	data := s.baseEmailTemplateData()
	data["full_name"] = in.FullName
	data["role"] = in.Role

	body, err := s.renderTemplate("user_welcome", userWelcomeEmailTemplate, data)
	if err != nil {
		slog.ErrorContext(ctx, "failed to render welcome email", "user_id", in.UserID, "error", err)
		return nil
	}

	if err := s.repoMail.Send(ctx, mail.Message{
		From:     s.cfg.GetString("mail.from"),
		To:       []string{in.Email},
		Subject:  "Welcome to " + s.cfg.GetString("app.name"),
		HTMLBody: body,
	}); err != nil {
		slog.ErrorContext(ctx, "failed to send welcome email", "user_id", in.UserID, "error", err)
	}

	n := entity.CreateNotification{
		ID:     s.uid.Generate(),
		UserID: in.UserID,
		Kind:   entity.KindUserWelcome,
		Title:  "Welcome aboard",
		Body:   "Your account was created as " + in.Role + ".",
		Data:   valueobject.JSONMap{"full_name": in.FullName},
	}

	if err := s.repoDB.CreateNotification(ctx, n); err != nil {
		slog.ErrorContext(ctx, "failed to repo create notification", "user_id", in.UserID, "error", err)
		return err
	}

	return nil
}
