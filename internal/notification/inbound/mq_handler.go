package inbound

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/taskgrid/taskgrid/internal/notification/usecase"
	"github.com/taskgrid/taskgrid/internal/pkg/instrument"
	"github.com/taskgrid/taskgrid/internal/pkg/messaging"
	"github.com/taskgrid/taskgrid/internal/pkg/uid"
	"github.com/taskgrid/taskgrid/internal/shared/event"
)

const keyOfCorrelationID string = "cID"

type MQHandler struct {
	uc   uc
	uuid uid.StringID
	ins  instrument.Instrumentation
}

func (h *MQHandler) ensureCorrelationID(ctx context.Context, headers []messaging.Header) context.Context {
	for i := range headers {
		if headers[i].Key == keyOfCorrelationID {
			return instrument.SetCorrelationID(ctx, string(headers[i].Value))
		}
	}
	return instrument.SetCorrelationID(ctx, h.uuid.Generate())
}

func (h *MQHandler) TaskAssignedNotification(ctx context.Context, msg messaging.Message) error {
	ctx = h.ensureCorrelationID(ctx, msg.Headers())

	ctx, span := h.ins.Tracer("notification.inbound.mq").Start(ctx, "TaskAssignedNotification")
	defer span.End()

	body := msg.Body()
	slog.InfoContext(ctx, "consume: task assigned notification", "msg_body", string(body))

	var payload event.TaskAssignedMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		slog.ErrorContext(ctx, "failed to parse message body of task assigned notification", "msg_body", string(body), "error", err)
		return nil
	}

	if err := h.uc.ConsumeTaskAssigned(ctx, usecase.ConsumeTaskAssignedInput{
		TaskID:        payload.TaskID,
		Title:         payload.Title,
		DueDate:       payload.DueDate,
		AssignedToID:  payload.AssignedToID,
		AssignedEmail: payload.AssignedEmail,
		AssignedName:  payload.AssignedName,
		CreatedByName: payload.CreatedByName,
	}); err != nil {
		slog.ErrorContext(ctx, "failed to consume task assigned", "msg_body", string(body), "error", err)
		return err
	}

	return nil
}

func (h *MQHandler) UserRegisteredNotification(ctx context.Context, msg messaging.Message) error {
	ctx = h.ensureCorrelationID(ctx, msg.Headers())

	ctx, span := h.ins.Tracer("notification.inbound.mq").Start(ctx, "UserRegisteredNotification")
	defer span.End()

	body := msg.Body()
	slog.InfoContext(ctx, "consume: user registered notification", "msg_body", string(body))

	var payload event.UserRegisteredMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		slog.ErrorContext(ctx, "failed to parse message body of user registered notification", "msg_body", string(body), "error", err)
		return nil
	}

	if err := h.uc.ConsumeUserRegistered(ctx, usecase.ConsumeUserRegisteredInput{
		UserID:   payload.UserID,
		Email:    payload.Email,
		FullName: payload.FullName,
		Role:     payload.Role,
	}); err != nil {
		slog.ErrorContext(ctx, "failed to consume user registered", "msg_body", string(body), "error", err)
		return err
	}

	return nil
}
