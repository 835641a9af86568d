package mq

import (
	"context"
	"encoding/json"

	"github.com/taskgrid/taskgrid/internal/pkg/instrument"
	"github.com/taskgrid/taskgrid/internal/pkg/messaging"
	"github.com/taskgrid/taskgrid/internal/shared/event"
	"github.com/taskgrid/taskgrid/internal/task/usecase"
	"go.opentelemetry.io/otel/codes"
)

const keyOfCorrelationID string = "cID"

type Messaging struct {
	client messaging.Messaging
	ins    instrument.Instrumentation
}

func NewMessaging(client messaging.Messaging, ins instrument.Instrumentation) *Messaging {
	return &Messaging{client: client, ins: ins}
}

func (m *Messaging) PublishTaskAssigned(ctx context.Context, msg usecase.TaskAssignedEvent) error {
	ctx, span := m.ins.Tracer("task.outbound.mq").Start(ctx, "PublishTaskAssigned")
	defer span.End()

	body, err := json.Marshal(event.TaskAssignedMessage{
		TaskID:        msg.TaskID,
		Title:         msg.Title,
		DueDate:       msg.DueDate,
		AssignedToID:  msg.AssignedToID,
		AssignedEmail: msg.AssignedEmail,
		AssignedName:  msg.AssignedName,
		CreatedByName: msg.CreatedByName,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	cID := instrument.GetCorrelationID(ctx)
	if _, err := m.client.Publish(ctx, event.TaskAssignedDestination, messaging.OutgoingMessage{
		Body:    body,
		Headers: []messaging.Header{{Key: keyOfCorrelationID, Value: []byte(cID)}},
	}); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	return nil
}
