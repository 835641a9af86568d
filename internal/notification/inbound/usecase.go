package inbound

import (
	"context"

	"github.com/taskgrid/taskgrid/internal/notification/entity"
	"github.com/taskgrid/taskgrid/internal/notification/usecase"
)

type ucConsumer interface {
	ConsumeTaskAssigned(ctx context.Context, in usecase.ConsumeTaskAssignedInput) error
	ConsumeUserRegistered(ctx context.Context, in usecase.ConsumeUserRegisteredInput) error
}

type uc interface {
	ucConsumer

	ListInbox(ctx context.Context, in usecase.ListInboxInput) ([]entity.NotificationItem, error)
	UnreadCount(ctx context.Context) (int64, error)
	MarkInboxRead(ctx context.Context, in usecase.MarkInboxReadInput) error
	MarkAllInboxRead(ctx context.Context) error
	DeleteInbox(ctx context.Context, in usecase.DeleteInboxInput) error
}
