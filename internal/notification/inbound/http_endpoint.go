package inbound

import (
	"github.com/taskgrid/taskgrid/internal/notification/usecase"
	"github.com/taskgrid/taskgrid/internal/pkg/router"
)

type HTTPEndpoint struct {
	uc uc
}

// ListInbox returns the caller's notifications.
// @Summary List inbox notifications
// @Description Returns the authenticated user's notifications, optionally filtered by read status.
// @Tags Notification
// @Security BearerAuth
// @Produce json
// @Param status query string false "all, unread or read"
// @Param limit query int false "Page size"
// @Param offset query int false "Page offset"
// @Success 200 {object} router.successResponse{data=NotificationsResponse} "Inbox list"
// @Failure 401 {object} router.errorResponse "Unauthorized"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/notification/inbox [get]
func (h *HTTPEndpoint) ListInbox(r *router.Request) (any, error) {
	limit, err := r.GetQueryInt32("limit")
	if err != nil {
		return nil, err
	}

	offset, err := r.GetQueryInt32("offset")
	if err != nil {
		return nil, err
	}

	items, err := h.uc.ListInbox(r.Context(), usecase.ListInboxInput{
		Status: r.GetQuery("status"),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		return nil, err
	}

	resp := make([]NotificationResponse, 0, len(items))
	for _, item := range items {
		resp = append(resp, NotificationResponse{
			ID:        item.ID,
			Kind:      item.Kind.String(),
			Title:     item.Title,
			Body:      item.Body,
			Data:      item.Data,
			ReadAt:    item.ReadAt,
			CreatedAt: item.CreatedAt,
		})
	}

	return NotificationsResponse{Notifications: resp}, nil
}

// UnreadCount returns how many notifications are still unread.
func (h *HTTPEndpoint) UnreadCount(r *router.Request) (any, error) {
	count, err := h.uc.UnreadCount(r.Context())
	if err != nil {
		return nil, err
	}

	return UnreadCountResponse{Count: count}, nil
}

// MarkInboxRead marks one notification as read.
func (h *HTTPEndpoint) MarkInboxRead(r *router.Request) (any, error) {
	id, err := r.GetParamInt64("id")
	if err != nil {
		return nil, err
	}

	return nil, h.uc.MarkInboxRead(r.Context(), usecase.MarkInboxReadInput{ID: id})
}

// MarkAllInboxRead marks every unread notification as read.
func (h *HTTPEndpoint) MarkAllInboxRead(r *router.Request) (any, error) {
	return nil, h.uc.MarkAllInboxRead(r.Context())
}

// DeleteInbox removes a notification from the inbox.
func (h *HTTPEndpoint) DeleteInbox(r *router.Request) (any, error) {
	id, err := r.GetParamInt64("id")
	if err != nil {
		return nil, err
	}

	return nil, h.uc.DeleteInbox(r.Context(), usecase.DeleteInboxInput{ID: id})
}
