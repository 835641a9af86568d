package db

import (
	"context"

	"github.com/taskgrid/taskgrid/internal/notification/entity"
	"github.com/taskgrid/taskgrid/internal/pkg/valueobject"
)

func (s *DB) CreateNotification(ctx context.Context, data entity.CreateNotification) (err error) {
	ctx, span := s.startSpan(ctx, "CreateNotification")
	defer func() { s.endSpan(span, err) }()

	query := `
		INSERT INTO notifications (id, user_id, kind, title, body, data)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err = s.conn.Exec(ctx, query, data.ID, data.UserID, data.Kind.String(), data.Title, data.Body, data.Data)
	return s.mapError(err)
}

func (s *DB) ListNotifications(ctx context.Context, userID int64, status entity.NotificationStatus, limit, offset int32) (_ []entity.NotificationItem, err error) {
	ctx, span := s.startSpan(ctx, "ListNotifications")
	defer func() { s.endSpan(span, err) }()

	query := `
		SELECT id, kind, title, body, data, read_at, created_at
		FROM notifications
		WHERE user_id = $1 AND deleted_at IS NULL`

	switch status {
	case entity.NotificationStatusUnread:
		query += " AND read_at IS NULL"
	case entity.NotificationStatusRead:
		query += " AND read_at IS NOT NULL"
	}

	query += " ORDER BY created_at DESC LIMIT $2 OFFSET $3"

	rows, err := s.conn.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, s.mapError(err)
	}
	defer rows.Close()

	items := make([]entity.NotificationItem, 0, limit)
	for rows.Next() {
		var (
			item entity.NotificationItem
			kind string
			data valueobject.JSONMap
		)
		if err = rows.Scan(&item.ID, &kind, &item.Title, &item.Body, &data, &item.ReadAt, &item.CreatedAt); err != nil {
			return nil, s.mapError(err)
		}
		item.Kind = entity.KindFromString(kind)
		item.Data = data
		items = append(items, item)
	}
	if err = rows.Err(); err != nil {
		return nil, s.mapError(err)
	}

	return items, nil
}

func (s *DB) CountUnreadNotifications(ctx context.Context, userID int64) (_ int64, err error) {
	ctx, span := s.startSpan(ctx, "CountUnreadNotifications")
	defer func() { s.endSpan(span, err) }()

	query := `
		SELECT COUNT(*)
		FROM notifications
		WHERE user_id = $1 AND read_at IS NULL AND deleted_at IS NULL`

	var count int64
	if err = s.conn.QueryRow(ctx, query, userID).Scan(&count); err != nil {
		return 0, s.mapError(err)
	}

	return count, nil
}

func (s *DB) MarkNotificationRead(ctx context.Context, userID, notificationID int64) (_ bool, err error) {
	ctx, span := s.startSpan(ctx, "MarkNotificationRead")
	defer func() { s.endSpan(span, err) }()

	query := `
		UPDATE notifications
		SET read_at = NOW()
		WHERE id = $1 AND user_id = $2 AND read_at IS NULL AND deleted_at IS NULL`

	tag, err := s.conn.Exec(ctx, query, notificationID, userID)
	if err != nil {
		return false, s.mapError(err)
	}

	return tag.RowsAffected() > 0, nil
}

func (s *DB) MarkNotificationsReadAll(ctx context.Context, userID int64) (_ int64, err error) {
	ctx, span := s.startSpan(ctx, "MarkNotificationsReadAll")
	defer func() { s.endSpan(span, err) }()

	query := `
		UPDATE notifications
		SET read_at = NOW()
		WHERE user_id = $1 AND read_at IS NULL AND deleted_at IS NULL`

	tag, err := s.conn.Exec(ctx, query, userID)
	if err != nil {
		return 0, s.mapError(err)
	}

	return tag.RowsAffected(), nil
}

func (s *DB) SoftDeleteNotification(ctx context.Context, userID, notificationID int64) (_ bool, err error) {
	ctx, span := s.startSpan(ctx, "SoftDeleteNotification")
	defer func() { s.endSpan(span, err) }()

	query := `
		UPDATE notifications
		SET deleted_at = NOW()
		WHERE id = $1 AND user_id = $2 AND deleted_at IS NULL`

	tag, err := s.conn.Exec(ctx, query, notificationID, userID)
	if err != nil {
		return false, s.mapError(err)
	}

	return tag.RowsAffected() > 0, nil
}
