package entity

import (
	"time"

	"github.com/taskgrid/taskgrid/internal/pkg/valueobject"
)

type CreateNotification struct {
	ID     int64
	UserID int64
	Kind   Kind
	Title  string
	Body   string
	Data   valueobject.JSONMap
}

type NotificationItem struct {
	ID        int64
	Kind      Kind
	Title     string
	Body      string
	Data      valueobject.JSONMap
	ReadAt    *time.Time
	CreatedAt time.Time
}
