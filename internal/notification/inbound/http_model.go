package inbound

import (
	"time"

	"github.com/taskgrid/taskgrid/internal/pkg/valueobject"
)

type NotificationResponse struct {
	ID        int64               `json:"id,string"`
	Kind      string              `json:"kind"`
	Title     string              `json:"title"`
	Body      string              `json:"body"`
	Data      valueobject.JSONMap `json:"data" swaggertype:"object"`
	ReadAt    *time.Time          `json:"read_at,omitempty"`
	CreatedAt time.Time           `json:"created_at"`
}

type NotificationsResponse struct {
	Notifications []NotificationResponse `json:"notifications"`
}

type UnreadCountResponse struct {
	Count int64 `json:"count"`
}
