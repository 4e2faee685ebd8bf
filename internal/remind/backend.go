package remind

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// DeliveredNotification is a notification the backend already handed to the
// user. Delivered entries whose reminder no longer exists are orphans and get
// purged by the cleanup pass.
type DeliveredNotification struct {
	ID           string    `json:"id"`
	ReminderUUID uuid.UUID `json:"reminder_uuid"`
	DeliveredAt  time.Time `json:"delivered_at"`
}

// Backend is the external notification scheduler. Implementations must be
// safe for concurrent use; calls may block, so everything takes a context.
type Backend interface {
	// ClearAllPending removes every pending schedule entry. A rebuild must
	// not start submitting until the clear has completed.
	ClearAllPending(ctx context.Context) error
	Submit(ctx context.Context, req ScheduleRequest) error
	ListPending(ctx context.Context) ([]ScheduleRequest, error)
	ListDelivered(ctx context.Context) ([]DeliveredNotification, error)
	RemoveDelivered(ctx context.Context, ids []string) error
}
