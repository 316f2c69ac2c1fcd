package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/elitetable/elitetable/app/models"
	"github.com/elitetable/elitetable/app/repositories"
	"github.com/elitetable/elitetable/pkg/event"
	"github.com/elitetable/elitetable/pkg/logger"
)

// Event names published on the bus.
const (
	EventActivity     = "activity.recorded"
	EventNotify       = "notification.requested"
	EventNotification = "notification.created"
)

// Activity is written to the audit log by the EventActivity listener.
type Activity struct {
	UserID      string
	Type        models.ActivityType
	Description string
	EntityType  string
	EntityID    string
}

// Notice asks the EventNotify listener to store and push a notification.
// An empty UserID broadcasts.
type Notice struct {
	UserID  string
	Title   string
	Message string
	Type    string
	Link    string
}

// Pusher delivers a payload to connected clients.
type Pusher interface {
	SendTo(userID string, data []byte)
	Broadcast(data []byte)
}

// RegisterListeners wires the audit log, notification storage and push
// delivery onto bus. push may be nil.
func RegisterListeners(bus *event.Bus, store repositories.Storage, push Pusher) {
	bus.Listen(EventActivity, func(ctx context.Context, payload any) error {
		a, ok := payload.(Activity)
		if !ok {
			return fmt.Errorf("services: unexpected %s payload %T", EventActivity, payload)
		}
		return store.CreateActivityLog(ctx, &models.ActivityLog{
			UserID:       strPtr(a.UserID),
			ActivityType: a.Type,
			Description:  a.Description,
			EntityType:   strPtr(a.EntityType),
			EntityID:     strPtr(a.EntityID),
		})
	})

	bus.Listen(EventNotify, func(ctx context.Context, payload any) error {
		n, ok := payload.(Notice)
		if !ok {
			return fmt.Errorf("services: unexpected %s payload %T", EventNotify, payload)
		}
		typ := n.Type
		if typ == "" {
			typ = "info"
		}
		row := &models.Notification{
			UserID:  strPtr(n.UserID),
			Title:   n.Title,
			Message: n.Message,
			Type:    typ,
			Link:    strPtr(n.Link),
		}
		if err := store.CreateNotification(ctx, row); err != nil {
			return err
		}
		deliver(ctx, push, row)
		return nil
	})

	bus.Listen(EventNotification, func(ctx context.Context, payload any) error {
		if n, ok := payload.(*models.Notification); ok {
			deliver(ctx, push, n)
		}
		return nil
	})
}

func deliver(ctx context.Context, push Pusher, n *models.Notification) {
	if push == nil {
		return
	}
	data, err := json.Marshal(map[string]any{"type": "notification", "notification": n})
	if err != nil {
		logger.WithCtx(ctx).Warn("services: encode notification", "error", err)
		return
	}
	if n.UserID == nil {
		push.Broadcast(data)
		return
	}
	push.SendTo(*n.UserID, data)
}

// record publishes an audit entry without waiting for it.
func record(ctx context.Context, bus *event.Bus, a Activity) {
	if bus != nil {
		bus.FireAsync(ctx, EventActivity, a)
	}
}

func notify(ctx context.Context, bus *event.Bus, n Notice) {
	if bus != nil {
		bus.FireAsync(ctx, EventNotify, n)
	}
}
