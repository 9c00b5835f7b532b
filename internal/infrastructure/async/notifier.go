package async

import (
	"context"

	"teamaccess/internal/domain"
)

// EventNotifier delivers notifications as "notification" events on the bus.
type EventNotifier struct {
	events domain.EventBus
}

func NewEventNotifier(events domain.EventBus) *EventNotifier {
	return &EventNotifier{events: events}
}

func (n *EventNotifier) Notify(ctx context.Context, note domain.Notification) {
	n.events.Publish(ctx, domain.Event{
		Type: "notification",
		Payload: map[string]any{
			"severity": string(note.Severity),
			"text":     note.Text,
			"team_id":  note.TeamID,
			"actor_id": note.ActorID,
		},
	})
}
