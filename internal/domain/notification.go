package domain

import "context"

type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
)

// Notification is a transient, user-facing message. It is never part of team state.
type Notification struct {
	Severity Severity
	Text     string
	TeamID   int64
	ActorID  int64
}

// Notifier is fire-and-forget: callers never wait on or inspect delivery.
type Notifier interface {
	Notify(ctx context.Context, n Notification)
}
