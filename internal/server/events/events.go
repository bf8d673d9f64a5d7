// Package events publishes user lifecycle notifications after a successful
// write. Events never carry credentials.
package events

import (
	"context"
	"time"
)

type Type string

const (
	TypeUserRegistered      Type = "user.registered"
	TypeUserPasswordChanged Type = "user.password_changed"
)

type Event struct {
	Type       Type      `json:"type"`
	UserID     string    `json:"userId"`
	Email      string    `json:"email"`
	OccurredAt time.Time `json:"occurredAt"`
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// Nop drops every event. It is used when no broker is configured.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
func (Nop) Close() error                         { return nil }
