// Package events publishes duel lifecycle changes for overlays and other listeners.
package events

import (
	"context"
	"time"
)

type Kind string

const (
	DuelChallenged Kind = "duel.challenged"
	DuelAccepted   Kind = "duel.accepted"
	DuelCompleted  Kind = "duel.completed"
)

// Event is the JSON body of every published message. Kind doubles as the routing key.
type Event struct {
	Kind       Kind      `json:"kind"`
	DuelID     string    `json:"duel_id"`
	Challenger string    `json:"challenger"`
	Challenged string    `json:"challenged"`
	Points     int64     `json:"points"`
	Status     string    `json:"status"`
	Winner     string    `json:"winner,omitempty"`
	Category   string    `json:"category,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// Nop drops every event.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
func (Nop) Close() error                         { return nil }
