package events

import (
	"context"
	"encoding/json"
	"time"
)

// DefaultChannel is the broker channel account events are published to.
const DefaultChannel = "account-events"

// Event types emitted by the account service.
const (
	EventUserCreated = "user.created"
	EventUserLogin   = "user.login"
)

// Event is a broker-agnostic account event payload.
type Event struct {
	Type       string    `json:"type"`
	Username   string    `json:"username"`
	Email      string    `json:"email,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Backend defines the broker-agnostic publish operations used by the app.
type Backend interface {
	Publish(ctx context.Context, channel string, data []byte, attrs map[string]string) (string, error)
	Close() error
}

// Publisher wraps a backend with a stable API. A nil Publisher or a Publisher
// without a backend silently drops events.
type Publisher struct {
	backend Backend
	channel string
}

// NewPublisher constructs a Publisher for the provided backend.
func NewPublisher(backend Backend, channel string) *Publisher {
	if channel == "" {
		channel = DefaultChannel
	}
	return &Publisher{backend: backend, channel: channel}
}

// Publish sends an event to the configured channel.
func (p *Publisher) Publish(ctx context.Context, event Event) error {
	if p == nil || p.backend == nil {
		return nil
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	_, err = p.backend.Publish(ctx, p.channel, data, map[string]string{"type": event.Type})
	return err
}

// Close closes the underlying backend.
func (p *Publisher) Close() error {
	if p == nil || p.backend == nil {
		return nil
	}
	return p.backend.Close()
}
