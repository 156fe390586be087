// Package realtime fans events out to connected clients through a broker.
// Publishing is best-effort: callers log failures and carry on.
package realtime

import (
	"context"
	"encoding/json"
	"fmt"
)

// Publisher pushes a JSON payload to the subscribers of a channel.
type Publisher interface {
	Publish(ctx context.Context, channel, event string, payload any) error
	Close() error
}

// Envelope is the wire shape of every published event.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

func encode(event string, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("realtime: encode payload: %w", err)
	}
	return json.Marshal(Envelope{Event: event, Data: data})
}

// NopPublisher discards every event. It is used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, string, any) error { return nil }
func (NopPublisher) Close() error                                      { return nil }
