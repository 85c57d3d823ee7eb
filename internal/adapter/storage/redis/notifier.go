package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// ChannelPrefix is prepended to a target to form its pub/sub channel.
const ChannelPrefix = "notifications:"

// Envelope is the JSON message published for every event.
type Envelope struct {
	Event   string          `json:"event"`
	Target  string          `json:"target"`
	Payload json.RawMessage `json:"payload"`
	SentAt  time.Time       `json:"sent_at"`
}

// Notifier implements ports.Notifier over Redis pub/sub. Any number of
// gateway processes can subscribe to notifications:<target> and fan events
// out to connected sockets.
type Notifier struct {
	client goredis.UniversalClient
}

func NewNotifier(client goredis.UniversalClient) *Notifier {
	return &Notifier{client: client}
}

// Channel returns the pub/sub channel for target.
func Channel(target string) string {
	return ChannelPrefix + target
}

func (n *Notifier) Emit(ctx context.Context, target, event string, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", event, err)
	}
	msg, err := json.Marshal(Envelope{
		Event:   event,
		Target:  target,
		Payload: raw,
		SentAt:  time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("marshal envelope: %w", err)
	}
	if err := n.client.Publish(ctx, Channel(target), msg).Err(); err != nil {
		return fmt.Errorf("publish %s to %s: %w", event, target, err)
	}
	return nil
}

// Close releases the underlying client. It is safe to call once at shutdown.
func (n *Notifier) Close() error {
	return n.client.Close()
}
