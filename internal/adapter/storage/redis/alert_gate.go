package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// AlertGate implements ports.AlertGate with SET NX: the first caller within a
// cool-down wins, everyone else is suppressed until the key expires.
type AlertGate struct {
	client goredis.UniversalClient
	prefix string
}

func NewAlertGate(client goredis.UniversalClient) *AlertGate {
	return &AlertGate{client: client, prefix: "alert:cooldown:"}
}

func (g *AlertGate) Allow(ctx context.Context, metric string, cooldown time.Duration) (bool, error) {
	if cooldown <= 0 {
		return true, nil
	}
	ok, err := g.client.SetNX(ctx, g.prefix+metric, time.Now().UTC().Format(time.RFC3339), cooldown).Result()
	if err != nil {
		return false, fmt.Errorf("redis alert gate: %w", err)
	}
	return ok, nil
}
