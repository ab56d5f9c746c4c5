package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/veridoc/docguard/internal/domain/providers"
	redisclient "github.com/veridoc/docguard/internal/infrastructure/clients/redis"
)

// RedisAlertPublisher implements the AlertPublisher interface over Redis
// Pub/Sub. Operators subscribe to the alert channel out of band; delivery is
// fire-and-forget.
type RedisAlertPublisher struct {
	client  *redisclient.Client
	channel string
}

// NewRedisAlertPublisher creates a publisher bound to one alert channel.
func NewRedisAlertPublisher(client *redisclient.Client, channel string) providers.AlertPublisher {
	return &RedisAlertPublisher{
		client:  client,
		channel: channel,
	}
}

// Publish sends an alert to the operator channel.
func (p *RedisAlertPublisher) Publish(ctx context.Context, alert providers.OperatorAlert) error {
	data, err := json.Marshal(alert)
	if err != nil {
		return fmt.Errorf("failed to marshal alert: %w", err)
	}

	if err := p.client.Client().Publish(ctx, p.channel, data).Err(); err != nil {
		return fmt.Errorf("failed to publish alert: %w", err)
	}

	log.Debug().
		Str("channel", p.channel).
		Str("source", alert.Source).
		Str("severity", alert.Severity).
		Msg("published operator alert")
	return nil
}
