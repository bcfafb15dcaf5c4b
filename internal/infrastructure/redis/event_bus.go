package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"jobtrack/internal/core/ports"
	"jobtrack/internal/domain"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Ensure RedisEventBus implements ports.EventBus at compile time.
var _ ports.EventBus = (*RedisEventBus)(nil)

type RedisEventBus struct {
	client  *redis.Client
	channel string
	log     *logrus.Entry
}

// NewRedisEventBus publishes on the "events" channel under prefix.
func NewRedisEventBus(client *redis.Client, prefix string, log *logrus.Entry) *RedisEventBus {
	return &RedisEventBus{
		client:  client,
		channel: prefix + "events",
		log:     log,
	}
}

// Publish broadcasts the event to the network
func (b *RedisEventBus) Publish(ctx context.Context, event domain.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return b.client.Publish(ctx, b.channel, payload).Err()
}

// Subscribe opens a continuous stream. The subscription is confirmed before
// it returns, so events published afterwards are not missed.
func (b *RedisEventBus) Subscribe(ctx context.Context) (<-chan domain.Event, error) {
	pubsub := b.client.Subscribe(ctx, b.channel)
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, fmt.Errorf("jobtrack/redis: subscribe: %w", err)
	}

	msgChan := make(chan domain.Event)

	// A blocked ReceiveMessage does not watch ctx; closing the subscription
	// is what unblocks it.
	go func() {
		<-ctx.Done()
		pubsub.Close()
	}()

	// Start a background goroutine to listen to Redis and forward to our Go channel
	go func() {
		defer close(msgChan)
		for {
			msg, err := pubsub.ReceiveMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				b.log.WithError(err).Warn("receive failed, retrying")
				select {
				case <-ctx.Done():
					return
				case <-time.After(time.Second):
				}
				continue
			}

			var event domain.Event
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				b.log.WithError(err).Warn("dropping malformed event")
				continue
			}
			select {
			case msgChan <- event:
			case <-ctx.Done():
				return
			}
		}
	}()

	return msgChan, nil
}
