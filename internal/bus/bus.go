// Package bus implements the Redis pub/sub event bus that decouples the
// analysis process from the delivery process.
package bus

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/docpulse/docpulse/internal/config"
	"github.com/docpulse/docpulse/internal/domain"
	"github.com/docpulse/docpulse/internal/observability"
)

// Bus publishes progress events to Redis topics and hands out
// subscriptions. It owns no session state; it is a pure transport.
type Bus struct {
	client *redis.Client
	logger *observability.Logger
}

// New connects to Redis and verifies the connection. An unreachable bus at
// construction time is fatal to startup, not degraded.
func New(cfg config.RedisConfig, logger *observability.Logger) (*Bus, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, domain.BusError("redis ping failed", err)
	}

	logger.Info().Str("addr", cfg.Addr).Int("db", cfg.DB).Msg("connected to Redis bus")

	return &Bus{client: client, logger: logger}, nil
}

// NewWithClient wraps an existing Redis client. Used in tests.
func NewWithClient(client *redis.Client, logger *observability.Logger) *Bus {
	return &Bus{client: client, logger: logger}
}

// Publish sends an event to its topic and returns the number of subscribers
// that received it.
func (b *Bus) Publish(ctx context.Context, ev domain.Event) (int64, error) {
	data, err := Encode(ev)
	if err != nil {
		return 0, err
	}

	receivers, err := b.client.Publish(ctx, ev.Topic(), data).Result()
	if err != nil {
		return 0, domain.BusError("publish failed", err)
	}

	b.logger.Debug().
		Str("topic", ev.Topic()).
		Str("kind", ev.Kind()).
		Int64("receivers", receivers).
		Msg("published event")

	return receivers, nil
}

// Subscribe opens a subscription on the given topics. The subscription
// delivers messages until closed; it does not replay history.
func (b *Bus) Subscribe(ctx context.Context, topics ...string) (*Subscription, error) {
	ps := b.client.Subscribe(ctx, topics...)

	// Force the SUBSCRIBE round trip so connection failures surface here
	// instead of as a silent empty channel.
	if _, err := ps.Receive(ctx); err != nil {
		ps.Close()
		return nil, domain.BusError("subscribe failed", err)
	}

	b.logger.Info().Strs("topics", topics).Msg("subscribed to bus topics")
	return &Subscription{ps: ps}, nil
}

// Close releases the underlying Redis connection.
func (b *Bus) Close() error {
	return b.client.Close()
}

// Subscription is a live, non-restartable stream of bus messages.
type Subscription struct {
	ps *redis.PubSub
}

// Events returns the message channel. The channel closes when the
// subscription is closed or the connection is lost.
func (s *Subscription) Events() <-chan *redis.Message {
	return s.ps.Channel()
}

// Close terminates the subscription.
func (s *Subscription) Close() error {
	return s.ps.Close()
}
