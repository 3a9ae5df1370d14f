package ws

import (
	"context"
	"math"
	"time"

	"github.com/docpulse/docpulse/internal/bus"
	"github.com/docpulse/docpulse/internal/domain"
	"github.com/docpulse/docpulse/internal/observability"
)

const (
	initialResubscribeBackoff = time.Second
	maxResubscribeBackoff     = 30 * time.Second
)

// Relay bridges the bus to the connection registry. It subscribes to all
// event topics, renders each event's wire payload, and broadcasts it. A
// dropped subscription is resubscribed with capped exponential backoff;
// events published during the gap are lost, by contract.
type Relay struct {
	bus      *bus.Bus
	registry *Registry
	logger   *observability.Logger
}

// NewRelay creates a relay between the bus and the registry.
func NewRelay(b *bus.Bus, registry *Registry, logger *observability.Logger) *Relay {
	return &Relay{bus: b, registry: registry, logger: logger}
}

// Run consumes bus messages until the context is cancelled.
func (r *Relay) Run(ctx context.Context) {
	attempt := 0
	for ctx.Err() == nil {
		sub, err := r.bus.Subscribe(ctx, domain.Topics()...)
		if err != nil {
			backoff := resubscribeBackoff(attempt)
			attempt++
			r.logger.Warn().Err(err).Dur("backoff", backoff).Msg("bus subscribe failed, retrying")
			select {
			case <-ctx.Done():
				return
			case <-time.After(backoff):
			}
			continue
		}

		attempt = 0
		r.consume(ctx, sub)
		sub.Close()
	}
}

// consume drains one subscription until it ends or the context is
// cancelled.
func (r *Relay) consume(ctx context.Context, sub *bus.Subscription) {
	events := sub.Events()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-events:
			if !ok {
				r.logger.Warn().Msg("bus subscription lost, resubscribing")
				return
			}

			ev, err := bus.Decode([]byte(msg.Payload))
			if err != nil {
				r.logger.Warn().Err(err).Str("channel", msg.Channel).Msg("dropping undecodable bus message")
				continue
			}

			payload := ev.WirePayload()
			r.logger.Debug().
				Str("kind", ev.Kind()).
				Int("connections", r.registry.Count()).
				Msg("broadcasting event")
			r.registry.Broadcast([]byte(payload))
		}
	}
}

// resubscribeBackoff returns the wait before resubscribe attempt n, capped.
func resubscribeBackoff(attempt int) time.Duration {
	backoff := float64(initialResubscribeBackoff) * math.Pow(2, float64(attempt))
	if backoff > float64(maxResubscribeBackoff) {
		backoff = float64(maxResubscribeBackoff)
	}
	return time.Duration(backoff)
}
