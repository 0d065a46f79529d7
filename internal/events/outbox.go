package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/fjod/go_storefront/internal/repository"
	"github.com/rs/zerolog"
)

const outboxBatchSize = 100

// OutboxPublisher records events in the outbox instead of sending them, so
// a broker outage does not lose them. OutboxRelay forwards them later.
type OutboxPublisher struct {
	store repository.OutboxRepository
}

func NewOutboxPublisher(store repository.OutboxRepository) *OutboxPublisher {
	return &OutboxPublisher{store: store}
}

func (p *OutboxPublisher) Publish(ctx context.Context, event CatalogChanged) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	return p.store.AddEvent(ctx, &repository.OutboxEvent{
		AggregateID: string(event.Entity) + ":" + event.EntityID,
		EventType:   EventTypeCatalogChanged,
		Payload:     payload,
	})
}

// OutboxRelay polls the outbox and hands pending events to target, oldest
// first. An event is marked processed only after target accepted it.
type OutboxRelay struct {
	store  repository.OutboxRepository
	target Publisher
	tick   time.Duration
	log    zerolog.Logger
}

func NewOutboxRelay(store repository.OutboxRepository, target Publisher, tick time.Duration, log zerolog.Logger) *OutboxRelay {
	if tick <= 0 {
		tick = time.Second
	}
	return &OutboxRelay{
		store:  store,
		target: target,
		tick:   tick,
		log:    log.With().Str("component", "outbox").Logger(),
	}
}

func (r *OutboxRelay) Run(ctx context.Context) {
	ticker := time.NewTicker(r.tick)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if _, err := r.ProcessPending(ctx); err != nil {
				r.log.Error().Err(err).Msg("failed to fetch outbox events")
			}
		case <-ctx.Done():
			return
		}
	}
}

// ProcessPending relays one batch and returns how many events were sent.
// Events that fail to publish stay pending for the next tick.
func (r *OutboxRelay) ProcessPending(ctx context.Context) (int, error) {
	pending, err := r.store.UnprocessedEvents(ctx, outboxBatchSize)
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, e := range pending {
		var event CatalogChanged
		if err := json.Unmarshal(e.Payload, &event); err != nil {
			r.log.Error().Err(err).Str("id", e.ID.Hex()).Msg("dropping malformed outbox event")
			r.markProcessed(ctx, e)
			continue
		}

		if err := r.target.Publish(ctx, event); err != nil {
			r.log.Warn().Err(err).Str("id", e.ID.Hex()).Str("aggregate", e.AggregateID).Msg("failed to publish outbox event")
			// later events wait for this one
			break
		}
		r.markProcessed(ctx, e)
		sent++
	}
	return sent, nil
}

func (r *OutboxRelay) markProcessed(ctx context.Context, e repository.OutboxEvent) {
	if err := r.store.MarkEventProcessed(ctx, e.ID); err != nil {
		r.log.Error().Err(err).Str("id", e.ID.Hex()).Msg("failed to mark outbox event as processed")
	}
}
