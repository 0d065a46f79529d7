package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
)

const consumerGroupPrefix = "storefront-cache-"

// CacheInvalidator drops cached entries under the given key prefixes.
type CacheInvalidator interface {
	Invalidate(ctx context.Context, prefixes ...string) error
}

// ConsumerGroup names the invalidation group of one instance. The group stays
// the same across restarts as long as the instance id or hostname does.
func ConsumerGroup(instanceID string) string {
	if id := strings.TrimSpace(instanceID); id != "" {
		return consumerGroupPrefix + id
	}
	if host, err := os.Hostname(); err == nil && host != "" {
		return consumerGroupPrefix + host
	}
	return consumerGroupPrefix + uuid.NewString()
}

// Invalidator consumes catalog events and drops the affected cache entries
// of this instance. Every instance joins its own consumer group so each one
// sees every event.
type Invalidator struct {
	cache  CacheInvalidator
	reader *kafka.Reader
	log    zerolog.Logger
}

func NewInvalidator(c CacheInvalidator, log zerolog.Logger, group, topic string, brokers ...string) *Invalidator {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     brokers,
		Topic:       topic,
		GroupID:     group,
		StartOffset: kafka.LastOffset,
		MaxBytes:    10e6, // 10MB
	})
	return &Invalidator{cache: c, reader: reader, log: log}
}

func (i *Invalidator) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		m, err := i.reader.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			i.log.Error().Err(err).Msg("error reading catalog event")
			continue
		}
		if err := i.Handle(ctx, m.Value); err != nil {
			i.log.Warn().Err(err).Str("key", string(m.Key)).Msg("catalog event not applied")
		}
	}
}

// Handle applies a single encoded CatalogChanged event.
func (i *Invalidator) Handle(ctx context.Context, payload []byte) error {
	var event CatalogChanged
	if err := json.Unmarshal(payload, &event); err != nil {
		return fmt.Errorf("error parsing event: %w", err)
	}
	if event.Entity == "" {
		return errors.New("event without entity")
	}

	if err := i.cache.Invalidate(ctx, CachePrefixes(event.Entity)...); err != nil {
		return fmt.Errorf("invalidate cache for %s: %w", event.Entity, err)
	}
	i.log.Debug().
		Str("entity", string(event.Entity)).
		Str("entity_id", event.EntityID).
		Str("action", string(event.Action)).
		Msg("cache invalidated")
	return nil
}

func (i *Invalidator) Close() {
	if err := i.reader.Close(); err != nil {
		i.log.Error().Err(err).Msg("error closing kafka reader")
	}
}
