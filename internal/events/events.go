package events

import (
	"context"
	"time"

	"github.com/fjod/go_storefront/internal/cache"
)

const EventTypeCatalogChanged = "catalog.changed"

type Entity string

const (
	EntityCategory Entity = "category"
	EntityProduct  Entity = "product"
	EntitySlide    Entity = "slide"
)

type Action string

const (
	ActionCreated Action = "created"
	ActionUpdated Action = "updated"
	ActionDeleted Action = "deleted"
)

// CatalogChanged is published after every successful catalog write.
type CatalogChanged struct {
	Entity     Entity    `json:"entity"`
	EntityID   string    `json:"entity_id"`
	Action     Action    `json:"action"`
	OccurredAt time.Time `json:"occurred_at"`
}

type Publisher interface {
	Publish(ctx context.Context, event CatalogChanged) error
}

// NopPublisher drops events; used when no brokers are configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, CatalogChanged) error { return nil }

// CachePrefixes returns the cache prefixes made stale by a change to entity.
// Product listings embed category names, so category changes reach them too.
func CachePrefixes(entity Entity) []string {
	switch entity {
	case EntityCategory:
		return []string{cache.PrefixCategories, cache.PrefixProducts}
	case EntityProduct:
		return []string{cache.PrefixProducts}
	case EntitySlide:
		return []string{cache.PrefixSlides}
	default:
		return []string{cache.PrefixCategories, cache.PrefixProducts, cache.PrefixSlides}
	}
}
