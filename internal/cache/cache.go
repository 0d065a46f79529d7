package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/fjod/go_storefront/internal/domain"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CatalogCache stores JSON-encoded catalog reads under string keys.
type CatalogCache interface {
	Get(ctx context.Context, key string, dest any) error
	Set(ctx context.Context, key string, value any) error
	// Invalidate removes every key starting with one of prefixes.
	Invalidate(ctx context.Context, prefixes ...string) error
}

var ErrCacheMiss = errors.New("cache miss")

const (
	PrefixCategories = "catalog:categories"
	PrefixProducts   = "catalog:products:"
	PrefixSlides     = "catalog:slides"
)

func CategoriesKey() string {
	return PrefixCategories
}

func SlidesKey() string {
	return PrefixSlides
}

func ProductKey(id primitive.ObjectID) string {
	return PrefixProducts + "id:" + id.Hex()
}

func ProductsBelowPriceKey(price float64) string {
	return PrefixProducts + "below:" + strconv.FormatFloat(price, 'f', -1, 64)
}

// ProductsKey derives a stable key for a filtered listing. Titles are
// matched case-insensitively, so they are lowercased before hashing.
func ProductsKey(f domain.ProductFilter) string {
	if f.IsEmpty() {
		return PrefixProducts + "all"
	}
	parts := []string{
		strings.ToLower(f.Title),
		"",
		formatBound(f.MinPrice),
		formatBound(f.MaxPrice),
	}
	if !f.CategoryID.IsZero() {
		parts[1] = f.CategoryID.Hex()
	}
	sum := xxhash.Sum64String(strings.Join(parts, "\x00"))
	return fmt.Sprintf("%ssearch:%016x", PrefixProducts, sum)
}

func formatBound(v *float64) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

// NopCache is used when no Redis is configured; every read misses.
type NopCache struct{}

func (NopCache) Get(context.Context, string, any) error { return ErrCacheMiss }

func (NopCache) Set(context.Context, string, any) error { return nil }

func (NopCache) Invalidate(context.Context, ...string) error { return nil }
