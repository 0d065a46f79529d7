package cache

import (
	"context"
	"strings"
	"testing"

	"github.com/fjod/go_storefront/internal/domain"
	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestProductsKey(t *testing.T) {
	min, max := 10.0, 50.0
	cat := primitive.NewObjectID()

	all := ProductsKey(domain.ProductFilter{})
	assert.Equal(t, PrefixProducts+"all", all)

	a := ProductsKey(domain.ProductFilter{Title: "Shirt", CategoryID: cat, MinPrice: &min, MaxPrice: &max})
	b := ProductsKey(domain.ProductFilter{Title: "shirt", CategoryID: cat, MinPrice: &min, MaxPrice: &max})
	assert.Equal(t, a, b, "title case must not change the key")
	assert.True(t, strings.HasPrefix(a, PrefixProducts+"search:"))

	onlyMin := ProductsKey(domain.ProductFilter{MinPrice: &min})
	onlyMax := ProductsKey(domain.ProductFilter{MaxPrice: &min})
	assert.NotEqual(t, onlyMin, onlyMax)
}

func TestKeysShareProductPrefix(t *testing.T) {
	for _, key := range []string{
		ProductKey(primitive.NewObjectID()),
		ProductsBelowPriceKey(19.99),
		ProductsKey(domain.ProductFilter{Title: "a"}),
	} {
		assert.True(t, strings.HasPrefix(key, PrefixProducts), key)
	}
	assert.Equal(t, PrefixProducts+"below:19.99", ProductsBelowPriceKey(19.99))
}

func TestNopCache(t *testing.T) {
	var c CatalogCache = NopCache{}
	var v []domain.Category
	assert.ErrorIs(t, c.Get(context.Background(), CategoriesKey(), &v), ErrCacheMiss)
	assert.NoError(t, c.Set(context.Background(), CategoriesKey(), v))
	assert.NoError(t, c.Invalidate(context.Background(), PrefixProducts))
}
