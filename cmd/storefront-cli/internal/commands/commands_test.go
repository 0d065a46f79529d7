package commands

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fjod/go_storefront/internal/domain"
	"github.com/fjod/go_storefront/internal/home"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeCatalog struct {
	categories []domain.Category
	products   []domain.Product
	slides     []domain.SlideImage
	err        error

	lastFilter   domain.ProductFilter
	lastCategory string
	lastPrice    float64
}

func (f *fakeCatalog) Categories(context.Context) ([]domain.Category, error) {
	return f.categories, f.err
}

func (f *fakeCatalog) Products(context.Context) ([]domain.Product, error) {
	return f.products, f.err
}

func (f *fakeCatalog) SearchAndFilter(_ context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	f.lastFilter = filter
	return f.products, f.err
}

func (f *fakeCatalog) ProductsByCategory(_ context.Context, id string) ([]domain.Product, error) {
	f.lastCategory = id
	return f.products, f.err
}

func (f *fakeCatalog) ProductsByPrice(_ context.Context, price float64) ([]domain.Product, error) {
	f.lastPrice = price
	var out []domain.Product
	for _, p := range f.products {
		if p.Price < price {
			out = append(out, p)
		}
	}
	return out, f.err
}

func (f *fakeCatalog) SlideImages(context.Context) ([]domain.SlideImage, error) {
	return f.slides, f.err
}

func sampleCatalog() *fakeCatalog {
	shirts := &domain.CategoryRef{ID: primitive.NewObjectID(), Name: "Shirts"}
	return &fakeCatalog{
		categories: []domain.Category{{ID: shirts.ID, Name: "Shirts", Image: "shirts.png", Status: domain.StatusActive}},
		products: []domain.Product{
			{ID: primitive.NewObjectID(), Name: "Linen Shirt", Price: 30, Category: shirts},
			{ID: primitive.NewObjectID(), Name: "Wool Socks", Price: 8},
		},
		slides: []domain.SlideImage{{ID: primitive.NewObjectID(), Image: "hero.jpg"}},
	}
}

func run(t *testing.T, catalog Catalog, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := NewRootCmd(func(string, time.Duration) Catalog { return catalog }, &out)
	root.SetArgs(args)
	root.SetErr(&bytes.Buffer{})
	err := root.Execute()
	return out.String(), err
}

func TestCategoriesCommand(t *testing.T) {
	out, err := run(t, sampleCatalog(), "categories")
	require.NoError(t, err)
	assert.Contains(t, out, "Shirts")
	assert.Contains(t, out, "/uploads/categories/shirts.png")
}

func TestCategoriesCommand_Empty(t *testing.T) {
	out, err := run(t, &fakeCatalog{}, "categories")
	require.NoError(t, err)
	assert.Equal(t, "No category found\n", out)
}

func TestSearchCommand(t *testing.T) {
	out, err := run(t, sampleCatalog(), "search", "SHIRT")
	require.NoError(t, err)
	assert.Contains(t, out, "Linen Shirt")
	assert.NotContains(t, out, "Wool Socks")

	out, err = run(t, sampleCatalog(), "search", "hat")
	require.NoError(t, err)
	assert.Contains(t, out, "No product found")
}

func TestFilterCommand(t *testing.T) {
	catalog := sampleCatalog()
	catID := primitive.NewObjectID()

	_, err := run(t, catalog, "filter", "--title", "shirt", "--category", catID.Hex(), "--max", "50")
	require.NoError(t, err)

	assert.Equal(t, "shirt", catalog.lastFilter.Title)
	assert.Equal(t, catID, catalog.lastFilter.CategoryID)
	assert.Nil(t, catalog.lastFilter.MinPrice)
	require.NotNil(t, catalog.lastFilter.MaxPrice)
	assert.Equal(t, 50.0, *catalog.lastFilter.MaxPrice)

	_, err = run(t, catalog, "filter", "--category", "nope")
	assert.Error(t, err)
}

func TestByPriceCommand(t *testing.T) {
	catalog := sampleCatalog()

	out, err := run(t, catalog, "by-price", "10")
	require.NoError(t, err)
	assert.Equal(t, 10.0, catalog.lastPrice)
	assert.Contains(t, out, "Wool Socks")
	assert.NotContains(t, out, "Linen Shirt")

	out, err = run(t, catalog, "by-price", "all")
	require.NoError(t, err)
	assert.Contains(t, out, "Linen Shirt")

	_, err = run(t, catalog, "by-price", "-3")
	assert.Error(t, err)
}

func TestByCategoryCommand(t *testing.T) {
	catalog := sampleCatalog()

	out, err := run(t, catalog, "by-category", "abc")
	require.NoError(t, err)
	assert.Equal(t, "abc", catalog.lastCategory)
	assert.Contains(t, out, "Shirts")
}

func TestSlidesCommand(t *testing.T) {
	out, err := run(t, sampleCatalog(), "slides")
	require.NoError(t, err)
	assert.Equal(t, "/uploads/customize/hero.jpg\n", out)
}

func TestCommandError(t *testing.T) {
	catalog := sampleCatalog()
	catalog.err = errors.New("storefront api unavailable")

	_, err := run(t, catalog, "products")
	assert.ErrorContains(t, err, "unavailable")
}

func TestAPIURLFromEnvironment(t *testing.T) {
	t.Setenv("STOREFRONT_API_URL", "http://shop.internal:9000")

	var gotURL string
	root := NewRootCmd(func(apiURL string, _ time.Duration) Catalog {
		gotURL = apiURL
		return sampleCatalog()
	}, &bytes.Buffer{})
	root.SetArgs([]string{"slides"})
	require.NoError(t, root.Execute())
	assert.Equal(t, "http://shop.internal:9000", gotURL)

	root = NewRootCmd(func(apiURL string, _ time.Duration) Catalog {
		gotURL = apiURL
		return sampleCatalog()
	}, &bytes.Buffer{})
	root.SetArgs([]string{"slides", "--api-url", "http://flag:1"})
	require.NoError(t, root.Execute())
	assert.Equal(t, "http://flag:1", gotURL)
}

func TestSession_DropdownStateAfterCommands(t *testing.T) {
	s := NewSession(sampleCatalog(), &bytes.Buffer{})
	ctx := context.Background()

	require.NoError(t, s.Categories(ctx))
	assert.True(t, s.State().CategoryListDropdown)

	require.NoError(t, s.Search(ctx, "sock"))
	state := s.State()
	assert.True(t, state.SearchDropdown)
	assert.Equal(t, 1, state.OpenDropdowns())
	assert.False(t, state.Loading)
	require.Len(t, state.Products, 1)
	assert.Equal(t, "Wool Socks", state.Products[0].Name)

	require.NoError(t, s.ByPrice(ctx, nil))
	assert.True(t, s.State().FilterListDropdown)
	assert.Len(t, s.State().Products, 2)

	require.NoError(t, s.Slides(ctx))
	assert.Len(t, s.State().SliderImages, 1)
	assert.IsType(t, home.State{}, s.State())
}
