package service

import (
	"context"
	"encoding/json"
	"strings"
	"sync"

	"github.com/fjod/go_storefront/internal/cache"
	"github.com/fjod/go_storefront/internal/domain"
	"github.com/fjod/go_storefront/internal/events"
	"github.com/fjod/go_storefront/internal/repository"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type mockCategoryRepo struct {
	mu         sync.Mutex
	categories map[primitive.ObjectID]domain.Category
	listCalls  int
	listErr    error
	createErr  error
	deleted    []primitive.ObjectID
}

func newMockCategoryRepo(cs ...domain.Category) *mockCategoryRepo {
	m := &mockCategoryRepo{categories: make(map[primitive.ObjectID]domain.Category)}
	for _, c := range cs {
		m.categories[c.ID] = c
	}
	return m
}

func (m *mockCategoryRepo) ListCategories(ctx context.Context) ([]domain.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listCalls++
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := make([]domain.Category, 0, len(m.categories))
	for _, c := range m.categories {
		out = append(out, c)
	}
	return out, nil
}

func (m *mockCategoryRepo) GetCategory(ctx context.Context, id primitive.ObjectID) (*domain.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.categories[id]
	if !ok {
		return nil, repository.ErrCategoryNotFound
	}
	return &c, nil
}

func (m *mockCategoryRepo) CreateCategory(ctx context.Context, c *domain.Category) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	for _, existing := range m.categories {
		if existing.Name == c.Name {
			return repository.ErrCategoryExists
		}
	}
	c.ID = primitive.NewObjectID()
	m.categories[c.ID] = *c
	return nil
}

func (m *mockCategoryRepo) UpdateCategory(ctx context.Context, c *domain.Category) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.categories[c.ID]
	if !ok {
		return repository.ErrCategoryNotFound
	}
	existing.Description = c.Description
	existing.Status = c.Status
	m.categories[c.ID] = existing
	return nil
}

func (m *mockCategoryRepo) DeleteCategory(ctx context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.categories[id]; !ok {
		return repository.ErrCategoryNotFound
	}
	delete(m.categories, id)
	m.deleted = append(m.deleted, id)
	return nil
}

type mockProductRepo struct {
	mu         sync.Mutex
	products   []domain.Product
	listCalls  int
	lastFilter domain.ProductFilter
	lastBelow  float64
	updated    *domain.Product
	count      int64
}

func (m *mockProductRepo) ListProducts(ctx context.Context, f domain.ProductFilter) ([]domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listCalls++
	m.lastFilter = f
	out := make([]domain.Product, 0, len(m.products))
	for _, p := range m.products {
		if !f.CategoryID.IsZero() && p.CategoryID != f.CategoryID {
			continue
		}
		if f.Title != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(f.Title)) {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (m *mockProductRepo) ProductsBelowPrice(ctx context.Context, price float64) ([]domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastBelow = price
	var out []domain.Product
	for _, p := range m.products {
		if p.Price < price {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *mockProductRepo) GetProduct(ctx context.Context, id primitive.ObjectID) (*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.products {
		if p.ID == id {
			return &p, nil
		}
	}
	return nil, repository.ErrProductNotFound
}

func (m *mockProductRepo) CreateProduct(ctx context.Context, p *domain.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p.ID = primitive.NewObjectID()
	m.products = append(m.products, *p)
	return nil
}

func (m *mockProductRepo) UpdateProduct(ctx context.Context, p *domain.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.products {
		if m.products[i].ID == p.ID {
			m.products[i] = *p
			cp := *p
			m.updated = &cp
			return nil
		}
	}
	return repository.ErrProductNotFound
}

func (m *mockProductRepo) DeleteProduct(ctx context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.products {
		if m.products[i].ID == id {
			m.products = append(m.products[:i], m.products[i+1:]...)
			return nil
		}
	}
	return repository.ErrProductNotFound
}

func (m *mockProductRepo) CountByCategory(ctx context.Context, id primitive.ObjectID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.count > 0 {
		return m.count, nil
	}
	var n int64
	for _, p := range m.products {
		if p.CategoryID == id {
			n++
		}
	}
	return n, nil
}

type mockSlideRepo struct {
	mu     sync.Mutex
	slides []domain.SlideImage
}

func (m *mockSlideRepo) ListSlides(ctx context.Context) ([]domain.SlideImage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.SlideImage(nil), m.slides...), nil
}

func (m *mockSlideRepo) CreateSlide(ctx context.Context, s *domain.SlideImage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s.ID = primitive.NewObjectID()
	m.slides = append(m.slides, *s)
	return nil
}

func (m *mockSlideRepo) DeleteSlide(ctx context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.slides {
		if m.slides[i].ID == id {
			m.slides = append(m.slides[:i], m.slides[i+1:]...)
			return nil
		}
	}
	return repository.ErrSlideNotFound
}

// mockCache keeps JSON like the Redis cache so cached reads round-trip.
type mockCache struct {
	mu          sync.Mutex
	data        map[string][]byte
	getErr      error
	invalidated [][]string
}

func newMockCache() *mockCache {
	return &mockCache{data: make(map[string][]byte)}
}

func (m *mockCache) Get(ctx context.Context, key string, dest any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return m.getErr
	}
	raw, ok := m.data[key]
	if !ok {
		return cache.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *mockCache) Set(ctx context.Context, key string, value any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.data[key] = raw
	return nil
}

func (m *mockCache) Invalidate(ctx context.Context, prefixes ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.invalidated = append(m.invalidated, prefixes)
	for key := range m.data {
		for _, p := range prefixes {
			if strings.HasPrefix(key, p) {
				delete(m.data, key)
			}
		}
	}
	return nil
}

func (m *mockCache) has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.data[key]
	return ok
}

type mockPublisher struct {
	mu     sync.Mutex
	events []events.CatalogChanged
	err    error
}

func (m *mockPublisher) Publish(ctx context.Context, e events.CatalogChanged) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.events = append(m.events, e)
	return nil
}

func (m *mockPublisher) published() []events.CatalogChanged {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]events.CatalogChanged(nil), m.events...)
}

// gatedCategoryRepo takes its snapshot and then parks the first
// ListCategories call until release is closed.
type gatedCategoryRepo struct {
	*mockCategoryRepo
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func newGatedCategoryRepo(inner *mockCategoryRepo) *gatedCategoryRepo {
	return &gatedCategoryRepo{
		mockCategoryRepo: inner,
		entered:          make(chan struct{}),
		release:          make(chan struct{}),
	}
}

func (g *gatedCategoryRepo) ListCategories(ctx context.Context) ([]domain.Category, error) {
	categories, err := g.mockCategoryRepo.ListCategories(ctx)
	first := false
	g.once.Do(func() { first = true })
	if first {
		close(g.entered)
		select {
		case <-g.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return categories, err
}
