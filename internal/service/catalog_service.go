package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/fjod/go_storefront/internal/cache"
	"github.com/fjod/go_storefront/internal/domain"
	"github.com/fjod/go_storefront/internal/events"
	"github.com/fjod/go_storefront/internal/logger"
	"github.com/fjod/go_storefront/internal/repository"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/sync/singleflight"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	sideEffectTimeout = 2 * time.Second
	sharedReadTimeout = 10 * time.Second
)

type CatalogService struct {
	categories repository.CategoryRepository
	products   repository.ProductRepository
	slides     repository.SlideRepository
	cache      cache.CatalogCache
	publisher  events.Publisher
	validate   *validator.Validate
	log        zerolog.Logger
	sfg        singleflight.Group // Prevents cache stampede

	// generation counts invalidations. A read stores its result only if no
	// invalidation happened since it started.
	genMu      sync.RWMutex
	generation uint64
}

type Deps struct {
	Categories repository.CategoryRepository
	Products   repository.ProductRepository
	Slides     repository.SlideRepository
	Cache      cache.CatalogCache
	Publisher  events.Publisher
	Logger     zerolog.Logger
}

func NewCatalogService(d Deps) *CatalogService {
	if d.Cache == nil {
		d.Cache = cache.NopCache{}
	}
	if d.Publisher == nil {
		d.Publisher = events.NopPublisher{}
	}
	return &CatalogService{
		categories: d.Categories,
		products:   d.Products,
		slides:     d.Slides,
		cache:      d.Cache,
		publisher:  d.Publisher,
		validate:   newValidator(),
		log:        d.Logger.With().Str("component", "catalog").Logger(),
	}
}

// cachedRead is a cache-aside read collapsed per key and generation through
// singleflight. The shared load is detached from the first caller's context;
// each caller stops waiting when its own context ends. Cache failures are
// logged and fall through to load.
func cachedRead[T any](ctx context.Context, s *CatalogService, key string, load func(context.Context) (T, error)) (T, error) {
	gen := s.currentGeneration()
	ch := s.sfg.DoChan(fmt.Sprintf("%s@%d", key, gen), func() (any, error) {
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sharedReadTimeout)
		defer cancel()

		var cached T
		err := s.cache.Get(loadCtx, key, &cached)
		if err == nil {
			return cached, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			s.logger(loadCtx).Warn().Err(err).Str("key", key).Msg("cache get failed")
		}

		fresh, err := load(loadCtx)
		if err != nil {
			return nil, err
		}

		s.storeIfCurrent(loadCtx, key, gen, fresh)
		return fresh, nil
	})

	var zero T
	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		return res.Val.(T), nil
	}
}

func (s *CatalogService) currentGeneration() uint64 {
	s.genMu.RLock()
	defer s.genMu.RUnlock()
	return s.generation
}

// storeIfCurrent caches value unless an invalidation ran after gen was read.
// The read lock is held across Set so a concurrent invalidation either
// deletes the entry afterwards or makes this store a no-op.
func (s *CatalogService) storeIfCurrent(ctx context.Context, key string, gen uint64, value any) {
	s.genMu.RLock()
	defer s.genMu.RUnlock()
	if s.generation != gen {
		s.logger(ctx).Debug().Str("key", key).Msg("cache set skipped after invalidation")
		return
	}
	if err := s.cache.Set(ctx, key, value); err != nil {
		s.logger(ctx).Warn().Err(err).Str("key", key).Msg("cache set failed")
	}
}

// Invalidate drops cached entries under prefixes. Reads that started before
// the call neither cache their result nor are shared with later callers.
// Catalog events from other instances are applied through it.
func (s *CatalogService) Invalidate(ctx context.Context, prefixes ...string) error {
	s.genMu.Lock()
	s.generation++
	s.genMu.Unlock()
	return s.cache.Invalidate(ctx, prefixes...)
}

func (s *CatalogService) logger(ctx context.Context) *zerolog.Logger {
	l := logger.WithContext(ctx, s.log)
	return &l
}

// ListCategories returns every category, newest first.
func (s *CatalogService) ListCategories(ctx context.Context) ([]domain.Category, error) {
	return cachedRead(ctx, s, cache.CategoriesKey(), func(ctx context.Context) ([]domain.Category, error) {
		categories, err := s.categories.ListCategories(ctx)
		if err != nil {
			return nil, err
		}
		if categories == nil {
			categories = []domain.Category{}
		}
		return categories, nil
	})
}

func (s *CatalogService) CreateCategory(ctx context.Context, in CategoryInput) (*domain.Category, error) {
	if err := s.validate.StructCtx(ctx, in); err != nil {
		return nil, fromValidator(err)
	}

	category := &domain.Category{
		Name:        titleCase(in.Name),
		Description: in.Description,
		Image:       in.Image,
		Status:      in.Status,
	}
	if err := s.categories.CreateCategory(ctx, category); err != nil {
		return nil, err
	}

	s.changed(ctx, events.EntityCategory, category.ID, events.ActionCreated)
	return category, nil
}

func (s *CatalogService) UpdateCategory(ctx context.Context, in CategoryUpdate) error {
	if err := s.validate.StructCtx(ctx, in); err != nil {
		return fromValidator(err)
	}
	id, err := parseID(in.ID)
	if err != nil {
		return err
	}

	category := &domain.Category{ID: id, Description: in.Description, Status: in.Status}
	if err := s.categories.UpdateCategory(ctx, category); err != nil {
		return err
	}

	s.changed(ctx, events.EntityCategory, id, events.ActionUpdated)
	return nil
}

// DeleteCategory refuses to remove a category that products still reference.
func (s *CatalogService) DeleteCategory(ctx context.Context, rawID string) error {
	id, err := parseID(rawID)
	if err != nil {
		return err
	}

	n, err := s.products.CountByCategory(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return fmt.Errorf("%w: %d products reference it", ErrCategoryInUse, n)
	}

	if err := s.categories.DeleteCategory(ctx, id); err != nil {
		return err
	}

	s.changed(ctx, events.EntityCategory, id, events.ActionDeleted)
	return nil
}

// ListProducts returns every product, newest first.
func (s *CatalogService) ListProducts(ctx context.Context) ([]domain.Product, error) {
	return s.SearchAndFilter(ctx, domain.ProductFilter{})
}

// SearchAndFilter lists products matching every non-empty field of f.
func (s *CatalogService) SearchAndFilter(ctx context.Context, f domain.ProductFilter) ([]domain.Product, error) {
	f.Title = strings.TrimSpace(f.Title)
	if err := checkBounds(f.MinPrice, f.MaxPrice); err != nil {
		return nil, err
	}

	return cachedRead(ctx, s, cache.ProductsKey(f), func(ctx context.Context) ([]domain.Product, error) {
		products, err := s.products.ListProducts(ctx, f)
		if err != nil {
			return nil, err
		}
		return s.withCategories(ctx, products)
	})
}

func (s *CatalogService) ProductsByCategory(ctx context.Context, rawCategoryID string) ([]domain.Product, error) {
	id, err := parseID(rawCategoryID)
	if err != nil {
		return nil, err
	}
	return s.SearchAndFilter(ctx, domain.ProductFilter{CategoryID: id})
}

// ProductsBelowPrice lists products strictly cheaper than price.
func (s *CatalogService) ProductsBelowPrice(ctx context.Context, price float64) ([]domain.Product, error) {
	if price <= 0 {
		return nil, newFieldError("price", "must be greater than 0")
	}

	return cachedRead(ctx, s, cache.ProductsBelowPriceKey(price), func(ctx context.Context) ([]domain.Product, error) {
		products, err := s.products.ProductsBelowPrice(ctx, price)
		if err != nil {
			return nil, err
		}
		return s.withCategories(ctx, products)
	})
}

func (s *CatalogService) GetProduct(ctx context.Context, rawID string) (*domain.Product, error) {
	id, err := parseID(rawID)
	if err != nil {
		return nil, err
	}

	return cachedRead(ctx, s, cache.ProductKey(id), func(ctx context.Context) (*domain.Product, error) {
		product, err := s.products.GetProduct(ctx, id)
		if err != nil {
			return nil, err
		}
		enriched, err := s.withCategories(ctx, []domain.Product{*product})
		if err != nil {
			return nil, err
		}
		return &enriched[0], nil
	})
}

func (s *CatalogService) CreateProduct(ctx context.Context, in ProductInput) (*domain.Product, error) {
	if err := s.validate.StructCtx(ctx, in); err != nil {
		return nil, fromValidator(err)
	}
	categoryID, err := s.existingCategory(ctx, in.CategoryID)
	if err != nil {
		return nil, err
	}

	product := &domain.Product{
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Price:       in.Price,
		Quantity:    in.Quantity,
		CategoryID:  categoryID,
		Images:      in.Images,
		Offer:       in.Offer,
		Status:      in.Status,
	}
	if err := s.products.CreateProduct(ctx, product); err != nil {
		return nil, err
	}

	s.changed(ctx, events.EntityProduct, product.ID, events.ActionCreated)
	return product, nil
}

func (s *CatalogService) UpdateProduct(ctx context.Context, in ProductUpdate) error {
	if err := s.validate.StructCtx(ctx, in); err != nil {
		return fromValidator(err)
	}
	id, err := parseID(in.ID)
	if err != nil {
		return err
	}
	categoryID, err := s.existingCategory(ctx, in.CategoryID)
	if err != nil {
		return err
	}

	images := in.Images
	if len(images) == 0 {
		current, err := s.products.GetProduct(ctx, id)
		if err != nil {
			return err
		}
		images = current.Images
	}

	product := &domain.Product{
		ID:          id,
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Price:       in.Price,
		Quantity:    in.Quantity,
		CategoryID:  categoryID,
		Images:      images,
		Offer:       in.Offer,
		Status:      in.Status,
	}
	if err := s.products.UpdateProduct(ctx, product); err != nil {
		return err
	}

	s.changed(ctx, events.EntityProduct, id, events.ActionUpdated)
	return nil
}

func (s *CatalogService) DeleteProduct(ctx context.Context, rawID string) error {
	id, err := parseID(rawID)
	if err != nil {
		return err
	}
	if err := s.products.DeleteProduct(ctx, id); err != nil {
		return err
	}

	s.changed(ctx, events.EntityProduct, id, events.ActionDeleted)
	return nil
}

// ListSlides returns the home slider images in upload order.
func (s *CatalogService) ListSlides(ctx context.Context) ([]domain.SlideImage, error) {
	return cachedRead(ctx, s, cache.SlidesKey(), func(ctx context.Context) ([]domain.SlideImage, error) {
		slides, err := s.slides.ListSlides(ctx)
		if err != nil {
			return nil, err
		}
		if slides == nil {
			slides = []domain.SlideImage{}
		}
		return slides, nil
	})
}

func (s *CatalogService) AddSlide(ctx context.Context, in SlideInput) (*domain.SlideImage, error) {
	if err := s.validate.StructCtx(ctx, in); err != nil {
		return nil, fromValidator(err)
	}

	slide := &domain.SlideImage{Image: strings.TrimSpace(in.Image)}
	if err := s.slides.CreateSlide(ctx, slide); err != nil {
		return nil, err
	}

	s.changed(ctx, events.EntitySlide, slide.ID, events.ActionCreated)
	return slide, nil
}

func (s *CatalogService) DeleteSlide(ctx context.Context, rawID string) error {
	id, err := parseID(rawID)
	if err != nil {
		return err
	}
	if err := s.slides.DeleteSlide(ctx, id); err != nil {
		return err
	}

	s.changed(ctx, events.EntitySlide, id, events.ActionDeleted)
	return nil
}

// ParseFilter converts raw query parameters into a ProductFilter. Empty
// parameters are ignored.
func ParseFilter(p FilterParams) (domain.ProductFilter, error) {
	f := domain.ProductFilter{Title: strings.TrimSpace(p.Title)}

	if c := strings.TrimSpace(p.Category); c != "" {
		id, err := primitive.ObjectIDFromHex(c)
		if err != nil {
			return f, fmt.Errorf("%w: category %q is not a valid id", ErrInvalidFilter, c)
		}
		f.CategoryID = id
	}

	var err error
	if f.MinPrice, err = parseBound("minPrice", p.MinPrice); err != nil {
		return f, err
	}
	if f.MaxPrice, err = parseBound("maxPrice", p.MaxPrice); err != nil {
		return f, err
	}
	return f, checkBounds(f.MinPrice, f.MaxPrice)
}

func parseBound(name, raw string) (*float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %q is not a number", ErrInvalidFilter, name, raw)
	}
	return &v, nil
}

func checkBounds(minPrice, maxPrice *float64) error {
	if minPrice != nil && *minPrice < 0 {
		return fmt.Errorf("%w: minPrice must not be negative", ErrInvalidFilter)
	}
	if maxPrice != nil && *maxPrice < 0 {
		return fmt.Errorf("%w: maxPrice must not be negative", ErrInvalidFilter)
	}
	if minPrice != nil && maxPrice != nil && *minPrice > *maxPrice {
		return fmt.Errorf("%w: minPrice %g exceeds maxPrice %g", ErrInvalidFilter, *minPrice, *maxPrice)
	}
	return nil
}

// withCategories fills in the {_id, cName} reference of each product.
func (s *CatalogService) withCategories(ctx context.Context, products []domain.Product) ([]domain.Product, error) {
	if products == nil {
		return []domain.Product{}, nil
	}

	categories, err := s.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	names := make(map[primitive.ObjectID]string, len(categories))
	for _, c := range categories {
		names[c.ID] = c.Name
	}

	for i := range products {
		if products[i].CategoryID.IsZero() {
			continue
		}
		products[i].Category = &domain.CategoryRef{
			ID:   products[i].CategoryID,
			Name: names[products[i].CategoryID],
		}
	}
	return products, nil
}

func (s *CatalogService) existingCategory(ctx context.Context, raw string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(strings.TrimSpace(raw))
	if err != nil {
		return primitive.NilObjectID, newFieldError("pCategory", "is not a valid id")
	}
	if _, err := s.categories.GetCategory(ctx, id); err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return primitive.NilObjectID, newFieldError("pCategory", "does not exist")
		}
		return primitive.NilObjectID, err
	}
	return id, nil
}

// changed drops this instance's stale cache entries and announces the write
// to the other instances. Neither failure undoes the write.
func (s *CatalogService) changed(ctx context.Context, entity events.Entity, id primitive.ObjectID, action events.Action) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sideEffectTimeout)
	defer cancel()

	log := s.logger(ctx)
	if err := s.Invalidate(ctx, events.CachePrefixes(entity)...); err != nil {
		log.Error().Err(err).Str("entity", string(entity)).Msg("cache invalidate failed")
	}

	event := events.CatalogChanged{
		Entity:     entity,
		EntityID:   id.Hex(),
		Action:     action,
		OccurredAt: time.Now().UTC(),
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		log.Error().Err(err).Str("entity", string(entity)).Str("action", string(action)).Msg("publish catalog event failed")
		return
	}
	log.Debug().Str("entity", string(entity)).Str("id", event.EntityID).Str("action", string(action)).Msg("catalog changed")
}

func parseID(raw string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(strings.TrimSpace(raw))
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: %q", ErrInvalidID, raw)
	}
	return id, nil
}

// titleCase collapses whitespace and capitalises each word. A Caser is not
// safe for concurrent use, so one is built per call.
func titleCase(name string) string {
	return cases.Title(language.English).String(strings.Join(strings.Fields(name), " "))
}
