package repository

import (
	"context"
	"errors"

	"github.com/fjod/go_storefront/internal/domain"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrCategoryNotFound = errors.New("category not found")
	ErrCategoryExists   = errors.New("category already exists")
	ErrProductNotFound  = errors.New("product not found")
	ErrSlideNotFound    = errors.New("slide image not found")
)

// CategoryRepository defines category persistence operations.
type CategoryRepository interface {
	ListCategories(ctx context.Context) ([]domain.Category, error)
	GetCategory(ctx context.Context, id primitive.ObjectID) (*domain.Category, error)
	CreateCategory(ctx context.Context, category *domain.Category) error
	UpdateCategory(ctx context.Context, category *domain.Category) error
	DeleteCategory(ctx context.Context, id primitive.ObjectID) error
}

// ProductRepository defines product persistence operations.
// Listings are ordered newest first.
type ProductRepository interface {
	ListProducts(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error)
	ProductsBelowPrice(ctx context.Context, price float64) ([]domain.Product, error)
	GetProduct(ctx context.Context, id primitive.ObjectID) (*domain.Product, error)
	CreateProduct(ctx context.Context, product *domain.Product) error
	UpdateProduct(ctx context.Context, product *domain.Product) error
	DeleteProduct(ctx context.Context, id primitive.ObjectID) error
	CountByCategory(ctx context.Context, categoryID primitive.ObjectID) (int64, error)
}

// SlideRepository defines home slider persistence operations.
type SlideRepository interface {
	ListSlides(ctx context.Context) ([]domain.SlideImage, error)
	CreateSlide(ctx context.Context, slide *domain.SlideImage) error
	DeleteSlide(ctx context.Context, id primitive.ObjectID) error
}
