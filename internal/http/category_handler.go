package http

import (
	"context"
	"net/http"
	"time"

	"github.com/fjod/go_storefront/internal/domain"
	"github.com/fjod/go_storefront/internal/service"
	"github.com/rs/zerolog"
)

type CategoryService interface {
	ListCategories(ctx context.Context) ([]domain.Category, error)
	CreateCategory(ctx context.Context, in service.CategoryInput) (*domain.Category, error)
	UpdateCategory(ctx context.Context, in service.CategoryUpdate) error
	DeleteCategory(ctx context.Context, id string) error
}

type CategoryHandler struct {
	categories CategoryService
	timeout    time.Duration
	log        zerolog.Logger
}

func NewCategoryHandler(categories CategoryService, timeout time.Duration, log zerolog.Logger) *CategoryHandler {
	return &CategoryHandler{
		categories: categories,
		timeout:    timeout,
		log:        log,
	}
}

type CategoriesResponse struct {
	Categories []domain.Category `json:"Categories"`
}

type CategoryIDRequest struct {
	ID string `json:"cId"`
}

func (h *CategoryHandler) All(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	categories, err := h.categories.ListCategories(ctx)
	if err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}

	respondJSON(w, http.StatusOK, CategoriesResponse{Categories: categories})
}

func (h *CategoryHandler) Add(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req service.CategoryInput
	if !decodeJSON(w, r, &req) {
		return
	}

	category, err := h.categories.CreateCategory(ctx, req)
	if err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}

	respondJSON(w, http.StatusCreated, SuccessResponse{Success: "Category created successfully", ID: category.ID.Hex()})
}

func (h *CategoryHandler) Edit(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req service.CategoryUpdate
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.categories.UpdateCategory(ctx, req); err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}

	respondJSON(w, http.StatusOK, SuccessResponse{Success: "Category edit successfully", ID: req.ID})
}

func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req CategoryIDRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.categories.DeleteCategory(ctx, req.ID); err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}

	respondJSON(w, http.StatusOK, SuccessResponse{Success: "Category deleted successfully", ID: req.ID})
}
