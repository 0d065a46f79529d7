package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/fjod/go_storefront/internal/domain"
	"github.com/fjod/go_storefront/internal/service"
	"github.com/rs/zerolog"
)

type ProductService interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
	ProductsByCategory(ctx context.Context, categoryID string) ([]domain.Product, error)
	ProductsBelowPrice(ctx context.Context, price float64) ([]domain.Product, error)
	SearchAndFilter(ctx context.Context, f domain.ProductFilter) ([]domain.Product, error)
	CreateProduct(ctx context.Context, in service.ProductInput) (*domain.Product, error)
	UpdateProduct(ctx context.Context, in service.ProductUpdate) error
	DeleteProduct(ctx context.Context, id string) error
}

type ProductHandler struct {
	products ProductService
	timeout  time.Duration
	log      zerolog.Logger
}

func NewProductHandler(products ProductService, timeout time.Duration, log zerolog.Logger) *ProductHandler {
	return &ProductHandler{
		products: products,
		timeout:  timeout,
		log:      log,
	}
}

type ProductsResponse struct {
	Products []domain.Product `json:"Products"`
}

type ProductResponse struct {
	Product *domain.Product `json:"Product"`
}

type ProductIDRequest struct {
	ID string `json:"pId"`
}

type ProductByCategoryRequest struct {
	CategoryID string `json:"catId"`
}

type ProductByPriceRequest struct {
	Price Price `json:"price"`
}

// Price accepts either a JSON number or a numeric string, as range inputs
// submit their value as text.
type Price float64

func (p *Price) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return fmt.Errorf("price %q is not a number", s)
		}
		*p = Price(v)
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*p = Price(v)
	return nil
}

func (h *ProductHandler) All(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	products, err := h.products.ListProducts(ctx)
	if err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}

	respondJSON(w, http.StatusOK, ProductsResponse{Products: products})
}

func (h *ProductHandler) Single(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req ProductIDRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	product, err := h.products.GetProduct(ctx, req.ID)
	if err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}

	respondJSON(w, http.StatusOK, ProductResponse{Product: product})
}

func (h *ProductHandler) ByCategory(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req ProductByCategoryRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	products, err := h.products.ProductsByCategory(ctx, req.CategoryID)
	if err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}

	respondJSON(w, http.StatusOK, ProductsResponse{Products: products})
}

func (h *ProductHandler) ByPrice(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req ProductByPriceRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	products, err := h.products.ProductsBelowPrice(ctx, float64(req.Price))
	if err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}

	respondJSON(w, http.StatusOK, ProductsResponse{Products: products})
}

// SearchFilter serves GET ?title=&category=&minPrice=&maxPrice=.
func (h *ProductHandler) SearchFilter(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	q := r.URL.Query()
	filter, err := service.ParseFilter(service.FilterParams{
		Title:    q.Get("title"),
		Category: q.Get("category"),
		MinPrice: q.Get("minPrice"),
		MaxPrice: q.Get("maxPrice"),
	})
	if err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}

	products, err := h.products.SearchAndFilter(ctx, filter)
	if err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}

	respondJSON(w, http.StatusOK, ProductsResponse{Products: products})
}

func (h *ProductHandler) Add(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req service.ProductInput
	if !decodeJSON(w, r, &req) {
		return
	}

	product, err := h.products.CreateProduct(ctx, req)
	if err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}

	respondJSON(w, http.StatusCreated, SuccessResponse{Success: "Product created successfully", ID: product.ID.Hex()})
}

func (h *ProductHandler) Edit(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req service.ProductUpdate
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.products.UpdateProduct(ctx, req); err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}

	respondJSON(w, http.StatusOK, SuccessResponse{Success: "Product edit successfully", ID: req.ID})
}

func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req ProductIDRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.products.DeleteProduct(ctx, req.ID); err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}

	respondJSON(w, http.StatusOK, SuccessResponse{Success: "Product deleted successfully", ID: req.ID})
}
