// Package client is a REST client for the storefront catalog API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/fjod/go_storefront/internal/domain"
	"github.com/sony/gobreaker/v2"
)

var ErrUnavailable = errors.New("storefront api unavailable")

// APIError is a non-2xx response decoded from the API error body.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("storefront api: %d %s: %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("storefront api: %d: %s", e.Status, e.Message)
}

type Options struct {
	Timeout          time.Duration
	FailureThreshold uint32
	// OpenTimeout is how long the breaker stays open before probing again.
	OpenTimeout time.Duration
	HTTPClient  *http.Client
}

type Client struct {
	baseURL string
	http    *http.Client
	timeout time.Duration
	breaker *gobreaker.CircuitBreaker[[]byte]
}

func New(baseURL string, opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.FailureThreshold == 0 {
		opts.FailureThreshold = 5
	}
	if opts.OpenTimeout <= 0 {
		opts.OpenTimeout = 30 * time.Second
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{}
	}

	threshold := opts.FailureThreshold
	breaker := gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        "storefront-api",
		MaxRequests: 1,
		Timeout:     opts.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		// client errors say nothing about the health of the API
		IsSuccessful: func(err error) bool {
			var apiErr *APIError
			if errors.As(err, &apiErr) {
				return apiErr.Status < http.StatusInternalServerError
			}
			return err == nil
		},
	})

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    opts.HTTPClient,
		timeout: opts.Timeout,
		breaker: breaker,
	}
}

type categoriesResponse struct {
	Categories []domain.Category `json:"Categories"`
}

type productsResponse struct {
	Products []domain.Product `json:"Products"`
}

type productResponse struct {
	Product *domain.Product `json:"Product"`
}

type imagesResponse struct {
	Images []domain.SlideImage `json:"Images"`
}

func (c *Client) Categories(ctx context.Context) ([]domain.Category, error) {
	var resp categoriesResponse
	if err := c.do(ctx, http.MethodGet, "/api/category/all-category", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Categories, nil
}

func (c *Client) Products(ctx context.Context) ([]domain.Product, error) {
	var resp productsResponse
	if err := c.do(ctx, http.MethodGet, "/api/product/all-product", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Products, nil
}

func (c *Client) Product(ctx context.Context, id string) (*domain.Product, error) {
	var resp productResponse
	if err := c.do(ctx, http.MethodPost, "/api/product/single-product", map[string]string{"pId": id}, &resp); err != nil {
		return nil, err
	}
	return resp.Product, nil
}

// SearchAndFilter queries products by any combination of title, category
// and price bounds; unset fields are omitted from the query.
func (c *Client) SearchAndFilter(ctx context.Context, f domain.ProductFilter) ([]domain.Product, error) {
	q := url.Values{}
	if f.Title != "" {
		q.Set("title", f.Title)
	}
	if !f.CategoryID.IsZero() {
		q.Set("category", f.CategoryID.Hex())
	}
	if f.MinPrice != nil {
		q.Set("minPrice", strconv.FormatFloat(*f.MinPrice, 'f', -1, 64))
	}
	if f.MaxPrice != nil {
		q.Set("maxPrice", strconv.FormatFloat(*f.MaxPrice, 'f', -1, 64))
	}

	path := "/api/product/search-filter"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var resp productsResponse
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Products, nil
}

func (c *Client) ProductsByCategory(ctx context.Context, categoryID string) ([]domain.Product, error) {
	var resp productsResponse
	if err := c.do(ctx, http.MethodPost, "/api/product/product-by-category", map[string]string{"catId": categoryID}, &resp); err != nil {
		return nil, err
	}
	return resp.Products, nil
}

// ProductsByPrice lists products cheaper than price.
func (c *Client) ProductsByPrice(ctx context.Context, price float64) ([]domain.Product, error) {
	var resp productsResponse
	if err := c.do(ctx, http.MethodPost, "/api/product/product-by-price", map[string]float64{"price": price}, &resp); err != nil {
		return nil, err
	}
	return resp.Products, nil
}

func (c *Client) SlideImages(ctx context.Context) ([]domain.SlideImage, error) {
	var resp imagesResponse
	if err := c.do(ctx, http.MethodGet, "/api/customize/get-slide-image", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Images, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
	}

	raw, err := c.breaker.Execute(func() ([]byte, error) {
		return c.roundTrip(ctx, method, path, payload)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if err != nil {
		return err
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

func (c *Client) roundTrip(ctx context.Context, method, path string, payload []byte) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s response: %w", path, err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		var e struct {
			Error   string `json:"error"`
			Code    string `json:"code"`
			Details string `json:"details"`
		}
		if json.Unmarshal(raw, &e) == nil && e.Error != "" {
			apiErr.Code = e.Code
			apiErr.Message = e.Error
			if e.Details != "" {
				apiErr.Message += ": " + e.Details
			}
		}
		return nil, apiErr
	}
	return raw, nil
}

// State reports the circuit breaker state, for diagnostics.
func (c *Client) State() string {
	return c.breaker.State().String()
}
