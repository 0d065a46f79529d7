package http

import (
	"context"
	"net/http"
	"time"

	"github.com/fjod/go_storefront/internal/domain"
	"github.com/fjod/go_storefront/internal/service"
	"github.com/rs/zerolog"
)

type SlideService interface {
	ListSlides(ctx context.Context) ([]domain.SlideImage, error)
	AddSlide(ctx context.Context, in service.SlideInput) (*domain.SlideImage, error)
	DeleteSlide(ctx context.Context, id string) error
}

// CustomizeHandler serves the home slider images.
type CustomizeHandler struct {
	slides  SlideService
	timeout time.Duration
	log     zerolog.Logger
}

func NewCustomizeHandler(slides SlideService, timeout time.Duration, log zerolog.Logger) *CustomizeHandler {
	return &CustomizeHandler{
		slides:  slides,
		timeout: timeout,
		log:     log,
	}
}

type ImagesResponse struct {
	Images []domain.SlideImage `json:"Images"`
}

type SlideIDRequest struct {
	ID string `json:"id"`
}

func (h *CustomizeHandler) All(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	slides, err := h.slides.ListSlides(ctx)
	if err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}

	respondJSON(w, http.StatusOK, ImagesResponse{Images: slides})
}

func (h *CustomizeHandler) Upload(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req service.SlideInput
	if !decodeJSON(w, r, &req) {
		return
	}

	slide, err := h.slides.AddSlide(ctx, req)
	if err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}

	respondJSON(w, http.StatusCreated, SuccessResponse{Success: "Image upload successfully", ID: slide.ID.Hex()})
}

func (h *CustomizeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req SlideIDRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.slides.DeleteSlide(ctx, req.ID); err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}

	respondJSON(w, http.StatusOK, SuccessResponse{Success: "Image deleted successfully", ID: req.ID})
}
